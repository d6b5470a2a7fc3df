package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/saazhq/saaz/internal/saaz/metrics"
	"github.com/saazhq/saaz/internal/saaz/store"
)

// HousekeepingService periodically clears expired reset tickets and
// abandoned pending federations.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass. Each purge is independent; a failure in
// one does not skip the other.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	if n, err := s.Store.Users().ClearExpiredResetTokens(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
	} else {
		metrics.HousekeepingPurgedTotal.WithLabelValues("reset_token").Add(float64(n))
		s.Logger.Debug("cleared expired reset tokens", slog.Int64("count", n))
	}

	if n, err := s.Store.PendingFederations().DeleteExpiredPendingFederations(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired pending federations", slog.Any("error", err))
	} else {
		metrics.HousekeepingPurgedTotal.WithLabelValues("pending_federation").Add(float64(n))
		s.Logger.Debug("deleted expired pending federations", slog.Int64("count", n))
	}
}

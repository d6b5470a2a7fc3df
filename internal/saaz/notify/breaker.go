package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saazhq/saaz/internal/saaz/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a Mailer.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
}

// BreakerMailer stops calling a failing Mailer until it has had time to
// recover, failing fast in the meantime.
type BreakerMailer struct {
	next Mailer
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerMailer wraps next. Zero config values fall back to 5
// consecutive failures and a 30s open period.
func NewBreakerMailer(next Mailer, cfg BreakerConfig, logger *slog.Logger) *BreakerMailer {
	if cfg.Name == "" {
		cfg.Name = "mail"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.MailBreakerState.Set(float64(to))
			if logger != nil {
				logger.Warn("mail circuit breaker state change",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	}

	return &BreakerMailer{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *BreakerMailer) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})

	switch {
	case err == nil:
		metrics.MailDispatchTotal.WithLabelValues("sent").Inc()
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.MailDispatchTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	default:
		metrics.MailDispatchTotal.WithLabelValues("failed").Inc()
		return err
	}
}

// State reports the breaker state for readiness checks.
func (b *BreakerMailer) State() string {
	return b.cb.State().String()
}

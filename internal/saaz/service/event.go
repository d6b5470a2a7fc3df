package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/slogx"
)

// EventInput is a new event. Location is required.
type EventInput struct {
	Title       string
	Date        time.Time
	Location    string
	Description string
	Price       string
	Image       string
}

// EventPatch carries the editable event fields; nil means unchanged.
type EventPatch = store.EventUpdate

type EventService struct {
	Store store.Store
	Now   func() time.Time
}

// Clock returns the time used to derive event status.
func (s *EventService) Clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ListEvents returns every event by date ascending with creator summaries.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.EventListing, error) {
	out, err := s.Store.Events().ListEvents(ctx, store.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	e, err := s.Store.Events().GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// CreateEvent is limited to ARTIST and VENUE accounts.
func (s *EventService) CreateEvent(ctx context.Context, creatorID int64, role domain.Role, in EventInput) (domain.Event, error) {
	if !role.HasProfile() {
		return domain.Event{}, ErrForbidden
	}
	if strings.TrimSpace(in.Location) == "" {
		return domain.Event{}, ErrLocationRequired
	}
	if strings.TrimSpace(in.Title) == "" || in.Date.IsZero() {
		return domain.Event{}, ErrInvalidRequest
	}

	e := domain.Event{
		Title:       in.Title,
		Date:        in.Date.UTC(),
		Location:    in.Location,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		CreatorID:   creatorID,
	}
	id, err := s.Store.Events().CreateEvent(context.WithoutCancel(ctx), e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}

	slogx.FromContext(ctx).Info("event created",
		slog.Int64("event_id", id),
		slog.Int64("user_id", creatorID),
	)
	return s.GetEvent(ctx, id)
}

// UpdateEvent is limited to the event's creator.
func (s *EventService) UpdateEvent(ctx context.Context, callerID, id int64, patch EventPatch) (domain.Event, error) {
	if err := s.authorizeCreator(ctx, callerID, id); err != nil {
		return domain.Event{}, err
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		return domain.Event{}, ErrLocationRequired
	}

	if err := s.Store.Events().UpdateEvent(context.WithoutCancel(ctx), id, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("update event: %w", err)
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent is limited to the event's creator.
func (s *EventService) DeleteEvent(ctx context.Context, callerID, id int64) error {
	if err := s.authorizeCreator(ctx, callerID, id); err != nil {
		return err
	}

	if err := s.Store.Events().DeleteEvent(context.WithoutCancel(ctx), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	slogx.FromContext(ctx).Info("event deleted",
		slog.Int64("event_id", id),
		slog.Int64("user_id", callerID),
	)
	return nil
}

func (s *EventService) authorizeCreator(ctx context.Context, callerID, id int64) error {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if e.CreatorID != callerID {
		slogx.FromContext(ctx).Warn("event change by non-creator",
			slog.Int64("event_id", id),
			slog.Int64("user_id", callerID),
		)
		return ErrForbidden
	}
	return nil
}

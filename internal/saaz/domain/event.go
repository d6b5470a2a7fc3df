package domain

import "time"

// EventStatus is derived from the event date, never stored.
type EventStatus string

const (
	EventUpcoming  EventStatus = "UPCOMING"
	EventRunning   EventStatus = "RUNNING"
	EventCompleted EventStatus = "COMPLETED"
)

type Event struct {
	ID          int64
	Title       string
	Date        time.Time
	Location    string
	Description string
	Price       string
	Image       string
	CreatorID   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status compares the event's calendar day with now's, both in UTC. An
// event is RUNNING for the whole of its day, even after its start time.
func (e Event) Status(now time.Time) EventStatus {
	day, today := utcDay(e.Date), utcDay(now)
	switch {
	case day.After(today):
		return EventUpcoming
	case day.Equal(today):
		return EventRunning
	default:
		return EventCompleted
	}
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Creator is the public summary of the account that created an event.
type Creator struct {
	ID       int64
	Name     string
	Role     Role
	Category string // artists only
	Type     string // venues only
}

type EventListing struct {
	Event   Event
	Creator Creator
}

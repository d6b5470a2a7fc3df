package domain

import "time"

// PendingFederation holds verified external identity claims while the
// account owner chooses a role. A row exists only in the AwaitingRole
// state; it is deleted once the account is created.
type PendingFederation struct {
	ID        string // ULID
	Subject   string // external subject id, unique
	Email     string
	Name      string
	Picture   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record can no longer complete registration.
func (p PendingFederation) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

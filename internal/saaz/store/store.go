package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// Unique-constraint violations, distinguished by column. Each wraps
	// ErrAlreadyExists.
	ErrEmailTaken    = fmt.Errorf("%w: email", ErrAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrAlreadyExists)
	ErrGoogleIDTaken = fmt.Errorf("%w: google id", ErrAlreadyExists)
)

// Store is the root data access interface. Concrete drivers implement this
// and expose sub-repositories so transactions cannot be nested by accident.
type Store interface {
	Users() Users
	Profiles() Profiles
	Events() Events
	PendingFederations() PendingFederations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// UserUpdate carries the mutable profile fields; nil means unchanged.
type UserUpdate struct {
	Name     *string
	Role     *domain.Role
	Image    *string
	Location *string
}

// UserFilter narrows ListUsers. Zero value lists everyone.
type UserFilter struct {
	Role  domain.Role
	Limit uint64
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail expects the normalized (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByUsername expects the normalized (uppercase) username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByResetToken returns the user holding token only while its
	// expiry is strictly after now.
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (domain.User, error)

	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateUser inserts u and returns the store-assigned id. Unique
	// violations surface as ErrEmailTaken, ErrUsernameTaken or ErrGoogleIDTaken.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	UpdateUser(ctx context.Context, id int64, upd UserUpdate) error

	// LinkGoogleID sets google_id only when it is currently unset.
	LinkGoogleID(ctx context.Context, id int64, googleID string) error

	// SetResetToken overwrites any previous reset ticket.
	SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error

	// RedeemResetToken stores newHash and clears the ticket, but only while
	// id still holds token unexpired at now. Returns ErrNotFound otherwise,
	// so at most one redemption of a token succeeds.
	RedeemResetToken(ctx context.Context, id int64, token, newHash string, now time.Time) error

	// DeleteUser cascades to profiles and events (per schema).
	DeleteUser(ctx context.Context, id int64) error

	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, error)

	// ClearExpiredResetTokens is housekeeping; returns the number cleared.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type Profiles interface {
	GetArtistProfile(ctx context.Context, userID int64) (domain.ArtistProfile, error)
	GetVenueProfile(ctx context.Context, userID int64) (domain.VenueProfile, error)

	// Upsert* insert the profile or replace every column of an existing one.
	UpsertArtistProfile(ctx context.Context, p domain.ArtistProfile) error
	UpsertVenueProfile(ctx context.Context, p domain.VenueProfile) error
}

// EventUpdate carries the mutable event fields; nil means unchanged.
type EventUpdate struct {
	Title       *string
	Date        *time.Time
	Location    *string
	Description *string
	Price       *string
	Image       *string
}

// EventFilter narrows ListEvents. Zero value lists everything.
type EventFilter struct {
	CreatorID int64
	From      *time.Time
}

type Events interface {
	CreateEvent(ctx context.Context, e domain.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (domain.Event, error)

	// ListEvents orders by date ascending and joins the creator summary.
	ListEvents(ctx context.Context, f EventFilter) ([]domain.EventListing, error)

	UpdateEvent(ctx context.Context, id int64, upd EventUpdate) error
	DeleteEvent(ctx context.Context, id int64) error
}

type PendingFederations interface {
	// SavePendingFederation inserts p, or refreshes the claims and expiry of
	// the existing record for p.Subject. The stored record is returned; its
	// ID is preserved across refreshes.
	SavePendingFederation(ctx context.Context, p domain.PendingFederation) (domain.PendingFederation, error)

	// GetPendingFederation returns an unexpired record by id.
	GetPendingFederation(ctx context.Context, id string, now time.Time) (domain.PendingFederation, error)

	DeletePendingFederationBySubject(ctx context.Context, subject string) error

	// DeleteExpiredPendingFederations is housekeeping; returns rows removed.
	DeleteExpiredPendingFederations(ctx context.Context, now time.Time) (int64, error)
}

package domain

import (
	"strings"
	"time"
)

// Role is the marketplace role of an account.
type Role string

const (
	RoleArtist Role = "ARTIST"
	RoleVenue  Role = "VENUE"
	RoleUser   Role = "USER"
)

// ParseRole accepts a role in any case.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleArtist, RoleVenue, RoleUser:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// HasProfile reports whether accounts with this role carry a profile record.
func (r Role) HasProfile() bool { return r == RoleArtist || r == RoleVenue }

// Profile field defaults applied when a registration leaves them blank.
const (
	DefaultCategory = "UNSPECIFIED"
	DefaultLocation = "UNKNOWN"
)

type User struct {
	ID           int64
	Email        string // lowercase, unique
	Username     string // uppercase, unique
	Name         string // uppercase
	PasswordHash string // bcrypt; empty for federation-only accounts
	Role         Role
	GoogleID     string // empty until linked, never overwritten
	Image        string
	Location     string
	ResetToken   string
	ResetExpires *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can use password login.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

type ArtistProfile struct {
	UserID   int64
	Category string
	Location string
	Bio      string
	Price    string
	Image    string
}

type VenueProfile struct {
	UserID     int64
	Type       string
	Location   string
	Capacity   *int
	LookingFor string
	Image      string
}

// Account is a user together with whichever role profile exists.
type Account struct {
	User   User
	Artist *ArtistProfile
	Venue  *VenueProfile
}

// Image prefers the artist profile image, then the venue profile image.
func (a Account) Image() string {
	if a.Artist != nil && a.Artist.Image != "" {
		return a.Artist.Image
	}
	if a.Venue != nil && a.Venue.Image != "" {
		return a.Venue.Image
	}
	return ""
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUpper is the canonical form of usernames, names and the
// free-text profile fields.
func NormalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// OrDefault uppercases s, or returns def when s is blank.
func OrDefault(s, def string) string {
	if s = NormalizeUpper(s); s == "" {
		return def
	}
	return s
}

package saazsdk

import "time"

// ============================================================================
// Identity
// ============================================================================

// User is the account summary returned by every sign-in endpoint.
type User struct {
	ID       int64  `json:"id" example:"42"`
	Email    string `json:"email" example:"jane@example.com"`
	Name     string `json:"name" example:"JANE DOE"`
	Role     string `json:"role" example:"ARTIST"`
	Username string `json:"username" example:"JANEDOE"`
	Image    string `json:"image,omitempty"`
}

// AuthResponse is returned by register, login and federated login.
type AuthResponse struct {
	Message string `json:"message" example:"Login successful"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type CheckUsernameRequest struct {
	Username string `json:"username,omitempty" example:"janedoe"`
}

type CheckUsernameResponse struct {
	Available   bool     `json:"available"`
	Suggestions []string `json:"suggestions" example:"JANEDOE4821,JANEDOE1093,JANEDOE7730"`
}

// RegisterRequest creates a password account. Profile fields apply to
// ARTIST and VENUE roles.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required" example:"secret1"`
	Role     string `json:"role" validate:"required" example:"ARTIST"`
	Name     string `json:"name" validate:"required" example:"Jane Doe"`
	Username string `json:"username,omitempty"`

	Category   string `json:"category,omitempty" example:"Singers"`
	Location   string `json:"location,omitempty" example:"Mumbai"`
	Bio        string `json:"bio,omitempty"`
	Price      string `json:"price,omitempty"`
	Type       string `json:"type,omitempty"`
	Capacity   *int   `json:"capacity,omitempty"`
	LookingFor string `json:"lookingFor,omitempty"`
	Image      string `json:"image,omitempty"`
}

// LoginRequest authenticates by email (identifier contains "@") or username.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required" example:"janedoe"`
	Password   string `json:"password" validate:"required" example:"secret1"`
}

// GoogleLoginRequest carries either a fresh credential or the pending id
// returned by an earlier role_required response.
type GoogleLoginRequest struct {
	Credential string `json:"credential,omitempty"`
	PendingID  string `json:"pendingId,omitempty"`
	Role       string `json:"role,omitempty" example:"VENUE"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"jane@example.com"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ============================================================================
// Profiles
// ============================================================================

type ArtistProfile struct {
	Category string `json:"category"`
	Location string `json:"location"`
	Bio      string `json:"bio,omitempty"`
	Price    string `json:"price,omitempty"`
	Image    string `json:"image,omitempty"`
}

type VenueProfile struct {
	Type       string `json:"type"`
	Location   string `json:"location"`
	Capacity   *int   `json:"capacity,omitempty"`
	LookingFor string `json:"lookingFor,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Profile is the caller's own account, never including credentials.
type Profile struct {
	ID            int64          `json:"id"`
	Email         string         `json:"email"`
	Username      string         `json:"username"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Image         string         `json:"image,omitempty"`
	Location      string         `json:"location,omitempty"`
	GoogleLinked  bool           `json:"googleLinked"`
	CreatedAt     time.Time      `json:"createdAt"`
	ArtistProfile *ArtistProfile `json:"artistProfile"`
	VenueProfile  *VenueProfile  `json:"venueProfile"`
	Events        []Event        `json:"events"`
}

// PublicUser is the listing form of an account.
type PublicUser struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	ArtistProfile *ArtistProfile `json:"artistProfile"`
	VenueProfile  *VenueProfile  `json:"venueProfile"`
}

// UpdateProfileRequest edits the caller's profile; omitted fields are kept.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Image    *string `json:"image,omitempty"`
	Location *string `json:"location,omitempty"`

	Category   *string `json:"category,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	Price      *string `json:"price,omitempty"`
	Type       *string `json:"type,omitempty"`
	Capacity   *int    `json:"capacity,omitempty"`
	LookingFor *string `json:"lookingFor,omitempty"`
}

// ============================================================================
// Events
// ============================================================================

type EventCreator struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
}

type Event struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Date        time.Time     `json:"date"`
	Location    string        `json:"location"`
	Description string        `json:"description,omitempty"`
	Price       string        `json:"price,omitempty"`
	Image       string        `json:"image,omitempty"`
	Status      string        `json:"status" example:"UPCOMING" enums:"UPCOMING,RUNNING,COMPLETED"`
	CreatorID   int64         `json:"creatorId"`
	Creator     *EventCreator `json:"creator,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type EventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price,omitempty"`
	Image       string    `json:"image,omitempty"`
}

// UpdateEventRequest edits an event; omitted fields are kept.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	Price       *string    `json:"price,omitempty"`
	Image       *string    `json:"image,omitempty"`
}

// ============================================================================
// Health
// ============================================================================

type HealthChecks struct {
	Database string `json:"database"`
}

type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session credential.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the session-credential claims shared by every SAAZ service.
// The payload is {userId, role, iat, exp}; the registered subject mirrors
// userId so generic JWT tooling can still identify the principal.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric primary key of the authenticated user.
	UserID int64 `json:"userId"`

	// Role is the marketplace role at issuance: ARTIST, VENUE or USER.
	Role string `json:"role"`
}

// NewSessionClaims builds claims for a user session issued at now.
func NewSessionClaims(userID int64, role string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   role,
	}
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateSubject makes sure the token names a user.
func (c *Claims) ValidateSubject() error {
	if c.UserID <= 0 || c.Role == "" {
		return ErrInvalidClaim
	}
	return nil
}

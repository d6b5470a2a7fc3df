package service

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrDuplicateUsername     = errors.New("username already taken")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidAssertion      = errors.New("invalid federated assertion")
	ErrRoleRequired          = errors.New("role is required for new registration")
	ErrPendingExpired        = errors.New("pending federation not found or expired")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidOrExpiredToken = errors.New("reset token invalid or expired")
	ErrMailDispatch          = errors.New("failed to dispatch mail")
	ErrForbidden             = errors.New("forbidden")
	ErrEventNotFound         = errors.New("event not found")
	ErrLocationRequired      = errors.New("event location is required")
)

// RoleRequiredError is returned by federated login when the verified
// identity has no account yet and no role was supplied. PendingID names
// the cached claims so the caller can resubmit with just a role.
type RoleRequiredError struct {
	PendingID string
}

func (e *RoleRequiredError) Error() string { return ErrRoleRequired.Error() }

func (e *RoleRequiredError) Is(target error) bool { return target == ErrRoleRequired }

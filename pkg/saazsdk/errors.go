package saazsdk

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saazhq/saaz/pkg/httpx"
)

// Error codes carried in the "code" field of API error bodies.
const (
	CodeInvalidRequest        = "invalid_request"
	CodeDuplicateEmail        = "duplicate_email"
	CodeDuplicateUsername     = "duplicate_username"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeInvalidAssertion      = "invalid_assertion"
	CodeRoleRequired          = "role_required"
	CodePendingExpired        = "pending_expired"
	CodeUserNotFound          = "user_not_found"
	CodeInvalidOrExpiredToken = "invalid_or_expired_token"
	CodeMailDispatchFailed    = "mail_dispatch_failed"
	CodeUnauthorized          = "unauthorized"
	CodeForbidden             = "forbidden"
	CodeEventNotFound         = "event_not_found"
	CodeLocationRequired      = "location_required"
	CodeRateLimitExceeded     = "rate_limit_exceeded"
	CodeServerError           = "server_error"
)

// GenericMessage is shown when a failure carries no readable message.
const GenericMessage = "Something went wrong"

// APIError is a failed API call as reported by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// PendingID is set on role_required responses.
	PendingID string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-success response into an *APIError.
// Bodies that cannot be decoded, or carry no message, get GenericMessage.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       CodeServerError,
		Message:    GenericMessage,
	}

	var er httpx.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return apiErr
	}
	if er.Code != "" {
		apiErr.Code = er.Code
	}
	if er.Error != "" {
		apiErr.Message = er.Error
	}
	apiErr.PendingID = er.PendingID
	return apiErr
}

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/pkg/httpx"
	"github.com/saazhq/saaz/pkg/saazsdk"
	"github.com/saazhq/saaz/pkg/slogx"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrInvalidRequest, http.StatusBadRequest, saazsdk.CodeInvalidRequest, "Invalid request"},
	{service.ErrDuplicateEmail, http.StatusBadRequest, saazsdk.CodeDuplicateEmail, "User already exists"},
	{service.ErrDuplicateUsername, http.StatusBadRequest, saazsdk.CodeDuplicateUsername, "Username already taken"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, saazsdk.CodeInvalidCredentials, "Invalid credentials"},
	{service.ErrInvalidAssertion, http.StatusBadRequest, saazsdk.CodeInvalidAssertion, "Invalid Google token"},
	{service.ErrPendingExpired, http.StatusBadRequest, saazsdk.CodePendingExpired, "Sign-in expired, please try again"},
	{service.ErrUserNotFound, http.StatusNotFound, saazsdk.CodeUserNotFound, "User not found"},
	{service.ErrInvalidOrExpiredToken, http.StatusBadRequest, saazsdk.CodeInvalidOrExpiredToken, "Invalid or expired token"},
	{service.ErrMailDispatch, http.StatusInternalServerError, saazsdk.CodeMailDispatchFailed, "Failed to send email"},
	{service.ErrForbidden, http.StatusForbidden, saazsdk.CodeForbidden, "Not authorized"},
	{service.ErrEventNotFound, http.StatusNotFound, saazsdk.CodeEventNotFound, "Event not found"},
	{service.ErrLocationRequired, http.StatusBadRequest, saazsdk.CodeLocationRequired, "Location is required"},
}

// writeServiceError maps a service error to its HTTP response. Unmapped
// errors are logged and reported as 500 with fallback as the message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var roleErr *service.RoleRequiredError
	if errors.As(err, &roleErr) {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:     "Role is required for new registration",
			Code:      saazsdk.CodeRoleRequired,
			PendingID: roleErr.PendingID,
		})
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				slogx.FromContext(r.Context()).Error(fallback, slog.Any("error", err))
			}
			httpx.WriteError(w, m.status, m.code, m.message)
			return
		}
	}

	slogx.FromContext(r.Context()).Error(fallback, slog.Any("error", err))
	httpx.WriteError(w, http.StatusInternalServerError, saazsdk.CodeServerError, fallback)
}

// writeBindError reports a malformed or invalid request body.
func writeBindError(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, saazsdk.CodeInvalidRequest, err.Error())
}

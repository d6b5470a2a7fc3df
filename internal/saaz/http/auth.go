package http

import (
	"log/slog"
	"net/http"

	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/pkg/httpx"
	"github.com/saazhq/saaz/pkg/saazsdk"
	"github.com/saazhq/saaz/pkg/slogx"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	Identity   *service.IdentityService
	Federation *service.FederationService
	Reset      *service.ResetService
}

// CheckUsername godoc
//
//	@Summary		Check username availability
//	@Description	Reports whether a username is free and always offers three unused alternatives.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		saazsdk.CheckUsernameRequest	false	"Candidate username"
//	@Success		200		{object}	saazsdk.CheckUsernameResponse
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/auth/check-username [post]
func (h *AuthHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	// An unreadable body is checked as an empty candidate; this endpoint
	// always answers with suggestions.
	var req saazsdk.CheckUsernameRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		slogx.FromContext(r.Context()).Debug("check username body ignored", slog.Any("error", err))
		req = saazsdk.CheckUsernameRequest{}
	}

	res, err := h.Identity.CheckUsername(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err, "Failed to check username")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, saazsdk.CheckUsernameResponse{
		Available:   res.Available,
		Suggestions: res.Suggestions,
	})
}

// Register godoc
//
//	@Summary		Register
//	@Description	Creates a password account and its role profile, then signs in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		saazsdk.RegisterRequest	true	"Registration"
//	@Success		201		{object}	saazsdk.AuthResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"duplicate_email, duplicate_username, invalid_request"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req saazsdk.RegisterRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	sess, err := h.Identity.Register(r.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Username:   req.Username,
		Role:       req.Role,
		Category:   req.Category,
		Location:   req.Location,
		Bio:        req.Bio,
		Price:      req.Price,
		Type:       req.Type,
		Capacity:   req.Capacity,
		LookingFor: req.LookingFor,
		Image:      req.Image,
	})
	if err != nil {
		writeServiceError(w, r, err, "Registration failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAuthResponse("User registered successfully", sess))
}

// Login godoc
//
//	@Summary		Login
//	@Description	Signs in by email (identifier contains "@") or by username.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		saazsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	saazsdk.AuthResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_credentials"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req saazsdk.LoginRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	sess, err := h.Identity.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Login failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse("Login successful", sess))
}

// Google godoc
//
//	@Summary		Federated login
//	@Description	Signs in with a Google ID token. A new identity without a role gets
//	@Description	role_required with a pendingId; resubmit with the credential or the
//	@Description	pendingId plus a role to finish registration.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		saazsdk.GoogleLoginRequest	true	"Credential or pending id"
//	@Success		200		{object}	saazsdk.AuthResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"role_required, invalid_assertion, pending_expired"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/auth/google [post]
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req saazsdk.GoogleLoginRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	sess, err := h.Federation.Login(r.Context(), service.FederatedInput{
		Credential: req.Credential,
		PendingID:  req.PendingID,
		Role:       req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err, "Google login failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse("Google login successful", sess))
}

// ForgotPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Mails a one-hour reset link to the account's email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		saazsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	httpx.MessageResponse
//	@Failure		404		{object}	httpx.ErrorResponse	"user_not_found"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req saazsdk.ForgotPasswordRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	if err := h.Reset.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "Failed to send email")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Email sent")
}

// ResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Redeems a reset token and sets a new password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		saazsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	httpx.MessageResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_or_expired_token"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req saazsdk.ResetPasswordRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	if err := h.Reset.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, r, err, "Failed to reset password")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Password reset successful")
}

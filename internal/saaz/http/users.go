package http

import (
	"net/http"
	"time"

	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/pkg/httpx"
	"github.com/saazhq/saaz/pkg/saazsdk"
)

// UsersHandler serves the /api/users endpoints.
type UsersHandler struct {
	Profiles *service.ProfileService
	Now      func() time.Time
}

func (h *UsersHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, saazsdk.CodeUnauthorized, "Unauthorized")
	}
	return id, ok
}

// GetProfile godoc
//
//	@Summary		Get own profile
//	@Description	Returns the caller's account, role profile and events.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	saazsdk.Profile
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Failure		404	{object}	httpx.ErrorResponse	"user_not_found"
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/api/users/profile [get]
func (h *UsersHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	p, err := h.Profiles.GetProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfile(p, h.now()))
}

// UpdateProfile godoc
//
//	@Summary		Update own profile
//	@Description	Edits name, role, image and location, then creates or patches the
//	@Description	profile for the resulting role.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		saazsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	httpx.MessageResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/users/profile [put]
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req saazsdk.UpdateProfileRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	err := h.Profiles.UpdateProfile(r.Context(), id, service.ProfileUpdate{
		Name:       req.Name,
		Role:       req.Role,
		Image:      req.Image,
		Location:   req.Location,
		Category:   req.Category,
		Bio:        req.Bio,
		Price:      req.Price,
		Type:       req.Type,
		Capacity:   req.Capacity,
		LookingFor: req.LookingFor,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to update profile")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Profile updated successfully")
}

// DeleteProfile godoc
//
//	@Summary		Delete own account
//	@Description	Deletes the caller's account with its profiles and events.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	httpx.MessageResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/api/users/profile [delete]
func (h *UsersHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.Profiles.DeleteProfile(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Failed to delete profile")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Profile deleted successfully")
}

// List godoc
//
//	@Summary		List users
//	@Description	Public directory of accounts, optionally filtered by role.
//	@Tags			Users
//	@Produce		json
//	@Param			role	query		string	false	"ARTIST, VENUE or USER"
//	@Success		200		{array}		saazsdk.PublicUser
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/users [get]
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Profiles.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch users")
		return
	}

	out := make([]saazsdk.PublicUser, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toPublicUser(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

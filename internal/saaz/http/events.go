package http

import (
	"net/http"
	"strconv"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/pkg/httpx"
	"github.com/saazhq/saaz/pkg/saazsdk"
)

// EventsHandler serves the /api/events endpoints.
type EventsHandler struct {
	Events *service.EventService
}

func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusNotFound, saazsdk.CodeEventNotFound, "Event not found")
		return 0, false
	}
	return id, true
}

// List godoc
//
//	@Summary		List events
//	@Description	All events by date ascending, with creator summary and derived status.
//	@Tags			Events
//	@Produce		json
//	@Success		200	{array}		saazsdk.Event
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/api/events [get]
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Events.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch events")
		return
	}

	now := h.Events.Clock()
	out := make([]saazsdk.Event, 0, len(listings))
	for _, l := range listings {
		out = append(out, toEventListing(l, now))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Get godoc
//
//	@Summary		Get event
//	@Tags			Events
//	@Produce		json
//	@Param			id	path		int	true	"Event id"
//	@Success		200	{object}	saazsdk.Event
//	@Failure		404	{object}	httpx.ErrorResponse	"event_not_found"
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/api/events/{id} [get]
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	e, err := h.Events.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch event")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toEvent(e, h.Events.Clock()))
}

// Create godoc
//
//	@Summary		Create event
//	@Description	Artists and venues only.
//	@Tags			Events
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		saazsdk.EventRequest	true	"Event"
//	@Success		201		{object}	saazsdk.Event
//	@Failure		400		{object}	httpx.ErrorResponse	"location_required, invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/events [post]
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req saazsdk.EventRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	role, _ := domain.ParseRole(httpx.RoleFromContext(r.Context()))
	e, err := h.Events.CreateEvent(r.Context(), id, role, service.EventInput{
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to create event")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toEvent(e, h.Events.Clock()))
}

// Update godoc
//
//	@Summary		Update event
//	@Description	Creator only.
//	@Tags			Events
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int							true	"Event id"
//	@Param			body	body		saazsdk.UpdateEventRequest	true	"Fields to change"
//	@Success		200		{object}	saazsdk.Event
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/events/{id} [put]
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req saazsdk.UpdateEventRequest
	if err := httpx.BindJSON(w, r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	e, err := h.Events.UpdateEvent(r.Context(), caller, id, service.EventPatch{
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to update event")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toEvent(e, h.Events.Clock()))
}

// Delete godoc
//
//	@Summary		Delete event
//	@Description	Creator only.
//	@Tags			Events
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Event id"
//	@Success		200	{object}	httpx.MessageResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Failure		403	{object}	httpx.ErrorResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/api/events/{id} [delete]
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	if err := h.Events.DeleteEvent(r.Context(), caller, id); err != nil {
		writeServiceError(w, r, err, "Failed to delete event")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Event deleted successfully")
}

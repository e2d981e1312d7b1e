package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/service"
)

// EventHandler serves community events and volunteer registration.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// HandleList returns events, each with isRegistered set for the caller.
//
// HTTP: GET /api/events?category=Workshop&when=upcoming&sortBy=popular
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events := h.events.List(viewer(r), service.EventQuery{
		Category: q.Get("category"),
		When:     q.Get("when"),
		SortBy:   q.Get("sortBy"),
	})
	writeJSON(w, http.StatusOK, events)
}

// HandleGet returns one event.
//
// HTTP: GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(viewer(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleCreate schedules an event organised by the caller.
//
// HTTP: POST /api/events
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in service.NewEvent
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Create(id.Author(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// HandleRegister signs the caller up as a volunteer. Signing up twice is
// harmless; signing up for a full event is 409.
//
// HTTP: POST /api/events/{id}/registration
func (h *EventHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	event, err := h.events.Register(r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleUnregister withdraws the caller's registration.
//
// HTTP: DELETE /api/events/{id}/registration
func (h *EventHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	event, err := h.events.Unregister(r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleUpdate applies an admin patch.
//
// HTTP: PATCH /api/events/{id}
// Auth: Admin
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Update(r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/service"
)

// TicketHandler serves the support desk. Every route requires a session;
// the service decides which tickets the caller may see.
type TicketHandler struct {
	tickets *service.TicketService
	logger  *slog.Logger
}

// NewTicketHandler creates a TicketHandler.
func NewTicketHandler(tickets *service.TicketService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, logger: logger}
}

// HandleList returns the caller's tickets, or every ticket for admins.
//
// HTTP: GET /api/tickets
func (h *TicketHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.tickets.List(id))
}

// HandleGet returns one ticket the caller may see.
//
// HTTP: GET /api/tickets/{id}
func (h *TicketHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	t, err := h.tickets.Get(id, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleCreate files a ticket as the caller.
//
// HTTP: POST /api/tickets
// REQUEST BODY: {"title": "...", "description": "...", "category": "Grievance", "priority": "high"}
func (h *TicketHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in service.NewTicket
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	t, err := h.tickets.Create(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// RespondRequest is the body of HandleRespond.
type RespondRequest struct {
	Message string `json:"message"`
}

// HandleRespond appends a reply from the caller.
//
// HTTP: POST /api/tickets/{id}/responses
func (h *TicketHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req RespondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.tickets.Respond(r.Context(), id, r.PathValue("id"), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleUpdate applies an admin patch (status, priority, assignee).
//
// HTTP: PATCH /api/tickets/{id}
// Auth: Admin
func (h *TicketHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.TicketPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	t, err := h.tickets.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleClose marks a ticket resolved.
//
// HTTP: POST /api/tickets/{id}/close
// Auth: Admin
func (h *TicketHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	t, err := h.tickets.Close(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/service"
)

// ChatHandler serves the community chat rooms.
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// HandleRooms lists the rooms.
//
// HTTP: GET /api/chat/rooms
func (h *ChatHandler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chat.Rooms())
}

// HandleMessages returns the latest messages in a room, oldest first.
//
// HTTP: GET /api/chat/rooms/{room}/messages?limit=50
func (h *ChatHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, apperror.ValidationFailed("limit", "limit must be a positive number"))
			return
		}
		limit = n
	}

	msgs, err := h.chat.Messages(r.PathValue("room"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// PostMessageRequest is the body of HandlePost.
type PostMessageRequest struct {
	Text string `json:"text"`
}

// HandlePost sends a message as the caller.
//
// HTTP: POST /api/chat/rooms/{room}/messages
func (h *ChatHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.chat.Post(r.PathValue("room"), id.Author(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

package service

import (
	"log/slog"
	"strings"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

// Chat history paging.
const (
	DefaultChatLimit = 50
	MaxChatLimit     = 200
	MaxChatLength    = 1000
)

// ChatService runs the community chat rooms.
type ChatService struct {
	store  *store.ChatStore
	logger *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(s *store.ChatStore, logger *slog.Logger) *ChatService {
	return &ChatService{store: s, logger: logger}
}

// Rooms lists the chat rooms.
func (s *ChatService) Rooms() []model.ChatRoom {
	return s.store.Rooms()
}

// Messages returns the latest messages in room, oldest first. limit is
// clamped to [1, MaxChatLimit]; zero selects DefaultChatLimit.
func (s *ChatService) Messages(room string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	limit = min(limit, MaxChatLimit)

	msgs, ok := s.store.Messages(room, limit)
	if !ok {
		return nil, apperror.NotFound("chat room", room)
	}
	return msgs, nil
}

// Post sends text to room as author.
func (s *ChatService) Post(room string, author model.Author, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, apperror.ValidationFailed("text", "message cannot be empty")
	}
	if len(text) > MaxChatLength {
		return model.ChatMessage{}, apperror.ValidationFailed("text", "message is too long")
	}

	msg, ok := s.store.Post(room, author, text)
	if !ok {
		return model.ChatMessage{}, apperror.NotFound("chat room", room)
	}

	s.logger.Debug("chat message posted", slog.String("room", room), slog.String("author", author.ID))
	return msg, nil
}

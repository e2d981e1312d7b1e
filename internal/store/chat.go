package store

import (
	"slices"
	"sync"

	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
)

// DefaultChatHistory is the number of messages kept per room when
// NewChatStore is given a non-positive capacity.
const DefaultChatHistory = 200

// ChatRooms are the fixed community channels.
var ChatRooms = []model.ChatRoom{
	{ID: "general", Name: "General Discussion"},
	{ID: "events", Name: "Events & Volunteering"},
	{ID: "issues", Name: "Issue Updates"},
	{ID: "announcements", Name: "Official Announcements"},
}

// ChatStore keeps a bounded message history per room. Once a room is full
// the oldest message is dropped for each new one.
type ChatStore struct {
	mu       sync.RWMutex
	clock    clock.Clock
	capacity int
	messages map[string][]model.ChatMessage // room id -> oldest first
}

// NewChatStore creates an empty store for ChatRooms.
func NewChatStore(c clock.Clock, capacity int) *ChatStore {
	if capacity <= 0 {
		capacity = DefaultChatHistory
	}
	messages := make(map[string][]model.ChatMessage, len(ChatRooms))
	for _, r := range ChatRooms {
		messages[r.ID] = []model.ChatMessage{}
	}
	return &ChatStore{clock: c, capacity: capacity, messages: messages}
}

// Rooms returns the room list.
func (s *ChatStore) Rooms() []model.ChatRoom {
	return slices.Clone(ChatRooms)
}

// Post appends a message to room. ok is false if the room doesn't exist.
func (s *ChatStore) Post(room string, author model.Author, text string) (model.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.messages[room]
	if !ok {
		return model.ChatMessage{}, false
	}

	msg := model.ChatMessage{
		ID:         newID(),
		Text:       text,
		Author:     author.ID,
		AuthorName: author.Name,
		Room:       room,
		Timestamp:  s.clock.Now(),
	}

	start := max(0, len(history)+1-s.capacity)
	next := make([]model.ChatMessage, 0, len(history)-start+1)
	next = append(next, history[start:]...)
	next = append(next, msg)
	s.messages[room] = next

	return msg, true
}

// Messages returns up to limit of the most recent messages in room, oldest
// first. A non-positive limit returns the whole history.
func (s *ChatStore) Messages(room string, limit int) ([]model.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.messages[room]
	if !ok {
		return nil, false
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return slices.Clone(history), true
}

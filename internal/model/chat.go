package model

import "time"

// ChatRoom is a named community channel.
type ChatRoom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChatMessage is a single message posted to a room.
type ChatMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	Room       string    `json:"room"`
	Timestamp  time.Time `json:"timestamp"`
}

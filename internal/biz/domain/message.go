package domain

import (
	"strings"
	"time"
)

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message represents a chat log entry
type Message struct {
	ID        string    `json:"id" bson:"id"`
	ChatID    string    `json:"chat_id" bson:"chat_id"`
	Text      string    `json:"text" bson:"text"`
	Sender    Sender    `json:"sender" bson:"sender"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// MessageCreatedEvent is delivered when a document is created under
// chats/{chatId}/messages/{messageId}
type MessageCreatedEvent struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Path   string `json:"path"`
}

// NeedsReply reports whether the event is a non-empty user message
func (e *MessageCreatedEvent) NeedsReply() bool {
	return e.Sender == SenderUser && e.Text != ""
}

// ChatID extracts the chat ID from the document path.
// Returns "" when the path has fewer than two segments.
func (e *MessageCreatedEvent) ChatID() string {
	parts := strings.Split(e.Path, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// MessageID extracts the message ID from the document path, if present
func (e *MessageCreatedEvent) MessageID() string {
	parts := strings.Split(e.Path, "/")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}

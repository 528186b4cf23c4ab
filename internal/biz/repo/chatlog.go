package repo

import (
	"context"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
)

// ChatLogRepo is the chat log repository interface.
// Messages live under chats/{chatID}/messages.
type ChatLogRepo interface {
	// Append stores a message in the chat's log and returns it with ID and
	// Timestamp filled in
	Append(ctx context.Context, msg domain.Message) (domain.Message, error)

	// List returns up to limit of the most recent messages, oldest first
	List(ctx context.Context, chatID string, limit int) ([]domain.Message, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}

package service

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/usecase"
)

const maxHistoryLimit = 200

// MessageView is a chat log entry as returned to clients
type MessageView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatService handles "message created" events. Every failure is
// swallowed and logged at debug level; callers always acknowledge.
type ChatService struct {
	chat   *usecase.ChatReplyUsecase
	logger zerolog.Logger
}

// NewChatService creates a new chat service
func NewChatService(chat *usecase.ChatReplyUsecase) *ChatService {
	return &ChatService{
		chat:   chat,
		logger: log.With().Str("component", "chat").Logger(),
	}
}

// HandleRaw decodes a JSON event and handles it
func (s *ChatService) HandleRaw(ctx context.Context, body []byte) *domain.Message {
	var ev domain.MessageCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.logger.Debug().Err(err).Msg("Error in chat_reply: malformed event")
		return nil
	}
	return s.HandleEvent(ctx, &ev)
}

// HandleEvent generates and stores a reply for a user message.
// It returns the stored reply, or nil when nothing was appended.
func (s *ChatService) HandleEvent(ctx context.Context, ev *domain.MessageCreatedEvent) (reply *domain.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug().Interface("panic", r).Msg("Error in chat_reply")
			reply = nil
		}
	}()

	reply, err := s.chat.HandleMessageCreated(ctx, ev)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", ev.Path).Msg("Error in chat_reply")
		return nil
	}
	return reply
}

// ListMessages returns up to limit recent messages of a chat, oldest first
func (s *ChatService) ListMessages(ctx context.Context, chatID string, limit int) ([]MessageView, error) {
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	messages, err := s.chat.History(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			ID:        m.ID,
			Text:      m.Text,
			Sender:    string(m.Sender),
			Timestamp: m.Timestamp,
		})
	}
	return views, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

// DefaultChatTimeout bounds a single chat reply generation
const DefaultChatTimeout = 30 * time.Second

// ChatConfig configures the chat responder
type ChatConfig struct {
	Timeout time.Duration
}

// ChatReplyUsecase generates a reply for each new user message and appends
// it to the chat log
type ChatReplyUsecase struct {
	evaluator repo.Evaluator
	chatLog   repo.ChatLogRepo
	prompts   PromptConfig
	cfg       ChatConfig
	logger    zerolog.Logger
}

// NewChatReplyUsecase creates a new chat reply usecase
func NewChatReplyUsecase(
	evaluator repo.Evaluator,
	chatLog repo.ChatLogRepo,
	prompts PromptConfig,
	cfg ChatConfig,
) *ChatReplyUsecase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultChatTimeout
	}
	return &ChatReplyUsecase{
		evaluator: evaluator,
		chatLog:   chatLog,
		prompts:   prompts.FillDefaults(),
		cfg:       cfg,
		logger:    log.With().Str("component", "chat").Logger(),
	}
}

// HandleMessageCreated replies to a newly created chat message.
// Returns (nil, nil) when the event needs no reply: non-user sender, empty
// text, a path without a chat ID, or an empty model reply.
func (uc *ChatReplyUsecase) HandleMessageCreated(ctx context.Context, ev *domain.MessageCreatedEvent) (*domain.Message, error) {
	if ev == nil || !ev.NeedsReply() {
		return nil, nil
	}
	if uc.evaluator == nil {
		return nil, domain.ErrEvaluatorUnavailable
	}

	chatID := ev.ChatID()
	if chatID == "" {
		uc.logger.Debug().Str("path", ev.Path).Msg("Event path has no chat ID, skipping")
		return nil, nil
	}

	conv := uc.buildConversation(ctx, chatID, ev)
	prompt := uc.prompts.RenderChatPrompt(conv.LastN(uc.prompts.MaxHistoryCount), ev.Text)

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	reply, err := uc.evaluator.Generate(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate chat reply: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, nil
	}

	saved, err := uc.chatLog.Append(ctx, domain.Message{
		ChatID: chatID,
		Text:   reply,
		Sender: domain.SenderAI,
	})
	if err != nil {
		return nil, fmt.Errorf("append chat reply: %w", err)
	}

	uc.logger.Info().Str("chat_id", chatID).Str("message_id", saved.ID).Msg("Chat reply appended")
	return &saved, nil
}

// History returns the most recent messages of a chat, oldest first
func (uc *ChatReplyUsecase) History(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.chatLog.List(ctx, chatID, limit)
}

func (uc *ChatReplyUsecase) buildConversation(ctx context.Context, chatID string, ev *domain.MessageCreatedEvent) *domain.Conversation {
	current := &domain.Message{
		ID:     ev.MessageID(),
		ChatID: chatID,
		Text:   ev.Text,
		Sender: ev.Sender,
	}
	conv := &domain.Conversation{ChatID: chatID, Current: current}

	if uc.prompts.MaxHistoryCount <= 0 {
		return conv
	}

	// +1: the triggering message is usually already in the log
	history, err := uc.chatLog.List(ctx, chatID, uc.prompts.MaxHistoryCount+1)
	if err != nil {
		uc.logger.Warn().Err(err).Str("chat_id", chatID).Msg("Failed to load chat history")
		return conv
	}
	conv.History = history
	return conv
}

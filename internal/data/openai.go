package data

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAISettings configures an OpenAI-compatible evaluator
type OpenAISettings struct {
	APIKey       string
	BaseURL      string // Optional, for OpenAI-compatible providers
	Model        string
	SystemPrompt string // Optional system message
	Temperature  float32
	MaxTokens    int
}

// openAIEvaluator implements repo.Evaluator using the OpenAI chat completion API
type openAIEvaluator struct {
	client   *openai.Client
	settings OpenAISettings
}

// NewOpenAIEvaluator creates an OpenAI-compatible evaluator
func NewOpenAIEvaluator(settings OpenAISettings) (repo.Evaluator, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if settings.Model == "" {
		settings.Model = defaultOpenAIModel
	}

	config := openai.DefaultConfig(settings.APIKey)
	if settings.BaseURL != "" {
		config.BaseURL = settings.BaseURL
	}

	return &openAIEvaluator{
		client:   openai.NewClientWithConfig(config),
		settings: settings,
	}, nil
}

// Generate implements repo.Evaluator
func (e *openAIEvaluator) Generate(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if e.settings.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: e.settings.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.settings.Model,
		Messages:    messages,
		Temperature: e.settings.Temperature,
		MaxTokens:   e.settings.MaxTokens,
	})
	if err != nil {
		return "", &domain.EvaluatorError{Provider: "openai", Err: fmt.Errorf("chat completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", &domain.EvaluatorError{Provider: "openai", Err: domain.ErrEmptyResponse}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name implements repo.Evaluator
func (e *openAIEvaluator) Name() string {
	return "openai:" + e.settings.Model
}

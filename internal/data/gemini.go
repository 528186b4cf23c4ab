package data

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

// GeminiSettings configures a Gemini evaluator.
// Either APIKey (Gemini API backend) or Project+Location (Vertex AI backend)
// must be set.
type GeminiSettings struct {
	APIKey          string
	Project         string
	Location        string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// UseVertex reports whether the settings target the Vertex AI backend
func (s GeminiSettings) UseVertex() bool {
	return s.APIKey == "" && s.Project != ""
}

// geminiEvaluator implements repo.Evaluator on google.golang.org/genai
type geminiEvaluator struct {
	client   *genai.Client
	settings GeminiSettings
	provider string
}

// NewGeminiEvaluator creates an evaluator backed by the Gemini API or Vertex AI
func NewGeminiEvaluator(ctx context.Context, settings GeminiSettings) (repo.Evaluator, error) {
	if settings.Model == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}

	cfg := &genai.ClientConfig{}
	provider := "gemini"
	switch {
	case settings.APIKey != "":
		cfg.APIKey = settings.APIKey
		cfg.Backend = genai.BackendGeminiAPI
	case settings.Project != "":
		cfg.Project = settings.Project
		cfg.Location = settings.Location
		cfg.Backend = genai.BackendVertexAI
		provider = "vertex"
	default:
		return nil, fmt.Errorf("gemini: api key or project is required")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiEvaluator{client: client, settings: settings, provider: provider}, nil
}

// Generate implements repo.Evaluator
func (e *geminiEvaluator) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if e.settings.MaxOutputTokens > 0 {
		config.MaxOutputTokens = e.settings.MaxOutputTokens
	}
	if e.settings.Temperature > 0 {
		config.Temperature = genai.Ptr(e.settings.Temperature)
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.settings.Model, genai.Text(prompt), config)
	if err != nil {
		return "", &domain.EvaluatorError{Provider: e.provider, Err: err}
	}

	text := extractGeminiText(resp)
	if text == "" && (resp == nil || len(resp.Candidates) == 0) {
		return "", &domain.EvaluatorError{Provider: e.provider, Err: domain.ErrEmptyResponse}
	}
	return text, nil
}

// Name implements repo.Evaluator
func (e *geminiEvaluator) Name() string {
	return fmt.Sprintf("%s:%s", e.provider, e.settings.Model)
}

// extractGeminiText concatenates the text parts of the first candidate
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

package data

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

// Evaluator providers
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
)

// Chat log backends
const (
	ChatLogSQLite = "sqlite"
	ChatLogMongo  = "mongo"
)

// EvaluatorOptions selects and configures one evaluator
type EvaluatorOptions struct {
	Provider string
	Gemini   GeminiSettings
	OpenAI   OpenAISettings
	Breaker  BreakerSettings
}

// ChatLogOptions selects and configures the chat log backend
type ChatLogOptions struct {
	Backend       string
	DBPath        string
	MongoURI      string
	MongoDatabase string
	Collection    string
}

// Options contains everything needed to build the repositories
type Options struct {
	Filter        EvaluatorOptions
	Chat          EvaluatorOptions
	LookupURL     string
	LookupTimeout time.Duration
	ChatLog       ChatLogOptions
}

// Repositories contains all repositories
type Repositories struct {
	FilterEvaluator repo.Evaluator
	ChatEvaluator   repo.Evaluator
	Lookup          repo.ContextLookup
	ChatLog         repo.ChatLogRepo
}

// NewRepositories creates all repositories.
// An evaluator that cannot be built is left nil and logged; callers fall
// back to their safe defaults. A chat log that cannot be opened is an error.
func NewRepositories(ctx context.Context, opts Options) (*Repositories, error) {
	chatLog, err := NewChatLogRepo(ctx, opts.ChatLog)
	if err != nil {
		return nil, err
	}

	filterEval, err := NewEvaluator(ctx, opts.Filter)
	if err != nil {
		log.Warn().Err(err).Str("provider", opts.Filter.Provider).Msg("Filter evaluator disabled")
	}

	chatEval, err := NewEvaluator(ctx, opts.Chat)
	if err != nil {
		log.Warn().Err(err).Str("provider", opts.Chat.Provider).Msg("Chat evaluator disabled")
	}

	return &Repositories{
		FilterEvaluator: filterEval,
		ChatEvaluator:   chatEval,
		Lookup:          NewDuckDuckGoLookup(opts.LookupURL, opts.LookupTimeout),
		ChatLog:         chatLog,
	}, nil
}

// Close releases repository resources
func (r *Repositories) Close() error {
	if r.ChatLog != nil {
		return r.ChatLog.Close()
	}
	return nil
}

// NewEvaluator builds the evaluator named by opts.Provider, wrapped in a
// circuit breaker when one is configured
func NewEvaluator(ctx context.Context, opts EvaluatorOptions) (repo.Evaluator, error) {
	var (
		ev  repo.Evaluator
		err error
	)

	switch opts.Provider {
	case ProviderGemini, "":
		if opts.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini: api key is required")
		}
		ev, err = NewGeminiEvaluator(ctx, opts.Gemini)
	case ProviderVertex:
		settings := opts.Gemini
		settings.APIKey = ""
		ev, err = NewGeminiEvaluator(ctx, settings)
	case ProviderOpenAI:
		ev, err = NewOpenAIEvaluator(opts.OpenAI)
	default:
		return nil, fmt.Errorf("unknown evaluator provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithBreaker(ev, opts.Breaker), nil
}

// NewChatLogRepo opens the chat log backend named by opts.Backend
func NewChatLogRepo(ctx context.Context, opts ChatLogOptions) (repo.ChatLogRepo, error) {
	switch opts.Backend {
	case ChatLogSQLite, "":
		return NewSQLiteChatLogRepo(opts.DBPath, opts.Collection)
	case ChatLogMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return NewMongoChatLogRepo(connectCtx, opts.MongoURI, opts.MongoDatabase, opts.Collection)
	default:
		return nil, fmt.Errorf("unknown chat log backend %q", opts.Backend)
	}
}

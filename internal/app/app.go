// Package app wires configuration, repositories, usecases and services
// for every entrypoint.
package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz"
	"github.com/tubesieve/tubesieve/internal/conf"
	"github.com/tubesieve/tubesieve/internal/data"
	"github.com/tubesieve/tubesieve/internal/logging"
	"github.com/tubesieve/tubesieve/internal/service"
)

// App holds the wired application
type App struct {
	Config   *conf.Config
	Repos    *data.Repositories
	Usecases *biz.Usecases

	Filter      *service.FilterService
	Chat        *service.ChatService
	Diagnostics *service.DiagnosticsService
}

// LoadConfig loads .env, reads and validates the configuration and sets up logging
func LoadConfig() (*conf.Config, error) {
	envErr := godotenv.Load()

	cfg := conf.LoadFromEnv()
	logging.Setup(cfg.Debug, nil)

	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// New builds repositories, usecases and services from cfg
func New(ctx context.Context, cfg *conf.Config) (*App, error) {
	// Initialize repository layer
	repos, err := data.NewRepositories(ctx, cfg.ToDataOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	// Initialize usecase layer
	usecases := biz.NewUsecases(biz.Dependencies{
		FilterEvaluator: repos.FilterEvaluator,
		ChatEvaluator:   repos.ChatEvaluator,
		Lookup:          repos.Lookup,
		ChatLog:         repos.ChatLog,
	}, biz.Settings{
		Prompts:    cfg.ToPromptConfig(),
		Classifier: cfg.ToClassifierConfig(),
		Chat:       cfg.ToChatConfig(),
	})

	// Initialize service layer
	diagnostics := service.NewDiagnosticsService(
		service.DiagnosticsInfo{ProjectID: cfg.GCP.ProjectID, Region: cfg.GCP.Region},
		repos.FilterEvaluator,
		repos.ChatEvaluator,
		usecases.Classifier,
		repos.ChatLog,
	)

	log.Info().
		Str("filter_evaluator", usecases.Classifier.EvaluatorName()).
		Str("chat_log", cfg.ChatLog.Backend).
		Bool("context_lookup", cfg.Filter.ContextLookup).
		Msg("Application wired")

	return &App{
		Config:      cfg,
		Repos:       repos,
		Usecases:    usecases,
		Filter:      service.NewFilterService(usecases.Classifier),
		Chat:        service.NewChatService(usecases.Chat),
		Diagnostics: diagnostics,
	}, nil
}

// Close releases resources held by the repositories
func (a *App) Close() error {
	return a.Repos.Close()
}

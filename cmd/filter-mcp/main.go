package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/app"
	"github.com/tubesieve/tubesieve/mcpserver"
)

var version = "v1.0.0"

// Serves classify_title and lookup_context over stdio. Logs go to stderr.
func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	srv := mcpserver.NewServer(a.Usecases.Classifier, a.Repos.Lookup, version)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("MCP server error")
	}
}

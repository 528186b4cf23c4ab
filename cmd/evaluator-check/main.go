package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/app"
)

// Runs the diagnostics probes once and prints the results.
// Exits non-zero when any probe failed.
func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	results := a.Diagnostics.Run(ctx)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := false
	for _, name := range names {
		fmt.Printf("%-18s %s\n", name, results[name])
		if strings.HasPrefix(results[name], "FAILED") {
			failed = true
		}
	}

	if failed {
		a.Close()
		os.Exit(1)
	}
}

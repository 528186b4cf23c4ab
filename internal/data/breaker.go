package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

// BreakerSettings configures the evaluator circuit breaker
type BreakerSettings struct {
	FailureThreshold uint32        // Consecutive failures before opening (0 disables the breaker)
	Cooldown         time.Duration // Time spent open before a half-open probe
	MaxHalfOpen      uint32        // Requests allowed while half-open
}

// breakerEvaluator fails fast while the wrapped evaluator keeps failing.
// An open breaker surfaces domain.ErrEvaluatorUnavailable.
type breakerEvaluator struct {
	next repo.Evaluator
	cb   *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps an evaluator in a circuit breaker. A zero
// FailureThreshold returns next unchanged.
func WithBreaker(next repo.Evaluator, settings BreakerSettings) repo.Evaluator {
	if next == nil || settings.FailureThreshold == 0 {
		return next
	}
	if settings.MaxHalfOpen == 0 {
		settings.MaxHalfOpen = 1
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: settings.MaxHalfOpen,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("component", "breaker").
				Str("evaluator", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Evaluator circuit breaker state changed")
		},
	})

	return &breakerEvaluator{next: next, cb: cb}
}

// Generate implements repo.Evaluator
func (b *breakerEvaluator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.next.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", domain.ErrEvaluatorUnavailable, err)
	}
	return text, err
}

// Name implements repo.Evaluator
func (b *breakerEvaluator) Name() string {
	return b.next.Name()
}

// State returns the breaker state for diagnostics
func (b *breakerEvaluator) State() string {
	return b.cb.State().String()
}

// BreakerState reports the breaker state of ev, or "" when ev has no breaker
func BreakerState(ev repo.Evaluator) string {
	if b, ok := ev.(*breakerEvaluator); ok {
		return b.State()
	}
	return ""
}

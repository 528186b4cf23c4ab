package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

// DefaultClassifyTimeout bounds a single evaluator call
const DefaultClassifyTimeout = 5 * time.Second

// ClassifierConfig configures the preference classifier
type ClassifierConfig struct {
	Timeout      time.Duration // Evaluator call timeout (0 uses DefaultClassifyTimeout)
	UseContext   bool          // Enrich the prompt with a topic lookup
	LogResponses bool          // Log raw evaluator output
}

// ClassifierUsecase decides whether a title matches a user's stated preference
type ClassifierUsecase struct {
	evaluator repo.Evaluator
	lookup    repo.ContextLookup
	prompts   PromptConfig
	cfg       ClassifierConfig
	logger    zerolog.Logger
}

// NewClassifierUsecase creates a new classifier usecase.
// evaluator may be nil, in which case every valid query falls back to keep.
// lookup may be nil.
func NewClassifierUsecase(
	evaluator repo.Evaluator,
	lookup repo.ContextLookup,
	prompts PromptConfig,
	cfg ClassifierConfig,
) *ClassifierUsecase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClassifyTimeout
	}
	return &ClassifierUsecase{
		evaluator: evaluator,
		lookup:    lookup,
		prompts:   prompts.FillDefaults(),
		cfg:       cfg,
		logger:    log.With().Str("component", "classifier").Logger(),
	}
}

// Classify returns a decision for q. The only error it returns is a
// *domain.ValidationError for missing input, in which case the evaluator is
// not called. Evaluator failures of any kind yield domain.FallbackOutcome().
func (uc *ClassifierUsecase) Classify(ctx context.Context, q domain.PreferenceQuery) (outcome domain.ClassificationOutcome, err error) {
	if err := q.Validate(); err != nil {
		return domain.ClassificationOutcome{Decision: domain.DecisionKeep}, err
	}

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error().Interface("panic", r).Msg("Evaluator panicked, defaulting to keep")
			outcome, err = domain.FallbackOutcome(), nil
		}
	}()

	if uc.evaluator == nil {
		uc.logger.Warn().Msg("No evaluator configured, defaulting to keep")
		return domain.FallbackOutcome(), nil
	}

	prompt := uc.BuildPrompt(ctx, q)

	raw, genErr := uc.generate(ctx, prompt)
	if genErr != nil {
		uc.logger.Warn().
			Err(genErr).
			Str("evaluator", uc.evaluator.Name()).
			Msg("AI processing failed - defaulting to keep video to avoid false positives")
		return domain.FallbackOutcome(), nil
	}

	outcome = domain.DecideFromResponse(raw)

	ev := uc.logger.Info().
		Str("evaluator", uc.evaluator.Name()).
		Str("decision", outcome.Decision.String())
	if uc.cfg.LogResponses {
		ev = ev.Str("raw_response", outcome.Rationale).Str("title", q.SubjectTitle)
	}
	ev.Msg("AI filtering decision")

	return outcome, nil
}

// BuildPrompt renders the decision prompt, adding topic context when enabled
func (uc *ClassifierUsecase) BuildPrompt(ctx context.Context, q domain.PreferenceQuery) string {
	topicContext := ""
	if uc.cfg.UseContext && uc.lookup != nil {
		topicContext = uc.lookup.Lookup(ctx, q.SubjectTitle)
	}
	return uc.prompts.RenderFilterPrompt(q, topicContext)
}

// EvaluatorName returns the configured evaluator's name, or "none"
func (uc *ClassifierUsecase) EvaluatorName() string {
	if uc.evaluator == nil {
		return "none"
	}
	return uc.evaluator.Name()
}

func (uc *ClassifierUsecase) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("evaluator panic: %v", r)}
			}
		}()
		text, err := uc.evaluator.Generate(callCtx, prompt)
		done <- result{text: text, err: err}
	}()

	// Providers that ignore ctx must not hold the caller past the timeout
	select {
	case r := <-done:
		if r.err == nil && callCtx.Err() != nil {
			return "", fmt.Errorf("generate: %w", callCtx.Err())
		}
		if r.err != nil {
			return "", fmt.Errorf("generate: %w", r.err)
		}
		return r.text, nil
	case <-callCtx.Done():
		return "", fmt.Errorf("generate: %w", callCtx.Err())
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
	"github.com/tubesieve/tubesieve/internal/biz/usecase"
)

const (
	defaultProbeTimeout = 15 * time.Second
	helloPrompt         = "Say hello!"
)

// Probe names
const (
	ProbeConfiguration   = "configuration"
	ProbeFilterEvaluator = "filter_evaluator"
	ProbeFilterDecision  = "filter_decision"
	ProbeChatEvaluator   = "chat_evaluator"
	ProbeChatLog         = "chat_log"
)

// DiagnosticsInfo is echoed by the configuration probe
type DiagnosticsInfo struct {
	ProjectID string
	Region    string
}

// DiagnosticsService probes every external dependency and reports
// "SUCCESS - ..." or "FAILED - ..." per probe
type DiagnosticsService struct {
	info            DiagnosticsInfo
	filterEvaluator repo.Evaluator
	chatEvaluator   repo.Evaluator
	classifier      *usecase.ClassifierUsecase
	chatLog         repo.ChatLogRepo
	probeTimeout    time.Duration
	logger          zerolog.Logger
}

// NewDiagnosticsService creates a new diagnostics service. Any dependency may be nil.
func NewDiagnosticsService(
	info DiagnosticsInfo,
	filterEvaluator repo.Evaluator,
	chatEvaluator repo.Evaluator,
	classifier *usecase.ClassifierUsecase,
	chatLog repo.ChatLogRepo,
) *DiagnosticsService {
	return &DiagnosticsService{
		info:            info,
		filterEvaluator: filterEvaluator,
		chatEvaluator:   chatEvaluator,
		classifier:      classifier,
		chatLog:         chatLog,
		probeTimeout:    defaultProbeTimeout,
		logger:          log.With().Str("component", "diagnostics").Logger(),
	}
}

// Run executes all probes sequentially
func (s *DiagnosticsService) Run(ctx context.Context) map[string]string {
	results := map[string]string{
		ProbeConfiguration: success(fmt.Sprintf("project=%s region=%s filter=%s chat=%s",
			orUnset(s.info.ProjectID), orUnset(s.info.Region),
			evaluatorName(s.filterEvaluator), evaluatorName(s.chatEvaluator))),
	}

	results[ProbeFilterEvaluator] = s.probe(ctx, func(ctx context.Context) (string, error) {
		return generateWith(ctx, s.filterEvaluator, helloPrompt)
	})
	results[ProbeFilterDecision] = s.probe(ctx, s.probeDecision)
	results[ProbeChatEvaluator] = s.probe(ctx, func(ctx context.Context) (string, error) {
		return generateWith(ctx, s.chatEvaluator, helloPrompt)
	})
	results[ProbeChatLog] = s.probe(ctx, func(ctx context.Context) (string, error) {
		if s.chatLog == nil {
			return "", fmt.Errorf("not configured")
		}
		if err := s.chatLog.Ping(ctx); err != nil {
			return "", err
		}
		return "reachable", nil
	})

	for name, result := range results {
		s.logger.Debug().Str("probe", name).Str("result", result).Msg("Diagnostics probe")
	}
	return results
}

// probeDecision runs the canonical filtering prompt and reports the raw answer
func (s *DiagnosticsService) probeDecision(ctx context.Context) (string, error) {
	if s.classifier == nil {
		return "", fmt.Errorf("classifier not configured")
	}

	query := domain.NewPreferenceQuery("I hate gaming videos", "Hitman 3 Speedrun")
	raw, err := generateWith(ctx, s.filterEvaluator, s.classifier.BuildPrompt(ctx, query))
	if err != nil {
		return "", err
	}

	outcome := domain.DecideFromResponse(raw)
	return fmt.Sprintf("decision=%s raw=%q", outcome.Decision, outcome.Rationale), nil
}

func (s *DiagnosticsService) probe(ctx context.Context, fn func(context.Context) (string, error)) (result string) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = failed(fmt.Errorf("panic: %v", r))
		}
	}()

	out, err := fn(probeCtx)
	if err != nil {
		return failed(err)
	}
	return success(out)
}

func generateWith(ctx context.Context, ev repo.Evaluator, prompt string) (string, error) {
	if ev == nil {
		return "", fmt.Errorf("evaluator not configured")
	}
	return ev.Generate(ctx, prompt)
}

func evaluatorName(ev repo.Evaluator) string {
	if ev == nil {
		return "none"
	}
	return ev.Name()
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func success(detail string) string {
	return "SUCCESS - " + detail
}

func failed(err error) string {
	return "FAILED - " + err.Error()
}

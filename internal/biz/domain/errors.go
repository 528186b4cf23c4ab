package domain

import (
	"errors"
	"strings"
)

var (
	// ErrEvaluatorUnavailable is returned when no evaluator is configured or
	// the circuit breaker is open
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")

	// ErrEmptyResponse is returned when the evaluator produced no candidates
	ErrEmptyResponse = errors.New("evaluator returned no content")
)

// ValidationError reports missing required input. It is the only error the
// classifier surfaces to callers.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (missing: " + strings.Join(e.Fields, ", ") + ")"
}

// IsValidationError reports whether err is or wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// EvaluatorError wraps any failure of the outbound model call
type EvaluatorError struct {
	Provider string
	Err      error
}

func (e *EvaluatorError) Error() string {
	return e.Provider + " evaluator: " + e.Err.Error()
}

func (e *EvaluatorError) Unwrap() error {
	return e.Err
}

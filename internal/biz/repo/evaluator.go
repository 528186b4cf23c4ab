package repo

import "context"

// Evaluator is the text-generation capability the classifier and the chat
// responder delegate to. Implementations hold no session state across calls.
type Evaluator interface {
	// Generate sends prompt and returns the raw model text
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider and model, e.g. "gemini:gemini-1.5-flash"
	Name() string
}

// EvaluatorFunc adapts a plain function to the Evaluator interface
type EvaluatorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt)
func (f EvaluatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name returns a fixed identifier
func (f EvaluatorFunc) Name() string {
	return "func"
}

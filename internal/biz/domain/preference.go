package domain

import "strings"

// Decision is the binary outcome of preference classification
type Decision string

const (
	DecisionKeep   Decision = "keep"
	DecisionRemove Decision = "remove"
)

// String returns the wire form of the decision
func (d Decision) String() string {
	return string(d)
}

// PreferenceQuery is a user's like/dislike statement paired with the title
// of the item being evaluated (value object)
type PreferenceQuery struct {
	Statement    string
	SubjectTitle string
}

// NewPreferenceQuery builds a query, trimming surrounding whitespace
func NewPreferenceQuery(statement, subjectTitle string) PreferenceQuery {
	return PreferenceQuery{
		Statement:    strings.TrimSpace(statement),
		SubjectTitle: strings.TrimSpace(subjectTitle),
	}
}

// Validate checks that both fields are present
func (q PreferenceQuery) Validate() error {
	var missing []string
	if strings.TrimSpace(q.Statement) == "" {
		missing = append(missing, "statement")
	}
	if strings.TrimSpace(q.SubjectTitle) == "" {
		missing = append(missing, "subjectTitle")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Title and preferences are required"}
	}
	return nil
}

// ClassificationOutcome is the result of classifying one PreferenceQuery.
// WasFallback implies Decision == DecisionKeep.
type ClassificationOutcome struct {
	Decision    Decision
	Rationale   string
	WasFallback bool
}

// FallbackOutcome is substituted whenever the evaluator cannot produce a decision
func FallbackOutcome() ClassificationOutcome {
	return ClassificationOutcome{Decision: DecisionKeep, WasFallback: true}
}

// DecideFromResponse applies the decision rule to raw evaluator text.
// The text is trimmed and lowercased; any occurrence of "remove" means Remove,
// everything else (including empty or garbled text) means Keep.
func DecideFromResponse(raw string) ClassificationOutcome {
	normalized := NormalizeResponse(raw)
	decision := DecisionKeep
	if strings.Contains(normalized, string(DecisionRemove)) {
		decision = DecisionRemove
	}
	return ClassificationOutcome{Decision: decision, Rationale: normalized}
}

// NormalizeResponse trims whitespace and lowercases evaluator output
func NormalizeResponse(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

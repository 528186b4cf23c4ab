package repo

import "context"

// ContextLookup retrieves descriptive text about a topic.
// Lookup never fails: any transport or parse problem yields "".
type ContextLookup interface {
	Lookup(ctx context.Context, topic string) string
}

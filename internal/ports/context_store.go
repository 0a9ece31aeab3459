package ports

import "context"

// ContextEntry is one prior interaction returned by the memory collaborator.
// Score is an opaque distance; lower means more relevant. The orchestrator
// applies a fixed cutoff and never interprets the value beyond that.
type ContextEntry struct {
	Question string
	Answer   string
	Score    float64
}

// ContextStore is the semantic conversation memory collaborator. Both Store
// and Retrieve are best-effort from the orchestrator's point of view: errors
// are logged and never fail a turn.
type ContextStore interface {
	Retrieve(ctx context.Context, sessionKey, query string) ([]ContextEntry, error)
	Store(ctx context.Context, sessionKey, question, answer string, toolsUsed []string) error
	Clear(ctx context.Context, sessionKey string) error
}

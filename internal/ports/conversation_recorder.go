package ports

import (
	"context"
	"time"
)

// ToolCallLog records one executed tool call within an interaction.
type ToolCallLog struct {
	Tool          string
	Arguments     map[string]any
	ResultSummary string
	Duration      time.Duration
}

// Interaction is one full user-message-in, assistant-response-out cycle.
type Interaction struct {
	SessionKey string
	UserText   string
	ToolCalls  []ToolCallLog
	Response   string
	ModelCalls int
	Duration   time.Duration
	At         time.Time
}

// ConversationRecorder persists interactions for observability. Calls are
// fire-and-forget: a recorder failure must never block or fail a turn.
type ConversationRecorder interface {
	Record(ctx context.Context, interaction Interaction) error
}

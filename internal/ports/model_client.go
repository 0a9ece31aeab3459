package ports

import (
	"context"

	"github.com/bnema/entertainbot/internal/domain"
)

// ModelClient sends a conversation plus the static tool catalog to a remote
// chat-completions endpoint and parses the reply. Passing a nil/empty tool
// catalog withholds tools, forcing a text answer. It only proposes tool
// calls; it never executes them.
type ModelClient interface {
	Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResult, error)
}

// ToolExecutor dispatches one model-requested tool invocation and returns a
// serialized result. The result is always string-shaped, success or failure;
// routing and source faults are folded into error payloads, never returned
// as Go errors to the orchestration loop.
type ToolExecutor interface {
	Execute(ctx context.Context, call domain.ToolInvocation) string
}

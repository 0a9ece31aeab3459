// Package application drives the conversation: it owns the bounded
// tool-calling loop between the session history, the model, and the tool
// router.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/entertainbot/internal/domain"
	"github.com/bnema/entertainbot/internal/ports"
)

// MaxToolIterations caps model round-trips that may request tools within one
// turn. One forced no-tools call may follow, so a turn makes at most
// MaxToolIterations+1 model calls.
const MaxToolIterations = 5

// resultSummaryLen bounds tool output stored in interaction logs.
const resultSummaryLen = 200

// errTurnFailed is the only error callers see for a failed turn. Upstream
// detail (statuses, response fragments) stays in the logs.
var errTurnFailed = errors.New("something went wrong while answering, please try again in a moment")

// Orchestrator handles one user turn end to end: acquire the session,
// enrich with remembered context, run the tool loop, commit the exchange.
type Orchestrator struct {
	sessions ports.SessionStore
	model    ports.ModelClient
	tools    ports.ToolExecutor
	memory   ports.ContextStore
	recorder ports.ConversationRecorder
	logger   *slog.Logger
	clock    ports.Clock
}

func NewOrchestrator(
	sessions ports.SessionStore,
	model ports.ModelClient,
	tools ports.ToolExecutor,
	memory ports.ContextStore,
	recorder ports.ConversationRecorder,
	logger *slog.Logger,
	clock ports.Clock,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Orchestrator{
		sessions: sessions,
		model:    model,
		tools:    tools,
		memory:   memory,
		recorder: recorder,
		logger:   logger,
		clock:    clock,
	}
}

// HandleTurn processes one user message and returns the assistant's reply
// together with the session key (generated when the caller passed none).
// On a hard model failure the session history is rolled back to its
// pre-turn state, so a failed turn leaves no trace.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionKey, userText string) (string, string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", sessionKey, fmt.Errorf("empty user message")
	}
	if sessionKey == "" {
		sessionKey = uuid.NewString()
	}

	history, created, release := o.sessions.Acquire(sessionKey)
	defer release()

	if created {
		o.logger.Info("session created", "session", sessionKey)
	}

	start := o.clock.Now()

	// Snapshot before any turn mutation, injected context included, so a
	// failed turn rolls back to exactly the pre-turn history.
	preTurnLen := history.Len()
	o.injectRememberedContext(ctx, sessionKey, history, userText)
	history.AddUser(userText)

	reply, toolLogs, modelCalls, err := o.runToolLoop(ctx, history)
	if err != nil {
		history.TruncateTo(preTurnLen)
		o.logger.Error("turn failed", "session", sessionKey, "error", err)
		return "", sessionKey, errTurnFailed
	}

	history.AddAssistant(reply)
	o.commitExchange(ctx, sessionKey, userText, reply, toolLogs, modelCalls, start)

	return reply, sessionKey, nil
}

// ClearSession destroys the session and its remembered context. Clearing an
// unknown session is a no-op.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionKey string) {
	o.sessions.Clear(sessionKey)
	if err := o.memory.Clear(ctx, sessionKey); err != nil {
		o.logger.Warn("clearing remembered context failed", "session", sessionKey, "error", err)
	}
	o.logger.Info("session cleared", "session", sessionKey)
}

// runToolLoop alternates model calls and tool dispatches until the model
// answers in text or the iteration cap forces a final no-tools call.
func (o *Orchestrator) runToolLoop(ctx context.Context, history *domain.History) (string, []ports.ToolCallLog, int, error) {
	var toolLogs []ports.ToolCallLog
	modelCalls := 0

	for iteration := 0; iteration < MaxToolIterations; iteration++ {
		result, err := o.model.Complete(ctx, history.Messages(), domain.Catalog())
		modelCalls++
		if err != nil {
			return "", nil, modelCalls, fmt.Errorf("model call failed: %w", err)
		}

		if !result.HasToolCalls() {
			return o.finalText(result), toolLogs, modelCalls, nil
		}

		history.AddToolRequest(result.ToolCalls)
		for _, call := range result.ToolCalls {
			toolStart := o.clock.Now()
			output := o.tools.Execute(ctx, call)
			history.AddToolResult(call.ID, call.Name, output)

			toolLogs = append(toolLogs, ports.ToolCallLog{
				Tool:          call.Name,
				Arguments:     call.Arguments,
				ResultSummary: summarize(output),
				Duration:      o.clock.Now().Sub(toolStart),
			})
			o.logger.Info("tool dispatched", "tool", call.Name, "iteration", iteration+1)
		}
	}

	// Cap reached with the model still asking for tools. Withhold the
	// catalog so it has to answer with what it gathered.
	o.logger.Warn("tool iteration cap reached, forcing final answer")
	result, err := o.model.Complete(ctx, history.Messages(), nil)
	modelCalls++
	if err != nil {
		return "", nil, modelCalls, fmt.Errorf("final model call failed: %w", err)
	}
	return o.finalText(result), toolLogs, modelCalls, nil
}

const fallbackReply = "I wasn't able to put together an answer this time. Could you rephrase the question?"

func (o *Orchestrator) finalText(result domain.ModelResult) string {
	reply := strings.TrimSpace(result.Content)
	if reply == "" {
		o.logger.Warn("model returned an empty final answer", "finish_reason", result.FinishReason)
		return fallbackReply
	}
	return reply
}

// injectRememberedContext asks the memory collaborator for prior exchanges
// relevant to the new message. Best-effort: failures are logged, the turn
// proceeds without context.
func (o *Orchestrator) injectRememberedContext(ctx context.Context, sessionKey string, history *domain.History, userText string) {
	entries, err := o.memory.Retrieve(ctx, sessionKey, userText)
	if err != nil {
		o.logger.Warn("context retrieval failed", "session", sessionKey, "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Relevant earlier exchanges from this conversation:")
	for _, entry := range entries {
		fmt.Fprintf(&b, "\nQ: %s\nA: %s", entry.Question, entry.Answer)
	}
	history.InjectContext(b.String())
	o.logger.Info("remembered context injected", "session", sessionKey, "entries", len(entries))
}

// commitExchange stores the finished exchange in the memory collaborator and
// the interaction log. Both are fire-and-forget.
func (o *Orchestrator) commitExchange(ctx context.Context, sessionKey, userText, reply string, toolLogs []ports.ToolCallLog, modelCalls int, start time.Time) {
	toolsUsed := make([]string, 0, len(toolLogs))
	for _, log := range toolLogs {
		toolsUsed = append(toolsUsed, log.Tool)
	}

	if err := o.memory.Store(ctx, sessionKey, userText, reply, toolsUsed); err != nil {
		o.logger.Warn("storing exchange in memory failed", "session", sessionKey, "error", err)
	}

	interaction := ports.Interaction{
		SessionKey: sessionKey,
		UserText:   userText,
		ToolCalls:  toolLogs,
		Response:   reply,
		ModelCalls: modelCalls,
		Duration:   o.clock.Now().Sub(start),
		At:         start,
	}
	if err := o.recorder.Record(ctx, interaction); err != nil {
		o.logger.Warn("recording interaction failed", "session", sessionKey, "error", err)
	}
}

func summarize(output string) string {
	if len(output) <= resultSummaryLen {
		return output
	}
	return output[:resultSummaryLen] + "..."
}

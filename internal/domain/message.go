package domain

import "encoding/json"

// Role identifies who produced a conversation message. The values match the
// OpenAI-compatible chat completions wire format so histories can be sent to
// the model without translation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation history, already in wire shape.
//
// An assistant message carries either Content (final text) or ToolCalls
// (a tool request turn), never both. A tool message carries the serialized
// result for exactly one call id.
type Message struct {
	Role       Role             `json:"role"`
	Content    string           `json:"content,omitempty"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

// IsToolRequest reports whether the message is an assistant tool request.
func (m Message) IsToolRequest() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// ToolCallRecord is the wire encoding of one requested call inside an
// assistant tool-request message.
type ToolCallRecord struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Function FunctionRecord `json:"function"`
}

type FunctionRecord struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolInvocation is a single model-requested call, parsed out of the wire
// shape. Name is a raw string because the model is an untrusted caller and
// may request anything; the router resolves it against the closed catalog.
type ToolInvocation struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Record converts the invocation back to its wire encoding.
func (t ToolInvocation) Record() ToolCallRecord {
	args, err := json.Marshal(t.Arguments)
	if err != nil {
		args = []byte("{}")
	}
	return ToolCallRecord{
		ID:   t.ID,
		Type: "function",
		Function: FunctionRecord{
			Name:      t.Name,
			Arguments: string(args),
		},
	}
}

// TokenUsage reports token accounting for one model call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelResult is the discriminated outcome of one model call: either Content
// is set (terminal text) or ToolCalls is non-empty (the loop continues).
type ModelResult struct {
	Content      string
	ToolCalls    []ToolInvocation
	Model        string
	FinishReason string
	Usage        TokenUsage
}

// HasToolCalls reports whether the model requested tool execution.
func (r ModelResult) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant text message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolRequestMessage builds an assistant message carrying tool calls.
func ToolRequestMessage(calls []ToolInvocation) Message {
	records := make([]ToolCallRecord, 0, len(calls))
	for _, call := range calls {
		records = append(records, call.Record())
	}
	return Message{Role: RoleAssistant, ToolCalls: records}
}

// ToolResultMessage builds a tool message answering one call id.
func ToolResultMessage(callID, name, result string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Name: name, Content: result}
}

package domain

// History is the ordered message log for one session. The first element is
// always the system prompt. It is not safe for concurrent use; the session
// store serializes access per session.
type History struct {
	maxLen   int
	messages []Message
}

const DefaultMaxHistory = 20

// NewHistory constructs a history seeded with the system prompt.
func NewHistory(systemPrompt string, maxLen int) *History {
	if maxLen < 2 {
		maxLen = DefaultMaxHistory
	}
	h := &History{maxLen: maxLen}
	h.messages = append(h.messages, Message{Role: RoleSystem, Content: systemPrompt})
	return h
}

// Messages returns the live message slice in wire order. Callers must not
// mutate it.
func (h *History) Messages() []Message {
	return h.messages
}

// Len returns the number of messages including the system prompt.
func (h *History) Len() int {
	return len(h.messages)
}

// AddUser appends a user message and trims.
func (h *History) AddUser(content string) {
	h.messages = append(h.messages, UserMessage(content))
	h.trim()
}

// AddAssistant appends an assistant text message and trims.
func (h *History) AddAssistant(content string) {
	h.messages = append(h.messages, AssistantMessage(content))
	h.trim()
}

// InjectContext inserts a system-role context block so it lands immediately
// before the next user message.
func (h *History) InjectContext(content string) {
	h.messages = append(h.messages, Message{Role: RoleSystem, Content: content})
	h.trim()
}

// AddToolRequest appends an assistant tool-request message. Trimming is
// deferred until the matching results arrive so a request is never separated
// from its results mid-turn.
func (h *History) AddToolRequest(calls []ToolInvocation) {
	h.messages = append(h.messages, ToolRequestMessage(calls))
}

// AddToolResult appends one tool result keyed by call id. No trimming here
// either; the pairing invariant requires request and results to move as one
// structural unit.
func (h *History) AddToolResult(callID, name, result string) {
	h.messages = append(h.messages, ToolResultMessage(callID, name, result))
}

// TruncateTo discards every message at index n and beyond. Used to roll a
// turn's partial additions back after a hard model failure.
func (h *History) TruncateTo(n int) {
	if n < 1 {
		n = 1
	}
	if n < len(h.messages) {
		h.messages = h.messages[:n]
	}
}

// Clear drops everything except the system prompt.
func (h *History) Clear() {
	h.messages = h.messages[:1]
}

// trim drops the oldest structural units until the history fits maxLen. The
// system prompt at index 0 is never removed, and an assistant tool request is
// always removed together with all of its tool results.
func (h *History) trim() {
	for len(h.messages) > h.maxLen {
		unit := h.unitSizeAt(1)
		if 1+unit >= len(h.messages) {
			// The only remaining unit is the one just appended; dropping
			// it would empty the conversation, so stop. A single oversized
			// unit (one tool request with many results) can therefore keep
			// the history above maxLen until a later add displaces it.
			return
		}
		h.messages = append(h.messages[:1], h.messages[1+unit:]...)
	}
}

// unitSizeAt returns the size of the structural unit starting at index i:
// 1 for standalone messages, 1+N for a tool request with N results.
func (h *History) unitSizeAt(i int) int {
	if !h.messages[i].IsToolRequest() {
		return 1
	}
	size := 1
	for j := i + 1; j < len(h.messages) && h.messages[j].Role == RoleTool; j++ {
		size++
	}
	return size
}

package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryPinsSystemPrompt(t *testing.T) {
	h := NewHistory("be helpful", 4)

	for i := 0; i < 10; i++ {
		h.AddUser(fmt.Sprintf("message %d", i))
		h.AddAssistant(fmt.Sprintf("reply %d", i))
	}

	messages := h.Messages()
	assert.LessOrEqual(t, len(messages), 4)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, "be helpful", messages[0].Content)
}

func TestHistoryTrimsOldestFirst(t *testing.T) {
	h := NewHistory("sys", 4)

	h.AddUser("oldest")
	h.AddAssistant("old reply")
	h.AddUser("newer")
	h.AddAssistant("new reply")

	messages := h.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "old reply", messages[1].Content)
	assert.Equal(t, "new reply", messages[3].Content)
}

func TestHistoryKeepsToolUnitsTogether(t *testing.T) {
	h := NewHistory("sys", 6)

	h.AddUser("question")
	h.AddToolRequest([]ToolInvocation{{ID: "call_1", Name: "search_anime"}})
	h.AddToolResult("call_1", "search_anime", `{"count": 1}`)
	h.AddAssistant("answer")

	// Push past the cap so the oldest units get dropped.
	h.AddUser("second question")
	h.AddToolRequest([]ToolInvocation{{ID: "call_2", Name: "search_manga"}})
	h.AddToolResult("call_2", "search_manga", `{"count": 2}`)
	h.AddAssistant("second answer")

	// No orphaned tool result: every RoleTool message must directly follow
	// its request or another result of the same request.
	messages := h.Messages()
	for i, message := range messages {
		if message.Role != RoleTool {
			continue
		}
		require.Greater(t, i, 0)
		previous := messages[i-1]
		assert.True(t, previous.IsToolRequest() || previous.Role == RoleTool,
			"tool result at %d has no preceding request", i)
	}
}

func TestHistoryToolRequestDefersTrim(t *testing.T) {
	h := NewHistory("sys", 3)

	h.AddUser("question")
	h.AddToolRequest([]ToolInvocation{{ID: "call_1", Name: "search_anime"}})
	h.AddToolResult("call_1", "search_anime", "result one")
	h.AddToolResult("call_1", "search_anime", "result two")

	// Over the cap mid-turn is allowed; the unit must stay intact until the
	// next trimming add.
	assert.Greater(t, h.Len(), 3)

	h.AddAssistant("answer")
	messages := h.Messages()
	for _, message := range messages {
		assert.NotEqual(t, "question", message.Content)
	}
}

func TestHistoryOversizedSingleUnitSurvivesUntilDisplaced(t *testing.T) {
	h := NewHistory("sys", 4)

	h.AddToolRequest([]ToolInvocation{{ID: "c", Name: "search_anime"}})
	for i := 0; i < 5; i++ {
		h.AddToolResult("c", "search_anime", fmt.Sprintf("result %d", i))
	}

	// The sole unit exceeds the cap on its own; it stays whole and over
	// budget until the next trimming add.
	assert.Greater(t, h.Len(), 4)
	assert.True(t, h.Messages()[1].IsToolRequest())

	h.AddAssistant("answer")

	// The trimming add displaces the oversized unit in one piece; no
	// orphaned tool results remain.
	assert.LessOrEqual(t, h.Len(), 4)
	for _, message := range h.Messages() {
		assert.NotEqual(t, RoleTool, message.Role)
	}
}

func TestHistoryTruncateTo(t *testing.T) {
	h := NewHistory("sys", 20)
	h.AddUser("one")
	h.AddAssistant("two")
	preTurn := h.Len()
	h.AddUser("three")
	h.AddToolRequest([]ToolInvocation{{ID: "c", Name: "search_anime"}})
	h.AddToolResult("c", "search_anime", "r")

	h.TruncateTo(preTurn)
	require.Equal(t, preTurn, h.Len())
	assert.Equal(t, "two", h.Messages()[2].Content)

	// Never truncates away the system prompt.
	h.TruncateTo(0)
	require.Equal(t, 1, h.Len())
	assert.Equal(t, RoleSystem, h.Messages()[0].Role)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory("sys", 20)
	h.AddUser("one")
	h.AddAssistant("two")

	h.Clear()
	require.Equal(t, 1, h.Len())
	assert.Equal(t, RoleSystem, h.Messages()[0].Role)
}

func TestHistoryInjectContext(t *testing.T) {
	h := NewHistory("sys", 20)
	h.InjectContext("Q: earlier question\nA: earlier answer")
	h.AddUser("follow-up")

	messages := h.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, RoleSystem, messages[1].Role)
	assert.Contains(t, messages[1].Content, "earlier question")
}

func TestToolRequestMessageShape(t *testing.T) {
	message := ToolRequestMessage([]ToolInvocation{
		{ID: "call_1", Name: "search_anime", Arguments: map[string]any{"query": "Naruto"}},
	})

	assert.Equal(t, RoleAssistant, message.Role)
	assert.True(t, message.IsToolRequest())
	require.Len(t, message.ToolCalls, 1)
	assert.Equal(t, "call_1", message.ToolCalls[0].ID)
	assert.Equal(t, "function", message.ToolCalls[0].Type)
	assert.Equal(t, "search_anime", message.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"query": "Naruto"}`, message.ToolCalls[0].Function.Arguments)
}

func TestToolResultMessageShape(t *testing.T) {
	message := ToolResultMessage("call_1", "search_anime", `{"count": 1}`)

	assert.Equal(t, RoleTool, message.Role)
	assert.Equal(t, "call_1", message.ToolCallID)
	assert.Equal(t, "search_anime", message.Name)
	assert.Equal(t, `{"count": 1}`, message.Content)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "A chemistry teacher turns to crime.",
		StripHTML("<p>A chemistry teacher   turns\nto crime.</p>"))
	assert.Equal(t, "plain text", StripHTML("plain text"))
	assert.Equal(t, "", StripHTML("<b></b>"))
}

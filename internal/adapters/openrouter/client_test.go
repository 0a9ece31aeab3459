package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/entertainbot/internal/domain"
)

func newTestClient(t *testing.T, serverURL string, maxAttempts int) (*Client, *[]time.Duration) {
	t.Helper()

	client, err := NewClient(Config{
		APIKey:      "test-key",
		Model:       "test/model",
		BaseURL:     serverURL,
		MaxAttempts: maxAttempts,
	})
	require.NoError(t, err)

	var slept []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return client, &slept
}

func textResponse(content string) string {
	return `{
		"model": "test/model",
		"choices": [{"finish_reason": "stop", "message": {"content": ` + mustJSON(content) + `}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
	}`
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func TestCompleteTextResponse(t *testing.T) {
	var gotAuth string
	var gotBody completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(textResponse("Naruto is a shinobi.")))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	messages := []domain.Message{
		domain.UserMessage("Tell me about Naruto"),
	}
	result, err := client.Complete(context.Background(), messages, domain.Catalog())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test/model", gotBody.Model)
	assert.Equal(t, "auto", gotBody.ToolChoice)
	assert.Len(t, gotBody.Tools, len(domain.Catalog()))
	assert.Equal(t, "Naruto is a shinobi.", result.Content)
	assert.False(t, result.HasToolCalls())
	assert.Equal(t, "stop", result.FinishReason)
	assert.Equal(t, 16, result.Usage.TotalTokens)
}

func TestCompleteWithoutToolsOmitsCatalog(t *testing.T) {
	var gotBody completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(textResponse("final answer")))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	_, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Empty(t, gotBody.Tools)
	assert.Empty(t, gotBody.ToolChoice)
}

func TestCompleteToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"model": "test/model",
			"choices": [{"finish_reason": "tool_calls", "message": {
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "search_anime", "arguments": "{\"query\": \"Naruto\", \"limit\": 5}"}
				}]
			}}]
		}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	result, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("Naruto?")}, domain.Catalog())
	require.NoError(t, err)
	require.True(t, result.HasToolCalls())
	require.Len(t, result.ToolCalls, 1)

	call := result.ToolCalls[0]
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "search_anime", call.Name)
	assert.Equal(t, "Naruto", call.Arguments["query"])
	assert.Equal(t, float64(5), call.Arguments["limit"])
}

func TestCompleteSkipsMalformedToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"model": "test/model",
			"choices": [{"finish_reason": "tool_calls", "message": {
				"tool_calls": [
					{"id": "bad", "type": "function", "function": {"name": "search_anime", "arguments": "{not json"}},
					{"id": "good", "type": "function", "function": {"name": "search_manga", "arguments": "{\"query\": \"Berserk\"}"}}
				]
			}}]
		}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	result, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("q")}, domain.Catalog())
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "good", result.ToolCalls[0].ID)
}

func TestCompleteRetriesThenSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(textResponse("recovered")))
	}))
	defer server.Close()

	client, slept := newTestClient(t, server.URL, 2)

	result, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("q")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Content)
	assert.Equal(t, 2, attempts)
	assert.Len(t, *slept, 1)
}

func TestCompleteExhaustionWrapsModelUnavailable(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	_, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("q")}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
	assert.Equal(t, 2, attempts)
}

func TestCompleteHonorsRetryAfter(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(textResponse("ok")))
	}))
	defer server.Close()

	client, slept := newTestClient(t, server.URL, 2)

	_, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("q")}, nil)
	require.NoError(t, err)
	require.Len(t, *slept, 1)
	assert.Equal(t, 3*time.Second, (*slept)[0])
}

func TestCompleteClientErrorFailsImmediately(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid key"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	_, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("q")}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrModelUnavailable))
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Equal(t, 1, attempts)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model": "test/model", "choices": []}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	_, err := client.Complete(context.Background(), []domain.Message{domain.UserMessage("q")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestCompleteContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, []domain.Message{domain.UserMessage("q")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{Model: "m", BaseURL: "u"})
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "k", BaseURL: "u"})
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "k", Model: "m"})
	assert.Error(t, err)
}

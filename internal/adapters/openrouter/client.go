// Package openrouter talks to OpenRouter's OpenAI-compatible chat
// completions endpoint, including tool/function calling.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bnema/entertainbot/internal/domain"
	"github.com/bnema/entertainbot/internal/ports"
)

const (
	completionsPath  = "/chat/completions"
	maxResponseBytes = 4 << 20

	defaultTimeout     = 60 * time.Second
	defaultMaxAttempts = 2
	defaultRetryAfter  = 5 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// Config holds the OpenRouter connection settings.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements ports.ModelClient against OpenRouter. Transient
// failures (429, 5xx, timeouts) are retried with a small attempt cap; on
// exhaustion the failure surfaces as a hard error wrapping
// domain.ErrModelUnavailable.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	timeout     time.Duration
	maxAttempts int
	httpClient  *http.Client
	logger      *slog.Logger

	sleep func(context.Context, time.Duration) error
}

var _ ports.ModelClient = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model id is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		httpClient:  httpClient,
		logger:      logger,
		sleep:       sleepContext,
	}, nil
}

// Wire shapes.

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  domain.ParameterSchema `json:"parameters"`
}

type completionRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
	Tools       []wireTool       `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content   string                  `json:"content"`
			ToolCalls []domain.ToolCallRecord `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage domain.TokenUsage `json:"usage"`
}

// Complete sends the conversation to the model. When tools is non-empty the
// catalog is attached with tool_choice "auto", letting the model decide;
// with an empty catalog the model must answer in text.
func (c *Client) Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResult, error) {
	request := completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	if len(tools) > 0 {
		request.Tools = make([]wireTool, 0, len(tools))
		for _, tool := range tools {
			request.Tools = append(request.Tools, wireTool{
				Type: "function",
				Function: wireFunction{
					Name:        string(tool.Name),
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}
		request.ToolChoice = "auto"
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return domain.ModelResult{}, fmt.Errorf("encode completion request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.logger.Info("model request",
			"model", c.model, "messages", len(messages), "has_tools", len(tools) > 0, "attempt", attempt)

		start := time.Now()
		result, retryAfter, err := c.sendOnce(ctx, payload)
		if err == nil {
			c.logger.Info("model response",
				"model", result.Model, "has_content", result.Content != "",
				"tool_calls", len(result.ToolCalls), "finish_reason", result.FinishReason,
				"duration_ms", time.Since(start).Milliseconds())
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ModelResult{}, ctxErr
		}
		if !errors.Is(err, errTransient) {
			return domain.ModelResult{}, err
		}

		lastErr = err
		c.logger.Warn("model request failed",
			"attempt", attempt, "error", err)
		if attempt < c.maxAttempts {
			wait := retryAfter
			if wait <= 0 {
				wait = backoffBase << attempt
			}
			if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
				return domain.ModelResult{}, sleepErr
			}
		}
	}

	return domain.ModelResult{}, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, lastErr)
}

const backoffBase = time.Second

// errTransient tags failures eligible for retry within sendOnce.
var errTransient = errors.New("transient model failure")

func (c *Client) sendOnce(ctx context.Context, payload []byte) (domain.ModelResult, time.Duration, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return domain.ModelResult{}, 0, fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return domain.ModelResult{}, 0, fmt.Errorf("%w: request timed out: %v", errTransient, err)
		}
		return domain.ModelResult{}, 0, fmt.Errorf("%w: %v", errTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.ModelResult{}, 0, fmt.Errorf("read completion response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.ModelResult{}, retryAfterHint(resp), fmt.Errorf("%w: HTTP 429", errTransient)
	case resp.StatusCode >= http.StatusInternalServerError:
		return domain.ModelResult{}, 0, fmt.Errorf("%w: HTTP %d: %s", errTransient, resp.StatusCode, truncate(body, 200))
	case resp.StatusCode >= http.StatusBadRequest:
		return domain.ModelResult{}, 0, fmt.Errorf("completion request rejected: HTTP %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return c.parseResponse(body)
}

func (c *Client) parseResponse(body []byte) (domain.ModelResult, time.Duration, error) {
	var payload completionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.ModelResult{}, 0, fmt.Errorf("decode completion response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return domain.ModelResult{}, 0, errors.New("completion response has no choices")
	}

	choice := payload.Choices[0]
	result := domain.ModelResult{
		Content:      choice.Message.Content,
		Model:        payload.Model,
		FinishReason: choice.FinishReason,
		Usage:        payload.Usage,
	}

	for _, record := range choice.Message.ToolCalls {
		arguments := map[string]any{}
		if record.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(record.Function.Arguments), &arguments); err != nil {
				// A malformed tool call is dropped rather than failing the
				// whole completion; the model can be asked again.
				c.logger.Warn("skipping unparseable tool call",
					"tool", record.Function.Name, "error", err)
				continue
			}
		}
		result.ToolCalls = append(result.ToolCalls, domain.ToolInvocation{
			ID:        record.ID,
			Name:      record.Function.Name,
			Arguments: arguments,
		})
	}

	return result, 0, nil
}

func retryAfterHint(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds * float64(time.Second))
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bnema/entertainbot/internal/domain"
)

const (
	maxResponseBytes = 4 << 20

	defaultMaxAttempts = 3
	defaultTimeout     = 30 * time.Second
	defaultRetryAfter  = 2 * time.Second
	backoffBase        = 1 * time.Second
	backoffCap         = 8 * time.Second
)

// Config holds per-source settings for a resilient client.
type Config struct {
	// Name labels the source in cache keys and logs, e.g. "jikan".
	Name string
	// BaseURL is the source's API root, without a trailing slash.
	BaseURL string
	// MinInterval is the minimum gap between two network attempts.
	MinInterval time.Duration
	// Timeout bounds each individual network attempt.
	Timeout time.Duration
	// MaxAttempts caps network attempts per logical call (default 3).
	MaxAttempts int
	// CacheTTL and CacheMaxSize configure the response cache; zero TTL
	// disables caching.
	CacheTTL     time.Duration
	CacheMaxSize int
	// Headers are sent with every request.
	Headers map[string]string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client performs GET-style queries against one external source with
// predictable latency and failure behavior. Transient faults (429, 5xx,
// timeouts) are retried with exponential backoff and jitter; a 404 is an
// explicit no-result, not a fault; other 4xx fail immediately.
type Client struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	headers     map[string]string
	limiter     *RateLimiter
	cache       *TTLCache
	logger      *slog.Logger

	sleep  func(context.Context, time.Duration) error
	jitter func() float64
}

// NewClient constructs a client for one source.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("base url host is required")
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
		name:        cfg.Name,
		baseURL:     parsed.String(),
		httpClient:  httpClient,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		headers:     cfg.Headers,
		limiter:     NewRateLimiter(cfg.MinInterval),
		cache:       NewTTLCache(cfg.CacheTTL, cfg.CacheMaxSize),
		logger:      logger,
		sleep:       sleepContext,
		jitter:      rand.Float64,
	}, nil
}

// Get performs a cached, rate-limited GET with retry. The second return
// value reports whether the source had a result: a 404 yields (nil, false,
// nil) so callers can answer gracefully instead of propagating a fault.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any) (json.RawMessage, bool, error) {
	cacheKey := CacheKey(c.name+":GET:"+endpoint, params)
	if value, ok := c.cache.Get(cacheKey); ok {
		c.logger.Debug("cache hit", "client", c.name, "endpoint", endpoint)
		return json.RawMessage(value), true, nil
	}

	body, found, err := c.requestWithRetry(ctx, endpoint, params)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	c.cache.Set(cacheKey, body)
	return json.RawMessage(body), true, nil
}

func (c *Client) requestWithRetry(ctx context.Context, endpoint string, params map[string]any) ([]byte, bool, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}

		c.logger.Info("api request",
			"client", c.name, "endpoint", endpoint, "attempt", attempt)

		start := time.Now()
		resp, err := c.doRequest(ctx, endpoint, params)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, false, ctxErr
			}
			// Timeouts and transport failures are transient.
			lastErr = err
			c.logger.Warn("request failed",
				"client", c.name, "endpoint", endpoint, "attempt", attempt, "error", err)
			if attempt < c.maxAttempts {
				if sleepErr := c.sleep(ctx, c.backoff(attempt)); sleepErr != nil {
					return nil, false, sleepErr
				}
				continue
			}
			break
		}

		c.logger.Info("api response",
			"client", c.name, "endpoint", endpoint,
			"status", resp.status, "duration_ms", time.Since(start).Milliseconds())

		switch {
		case resp.status >= http.StatusOK && resp.status < http.StatusMultipleChoices:
			return resp.body, true, nil

		case resp.status == http.StatusNotFound:
			return nil, false, nil

		case resp.status == http.StatusTooManyRequests:
			wait := retryAfterHint(resp.header, defaultRetryAfter)
			lastErr = fmt.Errorf("%s: HTTP 429 for %s: %w", c.name, endpoint, domain.ErrRetryExhausted)
			if attempt < c.maxAttempts {
				c.logger.Warn("rate limited upstream",
					"client", c.name, "retry_after", wait, "attempt", attempt)
				if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
					return nil, false, sleepErr
				}
				continue
			}

		case resp.status >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("%s: HTTP %d for %s: %w", c.name, resp.status, endpoint, domain.ErrRetryExhausted)
			if attempt < c.maxAttempts {
				backoff := c.backoff(attempt)
				c.logger.Warn("retryable upstream error",
					"client", c.name, "status", resp.status, "backoff", backoff, "attempt", attempt)
				if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
					return nil, false, sleepErr
				}
				continue
			}

		default:
			// Remaining 4xx are semantic failures; retrying cannot help.
			return nil, false, fmt.Errorf("%s: HTTP %d for %s: %w", c.name, resp.status, endpoint, domain.ErrNonRetryable)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%s: %s: %w", c.name, endpoint, domain.ErrRetryExhausted)
	}
	if !errors.Is(lastErr, domain.ErrRetryExhausted) {
		lastErr = fmt.Errorf("%s: all %d attempts failed for %s: %w (last: %v)",
			c.name, c.maxAttempts, endpoint, domain.ErrRetryExhausted, lastErr)
	}
	return nil, false, lastErr
}

// upstreamResponse is one fully buffered attempt result. The body is read
// inside the attempt's timeout context; handing an open body to the caller
// would let the deferred cancel abort the read mid-stream.
type upstreamResponse struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params map[string]any) (*upstreamResponse, error) {
	target, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}

	query := target.Query()
	for key, value := range params {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				query.Add(key, item)
			}
		default:
			query.Set(key, fmt.Sprint(v))
		}
	}
	target.RawQuery = query.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "entertainbot/1.0")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportErr(fmt.Errorf("read response body: %w", err))
	}

	return &upstreamResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

func classifyTransportErr(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}

// backoff returns the delay before the next attempt: base doubling per
// attempt, capped, with up to 25% positive jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay + time.Duration(c.jitter()*0.25*float64(delay))
}

func retryAfterHint(h http.Header, fallback time.Duration) time.Duration {
	header := h.Get("Retry-After")
	if header == "" {
		return fallback
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}

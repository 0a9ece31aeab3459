// Package chroma backs the semantic conversation memory with a Chroma
// vector database over its HTTP API. Documents are the user questions; the
// paired answers travel in metadata so a hit returns the whole exchange.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/entertainbot/internal/ports"
)

const (
	collectionsPath  = "/api/v1/collections"
	maxResponseBytes = 4 << 20

	defaultCollection = "conversations"
	defaultTimeout    = 10 * time.Second
	defaultMaxResults = 3

	// Distance cutoff for query hits; entries farther than this are noise.
	relevanceCutoff = 1.2
)

// Config for the Chroma connection.
type Config struct {
	BaseURL    string
	Collection string
	MaxResults int
	Timeout    time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Store implements ports.ContextStore against a Chroma server. The
// collection is created lazily on first use and its ID cached.
type Store struct {
	baseURL    string
	collection string
	maxResults int
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	// Guards collectionID; the store is shared across concurrent turns.
	mu           sync.Mutex
	collectionID string
}

var _ ports.ContextStore = (*Store)(nil)

func NewStore(cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("chroma base url is empty")
	}

	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		collection: collection,
		maxResults: maxResults,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Retrieve returns prior exchanges for the session relevant to the query,
// filtered by the distance cutoff.
func (s *Store) Retrieve(ctx context.Context, sessionKey, query string) ([]ports.ContextEntry, error) {
	collectionID, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"query_texts": []string{query},
		"n_results":   s.maxResults,
		"where":       map[string]any{"session_id": sessionKey},
		"include":     []string{"documents", "metadatas", "distances"},
	}

	var result struct {
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := s.post(ctx, collectionsPath+"/"+collectionID+"/query", payload, &result); err != nil {
		return nil, fmt.Errorf("query conversation memory: %w", err)
	}
	if len(result.Documents) == 0 {
		return nil, nil
	}

	var entries []ports.ContextEntry
	for i, document := range result.Documents[0] {
		entry := ports.ContextEntry{Question: document}
		if i < len(result.Distances[0]) {
			entry.Score = result.Distances[0][i]
		}
		if entry.Score > relevanceCutoff {
			continue
		}
		if i < len(result.Metadatas[0]) {
			if answer, ok := result.Metadatas[0][i]["answer"].(string); ok {
				entry.Answer = answer
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Store saves one question/answer exchange for later retrieval.
func (s *Store) Store(ctx context.Context, sessionKey, question, answer string, toolsUsed []string) error {
	collectionID, err := s.ensureCollection(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"ids":       []string{uuid.NewString()},
		"documents": []string{question},
		"metadatas": []map[string]any{{
			"session_id": sessionKey,
			"answer":     answer,
			"tools_used": strings.Join(toolsUsed, ","),
			"stored_at":  time.Now().UTC().Format(time.RFC3339),
		}},
	}
	if err := s.post(ctx, collectionsPath+"/"+collectionID+"/add", payload, nil); err != nil {
		return fmt.Errorf("store conversation memory: %w", err)
	}
	return nil
}

// Clear deletes every stored exchange for the session.
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	collectionID, err := s.ensureCollection(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"where": map[string]any{"session_id": sessionKey},
	}
	if err := s.post(ctx, collectionsPath+"/"+collectionID+"/delete", payload, nil); err != nil {
		return fmt.Errorf("clear conversation memory: %w", err)
	}
	return nil
}

func (s *Store) ensureCollection(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collectionID != "" {
		return s.collectionID, nil
	}

	payload := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, collectionsPath, payload, &result); err != nil {
		return "", fmt.Errorf("ensure memory collection: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("chroma returned an empty collection id")
	}

	s.collectionID = result.ID
	return s.collectionID, nil
}

func (s *Store) post(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("chroma returned HTTP %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

// NopStore is the memory collaborator used when no Chroma server is
// configured. Retrieval finds nothing and storage succeeds silently.
type NopStore struct{}

var _ ports.ContextStore = NopStore{}

func (NopStore) Retrieve(context.Context, string, string) ([]ports.ContextEntry, error) {
	return nil, nil
}

func (NopStore) Store(context.Context, string, string, string, []string) error { return nil }

func (NopStore) Clear(context.Context, string) error { return nil }

// Package convlog persists conversation interactions as per-session TOML
// files under a log directory.
package convlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/entertainbot/internal/ports"
)

const (
	logFileMode     = 0o600
	logDirMode      = 0o700
	tempFilePattern = ".convlog-*.toml.tmp"
	schemaVersion   = 1
)

// Session keys become file names; anything outside this set is replaced.
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type fileSchema struct {
	Version      int                 `toml:"version"`
	SessionKey   string              `toml:"session_key"`
	Interactions []interactionSchema `toml:"interactions"`
}

type interactionSchema struct {
	At         string           `toml:"at"`
	UserText   string           `toml:"user_text"`
	Response   string           `toml:"response"`
	ModelCalls int              `toml:"model_calls"`
	DurationMS int64            `toml:"duration_ms"`
	ToolCalls  []toolCallSchema `toml:"tool_calls,omitempty"`
}

type toolCallSchema struct {
	Tool          string         `toml:"tool"`
	Arguments     map[string]any `toml:"arguments,omitempty"`
	ResultSummary string         `toml:"result_summary"`
	DurationMS    int64          `toml:"duration_ms"`
}

// Recorder implements ports.ConversationRecorder on the filesystem, one TOML
// file per session. Writes are atomic: temp file then rename.
type Recorder struct {
	dir string
	mu  sync.Mutex
}

var _ ports.ConversationRecorder = (*Recorder)(nil)

func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, errors.New("log directory is empty")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve log directory: %w", err)
	}
	return &Recorder{dir: filepath.Clean(absDir)}, nil
}

func (r *Recorder) Record(ctx context.Context, interaction ports.Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.pathFor(interaction.SessionKey)
	file, err := readSchema(path)
	if err != nil {
		return err
	}
	file.Version = schemaVersion
	file.SessionKey = interaction.SessionKey
	file.Interactions = append(file.Interactions, toSchema(interaction))

	return writeSchema(path, file)
}

// Sessions lists the session keys with a log file on disk.
func (r *Recorder) Sessions() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		keys = append(keys, name[:len(name)-len(".toml")])
	}
	return keys, nil
}

// Read returns the recorded interactions for a session, oldest first.
func (r *Recorder) Read(sessionKey string) ([]ports.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := readSchema(r.pathFor(sessionKey))
	if err != nil {
		return nil, err
	}

	interactions := make([]ports.Interaction, 0, len(file.Interactions))
	for _, entry := range file.Interactions {
		interactions = append(interactions, fromSchema(file.SessionKey, entry))
	}
	return interactions, nil
}

func (r *Recorder) pathFor(sessionKey string) string {
	name := unsafeKeyChars.ReplaceAllString(sessionKey, "_")
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(r.dir, name+".toml")
}

func readSchema(path string) (fileSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read conversation log: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode conversation log: %w", err)
	}
	return file, nil
}

func writeSchema(path string, file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode conversation log: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp log file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp log file: %w", err)
	}

	if err := tempFile.Chmod(logFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp log file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp log file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace log file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(interaction ports.Interaction) interactionSchema {
	entry := interactionSchema{
		At:         interaction.At.Format(time.RFC3339),
		UserText:   interaction.UserText,
		Response:   interaction.Response,
		ModelCalls: interaction.ModelCalls,
		DurationMS: interaction.Duration.Milliseconds(),
	}
	for _, call := range interaction.ToolCalls {
		entry.ToolCalls = append(entry.ToolCalls, toolCallSchema{
			Tool:          call.Tool,
			Arguments:     call.Arguments,
			ResultSummary: call.ResultSummary,
			DurationMS:    call.Duration.Milliseconds(),
		})
	}
	return entry
}

func fromSchema(sessionKey string, entry interactionSchema) ports.Interaction {
	interaction := ports.Interaction{
		SessionKey: sessionKey,
		UserText:   entry.UserText,
		Response:   entry.Response,
		ModelCalls: entry.ModelCalls,
		Duration:   time.Duration(entry.DurationMS) * time.Millisecond,
	}
	if parsed, err := time.Parse(time.RFC3339, entry.At); err == nil {
		interaction.At = parsed
	}
	for _, call := range entry.ToolCalls {
		interaction.ToolCalls = append(interaction.ToolCalls, ports.ToolCallLog{
			Tool:          call.Tool,
			Arguments:     call.Arguments,
			ResultSummary: call.ResultSummary,
			Duration:      time.Duration(call.DurationMS) * time.Millisecond,
		})
	}
	return interaction
}

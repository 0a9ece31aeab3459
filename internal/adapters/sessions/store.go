// Package sessions holds the in-memory session table: one conversation
// history per session key, with idle-session expiry.
package sessions

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/entertainbot/internal/domain"
	"github.com/bnema/entertainbot/internal/ports"
)

const (
	DefaultTTL           = time.Hour
	defaultSweepInterval = 5 * time.Minute
)

type session struct {
	mu         sync.Mutex
	history    *domain.History
	lastActive time.Time
}

// Config for the session store.
type Config struct {
	// SystemPrompt seeds every new session's history.
	SystemPrompt string
	// MaxHistory caps messages per session (domain.DefaultMaxHistory when
	// zero).
	MaxHistory int
	// TTL is the idle lifetime of a session; expired sessions are swept in
	// the background. Zero means DefaultTTL, negative disables expiry.
	TTL time.Duration
	// SweepInterval controls how often the sweeper runs.
	SweepInterval time.Duration

	Clock  ports.Clock
	Logger *slog.Logger
}

// Store implements ports.SessionStore. The table mutex guards the map; each
// session carries its own mutex so turns for different sessions proceed in
// parallel while turns for the same session serialize.
type Store struct {
	mu    sync.Mutex
	table map[string]*session

	systemPrompt string
	maxHistory   int
	ttl          time.Duration
	clock        ports.Clock
	logger       *slog.Logger

	done chan struct{}
	once sync.Once
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore(cfg Config) *Store {
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = domain.DefaultMaxHistory
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		table:        make(map[string]*session),
		systemPrompt: cfg.SystemPrompt,
		maxHistory:   maxHistory,
		ttl:          ttl,
		clock:        clock,
		logger:       logger,
		done:         make(chan struct{}),
	}
	if ttl > 0 {
		go store.sweepLoop(sweepInterval)
	}
	return store
}

// Acquire fetches or creates the session and locks it for the caller's turn.
func (s *Store) Acquire(key string) (*domain.History, bool, func()) {
	s.mu.Lock()
	sess, ok := s.table[key]
	if !ok {
		sess = &session{history: domain.NewHistory(s.systemPrompt, s.maxHistory)}
		s.table[key] = sess
	}
	sess.lastActive = s.clock.Now()
	s.mu.Unlock()

	sess.mu.Lock()
	return sess.history, !ok, sess.mu.Unlock
}

// Clear destroys the session. Waits for an in-flight turn on the same key so
// the turn's history writes land on a history nobody will read again.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	sess, ok := s.table[key]
	if ok {
		delete(s.table, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	sess.mu.Unlock() //nolint:staticcheck // barrier, not a critical section
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table)
}

// Stop terminates the background sweeper.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep evicts sessions idle past the TTL. A session whose lock cannot be
// taken has a turn in flight and is skipped until the next pass.
func (s *Store) sweep() {
	cutoff := s.clock.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, sess := range s.table {
		if sess.lastActive.After(cutoff) {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		delete(s.table, key)
		sess.mu.Unlock()
		s.logger.Debug("expired idle session", "session", key)
	}
}

package ports

import (
	"time"

	"github.com/bnema/entertainbot/internal/domain"
)

// SessionStore owns the session table: key → conversation history plus a
// last-active timestamp. Acquire returns the session's history with its
// per-session lock held; the caller must invoke release when its turn is
// finished. No two turns for the same key run concurrently.
type SessionStore interface {
	// Acquire fetches or creates the session and enters its critical
	// section. created reports whether the session was new.
	Acquire(key string) (history *domain.History, created bool, release func())

	// Clear destroys the session. Idempotent: clearing an absent key is a
	// no-op.
	Clear(key string)

	// Len returns the number of live sessions.
	Len() int
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

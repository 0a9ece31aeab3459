package fetch

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between requests through one
// client. Callers are delayed, never dropped. Safe for concurrent use; the
// read-then-update of the last-call timestamp happens under the lock, so
// concurrent waiters queue up behind each other.
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
}

// NewRateLimiter constructs a limiter. A non-positive interval disables it.
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Wait blocks until the minimum interval since the previous reservation has
// elapsed, then reserves the current slot. Returns early only if ctx ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r.minInterval <= 0 {
		return nil
	}

	r.mu.Lock()
	now := r.now()
	next := r.last.Add(r.minInterval)
	wait := next.Sub(now)
	if wait < 0 {
		wait = 0
		next = now
	}
	// Reserve the slot before sleeping so concurrent callers line up
	// rather than racing for the same interval.
	r.last = next
	r.mu.Unlock()

	if wait > 0 {
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return nil
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

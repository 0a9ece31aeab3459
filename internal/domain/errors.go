package domain

import "errors"

var (
	// ErrNotFound is the explicit no-result outcome of a 404 from a data
	// source. It is not a fault; callers answer gracefully.
	ErrNotFound = errors.New("no result found")

	// ErrRetryExhausted marks a transient failure that survived the full
	// retry budget.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrNonRetryable marks a client-side upstream failure (4xx other than
	// 429/404) that must not be retried.
	ErrNonRetryable = errors.New("non-retryable upstream error")

	// ErrModelUnavailable is the hard failure surfaced when the model client
	// exhausts its own retry budget. It aborts the turn.
	ErrModelUnavailable = errors.New("model completion unavailable")
)

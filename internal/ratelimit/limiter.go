// Package ratelimit bounds request rates per client key.
package ratelimit

import "time"

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int           // requests per window
	Remaining  int           // requests left in current window
	ResetAt    time.Time     // when the full allowance is available again
	RetryAfter time.Duration // how long to wait before retrying (0 if allowed)
}

// Limiter decides whether a request identified by key may proceed. Allow
// checks and records atomically, so concurrent callers never exceed the limit.
type Limiter interface {
	Allow(key string) Result
	Close()
}

// cleanupInterval is how often idle keys are evicted.
const cleanupInterval = 10 * time.Minute

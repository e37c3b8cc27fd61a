package ratelimit

import (
	"sync"
	"time"
)

// Window is a sliding-window log limiter: at most max requests per key in any
// window-long interval.
type Window struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewWindow creates a sliding-window limiter.
func NewWindow(max int, window time.Duration) *Window {
	w := newWindow(max, window, time.Now)
	go w.cleanupLoop()
	return w
}

func newWindow(max int, window time.Duration, now func() time.Time) *Window {
	return &Window{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Allow implements Limiter.
func (w *Window) Allow(key string) Result {
	now := w.now()
	cutoff := now.Add(-w.window)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Drop requests that slid out of the window
	valid := prune(w.requests[key], cutoff)

	if len(valid) >= w.max {
		w.requests[key] = valid
		resetAt := valid[0].Add(w.window)
		retryAfter := max(resetAt.Sub(now), time.Second)
		return Result{
			Allowed:    false,
			Limit:      w.max,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter.Round(time.Second),
		}
	}

	valid = append(valid, now)
	w.requests[key] = valid
	return Result{
		Allowed:   true,
		Limit:     w.max,
		Remaining: w.max - len(valid),
		ResetAt:   valid[0].Add(w.window),
	}
}

func prune(requests []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(requests) && !requests[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return requests
	}
	return append([]time.Time(nil), requests[i:]...)
}

func (w *Window) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.cleanup()
		case <-w.stop:
			return
		}
	}
}

// cleanup removes keys with no request inside the window.
func (w *Window) cleanup() {
	cutoff := w.now().Add(-w.window)

	w.mu.Lock()
	defer w.mu.Unlock()

	for key, requests := range w.requests {
		valid := prune(requests, cutoff)
		if len(valid) == 0 {
			delete(w.requests, key)
		} else {
			w.requests[key] = valid
		}
	}
}

// Close stops the cleanup goroutine.
func (w *Window) Close() {
	w.stopOnce.Do(func() { close(w.stop) })
}

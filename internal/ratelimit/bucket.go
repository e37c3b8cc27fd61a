package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Bucket is a token bucket limiter per key. It smooths bursts for loose,
// high-volume policies.
type Bucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     rate.Limit
	burst    int
	window   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewBucket creates a limiter allowing requests tokens per window with burst capacity.
func NewBucket(requests int, window time.Duration, burst int) *Bucket {
	b := &Bucket{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		window:  window,
		stop:    make(chan struct{}),
	}
	go b.cleanupLoop()
	return b
}

// Allow implements Limiter.
func (b *Bucket) Allow(key string) Result {
	now := time.Now()

	b.mu.Lock()
	bk, exists := b.buckets[key]
	if !exists {
		bk = &bucket{limiter: rate.NewLimiter(b.rate, b.burst)}
		b.buckets[key] = bk
	}
	bk.lastSeen = now
	b.mu.Unlock()

	reservation := bk.limiter.ReserveN(now, 1)
	allowed := reservation.OK() && reservation.DelayFrom(now) == 0

	var retryAfter time.Duration
	if !allowed {
		if reservation.OK() {
			retryAfter = reservation.DelayFrom(now)
			reservation.CancelAt(now)
		}
		retryAfter = max(retryAfter, time.Second).Round(time.Second)
	}

	tokens := bk.limiter.TokensAt(now)
	remaining := max(int(tokens), 0)
	refill := time.Duration((float64(b.burst) - tokens) / float64(b.rate) * float64(time.Second))

	return Result{
		Allowed:    allowed,
		Limit:      int(float64(b.rate)*b.window.Seconds() + 0.5),
		Remaining:  remaining,
		ResetAt:    now.Add(refill),
		RetryAfter: retryAfter,
	}
}

func (b *Bucket) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.cleanup()
		case <-b.stop:
			return
		}
	}
}

// cleanup removes buckets that are idle and full.
func (b *Bucket) cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	stale := now.Add(-cleanupInterval)
	for key, bk := range b.buckets {
		if bk.lastSeen.Before(stale) && bk.limiter.TokensAt(now) >= float64(b.burst) {
			delete(b.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (b *Bucket) Close() {
	b.stopOnce.Do(func() { close(b.stop) })
}

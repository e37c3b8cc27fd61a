package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"portfolio/internal/metrics"
	apperrors "portfolio/pkg/errors"
)

// WriteHeaders writes rate limit headers to the response.
func WriteHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	// Retry-After only on 429 responses
	if !result.Allowed {
		w.Header().Set("Retry-After", RetryAfterSeconds(result.RetryAfter))
	}
}

// RetryAfterSeconds renders d as a Retry-After value, rounded up to whole seconds.
func RetryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

// KeyFunc extracts the client identifier of a request.
type KeyFunc func(*http.Request) string

// Middleware rejects requests over the policy limit with 429 before they reach next.
// skip may exempt requests such as health checks.
func Middleware(p Policy, key KeyFunc, skip func(*http.Request) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip != nil && skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			result := p.Limiter.Allow(BuildKey(p.Name, key(r)))
			WriteHeaders(w, result)
			if !result.Allowed {
				metrics.RecordRateLimitRejection(p.Name)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": message,
					"code":  string(apperrors.ErrCodeRateLimited),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

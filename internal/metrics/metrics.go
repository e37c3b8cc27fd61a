package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"method", "endpoint"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Business metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"}, // success, failure
	)

	inquiriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_submissions_total",
			Help: "Total number of inquiry submissions by outcome",
		},
		[]string{"outcome"}, // accepted or an error category
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_notifications_total",
			Help: "Total number of owner notifications by status",
		},
		[]string{"kind", "status"}, // quote|contact, sent|failed|skipped
	)

	captchaVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captcha_verifications_total",
			Help: "Total number of challenge token verifications",
		},
		[]string{"result"}, // success, rejected, error
	)

	rateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by a rate limit policy",
		},
		[]string{"policy"},
	)

	unreadMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inquiry_unread_messages",
			Help: "Number of unread inquiries at the last count",
		},
	)
)

// PrometheusMiddleware creates a middleware that records Prometheus metrics.
// route maps a request to a low-cardinality endpoint label; nil uses the raw path.
func PrometheusMiddleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	if route == nil {
		route = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Skip metrics endpoint itself
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			endpoint := route(r)

			if r.ContentLength > 0 {
				httpRequestSize.WithLabelValues(r.Method, endpoint).Observe(float64(r.ContentLength))
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			statusCode := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, endpoint, statusCode).Inc()
			httpRequestDuration.WithLabelValues(r.Method, endpoint, statusCode).Observe(duration)
			httpResponseSize.WithLabelValues(r.Method, endpoint).Observe(float64(wrapped.size))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordAuthAttempt records an authentication attempt
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordInquiry records the outcome of an inquiry submission
func RecordInquiry(outcome string) {
	inquiriesTotal.WithLabelValues(outcome).Inc()
}

// RecordNotification records a notification attempt
func RecordNotification(kind, status string) {
	notificationsTotal.WithLabelValues(kind, status).Inc()
}

// RecordCaptchaVerification records a challenge token verification
func RecordCaptchaVerification(result string) {
	captchaVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimitRejection records a request rejected by policy
func RecordRateLimitRejection(policy string) {
	rateLimitRejectionsTotal.WithLabelValues(policy).Inc()
}

// SetUnreadMessages updates the unread inquiry gauge
func SetUnreadMessages(n int64) {
	unreadMessages.Set(float64(n))
}

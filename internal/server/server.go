// Package server exposes the services over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	goahttp "goa.design/goa/v3/http"
	httpmiddleware "goa.design/goa/v3/http/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolio/internal/config"
	"portfolio/internal/metrics"
	"portfolio/internal/pricing"
	"portfolio/internal/ratelimit"
	"portfolio/internal/services"
)

// Deps are the collaborators the HTTP layer routes to.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Catalog  *pricing.Catalog
	Policies *ratelimit.Policies
	Health   *services.HealthService
	Auth     *services.AuthService
	Contact  *services.ContactService
	Content  *services.ContentService
}

// Server routes API requests.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *pricing.Catalog
	policies *ratelimit.Policies
	health   *services.HealthService
	auth     *services.AuthService
	contact  *services.ContactService
	content  *services.ContentService

	mux     goahttp.Muxer
	handler http.Handler
}

// New builds the server and mounts every route.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      d.Config,
		logger:   logger.With("component", "http"),
		catalog:  d.Catalog,
		policies: d.Policies,
		health:   d.Health,
		auth:     d.Auth,
		contact:  d.Contact,
		content:  d.Content,
		mux:      goahttp.NewMuxer(),
	}
	s.mount()

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			promhttp.Handler().ServeHTTP(w, r)
			return
		}
		s.mux.ServeHTTP(w, r)
	})

	// Security -> CORS -> RequestID -> Logging -> Rate limit -> Handler
	var h http.Handler = root
	h = ratelimit.Middleware(s.policies.General, s.clientIP, skipGeneralLimit, "Too many requests, please try again later.")(h)
	h = requestLogging(s.logger)(h)
	h = httpmiddleware.PopulateRequestContext()(h)
	h = httpmiddleware.RequestID(httpmiddleware.UseXRequestIDHeaderOption(true))(h)
	h = cors(s.cfg.App, s.cfg.CORS)(h)
	h = securityHeaders(s.cfg.App)(h)
	s.handler = h
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) clientIP(r *http.Request) string {
	return ClientIP(r, s.cfg.App.TrustProxy)
}

func skipGeneralLimit(r *http.Request) bool {
	return r.URL.Path == "/api/health" || r.URL.Path == "/metrics"
}

// endpoint handles a request and returns the status and body to encode.
type endpoint func(w http.ResponseWriter, r *http.Request) (int, any, error)

func (s *Server) serve(e endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body, err := e(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		encode(r.Context(), w, status, body)
	})
}

// mountHandler registers h, labelled by its pattern for metrics.
func (s *Server) mountHandler(method, pattern string, h http.Handler) {
	h = metrics.PrometheusMiddleware(func(*http.Request) string { return pattern })(h)
	s.mux.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), goahttp.AcceptTypeKey, r.Header.Get("Accept"))
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handle(method, pattern string, e endpoint) {
	s.mountHandler(method, pattern, s.serve(e))
}

// handleAdmin mounts e behind bearer authentication.
func (s *Server) handleAdmin(method, pattern string, e endpoint) {
	s.mountHandler(method, pattern, services.RequireAdmin(s.auth, s.writeError)(s.serve(e)))
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/captcha"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/domain"
	"portfolio/internal/pricing"
	"portfolio/internal/ratelimit"
	"portfolio/internal/services"
	"portfolio/internal/util"
)

type testServer struct {
	*httptest.Server
	contact *services.ContactService
	token   string
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "Portfolio API", Version: "test", TrustProxy: true},
		Database: config.DatabaseConfig{URL: "sqlite:///" + filepath.Join(t.TempDir(), "test.db")},
		Auth:     config.AuthConfig{SecretKey: "test-secret", TokenExpiryMinutes: 60, AdminUsername: "admin", AdminPassword: "admin123"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         600,
		},
		RateLimit: config.RateLimitConfig{GeneralMax: 1000, GeneralWindow: time.Minute, InquiryMax: 3, InquiryWindow: time.Hour},
		Pricing:   config.PricingConfig{DisplayCurrency: "USD"},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)

	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	policies := ratelimit.NewPolicies(cfg.RateLimit)
	t.Cleanup(policies.Close)

	verifier := captcha.VerifierFunc(func(_ context.Context, token, _ string) bool {
		return token == "valid-token"
	})
	auth := services.NewAuthService(db, util.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry()), nil)
	_, err = auth.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	require.NoError(t, err)
	contact := services.NewContactService(db, verifier, policies.Inquiry, nil, nil)

	srv := New(Deps{
		Config:   cfg,
		Catalog:  pricing.Default(),
		Policies: policies,
		Health:   services.NewHealthService(db, cfg.App.Name),
		Auth:     auth,
		Contact:  contact,
		Content:  services.NewContentService(db, nil),
	})
	ts := &testServer{Server: httptest.NewServer(srv.Handler()), contact: contact}
	t.Cleanup(ts.Close)

	var login services.LoginResult
	resp := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ts.token = login.Token
	return ts
}

func (ts *testServer) request(t *testing.T, method, path string, body any, out any, header http.Header) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (ts *testServer) do(t *testing.T, method, path string, body any, out any) *http.Response {
	return ts.request(t, method, path, body, out, nil)
}

func (ts *testServer) admin(t *testing.T, method, path string, body any, out any) *http.Response {
	return ts.request(t, method, path, body, out, http.Header{"Authorization": {"Bearer " + ts.token}})
}

func inquiry(honeypot string) map[string]string {
	return map[string]string{
		"name":           "Ana",
		"email":          "ana@example.com",
		"subject":        "Project Inquiry: Landing Page",
		"message":        "Website Type: Landing Page",
		"_h_":            honeypot,
		"turnstileToken": "valid-token",
	}
}

func TestSubmissionVisibleToAdmin(t *testing.T) {
	ts := newTestServer(t)

	var created SubmitResult
	resp := ts.do(t, http.MethodPost, "/api/messages", inquiry(""), &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotZero(t, created.ID)

	var messages []domain.Message
	resp = ts.admin(t, http.MethodGet, "/api/messages", nil, &messages)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, messages, 1)
	assert.Equal(t, created.ID, messages[0].ID)
	assert.False(t, messages[0].Read)

	var count CountResult
	ts.admin(t, http.MethodGet, "/api/messages/unread/count", nil, &count)
	assert.Equal(t, int64(1), count.Count)

	var read domain.Message
	resp = ts.admin(t, http.MethodPut, "/api/messages/"+itoa(created.ID)+"/read", nil, &read)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, read.Read)

	resp = ts.admin(t, http.MethodDelete, "/api/messages/"+itoa(created.ID), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.admin(t, http.MethodDelete, "/api/messages/"+itoa(created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHoneypotRejectedAndNotStored(t *testing.T) {
	ts := newTestServer(t)

	var body ErrorBody
	resp := ts.do(t, http.MethodPost, "/api/contact", inquiry("x"), &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VERIFICATION_FAILED", body.Code)
	assert.Equal(t, "Security verification failed", body.Error)

	forged := inquiry("")
	forged["turnstileToken"] = "forged"
	var forgedBody ErrorBody
	ts.do(t, http.MethodPost, "/api/contact", forged, &forgedBody)
	assert.Equal(t, body, forgedBody)

	var messages []domain.Message
	ts.admin(t, http.MethodGet, "/api/messages", nil, &messages)
	assert.Empty(t, messages)
}

func TestValidationErrorNamesFields(t *testing.T) {
	ts := newTestServer(t)

	req := inquiry("")
	req["email"] = ""
	var body ErrorBody
	resp := ts.do(t, http.MethodPost, "/api/messages", req, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, []string{"email"}, body.Fields)
}

func TestInquiryRateLimitPerAddress(t *testing.T) {
	ts := newTestServer(t)
	from := func(ip string) http.Header { return http.Header{"X-Forwarded-For": {ip}} }

	for range 3 {
		resp := ts.request(t, http.MethodPost, "/api/messages", inquiry(""), nil, from("203.0.113.7"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var body ErrorBody
	resp := ts.request(t, http.MethodPost, "/api/messages", inquiry(""), &body, from("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body.Code)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	resp = ts.request(t, http.MethodPost, "/api/messages", inquiry(""), nil, from("198.51.100.1"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestMalformedInquiriesCountAgainstLimit(t *testing.T) {
	ts := newTestServer(t)
	from := http.Header{"X-Forwarded-For": {"203.0.113.9"}}

	for range 3 {
		var body ErrorBody
		resp := ts.request(t, http.MethodPost, "/api/messages", "not an object", &body, from)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", body.Code)
	}

	var body ErrorBody
	resp := ts.request(t, http.MethodPost, "/api/messages", inquiry(""), &body, from)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body.Code)
}

func TestRequestIDFromHeader(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/api/health", nil, nil, http.Header{"X-Request-Id": {"trace-abc123"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "trace-abc123", resp.Header.Get("X-Request-ID"))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	var body ErrorBody
	resp := ts.do(t, http.MethodGet, "/api/messages", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body.Code)

	resp = ts.request(t, http.MethodGet, "/api/auth/verify", nil, nil, http.Header{"Authorization": {"Bearer nope"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var verified VerifyResult
	resp = ts.admin(t, http.MethodGet, "/api/auth/verify", nil, &verified)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, verified.Valid)
	assert.Equal(t, "admin", verified.User.Username)

	resp = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestContentRoutes(t *testing.T) {
	ts := newTestServer(t)

	var project domain.Project
	resp := ts.admin(t, http.MethodPost, "/api/projects", map[string]any{
		"title": "Folio", "technologies": []string{"Go"}, "featured": true,
	}, &project)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var featured []domain.Project
	ts.do(t, http.MethodGet, "/api/projects/featured", nil, &featured)
	require.Len(t, featured, 1)

	var got domain.Project
	resp = ts.do(t, http.MethodGet, "/api/projects/"+itoa(project.ID), nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StringList{"Go"}, got.Technologies)

	var updated domain.Project
	resp = ts.admin(t, http.MethodPut, "/api/projects/"+itoa(project.ID), map[string]any{"featured": false}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Folio", updated.Title)
	assert.False(t, updated.Featured)

	resp = ts.do(t, http.MethodPost, "/api/projects", map[string]any{"title": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var profile domain.Profile
	ts.do(t, http.MethodGet, "/api/profile", nil, &profile)
	assert.Equal(t, "Your Name", profile.Name)
}

func TestPricingRoutes(t *testing.T) {
	ts := newTestServer(t)

	var catalog CatalogResult
	resp := ts.do(t, http.MethodGet, "/api/pricing/catalog", nil, &catalog)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, catalog.Types)
	assert.NotEmpty(t, catalog.BudgetBands)

	var quote QuoteResult
	resp = ts.do(t, http.MethodPost, "/api/pricing/quote", QuoteRequest{TypeID: "landing", Features: []string{"responsive", "seo"}}, &quote)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, quote.TotalPrice)
	assert.Equal(t, 11, quote.TimelineMin)
	assert.Equal(t, 15, quote.TimelineMax)
	assert.Equal(t, "$200", quote.Display["USD"])

	resp = ts.do(t, http.MethodPost, "/api/pricing/quote", QuoteRequest{TypeID: "spaceship"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSAndHeaders(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodOptions, "/api/messages", nil, nil, http.Header{"Origin": {"https://example.com"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = ts.request(t, http.MethodGet, "/api/health", nil, nil, http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = ts.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "10.0.0.1", ClientIP(r, false))
	assert.Equal(t, "203.0.113.7", ClientIP(r, true))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

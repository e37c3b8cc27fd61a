package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/logging"
	"portfolio/internal/pricing"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["username"] != "admin" || body["password"] != "s3cret-pass" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Incorrect username or password","code":"UNAUTHORIZED"}`))
				return
			}
			_, _ = w.Write([]byte(`{"token":"jwt","user":{"id":1,"username":"admin"}}`))
		case r.Header.Get("Authorization") != "Bearer jwt":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Access denied. No token provided.","code":"UNAUTHORIZED"}`))
		case r.URL.Path == "/api/messages":
			_, _ = w.Write([]byte(`[
				{"id":2,"name":"Ann","email":"ann@example.com","subject":"Project Inquiry: Landing Page","read":false,"createdAt":"2026-01-02T10:00:00Z"},
				{"id":1,"name":"Bob","email":"bob@example.com","subject":"Hello","read":true,"createdAt":"2026-01-01T10:00:00Z"}
			]`))
		case r.URL.Path == "/api/messages/2/read" && r.Method == http.MethodPut:
			_, _ = w.Write([]byte(`{"id":2,"name":"Ann","email":"ann@example.com","subject":"Project Inquiry: Landing Page","message":"Website Type: Landing Page","read":true,"createdAt":"2026-01-02T10:00:00Z"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not found","code":"NOT_FOUND"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginInboxLogout(t *testing.T) {
	t.Setenv("FOLIO_CONFIG_DIR", t.TempDir())
	srv := fakeAPI(t)

	_, err := run(t, "", "--server", srv.URL, "inbox")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = run(t, "admin\nwrong\n", "--server", srv.URL, "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect username or password")

	out, err := run(t, "admin\ns3cret-pass\n", "--server", srv.URL, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin.")

	out, err = run(t, "", "--server", srv.URL, "inbox")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@example.com>")
	assert.Contains(t, out, "Bob <bob@example.com>")

	out, err = run(t, "", "--server", srv.URL, "inbox", "--unread")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann")
	assert.NotContains(t, out, "Bob")

	out, err = run(t, "", "--server", srv.URL, "inbox", "read", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Subject: Project Inquiry: Landing Page")
	assert.Contains(t, out, "Website Type: Landing Page")

	_, err = run(t, "", "--server", "http://other.example", "inbox")
	assert.ErrorIs(t, err, ErrNotLoggedIn, "sessions are bound to their server")

	_, err = run(t, "", "--server", srv.URL, "logout")
	require.NoError(t, err)
	_, err = run(t, "", "--server", srv.URL, "inbox")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoadCatalogFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	var logs bytes.Buffer
	a := &app{server: srv.URL, logger: logging.NewWithWriter(&logs, "warn", true)}
	catalog, currency := a.loadCatalog(context.Background(), false)
	assert.Equal(t, pricing.USD.Code, currency)
	assert.Len(t, catalog.Types(), len(pricing.Default().Types()))
	assert.Contains(t, logs.String(), "using built-in pricing catalog")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

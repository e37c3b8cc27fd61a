package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/pricing"
	"portfolio/internal/wizard"
	apperrors "portfolio/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCatalog(t *testing.T) {
	def := pricing.Default()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pricing/catalog", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"types":           def.Types(),
			"budgetBands":     def.BudgetBands(),
			"displayCurrency": "VND",
		})
	}))
	defer srv.Close()

	catalog, currency, err := New(srv.URL).Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "VND", currency)
	assert.Len(t, catalog.Types(), len(def.Types()))
	_, ok := catalog.Type("landing")
	assert.True(t, ok)
}

func TestSubmitInquiryMapsErrors(t *testing.T) {
	var got wizard.Inquiry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.VerificationToken == "" {
			w.Header().Set("Retry-After", "42")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error": "Too many messages sent. Please try again later.",
				"code":  "RATE_LIMITED",
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Message sent successfully", "id": 7})
	}))
	defer srv.Close()
	c := New(srv.URL)

	res, err := c.SubmitInquiry(context.Background(), wizard.Inquiry{Name: "Ann", Email: "a@b.co", VerificationToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), res.ID)
	assert.Equal(t, "Ann", got.Name)

	_, err = c.SubmitInquiry(context.Background(), wizard.Inquiry{Name: "Ann"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeRateLimited, appErr.Code)
	assert.Equal(t, "Too many messages sent. Please try again later.", appErr.Message)
	assert.Equal(t, 42*time.Second, appErr.RetryAfter)
}

func TestUnexpectedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).UnreadCount(context.Background())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternalError, appErr.Code)
	assert.Contains(t, appErr.Message, "502")
}

func TestSessionSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, http.StatusOK, map[string]any{
				"token": "jwt-token",
				"user":  map[string]any{"id": 1, "username": "admin"},
			})
		case "/api/messages":
			if r.Header.Get("Authorization") != "Bearer jwt-token" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Access denied. No token provided.", "code": "UNAUTHORIZED"})
				return
			}
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 2, "name": "Ann", "email": "a@b.co"}})
		}
	}))
	defer srv.Close()

	anon := New(srv.URL)
	_, err := anon.Messages(context.Background())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)

	session, err := anon.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)

	authed := anon.WithSession(session)
	assert.Nil(t, anon.Session(), "WithSession returns a copy")
	messages, err := authed.Messages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Ann", messages[0].Name)
}

func TestPollUnreadStopsOnCancel(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"count": hits.Add(1)})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var seen []int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		New(srv.URL).PollUnread(ctx, 10*time.Millisecond, func(count int64, err error) {
			if err == nil {
				seen = append(seen, count)
			}
			if len(seen) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PollUnread did not return after cancel")
	}
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

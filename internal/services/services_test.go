package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portfolio/internal/captcha"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/domain"
	"portfolio/internal/ratelimit"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{URL: "sqlite:///" + filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// fakeVerifier accepts "valid-token" and counts calls.
type fakeVerifier struct {
	mu    sync.Mutex
	calls int
	ips   []string
}

func (v *fakeVerifier) Verify(_ context.Context, token, remoteIP string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	v.ips = append(v.ips, remoteIP)
	return token == "valid-token"
}

func (v *fakeVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

var _ captcha.Verifier = (*fakeVerifier)(nil)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, m *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, *m)
}

func (n *recordingNotifier) Sent() []domain.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Message(nil), n.sent...)
}

func inquiryPolicy(t *testing.T, max int) ratelimit.Policy {
	t.Helper()
	w := ratelimit.NewWindow(max, time.Hour)
	t.Cleanup(w.Close)
	return ratelimit.Policy{Name: "inquiry", Limiter: w}
}

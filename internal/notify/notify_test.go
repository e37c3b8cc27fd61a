package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/config"
	"portfolio/internal/domain"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []*Email
	err  error
}

func (f *fakeTransport) Send(_ context.Context, e *Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func configured() config.EmailConfig {
	return config.EmailConfig{
		AdminAddress: "owner@example.com",
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		Username:     "mailer@example.com",
		Password:     "secret",
		FromName:     "Portfolio Website",
	}
}

func quoteMessage() *domain.Message {
	return &domain.Message{
		ID:      7,
		Name:    "Ana",
		Email:   "ana@example.com",
		Subject: "Project Inquiry: Landing Page",
		Message: "Website Type: Landing Page\n" +
			"Features: Responsive Design, Animations\n" +
			"Budget Range: Not specified\n" +
			"Estimated Price: $375\n" +
			"Timeline: 5-9 days\n" +
			"User Message: Need it fast\nand <b>bold</b>",
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestDispatchQuote(t *testing.T) {
	transport := &fakeTransport{}
	d := NewDispatcher(configured(), transport, nil)

	d.Dispatch(context.Background(), quoteMessage())

	require.Len(t, transport.sent, 1)
	e := transport.sent[0]
	assert.Equal(t, "owner@example.com", e.To)
	assert.Equal(t, "ana@example.com", e.ReplyTo)
	assert.Equal(t, "[Portfolio] Project Inquiry - Ana", e.Subject)
	assert.Contains(t, e.HTML, "New Project Inquiry")
	assert.Contains(t, e.HTML, "Landing Page")
	assert.Contains(t, e.HTML, "5-9 days")
	assert.NotContains(t, e.HTML, "<b>bold</b>")
	assert.Contains(t, e.HTML, "&lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, e.Text, "Estimated Price: $375")
}

func TestDispatchContact(t *testing.T) {
	transport := &fakeTransport{}
	d := NewDispatcher(configured(), transport, nil)

	d.Dispatch(context.Background(), &domain.Message{ID: 1, Name: "Bo", Email: "bo@example.com", Message: "Hello"})

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "[Portfolio] New Contact Message: No Subject", transport.sent[0].Subject)
	assert.Contains(t, transport.sent[0].HTML, "New Contact Submission")
	assert.Contains(t, transport.sent[0].Text, "Hello")
}

func TestDispatchSkipsWhenNotConfigured(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	transport := &fakeTransport{}
	cfg := configured()
	cfg.AdminAddress = ""

	NewDispatcher(cfg, transport, logger).Dispatch(context.Background(), quoteMessage())

	assert.Empty(t, transport.sent)
	assert.Contains(t, logs.String(), "skipping admin notification")
}

func TestDispatchSwallowsTransportErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	transport := &fakeTransport{err: errors.New("connection refused")}

	assert.NotPanics(t, func() {
		NewDispatcher(configured(), transport, logger).Dispatch(context.Background(), quoteMessage())
	})
	assert.Contains(t, logs.String(), "connection refused")
}

func TestParseRows(t *testing.T) {
	rows := ParseRows("Website Type: Web App\nFeatures: None\n\nUser Message: first\nsecond line\nPS: budget is flexible\nTime: 10:30")

	assert.Equal(t, []Row{
		{Label: "Website Type", Value: "Web App"},
		{Label: "Features", Value: "None"},
		{Label: "User Message", Value: "first\nsecond line\nPS: budget is flexible\nTime: 10:30"},
	}, rows)
	assert.Empty(t, ParseRows("please call me tomorrow"))
}

func TestRenderQuoteSubjectWithFreeFormBody(t *testing.T) {
	e, err := Render(&domain.Message{
		ID:      3,
		Name:    "Cy",
		Email:   "cy@example.com",
		Subject: "Project Inquiry: custom",
		Message: "please call me tomorrow",
	})
	require.NoError(t, err)

	assert.Contains(t, e.HTML, "New Contact Submission")
	assert.Contains(t, e.HTML, "please call me tomorrow")
	assert.Contains(t, e.Text, "please call me tomorrow")
	assert.Equal(t, "[Portfolio] New Contact Message: Project Inquiry: custom", e.Subject)
}

func TestSMTPTransportRequiresCredentials(t *testing.T) {
	err := NewSMTPTransport(config.EmailConfig{SMTPHost: "smtp.example.com"}).Send(context.Background(), &Email{})
	assert.Error(t, err)
}

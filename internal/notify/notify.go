// Package notify emails the site owner when an inquiry is stored.
package notify

import (
	"context"
	"log/slog"

	"portfolio/internal/config"
	"portfolio/internal/domain"
	"portfolio/internal/metrics"
)

// Email is a rendered notification.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers a rendered email.
type Transport interface {
	Send(ctx context.Context, e *Email) error
}

// Notifier is implemented by Dispatcher and by test doubles.
type Notifier interface {
	Dispatch(ctx context.Context, m *domain.Message)
}

// Dispatcher renders and sends admin notifications. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	cfg       config.EmailConfig
	transport Transport
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil transport disables delivery.
func NewDispatcher(cfg config.EmailConfig, transport Transport, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With("component", "notify"),
	}
}

// Dispatch sends the notification for a stored message.
func (d *Dispatcher) Dispatch(ctx context.Context, m *domain.Message) {
	kind := kindOf(m)
	if d.transport == nil || !d.cfg.Configured() {
		d.logger.Warn("email config missing, skipping admin notification", "message_id", m.ID)
		metrics.RecordNotification(kind, "skipped")
		return
	}

	email, err := Render(m)
	if err != nil {
		d.logger.Error("failed to render notification", "message_id", m.ID, "error", err)
		metrics.RecordNotification(kind, "failed")
		return
	}
	email.To = d.cfg.AdminAddress

	if err := d.transport.Send(ctx, email); err != nil {
		d.logger.Error("failed to send notification", "message_id", m.ID, "error", err)
		metrics.RecordNotification(kind, "failed")
		return
	}

	d.logger.Info("notification sent", "message_id", m.ID, "kind", kind)
	metrics.RecordNotification(kind, "sent")
}

func kindOf(m *domain.Message) string {
	if m.IsQuote() {
		return "quote"
	}
	return "contact"
}

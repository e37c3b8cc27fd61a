package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/domodwyer/mailyak/v3"

	"portfolio/internal/config"
)

// SMTPTransport sends multipart mail through an authenticated SMTP relay.
type SMTPTransport struct {
	cfg config.EmailConfig
}

// NewSMTPTransport creates an SMTP transport
func NewSMTPTransport(cfg config.EmailConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send implements Transport. Port 465 uses implicit TLS, other ports STARTTLS.
func (t *SMTPTransport) Send(ctx context.Context, e *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.cfg.SMTPHost == "" || t.cfg.Username == "" || t.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	addr := net.JoinHostPort(t.cfg.SMTPHost, strconv.Itoa(t.cfg.SMTPPort))
	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.SMTPHost)

	var mail *mailyak.MailYak
	if t.cfg.SMTPPort == 465 {
		m, err := mailyak.NewWithTLS(addr, auth, &tls.Config{ServerName: t.cfg.SMTPHost})
		if err != nil {
			return fmt.Errorf("failed to create tls mailer: %w", err)
		}
		mail = m
	} else {
		mail = mailyak.New(addr, auth)
	}

	mail.To(e.To)
	mail.From(t.cfg.Username)
	mail.FromName(t.cfg.FromName)
	if e.ReplyTo != "" {
		mail.ReplyTo(e.ReplyTo)
	}
	mail.Subject(e.Subject)
	mail.HTML().Set(e.HTML)
	mail.Plain().Set(e.Text)

	if err := mail.Send(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

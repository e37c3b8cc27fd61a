package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"portfolio/internal/captcha"
	"portfolio/internal/domain"
	"portfolio/internal/metrics"
	"portfolio/internal/notify"
	"portfolio/internal/ratelimit"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// notifyTimeout bounds a single background notification.
const notifyTimeout = 30 * time.Second

// SubmitRequest is the public inquiry payload plus the caller's address.
type SubmitRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	Honeypot          string `json:"_h_"`
	VerificationToken string `json:"turnstileToken"`

	ClientIP string `json:"-"`
}

// ContactService implements inquiry intake and the admin inbox
type ContactService struct {
	db       *gorm.DB
	verifier captcha.Verifier
	limit    ratelimit.Policy
	notifier notify.Notifier
	logger   *slog.Logger
	pending  sync.WaitGroup
}

// NewContactService creates a new contact service
func NewContactService(db *gorm.DB, verifier captcha.Verifier, limit ratelimit.Policy, notifier notify.Notifier, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{
		db:       db,
		verifier: verifier,
		limit:    limit,
		notifier: notifier,
		logger:   logger.With("component", "contact"),
	}
}

// Submit validates and stores an inquiry, then notifies the owner in the
// background. Checks run cheapest first and stop at the first failure.
func (s *ContactService) Submit(ctx context.Context, req *SubmitRequest) (*domain.Message, error) {
	if err := s.Admit(req.ClientIP); err != nil {
		return nil, err
	}
	return s.Accept(ctx, req)
}

// Admit charges one attempt from ip against the inquiry policy. Callers that
// parse the payload themselves admit before parsing so malformed bodies count.
func (s *ContactService) Admit(ip string) error {
	if ip == "" {
		ip = "unknown"
	}
	if result := s.limit.Limiter.Allow(ratelimit.BuildKey(s.limit.Name, ip)); !result.Allowed {
		s.logger.Warn("submit rejected: rate limited", "ip", ip, "retry_after", result.RetryAfter)
		metrics.RecordRateLimitRejection(s.limit.Name)
		metrics.RecordInquiry("rate_limited")
		return RateLimitedError(result.RetryAfter)
	}
	return nil
}

// Accept runs the remaining checks on an admitted inquiry and stores it.
func (s *ContactService) Accept(ctx context.Context, req *SubmitRequest) (*domain.Message, error) {
	ip := req.ClientIP
	if ip == "" {
		ip = "unknown"
	}

	if req.Honeypot != "" {
		s.logger.Warn("submit rejected: honeypot populated", "ip", ip)
		metrics.RecordInquiry("spam")
		return nil, SpamError()
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	if missing := missingFields(name, email, message); len(missing) > 0 {
		s.logger.Info("submit rejected: missing fields", "ip", ip, "fields", missing)
		metrics.RecordInquiry("invalid")
		return nil, MissingFieldsError(missing...)
	}

	if req.VerificationToken == "" {
		s.logger.Info("submit rejected: no verification token", "ip", ip)
		metrics.RecordInquiry("verification_required")
		return nil, VerificationRequiredError()
	}

	if !s.verifier.Verify(ctx, req.VerificationToken, req.ClientIP) {
		s.logger.Warn("submit rejected: verification failed", "ip", ip)
		metrics.RecordInquiry("verification_failed")
		return nil, VerificationFailedError()
	}

	if !emailPattern.MatchString(email) {
		s.logger.Info("submit rejected: invalid email", "ip", ip)
		metrics.RecordInquiry("invalid")
		return nil, InvalidEmailError()
	}

	msg := &domain.Message{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(req.Subject),
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		s.logger.Error("submit failed: database error", "error", err)
		metrics.RecordInquiry("persistence_failure")
		return nil, PersistenceError(err)
	}

	s.logger.Info("message stored", "id", msg.ID, "quote", msg.IsQuote())
	metrics.RecordInquiry("accepted")

	s.notifyAsync(*msg)
	return msg, nil
}

func missingFields(name, email, message string) []string {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if message == "" {
		missing = append(missing, "message")
	}
	return missing
}

// notifyAsync dispatches outside the request lifetime. Drain waits for it.
func (s *ContactService) notifyAsync(msg domain.Message) {
	if s.notifier == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.notifier.Dispatch(ctx, &msg)
	}()
}

// Drain waits for in-flight notifications or until ctx is done.
func (s *ContactService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns all messages, newest first
func (s *ContactService) List(ctx context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&messages).Error; err != nil {
		s.logger.Error("list failed: database error", "error", err)
		return nil, InternalError("Failed to fetch messages", err)
	}
	return messages, nil
}

// UnreadCount returns the number of unread messages
func (s *ContactService) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Message{}).Where(map[string]any{"read": false}).Count(&count).Error; err != nil {
		s.logger.Error("unread count failed: database error", "error", err)
		return 0, InternalError("Failed to count messages", err)
	}
	metrics.SetUnreadMessages(count)
	return count, nil
}

// MarkRead flags a message as read and returns it
func (s *ContactService) MarkRead(ctx context.Context, id uint) (*domain.Message, error) {
	var msg domain.Message
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Message")
		}
		return nil, InternalError("Failed to mark message as read", err)
	}

	if !msg.Read {
		if err := s.db.WithContext(ctx).Model(&msg).Update("read", true).Error; err != nil {
			s.logger.Error("mark read failed: database error", "id", id, "error", err)
			return nil, InternalError("Failed to mark message as read", err)
		}
		msg.Read = true
	}
	return &msg, nil
}

// Delete removes a message
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.Message{}, id)
	if result.Error != nil {
		s.logger.Error("delete failed: database error", "id", id, "error", result.Error)
		return InternalError("Failed to delete message", result.Error)
	}
	if result.RowsAffected == 0 {
		return NotFoundError("Message")
	}
	s.logger.Info("message deleted", "id", id)
	return nil
}

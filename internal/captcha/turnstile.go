// Package captcha verifies challenge tokens with the issuing service.
package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/metrics"
)

// Verifier checks a challenge token. Any failure to reach a positive verdict,
// including transport errors, reports false.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token, remoteIP string) bool

func (f VerifierFunc) Verify(ctx context.Context, token, remoteIP string) bool {
	return f(ctx, token, remoteIP)
}

type siteverifyRequest struct {
	Secret   string `json:"secret"`
	Response string `json:"response"`
	RemoteIP string `json:"remoteip,omitempty"`
}

type siteverifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Turnstile verifies tokens against a Cloudflare Turnstile compatible
// siteverify endpoint.
type Turnstile struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTurnstile creates a verifier from configuration.
func NewTurnstile(cfg config.CaptchaConfig, logger *slog.Logger) *Turnstile {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "captcha")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.SecretKey == config.TurnstileTestSecret {
		logger.Warn("Using the Turnstile test secret; every token will pass verification")
	}
	return &Turnstile{
		secret:     cfg.SecretKey,
		verifyURL:  cfg.VerifyURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Verify implements Verifier.
func (t *Turnstile) Verify(ctx context.Context, token, remoteIP string) bool {
	ok, err := t.verify(ctx, token, remoteIP)
	switch {
	case err != nil:
		t.logger.WarnContext(ctx, "Challenge verification error", "err", err)
		metrics.RecordCaptchaVerification("error")
	case !ok:
		metrics.RecordCaptchaVerification("rejected")
	default:
		metrics.RecordCaptchaVerification("success")
	}
	return ok
}

func (t *Turnstile) verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}
	body, err := json.Marshal(siteverifyRequest{Secret: t.secret, Response: token, RemoteIP: remoteIP})
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.verifyURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach issuer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("issuer returned status %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode issuer response: %w", err)
	}
	if !out.Success {
		t.logger.InfoContext(ctx, "Challenge token rejected", "codes", out.ErrorCodes)
	}
	return out.Success, nil
}

// Package client talks to the portfolio API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goahttp "goa.design/goa/v3/http"

	"portfolio/internal/domain"
	"portfolio/internal/pricing"
	"portfolio/internal/wizard"
	apperrors "portfolio/pkg/errors"
)

const defaultTimeout = 15 * time.Second

// Session is the bearer credential of a logged-in admin.
type Session struct {
	Token    string `json:"token" yaml:"token"`
	Username string `json:"username" yaml:"username"`
}

// Client is an API client. It holds no ambient state beyond its session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient returns a copy using hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// WithSession returns a copy authenticated by s.
func (c *Client) WithSession(s *Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

// Session returns the client's session, if any.
func (c *Client) Session() *Session { return c.session }

type errorBody struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body bytes.Buffer
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	if in != nil {
		if err := goahttp.RequestEncoder(req).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.ContentLength = int64(body.Len())
	}
	req.Header.Set("Accept", "application/json")
	if c.session != nil && c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := goahttp.ResponseDecoder(resp).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns an error response into an AppError with the server's category.
func decodeError(resp *http.Response) error {
	var body errorBody
	if err := goahttp.ResponseDecoder(resp).Decode(&body); err != nil || body.Code == "" {
		return apperrors.New(apperrors.ErrCodeInternalError, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	appErr := &apperrors.AppError{
		Code:    apperrors.ErrorCode(body.Code),
		Message: body.Error,
		Fields:  body.Fields,
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		appErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return appErr
}

// CatalogResult mirrors the pricing catalog endpoint.
type CatalogResult struct {
	Types           []pricing.ProjectType `json:"types"`
	BudgetBands     []string              `json:"budgetBands"`
	DisplayCurrency string                `json:"displayCurrency"`
}

// Catalog fetches the pricing catalog.
func (c *Client) Catalog(ctx context.Context) (*pricing.Catalog, string, error) {
	var res CatalogResult
	if err := c.do(ctx, http.MethodGet, "/api/pricing/catalog", nil, &res); err != nil {
		return nil, "", err
	}
	catalog, err := pricing.NewCatalog(res.Types, res.BudgetBands)
	if err != nil {
		return nil, "", fmt.Errorf("server catalog: %w", err)
	}
	return catalog, res.DisplayCurrency, nil
}

// QuoteResult mirrors the quote endpoint.
type QuoteResult struct {
	pricing.Quote
	Display map[string]string `json:"display"`
}

// Quote asks the server to price a selection.
func (c *Client) Quote(ctx context.Context, typeID string, features []string) (*QuoteResult, error) {
	in := map[string]any{"typeId": typeID, "features": features}
	var res QuoteResult
	if err := c.do(ctx, http.MethodPost, "/api/pricing/quote", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitResult is the intake acknowledgement.
type SubmitResult struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

// SubmitInquiry posts an inquiry built by the wizard.
func (c *Client) SubmitInquiry(ctx context.Context, in wizard.Inquiry) (*SubmitResult, error) {
	var res SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/messages", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	in := map[string]string{"username": username, "password": password}
	var res struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &res); err != nil {
		return nil, err
	}
	s := &Session{Token: res.Token, Username: username}
	if res.User != nil {
		s.Username = res.User.Username
	}
	return s, nil
}

// Messages lists stored inquiries, newest first.
func (c *Client) Messages(ctx context.Context) ([]domain.Message, error) {
	var res []domain.Message
	if err := c.do(ctx, http.MethodGet, "/api/messages", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// UnreadCount returns the number of unread inquiries.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var res struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/unread/count", nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// MarkRead flags an inquiry as read.
func (c *Client) MarkRead(ctx context.Context, id uint) (*domain.Message, error) {
	var res domain.Message
	path := "/api/messages/" + url.PathEscape(strconv.FormatUint(uint64(id), 10)) + "/read"
	if err := c.do(ctx, http.MethodPut, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PollUnread calls fn with the unread count now and on every tick until ctx
// is cancelled. The ticker never outlives the call.
func (c *Client) PollUnread(ctx context.Context, every time.Duration, fn func(count int64, err error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		fn(c.UnreadCount(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

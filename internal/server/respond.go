package server

import (
	"context"
	"errors"
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"portfolio/internal/ratelimit"
	apperrors "portfolio/pkg/errors"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// MessageBody is a bare confirmation.
type MessageBody struct {
	Message string `json:"message"`
}

var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeValidation:           http.StatusBadRequest,
	apperrors.ErrCodeBadRequest:           http.StatusBadRequest,
	apperrors.ErrCodeSpamDetected:         http.StatusBadRequest,
	apperrors.ErrCodeVerificationRequired: http.StatusBadRequest,
	apperrors.ErrCodeVerificationFailed:   http.StatusBadRequest,
	apperrors.ErrCodeUnauthorized:         http.StatusUnauthorized,
	apperrors.ErrCodeForbidden:            http.StatusForbidden,
	apperrors.ErrCodeNotFound:             http.StatusNotFound,
	apperrors.ErrCodeRateLimited:          http.StatusTooManyRequests,
	apperrors.ErrCodePersistence:          http.StatusInternalServerError,
	apperrors.ErrCodeInternalError:        http.StatusInternalServerError,
}

// publicCode hides categories that must not be told apart by callers.
func publicCode(code apperrors.ErrorCode) apperrors.ErrorCode {
	if code == apperrors.ErrCodeSpamDetected {
		return apperrors.ErrCodeVerificationFailed
	}
	return code
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	if status, ok := statusByCode[apperrors.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func encode(ctx context.Context, w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}
	// The encoder sets Content-Type, so it is built before the header is written.
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(body); err != nil {
		loggerFrom(ctx).Error("failed to encode response", "error", err)
	}
}

// writeError renders err with a stable public message. Wrapped causes are
// logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Wrap(apperrors.ErrCodeInternalError, "Internal server error", err)
	}

	status := StatusOf(appErr)
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("request failed", "code", appErr.Code, "error", err)
	}
	if appErr.Code == apperrors.ErrCodeRateLimited && appErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", ratelimit.RetryAfterSeconds(appErr.RetryAfter))
	}

	encode(r.Context(), w, status, ErrorBody{
		Error:  appErr.Message,
		Code:   string(publicCode(appErr.Code)),
		Fields: appErr.Fields,
	})
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := goahttp.RequestDecoder(r).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.New(apperrors.ErrCodeBadRequest, "Request body too large")
		}
		return apperrors.New(apperrors.ErrCodeBadRequest, "Invalid request body")
	}
	return nil
}

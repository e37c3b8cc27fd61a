package services

import (
	"time"

	apperrors "portfolio/pkg/errors"
)

// Stable public messages. Diagnostic detail goes to the log only.
const (
	msgRateLimited          = "Too many messages sent. Please try again later."
	msgVerificationFailed   = "Security verification failed"
	msgVerificationRequired = "Security verification required"
	msgFieldsRequired       = "Name, email, and message are required"
	msgInvalidEmail         = "Invalid email format"
	msgSaveFailed           = "Failed to send message"
	msgInvalidCredentials   = "Invalid credentials"
)

// ============================================================
// Intake errors
// ============================================================

// RateLimitedError reports an exhausted inquiry quota
func RateLimitedError(retryAfter time.Duration) *apperrors.AppError {
	return apperrors.RateLimited(msgRateLimited, retryAfter)
}

// SpamError reports a populated honeypot. Its public message matches
// VerificationFailedError.
func SpamError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeSpamDetected, msgVerificationFailed)
}

// VerificationRequiredError reports a missing challenge token
func VerificationRequiredError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeVerificationRequired, msgVerificationRequired)
}

// VerificationFailedError reports a rejected or unverifiable challenge token
func VerificationFailedError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeVerificationFailed, msgVerificationFailed)
}

// MissingFieldsError names the empty required fields
func MissingFieldsError(fields ...string) *apperrors.AppError {
	return apperrors.Validation(msgFieldsRequired, fields...)
}

// InvalidEmailError reports a malformed email address
func InvalidEmailError() *apperrors.AppError {
	return apperrors.Validation(msgInvalidEmail, "email")
}

// PersistenceError wraps a failed write
func PersistenceError(err error) *apperrors.AppError {
	return apperrors.Wrap(apperrors.ErrCodePersistence, msgSaveFailed, err)
}

// ============================================================
// Generic errors
// ============================================================

// NotFoundError reports a missing record
func NotFoundError(what string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeNotFound, what+" not found")
}

// UnauthorizedError reports missing or invalid credentials
func UnauthorizedError(message string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeUnauthorized, message)
}

// BadRequestError reports malformed input
func BadRequestError(message string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeBadRequest, message)
}

// InternalError wraps an unexpected failure
func InternalError(message string, err error) *apperrors.AppError {
	return apperrors.Wrap(apperrors.ErrCodeInternalError, message, err)
}

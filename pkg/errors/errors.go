package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"

	// Inquiry pipeline categories
	ErrCodeSpamDetected         ErrorCode = "SPAM_DETECTED"
	ErrCodeVerificationRequired ErrorCode = "VERIFICATION_REQUIRED"
	ErrCodeVerificationFailed   ErrorCode = "VERIFICATION_FAILED"
	ErrCodeRateLimited          ErrorCode = "RATE_LIMITED"
	ErrCodePersistence          ErrorCode = "PERSISTENCE_FAILURE"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error

	// Fields names the offending input fields of a validation error.
	Fields []string
	// RetryAfter is set on rate limited errors.
	RetryAfter time.Duration
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error naming the offending fields
func Validation(message string, fields ...string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// RateLimited creates a rate limited error carrying the retry delay
func RateLimited(message string, retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       ErrCodeRateLimited,
		Message:    message,
		RetryAfter: retryAfter,
	}
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or INTERNAL_ERROR when err is not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeNotFound
}

// IsUnauthorized checks if error is Unauthorized
func IsUnauthorized(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeUnauthorized
}

// IsForbidden checks if error is Forbidden
func IsForbidden(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeForbidden
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeValidation
}

// IsRateLimited checks if error is a rate limit rejection
func IsRateLimited(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeRateLimited
}

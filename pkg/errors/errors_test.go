package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(ErrCodeNotFound, "message not found"))

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, ErrCodeInternalError, CodeOf(fmt.Errorf("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("missing required fields", "name", "email")

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, []string{"name", "email"}, appErr.Fields)
	assert.True(t, IsValidation(err))
}

func TestRateLimited(t *testing.T) {
	err := RateLimited("slow down", 30*time.Second)

	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 30*time.Second, err.RetryAfter)
	assert.Equal(t, "RATE_LIMITED: slow down", err.Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodePersistence, "could not store message", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

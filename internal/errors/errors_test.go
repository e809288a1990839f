package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")

	t.Run("message includes cause", func(t *testing.T) {
		err := NewStorageError("failed to save script", cause)
		assert.Equal(t, "failed to save script: disk full", err.Error())
		assert.Equal(t, "STORAGE_ERROR", err.Code)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("type checks follow the chain", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", NewNotFoundError("script not found", nil))
		assert.True(t, IsNotFoundError(err))
		assert.False(t, IsValidationError(err))
		assert.Equal(t, ErrorTypeNotFound, TypeOf(err))
		assert.Equal(t, ErrorType(""), TypeOf(cause))
	})

	t.Run("llm unavailable", func(t *testing.T) {
		err := NewLLMUnavailableError("no provider", nil)
		assert.True(t, IsLLMUnavailableError(err))
		assert.Equal(t, "LLM_UNAVAILABLE", err.Code)
	})
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ctx", ErrorTypeError))

	wrapped := WrapError(NewValidationError("empty script", nil), "parse", ErrorTypeError)
	assert.True(t, IsValidationError(wrapped))
	assert.Equal(t, "parse: empty script: empty script", wrapped.Error())

	plain := WrapError(errors.New("boom"), "export", ErrorTypeStorage)
	assert.True(t, IsStorageError(plain))
	assert.Equal(t, "export: boom", plain.Error())
}

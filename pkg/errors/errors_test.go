package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	err := New(KindNotFound, "worker not found")
	assert.Equal(t, "NotFound: worker not found", err.Error())
}

func TestStructuredError_As(t *testing.T) {
	var wrapped error = fmt.Errorf("dispatch failed: %w",
		Newf(KindAuthRejected, "key rejected for %s", "models"))

	var se *StructuredError
	if !stderrors.As(wrapped, &se) {
		t.Fatal("expected StructuredError in chain")
	}
	assert.Equal(t, KindAuthRejected, se.Kind)
	assert.Equal(t, "key rejected for models", se.Message)
}

func TestStructuredError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(KindConnectionFailed, "gateway unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Retryable)
}

func TestStructuredError_WithStatus(t *testing.T) {
	err := New(KindServerError, "internal error").WithStatus(503).WithRetryable(true)
	assert.Equal(t, 503, err.StatusCode)
	assert.True(t, err.Retryable)
}

func TestKind_IsTransport(t *testing.T) {
	assert.True(t, KindConnectionFailed.IsTransport())
	assert.True(t, KindTimeout.IsTransport())
	assert.False(t, KindNotFound.IsTransport())
	assert.False(t, KindServerError.IsTransport())
}

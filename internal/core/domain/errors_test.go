package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrTransport", ErrTransport},
		{"ErrJobFailed", ErrJobFailed},
		{"ErrIllegalTransition", ErrIllegalTransition},
		{"ErrManualTextRequired", ErrManualTextRequired},
		{"ErrSupersededAnswer", ErrSupersededAnswer},
		{"ErrTrackingCancelled", ErrTrackingCancelled},
		{"ErrTrackerGaveUp", ErrTrackerGaveUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{ErrorKindNotFound, ErrNotFound},
		{ErrorKindValidation, ErrInvalidInput},
		{ErrorKindTransport, ErrTransport},
		{ErrorKindServer, ErrTransport},
		{ErrorKindJobFailed, ErrJobFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewError(tt.kind, "boom", nil))
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestError_IsDoesNotMatchOtherKinds(t *testing.T) {
	err := NewError(ErrorKindNotFound, "Project not found", nil)

	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrJobFailed)
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewError(ErrorKindTransport, "backend unreachable", cause)

	assert.Equal(t, "backend unreachable", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Detail(), "connection refused")
	assert.Contains(t, err.Detail(), "transport")
}

func TestError_EmptyMessageFallsBackToCause(t *testing.T) {
	err := NewError(ErrorKindTransport, "", errors.New("timeout"))

	assert.Equal(t, "timeout", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"normalized", NewError(ErrorKindServer, "x", nil), ErrorKindServer},
		{"wrapped normalized", fmt.Errorf("ctx: %w", NewError(ErrorKindNotFound, "x", nil)), ErrorKindNotFound},
		{"sentinel not found", fmt.Errorf("get: %w", ErrNotFound), ErrorKindNotFound},
		{"illegal transition", ErrIllegalTransition, ErrorKindValidation},
		{"superseded", ErrSupersededAnswer, ErrorKindValidation},
		{"job failed", ErrJobFailed, ErrorKindJobFailed},
		{"unknown", errors.New("eof"), ErrorKindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(NewError(ErrorKindTransport, "x", nil)))
	assert.True(t, IsTransient(NewError(ErrorKindServer, "x", nil)))
	assert.False(t, IsTransient(NewError(ErrorKindValidation, "x", nil)))
	assert.False(t, IsTransient(NewError(ErrorKindNotFound, "x", nil)))
}

func TestInvalid(t *testing.T) {
	err := Invalid("field %s is bad", "name")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "field name is bad", err.Error())
	assert.Equal(t, ErrorKindValidation, KindOf(err))
}

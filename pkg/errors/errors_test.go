package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodePermissionDenied, CodeOf(ErrRequesterBanned))
	assert.Equal(t, CodeAlreadyExists, CodeOf(ErrRequestAlreadyActive))
	assert.Equal(t, CodeNotFound, CodeOf(ErrRequestNotFound))
	assert.Equal(t, CodeInternal, CodeOf(stderrors.New("plain error")))

	wrapped := fmt.Errorf("outer: %w", ErrRequestNotWaiting)
	assert.Equal(t, CodeFailedPrecondition, CodeOf(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", ErrInvalidIntent, 400},
		{"failed precondition", ErrRequestNotWaiting, 400},
		{"unauthenticated", ErrInvalidToken, 401},
		{"permission denied", ErrRequesterBanned, 403},
		{"not found", ErrRequestNotFound, 404},
		{"already exists", ErrRequestAlreadyActive, 409},
		{"internal", Internal("boom"), 500},
		{"plain error", stderrors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := ErrSubmitFailed(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

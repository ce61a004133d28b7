package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeInvalidInput, "neighbor out of range"),
			expected: "[INVALID_INPUT] neighbor out of range",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeResource, "allocation refused", errors.New("limit exceeded")),
			expected: "[RESOURCE_ERROR] allocation refused: limit exceeded",
		},
		{
			name:     "formatted",
			err:      Newf(CodeWorkerFailure, "worker %d panicked", 3),
			expected: "[WORKER_FAILURE] worker 3 panicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeStorageError, "upload failed", underlying)

	assert.Equal(t, underlying, err.Unwrap())
	assert.True(t, errors.Is(err, underlying))
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("kernel: %w", Newf(CodeCancelled, "stopped after %d nodes", 10))

	assert.True(t, IsCancelled(err))
	assert.False(t, IsInvalidInput(err))
	assert.False(t, IsUnsupported(err))
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeUnsupported, GetErrorCode(fmt.Errorf("wrap: %w", ErrUnsupported)))
	assert.Equal(t, CodeUnknown, GetErrorCode(errors.New("plain")))
	assert.Equal(t, CodeUnknown, GetErrorCode(nil))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "resource error", GetErrorMessage(ErrResource))
	assert.Equal(t, "plain", GetErrorMessage(errors.New("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))
}

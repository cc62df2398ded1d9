package remote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	wrapped := &ServiceError{Op: "GetJob", Project: "p", JobID: "j", Err: ErrTransient}
	assert.True(t, IsTransient(wrapped))
	assert.True(t, IsTransient(fmt.Errorf("fetch: %w", wrapped)))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
}

func TestIsAlreadyTerminated(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrAlreadyTerminated, true},
		{
			"wrapped sentinel",
			&ServiceError{Op: "RequestStateChange", Project: "p", JobID: "j", Err: ErrAlreadyTerminated},
			true,
		},
		{
			// The remote sometimes only reports the race in prose.
			"message heuristic",
			errors.New("cannot perform operation 'cancel': job has terminated in state JOB_STATE_DONE"),
			true,
		},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAlreadyTerminated(tt.err))
		})
	}
}

func TestServiceError_Message(t *testing.T) {
	err := &ServiceError{Op: "GetMetrics", Project: "acme", JobID: "job-42", Err: ErrTransient}
	assert.Contains(t, err.Error(), "GetMetrics")
	assert.Contains(t, err.Error(), "acme/job-42")
	assert.ErrorIs(t, err, ErrTransient)
}

package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want JobState
	}{
		{"pending", "JOB_STATE_PENDING", StatePending},
		{"running", "JOB_STATE_RUNNING", StateRunning},
		{"stopped", "JOB_STATE_STOPPED", StateStopped},
		{"cancelling", "JOB_STATE_CANCELLING", StateCancelling},
		{"draining", "JOB_STATE_DRAINING", StateDraining},
		{"done", "JOB_STATE_DONE", StateDone},
		{"failed", "JOB_STATE_FAILED", StateFailed},
		{"cancelled", "JOB_STATE_CANCELLED", StateCancelled},
		{"updated", "JOB_STATE_UPDATED", StateUpdated},
		{"drained", "JOB_STATE_DRAINED", StateDrained},
		{"empty string", "", StateUnknown},
		{"unrecognized", "JOB_STATE_SHINY_NEW", StateUnknown},
		{"wrong case", "job_state_running", StateUnknown},
		{"unknown maps to unknown", "JOB_STATE_UNKNOWN", StateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseState(tt.raw))
		})
	}
}

func TestJobState_IsTerminal(t *testing.T) {
	terminal := []JobState{StateDone, StateFailed, StateCancelled, StateUpdated, StateDrained}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}

	nonTerminal := []JobState{StateUnknown, StatePending, StateRunning, StateStopped, StateCancelling, StateDraining}
	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

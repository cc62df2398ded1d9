package remote

// JobState is the canonical lifecycle state of a remote job.
//
// NOTE: The string values are the remote service's wire vocabulary and are a
// compatibility boundary; do not rename them.
type JobState string

const (
	// StateUnknown means the state could not be determined, typically
	// because of a request failure. It is never terminal and is distinct
	// from every real remote status.
	StateUnknown JobState = "JOB_STATE_UNKNOWN"

	StatePending    JobState = "JOB_STATE_PENDING"
	StateRunning    JobState = "JOB_STATE_RUNNING"
	StateStopped    JobState = "JOB_STATE_STOPPED"
	StateCancelling JobState = "JOB_STATE_CANCELLING"
	StateDraining   JobState = "JOB_STATE_DRAINING"

	StateDone      JobState = "JOB_STATE_DONE"
	StateFailed    JobState = "JOB_STATE_FAILED"
	StateCancelled JobState = "JOB_STATE_CANCELLED"
	StateUpdated   JobState = "JOB_STATE_UPDATED"
	StateDrained   JobState = "JOB_STATE_DRAINED"
)

func (s JobState) String() string { return string(s) }

// IsTerminal reports whether the remote job will not transition further.
func (s JobState) IsTerminal() bool {
	switch s {
	case StateDone, StateFailed, StateCancelled, StateUpdated, StateDrained:
		return true
	}
	return false
}

// ParseState canonicalizes a raw remote state string.
//
// Every known remote status maps to exactly one JobState. Unrecognized
// strings map to StateUnknown so a vocabulary drift on the remote side can
// never be mistaken for a terminal state; callers log the raw value.
func ParseState(raw string) JobState {
	switch JobState(raw) {
	case StatePending, StateRunning, StateStopped, StateCancelling, StateDraining,
		StateDone, StateFailed, StateCancelled, StateUpdated, StateDrained:
		return JobState(raw)
	}
	return StateUnknown
}

package watchlog

import "time"

// SessionState is the lifecycle state of a recorded watch session.
//
// NOTE: These values are persisted in session.json and are part of the
// stable on-disk contract.
type SessionState string

const (
	SessionStateWatching SessionState = "watching"
	SessionStateFinished SessionState = "finished"
	SessionStateTimedOut SessionState = "timed_out"
	SessionStateAborted  SessionState = "aborted"
)

// SessionRecord is the persistent record written to session.json.
//
// The schema is designed for backward-compatible extension (additive
// fields).
type SessionRecord struct {
	SessionID string       `json:"session_id"`
	Project   string       `json:"project"`
	JobID     string       `json:"job_id"`
	State     SessionState `json:"state"`
	Endpoint  string       `json:"endpoint,omitempty"`
	CreatedAt time.Time    `json:"created_at"`

	EndedAt    *time.Time `json:"ended_at,omitempty"`
	FinalState string     `json:"final_state,omitempty"`
	Messages   int64      `json:"messages,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`
}

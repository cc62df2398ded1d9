// Package output provides JSONL output for watch runs.
//
// Output is structured as typed record envelopes containing progress
// messages, state transitions, and a final summary. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: jobwatch.<type>.v<version>
const (
	// TypeMessage identifies progress message records.
	TypeMessage = "jobwatch.message.v1"

	// TypeState identifies observed state transition records.
	TypeState = "jobwatch.state.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "jobwatch.summary.v1"
)

// Record is the envelope for all JSONL output.
type Record struct {
	// Type identifies the record type (e.g., "jobwatch.message.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// Project and JobID identify the watched job.
	Project string `json:"project"`
	JobID   string `json:"job_id"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// MessageRecord is the data payload for one remote progress message.
type MessageRecord struct {
	// Time is the remote message timestamp.
	Time time.Time `json:"time"`

	// Severity is the remote severity label.
	Severity string `json:"severity"`

	// Text is the message body.
	Text string `json:"text"`
}

// StateRecord is the data payload for an observed state transition.
type StateRecord struct {
	// State is the canonical job state observed.
	State string `json:"state"`

	// Terminal marks states the job cannot leave.
	Terminal bool `json:"terminal"`
}

// SummaryRecord is the final record of a watch run.
type SummaryRecord struct {
	// FinalState is the terminal state, or "JOB_STATE_UNKNOWN" on timeout.
	FinalState string `json:"final_state"`

	// TimedOut is true when the wait budget elapsed first.
	TimedOut bool `json:"timed_out"`

	// Messages is the count of progress messages delivered.
	Messages int64 `json:"messages"`

	// Duration is the total time spent waiting.
	DurationMS int64 `json:"duration_ms"`
}

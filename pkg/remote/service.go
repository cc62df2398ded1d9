// Package remote defines the contract consumed from the remote
// distributed-processing service: the four job operations, the job state
// vocabulary, and the error taxonomy at that boundary.
package remote

import (
	"context"
	"time"
)

// Service is the remote job service consumed by the monitor.
//
// Implementations are treated as stateless, reentrant collaborators; all
// retry and backoff discipline lives with the caller.
type Service interface {
	// GetJob returns the current remote view of the job.
	GetJob(ctx context.Context, project, jobID string) (*JobInfo, error)

	// RequestStateChange asks the remote service to move the job to the
	// requested state (e.g. StateCancelled.String()).
	RequestStateChange(ctx context.Context, project, jobID, state string) error

	// ListMessagesSince returns progress messages with timestamps strictly
	// after since, in ascending timestamp order.
	ListMessagesSince(ctx context.Context, project, jobID string, since time.Time) ([]ProgressMessage, error)

	// GetMetrics returns the raw metric updates reported for the job.
	GetMetrics(ctx context.Context, project, jobID string) ([]MetricUpdate, error)
}

// JobInfo is the remote view of a job returned by GetJob.
type JobInfo struct {
	// CurrentState is the raw remote state string (see ParseState).
	CurrentState string `json:"current_state"`

	// ReplacedByJobID is the id of the job that replaced this one, set only
	// when the job terminated by being updated.
	ReplacedByJobID string `json:"replaced_by_job_id,omitempty"`
}

// ProgressMessage is one incremental progress message from the remote job.
type ProgressMessage struct {
	// Time is the message timestamp; batches are ordered ascending on it.
	Time time.Time `json:"time"`

	// Severity is the remote severity label (e.g. "INFO", "WARNING").
	Severity string `json:"severity"`

	// Text is the human-readable message body.
	Text string `json:"text"`
}

// MetricUpdate is one raw metric value reported by the remote service.
type MetricUpdate struct {
	// Name is the metric identifier declared by the job.
	Name string `json:"name"`

	// Step qualifies the metric with the parallel execution step that
	// produced it; empty for job-level metrics.
	Step string `json:"step,omitempty"`

	// Value is the reported scalar.
	Value float64 `json:"value"`
}

// QualifiedID returns the step-qualified identifier used for aggregator
// projection: "<step>/<name>", or just the name for job-level metrics.
func (m MetricUpdate) QualifiedID() string {
	if m.Step == "" {
		return m.Name
	}
	return m.Step + "/" + m.Name
}

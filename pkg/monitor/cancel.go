package monitor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// CancelOutcome is the three-way result of a cancellation attempt.
//
// Cancellation and terminal-state observation are not linearizable against a
// single remote write: the job may finish between this client's last read
// and its cancellation request. That race is benign and reported as
// CancelAlreadyTerminal rather than an error.
type CancelOutcome int

const (
	// CancelFailed accompanies a non-nil error from Cancel.
	CancelFailed CancelOutcome = iota

	// CancelRequested means the remote accepted the cancellation request.
	CancelRequested

	// CancelAlreadyTerminal means the request was rejected only because the
	// job independently reached a terminal state first.
	CancelAlreadyTerminal
)

func (o CancelOutcome) String() string {
	switch o {
	case CancelRequested:
		return "requested"
	case CancelAlreadyTerminal:
		return "already-terminal"
	}
	return "failed"
}

// CancelError is the hard-failure branch of Cancel. It carries the job
// identity, the state observed after the failure, and the monitoring page
// where the job can be cancelled manually.
type CancelError struct {
	Project       string
	JobID         string
	State         remote.JobState
	MonitoringURL string
	Err           error
}

func (e *CancelError) Error() string {
	msg := fmt.Sprintf("failed to cancel job %s in state %s", e.JobID, e.State)
	if e.MonitoringURL != "" {
		msg += fmt.Sprintf(", please go to %s to cancel it manually", e.MonitoringURL)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *CancelError) Unwrap() error { return e.Err }

// Cancel requests cancellation of the job.
//
// On request failure the race against terminal-state detection is
// reconciled: if a fresh status query shows the job already terminal, or the
// rejection itself says the job has terminated, the failure is benign and
// absorbed (logged, CancelAlreadyTerminal, nil error). Anything else is a
// hard error.
func (j *Job) Cancel(ctx context.Context) (CancelOutcome, error) {
	err := j.service.RequestStateChange(ctx, j.project, j.jobID, remote.StateCancelled.String())
	if err == nil {
		return CancelRequested, nil
	}

	state := j.State(ctx)
	if state.IsTerminal() {
		j.log.Warn("cancel failed because job is already terminated",
			zap.String("state", state.String()))
		return CancelAlreadyTerminal, nil
	}
	if remote.IsAlreadyTerminated(err) {
		// The status query can lag the remote's own view: it may still
		// report RUNNING while the cancel was rejected because the job is
		// in fact done.
		j.log.Warn("cancel failed because job is already terminated", zap.Error(err))
		return CancelAlreadyTerminal, nil
	}

	return CancelFailed, &CancelError{
		Project:       j.project,
		JobID:         j.jobID,
		State:         state,
		MonitoringURL: MonitoringPageURL(j.cfg.ConsoleBaseURL, j.project, j.jobID),
		Err:           err,
	}
}

package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/jobwatch/pkg/remote"
)

func TestCancel_Accepted(t *testing.T) {
	svc := &fakeService{changeErrs: []error{nil}}
	job, _ := testJob(t, svc, nil)

	outcome, err := job.Cancel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, CancelRequested, outcome)
	// No status query is needed when the request succeeds.
	assert.Equal(t, 0, svc.callCount("GetJob"))
}

func TestCancel_BenignWhenProbeShowsTerminal(t *testing.T) {
	svc := &fakeService{
		changeErrs: []error{errors.New("workflow modification failed")},
		jobs:       []jobReply{done()},
	}
	job, _ := testJob(t, svc, nil)

	outcome, err := job.Cancel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, CancelAlreadyTerminal, outcome)
}

func TestCancel_BenignWhenRejectionSaysTerminated(t *testing.T) {
	// The probe still reports RUNNING, but the remote rejected the cancel
	// because the job is in fact done.
	svc := &fakeService{
		changeErrs: []error{errors.New("cannot perform operation 'cancel': job has terminated in state JOB_STATE_DONE")},
		jobs:       []jobReply{running()},
	}
	job, _ := testJob(t, svc, nil)

	outcome, err := job.Cancel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, CancelAlreadyTerminal, outcome)
}

func TestCancel_BenignWhenAdapterReportsStructuredCode(t *testing.T) {
	svc := &fakeService{
		changeErrs: []error{&remote.ServiceError{
			Op: "RequestStateChange", Project: "acme", JobID: "job-1",
			Err: remote.ErrAlreadyTerminated,
		}},
		jobs: []jobReply{running()},
	}
	job, _ := testJob(t, svc, nil)

	outcome, err := job.Cancel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, CancelAlreadyTerminal, outcome)
}

func TestCancel_HardErrorCarriesContext(t *testing.T) {
	rejection := errors.New("permission denied")
	svc := &fakeService{
		changeErrs: []error{rejection},
		jobs:       []jobReply{running()},
	}
	job, _ := testJob(t, svc, func(cfg *Config) {
		cfg.ConsoleBaseURL = "https://console.example.com"
	})

	outcome, err := job.Cancel(context.Background())

	assert.Equal(t, CancelFailed, outcome)

	var cerr *CancelError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "job-1", cerr.JobID)
	assert.Equal(t, remote.StateRunning, cerr.State)
	assert.Contains(t, cerr.MonitoringURL, "job-1")
	assert.ErrorIs(t, err, rejection)
	assert.Contains(t, err.Error(), "job-1")
}

func TestCancelOutcome_String(t *testing.T) {
	assert.Equal(t, "requested", CancelRequested.String())
	assert.Equal(t, "already-terminal", CancelAlreadyTerminal.String())
	assert.Equal(t, "failed", CancelFailed.String())
}

package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/pkg/backoff"
	"github.com/3leaps/jobwatch/pkg/remote"
)

// State returns the current job state.
//
// Once a terminal state has been observed it is served from the cache
// without further remote calls. Otherwise the state is fetched with the
// multi-retry status policy; on exhaustion this degrades to StateUnknown
// rather than returning an error, so callers never see a hard failure here.
func (j *Job) State(ctx context.Context) remote.JobState {
	if s, ok := j.TerminalState(); ok {
		return s
	}
	return j.stateWithRetries(ctx, j.cfg.statusSpec().Cursor(j.cfg.Clock))
}

// stateWithRetries fetches the current state using the supplied cursor,
// degrading to StateUnknown when the fetch ultimately fails.
func (j *Job) stateWithRetries(ctx context.Context, cursor *backoff.Cursor) remote.JobState {
	if s, ok := j.TerminalState(); ok {
		return s
	}
	info, err := j.getJobWithRetries(ctx, cursor)
	if err != nil {
		return remote.StateUnknown
	}
	return remote.ParseState(info.CurrentState)
}

// getJobWithRetries fetches the remote job view, retrying transient failures
// while the cursor has budget and propagating the last failure once it is
// exhausted. A successful fetch that shows a terminal state permanently
// records it on the handle.
func (j *Job) getJobWithRetries(ctx context.Context, cursor *backoff.Cursor) (*remote.JobInfo, error) {
	for {
		info, err := j.service.GetJob(ctx, j.project, j.jobID)
		if err == nil {
			state := remote.ParseState(info.CurrentState)
			if state == remote.StateUnknown && info.CurrentState != "" {
				j.log.Warn("unrecognized remote job state",
					zap.String("raw_state", info.CurrentState))
			}
			j.recordTerminal(state, info.ReplacedByJobID)
			return info, nil
		}

		j.log.Warn("there were problems getting current job status", zap.Error(err))

		if !remote.IsTransient(err) {
			return nil, err
		}
		d, ok := cursor.Next()
		if !ok {
			return nil, err
		}
		if serr := j.cfg.Sleep(ctx, d); serr != nil {
			return nil, serr
		}
	}
}

// fetchMessages lists progress messages with timestamps after since.
// Failures are left to the caller: the wait loop treats them as "no
// progress this round" and never retries or advances the watermark.
func (j *Job) fetchMessages(ctx context.Context, since time.Time) ([]remote.ProgressMessage, error) {
	return j.service.ListMessagesSince(ctx, j.project, j.jobID, since)
}

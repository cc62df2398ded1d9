package monitor

import (
	"context"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// Metrics returns the job's raw metric updates.
//
// Once the job is terminal and a fetch has returned a non-empty set, that
// set is cached permanently and later calls never hit the remote again.
// Non-terminal jobs always trigger a fresh fetch.
func (j *Job) Metrics(ctx context.Context) ([]remote.MetricUpdate, error) {
	if cached, ok := j.cachedMetrics(); ok {
		return cached, nil
	}

	// Capture terminality before the fetch: a job that finishes mid-fetch
	// gets its metrics cached on the next call instead of caching a
	// potentially pre-terminal snapshot.
	terminal := j.State(ctx).IsTerminal()

	updates, err := j.service.GetMetrics(ctx, j.project, j.jobID)
	if err != nil {
		return nil, err
	}
	if terminal && len(updates) > 0 {
		j.recordTerminalMetrics(updates)
	}
	return updates, nil
}

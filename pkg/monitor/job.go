// Package monitor tracks the lifecycle of a job running on the remote
// distributed-processing service: periodic status polling under a wall-clock
// budget, incremental progress message delivery, cooperative cancellation,
// and access to final metric updates.
package monitor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// Job is a handle on a single remote job.
//
// The handle exclusively owns its remote.Service reference and caches the
// terminal view of the job once any operation observes it: the terminal
// state, the replacement job (when the remote reports one), and the final
// metric updates. Each cached field is written at most once; the first
// writer wins and later observations are no-ops. The cache is guarded so
// handles may be read from multiple goroutines.
type Job struct {
	project string
	jobID   string
	service remote.Service
	cfg     Config
	log     *zap.Logger

	mu              sync.Mutex
	terminalState   remote.JobState
	replacedBy      *Job
	terminalMetrics []remote.MetricUpdate
}

// NewJob creates a handle for the job identified by project and jobID.
func NewJob(project, jobID string, service remote.Service, cfg Config) *Job {
	cfg = cfg.withDefaults()
	return &Job{
		project: project,
		jobID:   jobID,
		service: service,
		cfg:     cfg,
		log:     cfg.Logger.With(zap.String("project", project), zap.String("job_id", jobID)),
	}
}

// Project returns the project/namespace the job belongs to.
func (j *Job) Project() string { return j.project }

// JobID returns the remote job id.
func (j *Job) JobID() string { return j.jobID }

// TerminalState returns the cached terminal state, if one has been observed.
func (j *Job) TerminalState() (remote.JobState, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalState == "" {
		return remote.StateUnknown, false
	}
	return j.terminalState, true
}

// ReplacedBy returns the handle for the job that replaced this one.
//
// It fails if the job has not terminated yet, or terminated without being
// replaced.
func (j *Job) ReplacedBy() (*Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalState == "" {
		return nil, errors.New("job has not terminated")
	}
	if j.replacedBy == nil {
		return nil, fmt.Errorf("job terminated in state %s without being replaced", j.terminalState)
	}
	return j.replacedBy, nil
}

// recordTerminal caches the first observed terminal state, and the
// replacement job when the remote report carries one. Subsequent calls are
// no-ops, which makes the side effect idempotent across probes, direct
// queries, cancellation, and metric fetches.
func (j *Job) recordTerminal(state remote.JobState, replacedByID string) {
	if !state.IsTerminal() {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalState != "" {
		return
	}
	j.terminalState = state
	if replacedByID != "" {
		j.replacedBy = NewJob(j.project, replacedByID, j.service, j.cfg)
	}
}

func (j *Job) cachedMetrics() ([]remote.MetricUpdate, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalMetrics == nil {
		return nil, false
	}
	return j.terminalMetrics, true
}

func (j *Job) recordTerminalMetrics(updates []remote.MetricUpdate) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalMetrics != nil {
		return
	}
	j.terminalMetrics = updates
}

// MonitoringPageURL returns the human-facing console page for a job, or ""
// when no console base URL is configured.
func MonitoringPageURL(base, project, jobID string) string {
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/projects/%s/jobs/%s", strings.TrimSuffix(base, "/"), project, jobID)
}

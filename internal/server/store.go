package server

import (
	"sync"
	"time"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// jobStore holds the scripted jobs and their runtime state. All access
// goes through the mutex; handlers run concurrently.
type jobStore struct {
	mu      sync.Mutex
	started time.Time
	jobs    map[string]*scriptedJob
}

type scriptedJob struct {
	script JobScript

	// polls counts status requests served so far; it indexes into the
	// state sequence, capped at the final entry.
	polls         int
	failsLeft     int
	overrideState remote.JobState
}

func newJobStore(sc *Scenario, started time.Time) *jobStore {
	s := &jobStore{
		started: started,
		jobs:    make(map[string]*scriptedJob, len(sc.Jobs)),
	}
	for _, js := range sc.Jobs {
		s.jobs[js.Project+"/"+js.ID] = &scriptedJob{
			script:    js,
			failsLeft: js.FailPolls,
		}
	}
	return s
}

// poll serves one status request: it returns the current state, then
// advances the script. ok is false when the job does not exist; fail is
// true when an injected transient failure should be returned instead.
func (s *jobStore) poll(project, jobID string) (info remote.JobInfo, ok, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[project+"/"+jobID]
	if !ok {
		return remote.JobInfo{}, false, false
	}
	if j.failsLeft > 0 {
		j.failsLeft--
		return remote.JobInfo{}, true, true
	}

	state := j.stateAt(j.polls)
	if j.polls < len(j.script.States)-1 {
		j.polls++
	}

	info = remote.JobInfo{CurrentState: string(state)}
	if state.IsTerminal() {
		info.ReplacedByJobID = j.script.ReplacedByJobID
	}
	return info, true, false
}

// requestState applies a state-change request. alreadyTerminal reports
// a request against a job that has reached a terminal state.
func (s *jobStore) requestState(project, jobID string, state remote.JobState) (ok, alreadyTerminal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[project+"/"+jobID]
	if !ok {
		return false, false
	}
	if j.stateAt(j.polls).IsTerminal() {
		return true, true
	}
	j.overrideState = state
	return true, false
}

// messagesSince returns messages stamped strictly after the watermark,
// up to the elapsed wall clock. A zero watermark returns everything
// emitted so far.
func (s *jobStore) messagesSince(project, jobID string, since time.Time, now time.Time) ([]remote.ProgressMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[project+"/"+jobID]
	if !ok {
		return nil, false
	}

	var out []remote.ProgressMessage
	for _, m := range j.script.Messages {
		ts := s.started.Add(m.At)
		if ts.After(now) {
			continue
		}
		if !since.IsZero() && !ts.After(since) {
			continue
		}
		out = append(out, remote.ProgressMessage{
			Time:     ts,
			Severity: m.Severity,
			Text:     m.Text,
		})
	}
	return out, true
}

func (s *jobStore) metrics(project, jobID string) ([]remote.MetricUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[project+"/"+jobID]
	if !ok {
		return nil, false
	}
	out := make([]remote.MetricUpdate, 0, len(j.script.Metrics))
	for _, m := range j.script.Metrics {
		out = append(out, remote.MetricUpdate{
			Name:  m.Name,
			Step:  m.Step,
			Value: m.Value,
		})
	}
	return out, true
}

func (j *scriptedJob) stateAt(idx int) remote.JobState {
	if j.overrideState != "" {
		return j.overrideState
	}
	if idx >= len(j.script.States) {
		idx = len(j.script.States) - 1
	}
	return remote.ParseState(j.script.States[idx])
}

package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// Scenario describes the jobs a simulator instance serves. Each job
// advances through its scripted state sequence one step per status
// poll, holding the final state once reached.
type Scenario struct {
	Jobs []JobScript `yaml:"jobs"`
}

// JobScript scripts a single job's observable lifecycle.
type JobScript struct {
	Project string   `yaml:"project"`
	ID      string   `yaml:"id"`
	States  []string `yaml:"states"`

	// ReplacedByJobID is reported once the job reaches a terminal
	// state, for scripting the updated-job case.
	ReplacedByJobID string `yaml:"replaced_by_job_id,omitempty"`

	// FailPolls injects transient failures: the first N status polls
	// return HTTP 503 before the script starts advancing.
	FailPolls int `yaml:"fail_polls,omitempty"`

	Messages []MessageScript `yaml:"messages,omitempty"`
	Metrics  []MetricScript  `yaml:"metrics,omitempty"`
}

// MessageScript is a progress message stamped relative to server start.
type MessageScript struct {
	At       time.Duration `yaml:"at"`
	Severity string        `yaml:"severity"`
	Text     string        `yaml:"text"`
}

// MetricScript is a metric value the job reports.
type MetricScript struct {
	Name  string  `yaml:"name"`
	Step  string  `yaml:"step,omitempty"`
	Value float64 `yaml:"value"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks that every scripted job is well formed.
func (s *Scenario) Validate() error {
	if len(s.Jobs) == 0 {
		return fmt.Errorf("no jobs defined")
	}
	seen := make(map[string]struct{}, len(s.Jobs))
	for i, j := range s.Jobs {
		if j.Project == "" {
			return fmt.Errorf("job %d: project is required", i)
		}
		if j.ID == "" {
			return fmt.Errorf("job %d: id is required", i)
		}
		key := j.Project + "/" + j.ID
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate job %s", key)
		}
		seen[key] = struct{}{}
		if len(j.States) == 0 {
			return fmt.Errorf("job %s: at least one state is required", key)
		}
		for _, st := range j.States {
			if remote.ParseState(st) == remote.StateUnknown && st != string(remote.StateUnknown) {
				return fmt.Errorf("job %s: unrecognized state %q", key, st)
			}
		}
	}
	return nil
}

// Package manifest defines the watch manifest: a YAML or JSON file declaring
// which remote job to monitor, the wait budget, polling overrides, and the
// aggregator bindings to evaluate once the job finishes.
package manifest

import (
	"errors"
	"fmt"
	"time"

	"github.com/3leaps/jobwatch/pkg/metrics"
	"github.com/3leaps/jobwatch/pkg/monitor"
)

// Manifest is the parsed watch manifest.
type Manifest struct {
	// Version is the manifest schema version. Default: "1".
	Version string `yaml:"version" json:"version"`

	// Project is the remote project/namespace id. Required.
	Project string `yaml:"project" json:"project"`

	// JobID is the remote job id. Required.
	JobID string `yaml:"job_id" json:"job_id"`

	// Endpoint is the remote service base URL. Optional; flags/config win.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// Wait configures the wait loop.
	Wait WaitSpec `yaml:"wait,omitempty" json:"wait,omitempty"`

	// Backoff overrides the polling configuration; zero fields keep
	// defaults.
	Backoff BackoffSpec `yaml:"backoff,omitempty" json:"backoff,omitempty"`

	// Output is the JSONL destination for progress records ("-" = stdout).
	Output string `yaml:"output,omitempty" json:"output,omitempty"`

	// Aggregators declares the named aggregates to project from the job's
	// metric updates.
	Aggregators []AggregatorSpec `yaml:"aggregators,omitempty" json:"aggregators,omitempty"`
}

// WaitSpec configures the overall wait.
type WaitSpec struct {
	// Budget is the wall-clock wait budget. Zero waits indefinitely.
	Budget Duration `yaml:"budget,omitempty" json:"budget,omitempty"`
}

// BackoffSpec overrides polling intervals and retry counts.
type BackoffSpec struct {
	StatusInterval  Duration `yaml:"status_interval,omitempty" json:"status_interval,omitempty"`
	MessageInterval Duration `yaml:"message_interval,omitempty" json:"message_interval,omitempty"`
	Exponent        float64  `yaml:"exponent,omitempty" json:"exponent,omitempty"`
	StatusRetries   int      `yaml:"status_retries,omitempty" json:"status_retries,omitempty"`
	MessageRetries  int      `yaml:"message_retries,omitempty" json:"message_retries,omitempty"`
}

// AggregatorSpec declares one aggregator binding.
type AggregatorSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Metrics []string `yaml:"metrics" json:"metrics"`
	Combine string   `yaml:"combine" json:"combine"`
}

// Duration is a time.Duration that unmarshals from "2s"-style strings in
// both YAML and JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return d.parse(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	return d.parse(raw)
}

func (d *Duration) parse(raw string) error {
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Duration(d).String())), nil
}

// ApplyDefaults fills optional fields.
func (m *Manifest) ApplyDefaults() {
	if m.Version == "" {
		m.Version = "1"
	}
}

// Validate checks required fields and the declared aggregators.
func (m *Manifest) Validate() error {
	if m.Project == "" {
		return errors.New("project is required")
	}
	if m.JobID == "" {
		return errors.New("job_id is required")
	}
	if m.Version != "1" {
		return fmt.Errorf("unsupported manifest version %q", m.Version)
	}
	for _, agg := range m.Aggregators {
		if agg.Name == "" {
			return errors.New("aggregator name is required")
		}
		if err := agg.binding().Validate(); err != nil {
			return fmt.Errorf("aggregator %s: %w", agg.Name, err)
		}
	}
	return nil
}

func (a AggregatorSpec) binding() metrics.Binding {
	return metrics.Binding{
		Name:    a.Name,
		Metrics: a.Metrics,
		Combine: metrics.Combiner(a.Combine),
	}
}

// Bindings converts the declared aggregators to metrics bindings.
func (m *Manifest) Bindings() []metrics.Binding {
	out := make([]metrics.Binding, 0, len(m.Aggregators))
	for _, agg := range m.Aggregators {
		out = append(out, agg.binding())
	}
	return out
}

// MonitorConfig maps the backoff overrides onto a monitor configuration.
func (m *Manifest) MonitorConfig() monitor.Config {
	cfg := monitor.DefaultConfig()
	if d := m.Backoff.StatusInterval.Std(); d > 0 {
		cfg.StatusInterval = d
	}
	if d := m.Backoff.MessageInterval.Std(); d > 0 {
		cfg.MessageInterval = d
	}
	if m.Backoff.Exponent > 1.0 {
		cfg.Exponent = m.Backoff.Exponent
	}
	if m.Backoff.StatusRetries > 0 {
		cfg.StatusRetries = m.Backoff.StatusRetries
	}
	if m.Backoff.MessageRetries > 0 {
		cfg.MessageRetries = m.Backoff.MessageRetries
	}
	return cfg
}

package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/jobwatch/pkg/metrics"
)

const validYAML = `
version: "1"
project: acme
job_id: job-2026-03-01
endpoint: http://localhost:8080
wait:
  budget: 30m
backoff:
  status_interval: 1s
  message_retries: 5
output: out.jsonl
aggregators:
  - name: records
    metrics: ["read-*/records"]
    combine: sum
  - name: slowest
    metrics: ["*/latency_ms"]
    combine: max
`

func TestLoadFromBytes_YAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "watch.yaml")
	require.NoError(t, err)

	assert.Equal(t, "acme", m.Project)
	assert.Equal(t, "job-2026-03-01", m.JobID)
	assert.Equal(t, 30*time.Minute, m.Wait.Budget.Std())
	assert.Equal(t, "out.jsonl", m.Output)

	require.Len(t, m.Aggregators, 2)
	assert.Equal(t, "records", m.Aggregators[0].Name)

	bindings := m.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, metrics.CombineMax, bindings[1].Combine)
}

func TestLoadFromBytes_JSON(t *testing.T) {
	data := []byte(`{
		"project": "acme",
		"job_id": "job-1",
		"wait": {"budget": "90s"}
	}`)

	m, err := LoadFromBytes(data, "watch.json")
	require.NoError(t, err)
	assert.Equal(t, "1", m.Version, "version defaulted")
	assert.Equal(t, 90*time.Second, m.Wait.Budget.Std())
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "   "},
		{"missing project", "job_id: j\n"},
		{"missing job id", "project: p\n"},
		{"bad version", "version: \"7\"\nproject: p\njob_id: j\n"},
		{"bad budget", "project: p\njob_id: j\nwait:\n  budget: soon\n"},
		{"aggregator without metrics", "project: p\njob_id: j\naggregators:\n  - name: a\n    combine: sum\n"},
		{"aggregator bad combine", "project: p\njob_id: j\naggregators:\n  - name: a\n    metrics: [\"m\"]\n    combine: avg\n"},
		{"aggregator bad pattern", "project: p\njob_id: j\naggregators:\n  - name: a\n    metrics: [\"[bad\"]\n    combine: sum\n"},
		{"not yaml or json", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.data), "watch.yaml")
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", m.Project)
}

func TestMonitorConfig_Overrides(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "watch.yaml")
	require.NoError(t, err)

	cfg := m.MonitorConfig()
	assert.Equal(t, time.Second, cfg.StatusInterval)
	assert.Equal(t, 5, cfg.MessageRetries)
	// Unset fields keep defaults.
	assert.Equal(t, 2*time.Second, cfg.MessageInterval)
	assert.Equal(t, 4, cfg.StatusRetries)
	assert.Equal(t, 1.5, cfg.Exponent)
}

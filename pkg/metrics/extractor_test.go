package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/jobwatch/pkg/monitor"
	"github.com/3leaps/jobwatch/pkg/remote"
)

// stubService serves a fixed state and metric set.
type stubService struct {
	state      string
	updates    []remote.MetricUpdate
	metricsErr error
}

func (s *stubService) GetJob(ctx context.Context, project, jobID string) (*remote.JobInfo, error) {
	return &remote.JobInfo{CurrentState: s.state}, nil
}

func (s *stubService) RequestStateChange(ctx context.Context, project, jobID, state string) error {
	return nil
}

func (s *stubService) ListMessagesSince(ctx context.Context, project, jobID string, since time.Time) ([]remote.ProgressMessage, error) {
	return nil, nil
}

func (s *stubService) GetMetrics(ctx context.Context, project, jobID string) ([]remote.MetricUpdate, error) {
	return s.updates, s.metricsErr
}

func newExtractor(t *testing.T, svc remote.Service, bindings []Binding) *Extractor {
	t.Helper()
	job := monitor.NewJob("acme", "job-1", svc, monitor.DefaultConfig())
	ex, err := NewExtractor(job, bindings)
	require.NoError(t, err)
	return ex
}

func TestNewExtractor_Validation(t *testing.T) {
	job := monitor.NewJob("acme", "job-1", &stubService{}, monitor.DefaultConfig())

	tests := []struct {
		name     string
		bindings []Binding
		wantErr  error
	}{
		{
			name:     "missing name",
			bindings: []Binding{{Metrics: []string{"a"}, Combine: CombineSum}},
		},
		{
			name:     "no metric patterns",
			bindings: []Binding{{Name: "records", Combine: CombineSum}},
			wantErr:  ErrNoMetrics,
		},
		{
			name:     "invalid pattern",
			bindings: []Binding{{Name: "records", Metrics: []string{"[bad"}, Combine: CombineSum}},
			wantErr:  ErrInvalidPattern,
		},
		{
			name:     "unknown combiner",
			bindings: []Binding{{Name: "records", Metrics: []string{"a"}, Combine: Combiner("avg")}},
			wantErr:  ErrInvalidCombiner,
		},
		{
			name: "duplicate names",
			bindings: []Binding{
				{Name: "records", Metrics: []string{"a"}, Combine: CombineSum},
				{Name: "records", Metrics: []string{"b"}, Combine: CombineSum},
			},
			wantErr: ErrDuplicateBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(job, tt.bindings)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValues_UnknownAggregatorIsPermanent(t *testing.T) {
	for _, state := range []string{"JOB_STATE_RUNNING", "JOB_STATE_DONE"} {
		ex := newExtractor(t, &stubService{state: state}, []Binding{
			{Name: "records", Metrics: []string{"**"}, Combine: CombineSum},
		})

		_, err := ex.Values(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrUnknownAggregator, "state %s", state)
	}
}

func TestValues_CombinesAcrossSteps(t *testing.T) {
	svc := &stubService{
		state: "JOB_STATE_DONE",
		updates: []remote.MetricUpdate{
			{Step: "read-shard-1", Name: "records", Value: 10},
			{Step: "read-shard-1", Name: "records", Value: 5},
			{Step: "read-shard-2", Name: "records", Value: 7},
			{Step: "write", Name: "bytes", Value: 1024},
		},
	}

	tests := []struct {
		name    string
		combine Combiner
		want    map[string]float64
	}{
		{
			name:    "sum per identifier",
			combine: CombineSum,
			want: map[string]float64{
				"read-shard-1/records": 15,
				"read-shard-2/records": 7,
			},
		},
		{
			name:    "min per identifier",
			combine: CombineMin,
			want: map[string]float64{
				"read-shard-1/records": 5,
				"read-shard-2/records": 7,
			},
		},
		{
			name:    "max per identifier",
			combine: CombineMax,
			want: map[string]float64{
				"read-shard-1/records": 10,
				"read-shard-2/records": 7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newExtractor(t, svc, []Binding{
				{Name: "records", Metrics: []string{"read-*/records"}, Combine: tt.combine},
			})

			got, err := ex.Values(context.Background(), "records")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValues_AbsentIdentifiersContributeNothing(t *testing.T) {
	svc := &stubService{
		state: "JOB_STATE_DONE",
		updates: []remote.MetricUpdate{
			{Step: "write", Name: "bytes", Value: 2048},
		},
	}
	ex := newExtractor(t, svc, []Binding{
		{Name: "io", Metrics: []string{"write/bytes", "read/bytes"}, Combine: CombineSum},
	})

	got, err := ex.Values(context.Background(), "io")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"write/bytes": 2048}, got)
}

func TestValues_JobLevelMetricUsesBareName(t *testing.T) {
	svc := &stubService{
		state:   "JOB_STATE_RUNNING",
		updates: []remote.MetricUpdate{{Name: "elapsed_ms", Value: 1200}},
	}
	ex := newExtractor(t, svc, []Binding{
		{Name: "elapsed", Metrics: []string{"elapsed_ms"}, Combine: CombineMax},
	})

	got, err := ex.Values(context.Background(), "elapsed")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"elapsed_ms": 1200}, got)
}

func TestValues_FetchFailureWrapsRetrievalError(t *testing.T) {
	svc := &stubService{
		state: "JOB_STATE_RUNNING",
		metricsErr: &remote.ServiceError{
			Op: "GetMetrics", Project: "acme", JobID: "job-1", Err: remote.ErrTransient,
		},
	}
	ex := newExtractor(t, svc, []Binding{
		{Name: "records", Metrics: []string{"**"}, Combine: CombineSum},
	})

	_, err := ex.Values(context.Background(), "records")

	var rerr *RetrievalError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "records", rerr.Aggregator)
	assert.ErrorIs(t, err, remote.ErrTransient)
}

package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/3leaps/jobwatch/pkg/monitor"
)

// Sentinel errors for extraction.
var (
	// ErrUnknownAggregator means the requested name has no binding on this
	// job. This is a permanent argument error; retrying cannot help.
	ErrUnknownAggregator = errors.New("aggregator is not bound on this job")

	// ErrDuplicateBinding means two bindings share a name.
	ErrDuplicateBinding = errors.New("duplicate aggregator binding")
)

// RetrievalError wraps an I/O failure while fetching metric updates for an
// aggregator.
type RetrievalError struct {
	Aggregator string
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving metric updates for aggregator %q: %v", e.Aggregator, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Extractor evaluates aggregator bindings against a job's metric updates.
type Extractor struct {
	job      *monitor.Job
	bindings map[string]Binding
}

// NewExtractor validates the bindings and returns an extractor for the job.
func NewExtractor(job *monitor.Job, bindings []Binding) (*Extractor, error) {
	byName := make(map[string]Binding, len(bindings))
	for _, b := range bindings {
		if b.Name == "" {
			return nil, errors.New("aggregator binding name is required")
		}
		if _, exists := byName[b.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBinding, b.Name)
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.Name, err)
		}
		byName[b.Name] = b
	}
	return &Extractor{job: job, bindings: byName}, nil
}

// Names returns the declared aggregator names.
func (e *Extractor) Names() []string {
	out := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		out = append(out, name)
	}
	return out
}

// Values evaluates the named aggregator, returning one combined value per
// matched step-qualified metric identifier.
//
// An unknown name is ErrUnknownAggregator regardless of job state. Declared
// patterns that match no reported identifier simply contribute nothing; a
// partially-reporting job never fails the whole extraction. Fetch failures
// are wrapped in a RetrievalError.
func (e *Extractor) Values(ctx context.Context, name string) (map[string]float64, error) {
	binding, ok := e.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAggregator, name)
	}

	updates, err := e.job.Metrics(ctx)
	if err != nil {
		return nil, &RetrievalError{Aggregator: name, Err: err}
	}

	out := make(map[string]float64)
	seen := make(map[string]bool)
	for _, u := range updates {
		id := u.QualifiedID()
		if !binding.matches(id) {
			continue
		}
		out[id] = binding.Combine.reduce(out[id], u.Value, !seen[id])
		seen[id] = true
	}
	return out, nil
}

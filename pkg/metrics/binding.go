// Package metrics projects raw remote metric updates onto user-declared
// named aggregates.
//
// A Binding maps one aggregator name to the underlying remote metric
// identifiers that implement it across parallel execution steps. Identifiers
// are matched with glob patterns so one binding can cover every step of a
// fanned-out stage (e.g. "read-shard-*/records").
package metrics

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Combiner selects how multiple raw updates for one metric identifier are
// reduced to a single value.
type Combiner string

const (
	CombineSum Combiner = "sum"
	CombineMin Combiner = "min"
	CombineMax Combiner = "max"
)

// Valid reports whether the combiner is a known kind.
func (c Combiner) Valid() bool {
	switch c {
	case CombineSum, CombineMin, CombineMax:
		return true
	}
	return false
}

// reduce folds one value into the accumulator.
func (c Combiner) reduce(acc, v float64, first bool) float64 {
	if first {
		return v
	}
	switch c {
	case CombineMin:
		if v < acc {
			return v
		}
		return acc
	case CombineMax:
		if v > acc {
			return v
		}
		return acc
	default:
		return acc + v
	}
}

// Binding declares one named aggregator.
type Binding struct {
	// Name is the user-facing aggregator name.
	Name string

	// Metrics are glob patterns matched against step-qualified metric
	// identifiers ("<step>/<metric>", or "<metric>" for job-level metrics).
	// At least one is required.
	Metrics []string

	// Combine reduces the raw updates for each matched identifier.
	Combine Combiner
}

// Errors returned by binding validation.
var (
	// ErrNoMetrics is returned when a binding declares no metric patterns.
	ErrNoMetrics = errors.New("at least one metric pattern is required")

	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidCombiner is returned for an unknown combine kind.
	ErrInvalidCombiner = errors.New("unknown combine kind")
)

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Validate checks the binding's patterns and combiner.
func (b Binding) Validate() error {
	if len(b.Metrics) == 0 {
		return ErrNoMetrics
	}
	for _, p := range b.Metrics {
		if !doublestar.ValidatePattern(p) {
			return &PatternError{Pattern: p, Err: ErrInvalidPattern}
		}
	}
	if !b.Combine.Valid() {
		return ErrInvalidCombiner
	}
	return nil
}

// matches reports whether a step-qualified identifier belongs to this
// binding.
func (b Binding) matches(qualifiedID string) bool {
	for _, p := range b.Metrics {
		if ok, err := doublestar.Match(p, qualifiedID); err == nil && ok {
			return true
		}
	}
	return false
}

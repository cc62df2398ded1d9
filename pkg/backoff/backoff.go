// Package backoff implements bounded exponential backoff for polling the
// remote job service.
//
// A Spec is immutable configuration; Cursor produces the actual wait
// intervals. The cumulative-duration cap is charged against wall-clock time
// elapsed since the cursor was created, not against the sum of returned
// intervals, so time spent inside remote calls counts against the budget.
package backoff

import (
	"context"
	"time"
)

// Spec configures a backoff sequence.
type Spec struct {
	// Initial is the first wait interval.
	// Default: 2s
	Initial time.Duration

	// Exponent is the multiplicative growth factor between intervals.
	// Default: 1.5
	Exponent float64

	// MaxRetries caps how many intervals a cursor yields before reporting
	// exhaustion. Zero means no retries (fail fast).
	MaxRetries int

	// MaxCumulative caps total wall-clock time charged to the cursor.
	// Zero means no cumulative cap.
	MaxCumulative time.Duration
}

// DefaultSpec returns a Spec with the standard polling interval and growth.
func DefaultSpec() Spec {
	return Spec{
		Initial:  2 * time.Second,
		Exponent: 1.5,
	}
}

// Cursor creates a stateful cursor over this spec using the given clock.
// A nil clock uses the system clock.
func (s Spec) Cursor(clock Clock) *Cursor {
	if clock == nil {
		clock = SystemClock
	}
	spec := s
	if spec.Initial <= 0 {
		spec.Initial = DefaultSpec().Initial
	}
	if spec.Exponent <= 1.0 {
		spec.Exponent = DefaultSpec().Exponent
	}
	return &Cursor{
		spec:  spec,
		clock: clock,
		start: clock.Now(),
		next:  spec.Initial,
	}
}

// Cursor yields successive wait intervals from a Spec.
//
// Cursor is not safe for concurrent use; each polling loop owns its own.
type Cursor struct {
	spec     Spec
	clock    Clock
	start    time.Time
	next     time.Duration
	attempts int
}

// Next returns the next wait interval. The second return value is false once
// the cursor is exhausted: either the retry cap is reached or the cumulative
// wall-clock budget since the cursor was created has run out. An interval
// that would overshoot the remaining cumulative budget is truncated to it.
func (c *Cursor) Next() (time.Duration, bool) {
	if c.attempts >= c.spec.MaxRetries {
		return 0, false
	}

	d := c.next
	if c.spec.MaxCumulative > 0 {
		remaining := c.spec.MaxCumulative - c.clock.Now().Sub(c.start)
		if remaining <= 0 {
			return 0, false
		}
		if d > remaining {
			d = remaining
		}
	}

	c.attempts++
	c.next = time.Duration(float64(c.next) * c.spec.Exponent)
	return d, true
}

// Reset rewinds the cursor to its initial state, restarting both the retry
// count and the cumulative wall-clock budget.
func (c *Cursor) Reset() {
	c.start = c.clock.Now()
	c.next = c.spec.Initial
	c.attempts = 0
}

// Sleep blocks for d or until ctx is cancelled, whichever comes first.
// Returns ctx.Err() on cancellation so callers can tell interruption apart
// from an ordinary elapsed interval.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

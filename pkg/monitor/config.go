package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/pkg/backoff"
)

// Config externalizes the polling intervals and retry budgets used by a Job.
//
// Two distinct backoff policies are derived from it: a zero-retry probe
// policy used inside the wait loop (fail fast, the loop itself handles the
// waiting) and a multi-retry policy for direct status queries and the wait
// loop's sleep schedule.
type Config struct {
	// StatusInterval is the initial backoff interval for status polling.
	// Default: 2s
	StatusInterval time.Duration

	// MessageInterval is the initial backoff interval for the wait loop's
	// message polling schedule.
	// Default: 2s
	MessageInterval time.Duration

	// Exponent is the backoff growth factor.
	// Default: 1.5
	Exponent float64

	// StatusRetries bounds retries for direct status queries.
	// Default: 4
	StatusRetries int

	// MessageRetries bounds consecutive failed wait-loop iterations before
	// the loop gives up.
	// Default: 11
	MessageRetries int

	// ConsoleBaseURL is the human-facing monitoring console base URL used
	// in cancel hard errors. Empty omits the reference.
	ConsoleBaseURL string

	// Clock is used for backoff budget accounting. Nil means system clock.
	Clock backoff.Clock

	// Sleep suspends between polling attempts. Nil means backoff.Sleep.
	// It must return ctx.Err() when the context is cancelled so an
	// interrupted wait is never mistaken for a timeout.
	Sleep func(ctx context.Context, d time.Duration) error

	// Logger receives soft-failure and lifecycle logs. Nil means no-op.
	Logger *zap.Logger
}

// DefaultConfig returns the standard polling configuration.
func DefaultConfig() Config {
	return Config{
		StatusInterval:  2 * time.Second,
		MessageInterval: 2 * time.Second,
		Exponent:        1.5,
		StatusRetries:   4,
		MessageRetries:  11,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.StatusInterval <= 0 {
		c.StatusInterval = def.StatusInterval
	}
	if c.MessageInterval <= 0 {
		c.MessageInterval = def.MessageInterval
	}
	if c.Exponent <= 1.0 {
		c.Exponent = def.Exponent
	}
	if c.StatusRetries <= 0 {
		c.StatusRetries = def.StatusRetries
	}
	if c.MessageRetries <= 0 {
		c.MessageRetries = def.MessageRetries
	}
	if c.Clock == nil {
		c.Clock = backoff.SystemClock
	}
	if c.Sleep == nil {
		c.Sleep = backoff.Sleep
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// probeSpec is the zero-retry policy used per wait-loop iteration.
func (c Config) probeSpec() backoff.Spec {
	return backoff.Spec{Initial: c.StatusInterval, Exponent: c.Exponent, MaxRetries: 0}
}

// statusSpec is the multi-retry policy for direct status queries.
func (c Config) statusSpec() backoff.Spec {
	return backoff.Spec{Initial: c.StatusInterval, Exponent: c.Exponent, MaxRetries: c.StatusRetries}
}

// messagesSpec drives the wait loop's sleep schedule.
func (c Config) messagesSpec() backoff.Spec {
	return backoff.Spec{Initial: c.MessageInterval, Exponent: c.Exponent, MaxRetries: c.MessageRetries}
}

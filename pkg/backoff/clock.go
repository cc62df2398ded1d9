package backoff

import "time"

// Clock abstracts time for cursor budget accounting so tests can drive the
// cumulative-duration cap deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

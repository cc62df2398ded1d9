package remote

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for remote service operations.
var (
	// ErrTransient indicates a network or service-level failure that may
	// succeed on retry.
	ErrTransient = errors.New("transient service error")

	// ErrAlreadyTerminated indicates the remote rejected a state change
	// because the job independently reached a terminal state first.
	ErrAlreadyTerminated = errors.New("job already terminated")

	// ErrNotFound indicates the requested job does not exist.
	ErrNotFound = errors.New("job not found")
)

// ServiceError wraps remote service failures with request context.
type ServiceError struct {
	// Op is the operation that failed (e.g. "GetJob").
	Op string

	// Project and JobID identify the job the request was about.
	Project string
	JobID   string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Project, e.JobID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsTransient returns true if the error is retryable per backoff policy.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsNotFound returns true if the error indicates the job does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyTerminated returns true if the error indicates a state-change
// request lost the race against the job finishing on its own.
//
// The structured sentinel is checked first. The message-text fallback exists
// because some remote deployments only report the race in prose; the wording
// is not guaranteed stable, so adapters should map a structured code to
// ErrAlreadyTerminated whenever one is available.
func IsAlreadyTerminated(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyTerminated) {
		return true
	}
	return strings.Contains(err.Error(), "has terminated")
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request to the remote service.
const DefaultTimeout = 30 * time.Second

// Config configures the HTTP client for the remote job service.
type Config struct {
	// BaseURL is the service endpoint, e.g. "http://localhost:8080".
	// Required.
	BaseURL string

	// Timeout bounds each request. Default: DefaultTimeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second to the service.
	// Zero means unlimited.
	RateLimit float64

	// HTTPClient overrides the underlying client; used by tests.
	HTTPClient *http.Client
}

// Validate checks required fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base URL is required")
	}
	return nil
}

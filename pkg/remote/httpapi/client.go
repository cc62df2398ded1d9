// Package httpapi implements remote.Service over the job service's JSON/HTTP
// surface.
//
// The adapter is intentionally thin: its job is URL construction, payload
// codec, request throttling, and — most importantly — classifying transport
// and HTTP failures into the remote error taxonomy at the boundary.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// Client talks to the remote job service over HTTP.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
}

// Ensure Client implements the collaborator contract.
var _ remote.Service = (*Client)(nil)

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		base:    strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    httpClient,
		limiter: limiter,
	}, nil
}

// errorEnvelope is the service's JSON error body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type stateChangeRequest struct {
	RequestedState string `json:"requested_state"`
}

type messagesResponse struct {
	Messages []remote.ProgressMessage `json:"messages"`
}

type metricsResponse struct {
	Metrics []remote.MetricUpdate `json:"metrics"`
}

// GetJob returns the current remote view of the job.
func (c *Client) GetJob(ctx context.Context, project, jobID string) (*remote.JobInfo, error) {
	var info remote.JobInfo
	if err := c.do(ctx, "GetJob", project, jobID, http.MethodGet, c.jobURL(project, jobID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RequestStateChange asks the service to move the job to the requested state.
func (c *Client) RequestStateChange(ctx context.Context, project, jobID, state string) error {
	body := stateChangeRequest{RequestedState: state}
	return c.do(ctx, "RequestStateChange", project, jobID, http.MethodPost, c.jobURL(project, jobID)+"/state", &body, nil)
}

// ListMessagesSince returns progress messages after since, ascending.
func (c *Client) ListMessagesSince(ctx context.Context, project, jobID string, since time.Time) ([]remote.ProgressMessage, error) {
	u := c.jobURL(project, jobID) + "/messages"
	if !since.IsZero() {
		u += "?since=" + url.QueryEscape(since.Format(time.RFC3339Nano))
	}
	var resp messagesResponse
	if err := c.do(ctx, "ListMessagesSince", project, jobID, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// GetMetrics returns the job's raw metric updates.
func (c *Client) GetMetrics(ctx context.Context, project, jobID string) ([]remote.MetricUpdate, error) {
	var resp metricsResponse
	if err := c.do(ctx, "GetMetrics", project, jobID, http.MethodGet, c.jobURL(project, jobID)+"/metrics", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Metrics, nil
}

func (c *Client) jobURL(project, jobID string) string {
	return fmt.Sprintf("%s/v1/projects/%s/jobs/%s", c.base, url.PathEscape(project), url.PathEscape(jobID))
}

func (c *Client) do(ctx context.Context, op, project, jobID, method, u string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.wrap(op, project, jobID, err)
		}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return c.wrap(op, project, jobID, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return c.wrap(op, project, jobID, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport-level failure: connection refused, timeout, etc.
		return c.wrap(op, project, jobID, fmt.Errorf("%w: %v", remote.ErrTransient, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.wrap(op, project, jobID, classifyStatus(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return c.wrap(op, project, jobID, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func (c *Client) wrap(op, project, jobID string, err error) error {
	return &remote.ServiceError{Op: op, Project: project, JobID: jobID, Err: err}
}

// classifyStatus maps a non-200 response onto the remote error taxonomy.
func classifyStatus(resp *http.Response) error {
	var envelope errorEnvelope
	msg := ""
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil {
		if json.Unmarshal(b, &envelope) == nil {
			msg = envelope.Error.Message
		}
		if msg == "" {
			msg = strings.TrimSpace(string(b))
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", remote.ErrNotFound, msg)
	case envelope.Error.Code == "ALREADY_TERMINATED":
		return fmt.Errorf("%w: %s", remote.ErrAlreadyTerminated, msg)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: http %d: %s", remote.ErrTransient, resp.StatusCode, msg)
	default:
		return fmt.Errorf("http %d: %s", resp.StatusCode, msg)
	}
}

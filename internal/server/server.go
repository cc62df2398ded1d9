// Package server implements a local simulator of the remote job
// service. It serves the same JSON/HTTP surface the httpapi client
// consumes, driving scripted jobs through their state sequences so the
// wait loop, cancellation, and metrics paths can be exercised without a
// real backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/pkg/remote"
)

// Server is a simulator instance.
type Server struct {
	host  string
	port  int
	store *jobStore
	log   *zap.Logger
}

// New creates a simulator serving the given scenario.
func New(host string, port int, sc *Scenario) *Server {
	return &Server{
		host:  host,
		port:  port,
		store: newJobStore(sc, time.Now()),
		log:   observability.ServiceLogger,
	}
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}

// HTTPErrorResponse is the JSON error envelope returned on failures.
type HTTPErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/projects/{project}/jobs/{jobID}", func(r chi.Router) {
		r.Get("/", s.handleGetJob)
		r.Post("/state", s.handleRequestState)
		r.Get("/messages", s.handleListMessages)
		r.Get("/metrics", s.handleGetMetrics)
	})

	return r
}

// ListenAndServe runs the simulator until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("simulator listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	project, jobID := chi.URLParam(r, "project"), chi.URLParam(r, "jobID")

	info, ok, fail := s.store.poll(project, jobID)
	if !ok {
		s.jobNotFound(w, project, jobID)
		return
	}
	if fail {
		s.log.Warn("injecting transient failure",
			zap.String("project", project),
			zap.String("job_id", jobID))
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "simulated transient failure")
		return
	}

	s.log.Debug("status poll served",
		zap.String("project", project),
		zap.String("job_id", jobID),
		zap.String("state", info.CurrentState))
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRequestState(w http.ResponseWriter, r *http.Request) {
	project, jobID := chi.URLParam(r, "project"), chi.URLParam(r, "jobID")

	var body struct {
		RequestedState string `json:"requested_state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	requested := remote.ParseState(body.RequestedState)
	if requested != remote.StateCancelled {
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_STATE",
			fmt.Sprintf("cannot request state %q", body.RequestedState))
		return
	}

	ok, alreadyTerminal := s.store.requestState(project, jobID, requested)
	if !ok {
		s.jobNotFound(w, project, jobID)
		return
	}
	if alreadyTerminal {
		writeError(w, http.StatusConflict, "ALREADY_TERMINATED",
			fmt.Sprintf("job %s has terminated", jobID))
		return
	}

	s.log.Info("state change accepted",
		zap.String("project", project),
		zap.String("job_id", jobID),
		zap.String("requested_state", string(requested)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	project, jobID := chi.URLParam(r, "project"), chi.URLParam(r, "jobID")

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST",
				fmt.Sprintf("invalid since timestamp %q", raw))
			return
		}
		since = parsed
	}

	msgs, ok := s.store.messagesSince(project, jobID, since, time.Now())
	if !ok {
		s.jobNotFound(w, project, jobID)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]remote.ProgressMessage{"messages": msgs})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	project, jobID := chi.URLParam(r, "project"), chi.URLParam(r, "jobID")

	updates, ok := s.store.metrics(project, jobID)
	if !ok {
		s.jobNotFound(w, project, jobID)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]remote.MetricUpdate{"metrics": updates})
}

func (s *Server) jobNotFound(w http.ResponseWriter, project, jobID string) {
	writeError(w, http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("job %s/%s not found", project, jobID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var resp HTTPErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

package output

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records for a watch run.
//
// Implementations must be safe for concurrent use. Each Write* method emits
// a complete record as a single line of JSON followed by a newline.
type Writer interface {
	// WriteMessage emits a progress message record.
	WriteMessage(ctx context.Context, msg *MessageRecord) error

	// WriteState emits a state transition record.
	WriteState(ctx context.Context, st *StateRecord) error

	// WriteSummary emits the final summary record.
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex to ensure atomic line writes.
type JSONLWriter struct {
	w       io.Writer
	project string
	jobID   string
	mu      sync.Mutex
	closed  bool
}

// NewJSONLWriter creates a new JSONL writer for one watched job.
func NewJSONLWriter(w io.Writer, project, jobID string) *JSONLWriter {
	return &JSONLWriter{w: w, project: project, jobID: jobID}
}

// WriteMessage emits a progress message record.
func (jw *JSONLWriter) WriteMessage(ctx context.Context, msg *MessageRecord) error {
	return jw.writeRecord(ctx, TypeMessage, msg)
}

// WriteState emits a state transition record.
func (jw *JSONLWriter) WriteState(ctx context.Context, st *StateRecord) error {
	return jw.writeRecord(ctx, TypeState, st)
}

// WriteSummary emits the final summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer closed. The underlying io.Writer is not closed;
// the caller owns it.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recType string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	rec := Record{
		Type:    recType,
		TS:      time.Now().UTC(),
		Project: jw.project,
		JobID:   jw.jobID,
		Data:    data,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.closed {
		return errors.New("writer is closed")
	}
	_, err = jw.w.Write(line)
	return err
}

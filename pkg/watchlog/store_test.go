package watchlog

import (
	"testing"
	"time"
)

func TestStore_BeginFinishRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	rec, err := s.Begin("acme", "job-1", "http://localhost:8080")
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if rec.SessionID == "" {
		t.Fatalf("session id not assigned")
	}
	if rec.State != SessionStateWatching {
		t.Fatalf("state mismatch: got=%q want=%q", rec.State, SessionStateWatching)
	}

	if err := s.Finish(rec, SessionStateFinished, "JOB_STATE_DONE", 12); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	got, err := s.Get(rec.SessionID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.State != SessionStateFinished {
		t.Fatalf("state mismatch: got=%q want=%q", got.State, SessionStateFinished)
	}
	if got.FinalState != "JOB_STATE_DONE" {
		t.Fatalf("final state mismatch: got=%q", got.FinalState)
	}
	if got.Messages != 12 {
		t.Fatalf("message count mismatch: got=%d", got.Messages)
	}
	if got.EndedAt == nil {
		t.Fatalf("ended_at not persisted")
	}
}

func TestStore_ListSortsNewestFirst(t *testing.T) {
	s := NewStore(t.TempDir())

	older := &SessionRecord{
		SessionID: "older",
		Project:   "acme",
		JobID:     "job-1",
		State:     SessionStateFinished,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &SessionRecord{
		SessionID: "newer",
		Project:   "acme",
		JobID:     "job-2",
		State:     SessionStateWatching,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Write(older); err != nil {
		t.Fatalf("Write(older) error: %v", err)
	}
	if err := s.Write(newer); err != nil {
		t.Fatalf("Write(newer) error: %v", err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	if got[0].SessionID != "newer" || got[1].SessionID != "older" {
		t.Fatalf("unexpected order: %s, %s", got[0].SessionID, got[1].SessionID)
	}
}

func TestStore_WriteValidation(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Write(nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
	if err := s.Write(&SessionRecord{}); err == nil {
		t.Fatalf("expected error for missing session_id")
	}

	empty := NewStore("  ")
	if err := empty.Write(&SessionRecord{SessionID: "x"}); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

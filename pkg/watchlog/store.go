// Package watchlog records watch sessions on local disk so long waits leave
// an auditable trail that outlives the process.
package watchlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store persists and loads SessionRecords from an on-disk directory.
//
// Directory layout:
//
//	<root>/<session_id>/session.json
//
// Root is expected to be under the app data dir.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: strings.TrimSpace(root)}
}

func (s *Store) RootDir() string {
	return s.root
}

func (s *Store) SessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

func (s *Store) SessionPath(sessionID string) string {
	return filepath.Join(s.SessionDir(sessionID), "session.json")
}

func (s *Store) ensureRoot() error {
	if strings.TrimSpace(s.root) == "" {
		return fmt.Errorf("watchlog root dir is empty")
	}
	return os.MkdirAll(s.root, 0755)
}

// Begin creates and persists a new session record in the watching state.
func (s *Store) Begin(project, jobID, endpoint string) (*SessionRecord, error) {
	rec := &SessionRecord{
		SessionID: uuid.New().String(),
		Project:   project,
		JobID:     jobID,
		State:     SessionStateWatching,
		Endpoint:  endpoint,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Finish closes the session with its outcome and persists it.
func (s *Store) Finish(rec *SessionRecord, state SessionState, finalState string, messages int64) error {
	now := time.Now().UTC()
	rec.State = state
	rec.FinalState = finalState
	rec.Messages = messages
	rec.EndedAt = &now
	return s.Write(rec)
}

func (s *Store) Write(record *SessionRecord) error {
	if record == nil {
		return fmt.Errorf("session record is nil")
	}
	sessionID := strings.TrimSpace(record.SessionID)
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if err := s.ensureRoot(); err != nil {
		return err
	}

	dir := s.SessionDir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	b, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(dir, "session.json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tmpName, s.SessionPath(sessionID)); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

func (s *Store) Get(sessionID string) (*SessionRecord, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	b, err := os.ReadFile(s.SessionPath(sessionID))
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return nil, fmt.Errorf("session.json is empty")
	}

	var record SessionRecord
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, fmt.Errorf("parse session.json: %w", err)
	}
	return &record, nil
}

func (s *Store) List() ([]SessionRecord, error) {
	if err := s.ensureRoot(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read watchlog root: %w", err)
	}

	out := make([]SessionRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r, err := s.Get(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

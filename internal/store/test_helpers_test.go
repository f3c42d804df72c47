package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a session header with the default catalog.
func createTestSession(t *testing.T, s *Store, id string, seq int64) Session {
	t.Helper()
	sess := Session{
		ID:         id,
		Strategy:   "priority-list",
		Catalog:    `[{"count":1,"type":"Internal"}]`,
		CreatedSeq: seq,
	}
	if err := s.WriteSession(context.Background(), sess); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return sess
}

// createTestStep creates a step record with minimal required fields.
func createTestStep(sessionID string, seq int64, index int, device string) StepRecord {
	return StepRecord{
		SessionID: sessionID,
		Seq:       seq,
		Index:     index,
		Kind:      "plug",
		Device:    device,
		Label:     "Plug " + device,
		Active:    device,
		Connected: []string{device},
		Priority:  []string{device},
		Digest:    "digest-" + device,
	}
}

package store

import (
	"context"
	"testing"
)

func TestGetLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	last, err := s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if last != 0 {
		t.Errorf("empty journal: got %d, want 0", last)
	}

	createTestSession(t, s, "s1", 1)
	if err := s.WriteStep(ctx, createTestStep("s1", 5, 1, "USB 1")); err != nil {
		t.Fatal(err)
	}
	createTestSession(t, s, "s2", 7)

	last, err = s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if last != 7 {
		t.Errorf("got %d, want 7", last)
	}

	sessionLast, err := s.GetLastSeqForSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetLastSeqForSession() failed: %v", err)
	}
	if sessionLast != 5 {
		t.Errorf("got %d, want 5", sessionLast)
	}
}

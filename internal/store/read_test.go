package store

import (
	"context"
	"errors"
	"testing"
)

func TestReadSteps_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "s1", 1)

	// Written out of order on purpose.
	for _, rec := range []StepRecord{
		createTestStep("s1", 4, 3, "HDMI 1"),
		createTestStep("s1", 2, 1, "USB 1"),
		createTestStep("s1", 3, 2, "USB 2"),
	} {
		if err := s.WriteStep(ctx, rec); err != nil {
			t.Fatalf("WriteStep() failed: %v", err)
		}
	}

	steps, err := s.ReadSteps(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadSteps() failed: %v", err)
	}

	var seqs []int64
	for _, st := range steps {
		seqs = append(seqs, st.Seq)
	}
	want := []int64{2, 3, 4}
	if len(seqs) != len(want) {
		t.Fatalf("got seqs %v, want %v", seqs, want)
	}
	for i := range want {
		if seqs[i] != want[i] {
			t.Fatalf("got seqs %v, want %v", seqs, want)
		}
	}
}

func TestReadSteps_IsolatesSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "a", 1)
	createTestSession(t, s, "b", 2)

	if err := s.WriteStep(ctx, createTestStep("a", 3, 1, "USB 1")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteStep(ctx, createTestStep("b", 3, 1, "USB 2")); err != nil {
		t.Fatal(err)
	}

	steps, err := s.ReadSteps(ctx, "b")
	if err != nil {
		t.Fatalf("ReadSteps() failed: %v", err)
	}
	if len(steps) != 1 || steps[0].Device != "USB 2" {
		t.Errorf("unexpected steps for session b: %+v", steps)
	}
}

func TestReadSteps_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	steps, err := s.ReadSteps(context.Background(), "none")
	if err != nil {
		t.Fatalf("ReadSteps() failed: %v", err)
	}
	if steps == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestReadSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSession(context.Background(), "nope")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestListSessions_Ordered(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, "late", 10)
	createTestSession(t, s, "b-early", 1)
	createTestSession(t, s, "a-early", 1)

	sessions, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}

	var ids []string
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	want := []string{"a-early", "b-early", "late"}
	if len(ids) != 3 || ids[0] != want[0] || ids[1] != want[1] || ids[2] != want[2] {
		t.Errorf("got %v, want %v", ids, want)
	}
}

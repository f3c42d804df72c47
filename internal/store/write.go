package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session header.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, strategy, catalog, created_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Strategy,
		sess.Catalog,
		sess.CreatedSeq,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteStep appends a step to its session.
// Uses ON CONFLICT(session_id, seq) DO NOTHING: the first write wins.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WriteStep(ctx context.Context, rec StepRecord) error {
	connected, err := marshalNames(rec.Connected)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	priority, err := marshalNames(rec.Priority)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps
		(session_id, seq, idx, kind, device, label, active, connected, priority, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		rec.SessionID,
		rec.Seq,
		rec.Index,
		rec.Kind,
		rec.Device,
		rec.Label,
		rec.Active,
		connected,
		priority,
		rec.Digest,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}

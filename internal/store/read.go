package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session id has no header row.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession returns the header of a session.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, strategy, catalog, created_seq
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Strategy, &sess.Catalog, &sess.CreatedSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every session ordered by creation seq, then id.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, catalog, created_seq
		FROM sessions
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Strategy, &sess.Catalog, &sess.CreatedSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSteps returns the steps of a session ordered by seq ASC.
//
// Returns an empty slice (not nil) if the session has no steps.
func (s *Store) ReadSteps(ctx context.Context, sessionID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, idx, kind, device, label, active, connected, priority, digest
		FROM steps
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []StepRecord{}
	for rows.Next() {
		rec, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func scanStep(rows *sql.Rows) (StepRecord, error) {
	var (
		rec       StepRecord
		connected string
		priority  string
	)
	err := rows.Scan(
		&rec.SessionID,
		&rec.Seq,
		&rec.Index,
		&rec.Kind,
		&rec.Device,
		&rec.Label,
		&rec.Active,
		&connected,
		&priority,
		&rec.Digest,
	)
	if err != nil {
		return StepRecord{}, fmt.Errorf("scan step: %w", err)
	}

	if rec.Connected, err = unmarshalNames(connected); err != nil {
		return StepRecord{}, fmt.Errorf("scan step %d: %w", rec.Seq, err)
	}
	if rec.Priority, err = unmarshalNames(priority); err != nil {
		return StepRecord{}, fmt.Errorf("scan step %d: %w", rec.Seq, err)
	}
	return rec, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GetLastSeq returns the highest seq across all sessions and steps, or 0
// for an empty journal. A replaying engine resumes its clock from here.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT created_seq AS seq FROM sessions
			UNION ALL
			SELECT seq FROM steps
		)
	`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return last.Int64, nil
}

// GetLastSeqForSession returns the highest step seq of one session, or 0.
func (s *Store) GetLastSeqForSession(ctx context.Context, sessionID string) (int64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM steps WHERE session_id = ?
	`, sessionID).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("get last seq for session: %w", err)
	}
	return last.Int64, nil
}

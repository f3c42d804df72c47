package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while the engine runs a session.
//
// Runtime errors include:
//   - Journal write: a step was applied but could not be journaled
//   - Replay mismatch: a replayed step digest differs from the journal
//   - Replay failure: a journaled event could not be applied again
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// Seq is the logical seq of the affected step, if any.
	Seq int64

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeJournalWrite indicates a step could not be written to the journal.
	ErrCodeJournalWrite RuntimeErrorCode = "JOURNAL_WRITE"

	// ErrCodeReplayMismatch indicates a replayed step differs from the journal.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"

	// ErrCodeReplayFailed indicates a journaled event was rejected on replay.
	ErrCodeReplayFailed RuntimeErrorCode = "REPLAY_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.SessionID != "" && e.Seq != 0 {
		msg = fmt.Sprintf("%s (session=%s, seq=%d)", msg, e.SessionID, e.Seq)
	} else if e.SessionID != "" {
		msg = fmt.Sprintf("%s (session=%s)", msg, e.SessionID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsJournalError returns true if the error is a journal write failure.
// Uses errors.As to handle wrapped errors.
func IsJournalError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeJournalWrite
	}
	return false
}

// IsReplayMismatch returns true if the error is a replay digest mismatch.
func IsReplayMismatch(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReplayMismatch
	}
	return false
}

// NewJournalError creates a RuntimeError for a failed journal write.
func NewJournalError(sessionID string, seq int64, err error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeJournalWrite,
		Message:   "step applied but not journaled",
		SessionID: sessionID,
		Seq:       seq,
		Err:       err,
	}
}

// NewReplayMismatchError creates a RuntimeError for a digest mismatch.
func NewReplayMismatchError(sessionID string, seq int64, want, got string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeReplayMismatch,
		Message:   "replayed step digest differs from journal",
		SessionID: sessionID,
		Seq:       seq,
		Details: map[string]string{
			"want": want,
			"got":  got,
		},
	}
}

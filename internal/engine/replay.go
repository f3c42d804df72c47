package engine

import (
	"context"
	"fmt"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/strategy"
	"github.com/roach88/devsel/internal/timeline"
)

// Mismatch is a replayed step whose digest differs from the journal.
type Mismatch struct {
	Seq   int64  `json:"seq"`
	Index int    `json:"index"`
	Label string `json:"label"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	SessionID  string
	Strategy   string
	Steps      int
	Mismatches []Mismatch
}

// OK reports whether every step matched.
func (r *ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Err returns a RuntimeError for the first mismatch, or nil.
func (r *ReplayReport) Err() error {
	if r.OK() {
		return nil
	}
	m := r.Mismatches[0]
	return NewReplayMismatchError(r.SessionID, m.Seq, m.Want, m.Got)
}

// Replay re-applies the journaled events of a session to a fresh strategy
// and compares each resulting step digest with the journaled one.
//
// The replaying engine writes nothing. Options are applied to it, so tests
// can pass WithLogger.
func Replay(ctx context.Context, j *store.Store, sessionID string, opts ...Option) (*ReplayReport, error) {
	sess, err := j.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	spec, err := DecodeCatalog(sess.Catalog)
	if err != nil {
		return nil, err
	}
	catalog, err := device.NewCatalog(spec)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	strat, err := strategy.New(sess.Strategy)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	records, err := j.ReadSteps(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithSessionID(sessionID), WithCatalog(spec)}, opts...)
	eng := New(timeline.New(strat), opts...)

	report := &ReplayReport{SessionID: sessionID, Strategy: sess.Strategy}
	for _, rec := range records {
		ev, err := recordEvent(catalog, rec)
		if err != nil {
			return nil, replayFailed(sessionID, rec, err)
		}

		step, err := eng.Apply(ctx, rec.Index-1, ev)
		if err != nil {
			return nil, replayFailed(sessionID, rec, err)
		}

		got, err := StepDigest(rec.Index, step)
		if err != nil {
			return nil, replayFailed(sessionID, rec, err)
		}
		report.Steps++
		if got != rec.Digest {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Seq:   rec.Seq,
				Index: rec.Index,
				Label: rec.Label,
				Want:  rec.Digest,
				Got:   got,
			})
		}
	}

	return report, nil
}

func recordEvent(c *device.Catalog, rec store.StepRecord) (timeline.Event, error) {
	kind, err := timeline.ParseKind(rec.Kind)
	if err != nil {
		return timeline.Event{}, err
	}
	d, err := c.Resolve(rec.Device)
	if err != nil {
		return timeline.Event{}, err
	}
	return timeline.Event{Kind: kind, Device: d}, nil
}

func replayFailed(sessionID string, rec store.StepRecord, err error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeReplayFailed,
		Message:   fmt.Sprintf("cannot re-apply %s:%s at index %d", rec.Kind, rec.Device, rec.Index-1),
		SessionID: sessionID,
		Seq:       rec.Seq,
		Err:       err,
	}
}

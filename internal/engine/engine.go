package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/timeline"
)

// AtHead derives the next step from the last step of the timeline.
const AtHead = -1

// Engine drives one selection session.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Apply(): for synchronous callers that do not use Run
//
// INVARIANTS:
//   - every accepted step gets a seq strictly greater than all before it
//   - a rejected event leaves the timeline and the journal untouched
type Engine struct {
	timeline  *timeline.Timeline
	journal   *store.Store
	clock     Sequencer
	queue     *requestQueue
	idGen     SessionIDGenerator
	sessionID string
	catalog   []device.TypeCount
	logger    *slog.Logger
	begun     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records every accepted step in j.
func WithJournal(j *store.Store) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithIDGenerator replaces the UUIDv7 session id generator.
func WithIDGenerator(g SessionIDGenerator) Option {
	return func(e *Engine) {
		e.idGen = g
	}
}

// WithClock replaces the logical clock. Use NewClockAt to append sessions
// to an existing journal.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithCatalog records the catalog spec in the session header.
// Defaults to device.DefaultSpec.
func WithCatalog(spec []device.TypeCount) Option {
	return func(e *Engine) {
		e.catalog = spec
	}
}

// New creates an Engine over tl.
func New(tl *timeline.Timeline, opts ...Option) *Engine {
	e := &Engine{
		timeline: tl,
		clock:    NewClock(),
		queue:    newRequestQueue(),
		idGen:    UUIDv7Generator{},
		catalog:  device.DefaultSpec,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.sessionID == "" {
		e.sessionID = e.idGen.Generate()
	}
	e.logger = e.logger.With("session", e.sessionID)

	return e
}

// SessionID returns the session id.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Timeline returns the timeline the engine writes to.
func (e *Engine) Timeline() *timeline.Timeline {
	return e.timeline
}

// Clock returns the logical clock.
func (e *Engine) Clock() Sequencer {
	return e.clock
}

// QueueLen returns the number of requests waiting for Run.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Begin stamps the session start and writes the session header to the
// journal. Apply calls it on first use; calling it again is a no-op.
func (e *Engine) Begin(ctx context.Context) error {
	if e.begun {
		return nil
	}

	seq := e.clock.Next()
	kind := e.timeline.Last().Strategy().Kind()

	if e.journal != nil {
		catalog, err := EncodeCatalog(e.catalog)
		if err != nil {
			return err
		}
		err = e.journal.WriteSession(ctx, store.Session{
			ID:         e.sessionID,
			Strategy:   kind,
			Catalog:    catalog,
			CreatedSeq: seq,
		})
		if err != nil {
			return NewJournalError(e.sessionID, seq, err)
		}
	}

	e.begun = true
	e.logger.Info("session started", "strategy", kind, "seq", seq, "journaled", e.journal != nil)
	return nil
}

// Apply derives a step from timeline index at and stores it at at+1.
//
// Rejected events (e.g. selecting a device that is not connected) return
// the error unchanged and leave the timeline as it was.
func (e *Engine) Apply(ctx context.Context, at int, ev timeline.Event) (timeline.Step, error) {
	res := e.apply(ctx, at, ev)
	return res.Step, res.Err
}

func (e *Engine) apply(ctx context.Context, at int, ev timeline.Event) Result {
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}
	if err := e.Begin(ctx); err != nil {
		return Result{Err: err}
	}

	if at == AtHead {
		at = e.timeline.Len() - 1
	}

	step, err := e.timeline.Apply(at, ev)
	if err != nil {
		e.logger.Debug("event rejected", "event", ev.String(), "at", at, "error", err)
		return Result{Err: err}
	}

	index := at + 1
	seq := e.clock.Next()
	res := Result{Step: step, Index: index, Seq: seq}

	if e.journal != nil {
		rec, err := NewStepRecord(e.sessionID, seq, index, ev, step)
		if err != nil {
			res.Err = fmt.Errorf("build step record: %w", err)
			return res
		}
		if err := e.journal.WriteStep(ctx, rec); err != nil {
			res.Err = NewJournalError(e.sessionID, seq, err)
			return res
		}
	}

	e.logger.Debug("step applied",
		"event", ev.String(),
		"index", index,
		"seq", seq,
		"active", activeName(step),
	)
	return res
}

// Enqueue submits a request for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(r Request) bool {
	return e.queue.Enqueue(r)
}

// Run starts the single-writer loop.
// Blocks until context is cancelled or Stop() is called and the queue
// has drained.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// A failed request is logged with its event and processing continues.
// Requests with a Done channel also receive the error.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		if r, ok := e.queue.TryDequeue(); ok {
			e.process(ctx, r)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so a closed and
			// drained queue ends the loop. Otherwise retry TryDequeue.
			if e.queue.Drained() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the request queue. Run returns once queued requests are
// processed.
func (e *Engine) Stop() {
	e.queue.Close()
}

// process applies one request.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) process(ctx context.Context, r Request) {
	res := e.apply(ctx, r.At, r.Event)
	if res.Err != nil {
		e.logger.Error("request failed",
			"error", res.Err,
			"event", r.Event.String(),
			"at", r.At,
		)
	}

	if r.Done == nil {
		return
	}
	select {
	case r.Done <- res:
	default:
		e.logger.Warn("result dropped: done channel full", "event", r.Event.String())
	}
}

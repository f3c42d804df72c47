package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/engine"
	"github.com/roach88/devsel/internal/logging"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/strategy"
	"github.com/roach88/devsel/internal/testutil"
	"github.com/roach88/devsel/internal/timeline"
)

// Harness executes one scenario.
type Harness struct {
	journal *store.Store
	engine  *engine.Engine
	catalog *device.Catalog
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger routes harness and engine logs to l. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal with a deterministic
// clock and a fixed session id. The returned error covers setup problems
// (bad catalog, unknown device names); expectation failures are collected
// in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := device.LoadCatalog(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	strat, err := strategy.New(scenario.Strategy)
	if err != nil {
		return nil, err
	}

	journal, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer journal.Close()

	logger := logging.Component(o.logger, "harness").With("scenario", scenario.Name)
	eng := engine.New(timeline.New(strat),
		engine.WithJournal(journal),
		engine.WithIDGenerator(testutil.NewFixedSessionGenerator(scenario.SessionID)),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithCatalog(catalog.Spec()),
		engine.WithLogger(logging.Component(o.logger, "engine")),
	)

	h := &Harness{
		journal: journal,
		engine:  eng,
		catalog: catalog,
		logger:  logger,
	}

	ctx := context.Background()
	if err := eng.Begin(ctx); err != nil {
		return nil, err
	}

	result := NewResult()
	result.SessionID = eng.SessionID()
	result.AddTrace(traceEntry(0, eng.Timeline().Last()))

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	last := eng.Timeline().Last()
	result.Visualization = last.Visualize()
	if scenario.Final != nil {
		for _, msg := range checkExpect("final", scenario.Final, last, eng.Timeline().Len()) {
			result.AddError(msg)
		}
	}

	actx := &AssertionContext{
		Ctx:       ctx,
		Journal:   journal,
		SessionID: eng.SessionID(),
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	logger.Debug("scenario finished", "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// executeSteps applies every step through the engine and checks its
// expectations and the step invariants.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		where := fmt.Sprintf("steps[%d]", i)

		ev, err := step.Event(h.catalog)
		if err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}

		at := engine.AtHead
		if step.From != nil {
			at = *step.From
		}

		next, err := h.engine.Apply(ctx, at, ev)
		if err != nil {
			h.handleRejection(where, at, ev, step.Expect, err, result)
			continue
		}

		index := h.engine.Timeline().Len() - 1
		result.AddTrace(traceEntry(index, next))

		if err := timeline.CheckInvariants(next); err != nil {
			result.AddError(fmt.Sprintf("%s (%s): invariant violated: %v", where, next.Label(), err))
		}
		if step.Expect == nil {
			continue
		}
		if step.Expect.Error != "" {
			result.AddError(fmt.Sprintf("%s (%s): expected error %q, got success", where, next.Label(), step.Expect.Error))
			continue
		}
		for _, msg := range checkExpect(where, step.Expect, next, h.engine.Timeline().Len()) {
			result.AddError(msg)
		}

		h.logger.Debug("step checked", "step", i, "label", next.Label())
	}
	return nil
}

func (h *Harness) handleRejection(where string, at int, ev timeline.Event, exp *Expect, err error, result *Result) {
	code := "error"
	if strategy.IsNotConnected(err) {
		code = ErrorNotConnected
	}

	if at == engine.AtHead {
		at = h.engine.Timeline().Len() - 1
	}
	result.AddTrace(TraceEntry{
		Index:     at,
		Label:     rejectedLabel(ev),
		Connected: []string{},
		Priority:  []string{},
		Error:     code,
	})

	if exp == nil || exp.Error != code {
		result.AddError(fmt.Sprintf("%s (%s): unexpected error: %v", where, ev, err))
		return
	}
	if exp.Steps != 0 && exp.Steps != h.engine.Timeline().Len() {
		result.AddError(fmt.Sprintf("%s (%s): steps = %d, want %d", where, ev, h.engine.Timeline().Len(), exp.Steps))
	}
}

func rejectedLabel(ev timeline.Event) string {
	switch ev.Kind {
	case timeline.KindPlug:
		return "Plug " + ev.Device.Name
	case timeline.KindUnplug:
		return "Unplug " + ev.Device.Name
	default:
		return "Select " + ev.Device.Name
	}
}

func traceEntry(index int, s timeline.Step) TraceEntry {
	e := TraceEntry{
		Index:     index,
		Label:     s.Label(),
		Connected: device.Names(s.Connected()),
		Priority:  device.Names(s.Ranked()),
	}
	if a, ok := s.Active(); ok {
		e.Active = a.Name
	}
	return e
}

// checkExpect compares a step against an expectation and returns one
// message per mismatch.
func checkExpect(where string, exp *Expect, s timeline.Step, steps int) []string {
	var errs []string
	prefix := fmt.Sprintf("%s (%s)", where, s.Label())

	if exp.Active != "" {
		got := ActiveNone
		if a, ok := s.Active(); ok {
			got = a.Name
		}
		if got != exp.Active {
			errs = append(errs, fmt.Sprintf("%s: active = %s, want %s", prefix, got, exp.Active))
		}
	}
	if exp.Connected != nil {
		if got := device.Names(s.Connected()); !slices.Equal(got, exp.Connected) {
			errs = append(errs, fmt.Sprintf("%s: connected = [%s], want [%s]",
				prefix, strings.Join(got, ", "), strings.Join(exp.Connected, ", ")))
		}
	}
	if exp.Priority != nil {
		if got := device.Names(s.Ranked()); !slices.Equal(got, exp.Priority) {
			errs = append(errs, fmt.Sprintf("%s: priority = [%s], want [%s]",
				prefix, strings.Join(got, " > "), strings.Join(exp.Priority, " > ")))
		}
	}
	if exp.Steps != 0 && exp.Steps != steps {
		errs = append(errs, fmt.Sprintf("%s: steps = %d, want %d", prefix, steps, exp.Steps))
	}
	return errs
}

package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/devsel/internal/engine"
	"github.com/roach88/devsel/internal/store"
)

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertJournalReplay = "journal_replay"
)

// Assertion validates a property of the whole trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Label is the step label for trace_contains and trace_count.
	Label string `yaml:"label,omitempty"`

	// Labels must appear in this order for trace_order.
	// Other steps may appear between them.
	Labels []string `yaml:"labels,omitempty"`

	// Active optionally narrows trace_contains to steps with this active
	// device.
	Active string `yaml:"active,omitempty"`

	// Count is the exact number of matches for trace_count.
	Count int `yaml:"count,omitempty"`
}

// AssertionContext carries what journal assertions need.
type AssertionContext struct {
	Ctx       context.Context
	Journal   *store.Store
	SessionID string
}

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEntry
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, entry := range e.Trace {
			if entry.Error != "" {
				fmt.Fprintf(&buf, "  [%d] %s (rejected: %s)\n", entry.Index, entry.Label, entry.Error)
				continue
			}
			active := entry.Active
			if active == "" {
				active = ActiveNone
			}
			fmt.Fprintf(&buf, "  [%d] %s -> %s\n", entry.Index, entry.Label, active)
		}
	}

	return buf.String()
}

func validateAssertion(i int, a *Assertion) error {
	where := fmt.Sprintf("assertions[%d]", i)
	switch a.Type {
	case AssertTraceContains:
		if a.Label == "" {
			return fmt.Errorf("%s: trace_contains requires label", where)
		}
	case AssertTraceOrder:
		if len(a.Labels) < 2 {
			return fmt.Errorf("%s: trace_order requires at least two labels", where)
		}
	case AssertTraceCount:
		if a.Label == "" {
			return fmt.Errorf("%s: trace_count requires label", where)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", where)
		}
	case AssertJournalReplay:
	case "":
		return fmt.Errorf("%s: type is required", where)
	default:
		return fmt.Errorf("%s: unknown assertion type %q", where, a.Type)
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertJournalReplay:
			err = assertJournalReplay(actx, result.Trace)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// accepted reports whether a trace entry is a step that was stored.
func accepted(e TraceEntry) bool {
	return e.Error == ""
}

// assertTraceContains checks that some accepted step has the label and,
// when set, the active device.
func assertTraceContains(trace []TraceEntry, a Assertion) error {
	for _, e := range trace {
		if !accepted(e) || e.Label != a.Label {
			continue
		}
		if a.Active == "" || e.Active == a.Active || (a.Active == ActiveNone && e.Active == "") {
			return nil
		}
	}

	expected := fmt.Sprintf("step %q", a.Label)
	if a.Active != "" {
		expected += fmt.Sprintf(" with active %s", a.Active)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the labels appear as a subsequence of the
// accepted steps.
func assertTraceOrder(trace []TraceEntry, a Assertion) error {
	next := 0
	for _, e := range trace {
		if next == len(a.Labels) {
			break
		}
		if accepted(e) && e.Label == a.Labels[next] {
			next++
		}
	}
	if next == len(a.Labels) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("steps in order: %v", a.Labels),
		Actual:   fmt.Sprintf("%q not found after %v", a.Labels[next], a.Labels[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that exactly Count accepted steps have the label.
func assertTraceCount(trace []TraceEntry, a Assertion) error {
	count := 0
	for _, e := range trace {
		if accepted(e) && e.Label == a.Label {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %q", a.Count, a.Label),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertJournalReplay replays the scenario's journal and requires every
// step digest to match.
func assertJournalReplay(actx *AssertionContext, trace []TraceEntry) error {
	if actx == nil || actx.Journal == nil {
		return fmt.Errorf("journal_replay requires a journal")
	}

	report, err := engine.Replay(actx.Ctx, actx.Journal, actx.SessionID)
	if err != nil {
		return &AssertionError{
			Type:     AssertJournalReplay,
			Expected: "journal replays cleanly",
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if !report.OK() {
		m := report.Mismatches[0]
		return &AssertionError{
			Type:     AssertJournalReplay,
			Expected: "all step digests match",
			Actual: fmt.Sprintf("%d mismatches, first at seq %d (%s)",
				len(report.Mismatches), m.Seq, m.Label),
			Trace: trace,
		}
	}
	return nil
}

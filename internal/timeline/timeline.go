package timeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/devsel/internal/strategy"
)

// ErrIndexOutOfRange is returned when a step index does not exist.
var ErrIndexOutOfRange = errors.New("step index out of range")

// Timeline is an ordered history of steps. Writing after index i discards
// every step beyond i, like typing after an undo.
//
// Timeline is not safe for concurrent use.
type Timeline struct {
	steps []Step
}

// New returns a timeline holding only the initial step for s.
func New(s strategy.Strategy) *Timeline {
	return &Timeline{steps: []Step{Initial(s)}}
}

// Len returns the number of steps, always at least 1.
func (t *Timeline) Len() int {
	return len(t.steps)
}

// At returns step i.
func (t *Timeline) At(i int) (Step, error) {
	if i < 0 || i >= len(t.steps) {
		return Step{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(t.steps))
	}
	return t.steps[i], nil
}

// Last returns the most recent step.
func (t *Timeline) Last() Step {
	return t.steps[len(t.steps)-1]
}

// Steps returns the steps in order.
func (t *Timeline) Steps() []Step {
	return slices.Clone(t.steps)
}

// Push stores s at i+1, truncating everything after i.
func (t *Timeline) Push(i int, s Step) error {
	if i < 0 || i >= len(t.steps) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(t.steps))
	}
	t.steps = append(t.steps[:i+1], s)
	return nil
}

// Apply derives a step from step i and pushes it at i+1. A failed event
// leaves the timeline unchanged.
func (t *Timeline) Apply(i int, ev Event) (Step, error) {
	from, err := t.At(i)
	if err != nil {
		return Step{}, err
	}
	next, err := from.Apply(ev)
	if err != nil {
		return Step{}, err
	}
	if err := t.Push(i, next); err != nil {
		return Step{}, err
	}
	return next, nil
}

package timeline

import (
	"fmt"
	"slices"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/strategy"
)

// InitialLabel is the label of the first step of every timeline.
const InitialLabel = "Initial state"

// Step is an immutable snapshot of the selection state.
//
// Every transition clones the strategy before mutating it, so a Step never
// observes changes made while deriving later steps.
type Step struct {
	label     string
	connected []device.Device
	active    *device.Device
	strategy  strategy.Strategy
}

// Initial returns the "Initial state" step: nothing connected, nothing
// active, and the given strategy with no history.
func Initial(s strategy.Strategy) Step {
	return Step{label: InitialLabel, strategy: s.Clone()}
}

// Plug returns the step after d is physically connected. Plugging a device
// that is already connected re-probes the same set.
func (s Step) Plug(d device.Device) Step {
	connected := slices.Clone(s.connected)
	if !device.Contains(connected, d) {
		connected = append(connected, d)
	}
	return s.probe("Plug "+d.Name, connected)
}

// Unplug returns the step after d is physically disconnected.
func (s Step) Unplug(d device.Device) Step {
	connected := slices.DeleteFunc(slices.Clone(s.connected), d.Same)
	return s.probe("Unplug "+d.Name, connected)
}

func (s Step) probe(label string, connected []device.Device) Step {
	next := Step{label: label, connected: connected, strategy: s.strategy.Clone()}
	if active, ok := next.strategy.Probe(connected); ok {
		next.active = &active
	}
	return next
}

// Select returns the step after the user picks d. On failure the error is
// returned and s is unchanged.
func (s Step) Select(d device.Device) (Step, error) {
	st := s.strategy.Clone()
	if err := st.Select(&d); err != nil {
		return Step{}, err
	}
	next := Step{
		label:     "Select " + d.Name,
		connected: slices.Clone(s.connected),
		strategy:  st,
	}
	if active, ok := st.Active(); ok {
		next.active = &active
	}
	return next, nil
}

// Apply derives the next step from an event.
func (s Step) Apply(ev Event) (Step, error) {
	switch ev.Kind {
	case KindPlug:
		return s.Plug(ev.Device), nil
	case KindUnplug:
		return s.Unplug(ev.Device), nil
	case KindSelect:
		return s.Select(ev.Device)
	default:
		return Step{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
}

// Label describes the transition that produced the step.
func (s Step) Label() string {
	return s.label
}

// Connected returns the connected devices in plug order.
func (s Step) Connected() []device.Device {
	return slices.Clone(s.connected)
}

// Active returns the active device, if any.
func (s Step) Active() (device.Device, bool) {
	if s.active == nil {
		return device.Device{}, false
	}
	return *s.active, true
}

// IsConnected reports whether d is connected in this step.
func (s Step) IsConnected(d device.Device) bool {
	return device.Contains(s.connected, d)
}

// Visualize renders the strategy state.
func (s Step) Visualize() string {
	return s.strategy.Visualize()
}

// Strategy returns a clone of the step's strategy.
func (s Step) Strategy() strategy.Strategy {
	return s.strategy.Clone()
}

// Ranked returns the strategy's recorded preferences, strongest first, or
// nil for strategies that keep none.
func (s Step) Ranked() []device.Device {
	if r, ok := s.strategy.(strategy.Ranker); ok {
		return r.Ranked()
	}
	return nil
}

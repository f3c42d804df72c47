package strategy

import (
	"fmt"
	"sort"

	"github.com/roach88/devsel/internal/device"
)

// Strategy decides which connected device is active.
//
// Probe and Select mutate the receiver. Clone returns an independent copy
// so snapshots can derive new state without touching old state.
type Strategy interface {
	// Kind names the policy, e.g. "priority-list".
	Kind() string

	// Probe reconciles state with the full set of physically connected
	// devices and returns the resulting active device.
	Probe(devices []device.Device) (device.Device, bool)

	// Select makes d active. A nil d clears the active device.
	Select(d *device.Device) error

	// Clone returns a deep copy sharing no mutable state.
	Clone() Strategy

	// Visualize renders the recorded preference order as text.
	Visualize() string

	// Active returns the active device, if any.
	Active() (device.Device, bool)

	// Connected returns the connected devices in admission order.
	Connected() []device.Device
}

// Ranker is implemented by strategies that keep a user preference order.
type Ranker interface {
	// Ranked returns recorded preferences, strongest first.
	Ranked() []device.Device
}

// Factory builds a fresh strategy with no history.
type Factory func() Strategy

var registry = map[string]Factory{
	KindPriorityList: func() Strategy { return NewPriorityList() },
}

// DefaultKind is used when no kind is configured.
const DefaultKind = KindPriorityList

// New builds a fresh strategy of the given kind. An empty kind selects
// DefaultKind.
func New(kind string) (Strategy, error) {
	if kind == "" {
		kind = DefaultKind
	}
	f, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownKind, kind, Kinds())
	}
	return f(), nil
}

// Kinds lists registered strategy kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

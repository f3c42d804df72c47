package timeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/devsel/internal/device"
)

// Kind distinguishes the three user-visible transitions.
type Kind string

const (
	KindPlug   Kind = "plug"
	KindUnplug Kind = "unplug"
	KindSelect Kind = "select"
)

// Kinds lists event kinds in a stable order.
var Kinds = []Kind{KindPlug, KindUnplug, KindSelect}

// ErrUnknownEvent is returned for an event kind outside Kinds.
var ErrUnknownEvent = errors.New("unknown event kind")

// Event is a single transition request.
type Event struct {
	Kind   Kind          `json:"kind" yaml:"kind"`
	Device device.Device `json:"device" yaml:"device"`
}

// Plug, Unplug and Select build events.
func Plug(d device.Device) Event   { return Event{Kind: KindPlug, Device: d} }
func Unplug(d device.Device) Event { return Event{Kind: KindUnplug, Device: d} }
func Select(d device.Device) Event { return Event{Kind: KindSelect, Device: d} }

// ParseKind accepts "plug", "unplug" or "select" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// ParseEvent parses the "kind:device" form used on the command line, for
// example "plug:USB 1". The device is resolved against c.
func ParseEvent(c *device.Catalog, s string) (Event, error) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok {
		return Event{}, fmt.Errorf("event %q: want kind:device", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Event{}, err
	}
	d, err := c.Resolve(name)
	if err != nil {
		return Event{}, fmt.Errorf("event %q: %w", s, err)
	}
	return Event{Kind: k, Device: d}, nil
}

// String returns the "kind:device" form.
func (e Event) String() string {
	return string(e.Kind) + ":" + e.Device.Name
}

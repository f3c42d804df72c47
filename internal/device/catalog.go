package device

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownDevice is returned by Lookup callers when a name is not in the catalog.
var ErrUnknownDevice = errors.New("unknown device")

// TypeCount is one entry of a catalog spec.
type TypeCount struct {
	Type  Type `json:"type"`
	Count int  `json:"count"`
}

// DefaultSpec is the device population used when no catalog file is given.
var DefaultSpec = []TypeCount{
	{Type: Internal, Count: 1},
	{Type: ThreePointFive, Count: 1},
	{Type: USB, Count: 3},
	{Type: HDMI, Count: 3},
	{Type: Bluetooth, Count: 3},
}

// Catalog is the fixed set of devices available to a session.
type Catalog struct {
	spec    []TypeCount
	devices []Device
	byName  map[string]int
}

// NewCatalog expands spec into devices. A type with count 1 yields a device
// named after the type; larger counts yield "<type> 1" .. "<type> n".
func NewCatalog(spec []TypeCount) (*Catalog, error) {
	c := &Catalog{spec: slices.Clone(spec), byName: make(map[string]int)}
	for i, entry := range spec {
		if !entry.Type.Valid() {
			return nil, fmt.Errorf("catalog[%d]: %w: %q", i, ErrUnknownType, entry.Type)
		}
		if entry.Count < 1 {
			return nil, fmt.Errorf("catalog[%d]: count for %s must be at least 1, got %d", i, entry.Type, entry.Count)
		}
		if entry.Count == 1 {
			if err := c.add(Device{Type: entry.Type, Name: string(entry.Type)}); err != nil {
				return nil, fmt.Errorf("catalog[%d]: %w", i, err)
			}
			continue
		}
		for n := 1; n <= entry.Count; n++ {
			d := Device{Type: entry.Type, Name: fmt.Sprintf("%s %d", entry.Type, n)}
			if err := c.add(d); err != nil {
				return nil, fmt.Errorf("catalog[%d]: %w", i, err)
			}
		}
	}
	return c, nil
}

// Default returns the catalog built from DefaultSpec.
func Default() *Catalog {
	c, err := NewCatalog(DefaultSpec)
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

func (c *Catalog) add(d Device) error {
	key := NormalizeName(d.Name)
	if _, dup := c.byName[key]; dup {
		return fmt.Errorf("duplicate device name %q", d.Name)
	}
	c.byName[key] = len(c.devices)
	c.devices = append(c.devices, d)
	return nil
}

// All returns every device in catalog order. The slice is a copy.
func (c *Catalog) All() []Device {
	out := make([]Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// Spec returns the spec the catalog was built from.
func (c *Catalog) Spec() []TypeCount {
	return slices.Clone(c.spec)
}

// Len returns the number of devices.
func (c *Catalog) Len() int {
	return len(c.devices)
}

// Lookup finds a device by name.
func (c *Catalog) Lookup(name string) (Device, bool) {
	i, ok := c.byName[NormalizeName(name)]
	if !ok {
		return Device{}, false
	}
	return c.devices[i], true
}

// Resolve is Lookup with an error for unknown names.
func (c *Catalog) Resolve(name string) (Device, error) {
	d, ok := c.Lookup(name)
	if !ok {
		return Device{}, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
	return d, nil
}

// MustLookup is Lookup that panics on unknown names. Intended for tests and
// static tables.
func (c *Catalog) MustLookup(name string) Device {
	d, ok := c.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("device %q not in catalog", name))
	}
	return d
}

package device

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Type is the closed set of audio endpoint kinds.
type Type string

const (
	Internal       Type = "Internal"
	ThreePointFive Type = "3.5mm"
	USB            Type = "USB"
	HDMI           Type = "HDMI"
	Bluetooth      Type = "Bluetooth"
)

// Types lists every Type in declaration order.
var Types = []Type{Internal, ThreePointFive, USB, HDMI, Bluetooth}

// ErrUnknownType is returned when a type name is not one of Types.
var ErrUnknownType = errors.New("unknown device type")

// ParseType resolves a display name ("3.5mm", "USB", ...) to a Type.
// Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	trimmed := strings.TrimSpace(s)
	for _, t := range Types {
		if strings.EqualFold(string(t), trimmed) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// String returns the display name.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is one of Types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// BuiltinPriority is the fallback ranking used when no user preference is
// recorded. Higher wins.
func (t Type) BuiltinPriority() int {
	switch t {
	case ThreePointFive, USB, Bluetooth:
		return 3
	case Internal:
		return 2
	case HDMI:
		return 1
	default:
		return 0
	}
}

// Device is an audio endpoint identity. Name is the unique key.
type Device struct {
	Type Type   `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// IsJack reports whether d is a 3.5mm jack device.
func (d Device) IsJack() bool {
	return d.Type == ThreePointFive
}

// Same reports whether d and other share a name.
func (d Device) Same(other Device) bool {
	return d.Name == other.Name
}

func (d Device) String() string {
	return d.Name
}

// NormalizeName trims and NFC-normalizes a device name so lookups do not
// depend on how the caller composed it.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Contains reports whether devices holds a device named like d.
func Contains(devices []Device, d Device) bool {
	return IndexOf(devices, d) >= 0
}

// IndexOf returns the position of d in devices by name, or -1.
func IndexOf(devices []Device, d Device) int {
	for i, x := range devices {
		if x.Name == d.Name {
			return i
		}
	}
	return -1
}

// Names projects devices to their names.
func Names(devices []Device) []string {
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// Dedupe returns devices with later duplicates (by name) removed.
func Dedupe(devices []Device) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if !Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

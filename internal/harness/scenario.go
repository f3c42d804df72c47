package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/timeline"
)

// Scenario defines a device-selection scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is a CUE catalog file, relative to the scenario file.
	// Empty means the default catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Strategy names the strategy kind. Empty means the default.
	Strategy string `yaml:"strategy,omitempty"`

	// SessionID is an optional fixed session id for the journal.
	SessionID string `yaml:"session_id,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Final is checked against the last step after all steps ran.
	Final *Expect `yaml:"final,omitempty"`

	// Assertions validate the whole trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one event. Exactly one of Plug, Unplug and Select is set.
type Step struct {
	Plug   string `yaml:"plug,omitempty"`
	Unplug string `yaml:"unplug,omitempty"`
	Select string `yaml:"select,omitempty"`

	// From is the timeline index to derive from. Nil means the last step.
	// Deriving from an earlier step discards the steps after it.
	From *int `yaml:"from,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists the properties to check. Unset fields are not checked.
type Expect struct {
	// Active is a device name, or ActiveNone for no active device.
	Active string `yaml:"active,omitempty"`

	// Connected lists connected devices in plug order.
	Connected []string `yaml:"connected,omitempty"`

	// Priority lists recorded preferences, strongest first.
	Priority []string `yaml:"priority,omitempty"`

	// Error is the expected rejection code, e.g. ErrorNotConnected.
	Error string `yaml:"error,omitempty"`

	// Steps is the expected timeline length.
	Steps int `yaml:"steps,omitempty"`
}

const (
	// ActiveNone expects that no device is active.
	ActiveNone = "none"

	// ErrorNotConnected expects a select of a disconnected device to fail.
	ErrorNotConnected = "not_connected"
)

// Event returns the step's event, resolving the device against c.
func (s Step) Event(c *device.Catalog) (timeline.Event, error) {
	var (
		kind timeline.Kind
		name string
	)
	switch {
	case s.Plug != "":
		kind, name = timeline.KindPlug, s.Plug
	case s.Unplug != "":
		kind, name = timeline.KindUnplug, s.Unplug
	default:
		kind, name = timeline.KindSelect, s.Select
	}
	d, err := c.Resolve(name)
	if err != nil {
		return timeline.Event{}, err
	}
	return timeline.Event{Kind: kind, Device: d}, nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative catalog path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", scenario.Catalog)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		set := 0
		for _, v := range []string{step.Plug, step.Unplug, step.Select} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of plug, unplug or select is required", i)
		}
		if step.From != nil && *step.From < 0 {
			return fmt.Errorf("steps[%d]: from must be non-negative", i)
		}
		if step.Expect != nil {
			if err := validateExpect(fmt.Sprintf("steps[%d].expect", i), step.Expect); err != nil {
				return err
			}
			if step.Expect.Error != "" && step.Select == "" {
				return fmt.Errorf("steps[%d].expect: error is only valid for select", i)
			}
		}
	}

	if s.Final != nil {
		if err := validateExpect("final", s.Final); err != nil {
			return err
		}
		if s.Final.Error != "" {
			return fmt.Errorf("final: error is only valid on steps")
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateExpect(where string, e *Expect) error {
	if e.Error != "" && e.Error != ErrorNotConnected {
		return fmt.Errorf("%s: unknown error %q (want %q)", where, e.Error, ErrorNotConnected)
	}
	if e.Steps < 0 {
		return fmt.Errorf("%s: steps must be non-negative", where)
	}
	return nil
}

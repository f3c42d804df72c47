package timeline

import (
	"errors"
	"fmt"

	"github.com/roach88/devsel/internal/device"
)

// CheckInvariants verifies the structural guarantees of a step:
//
//   - the active device is connected
//   - connected devices are unique by name
//   - recorded preferences are unique by name
//   - the step's connected set matches the strategy's
func CheckInvariants(s Step) error {
	var errs []error

	if active, ok := s.Active(); ok && !s.IsConnected(active) {
		errs = append(errs, fmt.Errorf("active device %s is not connected", active.Name))
	}
	if d, ok := firstDuplicate(s.connected); ok {
		errs = append(errs, fmt.Errorf("device %s connected twice", d.Name))
	}
	if d, ok := firstDuplicate(s.Ranked()); ok {
		errs = append(errs, fmt.Errorf("device %s ranked twice", d.Name))
	}

	stratConnected := s.strategy.Connected()
	if len(stratConnected) != len(s.connected) {
		errs = append(errs, fmt.Errorf("strategy tracks %d connected devices, step has %d",
			len(stratConnected), len(s.connected)))
	} else {
		for _, d := range s.connected {
			if !device.Contains(stratConnected, d) {
				errs = append(errs, fmt.Errorf("strategy does not track connected device %s", d.Name))
			}
		}
	}

	if a, ok := s.strategy.Active(); ok != (s.active != nil) || (ok && !a.Same(*s.active)) {
		errs = append(errs, errors.New("step and strategy disagree on the active device"))
	}

	return errors.Join(errs...)
}

func firstDuplicate(devices []device.Device) (device.Device, bool) {
	seen := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		if _, ok := seen[d.Name]; ok {
			return d, true
		}
		seen[d.Name] = struct{}{}
	}
	return device.Device{}, false
}

package strategy

import (
	"slices"
	"strings"

	"github.com/roach88/devsel/internal/device"
)

// KindPriorityList is the registry name of PriorityList.
const KindPriorityList = "priority-list"

// PriorityList remembers every device the user has selected and prefers the
// most recently chosen one among those currently connected.
//
// INVARIANTS:
//   - active is nil or a member of connected
//   - connected and priority hold no duplicate names
//   - priority holds only devices that have been passed to Select
type PriorityList struct {
	connected []device.Device
	priority  []device.Device // index = rank, higher is preferred
	active    *device.Device
}

// NewPriorityList returns a strategy with no connected devices and no history.
func NewPriorityList() *PriorityList {
	return &PriorityList{}
}

// Kind implements Strategy.
func (s *PriorityList) Kind() string {
	return KindPriorityList
}

// Clone implements Strategy.
func (s *PriorityList) Clone() Strategy {
	c := &PriorityList{
		connected: slices.Clone(s.connected),
		priority:  slices.Clone(s.priority),
	}
	if s.active != nil {
		a := *s.active
		c.active = &a
	}
	return c
}

// Probe implements Strategy.
//
// Unplugged devices are dropped first. If the active device went away, the
// connected device with the strongest recorded preference takes over. Newly
// plugged devices are then admitted one by one, 3.5mm jacks last, each
// getting a chance to pre-empt the active device. If nothing is active
// after that, the device with the highest builtin priority wins.
func (s *PriorityList) Probe(newDevices []device.Device) (device.Device, bool) {
	newDevices = device.Dedupe(newDevices)

	s.connected = slices.DeleteFunc(s.connected, func(d device.Device) bool {
		return !device.Contains(newDevices, d)
	})

	var plugged []device.Device
	for _, d := range newDevices {
		if !device.Contains(s.connected, d) {
			plugged = append(plugged, d)
		}
	}

	// The active device is unplugged.
	if s.active != nil && !device.Contains(s.connected, *s.active) {
		s.active = nil
	}

	if s.active == nil {
		s.mustSelect(s.mostPreferredConnected())
	}

	slices.SortStableFunc(plugged, func(a, b device.Device) int {
		return jackOrder(a) - jackOrder(b)
	})

	for _, hotplug := range plugged {
		s.connected = append(s.connected, hotplug)
		if s.shouldSwitchToHotPlugDevice(s.active, hotplug) {
			s.mustSelect(&hotplug)
		}
	}

	if s.active == nil {
		s.mustSelect(highestBuiltin(newDevices))
	}

	return s.Active()
}

// Select implements Strategy. A failed Select leaves the strategy untouched.
func (s *PriorityList) Select(d *device.Device) error {
	if d == nil {
		s.active = nil
		return nil
	}
	if !device.Contains(s.connected, *d) {
		return &NotConnectedError{Device: *d, Connected: slices.Clone(s.connected)}
	}
	a := *d
	s.active = &a
	s.bubbleUp(a)
	return nil
}

// mustSelect selects a device Probe has already admitted to connected.
func (s *PriorityList) mustSelect(d *device.Device) {
	if err := s.Select(d); err != nil {
		panic("strategy: probe selected a device it did not connect: " + err.Error())
	}
}

// bubbleUp records d as preferred over every other connected device.
func (s *PriorityList) bubbleUp(d device.Device) {
	if !device.Contains(s.priority, d) {
		s.priority = slices.Insert(s.priority, 0, d)
	}

	from := device.IndexOf(s.priority, d)
	to := 0
	for i, p := range s.priority {
		if device.Contains(s.connected, p) {
			to = i
		}
	}

	s.priority = slices.Delete(s.priority, from, from+1)
	s.priority = slices.Insert(s.priority, to, d)
}

// shouldSwitchToHotPlugDevice decides whether a newly admitted device
// pre-empts the current one. Ties favor the newcomer.
func (s *PriorityList) shouldSwitchToHotPlugDevice(current *device.Device, hotplug device.Device) bool {
	if current == nil {
		return true
	}
	if hotplug.IsJack() {
		return true
	}

	currentRank, currentOK := s.userPriority(*current)
	hotplugRank, hotplugOK := s.userPriority(hotplug)
	if currentOK && hotplugOK {
		return currentRank <= hotplugRank
	}
	return current.Type.BuiltinPriority() <= hotplug.Type.BuiltinPriority()
}

// userPriority returns d's rank in the priority list.
func (s *PriorityList) userPriority(d device.Device) (int, bool) {
	i := device.IndexOf(s.priority, d)
	return i, i >= 0
}

// mostPreferredConnected returns the connected device with the highest rank,
// ignoring devices without recorded preference.
func (s *PriorityList) mostPreferredConnected() *device.Device {
	var best *device.Device
	bestRank := -1
	for _, d := range s.connected {
		rank, ok := s.userPriority(d)
		if !ok {
			continue
		}
		if rank > bestRank {
			candidate := d
			best = &candidate
			bestRank = rank
		}
	}
	return best
}

// highestBuiltin returns the first device with the highest builtin priority.
func highestBuiltin(devices []device.Device) *device.Device {
	var best *device.Device
	for _, d := range devices {
		if best == nil || best.Type.BuiltinPriority() < d.Type.BuiltinPriority() {
			candidate := d
			best = &candidate
		}
	}
	return best
}

func jackOrder(d device.Device) int {
	if d.IsJack() {
		return 1
	}
	return 0
}

// Active implements Strategy.
func (s *PriorityList) Active() (device.Device, bool) {
	if s.active == nil {
		return device.Device{}, false
	}
	return *s.active, true
}

// Connected implements Strategy.
func (s *PriorityList) Connected() []device.Device {
	return slices.Clone(s.connected)
}

// PriorityList returns the recorded preference order, weakest first.
func (s *PriorityList) PriorityList() []device.Device {
	return slices.Clone(s.priority)
}

// Ranked returns the recorded preference order, strongest first.
func (s *PriorityList) Ranked() []device.Device {
	ranked := slices.Clone(s.priority)
	slices.Reverse(ranked)
	return ranked
}

// Visualize implements Strategy.
func (s *PriorityList) Visualize() string {
	if len(s.priority) == 0 {
		return "User Priority: (empty)"
	}
	return "User Priority: " + strings.Join(device.Names(s.Ranked()), " > ")
}

var (
	_ Strategy = (*PriorityList)(nil)
	_ Ranker   = (*PriorityList)(nil)
)

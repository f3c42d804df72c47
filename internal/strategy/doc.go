// Package strategy implements the device-selection policies.
//
// A Strategy owns three pieces of state: the devices currently connected,
// the user's recorded preference order, and the active device. Probe
// reconciles that state against a new set of physically connected devices;
// Select records an explicit user choice.
//
// # Priority List Orientation
//
// The PriorityList strategy keeps every device the user has ever selected in
// a list where a higher index is a stronger preference. A device selected for
// the first time enters at index 0 and then bubbles up to the highest index
// currently held by a connected device. That way it beats every other
// connected device while its rank against disconnected devices, and their
// history with each other, stays where it was.
//
// # Determinism
//
// Every operation is synchronous and depends only on the strategy state and
// its arguments. Strategies are not safe for concurrent mutation; callers
// clone before deriving new state.
package strategy

// Package harness runs device-selection scenarios and checks their traces.
//
// A scenario is a YAML file listing plug, unplug and select events with
// optional expectations after each one:
//
//	name: jack_preempts_usb
//	description: A 3.5mm jack wins over the active USB device.
//	steps:
//	  - plug: USB 1
//	    expect: {active: USB 1}
//	  - plug: 3.5mm
//	    expect: {active: 3.5mm, priority: [3.5mm, USB 1]}
//	final:
//	  connected: [USB 1, 3.5mm]
//
// Each scenario runs against a fresh strategy, a deterministic clock, a
// fixed session id and an in-memory journal, so its trace is byte-stable
// and can be compared with a golden file under testdata/golden.
//
// Structural invariants are checked after every accepted step; violations
// are reported as scenario errors alongside failed expectations.
package harness

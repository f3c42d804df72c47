// Package timeline holds the immutable step history of a selection session.
//
// A Step pairs the connected devices and active device with the strategy
// that produced them. Plug, Unplug and Select never modify the receiver;
// they clone its strategy and return a new Step. A Timeline stores steps in
// order and discards the tail when a step is written after an earlier index.
package timeline

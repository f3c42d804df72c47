// Package engine drives a device-selection session.
//
// The engine owns a timeline, a logical clock and, optionally, a journal.
// Each accepted event becomes a step stamped with the next seq and written
// to the journal together with a content digest of the resulting state.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// Requests enqueued from any goroutine are applied one at a time by Run.
// This ensures:
// - Each event is handled to completion before the next
// - Steps and strategies are never shared for writing
// - A journaled session replays to identical digests
//
// Synchronous callers that own the engine exclusively, like the CLI and the
// scenario harness, call Apply directly instead.
//
// Logical Clock:
// All journal rows are ordered by seq from the Clock.
// Wall-clock timestamps are never recorded.
package engine

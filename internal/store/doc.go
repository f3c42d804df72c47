// Package store provides the SQLite-backed session journal.
//
// A session row records the strategy kind and device catalog a session was
// started with. Each accepted step is appended with the logical seq stamped
// by the engine, the event that produced it, the resulting state, and a
// content digest of that state.
//
// # Ordering
//
// All reads order by seq ASC. Wall-clock time is never stored, so a replayed
// session produces byte-identical rows.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING. Writing the same (session, seq) twice
// keeps the first row.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Steps must reference a session
package store

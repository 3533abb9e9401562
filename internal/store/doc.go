// Package store provides the SQLite output sink for processed events.
//
// The store is an append-only log with:
//   - Runs: one row per processing run, with its configuration and branch
//     declaration
//   - Events: input and output canonical JSON with content hashes, or the
//     error that aborted the event
//   - Refs: the resolved cross-collection references of every output event
//
// # Ordering
//
// All ordering uses seq INTEGER (the engine's logical clock), never
// timestamps. Every query that returns several events orders by seq so that
// replays see events in processing order.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING: writing the same (run, seq) twice keeps
// the first row.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store

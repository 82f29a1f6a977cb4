// Package store provides the SQLite-backed trial log for ruleboard sessions.
//
// The log is append-only and holds, per session:
//   - Sessions: the level definition played, with its content hash
//   - Commands: the command stream as applied, with wall-time offsets
//   - Records: analytics records as JSON, with tag and effect columns for queries
//   - Summaries: the end-of-trial summary
//
// The log feeds offline analysis and determinism checks. It never restores a
// live session; replaying a stored command stream builds a fresh one.
//
// # Ordering
//
// Commands and records are keyed by (session_id, seq) and every read orders
// by seq. Sessions carry their own seq in insertion order.
//
// # Connection
//
// One connection serves every call, so an in-memory log (MemoryPath) lives
// exactly as long as its Store. File logs run in WAL mode with a 5s busy
// timeout and foreign keys enforced. The schema version is kept in
// PRAGMA user_version and migrations upgrade older logs on Open.
package store

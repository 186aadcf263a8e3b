// Package store provides a SQLite-backed ledger of conversion runs.
//
// Every run of the convert command may append one record to the runs table:
// which input, output and schema were used, how many rows were read and
// written, the attempted field names, and how the run ended.
//
// # Ordering
//
// Runs are ordered by seq, a logical counter assigned at insert time, with
// id as tie breaker. Wall-clock timestamps are stored for display only and
// never used for ordering.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store

// Package store provides SQLite-backed history of conformance runs.
//
// Each run is one row in runs with its fixture verdicts in case_results,
// keyed by (run_id, seq) where seq is the catalog position.
//
// # Ordering
//
// Runs list newest first by started_at, then id. Case results always read
// back ORDER BY seq ASC so they match the catalog order of the run.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Run fingerprints are computed by internal/digest and stored as given.
package store

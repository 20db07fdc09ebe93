// Package repositories implements SQLite persistence for the export run ledger.
//
// Key Implementations:
//   - [RunRepository] : locale export history with status tracking
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

// Package store persists projects, artifacts and log entries in SQLite.
// Records are id-keyed rows rather than whole-collection blobs, so point
// lookups and cascading deletes are cheap; the orchestrator remains the only
// writer.
package store

import "github.com/devswarm/devswarm/internal/orchestrator"

// Compile-time check: SQLiteStore satisfies the orchestrator's store
// contract.
var _ orchestrator.Store = (*SQLiteStore)(nil)

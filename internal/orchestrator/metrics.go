package orchestrator

import "time"

// Metrics records per-stage wall-clock timings to the store. Timings are
// overwritten on re-run, matching the clear-on-rerun semantics of the rest of
// a project's history. The pipeline routes writes through its guarded steps,
// so a superseded run never overwrites the active run's timings.
type Metrics struct {
	store Store
}

// NewMetrics creates a collector backed by the store.
func NewMetrics(st Store) *Metrics {
	return &Metrics{store: st}
}

// RecordStage persists how long a stage took.
func (m *Metrics) RecordStage(projectID string, stage Stage, d time.Duration) error {
	return m.store.RecordStageTiming(projectID, stage, d.Milliseconds())
}

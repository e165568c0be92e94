package orchestrator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// faultPool holds the canned fault messages used by InjectSimulatedError. The
// text before the first colon is treated as the fault class during recovery.
var faultPool = []string{
	"Critical: Module dependency resolution failed for '@shadcn/ui'.",
	"Network Timeout: Failed to fetch latest architecture patterns from registry.",
	"Parsing Error: Unexpected token in generated engineering plan.",
	"Resource Exhaustion: Agent reasoning limit reached for this session.",
}

// InjectSimulatedError appends one error log entry from the fault pool. The
// project's status and stage are untouched; faults live outside the state
// machine.
func (o *Orchestrator) InjectSimulatedError(projectID string) {
	msg := faultPool[rand.Intn(len(faultPool))]
	o.appendLog(projectID, msg, LogError, OriginSystem)
}

// FixError resolves a single open fault asynchronously: the error entry is
// removed, a patching info entry is appended, and after a fixed simulated
// latency a success entry referencing the original message follows. Unknown
// or non-error log ids are a silent no-op, so duplicate fix requests are
// idempotent.
func (o *Orchestrator) FixError(projectID, logID string) {
	entry, err := o.store.GetLog(logID)
	if err != nil {
		o.log.Error("look up log", "log_id", logID, "error", err)
		return
	}
	if entry == nil || entry.ProjectID != projectID || entry.Type != LogError {
		return
	}
	go o.fix(projectID, *entry)
}

func (o *Orchestrator) fix(projectID string, entry LogEntry) {
	if err := o.write(func() error { return o.store.DeleteLog(entry.ID) }); err != nil {
		o.log.Error("delete fault log", "log_id", entry.ID, "error", err)
		return
	}

	patch := LogEntry{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Timestamp: time.Now(),
		Message:   fmt.Sprintf("Agent patching: resolving %s...", faultClass(entry.Message)),
		Type:      LogInfo,
		Origin:    OriginAgent,
	}
	if err := o.write(func() error { return o.store.InsertLog(patch) }); err != nil {
		o.log.Error("insert log", "project_id", projectID, "error", err)
		return
	}
	if o.cfg.FixLatency > 0 {
		time.Sleep(o.cfg.FixLatency)
	}

	success := LogEntry{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Timestamp: time.Now(),
		Message:   fmt.Sprintf("Recovery successful: resolved %q.", entry.Message),
		Type:      LogSuccess,
		Origin:    OriginAgent,
	}
	// A re-run may have cleared the timeline during the patch delay; the
	// check and the insert share one locked write so the recovery entry
	// cannot land in a fresh run's history.
	err := o.write(func() error {
		still, err := o.store.GetLog(patch.ID)
		if err != nil {
			return err
		}
		if still == nil {
			return nil
		}
		return o.store.InsertLog(success)
	})
	if err != nil {
		o.log.Error("insert log", "project_id", projectID, "error", err)
	}
}

// ClearErrors removes every open fault for the project in one step, with no
// recovery log entries.
func (o *Orchestrator) ClearErrors(projectID string) error {
	if err := o.write(func() error { return o.store.DeleteErrorLogs(projectID) }); err != nil {
		return fmt.Errorf("clear errors: %w", err)
	}
	return nil
}

func faultClass(message string) string {
	if class, _, ok := strings.Cut(message, ":"); ok && class != "" {
		return class
	}
	return "Fault"
}

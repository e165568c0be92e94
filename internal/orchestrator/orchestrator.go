// Package orchestrator drives a project through the fixed three-stage
// pipeline (requirements -> planning -> build), persisting artifacts and log
// entries as it proceeds and notifying subscribers after every durable write.
package orchestrator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devswarm/devswarm/internal/agents"
)

// Config holds the orchestrator's timing knobs.
type Config struct {
	// StageTimeout bounds each agent call; expiry fails the run with a
	// timeout failure distinct from agent errors.
	StageTimeout time.Duration
	// FixLatency is the simulated patch delay inside FixError.
	FixLatency time.Duration
	// BuildFileDelay is the pause between per-file build task entries.
	BuildFileDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.StageTimeout <= 0 {
		c.StageTimeout = 2 * time.Minute
	}
	return c
}

// Orchestrator is the single writer over the store. Every mutation runs
// under mu, so a run-token check and its write are atomic, and bus
// notifications observe the same total order as the writes. Reads never take
// the lock. Subscribers must not call write operations from their callback.
type Orchestrator struct {
	store   Store
	bus     *Bus
	agents  agents.Set
	cfg     Config
	log     *slog.Logger
	metrics *Metrics

	mu   sync.Mutex
	runs map[string]string // projectID -> token of the active run
}

// New wires an orchestrator. The store, bus and agents are injected; there is
// no package-level instance.
func New(st Store, bus *Bus, ag agents.Set, cfg Config, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:   st,
		bus:     bus,
		agents:  ag,
		cfg:     cfg.withDefaults(),
		log:     log.With("component", "orchestrator"),
		metrics: NewMetrics(st),
		runs:    make(map[string]string),
	}
}

// Bus returns the change-notification bus.
func (o *Orchestrator) Bus() *Bus { return o.bus }

// Subscribe registers a state-change callback and returns its unsubscribe
// function.
func (o *Orchestrator) Subscribe(fn func()) func() { return o.bus.Subscribe(fn) }

// write runs one store mutation under the writer lock and notifies on
// success.
func (o *Orchestrator) write(fn func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	o.bus.Notify()
	return nil
}

// CreateProject allocates a new project in IDLE/idle and persists it.
func (o *Orchestrator) CreateProject(name, description string) (*Project, error) {
	p := Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		Status:      StatusIdle,
		Stage:       StageIdle,
		BuildTasks:  []BuildTask{},
	}
	if err := o.write(func() error { return o.store.InsertProject(p) }); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	o.appendLog(p.ID, fmt.Sprintf("Project %q created.", name), LogSystem, OriginSystem)
	o.log.Info("project created", "project_id", p.ID, "name", name)
	return &p, nil
}

// DeleteProject removes a project and cascades to its artifacts, logs and
// build tasks. Deleting an unknown id is a no-op.
func (o *Orchestrator) DeleteProject(id string) error {
	err := o.write(func() error {
		delete(o.runs, id)
		return o.store.DeleteProject(id)
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// AddLog appends one log entry with the current timestamp. Used internally by
// the pipeline and externally for user chat messages (Origin = user).
func (o *Orchestrator) AddLog(projectID, message string, typ LogType, origin LogOrigin) {
	o.appendLog(projectID, message, typ, origin)
}

// Projects returns all projects, newest first.
func (o *Orchestrator) Projects() ([]Project, error) { return o.store.ListProjects() }

// Project returns a single project, or nil when the id is unknown.
func (o *Orchestrator) Project(id string) (*Project, error) { return o.store.GetProject(id) }

// Artifacts returns a project's artifacts ordered by creation time ascending.
func (o *Orchestrator) Artifacts(projectID string) ([]Artifact, error) {
	return o.store.ListArtifacts(projectID)
}

// Logs returns a project's log entries ordered by timestamp ascending.
func (o *Orchestrator) Logs(projectID string) ([]LogEntry, error) {
	return o.store.ListLogs(projectID)
}

// StageTimings returns recorded stage durations (ms) for a project.
func (o *Orchestrator) StageTimings(projectID string) (map[string]int64, error) {
	return o.store.StageTimings(projectID)
}

// appendLog inserts a log entry and notifies. Storage errors are logged, not
// propagated; log entries are best-effort from the caller's point of view.
func (o *Orchestrator) appendLog(projectID, message string, typ LogType, origin LogOrigin) {
	entry := LogEntry{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Timestamp: time.Now(),
		Message:   message,
		Type:      typ,
		Origin:    origin,
	}
	if err := o.write(func() error { return o.store.InsertLog(entry) }); err != nil {
		o.log.Error("insert log", "project_id", projectID, "error", err)
	}
}

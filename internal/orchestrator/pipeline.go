package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devswarm/devswarm/internal/agents"
)

// StartExecution begins an asynchronous pipeline run for the project. It
// returns immediately; progress is observed through the bus and the read
// methods. An unknown project id is a silent no-op. Starting while a run is
// active supersedes the old run: the stale run's remaining writes are
// silently abandoned via its token.
func (o *Orchestrator) StartExecution(projectID string) {
	p, err := o.store.GetProject(projectID)
	if err != nil {
		o.log.Error("resolve project", "project_id", projectID, "error", err)
		return
	}
	if p == nil {
		return
	}

	token := uuid.NewString()
	o.mu.Lock()
	o.runs[projectID] = token
	o.mu.Unlock()

	go o.run(*p, token)
}

// step runs one store mutation under the writer lock, but only while token
// still owns the project's run slot. Holding the lock across the check and
// the write is what makes superseding a run safe: a stale run can never slip
// a write in after a newer run has started.
func (o *Orchestrator) step(projectID, token string, fn func() error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.runs[projectID] != token {
		return false
	}
	if err := fn(); err != nil {
		o.log.Error("pipeline write", "project_id", projectID, "error", err)
		return false
	}
	o.bus.Notify()
	return true
}

func (o *Orchestrator) run(p Project, token string) {
	ctx := context.Background()

	// Fresh-run semantics: the previous run's artifacts, logs and build
	// tasks are discarded before stage one.
	if !o.step(p.ID, token, func() error { return o.clearHistory(p.ID) }) {
		return
	}

	if !o.setState(p.ID, token, StatusRunning, StageRequirements) {
		return
	}
	if !o.runLog(p.ID, token, "Starting execution pipeline...", LogSystem, OriginSystem) {
		return
	}

	// Requirements
	if !o.runLog(p.ID, token, "Requirements Agent: analyzing idea...", LogInfo, OriginAgent) {
		return
	}
	start := time.Now()
	prd, err := o.callRequirements(ctx, p.Description)
	if err != nil {
		o.fail(p.ID, token, StageRequirements, err)
		return
	}
	if !o.recordStage(p.ID, token, StageRequirements, time.Since(start)) {
		return
	}
	if !o.saveArtifact(p.ID, token, ArtifactPRD, "Product Requirements Document", "Requirements Agent", prd) {
		return
	}
	if !o.runLog(p.ID, token, "Requirements Agent: PRD generated successfully.", LogSuccess, OriginAgent) {
		return
	}
	if !o.setState(p.ID, token, StatusRunning, StagePlanning) {
		return
	}

	// Planning
	if !o.runLog(p.ID, token, "Planning Agent: architecting solution...", LogInfo, OriginAgent) {
		return
	}
	start = time.Now()
	plan, err := o.callPlanning(ctx, prd)
	if err != nil {
		o.fail(p.ID, token, StagePlanning, err)
		return
	}
	if !o.recordStage(p.ID, token, StagePlanning, time.Since(start)) {
		return
	}
	if !o.saveArtifact(p.ID, token, ArtifactPlan, "Execution Plan", "Planning Agent", plan) {
		return
	}
	if !o.runLog(p.ID, token, "Planning Agent: execution plan created.", LogSuccess, OriginAgent) {
		return
	}
	if !o.setState(p.ID, token, StatusRunning, StageBuild) {
		return
	}

	// Build
	if !o.runLog(p.ID, token, "Build Agent: writing code...", LogInfo, OriginAgent) {
		return
	}
	start = time.Now()
	build, err := o.callBuild(ctx, plan, prd)
	if err != nil {
		o.fail(p.ID, token, StageBuild, err)
		return
	}

	// One build task and one log entry per file, in file order, so
	// observers see incremental progress rather than one atomic jump.
	for _, file := range build.Files {
		if o.cfg.BuildFileDelay > 0 {
			time.Sleep(o.cfg.BuildFileDelay)
		}
		task := BuildTask{
			ID:          uuid.NewString(),
			Filename:    file.Filename,
			Description: fmt.Sprintf("Generated source for %s", file.Filename),
			CreatedAt:   time.Now(),
		}
		if !o.step(p.ID, token, func() error { return o.store.InsertBuildTask(p.ID, task) }) {
			return
		}
		if !o.runLog(p.ID, token, fmt.Sprintf("Build Agent: completed %s", file.Filename), LogInfo, OriginAgent) {
			return
		}
	}
	if !o.recordStage(p.ID, token, StageBuild, time.Since(start)) {
		return
	}

	if !o.saveArtifact(p.ID, token, ArtifactCode, "Source Code", "Build Agent", build) {
		return
	}
	if !o.runLog(p.ID, token, "Build Agent: code generation complete.", LogSuccess, OriginAgent) {
		return
	}

	if !o.setState(p.ID, token, StatusCompleted, StageComplete) {
		return
	}
	o.runLog(p.ID, token, "Workflow completed successfully.", LogSystem, OriginSystem)
	o.log.Info("pipeline completed", "project_id", p.ID)
}

func (o *Orchestrator) clearHistory(projectID string) error {
	if err := o.store.DeleteArtifacts(projectID); err != nil {
		return fmt.Errorf("delete artifacts: %w", err)
	}
	if err := o.store.DeleteLogs(projectID); err != nil {
		return fmt.Errorf("delete logs: %w", err)
	}
	if err := o.store.ClearBuildTasks(projectID); err != nil {
		return fmt.Errorf("clear build tasks: %w", err)
	}
	return nil
}

func (o *Orchestrator) callRequirements(ctx context.Context, idea string) (*agents.PRD, error) {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()
	return o.agents.Requirements.GeneratePRD(sctx, idea)
}

func (o *Orchestrator) callPlanning(ctx context.Context, prd *agents.PRD) (*agents.Plan, error) {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()
	return o.agents.Planning.GeneratePlan(sctx, prd)
}

func (o *Orchestrator) callBuild(ctx context.Context, plan *agents.Plan, prd *agents.PRD) (*agents.Build, error) {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()
	return o.agents.Build.GenerateCode(sctx, plan, prd)
}

// setState transitions the project's status/stage. Returns false when the
// run token is stale or the write failed.
func (o *Orchestrator) setState(projectID, token string, status Status, stage Stage) bool {
	return o.step(projectID, token, func() error {
		return o.store.UpdateProjectState(projectID, status, stage)
	})
}

// recordStage persists a stage timing, guarded by the run token. A superseded
// run's timing write is abandoned like any other of its persist steps.
func (o *Orchestrator) recordStage(projectID, token string, stage Stage, d time.Duration) bool {
	return o.step(projectID, token, func() error {
		return o.metrics.RecordStage(projectID, stage, d)
	})
}

// runLog appends a pipeline log entry, guarded by the run token.
func (o *Orchestrator) runLog(projectID, token, message string, typ LogType, origin LogOrigin) bool {
	entry := LogEntry{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Timestamp: time.Now(),
		Message:   message,
		Type:      typ,
		Origin:    origin,
	}
	return o.step(projectID, token, func() error { return o.store.InsertLog(entry) })
}

// saveArtifact marshals the payload and stores it as the stage's artifact.
func (o *Orchestrator) saveArtifact(projectID, token string, typ ArtifactType, title, agent string, payload any) bool {
	content, err := json.Marshal(payload)
	if err != nil {
		o.log.Error("marshal artifact", "project_id", projectID, "type", typ, "error", err)
		return false
	}
	a := Artifact{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Type:      typ,
		Title:     title,
		Content:   content,
		Agent:     fmt.Sprintf("%s (devswarm engine)", agent),
		CreatedAt: time.Now(),
	}
	return o.step(projectID, token, func() error { return o.store.InsertArtifact(a) })
}

// fail converts a stage error into an error log plus a FAILED/idle
// transition. Deadline expiry gets its own message so timeouts are
// distinguishable from agent failures.
func (o *Orchestrator) fail(projectID, token string, stage Stage, err error) {
	msg := fmt.Sprintf("Workflow failed: %v", err)
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("Workflow timed out: %s stage exceeded %s", stage, o.cfg.StageTimeout)
	}
	if !o.runLog(projectID, token, msg, LogError, OriginSystem) {
		return
	}
	o.setState(projectID, token, StatusFailed, StageIdle)
	o.log.Warn("pipeline failed", "project_id", projectID, "stage", stage, "error", err)
}

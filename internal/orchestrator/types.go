package orchestrator

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a project.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Stage represents the current pipeline stage of a project.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageRequirements Stage = "requirements"
	StagePlanning     Stage = "planning"
	StageBuild        Stage = "build"
	StageComplete     Stage = "complete"
)

// ArtifactType identifies which stage produced an artifact.
type ArtifactType string

const (
	ArtifactPRD  ArtifactType = "PRD"
	ArtifactPlan ArtifactType = "PLAN"
	ArtifactCode ArtifactType = "CODE"
)

// LogType classifies a log entry.
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogError   LogType = "error"
	LogSystem  LogType = "system"
)

// LogOrigin identifies who produced a log entry.
type LogOrigin string

const (
	OriginUser   LogOrigin = "user"
	OriginAgent  LogOrigin = "agent"
	OriginSystem LogOrigin = "system"
)

// Project is one creation request and its lifecycle. Name, Description and
// CreatedAt are immutable after creation; Description is the pipeline input.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	Status      Status      `json:"status"`
	Stage       Stage       `json:"current_stage"`
	BuildTasks  []BuildTask `json:"build_tasks"`
}

// BuildTask records one completed file during the build stage.
type BuildTask struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Artifact is an immutable output of one pipeline stage. Content holds the
// stage-specific payload as JSON.
type Artifact struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Type      ArtifactType    `json:"type"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Agent     string          `json:"agent"`
	CreatedAt time.Time       `json:"created_at"`
}

// LogEntry is an immutable timeline event for a project.
type LogEntry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
	Origin    LogOrigin `json:"origin"`
}

// Store is the persistence interface the orchestrator needs. Implemented by
// store.SQLiteStore; defined here so the store package can import this one.
type Store interface {
	InsertProject(p Project) error
	UpdateProjectState(id string, status Status, stage Stage) error
	GetProject(id string) (*Project, error)
	ListProjects() ([]Project, error)
	DeleteProject(id string) error

	InsertBuildTask(projectID string, task BuildTask) error
	ClearBuildTasks(projectID string) error

	InsertArtifact(a Artifact) error
	ListArtifacts(projectID string) ([]Artifact, error)
	DeleteArtifacts(projectID string) error

	InsertLog(l LogEntry) error
	GetLog(id string) (*LogEntry, error)
	DeleteLog(id string) error
	DeleteLogs(projectID string) error
	DeleteErrorLogs(projectID string) error
	ListLogs(projectID string) ([]LogEntry, error)

	RecordStageTiming(projectID string, stage Stage, durationMs int64) error
	StageTimings(projectID string) (map[string]int64, error)
}

package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/devswarm/devswarm/internal/orchestrator"
)

// SQLiteStore implements orchestrator.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The orchestrator is single-writer; one connection avoids SQLITE_BUSY
	// between the pipeline goroutine and request handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// ---------- Projects ----------

func (s *SQLiteStore) InsertProject(p orchestrator.Project) error {
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, description, status, stage, created_at) VALUES (?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, string(p.Status), string(p.Stage), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProjectState(id string, status orchestrator.Status, stage orchestrator.Stage) error {
	_, err := s.db.Exec(
		`UPDATE projects SET status = ?, stage = ? WHERE id = ?`,
		string(status), string(stage), id,
	)
	return err
}

func (s *SQLiteStore) GetProject(id string) (*orchestrator.Project, error) {
	p, err := s.scanProject(s.db.QueryRow(
		`SELECT id, name, description, status, stage, created_at FROM projects WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query project: %w", err)
	}
	tasks, err := s.buildTasks(p.ID)
	if err != nil {
		return nil, err
	}
	p.BuildTasks = tasks
	return p, nil
}

func (s *SQLiteStore) ListProjects() ([]orchestrator.Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, status, stage, created_at FROM projects ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []orchestrator.Project
	for rows.Next() {
		p, err := s.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range projects {
		tasks, err := s.buildTasks(projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].BuildTasks = tasks
	}
	return projects, nil
}

func (s *SQLiteStore) DeleteProject(id string) error {
	// Referencing rows cascade via foreign keys.
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanProject(row rowScanner) (*orchestrator.Project, error) {
	var p orchestrator.Project
	var status, stage string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &status, &stage, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Status = orchestrator.Status(status)
	p.Stage = orchestrator.Stage(stage)
	p.BuildTasks = []orchestrator.BuildTask{}
	return &p, nil
}

// ---------- Build tasks ----------

func (s *SQLiteStore) InsertBuildTask(projectID string, task orchestrator.BuildTask) error {
	_, err := s.db.Exec(
		`INSERT INTO build_tasks (id, project_id, filename, description, created_at) VALUES (?,?,?,?,?)`,
		task.ID, projectID, task.Filename, task.Description, task.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) ClearBuildTasks(projectID string) error {
	_, err := s.db.Exec(`DELETE FROM build_tasks WHERE project_id = ?`, projectID)
	return err
}

func (s *SQLiteStore) buildTasks(projectID string) ([]orchestrator.BuildTask, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, description, created_at FROM build_tasks WHERE project_id = ? ORDER BY created_at ASC, rowid ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query build tasks: %w", err)
	}
	defer rows.Close()

	tasks := []orchestrator.BuildTask{}
	for rows.Next() {
		var t orchestrator.BuildTask
		if err := rows.Scan(&t.ID, &t.Filename, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ---------- Artifacts ----------

func (s *SQLiteStore) InsertArtifact(a orchestrator.Artifact) error {
	// At most one artifact per type per project; a re-run that raced an
	// old run's write simply replaces it.
	_, err := s.db.Exec(
		`INSERT INTO artifacts (id, project_id, type, title, content, agent, created_at)
		 VALUES (?,?,?,?,?,?,?)
		 ON CONFLICT(project_id, type) DO UPDATE SET
		   id=excluded.id, title=excluded.title, content=excluded.content,
		   agent=excluded.agent, created_at=excluded.created_at`,
		a.ID, a.ProjectID, string(a.Type), a.Title, string(a.Content), a.Agent, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListArtifacts(projectID string) ([]orchestrator.Artifact, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, type, title, content, agent, created_at FROM artifacts
		 WHERE project_id = ? ORDER BY created_at ASC, rowid ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []orchestrator.Artifact{}
	for rows.Next() {
		var a orchestrator.Artifact
		var typ, content string
		if err := rows.Scan(&a.ID, &a.ProjectID, &typ, &a.Title, &content, &a.Agent, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = orchestrator.ArtifactType(typ)
		a.Content = []byte(content)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func (s *SQLiteStore) DeleteArtifacts(projectID string) error {
	_, err := s.db.Exec(`DELETE FROM artifacts WHERE project_id = ?`, projectID)
	return err
}

// ---------- Logs ----------

func (s *SQLiteStore) InsertLog(l orchestrator.LogEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO logs (id, project_id, message, type, origin, created_at) VALUES (?,?,?,?,?,?)`,
		l.ID, l.ProjectID, l.Message, string(l.Type), string(l.Origin), l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLog(id string) (*orchestrator.LogEntry, error) {
	var l orchestrator.LogEntry
	var typ, origin string
	err := s.db.QueryRow(
		`SELECT id, project_id, message, type, origin, created_at FROM logs WHERE id = ?`, id,
	).Scan(&l.ID, &l.ProjectID, &l.Message, &typ, &origin, &l.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query log: %w", err)
	}
	l.Type = orchestrator.LogType(typ)
	l.Origin = orchestrator.LogOrigin(origin)
	return &l, nil
}

func (s *SQLiteStore) DeleteLog(id string) error {
	_, err := s.db.Exec(`DELETE FROM logs WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteLogs(projectID string) error {
	_, err := s.db.Exec(`DELETE FROM logs WHERE project_id = ?`, projectID)
	return err
}

func (s *SQLiteStore) DeleteErrorLogs(projectID string) error {
	_, err := s.db.Exec(`DELETE FROM logs WHERE project_id = ? AND type = ?`, projectID, string(orchestrator.LogError))
	return err
}

func (s *SQLiteStore) ListLogs(projectID string) ([]orchestrator.LogEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, message, type, origin, created_at FROM logs
		 WHERE project_id = ? ORDER BY created_at ASC, rowid ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	logs := []orchestrator.LogEntry{}
	for rows.Next() {
		var l orchestrator.LogEntry
		var typ, origin string
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Message, &typ, &origin, &l.Timestamp); err != nil {
			return nil, err
		}
		l.Type = orchestrator.LogType(typ)
		l.Origin = orchestrator.LogOrigin(origin)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ---------- Stage timings ----------

func (s *SQLiteStore) RecordStageTiming(projectID string, stage orchestrator.Stage, durationMs int64) error {
	_, err := s.db.Exec(
		`INSERT INTO stage_timings (project_id, stage, duration_ms) VALUES (?,?,?)
		 ON CONFLICT(project_id, stage) DO UPDATE SET duration_ms=excluded.duration_ms`,
		projectID, string(stage), durationMs,
	)
	return err
}

func (s *SQLiteStore) StageTimings(projectID string) (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT stage, duration_ms FROM stage_timings WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query stage timings: %w", err)
	}
	defer rows.Close()

	timings := make(map[string]int64)
	for rows.Next() {
		var stage string
		var ms int64
		if err := rows.Scan(&stage, &ms); err != nil {
			return nil, err
		}
		timings[stage] = ms
	}
	return timings, rows.Err()
}

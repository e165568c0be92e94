package store

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'IDLE',
    stage TEXT NOT NULL DEFAULT 'idle',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS build_tasks (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    filename TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_build_tasks_project ON build_tasks(project_id);

CREATE TABLE IF NOT EXISTS artifacts (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '{}',
    agent TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    UNIQUE (project_id, type)
);

CREATE TABLE IF NOT EXISTS logs (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    message TEXT NOT NULL,
    type TEXT NOT NULL,
    origin TEXT NOT NULL DEFAULT 'system',
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logs_project ON logs(project_id, created_at);

CREATE TABLE IF NOT EXISTS stage_timings (
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    stage TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    PRIMARY KEY (project_id, stage)
);
`

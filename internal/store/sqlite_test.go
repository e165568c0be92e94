package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devswarm/devswarm/internal/orchestrator"
	"github.com/devswarm/devswarm/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newProject(name string, createdAt time.Time) orchestrator.Project {
	return orchestrator.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: "desc",
		CreatedAt:   createdAt,
		Status:      orchestrator.StatusIdle,
		Stage:       orchestrator.StageIdle,
	}
}

func TestProjectRoundTrip(t *testing.T) {
	st := newTestStore(t)

	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	got, err := st.GetProject(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, orchestrator.StatusIdle, got.Status)
	assert.Equal(t, orchestrator.StageIdle, got.Stage)
	assert.Empty(t, got.BuildTasks)
	assert.NotNil(t, got.BuildTasks, "tasks serialize as [], not null")
}

func TestGetProjectUnknownIsNil(t *testing.T) {
	st := newTestStore(t)
	got, err := st.GetProject("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateProjectState(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	require.NoError(t, st.UpdateProjectState(p.ID, orchestrator.StatusRunning, orchestrator.StagePlanning))

	got, err := st.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StatusRunning, got.Status)
	assert.Equal(t, orchestrator.StagePlanning, got.Stage)
}

func TestListProjectsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	base := time.Now()

	old := newProject("old", base.Add(-time.Hour))
	mid := newProject("mid", base.Add(-time.Minute))
	latest := newProject("new", base)
	for _, p := range []orchestrator.Project{old, latest, mid} {
		require.NoError(t, st.InsertProject(p))
	}

	projects, err := st.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "new", projects[0].Name)
	assert.Equal(t, "mid", projects[1].Name)
	assert.Equal(t, "old", projects[2].Name)
}

func TestBuildTasks(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	base := time.Now()
	for i, name := range []string{"a.ts", "b.ts", "c.ts"} {
		require.NoError(t, st.InsertBuildTask(p.ID, orchestrator.BuildTask{
			ID:        uuid.NewString(),
			Filename:  name,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := st.GetProject(p.ID)
	require.NoError(t, err)
	require.Len(t, got.BuildTasks, 3)
	assert.Equal(t, "a.ts", got.BuildTasks[0].Filename)
	assert.Equal(t, "c.ts", got.BuildTasks[2].Filename)

	require.NoError(t, st.ClearBuildTasks(p.ID))
	got, err = st.GetProject(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.BuildTasks)
}

func TestArtifactUniquePerType(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	first := orchestrator.Artifact{
		ID: uuid.NewString(), ProjectID: p.ID, Type: orchestrator.ArtifactPRD,
		Title: "PRD v1", Content: []byte(`{"v":1}`), CreatedAt: time.Now(),
	}
	require.NoError(t, st.InsertArtifact(first))

	second := first
	second.ID = uuid.NewString()
	second.Title = "PRD v2"
	second.Content = []byte(`{"v":2}`)
	require.NoError(t, st.InsertArtifact(second))

	artifacts, err := st.ListArtifacts(p.ID)
	require.NoError(t, err)
	require.Len(t, artifacts, 1, "at most one artifact per type per project")
	assert.Equal(t, "PRD v2", artifacts[0].Title)
}

func TestArtifactsOrderedByCreation(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	base := time.Now()
	types := []orchestrator.ArtifactType{orchestrator.ArtifactPRD, orchestrator.ArtifactPlan, orchestrator.ArtifactCode}
	// Insert out of order; listing must sort by creation time.
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, st.InsertArtifact(orchestrator.Artifact{
			ID: uuid.NewString(), ProjectID: p.ID, Type: types[i],
			Title: string(types[i]), Content: []byte(`{}`),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	artifacts, err := st.ListArtifacts(p.ID)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, orchestrator.ArtifactPRD, artifacts[0].Type)
	assert.Equal(t, orchestrator.ArtifactPlan, artifacts[1].Type)
	assert.Equal(t, orchestrator.ArtifactCode, artifacts[2].Type)
}

func TestLogsOrderedAndFiltered(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	other := newProject("beta", time.Now())
	require.NoError(t, st.InsertProject(p))
	require.NoError(t, st.InsertProject(other))

	base := time.Now()
	mkLog := func(projectID string, offset time.Duration, typ orchestrator.LogType) orchestrator.LogEntry {
		return orchestrator.LogEntry{
			ID: uuid.NewString(), ProjectID: projectID, Timestamp: base.Add(offset),
			Message: "m", Type: typ, Origin: orchestrator.OriginSystem,
		}
	}
	require.NoError(t, st.InsertLog(mkLog(p.ID, 2*time.Second, orchestrator.LogInfo)))
	require.NoError(t, st.InsertLog(mkLog(p.ID, 0, orchestrator.LogSystem)))
	require.NoError(t, st.InsertLog(mkLog(p.ID, time.Second, orchestrator.LogError)))
	require.NoError(t, st.InsertLog(mkLog(other.ID, 0, orchestrator.LogInfo)))

	logs, err := st.ListLogs(p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, orchestrator.LogSystem, logs[0].Type)
	assert.Equal(t, orchestrator.LogError, logs[1].Type)
	assert.Equal(t, orchestrator.LogInfo, logs[2].Type)

	require.NoError(t, st.DeleteErrorLogs(p.ID))
	logs, err = st.ListLogs(p.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	// The other project's logs are untouched.
	otherLogs, err := st.ListLogs(other.ID)
	require.NoError(t, err)
	assert.Len(t, otherLogs, 1)
}

func TestGetLogUnknownIsNil(t *testing.T) {
	st := newTestStore(t)
	got, err := st.GetLog("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteProjectCascades(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	require.NoError(t, st.InsertArtifact(orchestrator.Artifact{
		ID: uuid.NewString(), ProjectID: p.ID, Type: orchestrator.ArtifactPRD,
		Title: "PRD", Content: []byte(`{}`), CreatedAt: time.Now(),
	}))
	require.NoError(t, st.InsertLog(orchestrator.LogEntry{
		ID: uuid.NewString(), ProjectID: p.ID, Timestamp: time.Now(),
		Message: "m", Type: orchestrator.LogInfo, Origin: orchestrator.OriginSystem,
	}))
	require.NoError(t, st.InsertBuildTask(p.ID, orchestrator.BuildTask{
		ID: uuid.NewString(), Filename: "a.ts", CreatedAt: time.Now(),
	}))
	require.NoError(t, st.RecordStageTiming(p.ID, orchestrator.StageRequirements, 42))

	require.NoError(t, st.DeleteProject(p.ID))
	// Deleting again is a no-op.
	require.NoError(t, st.DeleteProject(p.ID))

	got, err := st.GetProject(p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	artifacts, err := st.ListArtifacts(p.ID)
	require.NoError(t, err)
	assert.Empty(t, artifacts)

	logs, err := st.ListLogs(p.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	timings, err := st.StageTimings(p.ID)
	require.NoError(t, err)
	assert.Empty(t, timings)
}

func TestStageTimingUpsert(t *testing.T) {
	st := newTestStore(t)
	p := newProject("alpha", time.Now())
	require.NoError(t, st.InsertProject(p))

	require.NoError(t, st.RecordStageTiming(p.ID, orchestrator.StageRequirements, 100))
	require.NoError(t, st.RecordStageTiming(p.ID, orchestrator.StageRequirements, 250))
	require.NoError(t, st.RecordStageTiming(p.ID, orchestrator.StageBuild, 900))

	timings, err := st.StageTimings(p.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"requirements": 250,
		"build":        900,
	}, timings)
}

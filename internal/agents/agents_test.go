package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devswarm/devswarm/internal/agents"
)

func TestGeneratePRDIsDeterministic(t *testing.T) {
	ag := &agents.CannedRequirements{}

	first, err := ag.GeneratePRD(context.Background(), "a todo list app")
	require.NoError(t, err)
	second, err := ag.GeneratePRD(context.Background(), "a todo list app")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "a todo list - Core Requirements", first.Title)
	assert.Contains(t, first.Summary, `"a todo list app"`)
	assert.Len(t, first.Features, 5)
	assert.Len(t, first.UserStories, 3)
	assert.Len(t, first.TechStack, 5)
}

func TestGeneratePRDTitleEdgeCases(t *testing.T) {
	ag := &agents.CannedRequirements{}

	short, err := ag.GeneratePRD(context.Background(), "chess")
	require.NoError(t, err)
	assert.Equal(t, "chess - Core Requirements", short.Title)

	empty, err := ag.GeneratePRD(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "Neural Application - Core Requirements", empty.Title)
}

func TestGeneratePlan(t *testing.T) {
	req := &agents.CannedRequirements{}
	prd, err := req.GeneratePRD(context.Background(), "inventory tracker")
	require.NoError(t, err)

	plan, err := (&agents.CannedPlanning{}).GeneratePlan(context.Background(), prd)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Phases)
	assert.NotEmpty(t, plan.EstimatedTimeline)
	for _, ph := range plan.Phases {
		assert.NotEmpty(t, ph.Name)
		assert.NotEmpty(t, ph.Steps)
	}
}

func TestGenerateCodeTemplatesTitle(t *testing.T) {
	req := &agents.CannedRequirements{}
	prd, err := req.GeneratePRD(context.Background(), "inventory tracker")
	require.NoError(t, err)
	plan, err := (&agents.CannedPlanning{}).GeneratePlan(context.Background(), prd)
	require.NoError(t, err)

	build, err := (&agents.CannedBuild{}).GenerateCode(context.Background(), plan, prd)
	require.NoError(t, err)
	require.Len(t, build.Files, 3)
	assert.Equal(t, "App.tsx", build.Files[0].Filename)
	assert.Contains(t, build.Files[0].Content, prd.Title)
	assert.NotEmpty(t, build.SetupInstructions)
}

func TestAgentsHonorContextCancellation(t *testing.T) {
	set := agents.Canned(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := set.Requirements.GeneratePRD(ctx, "idea")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = set.Planning.GeneratePlan(ctx, &agents.PRD{Title: "T"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = set.Build.GenerateCode(ctx, &agents.Plan{}, &agents.PRD{Title: "T"})
	assert.ErrorIs(t, err, context.Canceled)
}

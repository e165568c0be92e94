// Package agents defines the stage agent contracts for the pipeline and
// provides the canned implementations used by the demo engine. Each agent
// transforms one artifact into the next: idea -> PRD -> Plan -> Build.
// Agents are replaceable; the orchestrator only depends on the interfaces.
package agents

import (
	"context"
	"time"
)

// PRD is the output of the requirements stage.
type PRD struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Features    []string `json:"features"`
	UserStories []string `json:"userStories"`
	TechStack   []string `json:"techStack"`
}

// PlanPhase is one phase of an execution plan.
type PlanPhase struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Plan is the output of the planning stage.
type Plan struct {
	Phases            []PlanPhase `json:"phases"`
	EstimatedTimeline string      `json:"estimatedTimeline"`
}

// CodeFile is a single generated source file.
type CodeFile struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Build is the output of the build stage.
type Build struct {
	Files             []CodeFile `json:"files"`
	SetupInstructions string     `json:"setupInstructions"`
}

// RequirementsAgent turns a one-line idea into a PRD.
type RequirementsAgent interface {
	GeneratePRD(ctx context.Context, idea string) (*PRD, error)
}

// PlanningAgent turns a PRD into an execution plan.
type PlanningAgent interface {
	GeneratePlan(ctx context.Context, prd *PRD) (*Plan, error)
}

// BuildAgent turns a plan (plus the PRD for context) into source files.
type BuildAgent interface {
	GenerateCode(ctx context.Context, plan *Plan, prd *PRD) (*Build, error)
}

// Set bundles one agent per stage.
type Set struct {
	Requirements RequirementsAgent
	Planning     PlanningAgent
	Build        BuildAgent
}

// Canned returns a full set of canned agents with the given simulated latency.
func Canned(latency time.Duration) Set {
	return Set{
		Requirements: &CannedRequirements{Latency: latency},
		Planning:     &CannedPlanning{Latency: latency},
		Build:        &CannedBuild{Latency: latency},
	}
}

// sleep waits for d or until the context is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package agents

import (
	"context"
	"time"
)

// CannedPlanning is the demo planning agent.
type CannedPlanning struct {
	Latency time.Duration
}

func (a *CannedPlanning) GeneratePlan(ctx context.Context, prd *PRD) (*Plan, error) {
	if err := sleep(ctx, a.Latency); err != nil {
		return nil, err
	}

	return &Plan{
		Phases: []PlanPhase{
			{
				Name:        "Foundation & Infrastructure",
				Description: "Setting up the project core and shared utilities.",
				Steps: []string{
					"Initialize TypeScript React environment",
					"Configure Tailwind design tokens",
					"Setup base routing and layout components",
				},
			},
			{
				Name:        "Feature Implementation",
				Description: "Building out the core modules defined in the PRD.",
				Steps: []string{
					"Develop Authentication context",
					"Build Data Visualization engine",
					"Integrate real-time socket connections",
				},
			},
			{
				Name:        "Final Assembly & QA",
				Description: "Polishing the UI and ensuring cross-browser compatibility.",
				Steps: []string{
					"Perform automated unit testing",
					"Audit accessibility (ARIA) and performance",
					"Deploy to staging environment",
				},
			},
		},
		EstimatedTimeline: "2-3 Development Cycles",
	}, nil
}

package agents

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CannedRequirements is the demo requirements agent. Output is deterministic
// for a given idea; Latency simulates model thinking time.
type CannedRequirements struct {
	Latency time.Duration
}

func (a *CannedRequirements) GeneratePRD(ctx context.Context, idea string) (*PRD, error) {
	if err := sleep(ctx, a.Latency); err != nil {
		return nil, err
	}

	title := ideaTitle(idea)
	return &PRD{
		Title:   title + " - Core Requirements",
		Summary: fmt.Sprintf("A high-performance application based on the user's request: %q. This platform focuses on modular scalability and intuitive user experience.", idea),
		Features: []string{
			"User Authentication with OAuth2 integration",
			"Real-time data visualization dashboard",
			"Collaborative workspace for team members",
			"Automated reporting and export functionality",
			"Cross-platform responsive design system",
		},
		UserStories: []string{
			"As a user, I want to securely log in so that my data is protected.",
			"As a developer, I want a clean API so that I can extend the platform.",
			"As a manager, I want to see real-time progress of my team.",
		},
		TechStack: []string{
			"Frontend: React 19 + TypeScript",
			"Styling: Tailwind CSS",
			"State Management: React Context + Query",
			"Backend: Node.js / Express",
			"Database: PostgreSQL / Prisma",
		},
	}, nil
}

// ideaTitle derives a short title from the first words of the idea.
func ideaTitle(idea string) string {
	words := strings.Fields(idea)
	if len(words) == 0 {
		return "Neural Application"
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

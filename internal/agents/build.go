package agents

import (
	"context"
	"fmt"
	"time"
)

// CannedBuild is the demo build agent. It emits a small fixed set of source
// files, templated with the PRD title so the output visibly tracks the idea.
type CannedBuild struct {
	Latency time.Duration
}

func (a *CannedBuild) GenerateCode(ctx context.Context, plan *Plan, prd *PRD) (*Build, error) {
	if err := sleep(ctx, a.Latency); err != nil {
		return nil, err
	}

	return &Build{
		Files: []CodeFile{
			{
				Filename: "App.tsx",
				Language: "typescript",
				Content: fmt.Sprintf(`import React, { useState, useEffect } from 'react';
import Dashboard from './components/Dashboard';
import Sidebar from './components/Sidebar';

export default function App() {
  const [data, setData] = useState([]);

  useEffect(() => {
    // Simulated data fetch for %s
    console.log("Initializing application modules...");
  }, []);

  return (
    <div className="flex h-screen bg-slate-900 text-white font-sans">
      <Sidebar />
      <main className="flex-1 overflow-auto p-8">
        <header className="mb-8">
          <h1 className="text-4xl font-black">%s</h1>
          <p className="text-slate-400 mt-2">v1.0.0-beta</p>
        </header>
        <Dashboard />
      </main>
    </div>
  );
}`, prd.Title, prd.Title),
			},
			{
				Filename: "components/Dashboard.tsx",
				Language: "typescript",
				Content: `import React from 'react';
import { Activity, Users, Database } from 'lucide-react';

export default function Dashboard() {
  const stats = [
    { label: 'Active Users', value: '1,284', icon: Users },
    { label: 'System Uptime', value: '99.9%', icon: Activity },
    { label: 'Database Load', value: '12%', icon: Database },
  ];

  return (
    <div className="grid grid-cols-1 md:grid-cols-3 gap-6">
      {stats.map((stat, i) => (
        <div key={i} className="p-6 bg-slate-800 rounded-3xl border border-white/5">
          <div className="flex items-center gap-4 mb-4">
            <stat.icon className="text-blue-500" />
            <span className="text-xs font-bold uppercase tracking-widest text-slate-400">{stat.label}</span>
          </div>
          <div className="text-3xl font-black">{stat.value}</div>
        </div>
      ))}
    </div>
  );
}`,
			},
			{
				Filename: "styles/theme.ts",
				Language: "typescript",
				Content: `export const theme = {
  colors: {
    primary: '#3b82f6',
    secondary: '#8b5cf6',
    accent: '#10b981',
    background: '#0f172a'
  },
  spacing: {
    base: '1rem',
    large: '2rem'
  }
};`,
			},
		},
		SetupInstructions: "Run 'npm install' followed by 'npm run dev' to launch the local development server. Ensure environment variables for the database connection are configured in .env.",
	}, nil
}

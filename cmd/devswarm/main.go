package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/devswarm/devswarm/internal/agents"
	"github.com/devswarm/devswarm/internal/config"
	"github.com/devswarm/devswarm/internal/logger"
	"github.com/devswarm/devswarm/internal/orchestrator"
	"github.com/devswarm/devswarm/internal/server"
	"github.com/devswarm/devswarm/internal/store"
)

func main() {
	configPath := "devswarm.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("devswarm", slog.LevelInfo)

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	orc := orchestrator.New(st, orchestrator.NewBus(), agents.Canned(cfg.AgentLatency.Std()), orchestrator.Config{
		StageTimeout:   cfg.StageTimeout.Std(),
		FixLatency:     cfg.FixLatency.Std(),
		BuildFileDelay: cfg.BuildFileDelay.Std(),
	}, log)

	srv := server.New(orc, cfg.Port, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	log.Info("devswarm started", "port", cfg.Port, "db", cfg.DBPath)
	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

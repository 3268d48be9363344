package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrm-e2e/internal/di"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/infrastructure/env"
	"hrm-e2e/internal/infrastructure/report"
)

// reportTimeout bounds writing the report after an interrupted run.
const reportTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	envService := env.NewEnvService()
	cfg, err := env.Load(envService)
	if err != nil {
		log.Printf("invalid configuration: %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		log.Printf("initialization failed: %v", err)
		return 2
	}
	defer container.Close()

	container.Logger.Info("environment loaded", "app_env", envService.AppEnv, "files", envService.Loaded)
	container.Logger.Info("suite configured",
		"base_url", cfg.BaseURL,
		"filter", cfg.Suite.Grep,
		"workers", cfg.Suite.Workers,
		"retries", cfg.Suite.Retries,
		"ci", cfg.Suite.CI,
	)

	suite, runErr := container.Suite.Run(ctx)
	if runErr != nil {
		container.Logger.Error("suite interrupted", "error", runErr)
	}

	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	paths, err := report.Write(reportCtx, container.Store, cfg.Suite.ResultsDir, suite)
	if err != nil {
		container.Logger.Error("report not written", "error", err)
		fmt.Fprintf(os.Stderr, "report not written: %v\n", err)
	} else {
		container.Logger.Info("report written", "paths", paths)
		for _, p := range paths {
			fmt.Println("report:", p)
		}
	}

	if runErr != nil || suite.Failed() || err != nil {
		return 1
	}
	if suite.Count(entity.ScenarioPassed) == 0 {
		container.Logger.Warn("no scenario passed", "selected", len(suite.Results))
	}
	return 0
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nexusai/dispatch-api/internal/assign"
	"github.com/nexusai/dispatch-api/internal/config"
	"github.com/nexusai/dispatch-api/internal/dispatch"
	"github.com/nexusai/dispatch-api/internal/generation"
	"github.com/nexusai/dispatch-api/internal/platform/gemini"
	"github.com/nexusai/dispatch-api/internal/platform/postgres"
	"github.com/nexusai/dispatch-api/internal/service"
)

// application holds the wired-up dependencies of the running server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	taskService service.TaskService
	dispatcher  *dispatch.Dispatcher
}

// newApplication constructs the dependency graph: stores over the shared
// connection, the resolver, the processor (with or without a provider), the
// dispatcher, and the task service.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	appLogger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	taskStore := postgres.NewTaskStore(db)
	workerStore := postgres.NewWorkerStore(db)
	profileStore := postgres.NewProfileStore(db)

	// Without an API key the processor produces mock results; the pipeline
	// stays fully functional for local development.
	var generator generation.Generator
	if cfg.LLM.APIKey != "" {
		g, err := gemini.NewGenerator(ctx, appLogger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
		generator = g
	} else {
		appLogger.Warn("no LLM API key configured, tasks will produce mock results")
	}

	resolver := assign.NewResolver(workerStore, appLogger)
	processor := dispatch.NewProcessor(taskStore, workerStore, generator, appLogger)
	dispatcher := dispatch.NewDispatcher(taskStore, profileStore, processor, dispatch.Config{
		PollInterval: cfg.Dispatch.PollInterval,
		BatchSize:    cfg.Dispatch.BatchSize,
		StuckAge:     cfg.Dispatch.StuckAge,
	}, appLogger)

	taskService := service.NewTaskService(taskStore, workerStore, resolver, appLogger)

	return &application{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		taskService: taskService,
		dispatcher:  dispatcher,
	}, nil
}

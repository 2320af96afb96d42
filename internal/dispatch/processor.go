package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/generation"
	"github.com/nexusai/dispatch-api/internal/store"
)

// mockProvider names results synthesized without a configured generator.
const mockProvider = "mock"

// Outcome reports how a processed task ended.
type Outcome struct {
	TaskID uuid.UUID         `json:"id"`
	Status domain.TaskStatus `json:"status"`
}

// Processor runs a single task to a terminal state. It must only be invoked
// by a caller that already holds the dispatch lock (the task's status is
// processing). Whatever happens during execution, the processor attempts
// exactly one terminal transition: done with a result, or failed.
type Processor struct {
	tasks     store.TaskStore
	workers   store.WorkerStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewProcessor creates a Processor. generator may be nil, in which case
// every task produces a deterministic mock result; this keeps the whole
// pipeline runnable without any external AI dependency.
func NewProcessor(
	tasks store.TaskStore,
	workers store.WorkerStore,
	generator generation.Generator,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		tasks:     tasks,
		workers:   workers,
		generator: generator,
		logger:    logger,
	}
}

// Process executes the task and records the terminal state.
func (p *Processor) Process(ctx context.Context, task *domain.Task) Outcome {
	log := p.logger.With("task_id", task.ID, "worker_id", task.WorkerID)

	p.appendLog(ctx, task.ID, "Started processing task", nil)

	result, err := p.execute(ctx, task)
	if err != nil {
		task.MarkFailed()
		if updateErr := p.tasks.Update(ctx, task); updateErr != nil {
			log.Error("failed to record task failure",
				"error", updateErr,
				"cause", err)
		}

		meta, _ := json.Marshal(map[string]string{"error": err.Error()})
		p.appendLog(ctx, task.ID, "Processing failed", meta)

		log.Warn("task failed", "error", err)
		return Outcome{TaskID: task.ID, Status: domain.TaskStatusFailed}
	}

	task.MarkDone(result)
	if updateErr := p.tasks.Update(ctx, task); updateErr != nil {
		// The run finished but the terminal write did not land; the task will
		// show up in stuck reporting until an operator intervenes.
		log.Error("failed to record task completion", "error", updateErr)
	}

	meta, _ := json.Marshal(result)
	p.appendLog(ctx, task.ID, "Completed task", meta)

	log.Info("task completed", "provider", result.Provider)
	return Outcome{TaskID: task.ID, Status: domain.TaskStatusDone}
}

// execute produces the task's result: worker role lookup, prompt
// construction, and the provider call (or the mock fallback).
func (p *Processor) execute(ctx context.Context, task *domain.Task) (*domain.TaskResult, error) {
	// A missing worker profile never fails the task; the run proceeds with
	// the default role label.
	role := domain.DefaultWorkerRole
	worker, err := p.workers.GetByID(ctx, task.WorkerID)
	if err != nil {
		p.logger.DebugContext(ctx, "worker profile unavailable, using default role",
			"task_id", task.ID,
			"worker_id", task.WorkerID,
			"error", err)
	} else {
		role = worker.RoleOrDefault()
	}

	if p.generator == nil {
		return &domain.TaskResult{
			Provider: mockProvider,
			Text:     fmt.Sprintf("Mock %s result for task: %s", role, task.Title),
		}, nil
	}

	prompt := fmt.Sprintf("You are an AI %s. Task: %s. Details: %s",
		role, task.Title, task.Description)

	completion, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &domain.TaskResult{
		Provider: completion.Provider,
		Raw:      completion.Raw,
		Text:     completion.Text,
	}, nil
}

func (p *Processor) appendLog(ctx context.Context, taskID uuid.UUID, message string, meta json.RawMessage) {
	entry, err := domain.NewTaskLogEntry(taskID, message, meta)
	if err != nil {
		p.logger.Warn("invalid task log entry", "task_id", taskID, "error", err)
		return
	}

	if err := p.tasks.AppendLog(ctx, entry); err != nil {
		p.logger.Warn("failed to append task log",
			"task_id", taskID,
			"message", message,
			"error", err)
	}
}

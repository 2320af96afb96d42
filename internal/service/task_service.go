// Package service implements the application's use cases on top of the
// store interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/assign"
	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/store"
)

// Common sentinel errors for TaskService
var (
	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidWorker indicates that an explicitly supplied worker ID does
	// not match any known worker. Treated as a validation failure of the
	// creation request, not as a not-found outcome.
	ErrInvalidWorker = errors.New("invalid worker ID")
)

// CreateTaskInput carries the parameters of the create-task trigger. An
// empty WorkerID means the assignment resolver picks one; an empty Priority
// or RunMode takes the documented default.
type CreateTaskInput struct {
	UserID      uuid.UUID
	WorkerID    string
	Title       string
	Description string
	Priority    domain.TaskPriority
	RunMode     domain.RunMode
	Template    string
}

// TaskService provides task-related operations for the trigger surfaces.
type TaskService interface {
	// CreateTask validates the input, resolves a worker when none was
	// supplied, persists the pending task and writes its "created" log entry.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTaskLogs retrieves a task's log entries, newest first.
	ListTaskLogs(ctx context.Context, id uuid.UUID) ([]*domain.TaskLogEntry, error)

	// CancelTask moves a pending or processing task to cancelled. Terminal
	// tasks return domain.ErrTaskNotCancellable.
	CancelTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// newTaskServiceError wraps err with operation context. Known sentinels and
// validation errors pass through unwrapped so callers can match on them.
func newTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}

	if errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrTaskNotCancellable) ||
		errors.Is(err, ErrInvalidWorker) ||
		errors.Is(err, store.ErrUnavailable) {
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	workers  store.WorkerStore
	resolver *assign.Resolver
	logger   *slog.Logger
}

// NewTaskService creates a TaskService backed by the given stores and
// assignment resolver.
func NewTaskService(
	tasks store.TaskStore,
	workers store.WorkerStore,
	resolver *assign.Resolver,
	logger *slog.Logger,
) TaskService {
	return &taskServiceImpl{
		tasks:    tasks,
		workers:  workers,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	workerID := input.WorkerID
	if workerID == "" {
		workerID = s.resolver.Resolve(ctx, input.Template, input.Title, input.Description)
	} else {
		// An explicit assignment must name a known worker.
		if _, err := s.workers.GetByID(ctx, workerID); err != nil {
			if store.IsNotFoundError(err) {
				return nil, ErrInvalidWorker
			}
			return nil, newTaskServiceError("create_task", "worker lookup failed", err)
		}
	}

	task, err := domain.NewTask(
		input.UserID,
		workerID,
		input.Title,
		input.Description,
		input.Priority,
		input.RunMode,
	)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, newTaskServiceError("create_task", "failed to persist task", err)
	}

	s.appendLog(ctx, task.ID, "Task created")

	s.logger.InfoContext(ctx, "task created",
		"task_id", task.ID,
		"user_id", task.UserID,
		"worker_id", task.WorkerID,
		"run_mode", task.RunMode)

	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, newTaskServiceError("get_task", "failed to fetch task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) ListTaskLogs(ctx context.Context, id uuid.UUID) ([]*domain.TaskLogEntry, error) {
	// Verify the task exists so a bogus ID maps to not-found rather than an
	// empty list.
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return nil, newTaskServiceError("list_task_logs", "failed to fetch task", err)
	}

	entries, err := s.tasks.ListLogs(ctx, id)
	if err != nil {
		return nil, newTaskServiceError("list_task_logs", "failed to fetch logs", err)
	}
	return entries, nil
}

func (s *taskServiceImpl) CancelTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, newTaskServiceError("cancel_task", "failed to fetch task", err)
	}

	if err := task.Cancel(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, newTaskServiceError("cancel_task", "failed to persist cancellation", err)
	}

	s.appendLog(ctx, task.ID, "Task cancelled")

	return task, nil
}

// appendLog writes an audit entry; failures are logged but never fail the
// operation that triggered them.
func (s *taskServiceImpl) appendLog(ctx context.Context, taskID uuid.UUID, message string) {
	entry, err := domain.NewTaskLogEntry(taskID, message, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid task log entry", "task_id", taskID, "error", err)
		return
	}

	if err := s.tasks.AppendLog(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to append task log",
			"task_id", taskID,
			"message", message,
			"error", err)
	}
}

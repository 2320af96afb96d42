package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/domain"
)

// TaskStore defines the persistence contract the dispatch pipeline requires
// for tasks and their append-only log entries. Implementations must make
// TryLock an atomic conditional update; it is the concurrency primitive the
// whole dispatch protocol rests on.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListPendingAuto retrieves at most limit tasks with status=pending and
	// run_mode=auto, ordered by created_at ascending (oldest first).
	ListPendingAuto(ctx context.Context, limit int) ([]*domain.Task, error)

	// TryLock attempts the conditional transition pending -> processing for
	// the given task. Returns true iff exactly one row changed, meaning this
	// caller won the dispatch race. A false return is a normal outcome, not
	// an error.
	TryLock(ctx context.Context, id uuid.UUID) (bool, error)

	// Update saves changes to an existing task unconditionally. Used by a
	// dispatcher that already holds the lock to write terminal state.
	Update(ctx context.Context, task *domain.Task) error

	// ListStuck retrieves tasks that have sat in processing longer than
	// olderThan. The dispatch protocol never resets these; they are surfaced
	// for operators.
	ListStuck(ctx context.Context, olderThan time.Duration) ([]*domain.Task, error)

	// AppendLog inserts a log entry for a task. Log entries are insert-only.
	AppendLog(ctx context.Context, entry *domain.TaskLogEntry) error

	// ListLogs retrieves a task's log entries ordered by created_at
	// descending (display order).
	ListLogs(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskLogEntry, error)
}

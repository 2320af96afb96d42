package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/platform/logger"
	"github.com/nexusai/dispatch-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new TaskStore backed by the given connection.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// Ensure TaskStore satisfies the interface.
var _ store.TaskStore = (*TaskStore)(nil)

const taskColumns = `id, user_id, worker_id, title, description, priority, run_mode,
		status, result, created_at, updated_at, completed_at`

// Create persists a new task.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := marshalResult(task.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.WorkerID,
		task.Title,
		task.Description,
		task.Priority,
		task.RunMode,
		task.Status,
		result,
		task.CreatedAt,
		task.UpdatedAt,
		task.CompletedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			"task_id", task.ID,
			"error", err)
		return translateError(err, store.ErrTaskNotFound)
	}

	return nil
}

// GetByID retrieves a task by its unique ID.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, store.ErrTaskNotFound)
	}

	return task, nil
}

// ListPendingAuto retrieves the oldest pending auto-run tasks, bounded by limit.
func (s *TaskStore) ListPendingAuto(ctx context.Context, limit int) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = $1 AND run_mode = $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	return s.listTasks(ctx, query, domain.TaskStatusPending, domain.RunModeAuto, limit)
}

// TryLock attempts the conditional pending -> processing transition. The
// WHERE clause on the current status makes the update atomic: when several
// dispatchers race on the same task, the store applies the row change for
// exactly one of them and the rest see zero rows affected.
func (s *TaskStore) TryLock(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.TaskStatusProcessing,
		time.Now().UTC(),
		id,
		domain.TaskStatusPending,
	)
	if err != nil {
		return false, translateError(err, store.ErrTaskNotFound)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// Update saves changes to an existing task unconditionally.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	result, err := marshalResult(task.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET worker_id = $1, title = $2, description = $3, status = $4,
			result = $5, updated_at = $6, completed_at = $7
		WHERE id = $8
	`

	task.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, query,
		task.WorkerID,
		task.Title,
		task.Description,
		task.Status,
		result,
		task.UpdatedAt,
		task.CompletedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			"task_id", task.ID,
			"status", task.Status,
			"error", err)
		return translateError(err, store.ErrTaskNotFound)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// ListStuck retrieves tasks sitting in processing longer than olderThan.
func (s *TaskStore) ListStuck(ctx context.Context, olderThan time.Duration) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = $1 AND updated_at < $2
		ORDER BY created_at ASC
	`

	cutoff := time.Now().UTC().Add(-olderThan)
	return s.listTasks(ctx, query, domain.TaskStatusProcessing, cutoff)
}

// AppendLog inserts a log entry for a task. Entries are insert-only; there
// is no update or delete path.
func (s *TaskStore) AppendLog(ctx context.Context, entry *domain.TaskLogEntry) error {
	log := logger.FromContext(ctx)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO task_logs (id, task_id, message, meta, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	var meta any
	if len(entry.Meta) > 0 {
		meta = []byte(entry.Meta)
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.Message,
		meta,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append task log",
			"task_id", entry.TaskID,
			"error", err)
		return translateError(err, store.ErrTaskNotFound)
	}

	return nil
}

// ListLogs retrieves a task's log entries, newest first.
func (s *TaskStore) ListLogs(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskLogEntry, error) {
	query := `
		SELECT id, task_id, message, meta, created_at
		FROM task_logs
		WHERE task_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, translateError(err, store.ErrTaskNotFound)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.TaskLogEntry
	for rows.Next() {
		var entry domain.TaskLogEntry
		var meta []byte

		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.Message, &meta, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task log row: %w", err)
		}

		if len(meta) > 0 {
			entry.Meta = json.RawMessage(meta)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError(err, store.ErrTaskNotFound)
	}

	return entries, nil
}

func (s *TaskStore) listTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, store.ErrTaskNotFound)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError(err, store.ErrTaskNotFound)
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var result []byte
	var completedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.WorkerID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.RunMode,
		&task.Status,
		&result,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	if len(result) > 0 {
		var r domain.TaskResult
		if err := json.Unmarshal(result, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
		}
		task.Result = &r
	}

	return &task, nil
}

func marshalResult(result *domain.TaskResult) (any, error) {
	if result == nil {
		return nil, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task result: %w", err)
	}
	return data, nil
}

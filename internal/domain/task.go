package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values. Transitions are monotonic:
// pending -> processing -> done|failed, with cancelled reachable from
// pending or processing through external action only.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority classifies how urgent a task is.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// RunMode determines whether automatic dispatchers may pick a task up.
type RunMode string

// Possible run mode values
const (
	RunModeAuto   RunMode = "auto"
	RunModeManual RunMode = "manual"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID          = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskUserID      = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)
	ErrEmptyTaskWorkerID    = fmt.Errorf("%w: task worker ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle       = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrEmptyTaskDescription = fmt.Errorf("%w: task description cannot be empty", ErrValidation)
	ErrInvalidTaskPriority  = fmt.Errorf("%w: invalid task priority", ErrValidation)
	ErrInvalidRunMode       = fmt.Errorf("%w: invalid run mode", ErrValidation)
	ErrInvalidTaskStatus    = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrTaskNotCancellable is returned when cancelling a task that has
	// already reached a terminal state.
	ErrTaskNotCancellable = errors.New("task is not cancellable")
)

// TaskResult is the opaque payload produced by a worker run. Raw carries the
// provider's response verbatim; Text is the extracted completion.
type TaskResult struct {
	Provider string          `json:"provider"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Text     string          `json:"text"`
}

// Task represents one unit of work requested by a user and performed by an
// assigned worker. Owner, run mode and priority are immutable after creation;
// the worker assignment is immutable once processing starts.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	WorkerID    string       `json:"worker_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	RunMode     RunMode      `json:"run_mode"`
	Status      TaskStatus   `json:"status"`
	Result      *TaskResult  `json:"result,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewTask creates a new pending Task for the given owner and worker.
// Title and description are trimmed before validation. An empty priority
// defaults to medium and an empty run mode defaults to auto, matching the
// creation trigger's defaults. Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	workerID, title, description string,
	priority TaskPriority,
	runMode RunMode,
) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if runMode == "" {
		runMode = RunModeAuto
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		WorkerID:    workerID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Priority:    priority,
		RunMode:     runMode,
		Status:      TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if t.WorkerID == "" {
		return ErrEmptyTaskWorkerID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyTaskDescription
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	if !isValidRunMode(t.RunMode) {
		return ErrInvalidRunMode
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// MarkDone transitions the task to done with the given result and stamps
// the completion time.
func (t *Task) MarkDone(result *TaskResult) {
	now := time.Now().UTC()
	t.Status = TaskStatusDone
	t.Result = result
	t.UpdatedAt = now
	t.CompletedAt = &now
}

// MarkFailed transitions the task to failed. The result stays unset; the
// failure detail lives in the task's log entries.
func (t *Task) MarkFailed() {
	now := time.Now().UTC()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.CompletedAt = &now
}

// Cancel transitions the task to cancelled. Only pending and processing
// tasks can be cancelled; terminal tasks return ErrTaskNotCancellable.
func (t *Task) Cancel() error {
	if t.Status.Terminal() {
		return ErrTaskNotCancellable
	}

	now := time.Now().UTC()
	t.Status = TaskStatusCancelled
	t.UpdatedAt = now
	t.CompletedAt = &now
	return nil
}

// Terminal reports whether the status is one a task never leaves.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusDone, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusDone,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

func isValidRunMode(mode RunMode) bool {
	switch mode {
	case RunModeAuto, RunModeManual:
		return true
	default:
		return false
	}
}

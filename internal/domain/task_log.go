package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for TaskLogEntry
var (
	ErrEmptyLogID      = fmt.Errorf("%w: log entry ID cannot be empty", ErrValidation)
	ErrEmptyLogTaskID  = fmt.Errorf("%w: log entry task ID cannot be empty", ErrValidation)
	ErrEmptyLogMessage = fmt.Errorf("%w: log entry message cannot be empty", ErrValidation)
)

// TaskLogEntry is one record in a task's append-only audit trail. Entries
// are never updated or deleted once written.
type TaskLogEntry struct {
	ID        uuid.UUID       `json:"id"`
	TaskID    uuid.UUID       `json:"task_id"`
	Message   string          `json:"message"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskLogEntry creates a log entry for the given task. Meta is optional
// structured metadata; pass nil when there is none.
func NewTaskLogEntry(taskID uuid.UUID, message string, meta json.RawMessage) (*TaskLogEntry, error) {
	entry := &TaskLogEntry{
		ID:        uuid.New(),
		TaskID:    taskID,
		Message:   message,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the TaskLogEntry has valid data.
func (e *TaskLogEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyLogID
	}

	if e.TaskID == uuid.Nil {
		return ErrEmptyLogTaskID
	}

	if e.Message == "" {
		return ErrEmptyLogMessage
	}

	return nil
}

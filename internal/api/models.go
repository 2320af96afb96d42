package api

import (
	"encoding/json"
	"time"

	"github.com/nexusai/dispatch-api/internal/domain"
)

// CreateTaskRequest represents the request body for creating a new task.
type CreateTaskRequest struct {
	UserID      string `json:"user_id"     validate:"required,uuid"`
	WorkerID    string `json:"worker_id"   validate:"omitempty"`
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	RunMode     string `json:"run_mode"    validate:"omitempty,oneof=auto manual"`
	Template    string `json:"template"    validate:"omitempty"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	WorkerID    string             `json:"worker_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    string             `json:"priority"`
	RunMode     string             `json:"run_mode"`
	Status      string             `json:"status"`
	Result      *domain.TaskResult `json:"result,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// TaskLogResponse represents one entry of a task's audit trail.
type TaskLogResponse struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	Message   string          `json:"message"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// RunOutcomeResponse reports how a dispatched task ended.
type RunOutcomeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// BatchResponse is the scheduled trigger's response.
type BatchResponse struct {
	Processed int                  `json:"processed"`
	Results   []RunOutcomeResponse `json:"results"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		WorkerID:    task.WorkerID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		RunMode:     string(task.RunMode),
		Status:      string(task.Status),
		Result:      task.Result,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	}
}

func logToResponse(entry *domain.TaskLogEntry) TaskLogResponse {
	return TaskLogResponse{
		ID:        entry.ID.String(),
		TaskID:    entry.TaskID.String(),
		Message:   entry.Message,
		Meta:      entry.Meta,
		CreatedAt: entry.CreatedAt,
	}
}

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/api/shared"
	"github.com/nexusai/dispatch-api/internal/dispatch"
	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/service"
)

// TaskRunner is the slice of the dispatcher the handlers need: the manual
// single-task trigger and the scheduled batch trigger.
type TaskRunner interface {
	RunTask(ctx context.Context, id uuid.UUID) (dispatch.Outcome, error)
	RunBatch(ctx context.Context) ([]dispatch.Outcome, error)
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	runner      TaskRunner
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, runner TaskRunner, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		runner:      runner,
		validator:   validator.New(),
		logger:      logger,
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user_id")
		return
	}

	// Users can only create tasks for themselves, when we know who they are.
	if requester, ok := shared.GetUserID(r.Context()); ok && requester != userID {
		shared.RespondWithError(w, r, http.StatusForbidden,
			"You are not authorized to create tasks for this user")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), service.CreateTaskInput{
		UserID:      userID,
		WorkerID:    req.WorkerID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		RunMode:     domain.RunMode(req.RunMode),
		Template:    req.Template,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.fetchOwnedTask(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTaskLogs handles GET /api/tasks/{id}/logs requests. Entries come back
// newest first.
func (h *TaskHandler) ListTaskLogs(w http.ResponseWriter, r *http.Request) {
	task, ok := h.fetchOwnedTask(w, r)
	if !ok {
		return
	}

	entries, err := h.taskService.ListTaskLogs(r.Context(), task.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]TaskLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, logToResponse(entry))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RunTask handles POST /api/tasks/{id}/run requests, the manual trigger.
// The task must still be pending; the dispatcher takes it through the same
// lock and processor as automatic runs.
func (h *TaskHandler) RunTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.fetchOwnedTask(w, r)
	if !ok {
		return
	}

	outcome, err := h.runner.RunTask(r.Context(), task.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RunOutcomeResponse{
		ID:     outcome.TaskID.String(),
		Status: string(outcome.Status),
	})
}

// CancelTask handles POST /api/tasks/{id}/cancel requests.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.fetchOwnedTask(w, r)
	if !ok {
		return
	}

	cancelled, err := h.taskService.CancelTask(r.Context(), task.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(cancelled))
}

// RunBatch handles POST /api/dispatch/run requests, the scheduled trigger
// surface, invoked by an external scheduler. Runs one eligibility-filtered
// batch and reports what was processed.
func (h *TaskHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.runner.RunBatch(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	results := make([]RunOutcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		results = append(results, RunOutcomeResponse{
			ID:     outcome.TaskID.String(),
			Status: string(outcome.Status),
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BatchResponse{
		Processed: len(results),
		Results:   results,
	})
}

// fetchOwnedTask parses the path ID, loads the task and enforces the
// permissive ownership check: when the request carries an identity it must
// match the task owner. Writes the error response itself when it fails.
func (h *TaskHandler) fetchOwnedTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return nil, false
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}

	if requester, ok := shared.GetUserID(r.Context()); ok && requester != task.UserID {
		shared.RespondWithError(w, r, http.StatusForbidden,
			"You are not authorized to access this task")
		return nil, false
	}

	return task, true
}

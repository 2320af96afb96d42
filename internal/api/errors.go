package api

import (
	"errors"
	"net/http"

	"github.com/nexusai/dispatch-api/internal/dispatch"
	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/service"
	"github.com/nexusai/dispatch-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrInvalidWorker),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, dispatch.ErrTaskNotPending),
		errors.Is(err, domain.ErrTaskNotCancellable):
		return http.StatusConflict

	// Default: internal server error (includes store unavailability)
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrInvalidWorker):
		return "Invalid worker_id"

	case errors.Is(err, domain.ErrValidation):
		// Domain validation messages are written for users.
		return err.Error()

	case errors.Is(err, domain.ErrUnauthorized):
		return "You are not authorized to access this task"

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Task not found"

	case errors.Is(err, dispatch.ErrTaskNotPending):
		return "Task is not pending"

	case errors.Is(err, domain.ErrTaskNotCancellable):
		return "Task has already finished"

	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

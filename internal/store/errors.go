package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrTaskNotFound, ErrWorkerNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable is returned when a store operation fails because the
	// backing service cannot be reached (connectivity, timeout). Callers
	// decide the retry policy; the store never retries internally.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidEntity is returned when an entity fails a storage constraint
	// (e.g., a foreign key to a worker that does not exist).
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an unconditional update matches no rows.
	ErrUpdateFailed = errors.New("update failed")

	// Entity-specific "not found" errors

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrWorkerNotFound indicates that the requested worker does not exist in the store.
	ErrWorkerNotFound = fmt.Errorf("%w: worker", ErrNotFound)

	// ErrProfileNotFound indicates that the requested user profile does not exist.
	ErrProfileNotFound = fmt.Errorf("%w: profile", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailableError checks if the error indicates the store could not be
// reached, as opposed to a definite outcome like a missing row.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

package store

import (
	"context"

	"github.com/nexusai/dispatch-api/internal/domain"
)

// WorkerStore provides read access to worker profiles. Worker lifecycle is
// owned outside this service.
type WorkerStore interface {
	// GetByID retrieves a worker profile by its ID.
	// Returns ErrWorkerNotFound if the worker does not exist.
	GetByID(ctx context.Context, id string) (*domain.WorkerProfile, error)

	// ListIDs retrieves the IDs of all known workers.
	ListIDs(ctx context.Context) ([]string, error)
}

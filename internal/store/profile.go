package store

import (
	"context"

	"github.com/google/uuid"
)

// ProfileStore provides read access to per-user settings. Profiles are owned
// and mutated by the settings surface, not by the dispatch pipeline.
type ProfileStore interface {
	// AutoRunEnabled reads the user's auto_run_tasks flag. Returns
	// ErrProfileNotFound if the user has no profile row.
	AutoRunEnabled(ctx context.Context, userID uuid.UUID) (bool, error)
}

package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/store"
)

// ProfileStore implements the store.ProfileStore interface using PostgreSQL.
// Profiles are owned by the settings surface; the pipeline only reads the
// auto-run flag from them.
type ProfileStore struct {
	db store.DBTX
}

// NewProfileStore creates a new ProfileStore backed by the given connection.
func NewProfileStore(db store.DBTX) *ProfileStore {
	return &ProfileStore{db: db}
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// AutoRunEnabled reads the user's auto_run_tasks flag.
func (s *ProfileStore) AutoRunEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		SELECT auto_run_tasks
		FROM profiles
		WHERE id = $1
	`

	var enabled bool
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&enabled); err != nil {
		return false, translateError(err, store.ErrProfileNotFound)
	}

	return enabled, nil
}

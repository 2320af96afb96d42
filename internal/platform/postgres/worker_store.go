package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/store"
)

// WorkerStore implements the store.WorkerStore interface using PostgreSQL.
// The workers table is owned by an external collaborator; this store only
// ever reads from it.
type WorkerStore struct {
	db store.DBTX
}

// NewWorkerStore creates a new WorkerStore backed by the given connection.
func NewWorkerStore(db store.DBTX) *WorkerStore {
	return &WorkerStore{db: db}
}

var _ store.WorkerStore = (*WorkerStore)(nil)

// GetByID retrieves a worker profile by its ID.
func (s *WorkerStore) GetByID(ctx context.Context, id string) (*domain.WorkerProfile, error) {
	query := `
		SELECT id, name, role, keywords
		FROM workers
		WHERE id = $1
	`

	var worker domain.WorkerProfile
	var keywords []byte

	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&worker.ID, &worker.Name, &worker.Role, &keywords)
	if err != nil {
		return nil, translateError(err, store.ErrWorkerNotFound)
	}

	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &worker.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal worker keywords: %w", err)
		}
	}

	return &worker, nil
}

// ListIDs retrieves the IDs of all known workers.
func (s *WorkerStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM workers ORDER BY id`)
	if err != nil {
		return nil, translateError(err, store.ErrWorkerNotFound)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan worker id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError(err, store.ErrWorkerNotFound)
	}

	return ids, nil
}

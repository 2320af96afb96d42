package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexusai/dispatch-api/internal/store"
)

// Postgres error codes we map to store sentinels.
const (
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
)

// translateError maps a database error into the store package's sentinel
// errors. sql.ErrNoRows becomes notFound; constraint violations become
// ErrInvalidEntity; anything without a server response is treated as the
// store being unreachable.
func translateError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeForeignKeyViolation, pgCodeUniqueViolation:
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		return err
	}

	// The server never answered: connectivity failure, not a definite outcome.
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}

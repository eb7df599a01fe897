package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// PostgreSQL error codes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeLockNotAvailable    = "55P03"
	codeDeadlockDetected    = "40P01"
)

// MapError wraps err with the entity and id and translates driver errors
// into domain sentinels. Context errors are kept as they are so callers can
// tell a timeout from a missing row.
//
// A lock that could not be taken within lock_timeout, or a deadlock, means
// another reviewer holds the row; both surface as domain.ErrConflict.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	var sentinel error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		sentinel = err
	case errors.Is(err, pgx.ErrNoRows):
		sentinel = domain.ErrNotFound
	default:
		sentinel = pgSentinel(err)
	}
	return fmt.Errorf("%s %s: %w", entity, id, sentinel)
}

func pgSentinel(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return domain.ErrAlreadyExists
	case codeForeignKeyViolation:
		return domain.ErrNotFound
	case codeCheckViolation:
		return domain.ErrValidation
	case codeLockNotAvailable, codeDeadlockDetected:
		return domain.ErrConflict
	}
	return err
}

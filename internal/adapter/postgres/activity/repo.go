// Package activity implements the activity log repository using PostgreSQL.
// It provides append-only operations for review audit records.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Repo provides activity log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO activity_logs (id, actor_id, application_id, action, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const listByApplicationSQL = `
SELECT id, actor_id, application_id, action, details, created_at
FROM activity_logs
WHERE application_id = $1
ORDER BY created_at DESC, id
LIMIT $2`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Log appends an activity record.
func (r *Repo) Log(ctx context.Context, rec domain.ActivityLog) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	details := rec.Details
	if details == nil {
		details = map[string]any{}
	}

	if _, err := q.Exec(ctx, insertSQL,
		rec.ID, uuidPtrToPgUUID(rec.ActorID), rec.ApplicationID, string(rec.Action), details, rec.CreatedAt,
	); err != nil {
		return postgres.MapError(err, "activity_log", rec.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByApplication returns the newest activity records of an application.
func (r *Repo) ListByApplication(ctx context.Context, applicationID uuid.UUID, limit int) ([]domain.ActivityLog, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listByApplicationSQL, applicationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity_logs: %w", err)
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var (
			rec     domain.ActivityLog
			actorID pgtype.UUID
			action  string
			details map[string]any
		)
		if err := rows.Scan(&rec.ID, &actorID, &rec.ApplicationID, &action, &details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity_log: %w", err)
		}
		if actorID.Valid {
			id := uuid.UUID(actorID.Bytes)
			rec.ActorID = &id
		}
		rec.Action = domain.ActivityAction(action)
		rec.Details = details
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity_logs: %w", err)
	}
	return out, nil
}

// uuidPtrToPgUUID converts a *uuid.UUID to pgtype.UUID (nil -> NULL).
func uuidPtrToPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

// Package orientation implements the orientation record repository using PostgreSQL.
package orientation

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Repo provides orientation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new orientation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const columns = `id, application_id, session_date, session_slot, venue, status,
       check_in_time, check_out_time, checked_in_by, checked_out_by, created_at, updated_at`

const getByApplicationSQL = `SELECT ` + columns + ` FROM orientation_records WHERE application_id = $1`

const getByApplicationForUpdateSQL = getByApplicationSQL + ` FOR UPDATE`

const upsertSQL = `
INSERT INTO orientation_records (id, application_id, session_date, session_slot, venue, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (application_id) DO UPDATE
SET session_date = EXCLUDED.session_date,
    session_slot = EXCLUDED.session_slot,
    venue = EXCLUDED.venue,
    status = EXCLUDED.status,
    check_in_time = NULL,
    check_out_time = NULL,
    checked_in_by = NULL,
    checked_out_by = NULL,
    updated_at = EXCLUDED.updated_at
RETURNING ` + columns

const updateSQL = `
UPDATE orientation_records
SET status = $2, check_in_time = $3, check_out_time = $4, checked_in_by = $5, checked_out_by = $6, updated_at = $7
WHERE id = $1
RETURNING ` + columns

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByApplication returns the orientation record of an application.
func (r *Repo) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error) {
	rec, err := scanRecord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, getByApplicationSQL, applicationID))
	if err != nil {
		return nil, postgres.MapError(err, "orientation_record", applicationID)
	}
	return rec, nil
}

// GetByApplicationForUpdate returns the orientation record and locks its row.
func (r *Repo) GetByApplicationForUpdate(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error) {
	rec, err := scanRecord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, getByApplicationForUpdateSQL, applicationID))
	if err != nil {
		return nil, postgres.MapError(err, "orientation_record", applicationID)
	}
	return rec, nil
}

// ListBySession returns every booking of one session ordered by application.
func (r *Repo) ListBySession(ctx context.Context, key domain.SessionKey) ([]domain.OrientationRecord, error) {
	query, args, err := postgres.Builder().
		Select(columns).
		From("orientation_records").
		Where(squirrel.Eq{
			"session_date": key.Day(),
			"session_slot": key.Slot,
			"venue":        key.Venue,
		}).
		OrderBy("application_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orientation_records: %w", err)
	}
	defer rows.Close()

	var out []domain.OrientationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan orientation_record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orientation_records: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create books an application into a session. A missed booking of the
// same application is replaced.
func (r *Repo) Create(ctx context.Context, rec domain.OrientationRecord) (*domain.OrientationRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = domain.OrientationScheduled
	}
	key := domain.SessionKey{Date: rec.SessionDate}

	created, err := scanRecord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, upsertSQL,
		rec.ID, rec.ApplicationID, key.Day(), rec.SessionSlot, rec.Venue, string(rec.Status), rec.CreatedAt,
	))
	if err != nil {
		return nil, postgres.MapError(err, "orientation_record", rec.ApplicationID)
	}
	return created, nil
}

// Update writes the attendance state of a record.
func (r *Repo) Update(ctx context.Context, rec domain.OrientationRecord) (*domain.OrientationRecord, error) {
	updated, err := scanRecord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, updateSQL,
		rec.ID, string(rec.Status), rec.CheckInTime, rec.CheckOutTime, rec.CheckedInBy, rec.CheckedOutBy, time.Now().UTC(),
	))
	if err != nil {
		return nil, postgres.MapError(err, "orientation_record", rec.ID)
	}
	return updated, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanRecord(row pgx.Row) (*domain.OrientationRecord, error) {
	var (
		rec         domain.OrientationRecord
		status      string
		checkIn     pgtype.Timestamptz
		checkOut    pgtype.Timestamptz
		checkedIn   pgtype.UUID
		checkedOut  pgtype.UUID
		sessionDate pgtype.Date
	)

	if err := row.Scan(
		&rec.ID, &rec.ApplicationID, &sessionDate, &rec.SessionSlot, &rec.Venue, &status,
		&checkIn, &checkOut, &checkedIn, &checkedOut, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rec.SessionDate = sessionDate.Time
	rec.Status = domain.OrientationStatus(status)
	if checkIn.Valid {
		t := checkIn.Time
		rec.CheckInTime = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOutTime = &t
	}
	if checkedIn.Valid {
		id := uuid.UUID(checkedIn.Bytes)
		rec.CheckedInBy = &id
	}
	if checkedOut.Valid {
		id := uuid.UUID(checkedOut.Bytes)
		rec.CheckedOutBy = &id
	}

	return &rec, nil
}

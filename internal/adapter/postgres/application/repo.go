// Package application implements the Application repository using PostgreSQL.
// Fixed queries are raw SQL; partial updates are built with squirrel.
package application

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

// Repo provides application persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new application repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const columns = `id, applicant_id, job_category_id, application_type, status,
       orientation_completed, payment_deadline, admin_remarks, last_updated_by,
       created_at, updated_at`

const getByIDSQL = `SELECT ` + columns + ` FROM applications WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + ` FOR UPDATE`

const createSQL = `
INSERT INTO applications (id, applicant_id, job_category_id, application_type, status,
                          orientation_completed, payment_deadline, admin_remarks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
RETURNING ` + columns

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an application by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	app, err := scanApplication(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "application", id)
	}
	return app, nil
}

// GetByIDForUpdate returns an application and locks its row until the
// surrounding transaction ends. Must be called inside RunInTx.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	if !postgres.InTx(ctx) {
		return nil, fmt.Errorf("lock application %s: no transaction in context", id)
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	app, err := scanApplication(q.QueryRow(ctx, getByIDForUpdateSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "application", id)
	}
	return app, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new application.
func (r *Repo) Create(ctx context.Context, app domain.Application) (*domain.Application, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}

	created, err := scanApplication(q.QueryRow(ctx, createSQL,
		app.ID, app.ApplicantID, app.JobCategoryID, string(app.Type), string(app.Status),
		app.OrientationCompleted, app.PaymentDeadline, app.AdminRemarks, app.CreatedAt,
	))
	if err != nil {
		return nil, postgres.MapError(err, "application", app.ID)
	}
	return created, nil
}

// Update applies a partial update and returns the updated application.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, upd domain.ApplicationUpdate) (*domain.Application, error) {
	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	b := postgres.Builder().
		Update("applications").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + columns)

	if upd.Status != nil {
		b = b.Set("status", string(*upd.Status))
	}
	if upd.OrientationCompleted != nil {
		b = b.Set("orientation_completed", *upd.OrientationCompleted)
	}
	if upd.PaymentDeadline != nil {
		b = b.Set("payment_deadline", *upd.PaymentDeadline)
	}
	if upd.AdminRemarks != nil {
		b = b.Set("admin_remarks", *upd.AdminRemarks)
	}
	if upd.LastUpdatedBy != nil {
		b = b.Set("last_updated_by", *upd.LastUpdatedBy)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build application update: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	app, err := scanApplication(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "application", id)
	}
	return app, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var (
		app           domain.Application
		appType       string
		status        string
		deadline      pgtype.Timestamptz
		remarks       pgtype.Text
		lastUpdatedBy pgtype.UUID
	)

	if err := row.Scan(
		&app.ID, &app.ApplicantID, &app.JobCategoryID, &appType, &status,
		&app.OrientationCompleted, &deadline, &remarks, &lastUpdatedBy,
		&app.CreatedAt, &app.UpdatedAt,
	); err != nil {
		return nil, err
	}

	app.Type = domain.ApplicationType(appType)
	app.Status = domain.ApplicationStatus(status)
	if deadline.Valid {
		t := deadline.Time
		app.PaymentDeadline = &t
	}
	if remarks.Valid {
		s := remarks.String
		app.AdminRemarks = &s
	}
	if lastUpdatedBy.Valid {
		id := uuid.UUID(lastUpdatedBy.Bytes)
		app.LastUpdatedBy = &id
	}

	return &app, nil
}

// Package rejection implements the permanent rejection repository using PostgreSQL.
package rejection

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Repo provides permanent rejection persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new permanent rejection repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, application_id, applicant_id, job_category_id, trigger_artifact_type_id,
       trigger_category, total_document_attempts, total_payment_attempts, rejected_by, rejected_at`

const insertSQL = `
INSERT INTO permanent_rejections (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const getByApplicationSQL = `SELECT ` + columns + ` FROM permanent_rejections WHERE application_id = $1`

// Create inserts the rejection record. A second record for the same
// application is returned as domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, rec domain.PermanentRejectionRecord) error {
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, insertSQL,
		rec.ID, rec.ApplicationID, rec.ApplicantID, rec.JobCategoryID, rec.TriggerArtifactTypeID,
		string(rec.TriggerCategory), rec.TotalDocumentAttempts, rec.TotalPaymentAttempts, rec.RejectedBy, rec.RejectedAt,
	)
	if err != nil {
		return postgres.MapError(err, "permanent_rejection", rec.ApplicationID)
	}
	return nil
}

// GetByApplication returns the rejection record of an application.
// Returns domain.ErrNotFound if the application was never permanently rejected.
func (r *Repo) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.PermanentRejectionRecord, error) {
	rec, err := scanRecord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, getByApplicationSQL, applicationID))
	if err != nil {
		return nil, postgres.MapError(err, "permanent_rejection", applicationID)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*domain.PermanentRejectionRecord, error) {
	var (
		rec      domain.PermanentRejectionRecord
		category string
	)
	if err := row.Scan(
		&rec.ID, &rec.ApplicationID, &rec.ApplicantID, &rec.JobCategoryID, &rec.TriggerArtifactTypeID,
		&category, &rec.TotalDocumentAttempts, &rec.TotalPaymentAttempts, &rec.RejectedBy, &rec.RejectedAt,
	); err != nil {
		return nil, err
	}
	rec.TriggerCategory = domain.Category(category)
	return &rec, nil
}

// Package legacyledger implements the legacy document rejection history.
// Rows share ids with review_ledger entries and are written in the same
// transaction. Only documents are stored here.
package legacyledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Repo provides legacy rejection history persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new legacy rejection history repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO document_rejection_history (id, application_id, document_type_id, attempt_number,
                                        rejection_category, rejection_reason, rejected_by, rejected_at, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const countAttemptsSQL = `
SELECT count(*) FROM document_rejection_history
WHERE application_id = $1 AND document_type_id = $2`

const countByApplicationSQL = `
SELECT count(*) FROM document_rejection_history WHERE application_id = $1`

const markReplacedSQL = `
UPDATE document_rejection_history
SET was_replaced = true, status = 'resubmitted', replacement_upload_id = $2, replaced_at = $3
WHERE id = $1`

const setStatusSQL = `
UPDATE document_rejection_history SET status = $2 WHERE id = $1`

const deleteByApplicationSQL = `
DELETE FROM document_rejection_history WHERE application_id = $1`

// Supports reports whether entries of kind are mirrored here.
func (r *Repo) Supports(kind domain.ArtifactKind) bool {
	return kind == domain.ArtifactKindDocument
}

// Append writes the legacy row of a ledger entry.
func (r *Repo) Append(ctx context.Context, e domain.LedgerEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL,
		e.ID, e.ApplicationID, e.ArtifactTypeID, e.AttemptNumber,
		string(e.Category), e.Reason, e.IssuedBy, e.IssuedAt, string(e.Status),
	)
	if err != nil {
		return postgres.MapError(err, "document_rejection_history", e.ID)
	}
	return nil
}

// CountAttempts returns the number of legacy rows for one document type.
func (r *Repo) CountAttempts(ctx context.Context, applicationID uuid.UUID, _ domain.ArtifactKind, typeID string) (int, error) {
	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, countAttemptsSQL, applicationID, typeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count document_rejection_history: %w", err)
	}
	return n, nil
}

// CountByApplication returns the number of legacy rows for an application.
func (r *Repo) CountByApplication(ctx context.Context, applicationID uuid.UUID, _ domain.ArtifactKind) (int, error) {
	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, countByApplicationSQL, applicationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count document_rejection_history by application: %w", err)
	}
	return n, nil
}

// MarkReplaced mirrors a replacement. Entries recorded before the dual
// write have no legacy row; that is not an error.
func (r *Repo) MarkReplaced(ctx context.Context, id, replacementID uuid.UUID, at time.Time) error {
	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, markReplacedSQL, id, replacementID, at); err != nil {
		return postgres.MapError(err, "document_rejection_history", id)
	}
	return nil
}

// SetStatus mirrors a status change of a ledger entry.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status domain.LedgerStatus) error {
	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, setStatusSQL, id, string(status)); err != nil {
		return postgres.MapError(err, "document_rejection_history", id)
	}
	return nil
}

// DeleteByApplication removes the legacy history of an application.
func (r *Repo) DeleteByApplication(ctx context.Context, applicationID uuid.UUID, _ domain.ArtifactKind) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, deleteByApplicationSQL, applicationID)
	if err != nil {
		return 0, postgres.MapError(err, "document_rejection_history", applicationID)
	}
	return int(tag.RowsAffected()), nil
}

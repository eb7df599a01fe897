// Package ledger implements the review ledger repository using PostgreSQL.
// It stores rejection and referral entries for documents and payments.
package ledger

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

// Repo provides ledger persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new ledger repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

var columns = []string{
	"id", "application_id", "artifact_kind", "artifact_type_id", "attempt_number",
	"issue_type", "category", "reason", "specific_issues", "doctor_name", "clinic_address",
	"issued_by", "issued_at", "status", "was_replaced", "replacement_artifact_id", "replaced_at",
	"resolved_by", "resolved_at", "resolution_notes",
}

const insertSQL = `
INSERT INTO review_ledger (id, application_id, artifact_kind, artifact_type_id, attempt_number,
                           issue_type, category, reason, specific_issues, doctor_name, clinic_address,
                           issued_by, issued_at, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const countAttemptsSQL = `
SELECT count(*) FROM review_ledger
WHERE application_id = $1 AND artifact_kind = $2 AND artifact_type_id = $3`

const countByApplicationSQL = `
SELECT count(*) FROM review_ledger
WHERE application_id = $1 AND artifact_kind = $2`

const markReplacedSQL = `
UPDATE review_ledger
SET was_replaced = true, status = 'resubmitted', replacement_artifact_id = $2, replaced_at = $3
WHERE id = $1 AND NOT was_replaced`

const resolveSQL = `
UPDATE review_ledger
SET status = $2, resolved_by = $3, resolved_at = $4, resolution_notes = $5
WHERE id = $1 AND status IN ('pending', 'resubmitted')`

const deleteByApplicationSQL = `
DELETE FROM review_ledger WHERE application_id = $1 AND artifact_kind = $2`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a ledger entry. A duplicate attempt number or a second
// outstanding entry is returned as domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, e domain.LedgerEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	issues := e.SpecificIssues
	if issues == nil {
		issues = []string{}
	}

	_, err := q.Exec(ctx, insertSQL,
		e.ID, e.ApplicationID, string(e.ArtifactKind), e.ArtifactTypeID, e.AttemptNumber,
		string(e.IssueType), string(e.Category), e.Reason, issues, e.DoctorName, e.ClinicAddress,
		e.IssuedBy, e.IssuedAt, string(e.Status),
	)
	if err != nil {
		return postgres.MapError(err, "review_ledger", e.ID)
	}
	return nil
}

// MarkReplaced flags an entry as superseded by a resubmission.
// Returns domain.ErrConflict if it was already replaced.
func (r *Repo) MarkReplaced(ctx context.Context, id, replacementID uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, markReplacedSQL, id, replacementID, at)
	if err != nil {
		return postgres.MapError(err, "review_ledger", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review_ledger %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// Resolve closes an open entry with a terminal status.
// Returns domain.ErrConflict if the entry is already terminal.
func (r *Repo) Resolve(ctx context.Context, id uuid.UUID, res domain.LedgerResolution) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, resolveSQL, id, string(res.Status), res.ResolvedBy, res.ResolvedAt, res.Notes)
	if err != nil {
		return postgres.MapError(err, "review_ledger", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review_ledger %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// DeleteByApplication removes every entry of one artifact kind for an application.
func (r *Repo) DeleteByApplication(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteByApplicationSQL, applicationID, string(kind))
	if err != nil {
		return 0, postgres.MapError(err, "review_ledger", applicationID)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// CountAttempts returns how many entries exist for one artifact type.
func (r *Repo) CountAttempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, countAttemptsSQL, applicationID, string(kind), typeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count review_ledger attempts: %w", err)
	}
	return n, nil
}

// CountByApplication returns how many entries of one kind an application has.
func (r *Repo) CountByApplication(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, countByApplicationSQL, applicationID, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count review_ledger by application: %w", err)
	}
	return n, nil
}

// GetByID returns a ledger entry by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	return r.queryOne(ctx, postgres.Builder().
		Select(columns...).
		From("review_ledger").
		Where(squirrel.Eq{"id": id}), id)
}

// GetOutstanding returns the open entry of an artifact type.
// Returns domain.ErrNotFound if there is none.
func (r *Repo) GetOutstanding(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (*domain.LedgerEntry, error) {
	return r.queryOne(ctx, postgres.Builder().
		Select(columns...).
		From("review_ledger").
		Where(squirrel.Eq{
			"application_id":   applicationID,
			"artifact_kind":    string(kind),
			"artifact_type_id": typeID,
			"status":           string(domain.LedgerPending),
			"was_replaced":     false,
		}), applicationID)
}

// ListByArtifactType returns the history of one artifact type, newest first.
func (r *Repo) ListByArtifactType(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) ([]domain.LedgerEntry, error) {
	sql, args, err := postgres.Builder().
		Select(columns...).
		From("review_ledger").
		Where(squirrel.Eq{
			"application_id":   applicationID,
			"artifact_kind":    string(kind),
			"artifact_type_id": typeID,
		}).
		OrderBy("attempt_number DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review_ledger list: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list review_ledger: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review_ledger: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review_ledger: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func (r *Repo) queryOne(ctx context.Context, b squirrel.SelectBuilder, id uuid.UUID) (*domain.LedgerEntry, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review_ledger query: %w", err)
	}

	e, err := scanEntry(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "review_ledger", id)
	}
	return e, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		e             domain.LedgerEntry
		kind          string
		issueType     string
		category      string
		status        string
		doctorName    pgtype.Text
		clinicAddress pgtype.Text
		replacementID pgtype.UUID
		replacedAt    pgtype.Timestamptz
		resolvedBy    pgtype.UUID
		resolvedAt    pgtype.Timestamptz
		notes         pgtype.Text
	)

	if err := row.Scan(
		&e.ID, &e.ApplicationID, &kind, &e.ArtifactTypeID, &e.AttemptNumber,
		&issueType, &category, &e.Reason, &e.SpecificIssues, &doctorName, &clinicAddress,
		&e.IssuedBy, &e.IssuedAt, &status, &e.WasReplaced, &replacementID, &replacedAt,
		&resolvedBy, &resolvedAt, &notes,
	); err != nil {
		return nil, err
	}

	e.ArtifactKind = domain.ArtifactKind(kind)
	e.IssueType = domain.IssueType(issueType)
	e.Category = domain.Category(category)
	e.Status = domain.LedgerStatus(status)
	e.DoctorName = textPtr(doctorName)
	e.ClinicAddress = textPtr(clinicAddress)
	e.ResolutionNotes = textPtr(notes)
	e.ReplacementArtifactID = uuidPtr(replacementID)
	e.ResolvedBy = uuidPtr(resolvedBy)
	e.ReplacedAt = timePtr(replacedAt)
	e.ResolvedAt = timePtr(resolvedAt)

	return &e, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Package artifact implements the document and payment repositories.
// Both kinds share one implementation; queries are built with squirrel
// against the table of the configured kind.
package artifact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

type table struct {
	name string
	// typeColumn selects the artifact type id; payments have a single fixed type.
	typeColumn string
	// typeFilter is the column compared against a type id, empty when the
	// table holds one artifact per application.
	typeFilter string
}

var tables = map[domain.ArtifactKind]table{
	domain.ArtifactKindDocument: {
		name:       "document_uploads",
		typeColumn: "document_type_id",
		typeFilter: "document_type_id",
	},
	domain.ArtifactKindPayment: {
		name:       "payments",
		typeColumn: "'" + domain.PaymentTypeID + "'",
	},
}

// Repo provides artifact persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	kind domain.ArtifactKind
	t    table
}

// New creates a repository for artifacts of the given kind.
func New(pool *pgxpool.Pool, kind domain.ArtifactKind) *Repo {
	t, ok := tables[kind]
	if !ok {
		panic(fmt.Sprintf("artifact: unknown kind %q", kind))
	}
	return &Repo{pool: pool, kind: kind, t: t}
}

func (r *Repo) entity() string { return r.t.name }

func (r *Repo) columns() []string {
	return []string{
		"id", "application_id", r.t.typeColumn, "file_ref", "file_size", "content_type",
		"status", "admin_remarks", "reviewed_by", "reviewed_at", "uploaded_at", "updated_at",
	}
}

func (r *Repo) selectBuilder() squirrel.SelectBuilder {
	return postgres.Builder().Select(r.columns()...).From(r.t.name)
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an artifact by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	return r.queryOne(ctx, r.selectBuilder().Where(squirrel.Eq{"id": id}), id)
}

// GetByIDForUpdate returns an artifact and locks its row.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	return r.queryOne(ctx, r.selectBuilder().Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

// GetByTypeForUpdate returns the artifact of an application for the given
// type id and locks its row.
func (r *Repo) GetByTypeForUpdate(ctx context.Context, applicationID uuid.UUID, typeID string) (*domain.Artifact, error) {
	where := squirrel.Eq{"application_id": applicationID}
	if r.t.typeFilter != "" {
		where[r.t.typeFilter] = typeID
	}
	return r.queryOne(ctx, r.selectBuilder().Where(where).Suffix("FOR UPDATE"), applicationID)
}

// ListByApplication returns every artifact of an application ordered by upload time.
func (r *Repo) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Artifact, error) {
	sql, args, err := r.selectBuilder().
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("uploaded_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s list: %w", r.entity(), err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entity(), err)
	}
	defer rows.Close()

	var out []domain.Artifact
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.entity(), err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.entity(), err)
	}

	return out, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a newly uploaded artifact in Pending state.
func (r *Repo) Create(ctx context.Context, a domain.Artifact) (*domain.Artifact, error) {
	now := time.Now().UTC()
	if a.UploadedAt.IsZero() {
		a.UploadedAt = now
	}
	if a.Status == "" {
		a.Status = domain.ReviewPending
	}

	cols := []string{"id", "application_id", "file_ref", "file_size", "content_type", "status", "uploaded_at", "updated_at"}
	vals := []any{a.ID, a.ApplicationID, a.FileRef, a.FileSize, a.ContentType, string(a.Status), a.UploadedAt, a.UploadedAt}
	if r.t.typeFilter != "" {
		cols = append(cols, r.t.typeFilter)
		vals = append(vals, a.TypeID)
	}

	return r.queryOne(ctx, postgres.Builder().
		Insert(r.t.name).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING "+strings.Join(r.columns(), ", ")), a.ID)
}

// UpdateReview writes the review state of an artifact.
func (r *Repo) UpdateReview(ctx context.Context, id uuid.UUID, rv domain.ArtifactReview) (*domain.Artifact, error) {
	return r.queryOne(ctx, postgres.Builder().
		Update(r.t.name).
		Set("status", string(rv.Status)).
		Set("admin_remarks", rv.Remarks).
		Set("reviewed_by", rv.ReviewedBy).
		Set("reviewed_at", rv.ReviewedAt).
		Set("updated_at", rv.ReviewedAt).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING "+strings.Join(r.columns(), ", ")), id)
}

// Replace swaps the stored file of an artifact in place and returns it to Pending.
func (r *Repo) Replace(ctx context.Context, id uuid.UUID, file domain.FileMeta, at time.Time) (*domain.Artifact, error) {
	return r.queryOne(ctx, postgres.Builder().
		Update(r.t.name).
		Set("file_ref", file.Ref).
		Set("file_size", file.Size).
		Set("content_type", file.ContentType).
		Set("status", string(domain.ReviewPending)).
		Set("admin_remarks", nil).
		Set("reviewed_by", nil).
		Set("reviewed_at", nil).
		Set("uploaded_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING "+strings.Join(r.columns(), ", ")), id)
}

// ResetByApplication returns every artifact of an application to Pending.
func (r *Repo) ResetByApplication(ctx context.Context, applicationID uuid.UUID, at time.Time) (int, error) {
	sql, args, err := postgres.Builder().
		Update(r.t.name).
		Set("status", string(domain.ReviewPending)).
		Set("admin_remarks", nil).
		Set("reviewed_by", nil).
		Set("reviewed_at", nil).
		Set("updated_at", at).
		Where(squirrel.Eq{"application_id": applicationID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s reset: %w", r.entity(), err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, r.entity(), applicationID)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type sqlizer interface {
	ToSql() (string, []any, error)
}

func (r *Repo) queryOne(ctx context.Context, b sqlizer, id uuid.UUID) (*domain.Artifact, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", r.entity(), err)
	}

	a, err := r.scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, r.entity(), id)
	}
	return a, nil
}

func (r *Repo) scan(row pgx.Row) (*domain.Artifact, error) {
	var (
		a          domain.Artifact
		status     string
		remarks    pgtype.Text
		reviewedBy pgtype.UUID
		reviewedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&a.ID, &a.ApplicationID, &a.TypeID, &a.FileRef, &a.FileSize, &a.ContentType,
		&status, &remarks, &reviewedBy, &reviewedAt, &a.UploadedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Kind = r.kind
	a.Status = domain.ReviewStatus(status)
	if remarks.Valid {
		s := remarks.String
		a.AdminRemarks = &s
	}
	if reviewedBy.Valid {
		id := uuid.UUID(reviewedBy.Bytes)
		a.ReviewedBy = &id
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}

	return &a, nil
}

// Package category implements job category policy lookup using PostgreSQL.
package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidwall/gjson"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Repo provides category policy lookup backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new category repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `SELECT name, policy FROM job_categories WHERE id = $1`

const listAdminsSQL = `
SELECT admin_id FROM category_admins WHERE category_id = $1 ORDER BY admin_id`

// GetPolicy returns the review policy of a job category.
func (r *Repo) GetPolicy(ctx context.Context, jobCategoryID uuid.UUID) (domain.CategoryPolicy, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		name string
		raw  []byte
	)
	if err := q.QueryRow(ctx, getSQL, jobCategoryID).Scan(&name, &raw); err != nil {
		return domain.CategoryPolicy{}, postgres.MapError(err, "job_category", jobCategoryID)
	}

	requires, err := parsePolicy(raw)
	if err != nil {
		return domain.CategoryPolicy{}, fmt.Errorf("job_category %s: %w", jobCategoryID, err)
	}

	rows, err := q.Query(ctx, listAdminsSQL, jobCategoryID)
	if err != nil {
		return domain.CategoryPolicy{}, fmt.Errorf("list category_admins: %w", err)
	}
	defer rows.Close()

	var admins []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return domain.CategoryPolicy{}, fmt.Errorf("scan category_admin: %w", err)
		}
		admins = append(admins, id)
	}
	if err := rows.Err(); err != nil {
		return domain.CategoryPolicy{}, fmt.Errorf("iterate category_admins: %w", err)
	}

	return domain.CategoryPolicy{
		JobCategoryID:       jobCategoryID,
		Name:                name,
		RequiresOrientation: requires,
		AdminIDs:            admins,
	}, nil
}

// parsePolicy reads requireOrientation from the policy document.
// A missing key means false; any value other than a JSON boolean is invalid.
func parsePolicy(raw []byte) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	if !gjson.ValidBytes(raw) {
		return false, domain.NewValidationError("policy", "malformed JSON")
	}

	v := gjson.GetBytes(raw, "requireOrientation")
	switch {
	case !v.Exists():
		return false, nil
	case v.Type == gjson.True:
		return true, nil
	case v.Type == gjson.False:
		return false, nil
	default:
		return false, domain.NewValidationError("policy.requireOrientation",
			fmt.Sprintf("must be a boolean, got %s", v.Raw))
	}
}

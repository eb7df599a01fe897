package testhelper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCategory creates a job category with the given orientation policy and
// managing admins. Returns the resulting domain.CategoryPolicy.
func SeedCategory(t *testing.T, pool *pgxpool.Pool, requiresOrientation bool, admins ...uuid.UUID) domain.CategoryPolicy {
	t.Helper()
	ctx := context.Background()

	policy := domain.CategoryPolicy{
		JobCategoryID:       uuid.New(),
		Name:                "Category " + uniqueSuffix(),
		RequiresOrientation: requiresOrientation,
		AdminIDs:            admins,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO job_categories (id, name, policy) VALUES ($1, $2, $3)`,
		policy.JobCategoryID, policy.Name, fmt.Sprintf(`{"requireOrientation": %t}`, requiresOrientation),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCategory insert job_category: %v", err)
	}

	for _, adminID := range admins {
		_, err := pool.Exec(ctx,
			`INSERT INTO category_admins (category_id, admin_id) VALUES ($1, $2)`,
			policy.JobCategoryID, adminID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedCategory insert category_admin: %v", err)
		}
	}

	return policy
}

// SeedApplication creates an application in the given status for a fresh
// applicant. Returns a filled domain.Application.
func SeedApplication(t *testing.T, pool *pgxpool.Pool, categoryID uuid.UUID, status domain.ApplicationStatus) domain.Application {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	app := domain.Application{
		ID:            uuid.New(),
		ApplicantID:   uuid.New(),
		JobCategoryID: categoryID,
		Type:          domain.ApplicationTypeNew,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO applications (id, applicant_id, job_category_id, application_type, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		app.ID, app.ApplicantID, app.JobCategoryID, string(app.Type), string(app.Status), app.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication: %v", err)
	}

	return app
}

// SeedDocument creates a Pending document upload of the given type.
func SeedDocument(t *testing.T, pool *pgxpool.Pool, applicationID uuid.UUID, typeID string) domain.Artifact {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := domain.Artifact{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		Kind:          domain.ArtifactKindDocument,
		TypeID:        typeID,
		FileRef:       "uploads/" + applicationID.String() + "/" + typeID + "-" + uniqueSuffix() + ".pdf",
		FileSize:      1024,
		ContentType:   "application/pdf",
		Status:        domain.ReviewPending,
		UploadedAt:    now,
		UpdatedAt:     now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO document_uploads (id, application_id, document_type_id, file_ref, file_size, content_type, status, uploaded_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		doc.ID, doc.ApplicationID, doc.TypeID, doc.FileRef, doc.FileSize, doc.ContentType, string(doc.Status), doc.UploadedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDocument: %v", err)
	}

	return doc
}

// SeedPayment creates a Pending payment receipt.
func SeedPayment(t *testing.T, pool *pgxpool.Pool, applicationID uuid.UUID) domain.Artifact {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.Artifact{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		Kind:          domain.ArtifactKindPayment,
		TypeID:        domain.PaymentTypeID,
		FileRef:       "receipts/" + applicationID.String() + "-" + uniqueSuffix() + ".jpg",
		FileSize:      2048,
		ContentType:   "image/jpeg",
		Status:        domain.ReviewPending,
		UploadedAt:    now,
		UpdatedAt:     now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO payments (id, application_id, file_ref, file_size, content_type, status, uploaded_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		p.ID, p.ApplicationID, p.FileRef, p.FileSize, p.ContentType, string(p.Status), p.UploadedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPayment: %v", err)
	}

	return p
}

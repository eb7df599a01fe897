// Package finalize permanently rejects an application whose document
// attempts reached the cap. The rejection is written at most once and can
// not be undone.
package finalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type rejectionRepo interface {
	Create(ctx context.Context, rec domain.PermanentRejectionRecord) error
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.PermanentRejectionRecord, error)
}

type ledgerTotals interface {
	Totals(ctx context.Context, applicationID uuid.UUID) (documents, payments int, err error)
}

type artifactReviewer interface {
	UpdateReview(ctx context.Context, id uuid.UUID, rv domain.ArtifactReview) (*domain.Artifact, error)
}

type statusFreezer interface {
	Freeze(ctx context.Context, app *domain.Application, status domain.ApplicationStatus, remarks string, actorID *uuid.UUID) (*domain.Application, error)
}

type categoryRepo interface {
	GetPolicy(ctx context.Context, jobCategoryID uuid.UUID) (domain.CategoryPolicy, error)
}

type notificationRepo interface {
	CreateBatch(ctx context.Context, items []domain.Notification) error
}

type activityLogger interface {
	Log(ctx context.Context, rec domain.ActivityLog) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Trigger is the rejection that reached the attempt cap.
type Trigger struct {
	ArtifactID     uuid.UUID
	ArtifactTypeID string
	Category       domain.Category
	Attempt        int
}

// Service writes permanent rejections. Finalize must run inside the
// caller's transaction with the application row locked.
type Service struct {
	rejections    rejectionRepo
	ledger        ledgerTotals
	documents     artifactReviewer
	aggregator    statusFreezer
	categories    categoryRepo
	notifications notificationRepo
	activity      activityLogger
	now           func() time.Time
	log           *slog.Logger
}

// NewService creates a new finalizer.
func NewService(
	log *slog.Logger,
	rejections rejectionRepo,
	ledger ledgerTotals,
	documents artifactReviewer,
	aggregator statusFreezer,
	categories categoryRepo,
	notifications notificationRepo,
	activity activityLogger,
) *Service {
	return &Service{
		rejections:    rejections,
		ledger:        ledger,
		documents:     documents,
		aggregator:    aggregator,
		categories:    categories,
		notifications: notifications,
		activity:      activity,
		now:           func() time.Time { return time.Now().UTC() },
		log:           log.With("service", "finalize"),
	}
}

// Finalize rejects app permanently. When a record already exists it is
// returned and nothing else is written.
func (s *Service) Finalize(ctx context.Context, app *domain.Application, t Trigger) (*domain.PermanentRejectionRecord, *domain.Application, error) {
	existing, err := s.rejections.GetByApplication(ctx, app.ID)
	switch {
	case err == nil:
		return existing, app, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, nil, fmt.Errorf("get permanent rejection: %w", err)
	}

	documents, payments, err := s.ledger.Totals(ctx, app.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger totals: %w", err)
	}

	now := s.now()
	rec := domain.PermanentRejectionRecord{
		ID:                    uuid.New(),
		ApplicationID:         app.ID,
		ApplicantID:           app.ApplicantID,
		JobCategoryID:         app.JobCategoryID,
		TriggerArtifactTypeID: t.ArtifactTypeID,
		TriggerCategory:       t.Category,
		TotalDocumentAttempts: documents,
		TotalPaymentAttempts:  payments,
		RejectedBy:            domain.SystemActor,
		RejectedAt:            now,
	}
	if err := s.rejections.Create(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, getErr := s.rejections.GetByApplication(ctx, app.ID)
			if getErr != nil {
				return nil, nil, fmt.Errorf("get permanent rejection: %w", getErr)
			}
			return existing, app, nil
		}
		return nil, nil, fmt.Errorf("create permanent rejection: %w", err)
	}

	remarks := fmt.Sprintf("Automatically rejected: %s was rejected %d times.", t.ArtifactTypeID, t.Attempt)
	if _, err := s.documents.UpdateReview(ctx, t.ArtifactID, domain.ArtifactReview{
		Status:     domain.ReviewRejected,
		Remarks:    &remarks,
		ReviewedAt: now,
	}); err != nil {
		return nil, nil, fmt.Errorf("reject trigger document: %w", err)
	}

	updated, err := s.aggregator.Freeze(ctx, app, domain.StatusRejected, remarks, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("freeze application: %w", err)
	}

	policy, err := s.categories.GetPolicy(ctx, app.JobCategoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("get category policy: %w", err)
	}

	items := []domain.Notification{notify.PermanentRejection(updated, &rec)}
	items = append(items, notify.PermanentRejectionForAdmins(updated, &rec, policy.AdminIDs)...)
	if err := s.notifications.CreateBatch(ctx, items); err != nil {
		return nil, nil, fmt.Errorf("create notifications: %w", err)
	}

	if err := s.activity.Log(ctx, domain.ActivityLog{
		ApplicationID: app.ID,
		Action:        domain.ActivityPermanentRejection,
		Details: map[string]any{
			"trigger_artifact_id":      t.ArtifactID,
			"trigger_artifact_type_id": t.ArtifactTypeID,
			"trigger_category":         t.Category,
			"total_document_attempts":  documents,
			"total_payment_attempts":   payments,
			"rejected_by":              domain.SystemActor,
		},
	}); err != nil {
		return nil, nil, fmt.Errorf("log activity: %w", err)
	}

	s.log.InfoContext(ctx, "application permanently rejected",
		slog.String("application_id", app.ID.String()),
		slog.String("artifact_type_id", t.ArtifactTypeID),
		slog.Int("attempt", t.Attempt),
		slog.Int("document_attempts", documents),
		slog.Int("payment_attempts", payments),
	)

	return &rec, updated, nil
}

// Package aggregate owns every write of an application's status. Review
// services change artifacts and orientation records, then ask the
// aggregator to re-derive the status from them.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type applicationRepo interface {
	Update(ctx context.Context, id uuid.UUID, upd domain.ApplicationUpdate) (*domain.Application, error)
}

type artifactLister interface {
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Artifact, error)
}

type orientationRepo interface {
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error)
}

type categoryRepo interface {
	GetPolicy(ctx context.Context, jobCategoryID uuid.UUID) (domain.CategoryPolicy, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service derives and persists application statuses. All methods expect the
// application row to be locked by the caller's transaction.
type Service struct {
	apps        applicationRepo
	documents   artifactLister
	payments    artifactLister
	orientation orientationRepo
	categories  categoryRepo
	gracePeriod time.Duration
	now         func() time.Time
	log         *slog.Logger
}

// NewService creates a new aggregator.
func NewService(
	log *slog.Logger,
	apps applicationRepo,
	documents artifactLister,
	payments artifactLister,
	orientation orientationRepo,
	categories categoryRepo,
	gracePeriod time.Duration,
) *Service {
	return &Service{
		apps:        apps,
		documents:   documents,
		payments:    payments,
		orientation: orientation,
		categories:  categories,
		gracePeriod: gracePeriod,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log.With("service", "aggregate"),
	}
}

// Snapshot loads the sub-states of an application.
func (s *Service) Snapshot(ctx context.Context, app *domain.Application) (Snapshot, error) {
	policy, err := s.categories.GetPolicy(ctx, app.JobCategoryID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get category policy: %w", err)
	}

	docs, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list documents: %w", err)
	}

	payments, err := s.payments.ListByApplication(ctx, app.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list payments: %w", err)
	}

	snap := Snapshot{
		Documents:            docs,
		RequiresOrientation:  policy.RequiresOrientation,
		OrientationCompleted: app.OrientationCompleted,
	}
	if len(payments) > 0 {
		snap.Payment = &payments[0]
	}

	if policy.RequiresOrientation {
		rec, err := s.orientation.GetByApplication(ctx, app.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return Snapshot{}, fmt.Errorf("get orientation: %w", err)
		default:
			snap.Orientation = rec
		}
	}

	return snap, nil
}

// Recompute re-derives the status of an open application and writes it if
// it changed. Closed and locked applications are returned unchanged.
func (s *Service) Recompute(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error) {
	if app.Status.IsSticky() {
		return app, nil
	}
	return s.apply(ctx, app, actorID)
}

// Release re-derives the status of a locked application after an
// administrator resolved the lock.
func (s *Service) Release(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error) {
	if !app.Status.IsLocked() {
		return nil, domain.NewReviewError(domain.CodeNotLocked, "application %s is %q", app.ID, app.Status)
	}
	return s.apply(ctx, app, actorID)
}

// CompleteOrientation marks orientation as attended and re-derives the status.
func (s *Service) CompleteOrientation(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error) {
	done := true
	updated, err := s.apps.Update(ctx, app.ID, domain.ApplicationUpdate{
		OrientationCompleted: &done,
		LastUpdatedBy:        &actorID,
	})
	if err != nil {
		return nil, fmt.Errorf("mark orientation completed: %w", err)
	}
	return s.Recompute(ctx, updated, actorID)
}

// Freeze writes a status chosen by a decision rather than derived: a final
// approval or rejection, or the administrative review lock. actorID is nil
// for system decisions.
func (s *Service) Freeze(ctx context.Context, app *domain.Application, status domain.ApplicationStatus, remarks string, actorID *uuid.UUID) (*domain.Application, error) {
	upd := domain.ApplicationUpdate{
		Status:        &status,
		LastUpdatedBy: actorID,
	}
	if remarks != "" {
		upd.AdminRemarks = &remarks
	}

	updated, err := s.apps.Update(ctx, app.ID, upd)
	if err != nil {
		return nil, fmt.Errorf("freeze application: %w", err)
	}

	s.log.InfoContext(ctx, "application status frozen",
		slog.String("application_id", app.ID.String()),
		slog.String("old_status", string(app.Status)),
		slog.String("new_status", string(status)),
	)
	return updated, nil
}

func (s *Service) apply(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error) {
	snap, err := s.Snapshot(ctx, app)
	if err != nil {
		return nil, err
	}

	next := Derive(snap)
	if next == app.Status {
		return app, nil
	}

	upd := domain.ApplicationUpdate{Status: &next, LastUpdatedBy: &actorID}
	if next == domain.StatusPaymentRejected || (next.IsPaymentStage() && !app.Status.IsPaymentStage()) {
		deadline := s.now().Add(s.gracePeriod)
		upd.PaymentDeadline = &deadline
	}

	updated, err := s.apps.Update(ctx, app.ID, upd)
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	s.log.InfoContext(ctx, "application status changed",
		slog.String("application_id", app.ID.String()),
		slog.String("old_status", string(app.Status)),
		slog.String("new_status", string(next)),
	)
	return updated, nil
}

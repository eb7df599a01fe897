// Package orientation tracks orientation bookings and attendance. Check-out
// is the only attendance transition that re-derives the application status
// through the aggregator.
package orientation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type applicationRepo interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error)
}

type orientationRepo interface {
	GetByApplicationForUpdate(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error)
	Create(ctx context.Context, rec domain.OrientationRecord) (*domain.OrientationRecord, error)
	Update(ctx context.Context, rec domain.OrientationRecord) (*domain.OrientationRecord, error)
	ListBySession(ctx context.Context, key domain.SessionKey) ([]domain.OrientationRecord, error)
}

type aggregator interface {
	Recompute(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error)
	CompleteOrientation(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error)
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

type outcomeRecorder interface {
	Observe(operation string, err error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Deps groups the collaborators of the orientation service.
type Deps struct {
	Applications  applicationRepo
	Orientation   orientationRepo
	Aggregator    aggregator
	Categories    categoryRepo
	Notifications notificationRepo
	Activity      activityLogger
	Recorder      outcomeRecorder
	Tx            txManager
}

// Service implements orientation scheduling and attendance.
type Service struct {
	apps          applicationRepo
	records       orientationRepo
	aggregator    aggregator
	categories    categoryRepo
	notifications notificationRepo
	activity      activityLogger
	recorder      outcomeRecorder
	tx            txManager
	now           func() time.Time
	log           *slog.Logger
}

// NewService creates a new orientation service. Deps.Recorder may be nil.
func NewService(log *slog.Logger, deps Deps) *Service {
	return &Service{
		apps:          deps.Applications,
		records:       deps.Orientation,
		aggregator:    deps.Aggregator,
		categories:    deps.Categories,
		notifications: deps.Notifications,
		activity:      deps.Activity,
		recorder:      deps.Recorder,
		tx:            deps.Tx,
		now:           func() time.Time { return time.Now().UTC() },
		log:           log.With("service", "orientation"),
	}
}

func (s *Service) observe(operation string, err error) {
	if s.recorder != nil {
		s.recorder.Observe(operation, err)
	}
}

// lockApplication locks the application row and checks that actor may
// manage its orientation.
func (s *Service) lockApplication(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) (*domain.Application, domain.CategoryPolicy, error) {
	app, err := s.apps.GetByIDForUpdate(ctx, applicationID)
	if err != nil {
		return nil, domain.CategoryPolicy{}, fmt.Errorf("lock application: %w", err)
	}

	policy, err := s.categories.GetPolicy(ctx, app.JobCategoryID)
	if err != nil {
		return nil, domain.CategoryPolicy{}, fmt.Errorf("get category policy: %w", err)
	}
	if err := access.Check(actor, access.ActionManageOrientation, access.Resource{
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		Policy:        policy,
	}); err != nil {
		return nil, domain.CategoryPolicy{}, err
	}
	return app, policy, nil
}

func ensureNotClosed(app *domain.Application) error {
	if app.Status.IsClosed() {
		return domain.NewReviewError(domain.CodeApplicationClosed, "application %s is %q", app.ID, app.Status)
	}
	return nil
}

func (s *Service) record(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error) {
	rec, err := s.records.GetByApplicationForUpdate(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewReviewError(domain.CodeNotScheduled, "application %s has no orientation booking", applicationID)
		}
		return nil, fmt.Errorf("get orientation record: %w", err)
	}
	return rec, nil
}

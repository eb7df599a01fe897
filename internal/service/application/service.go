// Package application serves the application overview and the final
// approval or rejection.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type applicationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error)
}

type artifactLister interface {
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Artifact, error)
}

type orientationRepo interface {
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error)
}

type rejectionRepo interface {
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.PermanentRejectionRecord, error)
}

type aggregator interface {
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

type outcomeRecorder interface {
	Observe(operation string, err error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Deps groups the collaborators of the application service.
type Deps struct {
	Applications  applicationRepo
	Documents     artifactLister
	Payments      artifactLister
	Orientation   orientationRepo
	Rejections    rejectionRepo
	Aggregator    aggregator
	Categories    categoryRepo
	Notifications notificationRepo
	Activity      activityLogger
	Recorder      outcomeRecorder
	Tx            txManager
}

// Service implements the application overview and final decision.
type Service struct {
	apps          applicationRepo
	documents     artifactLister
	payments      artifactLister
	orientation   orientationRepo
	rejections    rejectionRepo
	aggregator    aggregator
	categories    categoryRepo
	notifications notificationRepo
	activity      activityLogger
	recorder      outcomeRecorder
	tx            txManager
	log           *slog.Logger
}

// NewService creates a new application service. Deps.Recorder may be nil.
func NewService(log *slog.Logger, deps Deps) *Service {
	return &Service{
		apps:          deps.Applications,
		documents:     deps.Documents,
		payments:      deps.Payments,
		orientation:   deps.Orientation,
		rejections:    deps.Rejections,
		aggregator:    deps.Aggregator,
		categories:    deps.Categories,
		notifications: deps.Notifications,
		activity:      deps.Activity,
		recorder:      deps.Recorder,
		tx:            deps.Tx,
		log:           log.With("service", "application"),
	}
}

func (s *Service) authorize(ctx context.Context, actor domain.Actor, action access.Action, app *domain.Application) error {
	policy, err := s.categories.GetPolicy(ctx, app.JobCategoryID)
	if err != nil {
		return fmt.Errorf("get category policy: %w", err)
	}
	return access.Check(actor, action, access.Resource{
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		Policy:        policy,
	})
}

// Get returns the application with its artifacts, orientation booking and
// permanent rejection record.
func (s *Service) Get(ctx context.Context, applicationID uuid.UUID) (*domain.ApplicationOverview, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if err := s.authorize(ctx, actor, access.ActionViewApplication, app); err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	payments, err := s.payments.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	out := &domain.ApplicationOverview{Application: app, Documents: docs}
	if len(payments) > 0 {
		out.Payment = &payments[0]
	}

	rec, err := s.orientation.GetByApplication(ctx, app.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("get orientation: %w", err)
	default:
		out.Orientation = rec
	}

	rej, err := s.rejections.GetByApplication(ctx, app.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("get rejection record: %w", err)
	default:
		out.Rejection = rej
	}

	return out, nil
}

// DecideInput holds the parameters for the final decision.
type DecideInput struct {
	ApplicationID uuid.UUID
	Decision      domain.Decision
	Remarks       string
}

// Validate checks all fields and collects all errors.
func (i *DecideInput) Validate() error {
	var errs []domain.FieldError

	if i.ApplicationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "application_id", Message: "required"})
	}
	if !i.Decision.IsValid() {
		errs = append(errs, domain.FieldError{Field: "decision", Message: "must be Approved or Rejected"})
	}
	if i.Decision == domain.DecisionRejected && strings.TrimSpace(i.Remarks) == "" {
		errs = append(errs, domain.FieldError{Field: "remarks", Message: "required when rejecting"})
	}
	if len(i.Remarks) > 2000 {
		errs = append(errs, domain.FieldError{Field: "remarks", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Decide approves or rejects an application that is Under Review. The
// decision is final.
func (s *Service) Decide(ctx context.Context, input DecideInput) (_ *domain.Application, err error) {
	defer func() {
		if s.recorder != nil {
			s.recorder.Observe("application.decide", err)
		}
	}()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var decided *domain.Application
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(ctx, input.ApplicationID)
		if err != nil {
			return fmt.Errorf("lock application: %w", err)
		}
		if err := s.authorize(ctx, actor, access.ActionDecideApplication, app); err != nil {
			return err
		}
		if app.Status != domain.StatusUnderReview {
			return domain.NewReviewError(domain.CodeNotUnderReview, "application %s is %q", app.ID, app.Status)
		}

		status := domain.StatusApproved
		if input.Decision == domain.DecisionRejected {
			status = domain.StatusRejected
		}
		decided, err = s.aggregator.Freeze(ctx, app, status, input.Remarks, &actor.ID)
		if err != nil {
			return err
		}

		if err := s.notifications.CreateBatch(ctx, []domain.Notification{
			notify.ApplicationDecided(decided, input.Decision, input.Remarks),
		}); err != nil {
			return fmt.Errorf("notify applicant: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityApplicationDecided,
			Details: map[string]any{
				"decision": input.Decision,
				"remarks":  input.Remarks,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "application decided",
		slog.String("application_id", decided.ID.String()),
		slog.String("decision", string(input.Decision)),
		slog.String("actor_id", actor.ID.String()),
	)
	return decided, nil
}

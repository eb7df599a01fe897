// Package payment implements the payment review state machine. Reaching the
// attempt cap locks the application for administrative review instead of
// rejecting it.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/ledger"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type applicationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error)
}

type paymentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Artifact, error)
	GetByTypeForUpdate(ctx context.Context, applicationID uuid.UUID, typeID string) (*domain.Artifact, error)
	UpdateReview(ctx context.Context, id uuid.UUID, rv domain.ArtifactReview) (*domain.Artifact, error)
	Replace(ctx context.Context, id uuid.UUID, file domain.FileMeta, at time.Time) (*domain.Artifact, error)
}

type ledgerService interface {
	Record(ctx context.Context, d ledger.Draft) (*domain.LedgerEntry, error)
	Attempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error)
	Outstanding(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (*domain.LedgerEntry, error)
	MarkReplaced(ctx context.Context, e *domain.LedgerEntry, replacementID uuid.UUID, at time.Time) error
	CheckReplaced(ctx context.Context, e *domain.LedgerEntry) error
	MarkTerminal(ctx context.Context, e *domain.LedgerEntry, res domain.LedgerResolution) error
	Reset(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error)
}

type aggregator interface {
	Recompute(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error)
	Release(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error)
	Freeze(ctx context.Context, app *domain.Application, status domain.ApplicationStatus, remarks string, actorID *uuid.UUID) (*domain.Application, error)
}

type categoryRepo interface {
	GetPolicy(ctx context.Context, jobCategoryID uuid.UUID) (domain.CategoryPolicy, error)
}

type blobStore interface {
	Stat(ctx context.Context, ref string) (domain.FileMeta, error)
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

// Limits is the payment attempt policy.
type Limits struct {
	MaxAttempts int
	AutoLock    bool
}

// Deps groups the collaborators of the payment service.
type Deps struct {
	Applications  applicationRepo
	Payments      paymentRepo
	Ledger        ledgerService
	Aggregator    aggregator
	Categories    categoryRepo
	Blobs         blobStore
	Notifications notificationRepo
	Activity      activityLogger
	Recorder      outcomeRecorder
	Tx            txManager
}

// Service implements payment review.
type Service struct {
	apps          applicationRepo
	payments      paymentRepo
	ledger        ledgerService
	aggregator    aggregator
	categories    categoryRepo
	blobs         blobStore
	notifications notificationRepo
	activity      activityLogger
	recorder      outcomeRecorder
	tx            txManager
	limits        Limits
	now           func() time.Time
	log           *slog.Logger
}

// NewService creates a new payment review service. Deps.Recorder may be nil.
func NewService(log *slog.Logger, deps Deps, limits Limits) *Service {
	return &Service{
		apps:          deps.Applications,
		payments:      deps.Payments,
		ledger:        deps.Ledger,
		aggregator:    deps.Aggregator,
		categories:    deps.Categories,
		blobs:         deps.Blobs,
		notifications: deps.Notifications,
		activity:      deps.Activity,
		recorder:      deps.Recorder,
		tx:            deps.Tx,
		limits:        limits,
		now:           func() time.Time { return time.Now().UTC() },
		log:           log.With("service", "payment"),
	}
}

func (s *Service) observe(operation string, err error) {
	if s.recorder != nil {
		s.recorder.Observe(operation, err)
	}
}

func (s *Service) policy(ctx context.Context, app *domain.Application) (domain.CategoryPolicy, error) {
	policy, err := s.categories.GetPolicy(ctx, app.JobCategoryID)
	if err != nil {
		return domain.CategoryPolicy{}, fmt.Errorf("get category policy: %w", err)
	}
	return policy, nil
}

func (s *Service) authorize(ctx context.Context, actor domain.Actor, action access.Action, app *domain.Application) (domain.CategoryPolicy, error) {
	policy, err := s.policy(ctx, app)
	if err != nil {
		return domain.CategoryPolicy{}, err
	}
	return policy, access.Check(actor, action, access.Resource{
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		Policy:        policy,
	})
}

// lockForReview locks the application owning a payment, then the payment.
func (s *Service) lockForReview(ctx context.Context, actor domain.Actor, paymentID uuid.UUID) (*domain.Application, *domain.Artifact, domain.CategoryPolicy, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, domain.CategoryPolicy{}, paymentErr(err, paymentID)
	}

	app, err := s.apps.GetByIDForUpdate(ctx, p.ApplicationID)
	if err != nil {
		return nil, nil, domain.CategoryPolicy{}, fmt.Errorf("lock application: %w", err)
	}
	policy, err := s.authorize(ctx, actor, access.ActionReviewPayment, app)
	if err != nil {
		return nil, nil, domain.CategoryPolicy{}, err
	}
	if err := ensureOpen(app); err != nil {
		return nil, nil, domain.CategoryPolicy{}, err
	}

	p, err = s.payments.GetByIDForUpdate(ctx, paymentID)
	if err != nil {
		return nil, nil, domain.CategoryPolicy{}, paymentErr(err, paymentID)
	}
	return app, p, policy, nil
}

func ensureOpen(app *domain.Application) error {
	if app.Status.IsClosed() {
		return domain.NewReviewError(domain.CodeApplicationClosed, "application %s is %q", app.ID, app.Status)
	}
	if app.Status.IsLocked() {
		return domain.NewReviewError(domain.CodeApplicationLocked, "application %s is under administrative review", app.ID)
	}
	return nil
}

func paymentErr(err error, id uuid.UUID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewReviewError(domain.CodeArtifactNotFound, "payment %s not found", id)
	}
	return fmt.Errorf("get payment: %w", err)
}

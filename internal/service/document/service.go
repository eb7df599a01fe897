// Package document implements the document review state machine: reviewer
// rejections and referrals, verification, onsite clearance of referrals,
// applicant resubmission, batch completion and the administrative reset.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/finalize"
	"github.com/heartmarshall/healthcard-backend/internal/service/ledger"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type applicationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error)
}

type artifactRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Artifact, error)
	GetByTypeForUpdate(ctx context.Context, applicationID uuid.UUID, typeID string) (*domain.Artifact, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Artifact, error)
	UpdateReview(ctx context.Context, id uuid.UUID, rv domain.ArtifactReview) (*domain.Artifact, error)
	Replace(ctx context.Context, id uuid.UUID, file domain.FileMeta, at time.Time) (*domain.Artifact, error)
	ResetByApplication(ctx context.Context, applicationID uuid.UUID, at time.Time) (int, error)
}

type ledgerService interface {
	Record(ctx context.Context, d ledger.Draft) (*domain.LedgerEntry, error)
	Attempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error)
	Outstanding(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (*domain.LedgerEntry, error)
	MarkReplaced(ctx context.Context, e *domain.LedgerEntry, replacementID uuid.UUID, at time.Time) error
	CheckReplaced(ctx context.Context, e *domain.LedgerEntry) error
	MarkTerminal(ctx context.Context, e *domain.LedgerEntry, res domain.LedgerResolution) error
	History(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) ([]domain.LedgerEntry, error)
	Reset(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error)
}

type aggregator interface {
	Recompute(ctx context.Context, app *domain.Application, actorID uuid.UUID) (*domain.Application, error)
}

type finalizer interface {
	Finalize(ctx context.Context, app *domain.Application, t finalize.Trigger) (*domain.PermanentRejectionRecord, *domain.Application, error)
}

type categoryRepo interface {
	GetPolicy(ctx context.Context, jobCategoryID uuid.UUID) (domain.CategoryPolicy, error)
}

type rejectionRepo interface {
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.PermanentRejectionRecord, error)
}

type blobStore interface {
	Stat(ctx context.Context, ref string) (domain.FileMeta, error)
}

type batcher interface {
	Enqueue(ctx context.Context, applicationID uuid.UUID, artifactIDs []uuid.UUID, delay time.Duration) error
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

// Limits is the document attempt policy.
type Limits struct {
	MaxAttempts      int
	WarningThreshold int
	BatchWindow      time.Duration
}

// Deps groups the collaborators of the document service.
type Deps struct {
	Applications  applicationRepo
	Documents     artifactRepo
	Ledger        ledgerService
	Aggregator    aggregator
	Finalizer     finalizer
	Categories    categoryRepo
	Rejections    rejectionRepo
	Blobs         blobStore
	Batcher       batcher
	Notifications notificationRepo
	Activity      activityLogger
	Recorder      outcomeRecorder
	Tx            txManager
}

// Service implements document review.
type Service struct {
	apps          applicationRepo
	documents     artifactRepo
	ledger        ledgerService
	aggregator    aggregator
	finalizer     finalizer
	categories    categoryRepo
	rejections    rejectionRepo
	blobs         blobStore
	batcher       batcher
	notifications notificationRepo
	activity      activityLogger
	recorder      outcomeRecorder
	tx            txManager
	limits        Limits
	now           func() time.Time
	log           *slog.Logger
}

// NewService creates a new document review service. Deps.Recorder may be nil.
func NewService(log *slog.Logger, deps Deps, limits Limits) *Service {
	return &Service{
		apps:          deps.Applications,
		documents:     deps.Documents,
		ledger:        deps.Ledger,
		aggregator:    deps.Aggregator,
		finalizer:     deps.Finalizer,
		categories:    deps.Categories,
		rejections:    deps.Rejections,
		blobs:         deps.Blobs,
		batcher:       deps.Batcher,
		notifications: deps.Notifications,
		activity:      deps.Activity,
		recorder:      deps.Recorder,
		tx:            deps.Tx,
		limits:        limits,
		now:           func() time.Time { return time.Now().UTC() },
		log:           log.With("service", "document"),
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) observe(operation string, err error) {
	if s.recorder != nil {
		s.recorder.Observe(operation, err)
	}
}

// authorize checks actor against the category policy of app.
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

// lockForReview loads and locks the application owning a document, then the
// document itself.
func (s *Service) lockForReview(ctx context.Context, actor domain.Actor, action access.Action, artifactID uuid.UUID) (*domain.Application, *domain.Artifact, error) {
	doc, err := s.documents.GetByID(ctx, artifactID)
	if err != nil {
		return nil, nil, artifactErr(err, artifactID)
	}

	app, err := s.apps.GetByIDForUpdate(ctx, doc.ApplicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock application: %w", err)
	}
	if err := s.authorize(ctx, actor, action, app); err != nil {
		return nil, nil, err
	}
	if err := ensureOpen(app); err != nil {
		return nil, nil, err
	}

	doc, err = s.documents.GetByIDForUpdate(ctx, artifactID)
	if err != nil {
		return nil, nil, artifactErr(err, artifactID)
	}
	return app, doc, nil
}

// enqueueBatch schedules the coalesced rejection notice. Failures are
// logged and never fail the operation.
func (s *Service) enqueueBatch(ctx context.Context, applicationID uuid.UUID, artifactIDs []uuid.UUID, delay time.Duration) bool {
	if err := s.batcher.Enqueue(ctx, applicationID, artifactIDs, delay); err != nil {
		s.log.WarnContext(ctx, "enqueue rejection batch failed",
			slog.String("application_id", applicationID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
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

func artifactErr(err error, id uuid.UUID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewReviewError(domain.CodeArtifactNotFound, "document %s not found", id)
	}
	return fmt.Errorf("get document: %w", err)
}

func remaining(limit, attempts int) int {
	return max(0, limit-attempts)
}

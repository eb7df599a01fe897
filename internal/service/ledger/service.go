// Package ledger is the attempt ledger: the append-only history of
// rejections and referrals per artifact type and the source of truth for
// attempt counts.
//
// Every write goes through one path. The current review_ledger table is the
// primary store; replicas (the legacy document rejection history) receive the
// same writes in the same transaction. Attempt counts are the maximum over
// the primary and every replica that stores the kind.
package ledger

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

type entryRepo interface {
	Create(ctx context.Context, e domain.LedgerEntry) error
	MarkReplaced(ctx context.Context, id, replacementID uuid.UUID, at time.Time) error
	Resolve(ctx context.Context, id uuid.UUID, res domain.LedgerResolution) error
	DeleteByApplication(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error)
	CountAttempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error)
	CountByApplication(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error)
	GetOutstanding(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (*domain.LedgerEntry, error)
	ListByArtifactType(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) ([]domain.LedgerEntry, error)
}

// Replica is a secondary representation kept consistent with the primary store.
type Replica interface {
	Supports(kind domain.ArtifactKind) bool
	Append(ctx context.Context, e domain.LedgerEntry) error
	CountAttempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error)
	CountByApplication(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error)
	MarkReplaced(ctx context.Context, id, replacementID uuid.UUID, at time.Time) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.LedgerStatus) error
	DeleteByApplication(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the attempt ledger. All methods must run inside the
// caller's transaction.
type Service struct {
	primary  entryRepo
	replicas []Replica
	log      *slog.Logger
}

// NewService creates a ledger over a primary store and optional replicas.
func NewService(log *slog.Logger, primary entryRepo, replicas ...Replica) *Service {
	return &Service{
		primary:  primary,
		replicas: replicas,
		log:      log.With("service", "ledger"),
	}
}

// Draft is a ledger entry before the ledger assigns its id and attempt number.
type Draft struct {
	ApplicationID  uuid.UUID
	ArtifactKind   domain.ArtifactKind
	ArtifactTypeID string
	IssueType      domain.IssueType
	Category       domain.Category
	Reason         string
	SpecificIssues []string
	DoctorName     *string
	ClinicAddress  *string
	IssuedBy       uuid.UUID
	IssuedAt       time.Time
}

// Record appends a new pending entry with the next attempt number.
// Returns AlreadyReviewed if the artifact type already has an outstanding
// entry or a concurrent reviewer took the same attempt number.
func (s *Service) Record(ctx context.Context, d Draft) (*domain.LedgerEntry, error) {
	outstanding, err := s.Outstanding(ctx, d.ApplicationID, d.ArtifactKind, d.ArtifactTypeID)
	if err != nil {
		return nil, err
	}
	if outstanding != nil {
		return nil, domain.NewReviewError(domain.CodeAlreadyReviewed,
			"%s %q already has an outstanding review (attempt %d)", d.ArtifactKind, d.ArtifactTypeID, outstanding.AttemptNumber)
	}

	prior, err := s.Attempts(ctx, d.ApplicationID, d.ArtifactKind, d.ArtifactTypeID)
	if err != nil {
		return nil, err
	}

	e := domain.LedgerEntry{
		ID:             uuid.New(),
		ApplicationID:  d.ApplicationID,
		ArtifactKind:   d.ArtifactKind,
		ArtifactTypeID: d.ArtifactTypeID,
		AttemptNumber:  prior + 1,
		IssueType:      d.IssueType,
		Category:       d.Category,
		Reason:         d.Reason,
		SpecificIssues: d.SpecificIssues,
		DoctorName:     d.DoctorName,
		ClinicAddress:  d.ClinicAddress,
		IssuedBy:       d.IssuedBy,
		IssuedAt:       d.IssuedAt,
		Status:         domain.LedgerPending,
	}

	if err := s.primary.Create(ctx, e); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewReviewError(domain.CodeAlreadyReviewed,
				"attempt %d of %q was recorded concurrently", e.AttemptNumber, e.ArtifactTypeID)
		}
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	for _, r := range s.replicasFor(e.ArtifactKind) {
		if err := r.Append(ctx, e); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return nil, domain.NewReviewError(domain.CodeAlreadyReviewed,
					"attempt %d of %q was recorded concurrently", e.AttemptNumber, e.ArtifactTypeID)
			}
			return nil, fmt.Errorf("append ledger replica: %w", err)
		}
	}

	return &e, nil
}

// Attempts returns the number of recorded attempts for one artifact type:
// the maximum over the primary and every replica of the kind.
func (s *Service) Attempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error) {
	n, err := s.primary.CountAttempts(ctx, applicationID, kind, typeID)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	for _, r := range s.replicasFor(kind) {
		rn, err := r.CountAttempts(ctx, applicationID, kind, typeID)
		if err != nil {
			return 0, fmt.Errorf("count replica attempts: %w", err)
		}
		if rn != n {
			s.log.WarnContext(ctx, "ledger replica count diverges",
				slog.String("application_id", applicationID.String()),
				slog.String("artifact_type_id", typeID),
				slog.Int("primary", n),
				slog.Int("replica", rn),
			)
		}
		n = max(n, rn)
	}
	return n, nil
}

// Totals returns the number of recorded attempts per kind across an application.
func (s *Service) Totals(ctx context.Context, applicationID uuid.UUID) (documents, payments int, err error) {
	if documents, err = s.total(ctx, applicationID, domain.ArtifactKindDocument); err != nil {
		return 0, 0, err
	}
	if payments, err = s.total(ctx, applicationID, domain.ArtifactKindPayment); err != nil {
		return 0, 0, err
	}
	return documents, payments, nil
}

func (s *Service) total(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error) {
	n, err := s.primary.CountByApplication(ctx, applicationID, kind)
	if err != nil {
		return 0, fmt.Errorf("count %s ledger: %w", kind, err)
	}
	for _, r := range s.replicasFor(kind) {
		rn, err := r.CountByApplication(ctx, applicationID, kind)
		if err != nil {
			return 0, fmt.Errorf("count %s replica: %w", kind, err)
		}
		n = max(n, rn)
	}
	return n, nil
}

// Outstanding returns the open entry of an artifact type, or nil if there is none.
func (s *Service) Outstanding(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (*domain.LedgerEntry, error) {
	e, err := s.primary.GetOutstanding(ctx, applicationID, kind, typeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get outstanding entry: %w", err)
	}
	return e, nil
}

// MarkReplaced flags an entry as superseded by a resubmitted artifact.
// Returns AlreadyReplaced if it was replaced before.
func (s *Service) MarkReplaced(ctx context.Context, e *domain.LedgerEntry, replacementID uuid.UUID, at time.Time) error {
	if e.WasReplaced {
		return domain.NewReviewError(domain.CodeAlreadyReplaced, "attempt %d of %q was already replaced", e.AttemptNumber, e.ArtifactTypeID)
	}

	if err := s.primary.MarkReplaced(ctx, e.ID, replacementID, at); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.NewReviewError(domain.CodeAlreadyReplaced, "attempt %d of %q was already replaced", e.AttemptNumber, e.ArtifactTypeID)
		}
		return fmt.Errorf("mark entry replaced: %w", err)
	}
	for _, r := range s.replicasFor(e.ArtifactKind) {
		if err := r.MarkReplaced(ctx, e.ID, replacementID, at); err != nil {
			return fmt.Errorf("mark replica replaced: %w", err)
		}
	}

	e.WasReplaced = true
	e.Status = domain.LedgerResubmitted
	e.ReplacementArtifactID = &replacementID
	e.ReplacedAt = &at
	return nil
}

// CheckReplaced re-reads an entry observed earlier and returns AlreadyReplaced
// if a concurrent resubmission has replaced it since.
func (s *Service) CheckReplaced(ctx context.Context, e *domain.LedgerEntry) error {
	entries, err := s.History(ctx, e.ApplicationID, e.ArtifactKind, e.ArtifactTypeID)
	if err != nil {
		return err
	}
	for _, cur := range entries {
		if cur.ID == e.ID && cur.WasReplaced {
			return domain.NewReviewError(domain.CodeAlreadyReplaced, "attempt %d of %q was already replaced", e.AttemptNumber, e.ArtifactTypeID)
		}
	}
	return nil
}

// MarkTerminal closes an entry that can only be resolved in person.
// Returns NoOutstandingReferral if the entry is not open or is resubmittable.
func (s *Service) MarkTerminal(ctx context.Context, e *domain.LedgerEntry, res domain.LedgerResolution) error {
	if !res.Status.IsTerminal() {
		return fmt.Errorf("ledger status %q is not terminal: %w", res.Status, domain.ErrValidation)
	}
	if e.Status.IsTerminal() || !e.ResolvedInPerson() {
		return domain.NewReviewError(domain.CodeNoOutstandingReferral,
			"attempt %d of %q cannot be resolved by onsite verification", e.AttemptNumber, e.ArtifactTypeID)
	}

	if err := s.primary.Resolve(ctx, e.ID, res); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.NewReviewError(domain.CodeNoOutstandingReferral, "attempt %d of %q is already resolved", e.AttemptNumber, e.ArtifactTypeID)
		}
		return fmt.Errorf("resolve entry: %w", err)
	}
	for _, r := range s.replicasFor(e.ArtifactKind) {
		if err := r.SetStatus(ctx, e.ID, res.Status); err != nil {
			return fmt.Errorf("resolve replica: %w", err)
		}
	}

	e.Status = res.Status
	e.ResolvedBy = &res.ResolvedBy
	e.ResolvedAt = &res.ResolvedAt
	e.ResolutionNotes = res.Notes
	return nil
}

// History returns every entry of one artifact type, newest first.
func (s *Service) History(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) ([]domain.LedgerEntry, error) {
	entries, err := s.primary.ListByArtifactType(ctx, applicationID, kind, typeID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return entries, nil
}

// Reset deletes every entry of one kind for an application in all
// representations. It is the only operation that removes ledger entries.
func (s *Service) Reset(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error) {
	n, err := s.primary.DeleteByApplication(ctx, applicationID, kind)
	if err != nil {
		return 0, fmt.Errorf("delete ledger: %w", err)
	}
	for _, r := range s.replicasFor(kind) {
		if _, err := r.DeleteByApplication(ctx, applicationID, kind); err != nil {
			return 0, fmt.Errorf("delete ledger replica: %w", err)
		}
	}

	s.log.InfoContext(ctx, "ledger reset",
		slog.String("application_id", applicationID.String()),
		slog.String("kind", string(kind)),
		slog.Int("entries", n),
	)
	return n, nil
}

func (s *Service) replicasFor(kind domain.ArtifactKind) []Replica {
	var out []Replica
	for _, r := range s.replicas {
		if r.Supports(kind) {
			out = append(out, r)
		}
	}
	return out
}

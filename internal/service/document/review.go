package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/finalize"
	"github.com/heartmarshall/healthcard-backend/internal/service/ledger"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// Reject records a resubmittable document issue.
func (s *Service) Reject(ctx context.Context, input RejectInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("document.reject", err) }()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.review(ctx, ReferInput{
		ArtifactID:     input.ArtifactID,
		IssueType:      domain.IssueDocument,
		Category:       input.Category,
		Reason:         input.Reason,
		SpecificIssues: input.SpecificIssues,
	})
}

// Refer records a rejection of the given issue type. A medical referral
// leaves the document Referred and can only be cleared onsite.
func (s *Service) Refer(ctx context.Context, input ReferInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("document.refer", err) }()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.review(ctx, input)
}

func (s *Service) review(ctx context.Context, input ReferInput) (*domain.ReviewOutcome, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}

	target := domain.ReviewNeedsRevision
	action := domain.ActivityDocumentRejected
	if input.IssueType == domain.IssueMedicalReferral {
		target = domain.ReviewReferred
		action = domain.ActivityDocumentReferred
	}

	var out domain.ReviewOutcome
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, doc, err := s.lockForReview(ctx, actor, access.ActionReviewDocument, input.ArtifactID)
		if err != nil {
			return err
		}
		if doc.Status.IsRejected() {
			return domain.NewReviewError(domain.CodeAlreadyReviewed, "document %s is already %s", doc.ID, doc.Status)
		}

		now := s.now()
		entry, err := s.ledger.Record(ctx, ledger.Draft{
			ApplicationID:  app.ID,
			ArtifactKind:   domain.ArtifactKindDocument,
			ArtifactTypeID: doc.TypeID,
			IssueType:      input.IssueType,
			Category:       input.Category,
			Reason:         input.Reason,
			SpecificIssues: input.SpecificIssues,
			DoctorName:     input.DoctorName,
			ClinicAddress:  input.ClinicAddress,
			IssuedBy:       actor.ID,
			IssuedAt:       now,
		})
		if err != nil {
			return err
		}

		reason := input.Reason
		updated, err := s.documents.UpdateReview(ctx, doc.ID, domain.ArtifactReview{
			Status:     target,
			Remarks:    &reason,
			ReviewedBy: &actor.ID,
			ReviewedAt: now,
		})
		if err != nil {
			return fmt.Errorf("update document review: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        action,
			Details: map[string]any{
				"artifact_id":      doc.ID,
				"artifact_type_id": doc.TypeID,
				"ledger_entry_id":  entry.ID,
				"attempt_number":   entry.AttemptNumber,
				"issue_type":       input.IssueType,
				"category":         input.Category,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.ReviewOutcome{
			Artifact:          updated,
			Entry:             entry,
			AttemptNumber:     entry.AttemptNumber,
			AttemptsRemaining: remaining(s.limits.MaxAttempts, entry.AttemptNumber),
			Warning:           entry.AttemptNumber == s.limits.WarningThreshold,
		}

		if entry.AttemptNumber >= s.limits.MaxAttempts {
			rec, rejected, err := s.finalizer.Finalize(ctx, app, finalize.Trigger{
				ArtifactID:     doc.ID,
				ArtifactTypeID: doc.TypeID,
				Category:       input.Category,
				Attempt:        entry.AttemptNumber,
			})
			if err != nil {
				return fmt.Errorf("finalize: %w", err)
			}
			out.PermanentlyRejected = true
			out.Rejection = rec
			out.ApplicationStatus = rejected.Status
			out.Artifact.Status = domain.ReviewRejected
			out.Warning = false
			return nil
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}
		out.ApplicationStatus = app.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.PermanentlyRejected {
		s.enqueueBatch(ctx, out.Artifact.ApplicationID, []uuid.UUID{out.Artifact.ID}, s.limits.BatchWindow)
	}

	s.log.InfoContext(ctx, "document rejected",
		slog.String("application_id", out.Artifact.ApplicationID.String()),
		slog.String("artifact_id", out.Artifact.ID.String()),
		slog.String("issue_type", string(input.IssueType)),
		slog.Int("attempt", out.AttemptNumber),
		slog.String("status", string(out.ApplicationStatus)),
		slog.Bool("permanently_rejected", out.PermanentlyRejected),
	)

	return &out, nil
}

// Verify accepts a pending document.
func (s *Service) Verify(ctx context.Context, input VerifyInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("document.verify", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out domain.ReviewOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, doc, err := s.lockForReview(ctx, actor, access.ActionReviewDocument, input.ArtifactID)
		if err != nil {
			return err
		}
		if doc.Status != domain.ReviewPending {
			return domain.NewReviewError(domain.CodeNotPending, "document %s is %s", doc.ID, doc.Status)
		}

		updated, err := s.documents.UpdateReview(ctx, doc.ID, domain.ArtifactReview{
			Status:     domain.ReviewVerified,
			Remarks:    input.Remarks,
			ReviewedBy: &actor.ID,
			ReviewedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("update document review: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityDocumentVerified,
			Details: map[string]any{
				"artifact_id":      doc.ID,
				"artifact_type_id": doc.TypeID,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		out = domain.ReviewOutcome{Artifact: updated, ApplicationStatus: app.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "document verified",
		slog.String("application_id", out.Artifact.ApplicationID.String()),
		slog.String("artifact_id", out.Artifact.ID.String()),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// ApproveAfterOnsiteVerification clears the outstanding medical referral of
// a document after the applicant was checked in person, and verifies it.
func (s *Service) ApproveAfterOnsiteVerification(ctx context.Context, input OnsiteInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("document.approve_onsite", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out domain.ReviewOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, doc, err := s.lockForReview(ctx, actor, access.ActionClearReferral, input.ArtifactID)
		if err != nil {
			return err
		}

		entry, err := s.ledger.Outstanding(ctx, app.ID, domain.ArtifactKindDocument, doc.TypeID)
		if err != nil {
			return fmt.Errorf("get outstanding entry: %w", err)
		}
		if entry == nil || entry.IssueType != domain.IssueMedicalReferral {
			return domain.NewReviewError(domain.CodeNoOutstandingReferral, "document %s has no outstanding referral", doc.ID)
		}

		now := s.now()
		if err := s.ledger.MarkTerminal(ctx, entry, domain.LedgerResolution{
			Status:     domain.LedgerCleared,
			ResolvedBy: actor.ID,
			ResolvedAt: now,
			Notes:      input.Notes,
		}); err != nil {
			return err
		}

		updated, err := s.documents.UpdateReview(ctx, doc.ID, domain.ArtifactReview{
			Status:     domain.ReviewVerified,
			Remarks:    input.Notes,
			ReviewedBy: &actor.ID,
			ReviewedAt: now,
		})
		if err != nil {
			return fmt.Errorf("update document review: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityReferralCleared,
			Details: map[string]any{
				"artifact_id":      doc.ID,
				"artifact_type_id": doc.TypeID,
				"ledger_entry_id":  entry.ID,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		if err := s.notifications.CreateBatch(ctx, []domain.Notification{notify.ReferralCleared(app, doc.TypeID)}); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		out = domain.ReviewOutcome{
			Artifact:          updated,
			Entry:             entry,
			ApplicationStatus: app.Status,
			AttemptNumber:     entry.AttemptNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "referral cleared",
		slog.String("application_id", out.Artifact.ApplicationID.String()),
		slog.String("artifact_id", out.Artifact.ID.String()),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// ReviewBatchComplete closes the review of every document of an
// application. Approved moves the application on; Rejected schedules one
// notice covering every rejected document.
func (s *Service) ReviewBatchComplete(ctx context.Context, input BatchInput) (_ *domain.BatchOutcome, err error) {
	defer func() { s.observe("document.batch_complete", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		out      domain.BatchOutcome
		rejected []uuid.UUID
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(ctx, input.ApplicationID)
		if err != nil {
			return fmt.Errorf("lock application: %w", err)
		}
		if err := s.authorize(ctx, actor, access.ActionReviewDocument, app); err != nil {
			return err
		}
		if err := ensureOpen(app); err != nil {
			return err
		}

		docs, err := s.documents.ListByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		pending := 0
		for _, d := range docs {
			switch {
			case d.Status == domain.ReviewPending:
				pending++
			case d.Status.IsRejected():
				rejected = append(rejected, d.ID)
			}
		}
		if pending > 0 {
			return domain.NewReviewError(domain.CodePendingArtifacts, "%d document(s) still pending", pending)
		}

		switch input.Decision {
		case domain.DecisionRejected:
			if len(rejected) == 0 {
				return domain.NewReviewError(domain.CodeNothingRejected, "no document of application %s is rejected", app.ID)
			}
		case domain.DecisionApproved:
			if len(rejected) > 0 {
				return domain.NewReviewError(domain.CodeUnresolvedArtifacts, "%d document(s) are still rejected", len(rejected))
			}
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		if input.Decision == domain.DecisionApproved {
			if err := s.notifications.CreateBatch(ctx, []domain.Notification{notify.DocumentsApproved(app)}); err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityBatchCompleted,
			Details: map[string]any{
				"decision":           input.Decision,
				"rejected_artifacts": len(rejected),
				"status":             app.Status,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.BatchOutcome{
			ApplicationStatus: app.Status,
			Decision:          input.Decision,
			RejectedArtifacts: len(rejected),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.Decision == domain.DecisionRejected {
		out.NotificationQueued = s.enqueueBatch(ctx, input.ApplicationID, rejected, 0)
	}

	s.log.InfoContext(ctx, "document batch completed",
		slog.String("application_id", input.ApplicationID.String()),
		slog.String("decision", string(input.Decision)),
		slog.Int("rejected", out.RejectedArtifacts),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

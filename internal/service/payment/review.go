package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/ledger"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// Reject records a payment issue. At the attempt cap the application is
// locked for administrative review when auto-lock is enabled, otherwise it
// stays in Payment Rejected.
func (s *Service) Reject(ctx context.Context, input RejectInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("payment.reject", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out domain.ReviewOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, p, policy, err := s.lockForReview(ctx, actor, input.PaymentID)
		if err != nil {
			return err
		}
		switch {
		case p.Status.IsRejected():
			return domain.NewReviewError(domain.CodeAlreadyReviewed, "payment %s is already %s", p.ID, p.Status)
		case p.Status != domain.ReviewPending:
			return domain.NewReviewError(domain.CodeNotPending, "payment %s is %s", p.ID, p.Status)
		}

		now := s.now()
		entry, err := s.ledger.Record(ctx, ledger.Draft{
			ApplicationID:  app.ID,
			ArtifactKind:   domain.ArtifactKindPayment,
			ArtifactTypeID: domain.PaymentTypeID,
			IssueType:      domain.IssuePayment,
			Category:       input.Category,
			Reason:         input.Reason,
			IssuedBy:       actor.ID,
			IssuedAt:       now,
		})
		if err != nil {
			return err
		}

		reason := input.Reason
		updated, err := s.payments.UpdateReview(ctx, p.ID, domain.ArtifactReview{
			Status:     domain.ReviewFailed,
			Remarks:    &reason,
			ReviewedBy: &actor.ID,
			ReviewedAt: now,
		})
		if err != nil {
			return fmt.Errorf("update payment review: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityPaymentRejected,
			Details: map[string]any{
				"artifact_id":     p.ID,
				"ledger_entry_id": entry.ID,
				"attempt_number":  entry.AttemptNumber,
				"category":        input.Category,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.ReviewOutcome{
			Artifact:          updated,
			Entry:             entry,
			AttemptNumber:     entry.AttemptNumber,
			AttemptsRemaining: max(0, s.limits.MaxAttempts-entry.AttemptNumber),
		}

		if entry.AttemptNumber >= s.limits.MaxAttempts && s.limits.AutoLock {
			locked, err := s.lock(ctx, app, policy, actor, entry)
			if err != nil {
				return err
			}
			out.ApplicationStatus = locked.Status
			out.Locked = true
			return nil
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}
		out.ApplicationStatus = app.Status

		if err := s.notifications.CreateBatch(ctx, []domain.Notification{
			notify.PaymentRejected(app, input.Reason, out.AttemptsRemaining),
		}); err != nil {
			return fmt.Errorf("notify applicant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "payment rejected",
		slog.String("application_id", out.Artifact.ApplicationID.String()),
		slog.String("payment_id", out.Artifact.ID.String()),
		slog.Int("attempt", out.AttemptNumber),
		slog.String("status", string(out.ApplicationStatus)),
		slog.Bool("locked", out.Locked),
	)
	return &out, nil
}

func (s *Service) lock(ctx context.Context, app *domain.Application, policy domain.CategoryPolicy, actor domain.Actor, entry *domain.LedgerEntry) (*domain.Application, error) {
	remarks := fmt.Sprintf("Payment rejected %d times; awaiting administrative review.", entry.AttemptNumber)
	locked, err := s.aggregator.Freeze(ctx, app, domain.StatusUnderAdministrativeReview, remarks, &actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.notifications.CreateBatch(ctx, notify.AdministrativeReview(locked, policy.AdminIDs)); err != nil {
		return nil, fmt.Errorf("notify administrative review: %w", err)
	}

	if err := s.activity.Log(ctx, domain.ActivityLog{
		ActorID:       &actor.ID,
		ApplicationID: app.ID,
		Action:        domain.ActivityApplicationLocked,
		Details: map[string]any{
			"ledger_entry_id": entry.ID,
			"attempt_number":  entry.AttemptNumber,
			"old_status":      app.Status,
		},
	}); err != nil {
		return nil, fmt.Errorf("log activity: %w", err)
	}
	return locked, nil
}

// Approve confirms a pending payment.
func (s *Service) Approve(ctx context.Context, input ApproveInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("payment.approve", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out domain.ReviewOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, p, _, err := s.lockForReview(ctx, actor, input.PaymentID)
		if err != nil {
			return err
		}
		if p.Status != domain.ReviewPending {
			return domain.NewReviewError(domain.CodeNotPending, "payment %s is %s", p.ID, p.Status)
		}

		updated, err := s.payments.UpdateReview(ctx, p.ID, domain.ArtifactReview{
			Status:     domain.ReviewComplete,
			Remarks:    input.Remarks,
			ReviewedBy: &actor.ID,
			ReviewedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("update payment review: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityPaymentApproved,
			Details:       map[string]any{"artifact_id": p.ID},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		if err := s.notifications.CreateBatch(ctx, []domain.Notification{notify.PaymentApproved(app)}); err != nil {
			return fmt.Errorf("notify applicant: %w", err)
		}

		out = domain.ReviewOutcome{Artifact: updated, ApplicationStatus: app.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "payment approved",
		slog.String("application_id", out.Artifact.ApplicationID.String()),
		slog.String("payment_id", out.Artifact.ID.String()),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

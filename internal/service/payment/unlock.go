package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// Unlock resolves an administrative review. approve_payment accepts the
// last receipt in person; reset_attempts clears the payment history and
// puts the receipt back into review with a fresh deadline. Without auto-lock
// it also resolves a Payment Rejected application whose attempts are spent.
func (s *Service) Unlock(ctx context.Context, input UnlockInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("payment.unlock", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		out     domain.ReviewOutcome
		cleared int
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(ctx, input.ApplicationID)
		if err != nil {
			return fmt.Errorf("lock application: %w", err)
		}
		if _, err := s.authorize(ctx, actor, access.ActionUnlockApplication, app); err != nil {
			return err
		}
		locked := app.Status.IsLocked()
		if !locked {
			stalled, err := s.stalledAtCap(ctx, app)
			if err != nil {
				return err
			}
			if !stalled {
				return domain.NewReviewError(domain.CodeNotLocked, "application %s is %q", app.ID, app.Status)
			}
		}

		p, err := s.payments.GetByTypeForUpdate(ctx, app.ID, domain.PaymentTypeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewReviewError(domain.CodeArtifactNotFound, "no payment on application %s", app.ID)
			}
			return fmt.Errorf("lock payment: %w", err)
		}

		now := s.now()
		remarks := input.Remarks
		review := domain.ArtifactReview{Remarks: &remarks, ReviewedBy: &actor.ID, ReviewedAt: now}

		switch input.Resolution {
		case domain.UnlockApprovePayment:
			entry, err := s.ledger.Outstanding(ctx, app.ID, domain.ArtifactKindPayment, domain.PaymentTypeID)
			if err != nil {
				return fmt.Errorf("get outstanding entry: %w", err)
			}
			if entry != nil {
				if err := s.ledger.MarkTerminal(ctx, entry, domain.LedgerResolution{
					Status:     domain.LedgerApproved,
					ResolvedBy: actor.ID,
					ResolvedAt: now,
					Notes:      &remarks,
				}); err != nil {
					return err
				}
			}
			review.Status = domain.ReviewComplete
		case domain.UnlockResetAttempts:
			cleared, err = s.ledger.Reset(ctx, app.ID, domain.ArtifactKindPayment)
			if err != nil {
				return fmt.Errorf("reset payment attempts: %w", err)
			}
			review.Status = domain.ReviewPending
		}

		updated, err := s.payments.UpdateReview(ctx, p.ID, review)
		if err != nil {
			return fmt.Errorf("update payment review: %w", err)
		}

		var released *domain.Application
		if locked {
			released, err = s.aggregator.Release(ctx, app, actor.ID)
		} else {
			released, err = s.aggregator.Recompute(ctx, app, actor.ID)
		}
		if err != nil {
			return err
		}

		if input.Resolution == domain.UnlockApprovePayment {
			if err := s.notifications.CreateBatch(ctx, []domain.Notification{notify.PaymentApproved(released)}); err != nil {
				return fmt.Errorf("notify applicant: %w", err)
			}
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityApplicationUnlocked,
			Details: map[string]any{
				"resolution":      input.Resolution,
				"remarks":         input.Remarks,
				"entries_cleared": cleared,
				"new_status":      released.Status,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.ReviewOutcome{Artifact: updated, ApplicationStatus: released.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "application unlocked",
		slog.String("application_id", input.ApplicationID.String()),
		slog.String("resolution", string(input.Resolution)),
		slog.Int("entries_cleared", cleared),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

// stalledAtCap reports whether a payment sits in Payment Rejected with no
// attempts left, which only happens when auto-lock is off.
func (s *Service) stalledAtCap(ctx context.Context, app *domain.Application) (bool, error) {
	if app.Status != domain.StatusPaymentRejected {
		return false, nil
	}
	attempts, err := s.ledger.Attempts(ctx, app.ID, domain.ArtifactKindPayment, domain.PaymentTypeID)
	if err != nil {
		return false, fmt.Errorf("count attempts: %w", err)
	}
	return attempts >= s.limits.MaxAttempts, nil
}

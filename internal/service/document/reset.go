package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// ResetVerification wipes the document ledger of an application in both
// representations and returns every document to Pending. It is refused once
// the application was permanently rejected.
func (s *Service) ResetVerification(ctx context.Context, applicationID uuid.UUID) (_ *domain.ResetOutcome, err error) {
	defer func() { s.observe("document.reset_verification", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}

	var out domain.ResetOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			return fmt.Errorf("lock application: %w", err)
		}
		if err := s.authorize(ctx, actor, access.ActionResetVerification, app); err != nil {
			return err
		}

		_, err = s.rejections.GetByApplication(ctx, app.ID)
		switch {
		case err == nil:
			return domain.NewReviewError(domain.CodeApplicationClosed, "application %s was permanently rejected", app.ID)
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("get permanent rejection: %w", err)
		}
		if err := ensureOpen(app); err != nil {
			return err
		}

		deleted, err := s.ledger.Reset(ctx, app.ID, domain.ArtifactKindDocument)
		if err != nil {
			return fmt.Errorf("reset ledger: %w", err)
		}
		reset, err := s.documents.ResetByApplication(ctx, app.ID, s.now())
		if err != nil {
			return fmt.Errorf("reset documents: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityVerificationReset,
			Details: map[string]any{
				"entries_deleted": deleted,
				"documents_reset": reset,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		out = domain.ResetOutcome{
			ApplicationStatus: app.Status,
			EntriesDeleted:    deleted,
			ArtifactsReset:    reset,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "document verification reset",
		slog.String("application_id", applicationID.String()),
		slog.Int("entries_deleted", out.EntriesDeleted),
		slog.Int("documents_reset", out.ArtifactsReset),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

// History returns the ledger of one document type, newest first.
func (s *Service) History(ctx context.Context, applicationID uuid.UUID, typeID string) ([]domain.LedgerEntry, error) {
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

	return s.ledger.History(ctx, applicationID, domain.ArtifactKindDocument, typeID)
}

package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/healthcard-backend/internal/access"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// Resubmit replaces a rejected document with a new upload. The file is
// looked up in storage before any state is touched.
func (s *Service) Resubmit(ctx context.Context, input ResubmitInput) (_ *domain.ReviewOutcome, err error) {
	defer func() { s.observe("document.resubmit", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(ctx, input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if err := s.authorize(ctx, actor, access.ActionResubmit, app); err != nil {
		return nil, err
	}
	seen, _, err := s.checkResubmittable(ctx, app, input.ArtifactTypeID)
	if err != nil {
		return nil, err
	}

	meta, err := s.blobs.Stat(ctx, input.FileRef)
	if err != nil {
		return nil, err
	}

	var out domain.ReviewOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(ctx, input.ApplicationID)
		if err != nil {
			return fmt.Errorf("lock application: %w", err)
		}
		entry, attempts, err := s.checkResubmittable(ctx, app, input.ArtifactTypeID)
		if errors.Is(err, domain.ErrNothingToResubmit) {
			// A concurrent resubmission replaced the entry while this one waited for the lock.
			if rerr := s.ledger.CheckReplaced(ctx, seen); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			return err
		}

		doc, err := s.documents.GetByTypeForUpdate(ctx, app.ID, input.ArtifactTypeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewReviewError(domain.CodeArtifactNotFound, "no %s document on application %s", input.ArtifactTypeID, app.ID)
			}
			return fmt.Errorf("lock document: %w", err)
		}

		now := s.now()
		updated, err := s.documents.Replace(ctx, doc.ID, meta, now)
		if err != nil {
			return fmt.Errorf("replace document: %w", err)
		}
		if err := s.ledger.MarkReplaced(ctx, entry, doc.ID, now); err != nil {
			return err
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityDocumentResubmitted,
			Details: map[string]any{
				"artifact_id":      doc.ID,
				"artifact_type_id": doc.TypeID,
				"ledger_entry_id":  entry.ID,
				"file_ref":         meta.Ref,
				"file_size":        meta.Size,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		out = domain.ReviewOutcome{
			Artifact:          updated,
			Entry:             entry,
			ApplicationStatus: app.Status,
			AttemptNumber:     attempts,
			AttemptsRemaining: remaining(s.limits.MaxAttempts, attempts),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "document resubmitted",
		slog.String("application_id", out.Artifact.ApplicationID.String()),
		slog.String("artifact_id", out.Artifact.ID.String()),
		slog.Int("attempt", out.AttemptNumber),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

// checkResubmittable applies the resubmission policy in order: attempt cap,
// an outstanding entry, its issue type, then the application state.
func (s *Service) checkResubmittable(ctx context.Context, app *domain.Application, typeID string) (*domain.LedgerEntry, int, error) {
	attempts, err := s.ledger.Attempts(ctx, app.ID, domain.ArtifactKindDocument, typeID)
	if err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}
	if attempts >= s.limits.MaxAttempts {
		return nil, 0, domain.NewReviewError(domain.CodeMaxAttemptsExceeded,
			"%s was rejected %d times; continue the process in person", typeID, attempts)
	}

	entry, err := s.ledger.Outstanding(ctx, app.ID, domain.ArtifactKindDocument, typeID)
	if err != nil {
		return nil, 0, fmt.Errorf("get outstanding entry: %w", err)
	}
	if entry == nil {
		return nil, 0, domain.NewReviewError(domain.CodeNothingToResubmit, "%s has no outstanding rejection", typeID)
	}
	if !entry.Resubmittable() {
		return nil, 0, domain.NewReviewError(domain.CodeNotResubmittable,
			"%s was referred for medical consultation and is cleared onsite", typeID)
	}

	if err := ensureOpen(app); err != nil {
		return nil, 0, err
	}
	return entry, attempts, nil
}

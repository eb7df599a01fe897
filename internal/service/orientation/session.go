package orientation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// FinalizeSession closes one (date, slot, venue) session. Completed records
// are counted; every other active record becomes Missed, its application
// falls back to For Orientation and the applicant is asked to rebook.
// Closed applications are skipped.
// The actor must manage orientation for every application in the session.
func (s *Service) FinalizeSession(ctx context.Context, input SessionInput) (_ *domain.SessionOutcome, err error) {
	defer func() { s.observe("orientation.finalize_session", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out domain.SessionOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		records, err := s.records.ListBySession(ctx, input.Session)
		if err != nil {
			return fmt.Errorf("list session: %w", err)
		}

		for _, listed := range records {
			app, _, err := s.lockApplication(ctx, actor, listed.ApplicationID)
			if err != nil {
				return err
			}
			if app.Status.IsClosed() {
				continue
			}
			rec, err := s.record(ctx, app.ID)
			if err != nil {
				return err
			}

			switch rec.Status {
			case domain.OrientationCompleted:
				out.Completed++
				continue
			case domain.OrientationMissed:
				continue
			}

			rec.Status = domain.OrientationMissed
			if _, err := s.records.Update(ctx, *rec); err != nil {
				return fmt.Errorf("update orientation record: %w", err)
			}

			app, err = s.aggregator.Recompute(ctx, app, actor.ID)
			if err != nil {
				return fmt.Errorf("recompute status: %w", err)
			}

			if err := s.notifications.CreateBatch(ctx, []domain.Notification{notify.OrientationMissed(app, rec)}); err != nil {
				return fmt.Errorf("notify applicant: %w", err)
			}

			if err := s.activity.Log(ctx, domain.ActivityLog{
				ActorID:       &actor.ID,
				ApplicationID: app.ID,
				Action:        domain.ActivityOrientationSessionEnd,
				Details: map[string]any{
					"record_id":    rec.ID,
					"checked_in":   rec.CheckInTime != nil,
					"session_date": rec.SessionDate.Format("2006-01-02"),
					"session_slot": rec.SessionSlot,
					"new_status":   app.Status,
				},
			}); err != nil {
				return fmt.Errorf("log activity: %w", err)
			}
			out.Missed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "orientation session finalized",
		slog.String("session_date", input.Session.Day().Format("2006-01-02")),
		slog.String("session_slot", input.Session.Slot),
		slog.String("venue", input.Session.Venue),
		slog.Int("completed", out.Completed),
		slog.Int("missed", out.Missed),
	)
	return &out, nil
}

package orientation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// Schedule books an orientation session. A Missed booking is replaced; an
// active or completed one is left alone.
func (s *Service) Schedule(ctx context.Context, input ScheduleInput) (_ *domain.AttendanceOutcome, err error) {
	defer func() { s.observe("orientation.schedule", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out domain.AttendanceOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, policy, err := s.lockApplication(ctx, actor, input.ApplicationID)
		if err != nil {
			return err
		}
		if err := ensureNotClosed(app); err != nil {
			return err
		}
		if app.Status.IsLocked() {
			return domain.NewReviewError(domain.CodeApplicationLocked, "application %s is under administrative review", app.ID)
		}
		if !policy.RequiresOrientation {
			return domain.NewReviewError(domain.CodeOrientationNotRequired, "job category %q does not require orientation", policy.Name)
		}
		if app.OrientationCompleted {
			return domain.NewReviewError(domain.CodeAlreadyScheduled, "application %s already completed orientation", app.ID)
		}

		current, err := s.records.GetByApplicationForUpdate(ctx, app.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return fmt.Errorf("get orientation record: %w", err)
		case current.Status != domain.OrientationMissed:
			return domain.NewReviewError(domain.CodeAlreadyScheduled, "application %s is booked for %s (%s)",
				app.ID, current.SessionDate.Format("2006-01-02"), current.Status)
		}

		rec, err := s.records.Create(ctx, domain.OrientationRecord{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			SessionDate:   input.SessionDate,
			SessionSlot:   input.SessionSlot,
			Venue:         input.Venue,
			Status:        domain.OrientationScheduled,
		})
		if err != nil {
			return fmt.Errorf("create orientation record: %w", err)
		}

		app, err = s.aggregator.Recompute(ctx, app, actor.ID)
		if err != nil {
			return fmt.Errorf("recompute status: %w", err)
		}

		if err := s.notifications.CreateBatch(ctx, []domain.Notification{notify.OrientationScheduled(app, rec)}); err != nil {
			return fmt.Errorf("notify applicant: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityOrientationScheduled,
			Details: map[string]any{
				"record_id":    rec.ID,
				"session_date": rec.SessionDate.Format("2006-01-02"),
				"session_slot": rec.SessionSlot,
				"venue":        rec.Venue,
				"rebooked":     current != nil,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.AttendanceOutcome{Record: rec, ApplicationStatus: app.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "orientation scheduled",
		slog.String("application_id", input.ApplicationID.String()),
		slog.String("session_date", out.Record.SessionDate.Format("2006-01-02")),
		slog.String("session_slot", out.Record.SessionSlot),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

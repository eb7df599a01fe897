package orientation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// CheckIn records arrival at a scheduled session.
func (s *Service) CheckIn(ctx context.Context, applicationID uuid.UUID) (_ *domain.AttendanceOutcome, err error) {
	defer func() { s.observe("orientation.check_in", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}

	var out domain.AttendanceOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, _, err := s.lockApplication(ctx, actor, applicationID)
		if err != nil {
			return err
		}
		if err := ensureNotClosed(app); err != nil {
			return err
		}
		rec, err := s.record(ctx, app.ID)
		if err != nil {
			return err
		}

		switch {
		case rec.CheckInTime != nil || rec.Status == domain.OrientationCheckedIn:
			return domain.NewReviewError(domain.CodeAlreadyCheckedIn, "application %s already checked in", app.ID)
		case rec.Status == domain.OrientationCompleted:
			return domain.NewReviewError(domain.CodeAlreadyCheckedOut, "application %s already completed orientation", app.ID)
		case rec.Status != domain.OrientationScheduled:
			return domain.NewReviewError(domain.CodeNotScheduled, "orientation of application %s is %s", app.ID, rec.Status)
		}

		now := s.now()
		rec.Status = domain.OrientationCheckedIn
		rec.CheckInTime = &now
		rec.CheckedInBy = &actor.ID
		updated, err := s.records.Update(ctx, *rec)
		if err != nil {
			return fmt.Errorf("update orientation record: %w", err)
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityOrientationCheckIn,
			Details:       map[string]any{"record_id": rec.ID},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.AttendanceOutcome{Record: updated, ApplicationStatus: app.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "orientation check-in",
		slog.String("application_id", applicationID.String()),
		slog.String("actor_id", actor.ID.String()),
	)
	return &out, nil
}

// CheckOut completes attendance, marks orientation as done on the
// application and re-derives its status.
func (s *Service) CheckOut(ctx context.Context, applicationID uuid.UUID) (_ *domain.AttendanceOutcome, err error) {
	defer func() { s.observe("orientation.check_out", err) }()

	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}

	var out domain.AttendanceOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, _, err := s.lockApplication(ctx, actor, applicationID)
		if err != nil {
			return err
		}
		if err := ensureNotClosed(app); err != nil {
			return err
		}
		rec, err := s.record(ctx, app.ID)
		if err != nil {
			return err
		}

		switch {
		case rec.Status == domain.OrientationCompleted || rec.CheckOutTime != nil:
			return domain.NewReviewError(domain.CodeAlreadyCheckedOut, "application %s already checked out", app.ID)
		case rec.Status != domain.OrientationCheckedIn || rec.CheckInTime == nil:
			return domain.NewReviewError(domain.CodeNotCheckedIn, "application %s has not checked in", app.ID)
		}

		now := s.now()
		rec.Status = domain.OrientationCompleted
		rec.CheckOutTime = &now
		rec.CheckedOutBy = &actor.ID
		updated, err := s.records.Update(ctx, *rec)
		if err != nil {
			return fmt.Errorf("update orientation record: %w", err)
		}

		app, err = s.aggregator.CompleteOrientation(ctx, app, actor.ID)
		if err != nil {
			return err
		}

		if err := s.activity.Log(ctx, domain.ActivityLog{
			ActorID:       &actor.ID,
			ApplicationID: app.ID,
			Action:        domain.ActivityOrientationCheckOut,
			Details: map[string]any{
				"record_id":  rec.ID,
				"new_status": app.Status,
			},
		}); err != nil {
			return fmt.Errorf("log activity: %w", err)
		}

		out = domain.AttendanceOutcome{Record: updated, ApplicationStatus: app.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "orientation check-out",
		slog.String("application_id", applicationID.String()),
		slog.String("actor_id", actor.ID.String()),
		slog.String("status", string(out.ApplicationStatus)),
	)
	return &out, nil
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type batchQueue interface {
	Enqueue(ctx context.Context, applicationID uuid.UUID, artifactIDs []uuid.UUID, delay time.Duration) error
	Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	Drain(ctx context.Context, applicationID uuid.UUID) ([]uuid.UUID, error)
}

type applicationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
}

type documentRepo interface {
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Artifact, error)
}

type attemptCounter interface {
	Attempts(ctx context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error)
}

type notificationRepo interface {
	CreateBatch(ctx context.Context, items []domain.Notification) error
}

type flushRecorder interface {
	BatchFlushed(sent, skipped, failed int)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Limits configures the attempt wording of rejection notices.
type Limits struct {
	MaxDocumentAttempts int
	WarningThreshold    int
}

// FlushResult summarises one flush pass.
type FlushResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// Dispatcher turns queued rejection batches into one applicant notification
// per application.
type Dispatcher struct {
	queue         batchQueue
	apps          applicationRepo
	documents     documentRepo
	attempts      attemptCounter
	notifications notificationRepo
	tx            txManager
	recorder      flushRecorder
	limits        Limits
	batchLimit    int
	log           *slog.Logger
}

// NewDispatcher creates a dispatcher. recorder may be nil.
func NewDispatcher(
	log *slog.Logger,
	queue batchQueue,
	apps applicationRepo,
	documents documentRepo,
	attempts attemptCounter,
	notifications notificationRepo,
	tx txManager,
	recorder flushRecorder,
	limits Limits,
	batchLimit int,
) *Dispatcher {
	return &Dispatcher{
		queue:         queue,
		apps:          apps,
		documents:     documents,
		attempts:      attempts,
		notifications: notifications,
		tx:            tx,
		recorder:      recorder,
		limits:        limits,
		batchLimit:    batchLimit,
		log:           log.With("service", "notify"),
	}
}

// Flush sends every batch due at now. A batch whose documents were all
// resolved in the meantime is dropped silently. A batch that fails is put
// back on the queue for the next pass.
func (d *Dispatcher) Flush(ctx context.Context, now time.Time) (FlushResult, error) {
	var res FlushResult

	due, err := d.queue.Due(ctx, now, d.batchLimit)
	if err != nil {
		return res, fmt.Errorf("list due batches: %w", err)
	}

	for _, appID := range due {
		artifactIDs, err := d.queue.Drain(ctx, appID)
		if err != nil {
			res.Failed++
			d.log.WarnContext(ctx, "drain batch failed",
				slog.String("application_id", appID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		sent, err := d.send(ctx, appID)
		switch {
		case err != nil:
			res.Failed++
			d.log.WarnContext(ctx, "send batch failed",
				slog.String("application_id", appID.String()),
				slog.String("error", err.Error()),
			)
			if qErr := d.queue.Enqueue(ctx, appID, artifactIDs, 0); qErr != nil {
				d.log.ErrorContext(ctx, "requeue batch failed",
					slog.String("application_id", appID.String()),
					slog.String("error", qErr.Error()),
				)
			}
		case sent:
			res.Sent++
		default:
			res.Skipped++
		}
	}

	if d.recorder != nil {
		d.recorder.BatchFlushed(res.Sent, res.Skipped, res.Failed)
	}
	if len(due) > 0 {
		d.log.InfoContext(ctx, "notification batches flushed",
			slog.Int("sent", res.Sent),
			slog.Int("skipped", res.Skipped),
			slog.Int("failed", res.Failed),
		)
	}
	return res, nil
}

func (d *Dispatcher) send(ctx context.Context, appID uuid.UUID) (bool, error) {
	sent := false
	err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := d.apps.GetByID(ctx, appID)
		if err != nil {
			return fmt.Errorf("get application: %w", err)
		}
		if app.Status.IsClosed() {
			return nil
		}

		docs, err := d.documents.ListByApplication(ctx, appID)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		var (
			items []RejectedItem
			warn  bool
		)
		for _, doc := range docs {
			if !doc.Status.IsRejected() {
				continue
			}
			n, err := d.attempts.Attempts(ctx, appID, domain.ArtifactKindDocument, doc.TypeID)
			if err != nil {
				return fmt.Errorf("count attempts: %w", err)
			}
			item := RejectedItem{
				TypeID:            doc.TypeID,
				Referred:          doc.Status == domain.ReviewReferred,
				AttemptsRemaining: max(0, d.limits.MaxDocumentAttempts-n),
			}
			if doc.AdminRemarks != nil {
				item.Remarks = *doc.AdminRemarks
			}
			if !item.Referred && n == d.limits.WarningThreshold {
				warn = true
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return nil
		}

		if err := d.notifications.CreateBatch(ctx, []domain.Notification{DocumentsRejected(app, items, warn)}); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		sent = true
		return nil
	})
	return sent, err
}

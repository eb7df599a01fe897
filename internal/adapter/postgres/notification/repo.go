// Package notification implements the notification outbox using PostgreSQL.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Repo provides notification persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new notification repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO notifications (id, recipient_id, application_id, type, title, message, actionable, action_ref, is_read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listByRecipientSQL = `
SELECT id, recipient_id, application_id, type, title, message, actionable, action_ref, is_read, created_at
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC, id
LIMIT $2`

// CreateBatch inserts notifications in a single round trip.
func (r *Repo) CreateBatch(ctx context.Context, items []domain.Notification) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for i := range items {
		n := &items[i]
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		batch.Queue(insertSQL, n.ID, n.RecipientID, n.ApplicationID, string(n.Type),
			n.Title, n.Message, n.Actionable, n.ActionRef, n.IsRead, n.CreatedAt)
	}

	br := postgres.QuerierFromCtx(ctx, r.pool).SendBatch(ctx, batch)
	defer br.Close()

	for i := range items {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "notification", items[i].ID)
		}
	}
	return nil
}

// ListByRecipient returns the newest notifications of a recipient.
func (r *Repo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]domain.Notification, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listByRecipientSQL, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n   domain.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ApplicationID, &typ, &n.Title, &n.Message, &n.Actionable, &n.ActionRef, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/activity"
	pgapplication "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/application"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/artifact"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/category"
	pgledger "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/ledger"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/legacyledger"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/notification"
	pgorientation "github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/orientation"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/rejection"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/redis"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/redis/batchqueue"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/storage/blob"
	"github.com/heartmarshall/healthcard-backend/internal/config"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/metrics"
	"github.com/heartmarshall/healthcard-backend/internal/service/aggregate"
	"github.com/heartmarshall/healthcard-backend/internal/service/application"
	"github.com/heartmarshall/healthcard-backend/internal/service/document"
	"github.com/heartmarshall/healthcard-backend/internal/service/finalize"
	"github.com/heartmarshall/healthcard-backend/internal/service/ledger"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
	"github.com/heartmarshall/healthcard-backend/internal/service/orientation"
	"github.com/heartmarshall/healthcard-backend/internal/service/payment"
)

// Container holds the connections and services shared by every binary.
type Container struct {
	Pool    *pgxpool.Pool
	Redis   *goredis.Client
	Blobs   *blob.Store
	Metrics *metrics.Metrics

	Documents    *document.Service
	Payments     *payment.Service
	Orientation  *orientation.Service
	Applications *application.Service
	Dispatcher   *notify.Dispatcher
}

// NewContainer connects to PostgreSQL and Redis and wires every service.
// The caller must call Close.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	blobs, err := blob.New(cfg.Storage)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("create blob store: %w", err)
	}

	c := &Container{Pool: pool, Redis: rdb, Blobs: blobs, Metrics: metrics.New()}
	c.wire(cfg, logger)
	return c, nil
}

func (c *Container) wire(cfg *config.Config, logger *slog.Logger) {
	txm := postgres.NewTxManager(c.Pool)

	apps := pgapplication.New(c.Pool)
	documents := artifact.New(c.Pool, domain.ArtifactKindDocument)
	payments := artifact.New(c.Pool, domain.ArtifactKindPayment)
	categories := category.New(c.Pool)
	records := pgorientation.New(c.Pool)
	rejections := rejection.New(c.Pool)
	notifications := notification.New(c.Pool)
	activityLog := activity.New(c.Pool)
	queue := batchqueue.New(c.Redis, cfg.Redis.KeyPrefix)

	ledgerSvc := ledger.NewService(logger, pgledger.New(c.Pool), legacyledger.New(c.Pool))
	aggregator := aggregate.NewService(logger, apps, documents, payments, records, categories, cfg.Review.GracePeriod())
	finalizer := finalize.NewService(logger, rejections, ledgerSvc, documents, aggregator, categories, notifications, activityLog)

	c.Documents = document.NewService(logger, document.Deps{
		Applications:  apps,
		Documents:     documents,
		Ledger:        ledgerSvc,
		Aggregator:    aggregator,
		Finalizer:     finalizer,
		Categories:    categories,
		Rejections:    rejections,
		Blobs:         c.Blobs,
		Batcher:       queue,
		Notifications: notifications,
		Activity:      activityLog,
		Recorder:      c.Metrics,
		Tx:            txm,
	}, document.Limits{
		MaxAttempts:      cfg.Review.MaxDocumentAttempts,
		WarningThreshold: cfg.Review.WarningThreshold,
		BatchWindow:      cfg.Notify.BatchWindow,
	})

	c.Payments = payment.NewService(logger, payment.Deps{
		Applications:  apps,
		Payments:      payments,
		Ledger:        ledgerSvc,
		Aggregator:    aggregator,
		Categories:    categories,
		Blobs:         c.Blobs,
		Notifications: notifications,
		Activity:      activityLog,
		Recorder:      c.Metrics,
		Tx:            txm,
	}, payment.Limits{
		MaxAttempts: cfg.Review.MaxPaymentAttempts,
		AutoLock:    cfg.Review.AutoLockOnMaxAttempts,
	})

	c.Orientation = orientation.NewService(logger, orientation.Deps{
		Applications:  apps,
		Orientation:   records,
		Aggregator:    aggregator,
		Categories:    categories,
		Notifications: notifications,
		Activity:      activityLog,
		Recorder:      c.Metrics,
		Tx:            txm,
	})

	c.Applications = application.NewService(logger, application.Deps{
		Applications:  apps,
		Documents:     documents,
		Payments:      payments,
		Orientation:   records,
		Rejections:    rejections,
		Aggregator:    aggregator,
		Categories:    categories,
		Notifications: notifications,
		Activity:      activityLog,
		Recorder:      c.Metrics,
		Tx:            txm,
	})

	c.Dispatcher = notify.NewDispatcher(logger, queue, apps, documents, ledgerSvc, notifications, txm, c.Metrics,
		notify.Limits{
			MaxDocumentAttempts: cfg.Review.MaxDocumentAttempts,
			WarningThreshold:    cfg.Review.WarningThreshold,
		},
		cfg.Notify.FlushLimit,
	)
}

// Close releases the database and Redis connections.
func (c *Container) Close() {
	_ = c.Redis.Close()
	c.Pool.Close()
}

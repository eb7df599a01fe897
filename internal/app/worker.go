package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/heartmarshall/healthcard-backend/internal/config"
	"github.com/heartmarshall/healthcard-backend/internal/service/notify"
)

// RunWorker is the notification worker entry point. It flushes due
// rejection batches on the configured cron schedule until ctx is cancelled.
func RunWorker(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting notification worker",
		slog.String("version", BuildVersion()),
		slog.String("schedule", cfg.Notify.FlushSchedule),
	)

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	sched, err := newFlushScheduler(ctx, cfg.Notify.FlushSchedule, logger, c.Dispatcher.Flush)
	if err != nil {
		return err
	}

	sched.Start()
	<-ctx.Done()

	logger.Info("stopping notification worker")
	<-sched.Stop().Done()
	return nil
}

// flushFunc sends every rejection batch due at now.
type flushFunc func(ctx context.Context, now time.Time) (notify.FlushResult, error)

// newFlushScheduler registers flush on schedule. Overlapping runs are
// skipped.
func newFlushScheduler(ctx context.Context, schedule string, logger *slog.Logger, flush flushFunc) (*cron.Cron, error) {
	cl := cronLogger{log: logger.With("component", "cron")}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	_, err := c.AddFunc(schedule, func() {
		res, err := flush(ctx, time.Now().UTC())
		if err != nil {
			logger.ErrorContext(ctx, "notification flush failed", slog.String("error", err.Error()))
			return
		}
		if res.Sent+res.Skipped+res.Failed > 0 {
			logger.InfoContext(ctx, "notification flush done",
				slog.Int("sent", res.Sent),
				slog.Int("skipped", res.Skipped),
				slog.Int("failed", res.Failed),
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid flush schedule %q: %w", schedule, err)
	}
	return c, nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err.Error())...)
}

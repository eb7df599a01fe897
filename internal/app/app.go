package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/heartmarshall/healthcard-backend/internal/auth"
	"github.com/heartmarshall/healthcard-backend/internal/config"
	"github.com/heartmarshall/healthcard-backend/internal/transport/middleware"
	"github.com/heartmarshall/healthcard-backend/internal/transport/rest"
)

// Run is the HTTP server entry point. It loads configuration, wires the
// services and serves the REST API until ctx is cancelled, then shuts the
// server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	handler, stop := newHTTPHandler(cfg, logger, c)
	defer stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// newHTTPHandler builds the router with its middleware stack. The returned
// stop function releases the rate limiter.
func newHTTPHandler(cfg *config.Config, logger *slog.Logger, c *Container) (http.Handler, func()) {
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var limiter middleware.Middleware
	stop := func() {}
	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.CleanupInterval)
		limiter = rl.Middleware
		stop = rl.Stop
	}
	api := []func(http.Handler) http.Handler{
		middleware.Chain(middleware.Auth(jwtManager, logger), limiter),
	}

	router := rest.NewRouter(rest.Handlers{
		Health: rest.NewHealthHandler(Version,
			rest.Check{Name: "database", Ping: c.Pool.Ping, Critical: true},
			rest.Check{Name: "redis", Ping: func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }},
			rest.Check{Name: "storage", Ping: c.Blobs.Ping},
		),
		Documents:    rest.NewDocumentHandler(c.Documents, logger),
		Payments:     rest.NewPaymentHandler(c.Payments, logger),
		Orientation:  rest.NewOrientationHandler(c.Orientation, logger),
		Applications: rest.NewApplicationHandler(c.Applications, logger),
	}, rest.RouterOptions{
		Observe: []func(http.Handler) http.Handler{
			middleware.Logger(logger),
			middleware.Metrics(c.Metrics),
		},
		API:     api,
		Metrics: c.Metrics.Handler(),
	})

	outer := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)
	return outer(router), stop
}

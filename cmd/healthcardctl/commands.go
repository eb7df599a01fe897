package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/healthcard-backend/internal/app"
	"github.com/heartmarshall/healthcard-backend/internal/config"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/orientation"
	"github.com/heartmarshall/healthcard-backend/internal/service/payment"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

type rootOptions struct {
	actorID   string
	actorRole string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "healthcardctl",
		Short:         "Operate the health card review backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.actorID, "actor-id", "", "id of the administrator performing the operation")
	root.PersistentFlags().StringVar(&opts.actorRole, "actor-role", string(domain.RoleAdmin), "role of the acting user")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall operation timeout")

	root.AddCommand(
		newMigrateCmd(opts),
		newFinalizeSessionCmd(opts),
		newResetVerificationCmd(opts),
		newUnlockCmd(opts),
		newFlushCmd(opts),
	)
	return root
}

// ---------------------------------------------------------------------------
// migrate
// ---------------------------------------------------------------------------

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd.Context(), opts, func(ctx context.Context, db *sql.DB, dir string) error {
					return goose.UpContext(ctx, db, dir)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the status of every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd.Context(), opts, func(ctx context.Context, db *sql.DB, dir string) error {
					return goose.StatusContext(ctx, db, dir)
				})
			},
		},
	)
	return cmd
}

func withMigrations(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, db *sql.DB, dir string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.NewLogger(cfg.Log)

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	return fn(ctx, db, cfg.Database.MigrationsDir)
}

// ---------------------------------------------------------------------------
// review operations
// ---------------------------------------------------------------------------

func newFinalizeSessionCmd(opts *rootOptions) *cobra.Command {
	var date, slot, venue string

	cmd := &cobra.Command{
		Use:   "finalize-session",
		Short: "Mark every unfinished booking of an orientation session as missed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := time.Parse(time.DateOnly, date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			return withServices(cmd, opts, func(ctx context.Context, c *app.Container) (any, error) {
				return c.Orientation.FinalizeSession(ctx, orientation.SessionInput{
					Session: domain.SessionKey{Date: day, Slot: slot, Venue: venue},
				})
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&slot, "slot", "", "session slot")
	cmd.Flags().StringVar(&venue, "venue", "", "session venue")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("slot")
	_ = cmd.MarkFlagRequired("venue")
	return cmd
}

func newResetVerificationCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-verification <application-id>",
		Short: "Return every document of an application to pending and clear its document ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid application id: %w", err)
			}
			return withServices(cmd, opts, func(ctx context.Context, c *app.Container) (any, error) {
				return c.Documents.ResetVerification(ctx, appID)
			})
		},
	}
}

func newUnlockCmd(opts *rootOptions) *cobra.Command {
	var resolution, remarks string

	cmd := &cobra.Command{
		Use:   "unlock <application-id>",
		Short: "Resolve an application under administrative review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid application id: %w", err)
			}
			return withServices(cmd, opts, func(ctx context.Context, c *app.Container) (any, error) {
				return c.Payments.Unlock(ctx, payment.UnlockInput{
					ApplicationID: appID,
					Resolution:    domain.UnlockResolution(resolution),
					Remarks:       remarks,
				})
			})
		},
	}
	cmd.Flags().StringVar(&resolution, "resolution", "", "approve_payment or reset_attempts")
	cmd.Flags().StringVar(&remarks, "remarks", "", "administrator remarks")
	_ = cmd.MarkFlagRequired("resolution")
	_ = cmd.MarkFlagRequired("remarks")
	return cmd
}

func newFlushCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-notifications",
		Short: "Send every due rejection notice now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *app.Container) (any, error) {
				return c.Dispatcher.Flush(ctx, time.Now().UTC())
			})
		},
	}
}

// withServices runs fn as the actor named by the root flags.
func withServices(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, c *app.Container) (any, error)) error {
	actor, err := parseActor(opts.actorID, opts.actorRole)
	if err != nil {
		return err
	}
	return withContainer(cmd, opts, func(ctx context.Context, c *app.Container) (any, error) {
		return fn(ctxutil.WithActor(ctx, actor), c)
	})
}

func withContainer(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, c *app.Container) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	out, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func parseActor(id, role string) (domain.Actor, error) {
	if id == "" {
		return domain.Actor{}, fmt.Errorf("--actor-id is required")
	}
	actorID, err := uuid.Parse(id)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid --actor-id: %w", err)
	}
	r := domain.Role(role)
	if !r.IsStaff() {
		return domain.Actor{}, fmt.Errorf("--actor-role %q is not a staff role", role)
	}
	return domain.Actor{ID: actorID, Role: r}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/cityguide-bot/internal/app"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
)

const migrateTimeout = 5 * time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the health server and background reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx, cfg)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.Log)

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			version, err := app.Migrate(ctx, cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", slog.Int64("version", version))
			return nil
		},
	}
}

func newReconcileCmd() *cobra.Command {
	var pushOnly bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass between the fallback and the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.Log)

			mode := datasync.ModeFull
			if pushOnly {
				mode = datasync.ModePush
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := app.Reconcile(ctx, cfg, logger, mode)
			app.PrintReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			if len(rep.Errors) > 0 {
				return fmt.Errorf("reconcile finished with %d error(s)", len(rep.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pushOnly, "push-only", false, "Only insert fallback-only entities; skip the refresh.")
	return cmd
}

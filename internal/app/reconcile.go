package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"

	postgres "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres"
	"github.com/heartmarshall/cityguide-bot/internal/config"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/migrations"
)

// Reconcile runs a single pass and returns its report.
func Reconcile(ctx context.Context, cfg *config.Config, log *slog.Logger, mode datasync.Mode) (datasync.Report, error) {
	if !cfg.Database.PrimaryEnabled() {
		return datasync.Report{}, fmt.Errorf("reconcile: database.dsn is not configured")
	}
	stores, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return datasync.Report{}, err
	}
	defer stores.Close()

	return datasync.NewReconciler(stores.Coordinator, datasync.ReconcilerOptions{}, log).Pass(ctx, mode)
}

// Migrate applies pending migrations to the authoritative store.
func Migrate(ctx context.Context, cfg *config.Config, log *slog.Logger) (int64, error) {
	if !cfg.Database.PrimaryEnabled() {
		return 0, fmt.Errorf("migrate: database.dsn is not configured")
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	return postgres.Migrate(ctx, pool, migrations.FS, log)
}

// PrintReport writes a human summary of rep.
func PrintReport(w io.Writer, rep datasync.Report) {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "Reconciliation (%s) took %s\n", rep.Mode, rep.Duration.Round(time.Millisecond))
	line := func(label string, n int, paint func(...any) string) {
		v := fmt.Sprint(n)
		if n > 0 {
			v = paint(v)
		}
		fmt.Fprintf(w, "  %-18s %s\n", label, v)
	}
	line("cities pushed", rep.CitiesPushed, ok)
	line("places pushed", rep.PlacesPushed, ok)
	line("categories pushed", rep.CategoriesPushed, ok)
	line("ads pushed", rep.AdsPushed, ok)
	line("skipped", rep.Skipped, warn)
	line("pulled", rep.Pulled, ok)

	if len(rep.Errors) == 0 {
		fmt.Fprintf(w, "%s\n", ok("no errors"))
		return
	}
	fmt.Fprintf(w, "%s\n", bad(fmt.Sprintf("%d error(s):", len(rep.Errors))))
	for _, err := range rep.Errors {
		fmt.Fprintf(w, "  - %s\n", err)
	}
}

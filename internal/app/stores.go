package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/cityguide-bot/internal/adapter/filestore"
	postgres "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres"
	pgstore "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres/store"
	"github.com/heartmarshall/cityguide-bot/internal/config"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
)

// Stores is the coordinator with the stores under it.
type Stores struct {
	Coordinator *datasync.Coordinator
	Fallback    *filestore.Store
	pool        *pgxpool.Pool
}

// OpenStores opens the fallback directory and, when a DSN is configured,
// the authoritative database. An unreachable database is not an error.
func OpenStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Stores, error) {
	fallback, err := filestore.New(cfg.Fallback.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("open fallback store: %w", err)
	}

	s := &Stores{Fallback: fallback}
	var primary datasync.Store = datasync.Disabled(postgres.StoreName)
	if cfg.Database.PrimaryEnabled() {
		s.pool, err = postgres.Open(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("open authoritative store: %w", err)
		}
		primary = pgstore.New(s.pool, log)
	} else {
		log.Warn("no database configured, running on the fallback store only")
	}

	s.Coordinator = datasync.New(primary, fallback, datasync.Options{
		Policy:          datasync.DefaultPolicy,
		OpTimeout:       cfg.Database.OpTimeout,
		BackfillTimeout: cfg.Sync.BackfillTimeout,
	}, log)
	return s, nil
}

// Close waits for background backfills and closes the database pool.
func (s *Stores) Close() {
	s.Coordinator.Wait()
	if s.pool != nil {
		s.pool.Close()
	}
}

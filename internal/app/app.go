package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/cityguide-bot/internal/adapter/filestore"
	"github.com/heartmarshall/cityguide-bot/internal/adapter/mediastore"
	"github.com/heartmarshall/cityguide-bot/internal/bot"
	"github.com/heartmarshall/cityguide-bot/internal/config"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/geo"
	"github.com/heartmarshall/cityguide-bot/internal/service/ad"
	"github.com/heartmarshall/cityguide-bot/internal/service/category"
	"github.com/heartmarshall/cityguide-bot/internal/service/city"
	"github.com/heartmarshall/cityguide-bot/internal/service/place"
	"github.com/heartmarshall/cityguide-bot/internal/transport/rest"
	"github.com/heartmarshall/cityguide-bot/internal/transport/telegram"
	"github.com/heartmarshall/cityguide-bot/internal/wizard"
)

// Run starts the bot and everything around it and blocks until ctx is done
// or a component fails.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("authoritative_store", cfg.Database.PrimaryEnabled()),
		slog.Bool("media_storage", cfg.Media.Enabled()),
	)

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()
	coord := stores.Coordinator

	// Services.
	cities := city.NewService(logger, coord)
	places := place.NewService(logger, coord, coord)
	categories := category.NewService(logger, coord, coord)
	ads := ad.NewService(logger, coord)

	if n, err := categories.EnsureBuiltins(ctx); err != nil {
		logger.Warn("built-in categories not ensured", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Info("built-in categories created", slog.Int("count", n))
	}

	// Chat.
	tg, err := telegram.New(cfg.Telegram, cfg.Media, logger)
	if err != nil {
		return err
	}

	var (
		media *wizard.Media
		store *mediastore.Store
	)
	if cfg.Media.Enabled() {
		store = mediastore.New(cfg.Media, logger)
		media = wizard.NewMedia(logger, tg, store, cfg.Media.FetchTimeout)
	}

	states := conversation.NewStore(cfg.Wizard.StateTTL, logger)
	engine := wizard.NewEngine(logger, states, wizard.Deps{
		Cities:     cities,
		Places:     places,
		Categories: categories,
		Ads:        ads,
		Geo:        geo.NewResolver(logger, cfg.Geo.ResolveTimeout, cfg.Geo.MaxRedirects),
		Media:      media,
	})
	router := bot.NewRouter(logger, engine, bot.Deps{
		Cities:     cities,
		Places:     places,
		Categories: categories,
		Ads:        ads,
		IsAdmin:    cfg.Telegram.IsAdmin,
	})
	dispatcher := wizard.NewDispatcher(logger, router, tg, wizard.DispatcherOptions{
		QueueSize:  cfg.Wizard.QueueSize,
		WorkerIdle: cfg.Wizard.WorkerIdle,
	})

	// Sync.
	reconciler := datasync.NewReconciler(coord, datasync.ReconcilerOptions{
		Interval:    cfg.Sync.Interval,
		StartupPass: cfg.Sync.StartupPass && cfg.Database.PrimaryEnabled(),
	}, logger)

	var watcher *datasync.Watcher
	if cfg.Sync.Watch && cfg.Database.PrimaryEnabled() {
		watcher, err = datasync.NewWatcher(datasync.WatcherOptions{
			Dirs:     []string{stores.Fallback.Dir(), stores.Fallback.CitiesDir()},
			Debounce: cfg.Sync.Debounce,
			Ignore:   filestore.IsTempFile,
			OnSettle: reconciler.Push,
		}, logger)
		if err != nil {
			return err
		}
	}

	// HTTP.
	handlers := rest.Handlers{
		Health: rest.NewHealthHandler(coord, BuildVersion()),
		Sync:   rest.NewSyncHandler(reconciler),
	}
	if store != nil {
		handlers.Media = store.Serve
	}
	server := rest.NewServer(cfg.Server, rest.NewRouter(logger, handlers), logger)

	g, gctx := errgroup.WithContext(ctx)
	dispatcher.Start(gctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return tg.Run(gctx, dispatcher.Dispatch) })
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error {
		states.Run(gctx, cfg.Wizard.SweepInterval)
		return nil
	})
	if cfg.Database.PrimaryEnabled() {
		g.Go(func() error { return reconciler.Run(gctx) })
	}
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	err = g.Wait()
	logger.Info("application stopped")
	return err
}

package datasync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher turns bursts of fallback file changes into single callbacks.
// A burst is settled when no event arrived for the debounce window.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dirs     []string
	debounce time.Duration
	ignore   func(name string) bool
	onSettle func(ctx context.Context)
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// WatcherOptions configure NewWatcher.
type WatcherOptions struct {
	Dirs     []string
	Debounce time.Duration
	// Ignore filters out paths such as in-progress temp files.
	Ignore   func(name string) bool
	OnSettle func(ctx context.Context)
}

// NewWatcher registers the directories. Run starts delivering events.
func NewWatcher(opts WatcherOptions, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range opts.Dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	if opts.Ignore == nil {
		opts.Ignore = func(string) bool { return false }
	}
	return &Watcher{
		watcher:  fw,
		dirs:     opts.Dirs,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		onSettle: opts.OnSettle,
		log:      log.With("service", "watcher"),
		pending:  make(map[string]time.Time),
	}, nil
}

// Run blocks until ctx is done and closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	tick := w.debounce / 4
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.log.InfoContext(ctx, "watching fallback store", slog.Any("dirs", w.dirs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "watch error", slog.String("error", err.Error()))

		case <-ticker.C:
			if w.settled(time.Now()) {
				w.onSettle(ctx)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.ignore(event.Name) || !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled reports whether a burst ended: something is pending and the
// newest event is older than the debounce window. It clears the burst.
func (w *Watcher) settled(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return false
	}
	for _, at := range w.pending {
		if now.Sub(at) < w.debounce {
			return false
		}
	}
	clear(w.pending)
	return true
}

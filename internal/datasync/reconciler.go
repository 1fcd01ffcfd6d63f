package datasync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Mode selects what a reconciliation pass does.
type Mode int

const (
	// ModePush inserts fallback-only entities into the authoritative store.
	// It never overwrites.
	ModePush Mode = iota
	// ModeFull pushes, then, if the push was clean, refreshes the fallback
	// from the authoritative store.
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModeFull:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Report summarises one pass.
type Report struct {
	Mode     Mode
	Started  time.Time
	Duration time.Duration

	CitiesPushed     int
	PlacesPushed     int
	CategoriesPushed int
	AdsPushed        int
	// Skipped counts fallback entities that clash with different
	// authoritative data; the authoritative side is kept.
	Skipped int
	// Pulled counts fallback documents refreshed from the authoritative store.
	Pulled int

	Errors []error
}

// Pushed is the total number of entities inserted into the authoritative store.
func (r Report) Pushed() int {
	return r.CitiesPushed + r.PlacesPushed + r.CategoriesPushed + r.AdsPushed
}

// Err joins the per-entity errors.
func (r Report) Err() error { return errors.Join(r.Errors...) }

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Errorf(format, args...))
}

// ReconcilerOptions configure Run.
type ReconcilerOptions struct {
	Interval    time.Duration
	StartupPass bool
}

// Reconciler heals divergence between the stores. Passes never overlap.
type Reconciler struct {
	c    *Coordinator
	opts ReconcilerOptions
	log  *slog.Logger

	mu sync.Mutex

	lastMu sync.Mutex
	last   *PassResult
}

// NewReconciler creates a reconciler over the coordinator's stores.
func NewReconciler(c *Coordinator, opts ReconcilerOptions, log *slog.Logger) *Reconciler {
	return &Reconciler{c: c, opts: opts, log: log.With("service", "reconciler")}
}

// Run performs the startup pass and then a full pass every interval until
// ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.opts.StartupPass {
		r.runPass(ctx, ModeFull)
	}
	if r.opts.Interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.runPass(ctx, ModeFull)
		}
	}
}

// Push is a push-only pass, used for fallback file changes.
func (r *Reconciler) Push(ctx context.Context) {
	r.runPass(ctx, ModePush)
}

// PassResult is a finished pass. Err is set when the pass was aborted.
type PassResult struct {
	Report Report
	Err    error
}

// Last returns the most recent pass started by Run or Push. ok is false
// before the first one.
func (r *Reconciler) Last() (res PassResult, ok bool) {
	r.lastMu.Lock()
	defer r.lastMu.Unlock()
	if r.last == nil {
		return PassResult{}, false
	}
	res = *r.last
	res.Report.Errors = append([]error(nil), r.last.Report.Errors...)
	return res, true
}

func (r *Reconciler) record(rep Report, err error) {
	r.lastMu.Lock()
	defer r.lastMu.Unlock()
	r.last = &PassResult{Report: rep, Err: err}
}

func (r *Reconciler) runPass(ctx context.Context, mode Mode) {
	rep, err := r.Pass(ctx, mode)
	if err == nil || ctx.Err() == nil {
		r.record(rep, err)
	}
	if err != nil {
		if ctx.Err() == nil {
			r.log.WarnContext(ctx, "reconciliation skipped", slog.String("mode", mode.String()), slog.String("error", err.Error()))
		}
		return
	}
	attrs := []any{
		slog.String("mode", mode.String()),
		slog.Int("pushed", rep.Pushed()),
		slog.Int("pulled", rep.Pulled),
		slog.Int("skipped", rep.Skipped),
		slog.Int("errors", len(rep.Errors)),
		slog.Duration("took", rep.Duration),
	}
	if len(rep.Errors) > 0 {
		r.log.WarnContext(ctx, "reconciliation finished with errors", append(attrs, slog.String("error", rep.Err().Error()))...)
		return
	}
	if rep.Pushed() > 0 || rep.Pulled > 0 {
		r.log.InfoContext(ctx, "reconciliation finished", attrs...)
		return
	}
	r.log.DebugContext(ctx, "reconciliation finished", attrs...)
}

// Pass runs one reconciliation. It fails as a whole only when a store
// cannot be listed; per-entity failures are collected in the report.
func (r *Reconciler) Pass(ctx context.Context, mode Mode) (Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := Report{Mode: mode, Started: time.Now()}

	if err := r.c.onPrimary(ctx, r.c.primary.Ping); err != nil {
		return rep, err
	}

	if err := r.pushCities(ctx, &rep); err != nil {
		return rep, err
	}
	if err := r.pushCategories(ctx, &rep); err != nil {
		return rep, err
	}
	if err := r.pushAds(ctx, &rep); err != nil {
		return rep, err
	}

	if mode == ModeFull && len(rep.Errors) == 0 {
		if err := r.pullCities(ctx, &rep); err != nil {
			return rep, err
		}
		if err := r.pullCategories(ctx, &rep); err != nil {
			return rep, err
		}
		if err := r.pullAds(ctx, &rep); err != nil {
			return rep, err
		}
	}

	rep.Duration = time.Since(rep.Started)
	return rep, nil
}

// ---------------------------------------------------------------------------
// Push: fallback -> authoritative, insert-if-absent
// ---------------------------------------------------------------------------

func (r *Reconciler) pushCities(ctx context.Context, rep *Report) error {
	cities, err := r.c.fallback.ListCities(ctx)
	if err != nil {
		return fmt.Errorf("list fallback cities: %w", err)
	}
	for _, fc := range cities {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.pushCity(ctx, fc, rep)
	}
	return nil
}

func (r *Reconciler) pushCity(ctx context.Context, fc *domain.City, rep *Report) {
	unlock := r.c.locks.Lock(cityLockKey(fc.Key))
	defer unlock()

	var pc *domain.City
	err := r.c.onPrimary(ctx, func(ctx context.Context) error {
		var err error
		pc, err = r.c.primary.GetCity(ctx, fc.Key)
		return err
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		err = r.c.onPrimary(ctx, func(ctx context.Context) error { return r.c.primary.CreateCity(ctx, fc) })
		switch {
		case err == nil:
			rep.CitiesPushed++
		case errors.Is(err, domain.ErrAlreadyExists):
		default:
			rep.fail("push city %s: %w", fc.Key, err)
		}
		return
	case err != nil:
		rep.fail("get city %s: %w", fc.Key, err)
		return
	}

	for _, p := range fc.Places {
		if _, ok := pc.Place(p.ID); ok {
			continue
		}
		err := r.c.onPrimary(ctx, func(ctx context.Context) error { return r.c.primary.PutPlace(ctx, fc.Key, p) })
		if err != nil {
			rep.fail("push place %s/%s: %w", fc.Key, p.ID, err)
			continue
		}
		rep.PlacesPushed++
	}
}

func (r *Reconciler) pushCategories(ctx context.Context, rep *Report) error {
	fallback, err := r.c.fallback.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list fallback categories: %w", err)
	}
	primary, err := listPrimary(ctx, r.c, Store.ListCategories)
	if err != nil {
		return fmt.Errorf("list authoritative categories: %w", err)
	}
	known := make(map[int]bool, len(primary))
	for _, c := range primary {
		known[c.ID] = true
	}

	for _, fc := range fallback {
		if known[fc.ID] {
			continue
		}
		err := r.lockedPrimary(ctx, categoryLockKey(fc.ID), func(ctx context.Context) error {
			return r.c.primary.CreateCategory(ctx, fc)
		})
		switch {
		case err == nil:
			rep.CategoriesPushed++
		case errors.Is(err, domain.ErrAlreadyExists):
			rep.Skipped++
			r.log.WarnContext(ctx, "fallback category clashes with authoritative data, kept authoritative",
				slog.Int("id", fc.ID), slog.String("name", fc.Name))
		default:
			rep.fail("push category %d: %w", fc.ID, err)
		}
	}
	return nil
}

func (r *Reconciler) pushAds(ctx context.Context, rep *Report) error {
	fallback, err := r.c.fallback.ListAds(ctx)
	if err != nil {
		return fmt.Errorf("list fallback ads: %w", err)
	}
	primary, err := listPrimary(ctx, r.c, Store.ListAds)
	if err != nil {
		return fmt.Errorf("list authoritative ads: %w", err)
	}
	known := make(map[string]bool, len(primary))
	for _, a := range primary {
		known[a.ID] = true
	}

	for _, fa := range fallback {
		if known[fa.ID] {
			continue
		}
		err := r.lockedPrimary(ctx, adLockKey(fa.ID), func(ctx context.Context) error {
			return r.c.primary.CreateAd(ctx, fa)
		})
		switch {
		case err == nil:
			rep.AdsPushed++
		case errors.Is(err, domain.ErrAlreadyExists):
		default:
			rep.fail("push ad %s: %w", fa.ID, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Pull: authoritative -> fallback, authoritative wins
// ---------------------------------------------------------------------------

func (r *Reconciler) pullCities(ctx context.Context, rep *Report) error {
	cities, err := listPrimary(ctx, r.c, Store.ListCities)
	if err != nil {
		return fmt.Errorf("list authoritative cities: %w", err)
	}
	for _, pc := range cities {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.pullCity(ctx, pc, rep)
	}
	return nil
}

func (r *Reconciler) pullCity(ctx context.Context, pc *domain.City, rep *Report) {
	unlock := r.c.locks.Lock(cityLockKey(pc.Key))
	defer unlock()

	fc, err := r.c.fallback.GetCity(ctx, pc.Key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		rep.fail("get fallback city %s: %w", pc.Key, err)
		return
	}
	if err == nil && sameCity(pc, fc) {
		return
	}
	if err := r.c.fallback.PutCity(ctx, pc); err != nil {
		rep.fail("pull city %s: %w", pc.Key, err)
		return
	}
	rep.Pulled++
}

func (r *Reconciler) pullCategories(ctx context.Context, rep *Report) error {
	primary, err := listPrimary(ctx, r.c, Store.ListCategories)
	if err != nil {
		return fmt.Errorf("list authoritative categories: %w", err)
	}
	fallback, err := r.c.fallback.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list fallback categories: %w", err)
	}

	byID := make(map[int]domain.Category, len(primary))
	for _, c := range primary {
		byID[c.ID] = c
	}
	// Fallback-only categories whose name is now taken by an authoritative
	// category lost the clash during push; drop them so the pull can land.
	for _, fc := range fallback {
		if _, ok := byID[fc.ID]; ok {
			continue
		}
		for _, pc := range primary {
			if domain.SameName(pc.Name, fc.Name) {
				if err := r.c.fallback.DeleteCategory(ctx, fc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
					rep.fail("drop stale category %d: %w", fc.ID, err)
				}
				break
			}
		}
	}

	current := make(map[int]domain.Category, len(fallback))
	for _, fc := range fallback {
		current[fc.ID] = fc
	}
	for _, pc := range primary {
		if fc, ok := current[pc.ID]; ok && sameCategory(pc, fc) {
			continue
		}
		unlock := r.c.locks.Lock(categoryLockKey(pc.ID))
		err := r.c.fallback.PutCategory(ctx, pc)
		unlock()
		if err != nil {
			rep.fail("pull category %d: %w", pc.ID, err)
			continue
		}
		rep.Pulled++
	}
	return nil
}

func (r *Reconciler) pullAds(ctx context.Context, rep *Report) error {
	primary, err := listPrimary(ctx, r.c, Store.ListAds)
	if err != nil {
		return fmt.Errorf("list authoritative ads: %w", err)
	}
	fallback, err := r.c.fallback.ListAds(ctx)
	if err != nil {
		return fmt.Errorf("list fallback ads: %w", err)
	}
	current := make(map[string]domain.Ad, len(fallback))
	for _, fa := range fallback {
		current[fa.ID] = fa
	}
	for _, pa := range primary {
		if fa, ok := current[pa.ID]; ok && sameAd(pa, fa) {
			continue
		}
		unlock := r.c.locks.Lock(adLockKey(pa.ID))
		err := r.c.fallback.PutAd(ctx, pa)
		unlock()
		if err != nil {
			rep.fail("pull ad %s: %w", pa.ID, err)
			continue
		}
		rep.Pulled++
	}
	return nil
}

func (r *Reconciler) lockedPrimary(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	unlock := r.c.locks.Lock(key)
	defer unlock()
	return r.c.onPrimary(ctx, fn)
}

func listPrimary[T any](ctx context.Context, c *Coordinator, list func(Store, context.Context) ([]T, error)) ([]T, error) {
	var out []T
	err := c.onPrimary(ctx, func(ctx context.Context) error {
		var err error
		out, err = list(c.primary, ctx)
		return err
	})
	return out, err
}

// sameCity ignores the city's created_at, which a fallback put never changes.
func sameCity(a, b *domain.City) bool {
	b = b.Clone()
	b.CreatedAt = a.CreatedAt
	ea, errA := domain.EncodeCity(a)
	eb, errB := domain.EncodeCity(b)
	return errA == nil && errB == nil && bytes.Equal(ea, eb)
}

func sameCategory(a, b domain.Category) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Emoji == b.Emoji && a.IsCustom == b.IsCustom
}

func sameAd(a, b domain.Ad) bool {
	return a.ID == b.ID && a.Text == b.Text && a.URL == b.URL && a.Views == b.Views
}

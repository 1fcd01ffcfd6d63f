// Package datasync decides, for every read and write, which of the two
// stores to consult. The authoritative store is tried first; the fallback
// store takes over when it is unreachable and is mirrored after every
// authoritative success. The Reconciler heals divergence in the background.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// AllStores is the store name reported when neither store could serve.
const AllStores = "all"

// Policy parameterises the coordinator's decisions.
type Policy struct {
	// RequirePrimary returns authoritative failures instead of degrading.
	RequirePrimary bool
	// MirrorOnSuccess copies every authoritative write into the fallback.
	MirrorOnSuccess bool
	// BackfillOnGap pushes fallback-only data into the authoritative store
	// when a read finds it there.
	BackfillOnGap bool
}

// DefaultPolicy degrades, mirrors and backfills.
var DefaultPolicy = Policy{MirrorOnSuccess: true, BackfillOnGap: true}

// Options tune timeouts. Zero values disable the corresponding timeout.
type Options struct {
	Policy Policy
	// OpTimeout bounds each authoritative call. Hitting it counts as the
	// store being unreachable.
	OpTimeout time.Duration
	// BackfillTimeout bounds each background backfill.
	BackfillTimeout time.Duration
}

// Outcome records which store took a write.
type Outcome struct {
	// Degraded is set when the write landed in the fallback store only.
	Degraded bool
	// MirrorErr is the *domain.PartialSyncError of a failed mirror. It is
	// informational; the write itself succeeded.
	MirrorErr error
}

// WriteOp is one logical write. Apply runs against the authoritative store
// and, when degrading, against the fallback. Mirror, when set, replaces
// Apply for the post-success copy into the fallback.
type WriteOp struct {
	Key    string
	Apply  func(ctx context.Context, s Store) error
	Mirror func(ctx context.Context, fallback Store) error
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	primary  Store
	fallback Store
	opts     Options
	log      *slog.Logger

	locks  *keyLock
	flight singleflight.Group
	bg     sync.WaitGroup
}

// New creates a coordinator over the two stores.
func New(primary, fallback Store, opts Options, log *slog.Logger) *Coordinator {
	return &Coordinator{
		primary:  primary,
		fallback: fallback,
		opts:     opts,
		log:      log.With("service", "datasync"),
		locks:    newKeyLock(),
	}
}

// Primary is the authoritative store.
func (c *Coordinator) Primary() Store { return c.primary }

// Fallback is the local store.
func (c *Coordinator) Fallback() Store { return c.fallback }

// Wait blocks until background backfills have finished.
func (c *Coordinator) Wait() { c.bg.Wait() }

// Write runs op under the key lock. The authoritative call is decided
// before the fallback is touched.
func (c *Coordinator) Write(ctx context.Context, op WriteOp) (Outcome, error) {
	unlock := c.locks.Lock(op.Key)
	defer unlock()

	err := c.onPrimary(ctx, func(ctx context.Context) error { return op.Apply(ctx, c.primary) })
	if err == nil {
		return c.mirror(ctx, op), nil
	}
	if !c.shouldDegrade(ctx, err) {
		return Outcome{}, err
	}

	c.log.WarnContext(ctx, "authoritative write failed, using fallback",
		slog.String("key", op.Key), slog.String("error", err.Error()))

	ferr := op.Apply(ctx, c.fallback)
	switch {
	case ferr == nil:
		return Outcome{Degraded: true}, nil
	case domain.IsSemantic(ferr) || isContextErr(ferr):
		return Outcome{Degraded: true}, ferr
	default:
		return Outcome{}, bothUnavailable(err, ferr)
	}
}

func (c *Coordinator) mirror(ctx context.Context, op WriteOp) Outcome {
	if !c.opts.Policy.MirrorOnSuccess {
		return Outcome{}
	}
	apply := op.Mirror
	if apply == nil {
		apply = op.Apply
	}
	if err := apply(ctx, c.fallback); err != nil {
		perr := &domain.PartialSyncError{Key: op.Key, Err: err}
		c.log.WarnContext(ctx, "fallback mirror failed", slog.String("key", op.Key), slog.String("error", perr.Error()))
		return Outcome{MirrorErr: perr}
	}
	return Outcome{}
}

// shouldDegrade: semantic answers and caller cancellation never degrade.
func (c *Coordinator) shouldDegrade(ctx context.Context, err error) bool {
	if c.opts.Policy.RequirePrimary || domain.IsSemantic(err) || ctx.Err() != nil {
		return false
	}
	return true
}

func (c *Coordinator) onPrimary(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.opts.OpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.OpTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// readOne implements the single-entity read contract: authoritative first,
// then fallback; "not found" only when no reachable store has the entity.
func readOne[T any](
	ctx context.Context,
	c *Coordinator,
	key string,
	get func(ctx context.Context, s Store) (T, error),
	backfill func(ctx context.Context, primary Store, v T) error,
) (T, error) {
	var zero T

	var v T
	err := c.onPrimary(ctx, func(ctx context.Context) error {
		var err error
		v, err = get(ctx, c.primary)
		return err
	})
	if err == nil {
		return v, nil
	}

	primaryMissing := errors.Is(err, domain.ErrNotFound)
	if !primaryMissing && !c.shouldDegrade(ctx, err) {
		return zero, err
	}

	fv, ferr := get(ctx, c.fallback)
	switch {
	case ferr == nil:
		if primaryMissing {
			c.backfillAsync(ctx, key, func(ctx context.Context) error { return backfill(ctx, c.primary, fv) })
		}
		return fv, nil
	case errors.Is(ferr, domain.ErrNotFound):
		if primaryMissing {
			return zero, err
		}
		return zero, ferr
	case primaryMissing:
		c.log.WarnContext(ctx, "fallback read failed", slog.String("key", key), slog.String("error", ferr.Error()))
		return zero, err
	case domain.IsSemantic(ferr) || isContextErr(ferr):
		return zero, ferr
	default:
		return zero, bothUnavailable(err, ferr)
	}
}

// readList: an authoritative non-empty list wins; an empty one defers to
// the fallback list, whose items are backfilled.
func readList[T any](
	ctx context.Context,
	c *Coordinator,
	kind string,
	list func(ctx context.Context, s Store) ([]T, error),
	keyOf func(T) string,
	backfill func(ctx context.Context, primary Store, v T) error,
) ([]T, error) {
	var items []T
	err := c.onPrimary(ctx, func(ctx context.Context) error {
		var err error
		items, err = list(ctx, c.primary)
		return err
	})
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err != nil && !c.shouldDegrade(ctx, err) {
		return nil, err
	}

	fitems, ferr := list(ctx, c.fallback)
	if ferr != nil {
		if err == nil {
			c.log.WarnContext(ctx, "fallback list failed", slog.String("kind", kind), slog.String("error", ferr.Error()))
			return items, nil
		}
		if isContextErr(ferr) {
			return nil, ferr
		}
		return nil, bothUnavailable(err, ferr)
	}

	if err == nil {
		for _, item := range fitems {
			c.backfillAsync(ctx, keyOf(item), func(ctx context.Context) error { return backfill(ctx, c.primary, item) })
		}
	}
	return fitems, nil
}

// backfillAsync inserts a fallback-only entity into the authoritative store
// without blocking the read. Concurrent backfills of one key collapse.
func (c *Coordinator) backfillAsync(ctx context.Context, key string, fn func(ctx context.Context) error) {
	if !c.opts.Policy.BackfillOnGap {
		return
	}
	base := context.WithoutCancel(ctx)

	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		_, _, _ = c.flight.Do(key, func() (any, error) {
			unlock := c.locks.Lock(key)
			defer unlock()

			ctx := base
			if c.opts.BackfillTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(base, c.opts.BackfillTimeout)
				defer cancel()
			}
			err := fn(ctx)
			switch {
			case err == nil:
				c.log.InfoContext(ctx, "backfilled authoritative store", slog.String("key", key))
			case errors.Is(err, domain.ErrAlreadyExists):
			default:
				c.log.WarnContext(ctx, "backfill failed", slog.String("key", key), slog.String("error", err.Error()))
			}
			return nil, err
		})
	}()
}

// Ping reports the health of both stores.
func (c *Coordinator) Ping(ctx context.Context) (primaryErr, fallbackErr error) {
	primaryErr = c.onPrimary(ctx, c.primary.Ping)
	fallbackErr = c.fallback.Ping(ctx)
	return primaryErr, fallbackErr
}

func bothUnavailable(primaryErr, fallbackErr error) error {
	return domain.Unavailable(AllStores, errors.Join(
		fmt.Errorf("authoritative: %w", primaryErr),
		fmt.Errorf("fallback: %w", fallbackErr),
	))
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

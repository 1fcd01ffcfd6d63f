package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/cityguide-bot/pkg/ctxutil"
)

var (
	// ErrQueueFull is returned when a chat has too many pending inputs.
	ErrQueueFull = errors.New("chat queue full")
	// ErrStopped is returned when the dispatcher is not running.
	ErrStopped = errors.New("dispatcher stopped")
)

// Handler processes the inputs of a chat. Handle is called for one chat at
// a time in arrival order. Cancel is called directly by Dispatch.
type Handler interface {
	Handle(ctx context.Context, ev Event) []Reply
	Cancel(ctx context.Context, ev Event) []Reply
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	QueueSize  int
	WorkerIdle time.Duration
}

// Dispatcher runs one FIFO queue and goroutine per chat so inputs of the
// same chat never interleave while different chats proceed in parallel.
type Dispatcher struct {
	handler Handler
	sender  Sender
	opts    DispatcherOptions
	log     *slog.Logger

	mu      sync.Mutex
	base    context.Context
	stopped bool
	workers map[int64]chan Event
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Zero options get defaults.
func NewDispatcher(log *slog.Logger, handler Handler, sender Sender, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.WorkerIdle <= 0 {
		opts.WorkerIdle = 2 * time.Minute
	}
	return &Dispatcher{
		handler: handler,
		sender:  sender,
		opts:    opts,
		log:     log.With("service", "dispatcher"),
		workers: make(map[int64]chan Event),
	}
}

// Start makes the dispatcher accept inputs until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.base == nil {
		d.base = ctx
	}
	d.mu.Unlock()
}

// Run starts the dispatcher if needed, blocks until ctx is done and then
// waits for the workers.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.Start(ctx)
	<-ctx.Done()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("dispatcher stopped")
	return nil
}

// Dispatch queues ev for its chat. Cancel inputs skip the queue: pending
// inputs of the chat are dropped and the handler's Cancel runs before
// Dispatch returns.
func (d *Dispatcher) Dispatch(ev Event) error {
	if IsCancel(ev) {
		return d.cancel(ev)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.base == nil || d.stopped || d.base.Err() != nil {
		return ErrStopped
	}
	queue, ok := d.workers[ev.ChatID]
	if !ok {
		queue = make(chan Event, d.opts.QueueSize)
		d.workers[ev.ChatID] = queue
		d.wg.Add(1)
		go d.work(d.base, ev.ChatID, queue)
	}
	select {
	case queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Workers returns the number of live chat workers.
func (d *Dispatcher) Workers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}

func (d *Dispatcher) cancel(ev Event) error {
	d.mu.Lock()
	ctx := d.base
	if ctx == nil || d.stopped || ctx.Err() != nil {
		d.mu.Unlock()
		return ErrStopped
	}
	dropped := 0
	if queue, ok := d.workers[ev.ChatID]; ok {
	drain:
		for {
			select {
			case <-queue:
				dropped++
			default:
				break drain
			}
		}
	}
	d.mu.Unlock()

	ctx = ctxutil.WithChatID(ctx, ev.ChatID)
	if dropped > 0 {
		d.log.InfoContext(ctx, "pending inputs dropped on cancel",
			slog.Int64("chat_id", ev.ChatID),
			slog.Int("count", dropped),
		)
	}
	d.send(ctx, ev.ChatID, d.handler.Cancel(ctx, ev))
	return nil
}

func (d *Dispatcher) work(ctx context.Context, chatID int64, queue chan Event) {
	defer d.wg.Done()
	ctx = ctxutil.WithChatID(ctx, chatID)

	idle := time.NewTimer(d.opts.WorkerIdle)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-queue:
			d.handle(ctx, ev)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(d.opts.WorkerIdle)
		case <-idle.C:
			d.mu.Lock()
			if len(queue) == 0 {
				delete(d.workers, chatID)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			idle.Reset(d.opts.WorkerIdle)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "panic while handling input",
				slog.Int64("chat_id", ev.ChatID),
				slog.Any("panic", r),
			)
		}
	}()
	d.send(ctx, ev.ChatID, d.handler.Handle(ctx, ev))
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, replies []Reply) {
	for _, r := range replies {
		if err := d.sender.Send(ctx, chatID, r); err != nil {
			d.log.WarnContext(ctx, "send reply failed",
				slog.Int64("chat_id", chatID),
				slog.String("error", err.Error()),
			)
		}
	}
}

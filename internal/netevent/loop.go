package netevent

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Default loop limits.
const (
	defaultQueueSize   = 32
	defaultMaxHandlers = 16
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	// QueueSize bounds the number of undelivered events. Default: 32.
	QueueSize int

	// MaxHandlers bounds concurrent registrations. Default: 16.
	MaxHandlers int

	// Logger receives handler panics and dispatch traces. Optional.
	Logger Logger
}

// Loop is an in-process event source with a single dispatch goroutine.
//
// Thread Safety:
//   - Post, TryPost, Subscribe and Unsubscribe are safe from any goroutine.
//   - Handlers are only ever called from the goroutine running Run.
type Loop struct {
	queue       chan Event
	maxHandlers int
	logger      Logger

	mu       sync.RWMutex
	handlers []*registration
	nextID   uint64
	closed   bool

	// postMu orders posters against close; dispatch never takes it.
	postMu     sync.RWMutex
	postClosed bool
	stop       chan struct{}

	running atomic.Bool
	done    chan struct{}
}

// registration is the Subscription handed back to callers.
type registration struct {
	id       uint64
	category Category
	eventID  ID
	handler  Handler
	loop     *Loop
	once     sync.Once
}

// NewLoop creates a loop. Call Run to start dispatching.
func NewLoop(opts LoopOptions) *Loop {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	maxHandlers := opts.MaxHandlers
	if maxHandlers <= 0 {
		maxHandlers = defaultMaxHandlers
	}

	return &Loop{
		queue:       make(chan Event, queueSize),
		maxHandlers: maxHandlers,
		logger:      opts.Logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Subscribe registers handler for events in category with the given id.
// Pass AnyID to receive every event in the category.
func (l *Loop) Subscribe(category Category, id ID, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLoopClosed
	}
	if len(l.handlers) >= l.maxHandlers {
		return nil, fmt.Errorf("%w: %d registered", ErrTooManyHandlers, len(l.handlers))
	}

	reg := &registration{
		id:       l.nextID,
		category: category,
		eventID:  id,
		handler:  handler,
		loop:     l,
	}
	l.nextID++
	l.handlers = append(l.handlers, reg)

	return reg, nil
}

// Unsubscribe removes the registration. Calling it again is a no-op.
func (r *registration) Unsubscribe() error {
	r.once.Do(func() {
		r.loop.remove(r.id)
	})
	return nil
}

// remove drops the registration with the given id, keeping order.
func (l *Loop) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, reg := range l.handlers {
		if reg.id == id {
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return
		}
	}
}

// HandlerCount returns the number of active registrations.
func (l *Loop) HandlerCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers)
}

// Post queues ev, waiting for a free slot until ctx is done.
// A nil return means ev will be dispatched, even if Run is stopping.
func (l *Loop) Post(ctx context.Context, ev Event) error {
	l.postMu.RLock()
	defer l.postMu.RUnlock()

	if l.postClosed {
		return ErrLoopClosed
	}

	select {
	case l.queue <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("posting %s: %w", ev.Name(), ctx.Err())
	case <-l.stop:
		return ErrLoopClosed
	}
}

// TryPost queues ev without waiting.
func (l *Loop) TryPost(ev Event) error {
	l.postMu.RLock()
	defer l.postMu.RUnlock()

	if l.postClosed {
		return ErrLoopClosed
	}

	select {
	case l.queue <- ev:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrQueueFull, ev.Name())
	}
}

// Run dispatches queued events until ctx is cancelled.
// Only one Run may be active; later calls return immediately with an error.
// Events accepted before cancellation are still dispatched before Run
// returns. After Run returns the loop is closed for good.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.close(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.queue:
			l.dispatch(ctx, ev)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// close rejects new posts, dispatches whatever was already accepted and
// then releases Done.
func (l *Loop) close(ctx context.Context) {
	close(l.stop)

	// Blocked posters return on stop, so this waits only for in-flight sends.
	l.postMu.Lock()
	l.postClosed = true
	l.postMu.Unlock()

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	for {
		select {
		case ev := <-l.queue:
			l.dispatch(ctx, ev)
		default:
			close(l.done)
			return
		}
	}
}

// dispatch delivers ev to every matching handler in registration order.
func (l *Loop) dispatch(ctx context.Context, ev Event) {
	l.mu.RLock()
	matched := make([]*registration, 0, len(l.handlers))
	for _, reg := range l.handlers {
		if reg.category == ev.Category && (reg.eventID == AnyID || reg.eventID == ev.ID) {
			matched = append(matched, reg)
		}
	}
	l.mu.RUnlock()

	if l.logger != nil {
		l.logger.Debug("dispatching network event",
			"category", string(ev.Category),
			"event", ev.Name(),
			"handlers", len(matched),
		)
	}

	for _, reg := range matched {
		l.invoke(ctx, reg, ev)
	}
}

// invoke calls a single handler with panic recovery.
func (l *Loop) invoke(ctx context.Context, reg *registration, ev Event) {
	defer func() {
		if r := recover(); r != nil && l.logger != nil {
			l.logger.Error("network event handler panic recovered",
				"category", string(ev.Category),
				"event", ev.Name(),
				"panic", r,
			)
		}
	}()

	reg.handler(ctx, ev)
}

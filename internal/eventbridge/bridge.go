package eventbridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
	"github.com/nerrad567/gray-logic-edge/internal/netevent"
)

// Listener is application logic that wants classified events.
// It is called after the tracker has been updated.
type Listener func(ctx context.Context, sig Signal, ev netevent.Event)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithListener adds a listener notified of every recognised event.
func WithListener(l Listener) Option {
	return func(b *Bridge) {
		if l != nil {
			b.listeners = append(b.listeners, l)
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(logger Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// Bridge connects an event source to the tracker's mutators.
//
// Thread Safety:
//   - Register and Close are safe for concurrent use.
//   - Handle is expected to run on the event source's dispatch goroutine.
type Bridge struct {
	source    netevent.Source
	signals   connectivity.Signals
	listeners []Listener
	logger    Logger

	mu   sync.Mutex
	subs []netevent.Subscription
}

// subscribedCategories are the event categories the bridge consumes.
var subscribedCategories = []netevent.Category{
	netevent.CategoryWiFi,
	netevent.CategoryIP,
}

// New creates an unregistered bridge.
func New(source netevent.Source, signals connectivity.Signals, opts ...Option) *Bridge {
	b := &Bridge{
		source:  source,
		signals: signals,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register subscribes to WiFi and IP events.
//
// A second call while registered does nothing. If any subscription fails,
// the ones already taken are released and an error wrapping
// ErrSubscribeFailed is returned.
func (b *Bridge) Register() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subs) > 0 {
		return nil
	}

	subs := make([]netevent.Subscription, 0, len(subscribedCategories))
	for _, category := range subscribedCategories {
		sub, err := b.source.Subscribe(category, netevent.AnyID, b.Handle)
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe() //nolint:errcheck // Best-effort rollback
			}
			return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, category, err)
		}
		subs = append(subs, sub)
	}

	b.subs = subs
	return nil
}

// Registered reports whether the bridge currently holds its subscriptions.
func (b *Bridge) Registered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs) > 0
}

// Close releases the subscriptions. The bridge may be registered again.
func (b *Bridge) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	var firstErr error
	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Handle is the event callback. Unrecognised events are dropped silently.
func (b *Bridge) Handle(ctx context.Context, ev netevent.Event) {
	sig := Classify(ev)
	if sig == SignalNone {
		if b.logger != nil {
			b.logger.Debug("ignoring network event", "event", ev.Name())
		}
		return
	}

	switch sig {
	case SignalLinkConnected:
		b.signals.OnLinkConnected()
	case SignalLinkDisconnected:
		b.signals.OnLinkDisconnected()
	case SignalAddressAcquired:
		b.signals.OnAddressAcquired()
	case SignalAddressLost:
		b.signals.OnAddressLost()
	}

	for _, l := range b.listeners {
		b.notify(ctx, l, sig, ev)
	}
}

// notify calls one listener, isolating panics from the tracker path.
func (b *Bridge) notify(ctx context.Context, l Listener, sig Signal, ev netevent.Event) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("network listener panic recovered",
				"signal", sig.String(),
				"panic", r,
			)
		}
	}()

	l(ctx, sig, ev)
}

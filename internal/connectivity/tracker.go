package connectivity

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Signal identifies which connectivity signal a mutator updated.
type Signal string

const (
	SignalLinkConnected    Signal = "link_connected"
	SignalLinkDisconnected Signal = "link_disconnected"
	SignalAddressAcquired  Signal = "address_acquired"
	SignalAddressLost      Signal = "address_lost"
)

// Readiness answers whether the network is usable.
// Application logic depends on this rather than on *Tracker.
type Readiness interface {
	IsReady() bool
}

// Signals is the write side of the tracker, driven by the event bridge.
type Signals interface {
	OnLinkConnected()
	OnLinkDisconnected()
	OnAddressAcquired()
	OnAddressLost()
}

// Logger is the logging surface used by the tracker.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
}

// Snapshot is a consistent view of both signals.
type Snapshot struct {
	LinkConnected   bool `json:"link_connected"`
	AddressAcquired bool `json:"address_acquired"`
}

// Ready reports whether both signals hold.
func (s Snapshot) Ready() bool {
	return s.LinkConnected && s.AddressAcquired
}

// Change describes a transition caused by one mutator call.
type Change struct {
	Signal Signal
	Before Snapshot
	After  Snapshot
	At     time.Time
}

// ReadyChanged reports whether the transition flipped readiness.
func (c Change) ReadyChanged() bool {
	return c.Before.Ready() != c.After.Ready()
}

// ChangeFunc receives state transitions.
type ChangeFunc func(Change)

// Tracker holds the two connectivity signals.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Watchers are invoked outside the state lock, on the mutator's goroutine.
type Tracker struct {
	mu    sync.RWMutex
	state Snapshot

	watchMu  sync.RWMutex
	watchers map[uint64]ChangeFunc
	nextID   uint64

	logger   Logger
	loggerMu sync.RWMutex

	now func() time.Time
}

// New creates a tracker with both signals cleared.
func New() *Tracker {
	return &Tracker{
		watchers: make(map[uint64]ChangeFunc),
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// SetLogger replaces the logger used for signal notices.
func (t *Tracker) SetLogger(logger Logger) {
	t.loggerMu.Lock()
	t.logger = logger
	t.loggerMu.Unlock()
}

// OnLinkConnected records that the link layer is associated.
func (t *Tracker) OnLinkConnected() {
	t.apply(SignalLinkConnected, func(s *Snapshot) {
		s.LinkConnected = true
	})
}

// OnLinkDisconnected records link loss. The address flag is cleared too.
func (t *Tracker) OnLinkDisconnected() {
	t.apply(SignalLinkDisconnected, func(s *Snapshot) {
		s.LinkConnected = false
		s.AddressAcquired = false
	})
}

// OnAddressAcquired records that a usable address was assigned.
// It does not require the link flag to be set first.
func (t *Tracker) OnAddressAcquired() {
	t.apply(SignalAddressAcquired, func(s *Snapshot) {
		s.AddressAcquired = true
	})
}

// OnAddressLost records that the address was withdrawn.
func (t *Tracker) OnAddressLost() {
	t.apply(SignalAddressLost, func(s *Snapshot) {
		s.AddressAcquired = false
	})
}

// IsReady returns true while the link is connected and an address is held.
func (t *Tracker) IsReady() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Ready()
}

// Snapshot returns both signals read under the same lock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Watch registers fn to receive every state transition.
// Calls that leave the state unchanged are not reported.
// The returned function removes the watcher; it is safe to call more than once.
func (t *Tracker) Watch(fn ChangeFunc) (cancel func()) {
	t.watchMu.Lock()
	id := t.nextID
	t.nextID++
	t.watchers[id] = fn
	t.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.watchMu.Lock()
			delete(t.watchers, id)
			t.watchMu.Unlock()
		})
	}
}

// apply mutates the state under lock, logs the notice and notifies watchers.
func (t *Tracker) apply(sig Signal, mutate func(*Snapshot)) {
	t.mu.Lock()
	before := t.state
	mutate(&t.state)
	after := t.state
	t.mu.Unlock()

	changed := before != after

	t.loggerMu.RLock()
	logger := t.logger
	t.loggerMu.RUnlock()
	if logger != nil {
		logger.Info("connectivity signal",
			"signal", string(sig),
			"changed", changed,
			"ready", after.Ready(),
		)
	}

	if !changed {
		return
	}

	change := Change{Signal: sig, Before: before, After: after, At: t.now()}
	for _, fn := range t.snapshotWatchers() {
		fn(change)
	}
}

// snapshotWatchers copies the watcher set in registration order.
func (t *Tracker) snapshotWatchers() []ChangeFunc {
	t.watchMu.RLock()
	defer t.watchMu.RUnlock()

	ids := make([]uint64, 0, len(t.watchers))
	for id := range t.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	fns := make([]ChangeFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.watchers[id])
	}
	return fns
}

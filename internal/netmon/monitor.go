package netmon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/netevent"
)

const defaultInterval = 2 * time.Second

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Monitor.
type Options struct {
	// Interval between polls. Defaults to 2s.
	Interval time.Duration

	// Lookup resolves the interface. Defaults to SystemLookup.
	Lookup LookupFunc

	Logger Logger
}

// linkState is what the monitor remembers between polls.
type linkState struct {
	present bool
	up      bool
	v4      netip.Addr
	v6      netip.Addr
}

func (s linkState) hasAddress() bool {
	return s.v4.IsValid() || s.v6.IsValid()
}

// Monitor polls an interface and posts connectivity events.
//
// Thread Safety:
//   - Poll and Run must not be called concurrently with each other.
//   - HardwareAddr is safe to call from any goroutine.
type Monitor struct {
	iface    string
	poster   netevent.Poster
	interval time.Duration
	lookup   LookupFunc
	logger   Logger

	prev linkState

	hwMu sync.RWMutex
	hw   net.HardwareAddr
}

// New creates a monitor for the named interface.
func New(iface string, poster netevent.Poster, opts Options) *Monitor {
	m := &Monitor{
		iface:    iface,
		poster:   poster,
		interval: opts.Interval,
		lookup:   opts.Lookup,
		logger:   opts.Logger,
	}
	if m.interval <= 0 {
		m.interval = defaultInterval
	}
	if m.lookup == nil {
		m.lookup = SystemLookup
	}
	return m
}

// Interface returns the monitored interface name.
func (m *Monitor) Interface() string {
	return m.iface
}

// HardwareAddr returns the MAC address seen on the last successful lookup,
// or nil if the interface has never been found.
func (m *Monitor) HardwareAddr() net.HardwareAddr {
	m.hwMu.RLock()
	defer m.hwMu.RUnlock()
	if m.hw == nil {
		return nil
	}
	out := make(net.HardwareAddr, len(m.hw))
	copy(out, m.hw)
	return out
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.pollAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.pollAndLog(ctx)
		}
	}
}

func (m *Monitor) pollAndLog(ctx context.Context) {
	if err := m.Poll(ctx); err != nil && ctx.Err() == nil && m.logger != nil {
		m.logger.Error("network poll failed", "interface", m.iface, "error", err)
	}
}

// Poll performs one lookup and posts the events for any transition since the
// previous poll. A lookup failure other than ErrInterfaceNotFound leaves the
// remembered state untouched.
func (m *Monitor) Poll(ctx context.Context) error {
	cur, err := m.observe()
	if err != nil {
		return err
	}

	events := transitions(m.prev, cur, m.iface)
	for _, ev := range events {
		if err := m.poster.Post(ctx, ev); err != nil {
			// Only the events already posted are reflected in prev, so the
			// next poll retries the rest.
			return fmt.Errorf("posting %s: %w", ev.Name(), err)
		}
		m.prev = advance(m.prev, ev, cur)
	}
	m.prev = cur
	return nil
}

func (m *Monitor) observe() (linkState, error) {
	info, err := m.lookup(m.iface)
	if errors.Is(err, ErrInterfaceNotFound) {
		return linkState{}, nil
	}
	if err != nil {
		return linkState{}, err
	}

	if len(info.HardwareAddr) > 0 {
		m.hwMu.Lock()
		m.hw = info.HardwareAddr
		m.hwMu.Unlock()
	}

	st := linkState{present: true, up: info.Up}
	if !st.up {
		return st, nil
	}
	for _, addr := range info.Addrs {
		if !routable(addr) {
			continue
		}
		if addr.Is4() && !st.v4.IsValid() {
			st.v4 = addr
		}
		if addr.Is6() && !st.v6.IsValid() {
			st.v6 = addr
		}
	}
	return st, nil
}

// transitions lists the events that move prev to cur, link events first
// when coming up and last when going down.
func transitions(prev, cur linkState, iface string) []netevent.Event {
	var events []netevent.Event
	wifi := func(id netevent.ID) {
		events = append(events, netevent.Event{Category: netevent.CategoryWiFi, ID: id})
	}
	ip := func(id netevent.ID, addr netip.Addr) {
		events = append(events, netevent.Event{
			Category: netevent.CategoryIP,
			ID:       id,
			Data:     netevent.AddressInfo{Interface: iface, Address: addr.String()},
		})
	}

	if !prev.up && cur.up {
		if !prev.present {
			wifi(netevent.WiFiStaStart)
		}
		wifi(netevent.WiFiStaConnected)
	}

	if !prev.v4.IsValid() && cur.v4.IsValid() {
		ip(netevent.IPStaGotIP, cur.v4)
	}
	if !prev.v6.IsValid() && cur.v6.IsValid() {
		ip(netevent.IPGotIP6, cur.v6)
	}
	if prev.hasAddress() && !cur.hasAddress() {
		lost := prev.v4
		if !lost.IsValid() {
			lost = prev.v6
		}
		ip(netevent.IPStaLostIP, lost)
	}

	if prev.up && !cur.up {
		wifi(netevent.WiFiStaDisconnected)
	}
	if prev.present && !cur.present {
		wifi(netevent.WiFiStaStop)
	}

	return events
}

// advance applies one posted event to the remembered state.
func advance(st linkState, ev netevent.Event, cur linkState) linkState {
	switch {
	case ev.Category == netevent.CategoryWiFi && ev.ID == netevent.WiFiStaStart:
		st.present = true
	case ev.Category == netevent.CategoryWiFi && ev.ID == netevent.WiFiStaConnected:
		st.present, st.up = true, true
	case ev.Category == netevent.CategoryIP && ev.ID == netevent.IPStaGotIP:
		st.v4 = cur.v4
	case ev.Category == netevent.CategoryIP && ev.ID == netevent.IPGotIP6:
		st.v6 = cur.v6
	case ev.Category == netevent.CategoryIP && ev.ID == netevent.IPStaLostIP:
		st.v4, st.v6 = netip.Addr{}, netip.Addr{}
	case ev.Category == netevent.CategoryWiFi && ev.ID == netevent.WiFiStaDisconnected:
		st.up = false
	case ev.Category == netevent.CategoryWiFi && ev.ID == netevent.WiFiStaStop:
		st.present = false
	}
	return st
}

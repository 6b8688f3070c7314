package netevent

import (
	"context"
	"fmt"
)

// Category groups related events, mirroring an ESP-IDF event base.
type Category string

// Event categories.
const (
	CategoryWiFi Category = "WIFI_EVENT"
	CategoryIP   Category = "IP_EVENT"
)

// ID identifies an event within its category.
type ID int32

// AnyID subscribes to every ID in a category.
const AnyID ID = -1

// WiFi event IDs.
const (
	WiFiReady            ID = 0
	WiFiScanDone         ID = 1
	WiFiStaStart         ID = 2
	WiFiStaStop          ID = 3
	WiFiStaConnected     ID = 4
	WiFiStaDisconnected  ID = 5
	WiFiAuthModeChanged  ID = 6
	WiFiStaBeaconTimeout ID = 43
)

// IP event IDs.
const (
	IPStaGotIP  ID = 0
	IPStaLostIP ID = 1
	IPGotIP6    ID = 2
)

var wifiNames = map[ID]string{
	WiFiReady:            "ready",
	WiFiScanDone:         "scan_done",
	WiFiStaStart:         "sta_start",
	WiFiStaStop:          "sta_stop",
	WiFiStaConnected:     "sta_connected",
	WiFiStaDisconnected:  "sta_disconnected",
	WiFiAuthModeChanged:  "auth_mode_changed",
	WiFiStaBeaconTimeout: "sta_beacon_timeout",
}

var ipNames = map[ID]string{
	IPStaGotIP:  "sta_got_ip",
	IPStaLostIP: "sta_lost_ip",
	IPGotIP6:    "got_ip6",
}

// Event is one notification from the network stack.
// Data is never interpreted by the loop.
type Event struct {
	Category Category
	ID       ID
	Data     any
}

// Name returns a readable name for the event, for logs.
func (e Event) Name() string {
	var names map[ID]string
	switch e.Category {
	case CategoryWiFi:
		names = wifiNames
	case CategoryIP:
		names = ipNames
	}
	if n, ok := names[e.ID]; ok {
		return n
	}
	return fmt.Sprintf("%s/%d", e.Category, e.ID)
}

// AddressInfo is the payload attached to IP events by the interface monitor.
type AddressInfo struct {
	Interface string
	Address   string
}

// Handler receives dispatched events.
// Handlers run on the loop goroutine and must not block for long.
type Handler func(ctx context.Context, ev Event)

// Source is anything that can deliver events to subscribers.
type Source interface {
	Subscribe(category Category, id ID, handler Handler) (Subscription, error)
}

// Subscription releases a handler registration.
// Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe() error
}

// Poster accepts events for dispatch.
type Poster interface {
	Post(ctx context.Context, ev Event) error
}

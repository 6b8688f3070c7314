package eventbridge

import "github.com/nerrad567/gray-logic-edge/internal/netevent"

// Signal is the semantic meaning of a raw network event.
type Signal int

// Recognised signals. SignalNone marks events the bridge ignores.
const (
	SignalNone Signal = iota
	SignalLinkConnected
	SignalLinkDisconnected
	SignalAddressAcquired
	SignalAddressLost
)

// String returns the signal name used in logs.
func (s Signal) String() string {
	switch s {
	case SignalLinkConnected:
		return "link_connected"
	case SignalLinkDisconnected:
		return "link_disconnected"
	case SignalAddressAcquired:
		return "address_acquired"
	case SignalAddressLost:
		return "address_lost"
	default:
		return "none"
	}
}

// Classify maps an event to a signal. Only the category and ID are inspected.
func Classify(ev netevent.Event) Signal {
	switch ev.Category {
	case netevent.CategoryWiFi:
		switch ev.ID {
		case netevent.WiFiStaConnected:
			return SignalLinkConnected
		case netevent.WiFiStaDisconnected, netevent.WiFiStaStop:
			return SignalLinkDisconnected
		}
	case netevent.CategoryIP:
		switch ev.ID {
		case netevent.IPStaGotIP, netevent.IPGotIP6:
			return SignalAddressAcquired
		case netevent.IPStaLostIP:
			return SignalAddressLost
		}
	}
	return SignalNone
}

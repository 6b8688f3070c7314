// Package eventbridge forwards raw network events to the connectivity tracker.
//
// The bridge subscribes to the WiFi and IP categories of a netevent.Source,
// classifies each event into a connectivity signal and invokes the matching
// tracker mutator. Optional listeners (application logic outside this layer)
// receive the same classified signal afterwards.
//
// Classification:
//
//	WIFI_EVENT sta_connected     → link connected
//	WIFI_EVENT sta_disconnected  → link disconnected
//	WIFI_EVENT sta_stop          → link disconnected
//	IP_EVENT   sta_got_ip        → address acquired
//	IP_EVENT   got_ip6           → address acquired
//	IP_EVENT   sta_lost_ip       → address lost
//	anything else                → ignored
//
// Registration is idempotent: a registered bridge ignores further Register
// calls, so each event is delivered to the tracker exactly once. Failure to
// subscribe is returned to the caller without retry; startup code is
// expected to treat it as fatal.
package eventbridge

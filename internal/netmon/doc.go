// Package netmon turns the state of a host network interface into
// netevent events.
//
// A Monitor polls one named interface at a fixed interval and posts an event
// for every transition it observes:
//
//	interface appears up           → WIFI_EVENT sta_start, sta_connected
//	present but down → up          → WIFI_EVENT sta_connected
//	up → down                      → WIFI_EVENT sta_disconnected
//	up → gone                      → WIFI_EVENT sta_disconnected, sta_stop
//	first routable IPv4 address    → IP_EVENT sta_got_ip
//	first routable IPv6 address    → IP_EVENT got_ip6
//	last routable address removed  → IP_EVENT sta_lost_ip
//
// Addresses only count while the interface is up. Loopback, link-local,
// multicast and unspecified addresses are never routable.
//
// The interface lookup is injectable (Options.Lookup) so the state machine can
// be driven without touching the host.
package netmon

// Package connectivity tracks whether the device has a usable network.
//
// Readiness is derived from two independent signals delivered asynchronously
// by the network event source:
//   - link connected: the radio (or wired port) is associated with a network
//   - address acquired: a routable network-layer address has been assigned
//
// The device is ready only while both signals hold. Readiness is never
// stored; it is always computed from the two flags under a single lock.
//
// # Reset Policy
//
// Losing the link clears the address flag as well. After a disconnect and
// reconnect the tracker reports not-ready until a fresh address-acquired
// signal arrives, so a stale address never combines with a new link.
//
// # Thread Safety
//
// A Tracker is safe for concurrent use. The event dispatch goroutine is the
// expected sole writer; any goroutine may read.
//
// # Usage
//
//	tracker := connectivity.New()
//	tracker.SetLogger(log.With("component", "connectivity"))
//
//	cancel := tracker.Watch(func(c connectivity.Change) {
//	    log.Info("network changed", "ready", c.After.Ready())
//	})
//	defer cancel()
//
//	if tracker.IsReady() {
//	    // start MQTT, HTTP check-in, ...
//	}
package connectivity

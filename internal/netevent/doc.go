// Package netevent is the network event source: a bounded, single-worker
// dispatch loop that delivers link-layer and address events to subscribers.
//
// Events carry a Category (WiFi or IP), a numeric ID and an opaque payload.
// The IDs follow the ESP-IDF numbering used by the device firmware so that
// events relayed from a radio module keep their meaning unchanged.
//
// # Subscriptions
//
// Subscribe returns a Subscription capability. Dropping a handler is done
// through that capability only, so a component cannot accidentally remove
// someone else's handler, and re-registering requires releasing first.
//
// # Dispatch
//
// A single goroutine (Run) drains the queue and calls matching handlers in
// registration order. Handler panics are recovered and logged; they never
// stop the loop.
//
//	loop := netevent.NewLoop(netevent.LoopOptions{QueueSize: 32})
//	go loop.Run(ctx)
//
//	sub, err := loop.Subscribe(netevent.CategoryWiFi, netevent.AnyID,
//	    func(ctx context.Context, ev netevent.Event) {
//	        log.Info("wifi event", "id", ev.ID)
//	    })
//	defer sub.Unsubscribe()
//
//	loop.Post(ctx, netevent.Event{Category: netevent.CategoryWiFi, ID: netevent.WiFiStaConnected})
package netevent

// Package api implements the local status API for the edge agent.
//
// This package provides:
//   - Read-only REST endpoints for health, connectivity state and history
//   - A WebSocket hub broadcasting tracker changes on "network.changed"
//   - Middleware stack (request ID, logging, recovery, body limit)
//
// # Endpoints
//
//	GET /api/v1/health             liveness and component status
//	GET /api/v1/metrics            runtime, WebSocket and database statistics
//	GET /api/v1/network/status     {ready, link_connected, address_acquired}
//	GET /api/v1/network/history    journal entries, newest first (?limit=N)
//	GET /api/v1/ws                 WebSocket change stream
//
// # WebSocket Frames
//
//	→ {"type":"subscribe","id":"1","payload":{"channels":["network.changed"]}}
//	← {"type":"ack","id":"1","payload":{"channels":["network.changed"]}}
//	← {"type":"event","channel":"network.changed","payload":{...}}
//	→ {"type":"ping","id":"2"}   ← {"type":"pong","id":"2"}
//
// Every server frame carries an RFC 3339 timestamp.
//
// # Graceful Degradation
//
// The journal and MQTT engine are optional. Without a journal the history
// endpoint answers 503; without MQTT the health report omits it.
//
// The server follows the same lifecycle as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

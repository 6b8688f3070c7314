// Package mqtt is the MQTT engine adapter for the edge agent.
//
// It turns an immutable transport.MQTTConfig into a paho client and owns the
// client lifecycle:
//   - Connection over TLS, verified against the global trust store
//   - Subscriptions that are queued while offline and restored on reconnect
//   - Publishing bounded by the configured buffer size
//   - Last Will and Testament on the device status topic
//   - A status publisher that mirrors the connectivity tracker
//
// # Topics
//
//	graylogic/edge/{client_id}/status    online/offline (retained, LWT)
//	graylogic/edge/{client_id}/network   connectivity snapshot (retained)
//	graylogic/edge/{client_id}/command   inbound requests
//
// # Security Considerations
//
//   - TLS 1.2 is the minimum; there is no plaintext mode
//   - Credentials come from the config and are never logged
//
// # Usage
//
//	client := mqtt.New(cfg.BuildMQTT(clientID), mqtt.Options{QoS: 1, Logger: log})
//	if err := client.Start(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	status := mqtt.NewStatusPublisher(client, clientID, 1, log)
//	cancel := status.Attach(tracker)
//	defer cancel()
package mqtt

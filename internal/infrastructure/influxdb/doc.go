// Package influxdb records connectivity telemetry in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Every tracker
// transition becomes one point:
//
//	connectivity,device_id=<id>,signal=<signal> link_connected=<bool>,address_acquired=<bool>,ready=<bool>
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	cancel := client.Attach(tracker, deviceID)
//	defer cancel()
//
// # Error Handling
//
// Writes are non-blocking and batched (batch_size, flush_interval). Batch
// failures are delivered to the SetOnError callback; connection and health
// check errors are returned directly.
package influxdb

package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
)

// MeasurementConnectivity is the measurement written for tracker changes.
const MeasurementConnectivity = "connectivity"

// Watcher registers for connectivity transitions.
type Watcher interface {
	Watch(fn connectivity.ChangeFunc) (cancel func())
}

// WriteConnectivityChange records one tracker transition.
//
// The write is non-blocking; points are batched and sent asynchronously.
//
//	tags:   device_id, signal
//	fields: link_connected, address_acquired, ready
func (c *Client) WriteConnectivityChange(deviceID string, change connectivity.Change) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(connectivityPoint(deviceID, change))
}

// Attach writes every tracker transition for deviceID until cancel is called.
func (c *Client) Attach(w Watcher, deviceID string) (cancel func()) {
	return w.Watch(func(change connectivity.Change) {
		c.WriteConnectivityChange(deviceID, change)
	})
}

func connectivityPoint(deviceID string, change connectivity.Change) *write.Point {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(
		MeasurementConnectivity,
		map[string]string{
			"device_id": deviceID,
			"signal":    string(change.Signal),
		},
		map[string]interface{}{
			"link_connected":   change.After.LinkConnected,
			"address_acquired": change.After.AddressAcquired,
			"ready":            change.After.Ready(),
		},
		at,
	)
}

// WritePoint writes a custom point stamped with the current time.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

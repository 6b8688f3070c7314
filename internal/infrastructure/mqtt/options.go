package mqtt

import (
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-edge/internal/jsondoc"
	"github.com/nerrad567/gray-logic-edge/internal/transport"
)

const (
	defaultConnectTimeout = 10 * time.Second

	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is in milliseconds.
	defaultDisconnectQuiesce = 1000

	defaultReconnectInitialDelay = time.Second
	defaultReconnectMaxDelay     = time.Minute

	maxQoS = 2
)

// Options tune the engine. Transport policy (TLS, keepalive, buffer size)
// comes from transport.MQTTConfig and cannot be overridden here.
type Options struct {
	// QoS for presence and status messages.
	QoS byte

	// ConnectTimeout bounds Start. Defaults to 10s.
	ConnectTimeout time.Duration

	// AutoReconnect lets paho re-establish a lost connection.
	AutoReconnect bool

	// ReconnectInitialDelay and ReconnectMaxDelay bound paho's backoff.
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration

	Logger Logger
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.ReconnectInitialDelay <= 0 {
		o.ReconnectInitialDelay = defaultReconnectInitialDelay
	}
	if o.ReconnectMaxDelay < o.ReconnectInitialDelay {
		o.ReconnectMaxDelay = max(defaultReconnectMaxDelay, o.ReconnectInitialDelay)
	}
	return o
}

// buildClientOptions maps the transport config onto paho options.
//
// This configures:
//   - ssl:// broker URL and the TLS config from the global trust store
//   - Client ID and credentials
//   - Keepalive
//   - Reconnect backoff
//   - Clean session mode
func buildClientOptions(cfg transport.MQTTConfig, opts Options) *pahomqtt.ClientOptions {
	po := pahomqtt.NewClientOptions()

	po.AddBroker(cfg.BrokerURL())
	po.SetTLSConfig(cfg.TLSConfig())
	po.SetClientID(cfg.ClientID())

	if cfg.Username() != "" {
		po.SetUsername(cfg.Username())
		po.SetPassword(cfg.Password())
	}

	po.SetKeepAlive(cfg.KeepAlive())
	po.SetCleanSession(true)
	po.SetConnectTimeout(opts.ConnectTimeout)

	po.SetAutoReconnect(opts.AutoReconnect)
	po.SetConnectRetryInterval(opts.ReconnectInitialDelay)
	po.SetMaxReconnectInterval(opts.ReconnectMaxDelay)

	return po
}

// configureLWT makes the broker publish a retained offline status if the
// connection drops without a clean disconnect.
func configureLWT(po *pahomqtt.ClientOptions, clientID string, qos byte) {
	po.SetBinaryWill(Topics{}.Status(clientID), statusPayload(clientID, "offline", "unexpected_disconnect"), qos, true)
}

// statusPayload builds the presence message body.
func statusPayload(clientID, status, reason string) []byte {
	doc := jsondoc.NewObject()
	defer doc.Release()

	doc.SetString("status", status)
	doc.SetString("client_id", clientID)
	if reason != "" {
		doc.SetString("reason", reason)
	}
	doc.SetString("timestamp", time.Now().UTC().Format(time.RFC3339))
	return doc.PrintUnformatted()
}

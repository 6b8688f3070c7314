package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Transport is the wire security mode of a connection.
type Transport int

// Transport modes. Only TLS is ever produced by the builders.
const (
	TransportTLS Transport = iota + 1
)

func (t Transport) String() string {
	if t == TransportTLS {
		return "tls"
	}
	return "unknown"
}

// Verification selects how the peer certificate is checked.
type Verification int

// VerifyGlobalTrustStore checks peers against the process-wide CA pool.
const (
	VerifyGlobalTrustStore Verification = iota + 1
)

func (v Verification) String() string {
	if v == VerifyGlobalTrustStore {
		return "global_trust_store"
	}
	return "unknown"
}

// AuthScheme is the HTTP authentication scheme.
type AuthScheme int

// AuthBasic is RFC 7617 Basic authentication.
const (
	AuthBasic AuthScheme = iota + 1
)

func (a AuthScheme) String() string {
	if a == AuthBasic {
		return "basic"
	}
	return "unknown"
}

// Fixed transport policy.
const (
	MQTTTransport     = TransportTLS
	MQTTVerification  = VerifyGlobalTrustStore
	MQTTKeepAlive     = 60 * time.Second
	MQTTBufferSize    = 4096
	MQTTTaskStackSize = 8192

	HTTPAuthScheme = AuthBasic

	// DefaultMQTTPort is the conventional MQTT-over-TLS port. The builder
	// does not apply it; configuration loading does.
	DefaultMQTTPort uint32 = 8883

	tlsMinVersion = tls.VersionTLS12
)

// Kind identifies the variant held by a ClientConfig.
type Kind int

// Config variants.
const (
	KindMQTT Kind = iota + 1
	KindHTTP
)

// ClientConfig is either an MQTTConfig or an HTTPConfig.
// The interface is sealed; switch on Kind or use a type switch.
type ClientConfig interface {
	Kind() Kind
	sealed()
}

// Endpoint is the addressing and credential part of an MQTT config.
type Endpoint struct {
	Host      string
	Port      uint32
	Identity  string
	Principal string
	Secret    string
}

// MQTTConfig is an immutable MQTT broker configuration.
//
// Thread Safety:
//   - Values are read-only after construction and safe to share.
type MQTTConfig struct {
	endpoint Endpoint
}

// BuildMQTTConfig assembles a broker configuration.
//
// Parameters:
//   - host: broker hostname or address, used as the TLS server name
//   - port: broker port (0 is passed through untouched)
//   - clientID: MQTT client identifier
//   - username, password: broker credentials
//
// Returns:
//   - MQTTConfig: the inputs verbatim plus the fixed MQTT policy
func BuildMQTTConfig(host string, port uint32, clientID, username, password string) MQTTConfig {
	return MQTTConfig{
		endpoint: Endpoint{
			Host:      host,
			Port:      port,
			Identity:  clientID,
			Principal: username,
			Secret:    password,
		},
	}
}

// Kind returns KindMQTT.
func (MQTTConfig) Kind() Kind { return KindMQTT }
func (MQTTConfig) sealed()    {}

// Endpoint returns a copy of the addressing and credentials.
func (c MQTTConfig) Endpoint() Endpoint { return c.endpoint }

// Host returns the broker host.
func (c MQTTConfig) Host() string { return c.endpoint.Host }

// Port returns the broker port.
func (c MQTTConfig) Port() uint32 { return c.endpoint.Port }

// ClientID returns the MQTT client identifier.
func (c MQTTConfig) ClientID() string { return c.endpoint.Identity }

// Username returns the broker username.
func (c MQTTConfig) Username() string { return c.endpoint.Principal }

// Password returns the broker password.
func (c MQTTConfig) Password() string { return c.endpoint.Secret }

// Transport returns MQTTTransport.
func (MQTTConfig) Transport() Transport { return MQTTTransport }

// Verification returns MQTTVerification.
func (MQTTConfig) Verification() Verification { return MQTTVerification }

// KeepAlive returns MQTTKeepAlive.
func (MQTTConfig) KeepAlive() time.Duration { return MQTTKeepAlive }

// BufferSize returns MQTTBufferSize.
func (MQTTConfig) BufferSize() int { return MQTTBufferSize }

// TaskStackSize returns MQTTTaskStackSize.
func (MQTTConfig) TaskStackSize() int { return MQTTTaskStackSize }

// BrokerURL returns the paho broker URL, ssl://host:port.
func (c MQTTConfig) BrokerURL() string {
	return "ssl://" + net.JoinHostPort(c.endpoint.Host, strconv.FormatUint(uint64(c.endpoint.Port), 10))
}

// TLSConfig returns a client TLS configuration verified against the global
// trust store. A nil RootCAs means the system roots.
func (c MQTTConfig) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tlsMinVersion,
		RootCAs:    GlobalCAStore(),
		ServerName: c.endpoint.Host,
	}
}

// String describes the config without its secret.
func (c MQTTConfig) String() string {
	return fmt.Sprintf("mqtt{host=%s port=%d client_id=%s user_set=%t}",
		c.endpoint.Host, c.endpoint.Port, c.endpoint.Identity, c.endpoint.Principal != "")
}

// HTTPConfig is an immutable HTTP endpoint configuration.
type HTTPConfig struct {
	url      string
	username string
	password string
}

// BuildHTTPConfig assembles an HTTP configuration. The URL is not parsed.
func BuildHTTPConfig(url, username, password string) HTTPConfig {
	return HTTPConfig{url: url, username: username, password: password}
}

// Kind returns KindHTTP.
func (HTTPConfig) Kind() Kind { return KindHTTP }
func (HTTPConfig) sealed()    {}

// URL returns the endpoint URL as given.
func (c HTTPConfig) URL() string { return c.url }

// Username returns the Basic auth username.
func (c HTTPConfig) Username() string { return c.username }

// Password returns the Basic auth password.
func (c HTTPConfig) Password() string { return c.password }

// AuthScheme returns HTTPAuthScheme.
func (HTTPConfig) AuthScheme() AuthScheme { return HTTPAuthScheme }

// String describes the config without its secret.
func (c HTTPConfig) String() string {
	return fmt.Sprintf("http{url=%s user_set=%t}", c.url, c.username != "")
}

// Package transport assembles immutable connection configurations for the
// MQTT and HTTP engines.
//
// The builders copy their inputs verbatim into value types and fill in the
// fixed transport policy: MQTT always runs over TLS, verified against the
// process-wide trust store, with a 60 second keepalive, a 4096 byte buffer and
// an 8192 byte task stack. HTTP always uses Basic authentication.
//
// Nothing here validates, normalises or performs I/O. An unusable host or URL
// surfaces later, when the engine tries to connect.
//
// Trust store:
//
// InstallGlobalCAStore loads PEM certificates into a pool shared by every
// MQTTConfig built afterwards (and before, since the pool is resolved when
// TLSConfig is called). Until a pool is installed the system roots are used.
//
// Usage:
//
//	cfg := transport.BuildMQTTConfig("broker.local", 8883, "edge-1", "user", "pass")
//	opts.SetTLSConfig(cfg.TLSConfig())
package transport

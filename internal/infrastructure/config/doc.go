// Package config handles loading and validating the edge agent configuration.
//
// This package manages:
//   - Loading configuration from a YAML file
//   - Overriding with GRAYLOGIC_EDGE_* environment variables
//   - Validation of required fields
//   - Resolving the MQTT client identifier from the device MAC address
//
// Security Considerations:
//   - Broker and HTTP passwords should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	clientID := cfg.ResolveClientID(monitor.HardwareAddr())
package config

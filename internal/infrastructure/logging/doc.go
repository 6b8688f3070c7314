// Package logging provides structured logging for the edge agent.
//
// It wraps log/slog so every package logs the same way: JSON in production,
// text while developing, with service and version attached to every record.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	tracker.SetLogger(logger.With("component", "connectivity"))
//
// # Security
//
// Never log broker or HTTP passwords. Log whether a username is set instead:
//
//	logger.Info("connecting", "host", host, "auth", username != "")
package logging

// Package rest is the HTTP engine adapter for the edge agent.
//
// A Client is built from an immutable transport.HTTPConfig. Every request
// carries HTTP Basic credentials from the config, and non-success statuses
// are mapped onto sentinel errors:
//
//	304        ErrNotModified
//	400        ErrBadRequest
//	404        ErrNotFound
//	5xx        ErrServerError
//	other 4xx  ErrUnexpectedStatus
//	transport  ErrRequestFailed
//
// Retries are the caller's concern; the client performs each request once.
//
// # Usage
//
//	client := rest.New(cfg.BuildHTTP())
//	defer client.Close()
//
//	resp, err := client.Get(ctx, "/api/v1/devices/checkin")
//	if errors.Is(err, rest.ErrNotModified) {
//	    // nothing new
//	}
package rest

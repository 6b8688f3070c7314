package rest

import "errors"

// Domain-specific errors for REST operations.
var (
	// ErrRequestFailed is returned when no response was received.
	ErrRequestFailed = errors.New("rest: request failed")

	// ErrNotModified maps HTTP 304.
	ErrNotModified = errors.New("rest: not modified")

	// ErrBadRequest maps HTTP 400.
	ErrBadRequest = errors.New("rest: bad request")

	// ErrNotFound maps HTTP 404.
	ErrNotFound = errors.New("rest: not found")

	// ErrServerError maps any HTTP 5xx.
	ErrServerError = errors.New("rest: server error")

	// ErrUnexpectedStatus covers every other non-2xx status.
	ErrUnexpectedStatus = errors.New("rest: unexpected status")

	// ErrResponseTooLarge is returned when a body exceeds the read limit.
	ErrResponseTooLarge = errors.New("rest: response body too large")
)

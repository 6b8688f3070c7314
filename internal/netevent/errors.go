package netevent

import "errors"

// Sentinel errors for event loop operations.
var (
	// ErrQueueFull is returned by TryPost when the queue has no free slot.
	ErrQueueFull = errors.New("netevent: queue full")

	// ErrTooManyHandlers is returned when the handler limit is reached.
	ErrTooManyHandlers = errors.New("netevent: handler limit reached")

	// ErrLoopClosed is returned once Run has returned.
	ErrLoopClosed = errors.New("netevent: loop closed")

	// ErrAlreadyRunning is returned by a second concurrent call to Run.
	ErrAlreadyRunning = errors.New("netevent: loop already running")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("netevent: handler cannot be nil")
)

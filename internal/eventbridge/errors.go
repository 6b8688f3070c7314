package eventbridge

import "errors"

// ErrSubscribeFailed is returned when the event source refuses a subscription.
// The bridge holds no subscriptions after this error.
var ErrSubscribeFailed = errors.New("eventbridge: subscribe failed")

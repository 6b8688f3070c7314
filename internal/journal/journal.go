package journal

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
)

const (
	// DefaultLimit is used by List when the caller passes a non-positive limit.
	DefaultLimit = 50

	// MaxLimit caps the number of entries returned by List.
	MaxLimit = 500
)

// ErrInvalidRetention is returned by Prune callers that pass a zero cutoff.
var ErrInvalidRetention = errors.New("journal: retention cutoff must be set")

// Entry is one recorded transition.
type Entry struct {
	ID              int64               `json:"id"`
	DeviceID        string              `json:"device_id"`
	Signal          connectivity.Signal `json:"signal"`
	LinkConnected   bool                `json:"link_connected"`
	AddressAcquired bool                `json:"address_acquired"`
	Ready           bool                `json:"ready"`
	ReadyChanged    bool                `json:"ready_changed"`
	OccurredAt      time.Time           `json:"occurred_at"`
}

// Repository stores connectivity transitions.
//
// Implementations must be safe for concurrent use and store UTC timestamps.
type Repository interface {
	// Record persists one change.
	Record(ctx context.Context, change connectivity.Change) error

	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Prune deletes entries that occurred before the cutoff and reports how many.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

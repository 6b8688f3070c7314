package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
)

// timeLayout is fixed-width so stored values sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository implements Repository on the connectivity_events table.
type SQLiteRepository struct {
	db       *sql.DB
	deviceID string
}

// NewSQLiteRepository creates a repository that tags every row with deviceID.
//
// Parameters:
//   - db: Open, migrated SQLite connection
//   - deviceID: Identifier of this device
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB, deviceID string) *SQLiteRepository {
	return &SQLiteRepository{db: db, deviceID: deviceID}
}

// Record inserts a change. A zero change time is replaced with now.
func (r *SQLiteRepository) Record(ctx context.Context, change connectivity.Change) error {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO connectivity_events
		   (device_id, signal, link_connected, address_acquired, ready, ready_changed, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.deviceID,
		string(change.Signal),
		change.After.LinkConnected,
		change.After.AddressAcquired,
		change.After.Ready(),
		change.ReadyChanged(),
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting connectivity event: %w", err)
	}
	return nil
}

// List returns the newest entries first. The limit is clamped to
// DefaultLimit..MaxLimit.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, signal, link_connected, address_acquired, ready, ready_changed, occurred_at
		 FROM connectivity_events
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying connectivity events: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var signal, occurredAt string
		if err := rows.Scan(&e.ID, &e.DeviceID, &signal,
			&e.LinkConnected, &e.AddressAcquired, &e.Ready, &e.ReadyChanged, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning connectivity event: %w", err)
		}
		e.Signal = connectivity.Signal(signal)
		e.OccurredAt, err = time.Parse(timeLayout, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing occurred_at %q: %w", occurredAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connectivity events: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than before.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, ErrInvalidRetention
	}

	res, err := r.db.ExecContext(ctx,
		"DELETE FROM connectivity_events WHERE occurred_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting connectivity events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

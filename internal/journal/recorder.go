package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
)

const (
	recordTimeout   = 5 * time.Second
	recordQueueSize = 64

	defaultPruneInterval = time.Hour
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Watcher is the subset of connectivity.Tracker the recorder needs.
type Watcher interface {
	Watch(fn connectivity.ChangeFunc) (cancel func())
}

// Recorder writes tracker changes to a Repository.
type Recorder struct {
	repo   Repository
	logger Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. A nil logger falls back to slog.Default().
func NewRecorder(repo Repository, logger Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// Attach records every change reported by w from a worker goroutine.
// cancel waits for queued changes to be written.
func (r *Recorder) Attach(w Watcher) (cancel func()) {
	return connectivity.WatchBuffered(w, recordQueueSize, r.Record, func(change connectivity.Change) {
		r.logger.Error("connectivity journal queue full, dropping change",
			"signal", string(change.Signal),
		)
	})
}

// Record stores one change, logging any failure.
func (r *Recorder) Record(change connectivity.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.repo.Record(ctx, change); err != nil {
		r.logger.Error("failed to record connectivity change",
			"signal", string(change.Signal),
			"error", err,
		)
	}
}

// RunRetention deletes entries older than retention every interval until
// ctx is cancelled. A non-positive retention disables pruning.
func (r *Recorder) RunRetention(ctx context.Context, retention, interval time.Duration) {
	if retention <= 0 {
		return
	}
	if interval <= 0 {
		interval = defaultPruneInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.prune(ctx, retention)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.prune(ctx, retention)
		}
	}
}

func (r *Recorder) prune(ctx context.Context, retention time.Duration) {
	n, err := r.repo.Prune(ctx, r.now().Add(-retention))
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("failed to prune connectivity journal", "error", err)
		}
		return
	}
	if n > 0 {
		r.logger.Info("pruned connectivity journal", "deleted", n)
	}
}

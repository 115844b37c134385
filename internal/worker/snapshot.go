package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hyperengineering/cdusync/internal/migration"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/types"
)

// TreeSource provides the live entity tree.
type TreeSource interface {
	Snapshot() *types.Dataset
}

// SnapshotRefresher periodically writes the live tree to the local cache so
// the bulk loader's fallback has recent data, and optionally archives a
// backup document.
type SnapshotRefresher struct {
	source   TreeSource
	cache    snapshot.Cache
	uploader snapshot.Uploader
	interval time.Duration
}

// NewSnapshotRefresher creates a refresher. uploader is optional; a nil
// uploader or a NoopUploader skips archiving.
func NewSnapshotRefresher(source TreeSource, cache snapshot.Cache, uploader snapshot.Uploader, interval time.Duration) *SnapshotRefresher {
	return &SnapshotRefresher{
		source:   source,
		cache:    cache,
		uploader: uploader,
		interval: interval,
	}
}

// Run starts the worker loop. Refreshes immediately on start, then on each
// interval. Respects context cancellation for graceful shutdown.
func (w *SnapshotRefresher) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "snapshot-refresh",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "snapshot-refresh",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// refresh saves one snapshot and logs any errors.
func (w *SnapshotRefresher) refresh(ctx context.Context) {
	start := time.Now()
	d := w.source.Snapshot()

	if err := w.cache.Save(ctx, d); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("snapshot refresh failed",
			"component", "worker",
			"action", "snapshot_failed",
			"error", err,
		)
		return
	}
	slog.Debug("snapshot refreshed",
		"component", "worker",
		"action", "snapshot_saved",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if w.uploader == nil {
		return
	}
	doc, err := migration.Export(d)
	if err != nil {
		slog.Warn("backup encode failed",
			"component", "worker",
			"action", "backup_failed",
			"error", err,
		)
		return
	}
	key, err := w.uploader.Upload(ctx, doc)
	if errors.Is(err, snapshot.ErrNotConfigured) {
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("backup upload failed",
			"component", "worker",
			"action", "backup_failed",
			"error", err,
		)
		return
	}
	slog.Info("backup archived",
		"component", "worker",
		"action", "backup_uploaded",
		"key", key,
		"size_bytes", len(doc),
	)
}

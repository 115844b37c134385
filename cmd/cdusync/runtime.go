package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/cdusync/internal/config"
	"github.com/hyperengineering/cdusync/internal/engine"
	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/store"
)

// runtime is an engine wired to the configured remote store and cache.
type runtime struct {
	engine *engine.Engine
	cache  snapshot.Cache
	db     *store.SQLStore // nil in local mode
}

// openRuntime opens the remote store (remote mode only) and the cached
// snapshot, and builds the engine over them. Call Start on the engine to
// load.
func openRuntime(cfg *config.Config, notifier engine.Notifier) (*runtime, error) {
	cache, err := snapshot.NewCache(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}
	rt := &runtime{cache: cache}

	opts := engine.Options{
		Cache:       cache,
		Notifier:    notifier,
		UserID:      cfg.Session.UserID,
		LoadTimeout: time.Duration(cfg.Loader.Timeout),
	}
	if cfg.Mode == config.ModeRemote {
		db, err := store.Open(cfg.Remote.Driver, cfg.Remote.DSN)
		if err != nil {
			cache.Close()
			return nil, fmt.Errorf("open remote store: %w", err)
		}
		rt.db = db
		opts.Adapter = remote.New(db)
		slog.Info("remote store opened", "driver", cfg.Remote.Driver)
	}

	rt.engine = engine.New(opts)
	return rt, nil
}

// Close releases the store and cache. Queued remote writes must have
// drained first.
func (rt *runtime) Close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}
	if err := rt.cache.Close(); err != nil {
		slog.Error("cache close error", "error", err)
	}
}

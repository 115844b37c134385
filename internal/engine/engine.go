// Package engine is the optimistic mutation engine: the only write surface
// of the entity tree.
//
// Every mutation applies its change to the in-memory tree under a single
// lock and returns immediately. The matching remote write runs afterwards
// in the background. Remote writes run one at a time in the order their
// mutations were applied, so a child insert never reaches the store before
// its parent. A failed remote write is never rolled back locally: it is
// reported through the Notifier and, when the failure leaves local and
// remote state diverged (deletes and reorders), a full reload is queued
// behind the writes already issued.
//
// Add operations always assign a fresh id; an id on the argument is ignored.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/cdusync/internal/config"
	"github.com/hyperengineering/cdusync/internal/loader"
	"github.com/hyperengineering/cdusync/internal/migration"
	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/types"
)

// Options configures an Engine.
type Options struct {
	// Adapter is the remote store. Nil selects local-only mode, where
	// mutations stay in memory until SaveToLocalStorage.
	Adapter *remote.Adapter
	// Cache is the local cached snapshot.
	Cache snapshot.Cache
	// Notifier receives user-visible notifications. Defaults to LogNotifier.
	Notifier Notifier
	// UserID identifies the session for profile and personal notes.
	UserID string
	// LoadTimeout is the bulk load budget. Defaults to loader.DefaultTimeout.
	LoadTimeout time.Duration
}

// Status summarizes the engine for status endpoints.
type Status struct {
	Mode              string `json:"mode"`
	Loading           bool   `json:"loading"`
	HasUnsavedChanges bool   `json:"hasUnsavedChanges"`
	PendingSyncs      int64  `json:"pendingSyncs"`
}

// Engine owns the entity tree.
type Engine struct {
	mu      sync.RWMutex
	data    *types.Dataset
	dirty   bool
	version uint64

	adapter  *remote.Adapter
	loader   *loader.Loader
	cache    snapshot.Cache
	notifier Notifier
	userID   string
	newID    func() string
	now      func() time.Time

	syncMu       sync.Mutex
	tail         chan struct{}
	inflight     sync.WaitGroup
	pending      atomic.Int64
	resyncQueued atomic.Bool
}

// New creates an Engine holding the initial dataset. Call Start to load.
func New(opts Options) *Engine {
	e := &Engine{
		data:     types.InitialDataset(),
		adapter:  opts.Adapter,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		userID:   opts.UserID,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	if e.notifier == nil {
		e.notifier = LogNotifier{}
	}

	lc := loader.Config{
		Cache:   opts.Cache,
		UserID:  opts.UserID,
		Timeout: opts.LoadTimeout,
		OnTimeout: func() {
			e.notify(LevelWarning, "load", "", "Loading is taking longer than expected; showing the data available so far.")
		},
	}
	if opts.Adapter != nil {
		lc.Rows = opts.Adapter.Rows()
	}
	e.loader = loader.New(lc)
	return e
}

// Mode returns config.ModeRemote or config.ModeLocal.
func (e *Engine) Mode() string {
	if e.adapter == nil {
		return config.ModeLocal
	}
	return config.ModeRemote
}

// Start performs the session's initial bulk load.
func (e *Engine) Start(ctx context.Context) *loader.Result {
	return e.Reload(ctx)
}

// Reload replaces the whole tree with a fresh bulk load. Local changes not
// yet persisted are discarded. Cancelling ctx does not abort the load.
func (e *Engine) Reload(ctx context.Context) *loader.Result {
	res := e.loader.Load(context.WithoutCancel(ctx))

	e.mu.Lock()
	e.data = res.Dataset
	e.dirty = false
	e.version++
	e.mu.Unlock()

	if len(res.OrderFixes) > 0 {
		fixes := res.OrderFixes
		e.sync("order repair", false, func(ctx context.Context, a *remote.Adapter) error {
			return persistFixes(ctx, a, fixes)
		})
	}

	switch {
	case e.adapter == nil:
	case res.Source == loader.SourceCache:
		e.notifyFor(ctx, LevelWarning, "load", "", "Remote data unavailable; recovered the local snapshot.")
	case res.Source == loader.SourceInitial:
		e.notifyFor(ctx, LevelInfo, "load", "", "Remote store is empty; starting with default data.")
	}
	return res
}

// Snapshot returns a deep copy of the current tree.
func (e *Engine) Snapshot() *types.Dataset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.Clone()
}

// HasUnsavedChanges reports whether any mutation happened since the last
// save or load.
func (e *Engine) HasUnsavedChanges() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dirty
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	return Status{
		Mode:              e.Mode(),
		Loading:           e.loader.IsLoading(),
		HasUnsavedChanges: e.HasUnsavedChanges(),
		PendingSyncs:      e.pending.Load(),
	}
}

// Wait blocks until every queued remote write, and any reload queued by
// their failures, has finished.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// SetUserName changes the display name of the session user.
func (e *Engine) SetUserName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.UserName = name
	e.touch()
	if e.userID == "" {
		return
	}
	userID := e.userID
	e.sync("profile", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.SaveProfile(ctx, userID, name)
	})
}

// SaveToLocalStorage acknowledges the session's changes. In remote mode
// every mutation is already persisted and this only clears the unsaved
// flag; in local mode it writes the tree to the cached snapshot.
func (e *Engine) SaveToLocalStorage(ctx context.Context) error {
	if e.adapter != nil {
		e.mu.Lock()
		e.dirty = false
		e.mu.Unlock()
		e.notifyFor(ctx, LevelInfo, "save", "", "Changes are saved to the server automatically.")
		return nil
	}
	if e.cache == nil {
		return snapshot.ErrNotConfigured
	}

	e.mu.RLock()
	d := e.data.Clone()
	version := e.version
	e.mu.RUnlock()

	if err := e.cache.Save(ctx, d); err != nil {
		e.notifyFor(ctx, LevelError, "save", "", "Could not save data locally.")
		return fmt.Errorf("save snapshot: %w", err)
	}

	e.mu.Lock()
	if e.version == version {
		e.dirty = false
	}
	e.mu.Unlock()
	e.notifyFor(ctx, LevelSuccess, "save", "", "Data saved.")
	return nil
}

// LoadFromLocalStorage replaces the tree with the cached snapshot. It
// returns false when there is no snapshot.
func (e *Engine) LoadFromLocalStorage(ctx context.Context) (bool, error) {
	if e.cache == nil {
		return false, nil
	}
	d, err := e.cache.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	e.mu.Lock()
	e.data = d
	e.dirty = false
	e.version++
	e.mu.Unlock()
	return true, nil
}

// ExportAllData serializes the current tree as a backup document.
func (e *Engine) ExportAllData() ([]byte, error) {
	return migration.Export(e.Snapshot())
}

// ImportAllData replaces the whole dataset with the backup document doc.
// The document is parsed before anything is deleted. In remote mode the
// import runs after every write already queued and the tree is reloaded
// afterwards; a failed import is not rolled back. Once parsed, the import
// runs to completion even if ctx is cancelled.
func (e *Engine) ImportAllData(ctx context.Context, doc []byte) error {
	ctx = context.WithoutCancel(ctx)
	d, err := migration.Parse(doc)
	if err != nil {
		e.notifyFor(ctx, LevelError, "import", "", "Invalid backup file.")
		return err
	}

	if e.adapter == nil {
		e.mu.Lock()
		e.data = d
		e.touch()
		e.mu.Unlock()
		e.notifyFor(ctx, LevelSuccess, "import", "", "Data imported.")
		return nil
	}

	opID := ulid.Make().String()
	errc := make(chan error, 1)
	e.enqueue(func(context.Context) {
		_, err := migration.NewImporter(e.adapter, e.userID).Import(ctx, d)
		errc <- err
	})
	if err := <-errc; err != nil {
		slog.Error("import failed",
			"component", "engine",
			"action", "import_failed",
			"op_id", opID,
			"request_id", RequestID(ctx),
			"error", err,
		)
		e.notifyFor(ctx, LevelError, "import", opID, "Import failed: "+err.Error())
		e.scheduleResync(opID)
		return err
	}

	e.Reload(ctx)
	e.notifyFor(ctx, LevelSuccess, "import", opID, "Data imported.")
	return nil
}

// touch marks the tree modified. Callers hold e.mu.
func (e *Engine) touch() {
	e.dirty = true
	e.version++
}

func (e *Engine) notify(level Level, op, opID, msg string) {
	e.notifyFor(context.Background(), level, op, opID, msg)
}

// notifyFor raises a notification attributed to the request on ctx.
func (e *Engine) notifyFor(ctx context.Context, level Level, op, opID, msg string) {
	e.notifier.Notify(Notification{
		Level:     level,
		Op:        op,
		OpID:      opID,
		RequestID: RequestID(ctx),
		Message:   msg,
		Time:      e.now(),
	})
}

// sync queues the remote write of one mutation. Callers hold e.mu so the
// queue order matches the order mutations were applied. In local mode it
// does nothing.
func (e *Engine) sync(op string, destructive bool, fn func(ctx context.Context, a *remote.Adapter) error) {
	if e.adapter == nil {
		return
	}
	opID := ulid.Make().String()
	e.enqueue(func(ctx context.Context) {
		start := time.Now()
		err := fn(ctx, e.adapter)
		if err == nil {
			slog.Debug("remote sync complete",
				"component", "engine",
				"action", "remote_sync",
				"op", op,
				"op_id", opID,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return
		}

		slog.Error("remote sync failed",
			"component", "engine",
			"action", "remote_sync_failed",
			"op", op,
			"op_id", opID,
			"destructive", destructive,
			"error", err,
		)
		e.notify(LevelError, op, opID, fmt.Sprintf("Remote %s failed: %v", op, err))
		if destructive {
			e.scheduleResync(opID)
		}
	})
}

// scheduleResync queues a full reload behind the writes already queued.
// At most one reload waits in the queue at a time.
func (e *Engine) scheduleResync(cause string) {
	if !e.resyncQueued.CompareAndSwap(false, true) {
		return
	}
	slog.Info("resync scheduled",
		"component", "engine",
		"action", "resync_scheduled",
		"op_id", cause,
	)
	e.enqueue(func(ctx context.Context) {
		e.resyncQueued.Store(false)
		e.Reload(ctx)
	})
}

// enqueue runs task after every previously queued task has finished.
func (e *Engine) enqueue(task func(ctx context.Context)) {
	e.syncMu.Lock()
	prev := e.tail
	done := make(chan struct{})
	e.tail = done
	e.inflight.Add(1)
	e.pending.Add(1)
	e.syncMu.Unlock()

	go func() {
		defer e.inflight.Done()
		defer e.pending.Add(-1)
		defer close(done)
		if prev != nil {
			<-prev
		}
		task(context.Background())
	}()
}

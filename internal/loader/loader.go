// Package loader populates the entity tree from the remote store.
//
// Every table is read concurrently and reconciled once all reads finish. A
// guard timer releases the loading flag after a fixed budget without
// cancelling the reads. When a read fails, or when the remote store holds no
// header tags and no script categories, the local cached snapshot is used
// instead, and the initial dataset when there is no snapshot either.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// DefaultTimeout is the loading-flag budget.
const DefaultTimeout = 15 * time.Second

// Source names where a loaded dataset came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceCache   Source = "cache"
	SourceInitial Source = "initial"
)

// Result is the outcome of one load.
type Result struct {
	Dataset *types.Dataset
	Source  Source
	// Degraded is set when the loading budget elapsed before the reads
	// finished.
	Degraded bool
	// RemoteErr is the read error that forced a fallback, if any.
	RemoteErr error
	// OrderFixes lists the remote rows renumbered during the load; they
	// still carry their old order in the store.
	OrderFixes []remote.OrderFix
}

// Config configures a Loader.
type Config struct {
	Rows    store.RowStore // nil loads from the cache only
	Cache   snapshot.Cache // nil skips the snapshot fallback
	UserID  string
	Timeout time.Duration
	// OnTimeout is invoked at most once per load when the budget elapses.
	OnTimeout func()
}

// Loader performs bulk loads.
type Loader struct {
	cfg     Config
	loading atomic.Bool
	calls   atomic.Int64
}

// New creates a Loader.
func New(cfg Config) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Loader{cfg: cfg}
}

// IsLoading reports whether a load is in flight and its budget has not
// elapsed.
func (l *Loader) IsLoading() bool {
	return l.loading.Load()
}

// Calls returns how many loads have been started.
func (l *Loader) Calls() int64 {
	return l.calls.Load()
}

// Load reads, reconciles and, if needed, falls back. It never fails: the
// worst case is the initial dataset. ctx is passed to the reads; the budget
// timer does not cancel it.
func (l *Loader) Load(ctx context.Context) *Result {
	l.calls.Add(1)
	l.loading.Store(true)

	var degraded atomic.Bool
	guard := time.AfterFunc(l.cfg.Timeout, func() {
		if l.loading.CompareAndSwap(true, false) {
			degraded.Store(true)
			slog.Warn("load budget elapsed, showing best available data",
				"component", "loader",
				"action", "load_timeout",
				"timeout", l.cfg.Timeout,
			)
			if l.cfg.OnTimeout != nil {
				l.cfg.OnTimeout()
			}
		}
	})

	res := l.load(ctx)

	guard.Stop()
	l.loading.Store(false)
	res.Degraded = degraded.Load()
	return res
}

func (l *Loader) load(ctx context.Context) *Result {
	start := time.Now()

	if l.cfg.Rows == nil {
		return l.fallback(ctx, nil)
	}

	rs, err := Fetch(ctx, l.cfg.Rows)
	if err != nil {
		slog.Warn("remote load failed, falling back",
			"component", "loader",
			"action", "load_failed",
			"error", err,
		)
		return l.fallback(ctx, err)
	}

	d := remote.Reconcile(rs, l.cfg.UserID)
	if d.IsEmpty() {
		slog.Warn("remote store is empty, falling back",
			"component", "loader",
			"action", "remote_empty",
		)
		return l.fallback(ctx, nil)
	}

	fixes := remote.NormalizeOrders(d)
	slog.Info("remote load complete",
		"component", "loader",
		"action", "load_complete",
		"order_fixes", len(fixes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Dataset: d, Source: SourceRemote, OrderFixes: fixes}
}

func (l *Loader) fallback(ctx context.Context, cause error) *Result {
	res := &Result{RemoteErr: cause}
	if l.cfg.Cache != nil {
		d, err := l.cfg.Cache.Load(ctx)
		switch {
		case err == nil:
			res.Dataset, res.Source = d, SourceCache
			slog.Info("loaded cached snapshot",
				"component", "loader",
				"action", "cache_fallback",
			)
			return res
		case errors.Is(err, snapshot.ErrNoSnapshot):
		default:
			slog.Warn("cached snapshot unreadable",
				"component", "loader",
				"action", "cache_failed",
				"error", err,
			)
		}
	}
	res.Dataset, res.Source = types.InitialDataset(), SourceInitial
	slog.Info("starting from initial dataset",
		"component", "loader",
		"action", "initial_dataset",
	)
	return res
}

// Fetch reads every table concurrently and waits for all of them. Reads
// are not cancelled when one fails; the first error is returned after all
// have finished.
func Fetch(ctx context.Context, rows store.RowStore) (remote.RowSet, error) {
	rs := make(remote.RowSet, len(remote.Tables))
	var mu sync.Mutex
	var g errgroup.Group

	for _, table := range remote.Tables {
		g.Go(func() error {
			got, err := rows.Select(ctx, table)
			if err != nil {
				return fmt.Errorf("select %s: %w", table, err)
			}
			mu.Lock()
			rs[table] = got
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rs, nil
}

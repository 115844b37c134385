// Package storetest provides an in-memory store.RowStore for tests, with
// per-operation failure injection and call counting.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperengineering/cdusync/internal/store"
)

// Op names a RowStore method, for failure injection and call counting.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpSelect Op = "select"
)

var _ store.RowStore = (*MemStore)(nil)

type opKey struct {
	op    Op
	table string
}

// MemStore is an in-memory store.RowStore. Rows keep insertion order. It does
// not enforce foreign keys, so orphaned rows can be staged for reconciliation.
// Failures can be injected per operation and table.
type MemStore struct {
	mu       sync.Mutex
	tables   map[string][]store.Row
	failures map[opKey]error
	calls    map[opKey]int
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		tables:   make(map[string][]store.Row),
		failures: make(map[opKey]error),
		calls:    make(map[opKey]int),
	}
}

// FailOn makes every subsequent op on table return err. An empty table
// matches every table.
func (m *MemStore) FailOn(op Op, table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[opKey{op, table}] = err
}

// ClearFailures removes every injected failure.
func (m *MemStore) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[opKey]error)
}

// Calls returns how many times op was invoked on table.
func (m *MemStore) Calls(op Op, table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[opKey{op, table}]
}

// Rows returns a copy of every row in table.
func (m *MemStore) Rows(table string) []store.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRows(m.tables[table])
}

// enter records the call and returns the injected failure, if any.
// Callers must hold m.mu.
func (m *MemStore) enter(op Op, table string) error {
	m.calls[opKey{op, table}]++
	if err, ok := m.failures[opKey{op, table}]; ok {
		return err
	}
	if err, ok := m.failures[opKey{op, ""}]; ok {
		return err
	}
	return nil
}

func (m *MemStore) Insert(_ context.Context, table string, row store.Row) error {
	if err := store.CheckRow(table, row); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpInsert, table); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	id := row.String("id")
	for _, r := range m.tables[table] {
		if r.String("id") == id {
			return fmt.Errorf("insert %s %s: %w", table, id, store.ErrDuplicateID)
		}
	}
	m.tables[table] = append(m.tables[table], cloneRow(row))
	return nil
}

func (m *MemStore) Update(_ context.Context, table, id string, row store.Row) error {
	if err := store.CheckRow(table, row); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpUpdate, table); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	for _, r := range m.tables[table] {
		if r.String("id") != id {
			continue
		}
		for k, v := range row {
			r[k] = v
		}
		return nil
	}
	return fmt.Errorf("update %s %s: %w", table, id, store.ErrNotFound)
}

func (m *MemStore) Delete(_ context.Context, table string, filters ...store.Filter) error {
	if err := store.CheckFilters(table, filters); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpDelete, table); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	kept := m.tables[table][:0]
	for _, r := range m.tables[table] {
		if !matches(r, filters) {
			kept = append(kept, r)
		}
	}
	m.tables[table] = kept
	return nil
}

func (m *MemStore) Select(_ context.Context, table string, filters ...store.Filter) ([]store.Row, error) {
	if err := store.CheckFilters(table, filters); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSelect, table); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	var out []store.Row
	for _, r := range m.tables[table] {
		if matches(r, filters) {
			out = append(out, cloneRow(r))
		}
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }

func matches(r store.Row, filters []store.Filter) bool {
	for _, f := range filters {
		v, ok := r[f.Column]
		if !ok || v == nil {
			return false
		}
		if (v == f.Value) == f.Negate {
			return false
		}
	}
	return true
}

func cloneRow(r store.Row) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func cloneRows(rows []store.Row) []store.Row {
	out := make([]store.Row, len(rows))
	for i, r := range rows {
		out[i] = cloneRow(r)
	}
	return out
}

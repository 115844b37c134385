package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/cdusync/internal/order"
	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

// orderWrite is one sibling whose persisted order must change.
type orderWrite struct {
	id string
	n  int
}

func categoryID(c types.Category) string             { return c.ID }
func scriptID(s types.Script) string                 { return s.ID }
func headerTagID(h types.HeaderTag) string           { return h.ID }
func recadoCategoryID(c types.RecadoCategory) string { return c.ID }
func infoTagID(t types.InfoTag) string               { return t.ID }

// orderWrites lists the siblings of after whose order differs from before.
// skip names an element persisted by its own write.
func orderWrites[T order.Sortable[T]](before map[string]int, after []T, id func(T) string, skip string) []orderWrite {
	var out []orderWrite
	for _, i := range order.Changed(before, after, id) {
		if id(after[i]) == skip {
			continue
		}
		n, _, _ := after[i].SortKey()
		out = append(out, orderWrite{id: id(after[i]), n: n})
	}
	return out
}

// persistOrder writes every order change in parallel and returns the first
// failure. Writes that succeeded are not undone.
func persistOrder(ctx context.Context, a *remote.Adapter, table string, writes []orderWrite) error {
	var g errgroup.Group
	for _, w := range writes {
		g.Go(func() error {
			return a.SetOrder(ctx, table, w.id, w.n)
		})
	}
	return g.Wait()
}

// persistFixes writes back the orders a load renumbered.
func persistFixes(ctx context.Context, a *remote.Adapter, fixes []remote.OrderFix) error {
	var g errgroup.Group
	for _, f := range fixes {
		g.Go(func() error {
			return a.SetOrder(ctx, f.Table, f.ID, f.Order)
		})
	}
	return g.Wait()
}

// appendOrdered appends item (giving it order N+1 unless it already carries
// one) and reindexes the siblings.
func appendOrdered[T order.Sortable[T]](items []T, item T, id func(T) string) ([]T, T, []orderWrite) {
	before := order.Snapshot(items, id)
	if _, ok, _ := item.SortKey(); !ok {
		item = item.WithOrder(len(items) + 1)
	}
	next := make([]T, 0, len(items)+1)
	next = append(next, items...)
	next = order.Reindex(append(next, item))
	for _, it := range next {
		if id(it) == id(item) {
			item = it
			break
		}
	}
	return next, item, orderWrites(before, next, id, id(item))
}

// removeOrdered drops the element with the given id and reindexes the
// siblings. ok is false when no element matched.
func removeOrdered[T order.Sortable[T]](items []T, target string, id func(T) string) (next []T, writes []orderWrite, ok bool) {
	before := order.Snapshot(items, id)
	next = make([]T, 0, len(items))
	for _, it := range items {
		if id(it) == target {
			ok = true
			continue
		}
		next = append(next, it)
	}
	if !ok {
		return items, nil, false
	}
	next = order.Reindex(next)
	return next, orderWrites(before, next, id, ""), true
}

// replaceOrdered swaps in updated. When reindex is set the siblings are
// renumbered; the updated element itself is excluded from the writes.
func replaceOrdered[T order.Sortable[T]](items []T, updated T, id func(T) string, reindex bool) ([]T, T, []orderWrite) {
	before := order.Snapshot(items, id)
	next := make([]T, len(items))
	copy(next, items)
	for i := range next {
		if id(next[i]) == id(updated) {
			next[i] = updated
		}
	}
	if !reindex {
		return next, updated, nil
	}
	next = order.Reindex(next)
	for _, it := range next {
		if id(it) == id(updated) {
			updated = it
		}
	}
	return next, updated, orderWrites(before, next, id, id(updated))
}

// moveOrdered relocates one element and renumbers every sibling by position.
func moveOrdered[T order.Sortable[T]](items []T, from, to int, id func(T) string) ([]T, []orderWrite, error) {
	before := order.Snapshot(items, id)
	next, err := order.Move(items, from, to)
	if err != nil {
		return nil, nil, err
	}
	next = order.Renumber(next)
	return next, orderWrites(before, next, id, ""), nil
}

// indexOf returns the position of the element with the given id, or -1.
func indexOf[T any](items []T, target string, id func(T) string) int {
	for i, it := range items {
		if id(it) == target {
			return i
		}
	}
	return -1
}

// without returns a copy of items minus the element with the given id.
func without[T any](items []T, target string, id func(T) string) ([]T, bool) {
	i := indexOf(items, target, id)
	if i < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}

// replaced returns a copy of items with the element at i set to v.
func replaced[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}

// appended returns a copy of items with v added.
func appended[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, v)
}

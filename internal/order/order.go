// Package order keeps sibling collections contiguously numbered.
//
// Ordered siblings always carry order values exactly 1..N. Reindex derives
// that numbering from whatever orders are present (missing orders sort last,
// ties fall back to a pt-BR collation of the title); Move relocates one
// element and Renumber writes positional orders back.
package order

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrIndexOutOfRange is returned by Move for an index outside the slice.
var ErrIndexOutOfRange = errors.New("index out of range")

// Sortable is implemented by entities that carry an optional sibling order.
type Sortable[T any] interface {
	// SortKey reports the current order (ok is false when unset) and the
	// title used as tie-breaker.
	SortKey() (order int, ok bool, title string)
	// WithOrder returns a copy with the order replaced.
	WithOrder(n int) T
}

// Locale is the collation used for title tie-breaks.
var Locale = language.BrazilianPortuguese

// Reindex returns a new slice sorted by existing order (unset last), ties
// broken by title, and renumbered 1..N. The input is not modified.
// Reindex(Reindex(x)) equals Reindex(x).
func Reindex[T Sortable[T]](items []T) []T {
	return Renumber(Sort(items))
}

// Sort returns a new slice sorted the way Reindex sorts, without touching
// the stored orders.
func Sort[T Sortable[T]](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	// collate.Collator is not safe for concurrent use.
	c := collate.New(Locale)
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok, ti := out[i].SortKey()
		oj, jok, tj := out[j].SortKey()
		switch {
		case iok && !jok:
			return true
		case !iok && jok:
			return false
		case iok && jok && oi != oj:
			return oi < oj
		}
		return c.CompareString(ti, tj) < 0
	})
	return out
}

// Renumber assigns order = position+1 in place and returns items.
func Renumber[T Sortable[T]](items []T) []T {
	for i := range items {
		items[i] = items[i].WithOrder(i + 1)
	}
	return items
}

// Move returns a new slice with the element at from relocated to to. The
// relative order of every other element is preserved. Orders are not
// rewritten; call Renumber to persist positions.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("move %d -> %d in %d items: %w", from, to, n, ErrIndexOutOfRange)
	}

	out := make([]T, 0, n)
	moved := items[from]
	for i, it := range items {
		if i == from {
			continue
		}
		out = append(out, it)
	}
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}

// Changed returns the indexes of after whose order differs from the one
// recorded in before, matched by id. Elements absent from before count as
// changed.
func Changed[T Sortable[T]](before map[string]int, after []T, id func(T) string) []int {
	var idx []int
	for i, it := range after {
		n, _, _ := it.SortKey()
		if prev, ok := before[id(it)]; !ok || prev != n {
			idx = append(idx, i)
		}
	}
	return idx
}

// Snapshot records the current order of each sibling keyed by id, for use
// with Changed.
func Snapshot[T Sortable[T]](items []T, id func(T) string) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		n, ok, _ := it.SortKey()
		if !ok {
			n = -1
		}
		m[id(it)] = n
	}
	return m
}

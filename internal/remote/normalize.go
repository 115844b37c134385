package remote

import (
	"github.com/hyperengineering/cdusync/internal/order"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// OrderFix is a stored row whose order differs from its position after a
// load renumbered its siblings.
type OrderFix struct {
	Table string
	ID    string
	Order int
}

// NormalizeOrders renumbers every ordered sibling list of a freshly
// reconciled tree to 1..N, keeping the sorted sequence, and returns the rows
// whose stored order was gapped, duplicated or missing.
func NormalizeOrders(d *types.Dataset) []OrderFix {
	var fixes []OrderFix
	catID := func(c types.Category) string { return c.ID }

	fixes = renumber(fixes, store.TableHeaderTags, d.HeaderTagData, func(h types.HeaderTag) string { return h.ID })
	for view := range d.ScriptCategories {
		fixes = renumber(fixes, store.TableScriptCategories, d.ScriptCategories[view], catID)
	}
	for view := range d.ScriptData {
		for cat := range d.ScriptData[view] {
			fixes = renumber(fixes, store.TableScripts, d.ScriptData[view][cat], func(s types.Script) string { return s.ID })
		}
	}
	fixes = renumber(fixes, store.TableExamCategories, d.ExamCategories, catID)
	for view := range d.ContactCategories {
		fixes = renumber(fixes, store.TableContactCategories, d.ContactCategories[view], catID)
	}
	for view := range d.ValueTableCategories {
		fixes = renumber(fixes, store.TableValueTableCategories, d.ValueTableCategories[view], catID)
	}
	fixes = renumber(fixes, store.TableRecadoCategories, d.RecadoCategories, func(c types.RecadoCategory) string { return c.ID })
	tagID := func(t types.InfoTag) string { return t.ID }
	fixes = renumber(fixes, store.TableInfoTags, d.InfoTags, tagID)
	fixes = renumber(fixes, store.TableInfoTags, d.EstomaterapiaTags, tagID)
	return fixes
}

// renumber rewrites the orders of the already sorted items in place and
// appends a fix for each one that moved.
func renumber[T order.Sortable[T]](fixes []OrderFix, table string, items []T, id func(T) string) []OrderFix {
	for i := range items {
		if n, ok, _ := items[i].SortKey(); ok && n == i+1 {
			continue
		}
		items[i] = items[i].WithOrder(i + 1)
		fixes = append(fixes, OrderFix{Table: table, ID: id(items[i]), Order: i + 1})
	}
	return fixes
}

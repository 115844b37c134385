// Package remote maps entity mutations onto remote table writes and maps
// remote rows back into the entity tree.
//
// Every Insert/Update/Delete function issues the writes for one entity and
// returns the first error; nothing is retried. Deleting a parent removes its
// children first so foreign keys hold at every step.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// Adapter writes domain entities to a RowStore.
type Adapter struct {
	rows store.RowStore
	now  func() time.Time
}

// New wraps rows in an Adapter.
func New(rows store.RowStore) *Adapter {
	return &Adapter{rows: rows, now: time.Now}
}

// Rows exposes the underlying store.
func (a *Adapter) Rows() store.RowStore {
	return a.rows
}

// CategoryKind selects one of the view-partitioned (or, for exams, global)
// category domains that share the Category shape.
type CategoryKind int

const (
	ScriptCategories CategoryKind = iota
	ExamCategories
	ContactCategories
	ValueTableCategories
)

func (k CategoryKind) String() string {
	switch k {
	case ScriptCategories:
		return "script"
	case ExamCategories:
		return "exam"
	case ContactCategories:
		return "contact"
	case ValueTableCategories:
		return "value_table"
	default:
		return fmt.Sprintf("CategoryKind(%d)", int(k))
	}
}

// Table returns the category table for k.
func (k CategoryKind) Table() string {
	switch k {
	case ScriptCategories:
		return store.TableScriptCategories
	case ExamCategories:
		return store.TableExamCategories
	case ContactCategories:
		return store.TableContactCategories
	default:
		return store.TableValueTableCategories
	}
}

func (k CategoryKind) childTable() string {
	switch k {
	case ScriptCategories:
		return store.TableScripts
	case ExamCategories:
		return store.TableExams
	case ContactCategories:
		return store.TableContactGroups
	default:
		return store.TableValueTableItems
	}
}

// InsertCategory writes a new category. view is ignored for exam
// categories, which are not partitioned.
func (a *Adapter) InsertCategory(ctx context.Context, k CategoryKind, view string, c types.Category) error {
	if k == ExamCategories {
		view = ""
	}
	return a.rows.Insert(ctx, k.Table(), categoryRow(view, c))
}

// UpdateCategory writes name, color and order of c.
func (a *Adapter) UpdateCategory(ctx context.Context, k CategoryKind, c types.Category) error {
	return a.rows.Update(ctx, k.Table(), c.ID, store.Row{
		"name":  c.Name,
		"color": c.Color,
		"order": orderValue(c.Order),
	})
}

// DeleteCategory removes a category and everything it owns.
func (a *Adapter) DeleteCategory(ctx context.Context, k CategoryKind, id string) error {
	if k == ContactCategories {
		groups, err := a.rows.Select(ctx, store.TableContactGroups, store.Eq("category_id", id))
		if err != nil {
			return fmt.Errorf("list contact groups: %w", err)
		}
		for _, g := range groups {
			if err := a.rows.Delete(ctx, store.TableContactPoints, store.Eq("group_id", g.String("id"))); err != nil {
				return fmt.Errorf("delete contact points: %w", err)
			}
		}
	}
	if err := a.rows.Delete(ctx, k.childTable(), store.Eq("category_id", id)); err != nil {
		return fmt.Errorf("delete %s children: %w", k, err)
	}
	if err := a.rows.Delete(ctx, k.Table(), store.Eq("id", id)); err != nil {
		return fmt.Errorf("delete %s category: %w", k, err)
	}
	return nil
}

// SetOrder persists one sibling's position.
func (a *Adapter) SetOrder(ctx context.Context, table, id string, n int) error {
	return a.rows.Update(ctx, table, id, store.Row{"order": n})
}

// SaveProfile stores the display name of userID, creating the profile row
// when it does not exist yet.
func (a *Adapter) SaveProfile(ctx context.Context, userID, displayName string) error {
	now := a.now().UTC().Format(time.RFC3339)
	err := a.rows.Update(ctx, store.TableProfiles, userID, store.Row{
		"display_name": displayName,
		"updated_at":   now,
	})
	if errors.Is(err, store.ErrNotFound) {
		return a.rows.Insert(ctx, store.TableProfiles, store.Row{
			"id":           userID,
			"display_name": displayName,
			"updated_at":   now,
		})
	}
	return err
}

// ClearTable deletes every row of table. It first tries a targeted delete of
// every row whose id differs from the nil UUID and falls back to an
// unconditional delete when that fails.
func (a *Adapter) ClearTable(ctx context.Context, table string) (fellBack bool, err error) {
	if err := a.rows.Delete(ctx, table, store.Neq("id", NilUUID)); err == nil {
		return false, nil
	}
	if err := a.rows.Delete(ctx, table); err != nil {
		return true, fmt.Errorf("clear %s: %w", table, err)
	}
	return true, nil
}

// NilUUID never names a real row.
const NilUUID = "00000000-0000-0000-0000-000000000000"

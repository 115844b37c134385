package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperengineering/cdusync/internal/store"
)

func TestMemStore_FailureInjection(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	boom := errors.New("boom")

	m.FailOn(OpDelete, store.TableScripts, boom)

	if err := m.Delete(ctx, store.TableScripts, store.Eq("id", "s1")); !errors.Is(err, boom) {
		t.Errorf("Delete error = %v, want boom", err)
	}
	if err := m.Delete(ctx, store.TableExams); err != nil {
		t.Errorf("Delete on other table failed: %v", err)
	}
	if got := m.Calls(OpDelete, store.TableScripts); got != 1 {
		t.Errorf("Calls = %d, want 1", got)
	}

	m.ClearFailures()
	if err := m.Delete(ctx, store.TableScripts); err != nil {
		t.Errorf("Delete after ClearFailures failed: %v", err)
	}
}

func TestMemStore_FailureOnEveryTable(t *testing.T) {
	m := NewMemStore()
	boom := errors.New("offline")

	m.FailOn(OpSelect, "", boom)

	if _, err := m.Select(context.Background(), store.TableHeaderTags); !errors.Is(err, boom) {
		t.Errorf("Select error = %v, want offline", err)
	}
}

func TestMemStore_AllowsOrphans(t *testing.T) {
	m := NewMemStore()
	if err := m.Insert(context.Background(), store.TableContactGroups, store.Row{"id": "g2", "category_id": "cX", "name": "G"}); err != nil {
		t.Fatalf("Insert orphan failed: %v", err)
	}
	if got := m.Rows(store.TableContactGroups); len(got) != 1 {
		t.Errorf("rows = %d, want 1", len(got))
	}
}

func TestMemStore_DuplicateID(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	_ = m.Insert(ctx, store.TableNotices, store.Row{"id": "n1", "title": "A"})

	if err := m.Insert(ctx, store.TableNotices, store.Row{"id": "n1", "title": "B"}); !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("duplicate Insert error = %v, want ErrDuplicateID", err)
	}
}

func TestMemStore_UpdateAndFilters(t *testing.T) {
	// Given: categories in two views
	m := NewMemStore()
	ctx := context.Background()
	for _, r := range []store.Row{
		{"id": "c1", "view_type": "GERAL", "name": "A", "order": 1},
		{"id": "c2", "view_type": "UNIMED", "name": "B", "order": 1},
	} {
		if err := m.Insert(ctx, store.TableScriptCategories, r); err != nil {
			t.Fatal(err)
		}
	}

	// When: one is renamed and the other view is deleted
	if err := m.Update(ctx, store.TableScriptCategories, "c1", store.Row{"name": "A2"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := m.Delete(ctx, store.TableScriptCategories, store.Neq("view_type", "GERAL")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Then: only the renamed GERAL category remains
	rows := m.Rows(store.TableScriptCategories)
	if len(rows) != 1 || rows[0].String("name") != "A2" {
		t.Errorf("rows = %+v", rows)
	}
	if err := m.Update(ctx, store.TableScriptCategories, "c2", store.Row{"name": "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update of deleted row error = %v, want ErrNotFound", err)
	}
}

func TestMemStore_RejectsUnknownColumns(t *testing.T) {
	m := NewMemStore()

	err := m.Insert(context.Background(), store.TableNotices, store.Row{"id": "n1", "headline": "x"})

	if !errors.Is(err, store.ErrUnknownColumn) {
		t.Errorf("Insert error = %v, want ErrUnknownColumn", err)
	}
}

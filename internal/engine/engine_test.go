package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperengineering/cdusync/internal/config"
	"github.com/hyperengineering/cdusync/internal/loader"
	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/storetest"
	"github.com/hyperengineering/cdusync/internal/types"
)

const view = "UNIMED"

type fixture struct {
	e    *Engine
	m    *storetest.MemStore
	feed *Feed
}

// seeded builds a remote-mode engine over a memory store holding one script
// category with three scripts, then performs the initial load.
func seeded(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := remote.New(m)
	must(t, a.InsertHeaderTag(ctx, types.HeaderTag{ID: "h1", Tag: "CDU", Title: "Centro", Order: types.Ptr(1)}))
	must(t, a.InsertCategory(ctx, remote.ScriptCategories, view, types.Category{ID: "c1", Name: "Abertura", Order: types.Ptr(1)}))
	must(t, a.InsertScript(ctx, "c1", types.Script{ID: "s1", Title: "Bom dia", Order: types.Ptr(1)}))
	must(t, a.InsertScript(ctx, "c1", types.Script{ID: "s2", Title: "Boa tarde", Order: types.Ptr(2)}))
	must(t, a.InsertScript(ctx, "c1", types.Script{ID: "s3", Title: "Boa noite", Order: types.Ptr(3)}))

	feed := NewFeed(0)
	e := New(Options{
		Adapter:  a,
		Cache:    snapshot.NewFileCache(filepath.Join(t.TempDir(), "cdu_data.json")),
		Notifier: feed,
		UserID:   "u1",
	})
	if res := e.Start(ctx); res.Source != loader.SourceRemote {
		t.Fatalf("initial load source = %s, want remote", res.Source)
	}
	return fixture{e: e, m: m, feed: feed}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func levels(f *Feed, level Level) int {
	n := 0
	for _, x := range f.Since(0) {
		if x.Level == level {
			n++
		}
	}
	return n
}

func scriptIDs(d *types.Dataset) []string {
	var ids []string
	for _, s := range d.ScriptData[view]["c1"] {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestDeleteScript_RemoteFailureTriggersResync(t *testing.T) {
	// Given: a loaded tree and a remote store rejecting script deletes
	f := seeded(t)
	f.m.FailOn(storetest.OpDelete, store.TableScripts, errors.New("permission denied"))

	// When: a script is deleted
	if err := f.e.DeleteScript(view, "c1", "s2"); err != nil {
		t.Fatalf("DeleteScript() error = %v", err)
	}

	// Then: it is gone locally at once
	if ids := scriptIDs(f.e.Snapshot()); len(ids) != 2 {
		t.Fatalf("scripts after delete = %v, want 2", ids)
	}

	// And: the rejected delete triggers a second load
	f.e.Wait()
	if got := f.e.loader.Calls(); got != 2 {
		t.Errorf("load calls = %d, want 2", got)
	}
	if levels(f.feed, LevelError) != 1 {
		t.Errorf("error notifications = %d, want 1", levels(f.feed, LevelError))
	}
	// The resync restores the remote truth.
	if ids := scriptIDs(f.e.Snapshot()); len(ids) != 3 {
		t.Errorf("scripts after resync = %v, want 3", ids)
	}
	if f.e.HasUnsavedChanges() {
		t.Error("HasUnsavedChanges() = true after resync")
	}
}

func TestDeleteScript_RenumbersSiblingsRemotely(t *testing.T) {
	f := seeded(t)

	must(t, f.e.DeleteScript(view, "c1", "s1"))
	f.e.Wait()

	rows := f.m.Rows(store.TableScripts)
	if len(rows) != 2 {
		t.Fatalf("remote scripts = %d, want 2", len(rows))
	}
	for _, r := range rows {
		n, _ := r.Int("order")
		want := map[string]int{"s2": 1, "s3": 2}[r.String("id")]
		if n != want {
			t.Errorf("%s order = %d, want %d", r.String("id"), n, want)
		}
	}
	if f.e.loader.Calls() != 1 {
		t.Errorf("load calls = %d, want 1", f.e.loader.Calls())
	}
}

func TestUpdateFailure_OnlyNotifies(t *testing.T) {
	f := seeded(t)
	f.m.FailOn(storetest.OpUpdate, store.TableScripts, errors.New("timeout"))

	must(t, f.e.UpdateScript(view, "c1", "s1", types.ScriptPatch{Title: types.Ptr("Olá")}))
	f.e.Wait()

	if f.e.loader.Calls() != 1 {
		t.Errorf("load calls = %d, want 1 (no resync for updates)", f.e.loader.Calls())
	}
	if levels(f.feed, LevelError) != 1 {
		t.Errorf("error notifications = %d, want 1", levels(f.feed, LevelError))
	}
	// The optimistic change is kept.
	if got := f.e.Snapshot().ScriptData[view]["c1"][0].Title; got != "Olá" {
		t.Errorf("title = %q, want Olá", got)
	}
}

func TestDeleteCategory_CascadesLocallyAndRemotely(t *testing.T) {
	f := seeded(t)

	must(t, f.e.DeleteCategory(remote.ScriptCategories, view, "c1"))

	d := f.e.Snapshot()
	if len(d.ScriptCategories[view]) != 0 {
		t.Errorf("categories = %+v, want none", d.ScriptCategories[view])
	}
	if _, ok := d.ScriptData[view]["c1"]; ok {
		t.Error("scripts of the deleted category remain")
	}

	f.e.Wait()
	if n := len(f.m.Rows(store.TableScripts)); n != 0 {
		t.Errorf("remote scripts = %d, want 0", n)
	}
	if n := len(f.m.Rows(store.TableScriptCategories)); n != 0 {
		t.Errorf("remote categories = %d, want 0", n)
	}
}

func TestReorderCategories_PersistsPositions(t *testing.T) {
	// Given: categories a, b, c
	f := seeded(t)
	must(t, f.e.DeleteCategory(remote.ScriptCategories, view, "c1"))
	ids := map[string]string{}
	for _, name := range []string{"a", "b", "c"} {
		c, err := f.e.AddCategory(remote.ScriptCategories, view, types.Category{Name: name})
		if err != nil {
			t.Fatal(err)
		}
		ids[name] = c.ID
	}

	// When: a moves to the end
	must(t, f.e.ReorderCategories(remote.ScriptCategories, view, 0, 2))

	// Then: b=1, c=2, a=3 locally and remotely
	want := map[string]int{ids["b"]: 1, ids["c"]: 2, ids["a"]: 3}
	cats := f.e.Snapshot().ScriptCategories[view]
	for i, name := range []string{"b", "c", "a"} {
		id := ids[name]
		if cats[i].ID != id || types.OrderOf(cats[i].Order) != want[id] {
			t.Errorf("position %d = %s/%d, want %s/%d", i, cats[i].Name, types.OrderOf(cats[i].Order), name, want[id])
		}
	}
	f.e.Wait()
	for _, r := range f.m.Rows(store.TableScriptCategories) {
		if n, _ := r.Int("order"); n != want[r.String("id")] {
			t.Errorf("remote %s order = %d, want %d", r.String("id"), n, want[r.String("id")])
		}
	}
}

func TestAdd_IgnoresCallerSuppliedID(t *testing.T) {
	// Given: a category already holding s1
	f := seeded(t)

	// When: a script is added carrying the id of an existing one
	s, err := f.e.AddScript(view, "c1", types.Script{ID: "s1", Title: "Cópia"})
	must(t, err)
	c, err := f.e.AddCategory(remote.ScriptCategories, view, types.Category{ID: "c1", Name: "Outra"})
	must(t, err)
	f.e.Wait()

	// Then: both get fresh ids and the tree never holds two entries per id
	if s.ID == "s1" || s.ID == "" {
		t.Errorf("script id = %q, want a fresh id", s.ID)
	}
	if c.ID == "c1" || c.ID == "" {
		t.Errorf("category id = %q, want a fresh id", c.ID)
	}
	seen := map[string]int{}
	for _, id := range scriptIDs(f.e.Snapshot()) {
		seen[id]++
	}
	if seen["s1"] != 1 || len(seen) != 4 {
		t.Errorf("script ids = %v, want s1..s3 plus one new id", seen)
	}
	if levels(f.feed, LevelError) != 0 {
		t.Errorf("sync errors: %+v", f.feed.Since(0))
	}
	if n := len(f.m.Rows(store.TableScripts)); n != 4 {
		t.Errorf("remote scripts = %d, want 4", n)
	}
}

func TestLoad_GappedOrdersAreRenumberedAndPersisted(t *testing.T) {
	// Given: a remote category whose scripts are stored as 1, 5, 9
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := remote.New(m)
	must(t, a.InsertHeaderTag(ctx, types.HeaderTag{ID: "h1", Tag: "CDU", Order: types.Ptr(1)}))
	must(t, a.InsertCategory(ctx, remote.ScriptCategories, view, types.Category{ID: "c1", Name: "Abertura", Order: types.Ptr(1)}))
	for id, n := range map[string]int{"s1": 1, "s5": 5, "s9": 9} {
		must(t, a.InsertScript(ctx, "c1", types.Script{ID: id, Title: id, Order: types.Ptr(n)}))
	}
	e := New(Options{Adapter: a, Notifier: NewFeed(0)})

	// When: the tree is loaded and a script is added
	e.Start(ctx)
	added, err := e.AddScript(view, "c1", types.Script{Title: "Novo"})
	must(t, err)
	e.Wait()

	// Then: the new script goes last, locally and in the store
	list := e.Snapshot().ScriptData[view]["c1"]
	if len(list) != 4 || list[3].ID != added.ID || types.OrderOf(added.Order) != 4 {
		t.Fatalf("scripts = %+v, want the new one at position 4", list)
	}
	want := map[string]int{"s1": 1, "s5": 2, "s9": 3, added.ID: 4}
	for _, r := range m.Rows(store.TableScripts) {
		if n, _ := r.Int("order"); n != want[r.String("id")] {
			t.Errorf("remote %s order = %d, want %d", r.String("id"), n, want[r.String("id")])
		}
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	f := seeded(t)

	err := f.e.ReorderScripts(view, "c1", 0, 7)

	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("error = %v, want ErrIndexOutOfRange", err)
	}
	if f.e.HasUnsavedChanges() {
		t.Error("a rejected reorder marked the tree dirty")
	}
}

func TestPreconditions(t *testing.T) {
	f := seeded(t)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"blank view", f.e.DeleteCategory(remote.ScriptCategories, " ", "c1"), ErrInvalidView},
		{"missing category", f.e.DeleteScript(view, "nope", "s1"), ErrParentNotFound},
		{"missing script", f.e.DeleteScript(view, "c1", "nope"), ErrNotFound},
		{"bad section", f.e.ReorderInfoTags("diario", 0, 0), ErrInvalidSection},
		{"missing office", f.e.DeleteOfficeItem("nope", "c", "i"), ErrParentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}
}

func TestAddScript_AppendsAndKeepsParentBeforeChild(t *testing.T) {
	// Given: an engine over SQLite, which enforces foreign keys
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "remote.db"))
	must(t, err)
	t.Cleanup(func() { s.Close() })
	feed := NewFeed(0)
	e := New(Options{Adapter: remote.New(s), Notifier: feed})
	e.Start(ctx)

	// When: a category and a script under it are added back to back
	cat, err := e.AddCategory(remote.ScriptCategories, view, types.Category{Name: "Geral"})
	must(t, err)
	first, err := e.AddScript(view, cat.ID, types.Script{Title: "Primeiro"})
	must(t, err)
	second, err := e.AddScript(view, cat.ID, types.Script{Title: "Segundo"})
	must(t, err)
	e.Wait()

	// Then: both reach the store in order with positions 1 and 2
	if levels(feed, LevelError) != 0 {
		t.Fatalf("sync errors: %+v", feed.Since(0))
	}
	if types.OrderOf(first.Order) != 1 || types.OrderOf(second.Order) != 2 {
		t.Errorf("orders = %d, %d; want 1, 2", types.OrderOf(first.Order), types.OrderOf(second.Order))
	}
	rows, err := s.Select(ctx, store.TableScripts, store.Eq("category_id", cat.ID))
	must(t, err)
	if len(rows) != 2 {
		t.Errorf("remote scripts = %d, want 2", len(rows))
	}
}

func TestMoveAndUpdateValueItem(t *testing.T) {
	f := seeded(t)
	from, err := f.e.AddCategory(remote.ValueTableCategories, view, types.Category{Name: "Consultas"})
	must(t, err)
	to, err := f.e.AddCategory(remote.ValueTableCategories, view, types.Category{Name: "Exames"})
	must(t, err)
	item, err := f.e.AddValueItem(view, from.ID, types.ValueTableItem{Codigo: "1001", Honorario: 100})
	must(t, err)

	must(t, f.e.MoveAndUpdateValueItem(view, from.ID, to.ID, item.ID, types.ValueTableItemPatch{Honorario: types.Ptr(types.Number(120))}))

	d := f.e.Snapshot()
	if len(d.ValueTableData[view][from.ID]) != 0 {
		t.Error("item still under the old category")
	}
	moved := d.ValueTableData[view][to.ID]
	if len(moved) != 1 || moved[0].ID != item.ID || moved[0].Honorario != 120 {
		t.Errorf("new category = %+v", moved)
	}

	f.e.Wait()
	rows := f.m.Rows(store.TableValueTableItems)
	if len(rows) != 1 || rows[0].String("category_id") != to.ID {
		t.Errorf("remote items = %+v", rows)
	}
}

func TestOffice_NestedCategoriesAndItems(t *testing.T) {
	f := seeded(t)
	o, err := f.e.AddOffice(types.Office{Name: "Consultório 1"})
	must(t, err)
	cat, err := f.e.AddOfficeCategory(o.ID, types.OfficeCategory{Name: "Regras"})
	must(t, err)
	_, err = f.e.AddOfficeItem(o.ID, cat.ID, types.OfficeItem{Title: "Horário"})
	must(t, err)

	if got := f.e.Snapshot().OfficeData[0].Items[cat.ID]; len(got) != 1 {
		t.Fatalf("office items = %+v", got)
	}

	must(t, f.e.DeleteOfficeCategory(o.ID, cat.ID))
	d := f.e.Snapshot()
	if len(d.OfficeData[0].Categories) != 0 {
		t.Error("office category not removed")
	}
	if _, ok := d.OfficeData[0].Items[cat.ID]; ok {
		t.Error("items of the removed office category remain")
	}

	f.e.Wait()
	if n := f.m.Calls(storetest.OpUpdate, store.TableOffices); n != 3 {
		t.Errorf("office row updates = %d, want 3", n)
	}
	if levels(f.feed, LevelError) != 0 {
		t.Errorf("sync errors: %+v", f.feed.Since(0))
	}
}

func TestInfoItem_StampsDateAndOwner(t *testing.T) {
	f := seeded(t)
	f.e.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }

	tag, err := f.e.AddInfoTag(types.SectionAnotacoes, types.InfoTag{Name: "Pessoal"})
	must(t, err)
	it, err := f.e.AddInfoItem(types.SectionAnotacoes, types.InfoItem{TagID: tag.ID, Title: "Lembrete"})
	must(t, err)

	if it.Date != "09/03/2026" {
		t.Errorf("Date = %q, want 09/03/2026", it.Date)
	}
	if tag.UserID != "u1" || it.UserID != "u1" {
		t.Errorf("owners = %q/%q, want u1", tag.UserID, it.UserID)
	}

	est, err := f.e.AddInfoTag(types.SectionEstomaterapia, types.InfoTag{Name: "Curativos"})
	must(t, err)
	if est.UserID != "" {
		t.Errorf("estomaterapia tag owner = %q, want none", est.UserID)
	}
}

func TestUpdateInfoItem_RestampsDateRemotely(t *testing.T) {
	// Given: a note written on 9 March
	f := seeded(t)
	f.e.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }
	tag, err := f.e.AddInfoTag(types.SectionAnotacoes, types.InfoTag{Name: "Pessoal"})
	must(t, err)
	it, err := f.e.AddInfoItem(types.SectionAnotacoes, types.InfoItem{TagID: tag.ID, Title: "Lembrete"})
	must(t, err)

	// When: it is edited on 12 March
	f.e.now = func() time.Time { return time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC) }
	it.Title = "Lembrete revisado"
	must(t, f.e.UpdateInfoItem(types.SectionAnotacoes, it))
	f.e.Wait()

	// Then: the tree and the remote row carry the same new date
	local := f.e.Snapshot().InfoData[tag.ID][0]
	if local.Date != "12/03/2026" || local.Title != "Lembrete revisado" {
		t.Errorf("local item = %+v", local)
	}
	for _, r := range f.m.Rows(store.TableInfoItems) {
		if r.String("id") == it.ID && r.String("date") != local.Date {
			t.Errorf("remote date = %q, want %q", r.String("date"), local.Date)
		}
	}
}

func TestUpdateHeaderTag_CreatesSeededRow(t *testing.T) {
	// Given: an empty remote, so the tree starts from the default header tags
	ctx := context.Background()
	m := storetest.NewMemStore()
	e := New(Options{Adapter: remote.New(m), Notifier: NewFeed(0)})
	if res := e.Start(ctx); res.Source != loader.SourceInitial {
		t.Fatalf("source = %s, want initial", res.Source)
	}

	must(t, e.UpdateHeaderTag("tag-1", types.HeaderTagPatch{Address: types.Ptr("Rua A, 1")}))
	e.Wait()

	rows := m.Rows(store.TableHeaderTags)
	if len(rows) != 1 || rows[0].String("address") != "Rua A, 1" {
		t.Errorf("header rows = %+v", rows)
	}
}

func TestLocalMode_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewFileCache(filepath.Join(t.TempDir(), "cdu_data.json"))
	e := New(Options{Cache: cache, Notifier: NewFeed(0)})
	e.Start(ctx)

	if e.Mode() != config.ModeLocal {
		t.Fatalf("Mode() = %s", e.Mode())
	}
	_, err := e.AddCategory(remote.ExamCategories, "", types.Category{Name: "Imagem"})
	must(t, err)
	if !e.HasUnsavedChanges() {
		t.Fatal("HasUnsavedChanges() = false after a mutation")
	}

	must(t, e.SaveToLocalStorage(ctx))
	if e.HasUnsavedChanges() {
		t.Error("HasUnsavedChanges() = true after save")
	}

	other := New(Options{Cache: cache, Notifier: NewFeed(0)})
	ok, err := other.LoadFromLocalStorage(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadFromLocalStorage() = %v, %v", ok, err)
	}
	base := len(types.InitialDataset().ExamCategories)
	cats := other.Snapshot().ExamCategories
	if len(cats) != base+1 || cats[base].Name != "Imagem" {
		t.Errorf("exam categories = %+v, want the seed plus Imagem", cats)
	}
}

func TestRemoteMode_SaveIsAcknowledgement(t *testing.T) {
	f := seeded(t)
	must(t, f.e.UpdateScript(view, "c1", "s1", types.ScriptPatch{Content: types.Ptr("x")}))

	must(t, f.e.SaveToLocalStorage(context.Background()))

	if f.e.HasUnsavedChanges() {
		t.Error("HasUnsavedChanges() = true after save")
	}
	if levels(f.feed, LevelInfo) == 0 {
		t.Error("no acknowledgement notification")
	}
	f.e.Wait()
}

func TestImportAllData_ReplacesRemoteAndReloads(t *testing.T) {
	f := seeded(t)
	doc := []byte(`{"userName":"Bia","scriptCategories":{"GERAL":[{"id":"old","name":"Novo","order":1}]},
		"scriptData":{"GERAL":{"old":[{"id":"x","title":"Importado","order":1}]}},
		"headerTagData":[{"id":"h","tag":"CDU","title":"Centro"}]}`)

	must(t, f.e.ImportAllData(context.Background(), doc))

	d := f.e.Snapshot()
	if len(d.ScriptCategories[view]) != 0 {
		t.Error("previous data survived the import")
	}
	cats := d.ScriptCategories["GERAL"]
	if len(cats) != 1 || cats[0].ID == "old" {
		t.Fatalf("imported categories = %+v", cats)
	}
	if s := d.ScriptData["GERAL"][cats[0].ID]; len(s) != 1 || s[0].Title != "Importado" {
		t.Errorf("imported scripts = %+v", s)
	}
	if d.UserName != "Bia" {
		t.Errorf("UserName = %q", d.UserName)
	}
	if levels(f.feed, LevelSuccess) == 0 {
		t.Error("no success notification")
	}
}

// sqliteEngine builds a remote-mode engine over SQLite holding one script
// category, with the cache holding the seed dataset.
func sqliteEngine(t *testing.T) (*Engine, *store.SQLStore) {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "remote.db"))
	must(t, err)
	t.Cleanup(func() { s.Close() })
	a := remote.New(s)
	must(t, a.InsertCategory(ctx, remote.ScriptCategories, view, types.Category{ID: "c1", Name: "Abertura", Order: types.Ptr(1)}))

	cache := snapshot.NewFileCache(filepath.Join(t.TempDir(), "cdu_data.json"))
	must(t, cache.Save(ctx, types.InitialDataset()))

	e := New(Options{Adapter: a, Cache: cache, Notifier: NewFeed(0)})
	e.Start(ctx)
	return e, s
}

func TestReload_CancelledContextKeepsRemoteData(t *testing.T) {
	// Given: a caller whose context is already cancelled
	e, _ := sqliteEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When: the tree is reloaded
	res := e.Reload(ctx)

	// Then: the remote store is still read and the cache is not used
	if res.Source != loader.SourceRemote {
		t.Errorf("source = %s (err %v), want remote", res.Source, res.RemoteErr)
	}
	if cats := e.Snapshot().ScriptCategories[view]; len(cats) != 1 || cats[0].ID != "c1" {
		t.Errorf("categories = %+v, want c1", cats)
	}
}

func TestImportAllData_CancelledContextCompletes(t *testing.T) {
	e, _ := sqliteEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := []byte(`{"scriptCategories":{"GERAL":[{"id":"old","name":"Novo","order":1}]},
		"scriptData":{"GERAL":{"old":[{"id":"x","title":"Importado","order":1}]}}}`)

	must(t, e.ImportAllData(ctx, doc))

	d := e.Snapshot()
	if len(d.ScriptCategories[view]) != 0 || len(d.ScriptCategories["GERAL"]) != 1 {
		t.Errorf("categories after import = %+v", d.ScriptCategories)
	}
	cats := d.ScriptCategories["GERAL"]
	if s := d.ScriptData["GERAL"][cats[0].ID]; len(s) != 1 {
		t.Errorf("imported scripts = %+v", s)
	}
}

func TestImportAllData_MalformedWritesNothing(t *testing.T) {
	f := seeded(t)

	err := f.e.ImportAllData(context.Background(), []byte(`[not a backup]`))

	if err == nil {
		t.Fatal("ImportAllData() error = nil")
	}
	f.e.Wait()
	if n := f.m.Calls(storetest.OpDelete, store.TableScripts); n != 0 {
		t.Errorf("deletes issued = %d, want 0", n)
	}
	if len(scriptIDs(f.e.Snapshot())) != 3 {
		t.Error("tree changed after a rejected import")
	}
}

func TestImportAllData_NotificationsNameTheRequest(t *testing.T) {
	f := seeded(t)
	ctx := WithRequestID(context.Background(), "req-42")

	// When: a malformed and then a valid import arrive under one request
	f.e.ImportAllData(ctx, []byte(`[not a backup]`))
	must(t, f.e.ImportAllData(ctx, []byte(`{"userName":"Equipe"}`)))

	// Then: every import notification carries the request id
	var seen int
	for _, n := range f.feed.Since(0) {
		if n.Op != "import" {
			continue
		}
		seen++
		if n.RequestID != "req-42" {
			t.Errorf("%q request id = %q, want req-42", n.Message, n.RequestID)
		}
	}
	if seen != 2 {
		t.Errorf("import notifications = %d, want 2", seen)
	}
}

func TestUpdateFailure_NotificationHasNoRequestID(t *testing.T) {
	f := seeded(t)
	f.m.FailOn(storetest.OpUpdate, store.TableScripts, errors.New("offline"))

	must(t, f.e.UpdateScript(view, "c1", "s1", types.ScriptPatch{Content: types.Ptr("x")}))
	f.e.Wait()

	for _, n := range f.feed.Since(0) {
		if n.Level == LevelError && n.RequestID != "" {
			t.Errorf("background sync failure attributed to %q", n.RequestID)
		}
	}
}

func TestStatus(t *testing.T) {
	f := seeded(t)
	must(t, f.e.UpdateScript(view, "c1", "s1", types.ScriptPatch{Content: types.Ptr("x")}))
	f.e.Wait()

	st := f.e.Status()
	if st.Mode != config.ModeRemote || st.Loading || !st.HasUnsavedChanges || st.PendingSyncs != 0 {
		t.Errorf("Status() = %+v", st)
	}
}

func TestFeed_SinceAndTrim(t *testing.T) {
	feed := NewFeed(2)
	for _, msg := range []string{"a", "b", "c"} {
		feed.Notify(Notification{Level: LevelInfo, Message: msg})
	}

	all := feed.Since(0)
	if len(all) != 2 || all[0].Message != "b" || all[1].Seq != 3 {
		t.Errorf("Since(0) = %+v", all)
	}
	if got := feed.Since(2); len(got) != 1 || got[0].Message != "c" {
		t.Errorf("Since(2) = %+v", got)
	}
}

package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/storetest"
	"github.com/hyperengineering/cdusync/internal/types"
)

func TestReconcileContacts_DropsOrphans(t *testing.T) {
	// Given: one category, a group under it, a group under a missing category
	cats := []store.Row{{"id": "c1", "view_type": "GERAL", "name": "Ramais"}}
	groups := []store.Row{
		{"id": "g1", "category_id": "c1", "name": "Recepção"},
		{"id": "g2", "category_id": "cX", "name": "Perdido"},
	}
	points := []store.Row{{"id": "p1", "group_id": "g1", "setor": "Térreo"}}

	// When: Reconciled
	gotCats, gotData := ReconcileContacts(cats, groups, points)

	// Then: exactly c1 -> g1 -> p1
	if len(gotCats["GERAL"]) != 1 || gotCats["GERAL"][0].ID != "c1" {
		t.Fatalf("categories = %+v, want [c1]", gotCats)
	}
	gs := gotData["GERAL"]["c1"]
	if len(gs) != 1 || gs[0].ID != "g1" {
		t.Fatalf("groups = %+v, want [g1]", gs)
	}
	if len(gs[0].Points) != 1 || gs[0].Points[0].ID != "p1" {
		t.Errorf("points = %+v, want [p1]", gs[0].Points)
	}
	for view, byCat := range gotData {
		for catID, list := range byCat {
			for _, g := range list {
				if g.ID == "g2" {
					t.Errorf("orphan g2 present under %s/%s", view, catID)
				}
			}
		}
	}
}

func TestReconcileScripts_GroupsByViewAndSorts(t *testing.T) {
	cats := []store.Row{
		{"id": "b", "view_type": "UNIMED", "name": "B", "order": int64(2)},
		{"id": "a", "view_type": "UNIMED", "name": "A", "order": int64(1)},
		{"id": "p", "view_type": "PARTICULAR", "name": "P", "order": int64(1)},
	}
	scripts := []store.Row{
		{"id": "s2", "category_id": "a", "title": "Segundo", "order": int64(2)},
		{"id": "s1", "category_id": "a", "title": "Primeiro", "order": int64(1)},
		{"id": "sx", "category_id": "missing", "title": "Órfão"},
	}

	gotCats, gotData := ReconcileScripts(cats, scripts)

	if len(gotCats["UNIMED"]) != 2 || gotCats["UNIMED"][0].ID != "a" {
		t.Errorf("UNIMED categories = %+v, want a first", gotCats["UNIMED"])
	}
	if list := gotData["UNIMED"]["a"]; len(list) != 2 || list[0].ID != "s1" {
		t.Errorf("scripts under a = %+v, want s1 first", list)
	}
	if list, ok := gotData["PARTICULAR"]["p"]; !ok || len(list) != 0 {
		t.Errorf("empty category p should map to empty list, got %v (%v)", list, ok)
	}
}

func TestReconcileValueTable_CoercesLegacyStrings(t *testing.T) {
	cats := []store.Row{{"id": "vc", "view_type": "GERAL", "name": "RX"}}
	items := []store.Row{{
		"id":                       "v1",
		"category_id":              "vc",
		"honorario":                "100.50",
		"exame_cartao":             int64(20),
		"material_min":             nil,
		"material_max":             "abc",
		"honorarios_diferenciados": `[{"id":"f1","profissional":"Dr. A","valor":"35.5","genero":"F"}]`,
	}}

	_, data := ReconcileValueTable(cats, items)

	got := data["GERAL"]["vc"]
	if len(got) != 1 {
		t.Fatalf("items = %d, want 1", len(got))
	}
	v := got[0]
	if v.Honorario != 100.5 || v.ExameCartao != 20 || v.MaterialMin != 0 || v.MaterialMax != 0 {
		t.Errorf("amounts = %v/%v/%v/%v", v.Honorario, v.ExameCartao, v.MaterialMin, v.MaterialMax)
	}
	if len(v.HonorariosDiferenciados) != 1 || v.HonorariosDiferenciados[0].Valor != 35.5 {
		t.Errorf("fees = %+v", v.HonorariosDiferenciados)
	}
}

func TestReconcile_MalformedJSONFailsClosed(t *testing.T) {
	rs := RowSet{
		store.TableOffices: {{
			"id": "o1", "name": "Sala", "specialties": "not json", "items": "[1,2]", "attendants": "null",
		}},
		store.TableRecadoCategories: {{"id": "rc", "title": "T"}},
		store.TableRecadoItems:      {{"id": "ri", "category_id": "rc", "title": "R", "fields": "{oops"}},
	}

	d := Reconcile(rs, "")

	o := d.OfficeData[0]
	if o.Specialties == nil || len(o.Specialties) != 0 {
		t.Errorf("specialties = %#v, want empty", o.Specialties)
	}
	if o.Attendants == nil || o.Items == nil {
		t.Error("office collections should default to empty, not nil")
	}
	if f := d.RecadoData["rc"][0].Fields; f == nil || len(f) != 0 {
		t.Errorf("fields = %#v, want empty", f)
	}
}

func TestReconcileInfo_SplitsSections(t *testing.T) {
	tags := []store.Row{
		{"id": "t1", "name": "Regras", "section_type": "anotacoes", "order": int64(1)},
		{"id": "t2", "name": "Curativos", "section_type": "estomaterapia", "order": int64(1)},
	}
	items := []store.Row{
		{"id": "i1", "tag_id": "t1", "title": "A"},
		{"id": "i2", "tag_id": "t2", "title": "B"},
		{"id": "i3", "tag_id": "gone", "title": "C"},
	}

	infoTags, infoData, estTags, estData := ReconcileInfo(tags, items)

	if len(infoTags) != 1 || infoTags[0].ID != "t1" || len(estTags) != 1 || estTags[0].ID != "t2" {
		t.Fatalf("tags split wrong: %+v / %+v", infoTags, estTags)
	}
	if len(infoData["t1"]) != 1 || len(estData["t2"]) != 1 {
		t.Errorf("items split wrong: %+v / %+v", infoData, estData)
	}
}

func TestReconcile_ProfileAndHeaderTags(t *testing.T) {
	rs := RowSet{
		store.TableProfiles: {
			{"id": "u1", "display_name": "Ana"},
			{"id": "u2", "display_name": "Bia"},
		},
		store.TableHeaderTags: {
			{"id": "h2", "tag": "SEDE", "order": int64(2), "phones": `[{"label":"Fixo","number":"1"}]`},
			{"id": "h1", "tag": "CDU", "order": int64(1)},
		},
	}

	d := Reconcile(rs, "u2")

	if d.UserName != "Bia" {
		t.Errorf("UserName = %q, want Bia", d.UserName)
	}
	if len(d.HeaderTagData) != 2 || d.HeaderTagData[0].Tag != "CDU" {
		t.Errorf("header tags = %+v, want CDU first", d.HeaderTagData)
	}
	if len(d.HeaderTagData[1].Phones) != 1 {
		t.Errorf("phones = %+v", d.HeaderTagData[1].Phones)
	}
}

func TestAdapter_DeleteContactCategoryCascades(t *testing.T) {
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := New(m)

	// Given: a category with a group holding two points
	if err := a.InsertCategory(ctx, ContactCategories, "GERAL", types.Category{ID: "c1", Name: "Ramais"}); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	g := types.ContactGroup{ID: "g1", Name: "Recepção", Points: []types.ContactPoint{{ID: "p1"}, {ID: "p2"}}}
	if err := a.InsertContactGroup(ctx, "c1", g); err != nil {
		t.Fatalf("InsertContactGroup failed: %v", err)
	}

	// When: the category is deleted
	if err := a.DeleteCategory(ctx, ContactCategories, "c1"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	// Then: nothing remains in any contact table
	for _, table := range []string{store.TableContactCategories, store.TableContactGroups, store.TableContactPoints} {
		if rows := m.Rows(table); len(rows) != 0 {
			t.Errorf("%s still has %d rows", table, len(rows))
		}
	}
}

func TestAdapter_DeleteCategoryStopsOnChildFailure(t *testing.T) {
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := New(m)
	_ = a.InsertCategory(ctx, ScriptCategories, "GERAL", types.Category{ID: "c1"})
	_ = a.InsertScript(ctx, "c1", types.Script{ID: "s1"})

	boom := errors.New("boom")
	m.FailOn(storetest.OpDelete, store.TableScripts, boom)

	err := a.DeleteCategory(ctx, ScriptCategories, "c1")
	if !errors.Is(err, boom) {
		t.Fatalf("DeleteCategory error = %v, want boom", err)
	}
	if rows := m.Rows(store.TableScriptCategories); len(rows) != 1 {
		t.Error("category must survive when its children could not be deleted")
	}
}

func TestAdapter_ExamCategoriesIgnoreView(t *testing.T) {
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := New(m)

	if err := a.InsertCategory(ctx, ExamCategories, "GERAL", types.Category{ID: "e1", Name: "Imagem"}); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	if _, ok := m.Rows(store.TableExamCategories)[0]["view_type"]; ok {
		t.Error("exam category row must not carry view_type")
	}
}

func TestAdapter_ClearTableFallsBack(t *testing.T) {
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := New(m)
	_ = a.InsertNotice(ctx, types.Notice{ID: "n1", Title: "Aviso"})

	// Given: every delete fails
	m.FailOn(storetest.OpDelete, store.TableNotices, errors.New("constraint"))

	fellBack, err := a.ClearTable(ctx, store.TableNotices)
	if err == nil || !fellBack {
		t.Fatalf("ClearTable = (%v, %v), want fallback error", fellBack, err)
	}
	if got := m.Calls(storetest.OpDelete, store.TableNotices); got != 2 {
		t.Errorf("delete calls = %d, want targeted + unconditional", got)
	}
}

func TestAdapter_SaveProfileUpserts(t *testing.T) {
	ctx := context.Background()
	m := storetest.NewMemStore()
	a := New(m)

	if err := a.SaveProfile(ctx, "u1", "Ana"); err != nil {
		t.Fatalf("first SaveProfile failed: %v", err)
	}
	if err := a.SaveProfile(ctx, "u1", "Ana Maria"); err != nil {
		t.Fatalf("second SaveProfile failed: %v", err)
	}

	rows := m.Rows(store.TableProfiles)
	if len(rows) != 1 || rows[0].String("display_name") != "Ana Maria" {
		t.Errorf("profiles = %v", rows)
	}
}

func TestAdapter_RowRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(t.TempDir() + "/remote.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()
	a := New(s)

	office := types.Office{
		ID:          "o1",
		Name:        "Consultório 1",
		Specialties: []string{"Cardiologia"},
		Categories:  []types.OfficeCategory{{ID: "oc", Name: "Horários"}},
		Items:       map[string][]types.OfficeItem{"oc": {{ID: "oi", Title: "Manhã"}}},
	}
	if err := a.InsertOffice(ctx, office); err != nil {
		t.Fatalf("InsertOffice failed: %v", err)
	}

	rows, err := s.Select(ctx, store.TableOffices)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	d := Reconcile(RowSet{store.TableOffices: rows}, "")
	got := d.OfficeData[0]
	if got.Specialties[0] != "Cardiologia" || got.Items["oc"][0].Title != "Manhã" {
		t.Errorf("office = %+v", got)
	}
}

func TestNormalizeOrders_RenumbersGapsAndReportsFixes(t *testing.T) {
	// Given: scripts stored with gapped orders and one with none
	rs := RowSet{
		store.TableHeaderTags: {{"id": "h1", "tag": "CDU", "order": int64(1)}},
		store.TableScriptCategories: {
			{"id": "a", "view_type": "UNIMED", "name": "A", "order": int64(3)},
		},
		store.TableScripts: {
			{"id": "s9", "category_id": "a", "title": "Nove", "order": int64(9)},
			{"id": "s1", "category_id": "a", "title": "Um", "order": int64(1)},
			{"id": "s5", "category_id": "a", "title": "Cinco", "order": int64(5)},
			{"id": "sn", "category_id": "a", "title": "Sem ordem"},
		},
	}
	d := Reconcile(rs, "")

	// When: the loaded tree is normalized
	fixes := NormalizeOrders(d)

	// Then: siblings read 1..N in the stored sequence, unset last
	want := []string{"s1", "s5", "s9", "sn"}
	list := d.ScriptData["UNIMED"]["a"]
	for i, id := range want {
		if list[i].ID != id || types.OrderOf(list[i].Order) != i+1 {
			t.Errorf("position %d = %s/%d, want %s/%d", i, list[i].ID, types.OrderOf(list[i].Order), id, i+1)
		}
	}
	if types.OrderOf(d.ScriptCategories["UNIMED"][0].Order) != 1 {
		t.Errorf("category order = %d, want 1", types.OrderOf(d.ScriptCategories["UNIMED"][0].Order))
	}

	// And: only the rows whose stored order changed need a write
	got := map[string]int{}
	for _, f := range fixes {
		got[f.Table+"/"+f.ID] = f.Order
	}
	wantFixes := map[string]int{
		store.TableScriptCategories + "/a": 1,
		store.TableScripts + "/s5":         2,
		store.TableScripts + "/s9":         3,
		store.TableScripts + "/sn":         4,
	}
	if len(got) != len(wantFixes) {
		t.Errorf("fixes = %v, want %v", got, wantFixes)
	}
	for k, n := range wantFixes {
		if got[k] != n {
			t.Errorf("fix %s = %d, want %d", k, got[k], n)
		}
	}
}

func TestNormalizeOrders_ContiguousTreeNeedsNoFixes(t *testing.T) {
	d := types.InitialDataset()

	if fixes := NormalizeOrders(d); len(fixes) != 0 {
		t.Errorf("fixes = %+v, want none", fixes)
	}
}

package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNumber_UnmarshalLegacyEncodings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Number
	}{
		{"plain number", `12.5`, 12.5},
		{"string dot", `"12.50"`, 12.5},
		{"string comma", `"12,50"`, 12.5},
		{"padded string", `" 7 "`, 7},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"garbage", `"abc"`, 0},
		{"nan string", `"NaN"`, 0},
		{"inf string", `"Inf"`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n Number
			if err := json.Unmarshal([]byte(tc.in), &n); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tc.in, err)
			}
			if n != tc.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, n, tc.want)
			}
		})
	}
}

func TestParseNumber_RowValues(t *testing.T) {
	if got := ParseNumber("150.75"); got != 150.75 {
		t.Errorf("ParseNumber(string) = %v, want 150.75", got)
	}
	if got := ParseNumber([]byte("3")); got != 3 {
		t.Errorf("ParseNumber([]byte) = %v, want 3", got)
	}
	if got := ParseNumber(int64(42)); got != 42 {
		t.Errorf("ParseNumber(int64) = %v, want 42", got)
	}
	if got := ParseNumber(nil); got != 0 {
		t.Errorf("ParseNumber(nil) = %v, want 0", got)
	}
	if got := ParseNumber(struct{}{}); got != 0 {
		t.Errorf("ParseNumber(struct) = %v, want 0", got)
	}
}

func TestValueTableItem_Totals(t *testing.T) {
	// Given a row whose amounts arrived as strings
	var item ValueTableItem
	doc := `{"id":"v1","honorario":"100","exame_cartao":"50.5","material_max":"20"}`
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	// Then totals are computed on coerced numbers
	if got := item.TotalExam(); got != 150.5 {
		t.Errorf("TotalExam = %v, want 150.5", got)
	}
	if got := item.TotalWithMaterial(); got != 170.5 {
		t.Errorf("TotalWithMaterial = %v, want 170.5", got)
	}
}

func TestDataset_OlderDocumentDefaultsMissingKeys(t *testing.T) {
	// Given a document that only knows about scripts
	doc := `{"userName":"Ana","scriptCategories":{"GERAL":[{"id":"c1","name":"Boas-vindas","color":"#fff","order":1}]}}`

	var d Dataset
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	d.Normalize()

	// Then every other collection is empty, not nil
	if d.InfoTags == nil || d.OfficeData == nil || d.ValueTableData == nil || d.EstomaterapiaData == nil {
		t.Fatal("Normalize left nil collections")
	}
	if len(d.ScriptCategories["GERAL"]) != 1 {
		t.Errorf("scriptCategories[GERAL] length = %d, want 1", len(d.ScriptCategories["GERAL"]))
	}

	out, err := json.Marshal(&d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"estomaterapiaTags":[]`) {
		t.Errorf("encoded document missing empty estomaterapiaTags: %s", out)
	}
}

func TestDataset_CloneIsDeep(t *testing.T) {
	d := NewDataset()
	d.ScriptCategories["GERAL"] = []Category{{ID: "c1", Name: "A", Order: Ptr(1)}}
	d.ScriptData["GERAL"] = map[string][]Script{"c1": {{ID: "s1", Title: "T"}}}

	c := d.Clone()
	c.ScriptCategories["GERAL"][0].Name = "changed"
	*c.ScriptCategories["GERAL"][0].Order = 9
	c.ScriptData["GERAL"]["c1"][0].Title = "changed"

	if d.ScriptCategories["GERAL"][0].Name != "A" {
		t.Error("clone shares category slice with original")
	}
	if *d.ScriptCategories["GERAL"][0].Order != 1 {
		t.Error("clone shares order pointer with original")
	}
	if d.ScriptData["GERAL"]["c1"][0].Title != "T" {
		t.Error("clone shares script map with original")
	}
}

func TestDataset_CloneCopiesNestedCollections(t *testing.T) {
	// Given: the seed tree, which carries offices, phones and note fields
	d := InitialDataset()

	// When: the copy's nested collections are edited
	c := d.Clone()
	c.OfficeData[0].Items["office-cat-procedimentos"][0].Title = "changed"
	c.OfficeData[0].Specialties[0] = "changed"
	c.HeaderTagData[0].Phones[0].Number = "changed"
	c.RecadoData["rc-1"][0].Fields[0] = "changed"
	c.ExamData["ex-cat-1"][0].Location[0] = "changed"

	// Then: the original is untouched
	o := d.OfficeData[0]
	if o.Items["office-cat-procedimentos"][0].Title == "changed" || o.Specialties[0] == "changed" {
		t.Error("clone shares office collections with original")
	}
	if d.HeaderTagData[0].Phones[0].Number == "changed" {
		t.Error("clone shares header phones with original")
	}
	if d.RecadoData["rc-1"][0].Fields[0] == "changed" {
		t.Error("clone shares recado fields with original")
	}
	if d.ExamData["ex-cat-1"][0].Location[0] == "changed" {
		t.Error("clone shares exam locations with original")
	}
}

func TestDataset_CloneNil(t *testing.T) {
	var d *Dataset
	if d.Clone() != nil {
		t.Error("Clone() of nil dataset should be nil")
	}
}

func TestDataset_IsEmpty(t *testing.T) {
	d := NewDataset()
	if !d.IsEmpty() {
		t.Error("new dataset should be empty")
	}

	d.ScriptCategories["GERAL"] = []Category{}
	if !d.IsEmpty() {
		t.Error("workspace key without categories should still be empty")
	}

	d.ScriptCategories["GERAL"] = []Category{{ID: "c1"}}
	if d.IsEmpty() {
		t.Error("dataset with a script category should not be empty")
	}
}

func TestInitialDataset_HeaderTags(t *testing.T) {
	d := InitialDataset()

	tags := []string{"CDU", "SEDE", "GERENCIA"}
	if len(d.HeaderTagData) != len(tags) {
		t.Fatalf("header tags = %d, want %d", len(d.HeaderTagData), len(tags))
	}
	for i, h := range d.HeaderTagData {
		if h.Tag != tags[i] {
			t.Errorf("header[%d].Tag = %q, want %q", i, h.Tag, tags[i])
		}
		if OrderOf(h.Order) != i+1 {
			t.Errorf("header[%d].Order = %d, want %d", i, OrderOf(h.Order), i+1)
		}
	}
	if cdu := d.HeaderTagData[0]; cdu.Title != "Central de Diagnóstico Unimed" || len(cdu.Phones) != 1 {
		t.Errorf("CDU header = %+v", cdu)
	}
	if g := d.HeaderTagData[2]; len(g.Contacts) != 1 || g.Contacts[0].Ramal != "100" {
		t.Errorf("GERENCIA contacts = %+v", g.Contacts)
	}
}

func TestInitialDataset_SeedsEveryDomain(t *testing.T) {
	d := InitialDataset()

	if d.IsEmpty() {
		t.Fatal("seed dataset reports empty")
	}
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"UNIMED script categories", len(d.ScriptCategories[ViewUnimed]), 2},
		{"scripts in un-cat-1", len(d.ScriptData[ViewUnimed]["un-cat-1"]), 1},
		{"exam categories", len(d.ExamCategories), 2},
		{"contact groups", len(d.ContactData[ViewGeral]["cont-cat-geral"]), 2},
		{"value table categories", len(d.ValueTableCategories[ViewGeral]), 1},
		{"professionals", len(d.ProfessionalData[ViewGeral]["prof-cat-1"]), 1},
		{"offices", len(d.OfficeData), 1},
		{"notices", len(d.NoticeData), 1},
		{"attendants", len(d.ExamDeliveryAttendants), 1},
		{"recado items", len(d.RecadoData["rc-1"]), 1},
		{"info tags", len(d.InfoTags), 2},
		{"estomaterapia tags", len(d.EstomaterapiaTags), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	// Every seeded category owns a (possibly empty) child collection.
	for _, c := range d.ScriptCategories[ViewUnimed] {
		if _, ok := d.ScriptData[ViewUnimed][c.ID]; !ok {
			t.Errorf("script category %s has no script list", c.ID)
		}
	}
	if n := d.NoticeData[0].Date; len(n) != len("02/01/2006") {
		t.Errorf("notice date = %q, want dd/mm/yyyy", n)
	}
}

func TestPatch_NilFieldsUntouched(t *testing.T) {
	s := Script{ID: "s1", Title: "Old", Content: "Body", Order: Ptr(2)}

	got := ScriptPatch{Title: Ptr("New")}.Apply(s)

	if got.Title != "New" {
		t.Errorf("Title = %q, want New", got.Title)
	}
	if got.Content != "Body" {
		t.Errorf("Content = %q, want Body", got.Content)
	}
	if OrderOf(got.Order) != 2 {
		t.Errorf("Order = %d, want 2", OrderOf(got.Order))
	}
	if got.ID != "s1" {
		t.Errorf("ID changed to %q", got.ID)
	}
}

func TestPatch_ZeroValueReplaces(t *testing.T) {
	v := ValueTableItem{ID: "v1", Honorario: 10, Info: "x"}

	got := ValueTableItemPatch{Honorario: Ptr(Number(0)), Info: Ptr("")}.Apply(v)

	if got.Honorario != 0 {
		t.Errorf("Honorario = %v, want 0", got.Honorario)
	}
	if got.Info != "" {
		t.Errorf("Info = %q, want empty", got.Info)
	}
}

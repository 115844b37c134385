package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// clearOrder lists the tables emptied before an import, dependents first.
var clearOrder = []string{
	store.TableScripts,
	store.TableExams,
	store.TableContactPoints,
	store.TableContactGroups,
	store.TableValueTableItems,
	store.TableRecadoItems,
	store.TableInfoItems,

	store.TableScriptCategories,
	store.TableExamCategories,
	store.TableContactCategories,
	store.TableValueTableCategories,
	store.TableRecadoCategories,
	store.TableInfoTags,

	store.TableNotices,
	store.TableOffices,
	store.TableHeaderTags,
	store.TableProfessionals,
	store.TableExamDeliveryAttendants,
}

// IDMap hands out fresh identifiers for parent entities. The first lookup
// of an old id allocates its replacement; later lookups return the same one.
type IDMap struct {
	ids   map[string]string
	newID func() string
}

// NewIDMap creates an empty map allocating ids with newID.
func NewIDMap(newID func() string) *IDMap {
	return &IDMap{ids: map[string]string{}, newID: newID}
}

// Resolve returns the new id recorded for old, allocating one if needed.
func (m *IDMap) Resolve(old string) string {
	if id, ok := m.ids[old]; ok {
		return id
	}
	id := m.newID()
	m.ids[old] = id
	return id
}

// Lookup returns the new id of old without allocating.
func (m *IDMap) Lookup(old string) (string, bool) {
	id, ok := m.ids[old]
	return id, ok
}

// Len reports how many ids were mapped.
func (m *IDMap) Len() int {
	return len(m.ids)
}

// Report summarizes an import.
type Report struct {
	// FellBack lists tables whose targeted clear failed and were emptied
	// unconditionally.
	FellBack []string       `json:"fellBack,omitempty"`
	Inserted map[string]int `json:"inserted"`
	// Orphans counts children skipped because their parent is not in the
	// document.
	Orphans  int           `json:"orphans"`
	Duration time.Duration `json:"duration"`
}

// Importer replaces the remote dataset with a parsed document. It is not
// transactional: a failure leaves whatever was already deleted or inserted.
type Importer struct {
	a      *remote.Adapter
	userID string
	newID  func() string
	ids    *IDMap
}

// NewImporter creates an importer writing through a. userID receives the
// document's display name.
func NewImporter(a *remote.Adapter, userID string) *Importer {
	return &Importer{
		a:      a,
		userID: userID,
		newID:  uuid.NewString,
		ids:    NewIDMap(uuid.NewString),
	}
}

// IDs exposes the old-to-new mapping of parent ids built by Import.
func (im *Importer) IDs() *IDMap {
	return im.ids
}

// Import clears every domain table and inserts d with fresh identifiers.
func (im *Importer) Import(ctx context.Context, d *types.Dataset) (*Report, error) {
	start := time.Now()
	rep := &Report{Inserted: map[string]int{}}

	slog.Info("import started",
		"component", "migration",
		"action", "import_start",
	)

	for _, table := range clearOrder {
		fellBack, err := im.a.ClearTable(ctx, table)
		if fellBack {
			slog.Warn("targeted clear failed, deleted unconditionally",
				"component", "migration",
				"action", "clear_fallback",
				"table", table,
			)
			rep.FellBack = append(rep.FellBack, table)
		}
		if err != nil {
			return rep, err
		}
	}

	steps := []func(context.Context, *types.Dataset, *Report) error{
		im.importProfile,
		im.importHeaderTags,
		im.importScripts,
		im.importExams,
		im.importContacts,
		im.importValueTable,
		im.importProfessionals,
		im.importNotices,
		im.importOffices,
		im.importAttendants,
		im.importInfo,
		im.importRecados,
	}
	for _, step := range steps {
		if err := step(ctx, d, rep); err != nil {
			return rep, err
		}
	}

	rep.Duration = time.Since(start)
	slog.Info("import complete",
		"component", "migration",
		"action", "import_complete",
		"mapped_ids", im.ids.Len(),
		"orphans", rep.Orphans,
		"duration_ms", rep.Duration.Milliseconds(),
	)
	return rep, nil
}

// orphans counts child groups keyed by a parent missing from parents.
func orphans[P, C any](rep *Report, domain string, parents []P, id func(P) string, children map[string][]C) {
	known := make(map[string]bool, len(parents))
	for _, p := range parents {
		known[id(p)] = true
	}
	for key, items := range children {
		if known[key] || len(items) == 0 {
			continue
		}
		slog.Debug("orphan entries skipped",
			"component", "migration",
			"action", "orphan_skipped",
			"domain", domain,
			"parent_id", key,
			"count", len(items),
		)
		rep.Orphans += len(items)
	}
}

func categoryID(c types.Category) string { return c.ID }

func (im *Importer) importProfile(ctx context.Context, d *types.Dataset, rep *Report) error {
	if d.UserName == "" || im.userID == "" {
		return nil
	}
	if err := im.a.SaveProfile(ctx, im.userID, d.UserName); err != nil {
		return fmt.Errorf("import profile: %w", err)
	}
	rep.Inserted[store.TableProfiles]++
	return nil
}

func (im *Importer) importHeaderTags(ctx context.Context, d *types.Dataset, rep *Report) error {
	for idx, h := range d.HeaderTagData {
		h.ID = im.newID()
		h.Order = types.Ptr(idx + 1)
		if err := im.a.InsertHeaderTag(ctx, h); err != nil {
			return fmt.Errorf("import header tag %q: %w", h.Tag, err)
		}
		rep.Inserted[store.TableHeaderTags]++
	}
	return nil
}

func (im *Importer) importScripts(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, view := range sortedKeys(d.ScriptCategories) {
		cats := d.ScriptCategories[view]
		orphans(rep, "scripts", cats, categoryID, d.ScriptData[view])
		for _, c := range cats {
			oldID := c.ID
			c.ID = im.ids.Resolve(oldID)
			if err := im.a.InsertCategory(ctx, remote.ScriptCategories, view, c); err != nil {
				return fmt.Errorf("import script category %q: %w", c.Name, err)
			}
			rep.Inserted[store.TableScriptCategories]++

			for _, s := range d.ScriptData[view][oldID] {
				s.ID = im.newID()
				if err := im.a.InsertScript(ctx, c.ID, s); err != nil {
					return fmt.Errorf("import script %q: %w", s.Title, err)
				}
				rep.Inserted[store.TableScripts]++
			}
		}
	}
	return nil
}

func (im *Importer) importExams(ctx context.Context, d *types.Dataset, rep *Report) error {
	orphans(rep, "exams", d.ExamCategories, categoryID, d.ExamData)
	for _, c := range d.ExamCategories {
		oldID := c.ID
		c.ID = im.ids.Resolve(oldID)
		if err := im.a.InsertCategory(ctx, remote.ExamCategories, "", c); err != nil {
			return fmt.Errorf("import exam category %q: %w", c.Name, err)
		}
		rep.Inserted[store.TableExamCategories]++

		for _, x := range d.ExamData[oldID] {
			x.ID = im.newID()
			if err := im.a.InsertExam(ctx, c.ID, x); err != nil {
				return fmt.Errorf("import exam %q: %w", x.Title, err)
			}
			rep.Inserted[store.TableExams]++
		}
	}
	return nil
}

func (im *Importer) importContacts(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, view := range sortedKeys(d.ContactCategories) {
		cats := d.ContactCategories[view]
		orphans(rep, "contacts", cats, categoryID, d.ContactData[view])
		for _, c := range cats {
			oldID := c.ID
			c.ID = im.ids.Resolve(oldID)
			if err := im.a.InsertCategory(ctx, remote.ContactCategories, view, c); err != nil {
				return fmt.Errorf("import contact category %q: %w", c.Name, err)
			}
			rep.Inserted[store.TableContactCategories]++

			for _, g := range d.ContactData[view][oldID] {
				g.ID = im.ids.Resolve(g.ID)
				points := make([]types.ContactPoint, len(g.Points))
				for i, p := range g.Points {
					p.ID = im.newID()
					points[i] = p
				}
				g.Points = points
				if err := im.a.InsertContactGroup(ctx, c.ID, g); err != nil {
					return fmt.Errorf("import contact group %q: %w", g.Name, err)
				}
				rep.Inserted[store.TableContactGroups]++
				rep.Inserted[store.TableContactPoints] += len(points)
			}
		}
	}
	return nil
}

func (im *Importer) importValueTable(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, view := range sortedKeys(d.ValueTableCategories) {
		cats := d.ValueTableCategories[view]
		orphans(rep, "value table", cats, categoryID, d.ValueTableData[view])
		for _, c := range cats {
			oldID := c.ID
			c.ID = im.ids.Resolve(oldID)
			if err := im.a.InsertCategory(ctx, remote.ValueTableCategories, view, c); err != nil {
				return fmt.Errorf("import value table category %q: %w", c.Name, err)
			}
			rep.Inserted[store.TableValueTableCategories]++

			for _, v := range d.ValueTableData[view][oldID] {
				v.ID = im.newID()
				if err := im.a.InsertValueItem(ctx, c.ID, v); err != nil {
					return fmt.Errorf("import value item %q: %w", v.Codigo, err)
				}
				rep.Inserted[store.TableValueTableItems]++
			}
		}
	}
	return nil
}

func (im *Importer) importProfessionals(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, view := range sortedKeys(d.ProfessionalData) {
		for _, key := range sortedKeys(d.ProfessionalData[view]) {
			for _, p := range d.ProfessionalData[view][key] {
				p.ID = im.newID()
				if err := im.a.InsertProfessional(ctx, view, key, p); err != nil {
					return fmt.Errorf("import professional %q: %w", p.Name, err)
				}
				rep.Inserted[store.TableProfessionals]++
			}
		}
	}
	return nil
}

func (im *Importer) importNotices(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, n := range d.NoticeData {
		n.ID = im.newID()
		if err := im.a.InsertNotice(ctx, n); err != nil {
			return fmt.Errorf("import notice %q: %w", n.Title, err)
		}
		rep.Inserted[store.TableNotices]++
	}
	return nil
}

// importOffices keeps the ids of nested office categories; they live inside
// the office row and nothing outside it refers to them.
func (im *Importer) importOffices(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, o := range d.OfficeData {
		o.ID = im.newID()
		if err := im.a.InsertOffice(ctx, o); err != nil {
			return fmt.Errorf("import office %q: %w", o.Name, err)
		}
		rep.Inserted[store.TableOffices]++
	}
	return nil
}

func (im *Importer) importAttendants(ctx context.Context, d *types.Dataset, rep *Report) error {
	for _, at := range d.ExamDeliveryAttendants {
		at.ID = im.newID()
		if err := im.a.InsertAttendant(ctx, at); err != nil {
			return fmt.Errorf("import attendant %q: %w", at.Name, err)
		}
		rep.Inserted[store.TableExamDeliveryAttendants]++
	}
	return nil
}

func (im *Importer) importInfo(ctx context.Context, d *types.Dataset, rep *Report) error {
	if err := im.importInfoSection(ctx, types.SectionAnotacoes, d.InfoTags, d.InfoData, rep); err != nil {
		return err
	}
	return im.importInfoSection(ctx, types.SectionEstomaterapia, d.EstomaterapiaTags, d.EstomaterapiaData, rep)
}

func (im *Importer) importInfoSection(ctx context.Context, section string, tags []types.InfoTag, data map[string][]types.InfoItem, rep *Report) error {
	orphans(rep, section, tags, func(t types.InfoTag) string { return t.ID }, data)
	for _, t := range tags {
		oldID := t.ID
		t.ID = im.ids.Resolve(oldID)
		if err := im.a.InsertInfoTag(ctx, section, t); err != nil {
			return fmt.Errorf("import %s tag %q: %w", section, t.Name, err)
		}
		rep.Inserted[store.TableInfoTags]++

		for _, it := range data[oldID] {
			it.ID = im.newID()
			it.TagID = t.ID
			if err := im.a.InsertInfoItem(ctx, it); err != nil {
				return fmt.Errorf("import %s item %q: %w", section, it.Title, err)
			}
			rep.Inserted[store.TableInfoItems]++
		}
	}
	return nil
}

func (im *Importer) importRecados(ctx context.Context, d *types.Dataset, rep *Report) error {
	orphans(rep, "recados", d.RecadoCategories, func(c types.RecadoCategory) string { return c.ID }, d.RecadoData)
	for _, c := range d.RecadoCategories {
		oldID := c.ID
		c.ID = im.ids.Resolve(oldID)
		if err := im.a.InsertRecadoCategory(ctx, c); err != nil {
			return fmt.Errorf("import recado category %q: %w", c.Title, err)
		}
		rep.Inserted[store.TableRecadoCategories]++

		for _, it := range d.RecadoData[oldID] {
			it.ID = im.newID()
			if err := im.a.InsertRecadoItem(ctx, c.ID, it); err != nil {
				return fmt.Errorf("import recado item %q: %w", it.Title, err)
			}
			rep.Inserted[store.TableRecadoItems]++
		}
	}
	return nil
}

package remote

import (
	"log/slog"

	"github.com/hyperengineering/cdusync/internal/order"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// RowSet holds the raw rows of a full load keyed by table name.
type RowSet map[string][]store.Row

// Tables lists every table read by a full load.
var Tables = []string{
	store.TableProfiles,
	store.TableHeaderTags,
	store.TableScriptCategories,
	store.TableScripts,
	store.TableExamCategories,
	store.TableExams,
	store.TableContactCategories,
	store.TableContactGroups,
	store.TableContactPoints,
	store.TableValueTableCategories,
	store.TableValueTableItems,
	store.TableProfessionals,
	store.TableOffices,
	store.TableNotices,
	store.TableExamDeliveryAttendants,
	store.TableRecadoCategories,
	store.TableRecadoItems,
	store.TableInfoTags,
	store.TableInfoItems,
}

// Reconcile assembles flat rows into the entity tree. Child rows are grouped
// under their parent strictly by foreign key; rows whose parent is missing
// are dropped. userID selects the profile row providing the display name.
func Reconcile(rs RowSet, userID string) *types.Dataset {
	d := types.NewDataset()

	for _, r := range rs[store.TableProfiles] {
		if userID != "" && r.String("id") == userID {
			d.UserName = r.String("display_name")
		}
	}

	d.HeaderTagData = ReconcileHeaderTags(rs[store.TableHeaderTags])
	d.ScriptCategories, d.ScriptData = ReconcileScripts(rs[store.TableScriptCategories], rs[store.TableScripts])
	d.ExamCategories, d.ExamData = ReconcileExams(rs[store.TableExamCategories], rs[store.TableExams])
	d.ContactCategories, d.ContactData = ReconcileContacts(
		rs[store.TableContactCategories], rs[store.TableContactGroups], rs[store.TableContactPoints])
	d.ValueTableCategories, d.ValueTableData = ReconcileValueTable(
		rs[store.TableValueTableCategories], rs[store.TableValueTableItems])
	d.ProfessionalData = ReconcileProfessionals(rs[store.TableProfessionals])
	d.RecadoCategories, d.RecadoData = ReconcileRecados(rs[store.TableRecadoCategories], rs[store.TableRecadoItems])
	d.InfoTags, d.InfoData, d.EstomaterapiaTags, d.EstomaterapiaData = ReconcileInfo(
		rs[store.TableInfoTags], rs[store.TableInfoItems])

	for _, r := range rs[store.TableOffices] {
		d.OfficeData = append(d.OfficeData, rowOffice(r))
	}
	for _, r := range rs[store.TableNotices] {
		d.NoticeData = append(d.NoticeData, rowNotice(r))
	}
	for _, r := range rs[store.TableExamDeliveryAttendants] {
		d.ExamDeliveryAttendants = append(d.ExamDeliveryAttendants, rowAttendant(r))
	}

	return d
}

func dropOrphan(table string, r store.Row, fkCol string) {
	slog.Debug("orphan row dropped",
		"component", "remote",
		"action", "orphan_dropped",
		"table", table,
		"id", r.String("id"),
		"parent_id", r.String(fkCol),
	)
}

// viewCategories groups category rows by view type and indexes each
// category id to its view. Rows without a view type are dropped.
func viewCategories(table string, rows []store.Row) (map[string][]types.Category, map[string]string) {
	cats := map[string][]types.Category{}
	viewOf := map[string]string{}
	for _, r := range rows {
		view := r.String("view_type")
		if view == "" {
			dropOrphan(table, r, "view_type")
			continue
		}
		c := rowCategory(r)
		cats[view] = append(cats[view], c)
		viewOf[c.ID] = view
	}
	for view, list := range cats {
		cats[view] = order.Sort(list)
	}
	return cats, viewOf
}

// ReconcileHeaderTags decodes header tag rows sorted by order.
func ReconcileHeaderTags(rows []store.Row) []types.HeaderTag {
	tags := make([]types.HeaderTag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, rowHeaderTag(r))
	}
	return order.Sort(tags)
}

// ReconcileScripts groups scripts under their view-partitioned category.
func ReconcileScripts(catRows, scriptRows []store.Row) (map[string][]types.Category, map[string]map[string][]types.Script) {
	cats, viewOf := viewCategories(store.TableScriptCategories, catRows)
	data := map[string]map[string][]types.Script{}
	for view, list := range cats {
		data[view] = map[string][]types.Script{}
		for _, c := range list {
			data[view][c.ID] = []types.Script{}
		}
	}
	for _, r := range scriptRows {
		catID := r.String("category_id")
		view, ok := viewOf[catID]
		if !ok {
			dropOrphan(store.TableScripts, r, "category_id")
			continue
		}
		data[view][catID] = append(data[view][catID], rowScript(r))
	}
	for view := range data {
		for catID, list := range data[view] {
			data[view][catID] = order.Sort(list)
		}
	}
	return cats, data
}

// ReconcileExams groups exams under their category. Exam categories are not
// view-partitioned.
func ReconcileExams(catRows, examRows []store.Row) ([]types.Category, map[string][]types.Exam) {
	cats := make([]types.Category, 0, len(catRows))
	data := map[string][]types.Exam{}
	for _, r := range catRows {
		c := rowCategory(r)
		cats = append(cats, c)
		data[c.ID] = []types.Exam{}
	}
	for _, r := range examRows {
		catID := r.String("category_id")
		if _, ok := data[catID]; !ok {
			dropOrphan(store.TableExams, r, "category_id")
			continue
		}
		data[catID] = append(data[catID], rowExam(r))
	}
	return order.Sort(cats), data
}

// ReconcileContacts builds Category -> Group -> Point. A group whose
// category is missing is dropped together with its points; a point whose
// group is missing is dropped.
func ReconcileContacts(catRows, groupRows, pointRows []store.Row) (map[string][]types.Category, map[string]map[string][]types.ContactGroup) {
	cats, viewOf := viewCategories(store.TableContactCategories, catRows)
	data := map[string]map[string][]types.ContactGroup{}
	for view, list := range cats {
		data[view] = map[string][]types.ContactGroup{}
		for _, c := range list {
			data[view][c.ID] = []types.ContactGroup{}
		}
	}

	points := map[string][]types.ContactPoint{}
	for _, r := range pointRows {
		gid := r.String("group_id")
		points[gid] = append(points[gid], rowContactPoint(r))
	}

	known := map[string]bool{}
	for _, r := range groupRows {
		catID := r.String("category_id")
		view, ok := viewOf[catID]
		if !ok {
			dropOrphan(store.TableContactGroups, r, "category_id")
			continue
		}
		g := types.ContactGroup{
			ID:     r.String("id"),
			Name:   r.String("name"),
			Points: points[r.String("id")],
		}
		if g.Points == nil {
			g.Points = []types.ContactPoint{}
		}
		known[g.ID] = true
		data[view][catID] = append(data[view][catID], g)
	}
	for _, r := range pointRows {
		if !known[r.String("group_id")] {
			dropOrphan(store.TableContactPoints, r, "group_id")
		}
	}
	return cats, data
}

// ReconcileValueTable groups value table rows under their category,
// coercing legacy string amounts.
func ReconcileValueTable(catRows, itemRows []store.Row) (map[string][]types.Category, map[string]map[string][]types.ValueTableItem) {
	cats, viewOf := viewCategories(store.TableValueTableCategories, catRows)
	data := map[string]map[string][]types.ValueTableItem{}
	for view, list := range cats {
		data[view] = map[string][]types.ValueTableItem{}
		for _, c := range list {
			data[view][c.ID] = []types.ValueTableItem{}
		}
	}
	for _, r := range itemRows {
		catID := r.String("category_id")
		view, ok := viewOf[catID]
		if !ok {
			dropOrphan(store.TableValueTableItems, r, "category_id")
			continue
		}
		data[view][catID] = append(data[view][catID], rowValueItem(r))
	}
	return cats, data
}

// ReconcileProfessionals groups professionals by view type and grouping key.
func ReconcileProfessionals(rows []store.Row) map[string]map[string][]types.Professional {
	data := map[string]map[string][]types.Professional{}
	for _, r := range rows {
		view, key := r.String("view_type"), r.String("category_id")
		if view == "" || key == "" {
			dropOrphan(store.TableProfessionals, r, "category_id")
			continue
		}
		if data[view] == nil {
			data[view] = map[string][]types.Professional{}
		}
		data[view][key] = append(data[view][key], rowProfessional(r))
	}
	return data
}

// ReconcileRecados groups recado items under their category.
func ReconcileRecados(catRows, itemRows []store.Row) ([]types.RecadoCategory, map[string][]types.RecadoItem) {
	cats := make([]types.RecadoCategory, 0, len(catRows))
	data := map[string][]types.RecadoItem{}
	for _, r := range catRows {
		c := rowRecadoCategory(r)
		cats = append(cats, c)
		data[c.ID] = []types.RecadoItem{}
	}
	for _, r := range itemRows {
		catID := r.String("category_id")
		if _, ok := data[catID]; !ok {
			dropOrphan(store.TableRecadoItems, r, "category_id")
			continue
		}
		data[catID] = append(data[catID], rowRecadoItem(r))
	}
	return order.Sort(cats), data
}

// ReconcileInfo splits the shared info tables into the annotations and
// estomaterapia sections by the tag's section_type.
func ReconcileInfo(tagRows, itemRows []store.Row) (
	infoTags []types.InfoTag, infoData map[string][]types.InfoItem,
	estTags []types.InfoTag, estData map[string][]types.InfoItem,
) {
	infoTags, estTags = []types.InfoTag{}, []types.InfoTag{}
	infoData, estData = map[string][]types.InfoItem{}, map[string][]types.InfoItem{}

	for _, r := range tagRows {
		t := rowInfoTag(r)
		if r.String("section_type") == types.SectionEstomaterapia {
			estTags = append(estTags, t)
			estData[t.ID] = []types.InfoItem{}
			continue
		}
		infoTags = append(infoTags, t)
		infoData[t.ID] = []types.InfoItem{}
	}
	for _, r := range itemRows {
		it := rowInfoItem(r)
		switch {
		case infoData[it.TagID] != nil:
			infoData[it.TagID] = append(infoData[it.TagID], it)
		case estData[it.TagID] != nil:
			estData[it.TagID] = append(estData[it.TagID], it)
		default:
			dropOrphan(store.TableInfoItems, r, "tag_id")
		}
	}
	return order.Sort(infoTags), infoData, order.Sort(estTags), estData
}

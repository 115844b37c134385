package remote

import (
	"encoding/json"
	"log/slog"

	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// JSON columns hold nested documents as text. Encoding never emits null for
// a collection; decoding fails closed to an empty value.

func encodeList[T any](v []T) string {
	if v == nil {
		v = []T{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func encodeObject(v any, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return fallback
	}
	return string(data)
}

func decodeList[T any](r store.Row, table, col string) []T {
	raw := r.String(col)
	out := []T{}
	if raw == "" {
		return out
	}
	var v []T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.Debug("malformed json column",
			"component", "remote",
			"action", "decode_fallback",
			"table", table,
			"column", col,
			"id", r.String("id"),
			"error", err,
		)
		return out
	}
	if v == nil {
		return out
	}
	return v
}

func decodeObject[T any](r store.Row, table, col string, fallback T) T {
	raw := r.String(col)
	if raw == "" || raw == "null" {
		return fallback
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.Debug("malformed json column",
			"component", "remote",
			"action", "decode_fallback",
			"table", table,
			"column", col,
			"id", r.String("id"),
			"error", err,
		)
		return fallback
	}
	return v
}

func orderValue(o *int) any {
	if o == nil {
		return nil
	}
	return *o
}

func rowOrder(r store.Row) *int {
	n, ok := r.Int("order")
	if !ok {
		return nil
	}
	return types.Ptr(n)
}

func categoryRow(view string, c types.Category) store.Row {
	r := store.Row{
		"id":    c.ID,
		"name":  c.Name,
		"color": c.Color,
		"order": orderValue(c.Order),
	}
	if view != "" {
		r["view_type"] = view
	}
	return r
}

func rowCategory(r store.Row) types.Category {
	return types.Category{
		ID:    r.String("id"),
		Name:  r.String("name"),
		Color: r.String("color"),
		Order: rowOrder(r),
	}
}

func scriptRow(categoryID string, s types.Script) store.Row {
	return store.Row{
		"id":          s.ID,
		"category_id": categoryID,
		"title":       s.Title,
		"content":     s.Content,
		"order":       orderValue(s.Order),
	}
}

func rowScript(r store.Row) types.Script {
	return types.Script{
		ID:      r.String("id"),
		Title:   r.String("title"),
		Content: r.String("content"),
		Order:   rowOrder(r),
	}
}

func examRow(categoryID string, e types.Exam) store.Row {
	return store.Row{
		"id":               e.ID,
		"category_id":      categoryID,
		"title":            e.Title,
		"location":         encodeList(e.Location),
		"additional_info":  e.AdditionalInfo,
		"scheduling_rules": e.SchedulingRules,
		"value_table_code": e.ValueTableCode,
	}
}

func rowExam(r store.Row) types.Exam {
	return types.Exam{
		ID:              r.String("id"),
		Title:           r.String("title"),
		Location:        decodeList[string](r, store.TableExams, "location"),
		AdditionalInfo:  r.String("additional_info"),
		SchedulingRules: r.String("scheduling_rules"),
		ValueTableCode:  r.String("value_table_code"),
	}
}

func contactGroupRow(categoryID string, g types.ContactGroup) store.Row {
	return store.Row{
		"id":          g.ID,
		"category_id": categoryID,
		"name":        g.Name,
	}
}

func contactPointRow(groupID string, p types.ContactPoint) store.Row {
	return store.Row{
		"id":       p.ID,
		"group_id": groupID,
		"setor":    p.Setor,
		"local":    p.Local,
		"ramal":    p.Ramal,
		"telefone": p.Telefone,
		"whatsapp": p.Whatsapp,
	}
}

func rowContactPoint(r store.Row) types.ContactPoint {
	return types.ContactPoint{
		ID:       r.String("id"),
		Setor:    r.String("setor"),
		Local:    r.String("local"),
		Ramal:    r.String("ramal"),
		Telefone: r.String("telefone"),
		Whatsapp: r.String("whatsapp"),
	}
}

func valueItemRow(categoryID string, v types.ValueTableItem) store.Row {
	return store.Row{
		"id":                       v.ID,
		"category_id":              categoryID,
		"codigo":                   v.Codigo,
		"nome":                     v.Nome,
		"info":                     v.Info,
		"honorario":                float64(v.Honorario),
		"exame_cartao":             float64(v.ExameCartao),
		"material_min":             float64(v.MaterialMin),
		"material_max":             float64(v.MaterialMax),
		"honorarios_diferenciados": encodeList(v.HonorariosDiferenciados),
	}
}

// rowValueItem coerces legacy string amounts, including the fee values
// nested in honorarios_diferenciados, into numbers.
func rowValueItem(r store.Row) types.ValueTableItem {
	return types.ValueTableItem{
		ID:                      r.String("id"),
		Codigo:                  r.String("codigo"),
		Nome:                    r.String("nome"),
		Info:                    r.String("info"),
		Honorario:               types.ParseNumber(r["honorario"]),
		ExameCartao:             types.ParseNumber(r["exame_cartao"]),
		MaterialMin:             types.ParseNumber(r["material_min"]),
		MaterialMax:             types.ParseNumber(r["material_max"]),
		HonorariosDiferenciados: decodeList[types.Fee](r, store.TableValueTableItems, "honorarios_diferenciados"),
	}
}

func professionalRow(view, categoryID string, p types.Professional) store.Row {
	return store.Row{
		"id":              p.ID,
		"view_type":       view,
		"category_id":     categoryID,
		"name":            p.Name,
		"gender":          p.Gender,
		"specialty":       p.Specialty,
		"age_range":       p.AgeRange,
		"fittings":        encodeObject(p.Fittings, "{}"),
		"general_obs":     p.GeneralObs,
		"performed_exams": encodeList(p.PerformedExams),
	}
}

func rowProfessional(r store.Row) types.Professional {
	return types.Professional{
		ID:             r.String("id"),
		Name:           r.String("name"),
		Gender:         r.String("gender"),
		Specialty:      r.String("specialty"),
		AgeRange:       r.String("age_range"),
		Fittings:       decodeObject(r, store.TableProfessionals, "fittings", types.Fittings{}),
		GeneralObs:     r.String("general_obs"),
		PerformedExams: decodeList[types.ExamDetail](r, store.TableProfessionals, "performed_exams"),
	}
}

func officeRow(o types.Office) store.Row {
	items := o.Items
	if items == nil {
		items = map[string][]types.OfficeItem{}
	}
	return store.Row{
		"id":            o.ID,
		"name":          o.Name,
		"ramal":         o.Ramal,
		"schedule":      o.Schedule,
		"specialties":   encodeList(o.Specialties),
		"attendants":    encodeList(o.Attendants),
		"professionals": encodeList(o.Professionals),
		"procedures":    encodeList(o.Procedures),
		"categories":    encodeList(o.Categories),
		"items":         encodeObject(items, "{}"),
	}
}

func rowOffice(r store.Row) types.Office {
	t := store.TableOffices
	items := decodeObject(r, t, "items", map[string][]types.OfficeItem{})
	if items == nil {
		items = map[string][]types.OfficeItem{}
	}
	return types.Office{
		ID:            r.String("id"),
		Name:          r.String("name"),
		Ramal:         r.String("ramal"),
		Schedule:      r.String("schedule"),
		Specialties:   decodeList[string](r, t, "specialties"),
		Attendants:    decodeList[types.OfficeAttendant](r, t, "attendants"),
		Professionals: decodeList[types.OfficeProfessional](r, t, "professionals"),
		Procedures:    decodeList[string](r, t, "procedures"),
		Categories:    decodeList[types.OfficeCategory](r, t, "categories"),
		Items:         items,
	}
}

func noticeRow(n types.Notice) store.Row {
	return store.Row{
		"id":      n.ID,
		"title":   n.Title,
		"content": n.Content,
		"date":    n.Date,
		"tag":     n.Tag,
		"icon":    n.Icon,
	}
}

func rowNotice(r store.Row) types.Notice {
	return types.Notice{
		ID:      r.String("id"),
		Title:   r.String("title"),
		Content: r.String("content"),
		Date:    r.String("date"),
		Tag:     r.String("tag"),
		Icon:    r.String("icon"),
	}
}

func attendantRow(a types.ExamDeliveryAttendant) store.Row {
	return store.Row{
		"id":        a.ID,
		"name":      a.Name,
		"chat_nick": a.ChatNick,
	}
}

func rowAttendant(r store.Row) types.ExamDeliveryAttendant {
	return types.ExamDeliveryAttendant{
		ID:       r.String("id"),
		Name:     r.String("name"),
		ChatNick: r.String("chat_nick"),
	}
}

func recadoCategoryRow(c types.RecadoCategory) store.Row {
	return store.Row{
		"id":               c.ID,
		"title":            c.Title,
		"description":      c.Description,
		"destination_type": c.DestinationType,
		"group_name":       c.GroupName,
		"attendants":       encodeList(c.Attendants),
		"order":            orderValue(c.Order),
	}
}

func rowRecadoCategory(r store.Row) types.RecadoCategory {
	c := types.RecadoCategory{
		ID:              r.String("id"),
		Title:           r.String("title"),
		Description:     r.String("description"),
		DestinationType: r.String("destination_type"),
		GroupName:       r.String("group_name"),
		Order:           rowOrder(r),
	}
	if att := decodeList[types.RecadoAttendant](r, store.TableRecadoCategories, "attendants"); len(att) > 0 {
		c.Attendants = att
	}
	return c
}

func recadoItemRow(categoryID string, it types.RecadoItem) store.Row {
	return store.Row{
		"id":          it.ID,
		"category_id": categoryID,
		"title":       it.Title,
		"content":     it.Content,
		"fields":      encodeList(it.Fields),
	}
}

func rowRecadoItem(r store.Row) types.RecadoItem {
	return types.RecadoItem{
		ID:      r.String("id"),
		Title:   r.String("title"),
		Content: r.String("content"),
		Fields:  decodeList[string](r, store.TableRecadoItems, "fields"),
	}
}

func infoTagRow(section string, t types.InfoTag) store.Row {
	return store.Row{
		"id":           t.ID,
		"name":         t.Name,
		"color":        t.Color,
		"order":        orderValue(t.Order),
		"section_type": section,
		"user_id":      t.UserID,
	}
}

func rowInfoTag(r store.Row) types.InfoTag {
	return types.InfoTag{
		ID:     r.String("id"),
		Name:   r.String("name"),
		Color:  r.String("color"),
		Order:  rowOrder(r),
		UserID: r.String("user_id"),
	}
}

func infoItemRow(it types.InfoItem) store.Row {
	return store.Row{
		"id":          it.ID,
		"tag_id":      it.TagID,
		"title":       it.Title,
		"content":     it.Content,
		"date":        it.Date,
		"info":        it.Info,
		"attachments": encodeList(it.Attachments),
		"user_id":     it.UserID,
	}
}

func rowInfoItem(r store.Row) types.InfoItem {
	return types.InfoItem{
		ID:          r.String("id"),
		TagID:       r.String("tag_id"),
		Title:       r.String("title"),
		Content:     r.String("content"),
		Date:        r.String("date"),
		Info:        r.String("info"),
		Attachments: decodeList[types.Attachment](r, store.TableInfoItems, "attachments"),
		UserID:      r.String("user_id"),
	}
}

func headerTagRow(h types.HeaderTag) store.Row {
	return store.Row{
		"id":       h.ID,
		"tag":      h.Tag,
		"title":    h.Title,
		"address":  h.Address,
		"phones":   encodeList(h.Phones),
		"whatsapp": h.Whatsapp,
		"contacts": encodeList(h.Contacts),
		"order":    orderValue(h.Order),
	}
}

func rowHeaderTag(r store.Row) types.HeaderTag {
	t := store.TableHeaderTags
	h := types.HeaderTag{
		ID:       r.String("id"),
		Tag:      r.String("tag"),
		Title:    r.String("title"),
		Address:  r.String("address"),
		Whatsapp: r.String("whatsapp"),
		Order:    rowOrder(r),
	}
	if phones := decodeList[types.Phone](r, t, "phones"); len(phones) > 0 {
		h.Phones = phones
	}
	if contacts := decodeList[types.HeaderContact](r, t, "contacts"); len(contacts) > 0 {
		h.Contacts = contacts
	}
	return h
}

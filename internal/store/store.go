// Package store is the remote row store: a small insert/update/delete/select
// surface over named tables, with a SQL implementation (SQLite or Postgres)
// and an in-memory one.
package store

import (
	"context"
	"fmt"
)

// Row is one table row keyed by column name. Values are plain scalars
// (string, int64, float64, bool or nil); JSON columns travel as strings.
type Row map[string]any

// String returns the column as a string, or "" when absent or not textual.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int returns the column as an int and whether it held a number.
func (r Row) Int(col string) (int, bool) {
	switch v := r[col].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Filter restricts a Select or Delete to rows where Column equals Value, or
// differs from it when Negate is set. Rows holding NULL match neither.
type Filter struct {
	Column string
	Value  any
	Negate bool
}

// Eq matches rows where col = v.
func Eq(col string, v any) Filter {
	return Filter{Column: col, Value: v}
}

// Neq matches rows where col <> v.
func Neq(col string, v any) Filter {
	return Filter{Column: col, Value: v, Negate: true}
}

// RowStore is the remote store consumed by the adapter. Every call is one
// independent write or read; no transactions span calls.
type RowStore interface {
	Insert(ctx context.Context, table string, row Row) error
	// Update sets the given columns on the row with the given id. It returns
	// ErrNotFound when no row matched.
	Update(ctx context.Context, table, id string, row Row) error
	// Delete removes rows matching every filter. No filters deletes all rows.
	Delete(ctx context.Context, table string, filters ...Filter) error
	Select(ctx context.Context, table string, filters ...Filter) ([]Row, error)
	Close() error
}

// Table names.
const (
	TableProfiles               = "profiles"
	TableHeaderTags             = "header_tags"
	TableScriptCategories       = "script_categories"
	TableScripts                = "scripts"
	TableExamCategories         = "exam_categories"
	TableExams                  = "exams"
	TableContactCategories      = "contact_categories"
	TableContactGroups          = "contact_groups"
	TableContactPoints          = "contact_points"
	TableValueTableCategories   = "value_table_categories"
	TableValueTableItems        = "value_table_items"
	TableProfessionals          = "professionals"
	TableOffices                = "offices"
	TableNotices                = "notices"
	TableExamDeliveryAttendants = "exam_delivery_attendants"
	TableRecadoCategories       = "recado_categories"
	TableRecadoItems            = "recado_items"
	TableInfoTags               = "info_tags"
	TableInfoItems              = "info_items"
)

// Schema lists the columns of every table, in migration order.
var Schema = map[string][]string{
	TableProfiles:               {"id", "display_name", "updated_at"},
	TableHeaderTags:             {"id", "tag", "title", "address", "phones", "whatsapp", "contacts", "order"},
	TableScriptCategories:       {"id", "view_type", "name", "color", "order"},
	TableScripts:                {"id", "category_id", "title", "content", "order"},
	TableExamCategories:         {"id", "name", "color", "order"},
	TableExams:                  {"id", "category_id", "title", "location", "additional_info", "scheduling_rules", "value_table_code"},
	TableContactCategories:      {"id", "view_type", "name", "color", "order"},
	TableContactGroups:          {"id", "category_id", "name"},
	TableContactPoints:          {"id", "group_id", "setor", "local", "ramal", "telefone", "whatsapp"},
	TableValueTableCategories:   {"id", "view_type", "name", "color", "order"},
	TableValueTableItems:        {"id", "category_id", "codigo", "nome", "info", "honorario", "exame_cartao", "material_min", "material_max", "honorarios_diferenciados"},
	TableProfessionals:          {"id", "view_type", "category_id", "name", "gender", "specialty", "age_range", "fittings", "general_obs", "performed_exams"},
	TableOffices:                {"id", "name", "ramal", "schedule", "specialties", "attendants", "professionals", "procedures", "categories", "items"},
	TableNotices:                {"id", "title", "content", "date", "tag", "icon"},
	TableExamDeliveryAttendants: {"id", "name", "chat_nick"},
	TableRecadoCategories:       {"id", "title", "description", "destination_type", "group_name", "attendants", "order"},
	TableRecadoItems:            {"id", "category_id", "title", "content", "fields"},
	TableInfoTags:               {"id", "name", "color", "order", "section_type", "user_id"},
	TableInfoItems:              {"id", "tag_id", "title", "content", "date", "info", "attachments", "user_id"},
}

// CheckRow reports whether every column of row exists in table.
func CheckRow(table string, row Row) error {
	return checkColumns(table, rowColumns(row))
}

// CheckFilters reports whether every filtered column exists in table.
func CheckFilters(table string, filters []Filter) error {
	return checkColumns(table, filterColumns(filters))
}

func checkColumns(table string, cols []string) error {
	known, ok := Schema[table]
	if !ok {
		return fmt.Errorf("%q: %w", table, ErrUnknownTable)
	}
	for _, c := range cols {
		found := false
		for _, k := range known {
			if k == c {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s.%s: %w", table, c, ErrUnknownColumn)
		}
	}
	return nil
}

func rowColumns(row Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	return cols
}

func filterColumns(filters []Filter) []string {
	cols := make([]string, len(filters))
	for i, f := range filters {
		cols[i] = f.Column
	}
	return cols
}

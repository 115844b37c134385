package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dialects understood by SQLStore.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// SQLStore is a RowStore over database/sql. Table and column names are
// checked against Schema before they reach a statement.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// Open returns a migrated SQLStore for the given driver ("sqlite" or
// "postgres") and data source.
func Open(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DialectSQLite, "":
		return NewSQLiteStore(dsn)
	case DialectPostgres, "pgx":
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// DB exposes the underlying handle.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect in use.
func (s *SQLStore) Dialect() string {
	return s.dialect
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func quote(ident string) string {
	return `"` + ident + `"`
}

// Insert adds one row.
func (s *SQLStore) Insert(ctx context.Context, table string, row Row) error {
	cols := rowColumns(row)
	if err := checkColumns(table, cols); err != nil {
		return err
	}
	sort.Strings(cols)

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = quote(c)
		marks[i] = s.placeholder(i + 1)
		args[i] = row[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update sets columns on the row with the given id.
func (s *SQLStore) Update(ctx context.Context, table, id string, row Row) error {
	cols := rowColumns(row)
	if err := checkColumns(table, cols); err != nil {
		return err
	}
	sort.Strings(cols)
	if len(cols) == 0 {
		return nil
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = quote(c) + " = " + s.placeholder(i+1)
		args = append(args, row[c])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		quote(table), strings.Join(sets, ", "), quote("id"), s.placeholder(len(cols)+1))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

// Delete removes every row matching all filters.
func (s *SQLStore) Delete(ctx context.Context, table string, filters ...Filter) error {
	if err := checkColumns(table, filterColumns(filters)); err != nil {
		return err
	}
	where, args := s.where(filters)
	query := "DELETE FROM " + quote(table) + where
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// Select returns every row matching all filters.
func (s *SQLStore) Select(ctx context.Context, table string, filters ...Filter) ([]Row, error) {
	if err := checkColumns(table, filterColumns(filters)); err != nil {
		return nil, err
	}
	cols := Schema[table]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c)
	}
	where, args := s.where(filters)
	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(names, ", "), quote(table), where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				r[c] = string(b)
				continue
			}
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func (s *SQLStore) where(filters []Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		op := " = "
		if f.Negate {
			op = " <> "
		}
		parts[i] = quote(f.Column) + op + s.placeholder(i+1)
		args[i] = f.Value
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// sqliteWarehouse serves embedded/local warehouses and tests. Schemas
// map onto SQLite's attached databases: the default schema is "main",
// and ListTables("reporting") reads reporting.sqlite_master.
type sqliteWarehouse struct {
	db *sql.DB
}

func openSQLite(dsn string) (*sqliteWarehouse, error) {
	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, &ConnectError{Type: TypeSQLite, Err: err}
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, &ConnectError{Type: TypeSQLite, Err: fmt.Errorf("pragma %q: %w", p, err)}
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &ConnectError{Type: TypeSQLite, Err: err}
	}

	return &sqliteWarehouse{db: db}, nil
}

func (w *sqliteWarehouse) Type() string { return TypeSQLite }

func (w *sqliteWarehouse) Close() error { return w.db.Close() }

func (w *sqliteWarehouse) ExecuteQuery(ctx context.Context, query string) ([]Row, error) {
	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return out, nil
}

func (w *sqliteWarehouse) ListTables(ctx context.Context, schema string) ([]string, error) {
	if schema == "" {
		schema = "main"
	}
	if err := validIdent(schema); err != nil {
		return nil, &QueryError{Err: err}
	}

	query := fmt.Sprintf(
		`SELECT name FROM %q.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name`,
		schema,
	)
	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (w *sqliteWarehouse) DescribeTable(ctx context.Context, table string) ([]Column, error) {
	// "schema.table" targets an attached database; schema and name must
	// be quoted separately or SQLite treats the whole string as one
	// (unresolvable) identifier.
	var query string
	if schema, name, qualified := strings.Cut(table, "."); qualified {
		if err := validIdent(schema); err != nil {
			return nil, &QueryError{Err: err}
		}
		if err := validIdent(name); err != nil {
			return nil, &QueryError{Err: err}
		}
		query = fmt.Sprintf(`PRAGMA %q.table_info(%q)`, schema, name)
	} else {
		if err := validIdent(table); err != nil {
			return nil, &QueryError{Err: err}
		}
		query = fmt.Sprintf(`PRAGMA table_info(%q)`, table)
	}
	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		cols = append(cols, Column{Name: name, Type: colType, Nullable: notNull == 0})
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	if len(cols) == 0 {
		return nil, &QueryError{Query: query, Err: fmt.Errorf("no such table: %s", table)}
	}
	return cols, nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent rejects anything that can't be safely quoted as a single
// identifier. Qualified "schema.table" names are split by the caller
// and each part validated on its own.
func validIdent(s string) error {
	if !identRe.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}

// Package warehouse defines the data warehouse capability consumed by
// the dispatcher, plus an explicit factory over the supported engine
// types. The validation core never imports this package — warehouses
// are only reached through approved action handlers.
package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Column describes one column of a table.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Warehouse is the capability interface every engine implements.
// Implementations distinguish connectivity failures (*ConnectError)
// from query-semantic failures (*QueryError) so callers can tell a
// broken connection apart from a broken statement.
type Warehouse interface {
	// Type returns the engine type identifier, e.g. "sqlite".
	Type() string
	// ExecuteQuery runs a SQL statement and returns its rows. For
	// statements without a result set, the returned slice is empty.
	ExecuteQuery(ctx context.Context, query string) ([]Row, error)
	// ListTables returns table names in the given schema. An empty
	// schema means the engine's default schema.
	ListTables(ctx context.Context, schema string) ([]string, error)
	// DescribeTable returns the columns of a table.
	DescribeTable(ctx context.Context, table string) ([]Column, error)
	Close() error
}

// Supported engine types.
const TypeSQLite = "sqlite"

// Open creates a warehouse of the given engine type. The factory is an
// explicit switch — new engine types are added here, not discovered at
// runtime.
func Open(engineType, dsn string) (Warehouse, error) {
	switch strings.ToLower(engineType) {
	case TypeSQLite:
		return openSQLite(dsn)
	default:
		return nil, fmt.Errorf(
			"unsupported warehouse type %q (supported: %s)",
			engineType, strings.Join(SupportedTypes(), ", "),
		)
	}
}

// SupportedTypes lists the engine types Open accepts.
func SupportedTypes() []string {
	return []string{TypeSQLite}
}

// ConnectError reports a connectivity or authentication failure — the
// warehouse could not be reached at all.
type ConnectError struct {
	Type string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Type, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError reports a failure of a specific statement against a
// healthy connection — bad SQL, missing table, type mismatch.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

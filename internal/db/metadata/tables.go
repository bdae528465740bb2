package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyfilter/internal/db/connection"
)

// toString safely converts an interface{} to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Table represents a PostgreSQL table
type Table struct {
	Schema string
	Name   string
	Size   string
}

// QualifiedName returns "schema.table"
func (t Table) QualifiedName() string {
	return t.Schema + "." + t.Name
}

// SplitTable splits "schema.table", falling back to defaultSchema
func SplitTable(qualified, defaultSchema string) (schema, table string) {
	if i := strings.Index(qualified, "."); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return defaultSchema, qualified
}

// ListTables returns all tables in a schema
func ListTables(ctx context.Context, pool *connection.Pool, schema string) ([]Table, error) {
	query := `
		SELECT
			schemaname as schema,
			tablename as name,
			pg_catalog.pg_size_pretty(pg_catalog.pg_total_relation_size(quote_ident(schemaname)||'.'||quote_ident(tablename))) as size
		FROM pg_catalog.pg_tables
		WHERE schemaname = $1
		ORDER BY tablename;
	`

	rows, err := pool.Query(ctx, query, schema)
	if err != nil {
		return nil, err
	}

	tables := make([]Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, Table{
			Schema: toString(row["schema"]),
			Name:   toString(row["name"]),
			Size:   toString(row["size"]),
		})
	}

	return tables, nil
}

// EstimateRows returns the planner's row estimate for a table
func EstimateRows(ctx context.Context, pool *connection.Pool, schema, table string) (int64, error) {
	query := `
		SELECT reltuples::bigint as estimate
		FROM pg_class
		WHERE oid = (quote_ident($1) || '.' || quote_ident($2))::regclass;
	`

	return pool.QueryInt(ctx, query, schema, table)
}

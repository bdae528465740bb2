package models

import "strings"

// ColumnType classifies a column for operator selection
type ColumnType string

const (
	ColumnTypeNumber   ColumnType = "number"
	ColumnTypeText     ColumnType = "text"
	ColumnTypeLongText ColumnType = "long_text"
	ColumnTypeBoolean  ColumnType = "boolean"
	ColumnTypeDate     ColumnType = "date"
)

// ColumnTypeFromPG maps a PostgreSQL data type (information_schema
// data_type or a type name) to a ColumnType. Types without a better fit,
// such as uuid, interval, enums and arrays, are text.
func ColumnTypeFromPG(dataType string) ColumnType {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	switch dt {
	case "smallint", "integer", "bigint", "int", "int2", "int4", "int8",
		"numeric", "decimal", "real", "double precision", "float4", "float8",
		"smallserial", "serial", "bigserial", "serial2", "serial4", "serial8":
		return ColumnTypeNumber
	case "boolean", "bool":
		return ColumnTypeBoolean
	case "date", "timestamp", "timestamptz":
		return ColumnTypeDate
	case "text", "json", "jsonb":
		return ColumnTypeLongText
	}
	switch {
	case strings.HasPrefix(dt, "numeric(") || strings.HasPrefix(dt, "decimal("):
		return ColumnTypeNumber
	case strings.HasPrefix(dt, "timestamp"):
		return ColumnTypeDate
	default:
		return ColumnTypeText
	}
}

// IsCharacterType reports whether a PostgreSQL data type is stored as
// text. Other types need a cast before pattern matching.
func IsCharacterType(dataType string) bool {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case dt == "text", dt == "citext", dt == "name", dt == "bpchar",
		dt == "varchar", dt == "char":
		return true
	case strings.HasPrefix(dt, "character"):
		return true
	}
	return false
}

// Column describes one filterable column
type Column struct {
	ID       string
	Name     string
	Type     ColumnType
	DataType string // PostgreSQL type, empty for static catalogs
	Nullable bool
}

// UnknownColumnName is displayed for conditions whose column no longer resolves
const UnknownColumnName = "Unknown field"

// Catalog is the ordered column list plus a lookup by id
type Catalog struct {
	Columns []Column
	byID    map[string]Column
}

// NewCatalog builds a catalog preserving column order
func NewCatalog(columns []Column) *Catalog {
	c := &Catalog{
		Columns: columns,
		byID:    make(map[string]Column, len(columns)),
	}
	for _, col := range columns {
		c.byID[col.ID] = col
	}
	return c
}

// Lookup returns the column with the given id
func (c *Catalog) Lookup(id string) (Column, bool) {
	if c == nil {
		return Column{}, false
	}
	col, ok := c.byID[id]
	return col, ok
}

// Resolve returns the column referenced by a nullable id
func (c *Catalog) Resolve(id *string) (Column, bool) {
	if id == nil {
		return Column{}, false
	}
	return c.Lookup(*id)
}

// DisplayName returns the column name or a fallback label
func (c *Catalog) DisplayName(id *string) string {
	if id == nil {
		return "Select field"
	}
	if col, ok := c.Lookup(*id); ok {
		return col.Name
	}
	return UnknownColumnName
}

// First returns the first column of the catalog
func (c *Catalog) First() (Column, bool) {
	if c == nil || len(c.Columns) == 0 {
		return Column{}, false
	}
	return c.Columns[0], true
}

// Len returns the number of columns
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Columns)
}

package filter

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// Builder generates PostgreSQL statements from a filter forest
type Builder struct {
	catalog *models.Catalog
	qb      sq.StatementBuilderType
}

// NewBuilder creates a new filter builder
func NewBuilder(catalog *models.Catalog) *Builder {
	return &Builder{
		catalog: catalog,
		qb:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SetCatalog swaps the column catalog
func (b *Builder) SetCatalog(catalog *models.Catalog) {
	b.catalog = catalog
}

// Predicate returns the condition tree as a squirrel expression, or nil
// when no condition is complete. Incomplete conditions and empty groups
// produce no predicate.
func (b *Builder) Predicate(f models.Forest) sq.Sqlizer {
	return b.buildScope(f.Items, f.Connector)
}

// BuildWhere generates a WHERE clause with $n placeholders
func (b *Builder) BuildWhere(f models.Forest) (string, []interface{}, error) {
	pred := b.Predicate(f)
	if pred == nil {
		return "", nil, nil
	}
	clause, args, err := pred.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build filter: %w", err)
	}
	clause, err = sq.Dollar.ReplacePlaceholders(clause)
	if err != nil {
		return "", nil, err
	}
	return "WHERE " + clause, args, nil
}

// Preview returns the WHERE clause with the values inlined, for display
func (b *Builder) Preview(f models.Forest) string {
	pred := b.Predicate(f)
	if pred == nil {
		return ""
	}
	return "WHERE " + sq.DebugSqlizer(pred)
}

// Select builds a SELECT * statement for the table
func (b *Builder) Select(schema, table string, f models.Forest, limit uint64) (string, []interface{}, error) {
	q := b.qb.Select("*").From(QuoteTable(schema, table))
	if pred := b.Predicate(f); pred != nil {
		q = q.Where(pred)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q.ToSql()
}

// Count builds a COUNT(*) statement for the table
func (b *Builder) Count(schema, table string, f models.Forest) (string, []interface{}, error) {
	q := b.qb.Select("COUNT(*)").From(QuoteTable(schema, table))
	if pred := b.Predicate(f); pred != nil {
		q = q.Where(pred)
	}
	return q.ToSql()
}

// QuoteTable returns a quoted schema-qualified table name
func QuoteTable(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}

func (b *Builder) buildScope(items []models.Item, connector models.Connector) sq.Sqlizer {
	var parts []sq.Sqlizer
	for _, item := range items {
		var part sq.Sqlizer
		switch it := item.(type) {
		case *models.Condition:
			part = b.buildCondition(it)
		case *models.Group:
			part = b.buildScope(it.Children, it.Connector)
		}
		if part != nil {
			parts = append(parts, part)
		}
	}
	switch {
	case len(parts) == 0:
		return nil
	case len(parts) == 1:
		return parts[0]
	case connector == models.ConnectorOr:
		return sq.Or(parts)
	default:
		return sq.And(parts)
	}
}

// buildCondition builds a single filter condition
func (b *Builder) buildCondition(c *models.Condition) sq.Sqlizer {
	col, ok := b.catalog.Resolve(c.ColumnID)
	if !ok {
		return nil
	}
	if c.Operator.NeedsValue() && c.Value == "" {
		return nil
	}
	if !SupportsOperator(col.Type, c.Operator) {
		return nil
	}
	ident := pgx.Identifier{col.ID}.Sanitize()
	textual := col.Type == models.ColumnTypeText || col.Type == models.ColumnTypeLongText

	// Pattern and empty-string comparisons run on the text form of the column
	asText := ident
	if col.DataType != "" && !models.IsCharacterType(col.DataType) {
		asText = ident + "::text"
	}

	switch c.Operator {
	case models.OpIsEmpty:
		if textual {
			return sq.Or{sq.Eq{ident: nil}, sq.Eq{asText: ""}}
		}
		return sq.Eq{ident: nil}
	case models.OpIsNotEmpty:
		if textual {
			return sq.And{sq.NotEq{ident: nil}, sq.NotEq{asText: ""}}
		}
		return sq.NotEq{ident: nil}
	case models.OpContains:
		return sq.ILike{asText: "%" + escapeLike(c.Value) + "%"}
	case models.OpNotContains:
		return sq.NotILike{asText: "%" + escapeLike(c.Value) + "%"}
	case models.OpStartsWith:
		return sq.ILike{asText: escapeLike(c.Value) + "%"}
	case models.OpEndsWith:
		return sq.ILike{asText: "%" + escapeLike(c.Value)}
	}

	if col.Type == models.ColumnTypeDate {
		op := comparisonSQL(c.Operator)
		if op == "" {
			return nil
		}
		return sq.Expr(fmt.Sprintf("%s %s ?::timestamp", ident, op), c.Value)
	}

	value, ok := typedValue(col.Type, c.Value)
	if !ok {
		return nil
	}
	switch c.Operator {
	case models.OpEquals:
		return sq.Eq{ident: value}
	case models.OpNotEquals:
		return sq.NotEq{ident: value}
	case models.OpGreaterThan:
		return sq.Gt{ident: value}
	case models.OpGreaterOrEqual:
		return sq.GtOrEq{ident: value}
	case models.OpLessThan:
		return sq.Lt{ident: value}
	case models.OpLessOrEqual:
		return sq.LtOrEq{ident: value}
	}
	return nil
}

func comparisonSQL(op models.Operator) string {
	switch op {
	case models.OpEquals:
		return "="
	case models.OpNotEquals:
		return "<>"
	case models.OpGreaterThan:
		return ">"
	case models.OpGreaterOrEqual:
		return ">="
	case models.OpLessThan:
		return "<"
	case models.OpLessOrEqual:
		return "<="
	}
	return ""
}

// typedValue converts user text into the Go value pgx should bind.
// Values that do not parse for the column type are skipped.
func typedValue(t models.ColumnType, s string) (interface{}, bool) {
	switch t {
	case models.ColumnTypeNumber:
		if !IsNumericText(s) {
			return nil, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case models.ColumnTypeBoolean:
		v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
		if err != nil {
			return nil, false
		}
		return v, true
	default:
		return s, true
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

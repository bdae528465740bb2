package filter

import (
	"regexp"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

var (
	numberOperators = []models.Operator{
		models.OpEquals, models.OpNotEquals,
		models.OpGreaterThan, models.OpGreaterOrEqual,
		models.OpLessThan, models.OpLessOrEqual,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
	textOperators = []models.Operator{
		models.OpContains, models.OpNotContains,
		models.OpEquals, models.OpNotEquals,
		models.OpStartsWith, models.OpEndsWith,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
	booleanOperators = []models.Operator{
		models.OpEquals, models.OpNotEquals,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
)

// GetOperatorsForType returns available operators for a column type
func GetOperatorsForType(t models.ColumnType) []models.Operator {
	switch t {
	case models.ColumnTypeNumber, models.ColumnTypeDate:
		return numberOperators
	case models.ColumnTypeBoolean:
		return booleanOperators
	default:
		return textOperators
	}
}

// OperatorsFor returns the operators valid for a condition's column. A
// missing or dangling column falls back to the text operator set.
func OperatorsFor(catalog *models.Catalog, columnID *string) []models.Operator {
	col, ok := catalog.Resolve(columnID)
	if !ok {
		return textOperators
	}
	return GetOperatorsForType(col.Type)
}

// DefaultOperator returns the operator a new condition starts with
func DefaultOperator(t models.ColumnType) models.Operator {
	switch t {
	case models.ColumnTypeNumber, models.ColumnTypeBoolean:
		return models.OpEquals
	default:
		return models.OpContains
	}
}

// SupportsOperator reports whether op is valid for the column type
func SupportsOperator(t models.ColumnType, op models.Operator) bool {
	for _, o := range GetOperatorsForType(t) {
		if o == op {
			return true
		}
	}
	return false
}

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// IsNumericText reports whether s is acceptable input for a number column
func IsNumericText(s string) bool {
	return numericPattern.MatchString(s)
}

// ValueErrors returns the ids of conditions whose value does not fit their
// column: a non-empty value on a number column that is not numeric text.
// The flagged values stay in the tree; this only drives presentation.
func ValueErrors(f models.Forest, catalog *models.Catalog) map[string]bool {
	errs := make(map[string]bool)
	Walk(f, func(v Visit) bool {
		c, ok := v.Item.(*models.Condition)
		if !ok {
			return true
		}
		col, ok := catalog.Resolve(c.ColumnID)
		if !ok || col.Type != models.ColumnTypeNumber {
			return true
		}
		if c.Operator.NeedsValue() && c.Value != "" && !IsNumericText(c.Value) {
			errs[c.ID] = true
		}
		return true
	})
	return errs
}

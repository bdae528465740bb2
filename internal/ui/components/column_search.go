package components

import (
	"strings"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// ColumnQuery represents a parsed column search query
type ColumnQuery struct {
	Pattern    string            // The search pattern (after removing prefix/type)
	Negate     bool              // True if query starts with !
	TypeFilter models.ColumnType // Empty matches every type
}

// Type prefix mappings
var typePrefixes = map[string]models.ColumnType{
	// Short prefixes
	"n:": models.ColumnTypeNumber,
	"t:": models.ColumnTypeText,
	"l:": models.ColumnTypeLongText,
	"b:": models.ColumnTypeBoolean,
	"d:": models.ColumnTypeDate,
	// Long prefixes
	"num:":     models.ColumnTypeNumber,
	"number:":  models.ColumnTypeNumber,
	"text:":    models.ColumnTypeText,
	"long:":    models.ColumnTypeLongText,
	"bool:":    models.ColumnTypeBoolean,
	"boolean:": models.ColumnTypeBoolean,
	"date:":    models.ColumnTypeDate,
}

// ParseColumnQuery parses a search query string into structured form
// Examples:
//   - "age" → {Pattern: "age"}
//   - "!id" → {Pattern: "id", Negate: true}
//   - "n:age" → {Pattern: "age", TypeFilter: number}
//   - "!d:" → {Negate: true, TypeFilter: date}
func ParseColumnQuery(query string) ColumnQuery {
	q := ColumnQuery{}

	// Check for negation prefix
	if strings.HasPrefix(query, "!") {
		q.Negate = true
		query = query[1:]
	}

	// Check for type prefix
	queryLower := strings.ToLower(query)
	for prefix, typ := range typePrefixes {
		if strings.HasPrefix(queryLower, prefix) {
			q.TypeFilter = typ
			query = query[len(prefix):]
			break
		}
	}

	q.Pattern = query
	return q
}

// FuzzyMatch performs fuzzy subsequence matching
// Returns whether the pattern matches and the byte positions of matched characters
// Matching is case-insensitive
func FuzzyMatch(pattern, target string) (bool, []int) {
	if pattern == "" {
		return true, []int{}
	}

	patternLower := strings.ToLower(pattern)
	targetLower := strings.ToLower(target)

	positions := make([]int, 0, len(pattern))
	patternIdx := 0

	for i := 0; i < len(targetLower) && patternIdx < len(patternLower); i++ {
		if targetLower[i] == patternLower[patternIdx] {
			positions = append(positions, i)
			patternIdx++
		}
	}

	if patternIdx == len(patternLower) {
		return true, positions
	}
	return false, nil
}

// Matches reports whether a column satisfies the query
func (q ColumnQuery) Matches(col models.Column) bool {
	typeMatches := q.TypeFilter == "" || col.Type == q.TypeFilter

	patternMatches := true
	if q.Pattern != "" {
		byName, _ := FuzzyMatch(q.Pattern, col.Name)
		byID, _ := FuzzyMatch(q.Pattern, col.ID)
		patternMatches = byName || byID
	}

	if !q.Negate {
		return typeMatches && patternMatches
	}
	// Negation excludes what the positive query would include
	if q.TypeFilter != "" && q.Pattern == "" {
		return !typeMatches
	}
	return typeMatches && !patternMatches
}

// MatchColumns returns the indices of the matching columns in catalog order
func MatchColumns(columns []models.Column, q ColumnQuery) []int {
	matches := make([]int, 0, len(columns))
	for i, col := range columns {
		if q.Matches(col) {
			matches = append(matches, i)
		}
	}
	return matches
}

package components

import (
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func TestParseColumnQuery_Simple(t *testing.T) {
	q := ParseColumnQuery("age")

	if q.Pattern != "age" {
		t.Errorf("expected pattern 'age', got '%s'", q.Pattern)
	}
	if q.Negate {
		t.Error("expected Negate=false")
	}
	if q.TypeFilter != "" {
		t.Errorf("expected empty TypeFilter, got '%s'", q.TypeFilter)
	}
}

func TestParseColumnQuery_NegateWithType(t *testing.T) {
	q := ParseColumnQuery("!n:id")

	if q.Pattern != "id" {
		t.Errorf("expected pattern 'id', got '%s'", q.Pattern)
	}
	if !q.Negate {
		t.Error("expected Negate=true")
	}
	if q.TypeFilter != models.ColumnTypeNumber {
		t.Errorf("expected TypeFilter 'number', got '%s'", q.TypeFilter)
	}
}

func TestParseColumnQuery_TypeLong(t *testing.T) {
	q := ParseColumnQuery("Date:signed")

	if q.Pattern != "signed" {
		t.Errorf("expected pattern 'signed', got '%s'", q.Pattern)
	}
	if q.TypeFilter != models.ColumnTypeDate {
		t.Errorf("expected TypeFilter 'date', got '%s'", q.TypeFilter)
	}
}

func TestFuzzyMatch_Subsequence(t *testing.T) {
	match, positions := FuzzyMatch("ltv", "lifetime_value")

	if !match {
		t.Error("expected match")
	}
	if len(positions) != 3 || positions[0] != 0 {
		t.Errorf("unexpected positions %v", positions)
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	if match, _ := FuzzyMatch("xyz", "lifetime_value"); match {
		t.Error("expected no match")
	}
}

func TestFuzzyMatch_CaseInsensitive(t *testing.T) {
	if match, _ := FuzzyMatch("AGE", "age"); !match {
		t.Error("expected case-insensitive match")
	}
}

func TestFuzzyMatch_EmptyPattern(t *testing.T) {
	match, positions := FuzzyMatch("", "anything")

	if !match {
		t.Error("empty pattern should match everything")
	}
	if len(positions) != 0 {
		t.Error("empty pattern should have no positions")
	}
}

func searchColumns() []models.Column {
	return []models.Column{
		{ID: "id", Name: "ID", Type: models.ColumnTypeNumber},
		{ID: "name", Name: "Name", Type: models.ColumnTypeText},
		{ID: "age", Name: "Age", Type: models.ColumnTypeNumber},
		{ID: "signed_up_at", Name: "Signed up", Type: models.ColumnTypeDate},
		{ID: "active", Name: "Active", Type: models.ColumnTypeBoolean},
	}
}

func TestMatchColumns(t *testing.T) {
	cols := searchColumns()

	tests := []struct {
		query string
		want  []int
	}{
		{"", []int{0, 1, 2, 3, 4}},
		{"a", []int{1, 2, 3, 4}},
		{"n:", []int{0, 2}},
		{"n:ag", []int{2}},
		{"!n:", []int{1, 3, 4}},
		{"!a", []int{0}},
		{"signed_up", []int{3}},
	}

	for _, tt := range tests {
		got := MatchColumns(cols, ParseColumnQuery(tt.query))
		if !intsEqual(got, tt.want) {
			t.Errorf("MatchColumns(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

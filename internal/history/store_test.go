package history

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func newTestStore(t *testing.T, max int) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "history.db"), max)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleForest(value string) models.Forest {
	return models.Forest{
		Connector: models.ConnectorOr,
		Items: []models.Item{
			&models.Condition{ID: "c1", ColumnID: models.StringPtr("name"), Operator: models.OpContains, Value: value},
			&models.Group{ID: "g1", Connector: models.ConnectorAnd, Children: []models.Item{
				&models.Condition{ID: "c2", ColumnID: models.StringPtr("age"), Operator: models.OpGreaterThan, Value: "3"},
			}},
		},
	}
}

func TestStore_LatestRestoresLastCommit(t *testing.T) {
	s := newTestStore(t, 0)

	if _, found, err := s.Latest("public.users"); err != nil || found {
		t.Fatalf("expected no history, got found=%v err=%v", found, err)
	}

	if err := s.Commit("public.users", sampleForest("a"), ""); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	want := sampleForest("b")
	if err := s.Commit("public.users", want, `WHERE "name" ILIKE '%b%'`); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := s.Commit("public.orders", sampleForest("x"), ""); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	got, found, err := s.Latest("public.users")
	if err != nil || !found {
		t.Fatalf("expected history, got found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Error("expected the last committed forest")
	}

	entries, err := s.GetRecent("public.users", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ConditionCount != 2 || entries[0].WhereSQL == "" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestStore_PrunesPerTable(t *testing.T) {
	s := newTestStore(t, 2)

	for _, v := range []string{"1", "2", "3", "4"} {
		if err := s.Commit("t", sampleForest(v), ""); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
	}

	entries, err := s.GetRecent("t", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after pruning, got %d", len(entries))
	}
	c := entries[0].Filter.Items[0].(*models.Condition)
	if c.Value != "4" {
		t.Errorf("expected newest entry first, got value '%s'", c.Value)
	}
}

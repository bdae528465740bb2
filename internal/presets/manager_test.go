package presets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func sampleForest() models.Forest {
	return models.Forest{
		Connector: models.ConnectorAnd,
		Items: []models.Item{
			&models.Condition{ID: "c1", ColumnID: models.StringPtr("age"), Operator: models.OpGreaterThan, Value: "30"},
			&models.Group{ID: "g1", Connector: models.ConnectorOr, Children: []models.Item{
				&models.Condition{ID: "c2", ColumnID: models.StringPtr("name"), Operator: models.OpContains, Value: "bo"},
				&models.Condition{ID: "c3", ColumnID: models.StringPtr("name"), Operator: models.OpIsEmpty},
			}},
		},
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "lazyfilter", "presets.yaml"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m
}

func TestManager_AddAndReload(t *testing.T) {
	m := newTestManager(t)

	p, err := m.Add("  Adults  ", "public.users", sampleForest())
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if p.Name != "Adults" {
		t.Errorf("expected trimmed name, got '%s'", p.Name)
	}
	if p.ID == "" {
		t.Error("expected an id")
	}

	// A second manager reads what the first one saved
	other, err := NewManager(m.Path())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := other.Get(p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	f, err := Forest(*got)
	if err != nil {
		t.Fatalf("Forest failed: %v", err)
	}
	if !reflect.DeepEqual(f, sampleForest()) {
		t.Error("expected the saved forest to survive a reload")
	}
}

func TestManager_DuplicateNames(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Add("Adults", "public.users", sampleForest()); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := m.Add("ADULTS", "public.orders", sampleForest()); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := m.Add("   ", "public.users", sampleForest()); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	other, err := m.Add("Other", "public.users", models.NewForest())
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Update(other.ID, "adults", models.NewForest()); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected rename onto an existing name to fail, got %v", err)
	}
	// Renaming a preset to its own name in another case is fine
	if err := m.Update(other.ID, "OTHER", sampleForest()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	got, _ := m.FindByName("other")
	if got == nil || got.Name != "OTHER" || len(got.Filter.Items) != 2 {
		t.Errorf("expected updated preset, got %+v", got)
	}
}

func TestManager_DeleteAndNotFound(t *testing.T) {
	m := newTestManager(t)

	p, err := m.Add("Adults", "public.users", sampleForest())
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Delete(p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(m.GetAll()) != 0 {
		t.Errorf("expected no presets, got %d", len(m.GetAll()))
	}
	if err := m.Delete(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := m.RecordUsage("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_ForTableOrdersByLastUse(t *testing.T) {
	m := newTestManager(t)

	a, _ := m.Add("A", "public.users", sampleForest())
	b, _ := m.Add("B", "public.users", sampleForest())
	if _, err := m.Add("C", "public.orders", sampleForest()); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := m.RecordUsage(b.ID); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}

	list := m.ForTable("public.users")
	if len(list) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("expected most recently used first, got %s, %s", list[0].Name, list[1].Name)
	}
	if list[0].UsageCount != 1 {
		t.Errorf("expected usage count 1, got %d", list[0].UsageCount)
	}

	if len(m.ForTable("")) != 3 {
		t.Error("expected an empty table to list every preset")
	}
	if len(m.Search("orders")) != 1 {
		t.Error("expected search to match the table")
	}
}

func TestManager_RejectsInvalidStoredFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	data := []byte(`- id: p1
  name: Broken
  table: public.users
  filter:
    connector: xor
    items: []
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	p, err := m.Get("p1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := Forest(*p); err == nil {
		t.Error("expected an invalid connector to be rejected")
	}
}

func TestManager_Export(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.ExportToCSV(""); err == nil {
		t.Error("expected exporting nothing to fail")
	}
	if _, err := m.Add("Adults", "public.users", sampleForest()); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	path, err := m.ExportToJSON("")
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Dir(m.Path()) {
		t.Errorf("expected export next to the presets file, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected export file: %v", err)
	}
}

func TestWatcher_ReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")

	w, err := NewWatcher(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	// Writes to other files in the directory are ignored
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	select {
	case <-w.Changed():
		t.Fatal("unexpected change for another file")
	case <-time.After(100 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("[]\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestWatcher_CloseReleasesWaiters(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "presets.yaml"))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	done := make(chan bool)
	go func() {
		_, ok := <-w.Changed()
		done <- ok
	}()

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	select {
	case ok := <-done:
		if ok {
			t.Error("expected the channel closed, got a change")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected Close to release the waiting receiver")
	}
}

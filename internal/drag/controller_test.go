package drag

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/layout"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func cond(id string) *models.Condition {
	return &models.Condition{ID: id, Operator: models.OpContains}
}

func group(id string, children ...models.Item) *models.Group {
	return &models.Group{ID: id, Connector: models.ConnectorAnd, Children: children}
}

func forest(items ...models.Item) models.Forest {
	return models.Forest{Items: items, Connector: models.ConnectorAnd}
}

func entriesFor(f models.Forest) []layout.Entry {
	return layout.Compute(layout.Input{Forest: f, Catalog: models.NewCatalog(nil), Metrics: layout.DefaultMetrics()})
}

func itemIDs(items []models.Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ItemID())
	}
	return ids
}

func TestController_ReparentIntoEmptyGroup(t *testing.T) {
	f := forest(cond("A"), cond("B"), group("G"))
	entries := entriesFor(f)
	c := NewController(nil, nil)

	if err := c.Begin(entries, "A", 3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Origin() != (Origin{Scope: filter.Root, Index: 0}) {
		t.Errorf("unexpected origin %+v", c.Origin())
	}

	c.Move(entries, 5, 3)
	target, ok := c.Target()
	if !ok || target.Scope != filter.InGroup("G") || target.Index != 0 {
		t.Fatalf("expected target G[0], got %+v ok=%v", target, ok)
	}

	d := c.Layout()
	if d == nil || d.GrabX != 3 || d.GrabY != 0 || !d.HasTarget {
		t.Errorf("unexpected layout drag %+v", d)
	}

	next, dropped := c.Drop(f, entries, 5, 3)
	if !dropped || c.State() != Dropped {
		t.Fatalf("expected drop, got state %s", c.State())
	}
	if ids := itemIDs(next.Items); !reflect.DeepEqual(ids, []string{"B", "G"}) {
		t.Errorf("expected root [B G], got %v", ids)
	}
	g, _, _ := filter.FindGroup(next, "G")
	if ids := itemIDs(g.Children); !reflect.DeepEqual(ids, []string{"A"}) {
		t.Errorf("expected G children [A], got %v", ids)
	}
	if c.Layout() != nil {
		t.Error("expected no layout drag after drop")
	}
}

func TestController_DropOutsideCancels(t *testing.T) {
	var released int
	listeners := NewListeners(nil, func() { released++ })
	f := forest(cond("A"), cond("B"))
	entries := entriesFor(f)
	c := NewController(listeners, nil)

	if err := c.Begin(entries, "B", 0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listeners.Held() != 1 {
		t.Errorf("expected listeners held during drag, got %d", listeners.Held())
	}

	next, dropped := c.Drop(f, entries, 100, 40)
	if dropped || c.State() != Cancelled {
		t.Errorf("expected cancel, got state %s", c.State())
	}
	if !reflect.DeepEqual(next, f) {
		t.Error("expected forest unchanged")
	}
	if listeners.Held() != 0 || released != 1 {
		t.Errorf("expected one release, got held=%d released=%d", listeners.Held(), released)
	}

	c.Cancel()
	c.Close()
	if released != 1 {
		t.Errorf("expected release to run exactly once, got %d", released)
	}
}

func TestController_ReorderAtRoot(t *testing.T) {
	f := forest(cond("A"), cond("B"), cond("C"))
	entries := entriesFor(f)
	c := NewController(nil, nil)

	c.Begin(entries, "A", 1, 0)
	next, _ := c.Drop(f, entries, 1, 2)
	if ids := itemIDs(next.Items); !reflect.DeepEqual(ids, []string{"B", "A", "C"}) {
		t.Errorf("expected [B A C], got %v", ids)
	}

	c.Begin(entries, "A", 1, 0)
	next, _ = c.Drop(f, entries, 1, 3)
	if ids := itemIDs(next.Items); !reflect.DeepEqual(ids, []string{"B", "C", "A"}) {
		t.Errorf("expected [B C A], got %v", ids)
	}
}

func TestController_Reentrancy(t *testing.T) {
	entries := entriesFor(forest(cond("A"), group("G", cond("B"))))
	ex := &Exclusive{}
	c := NewController(nil, ex)

	menuClosed := false
	ex.Open("operator:A", func() { menuClosed = true })

	if err := c.Begin(entries, "G", 1, 1); !errors.Is(err, ErrNotDraggable) {
		t.Errorf("expected ErrNotDraggable, got %v", err)
	}
	if err := c.Begin(entries, "A", 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !menuClosed {
		t.Error("expected starting a drag to close the open menu")
	}
	if err := c.Begin(entries, "B", 5, 2); !errors.Is(err, ErrAlreadyDragging) {
		t.Errorf("expected ErrAlreadyDragging, got %v", err)
	}

	ex.Open("field:B", func() {})
	if c.State() != Cancelled {
		t.Errorf("expected opening a menu to cancel the drag, got %s", c.State())
	}
	if ex.Current() != "field:B" {
		t.Errorf("expected field:B to be open, got '%s'", ex.Current())
	}
}

func TestController_KeyboardDrag(t *testing.T) {
	f := forest(cond("A"), cond("B"), group("G"))
	entries := entriesFor(f)
	c := NewController(nil, nil)

	if err := c.BeginKeyboard(entries, "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Nudge(entries, 0, 1)
	c.Nudge(entries, 0, 1)

	next, ok := c.DropHere(f)
	if !ok {
		t.Fatal("expected keyboard drop to apply")
	}
	g, _, _ := filter.FindGroup(next, "G")
	if ids := itemIDs(g.Children); !reflect.DeepEqual(ids, []string{"A"}) {
		t.Errorf("expected G children [A], got %v", ids)
	}
}

func TestResolve_DeepestGroupWins(t *testing.T) {
	f := forest(group("G0", cond("A"), group("G1", cond("B"))))
	entries := entriesFor(f)
	g1, _ := layout.Find(entries, "G1")

	target, ok := Resolve(entries, "A", g1.Left+1, g1.Top+1)
	if !ok || target.Scope != filter.InGroup("G1") {
		t.Errorf("expected G1, got %+v ok=%v", target, ok)
	}

	target, ok = Resolve(entries, "A", 1, 1)
	if !ok || target.Scope != filter.InGroup("G0") || target.Index != 0 {
		t.Errorf("expected G0[0], got %+v ok=%v", target, ok)
	}

	if _, ok := Resolve(entries, "A", -1, 0); ok {
		t.Error("expected negative coordinates not to resolve")
	}
}

func TestExclusive_CloseAll(t *testing.T) {
	ex := &Exclusive{}
	closed := 0
	ex.Open("a", func() { closed++ })
	ex.Open("a", func() { closed++ })
	if closed != 0 {
		t.Error("expected reopening the same member not to close it")
	}
	ex.CloseAll()
	ex.CloseAll()
	if closed != 1 || ex.Current() != "" {
		t.Errorf("expected one close, got %d", closed)
	}
}

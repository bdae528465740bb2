package layout

import (
	"reflect"
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/highlight"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func testCatalog() *models.Catalog {
	return models.NewCatalog([]models.Column{
		{ID: "age", Name: "Age", Type: models.ColumnTypeNumber},
		{ID: "name", Name: "Name", Type: models.ColumnTypeText},
	})
}

func cond(id string) *models.Condition {
	return &models.Condition{ID: id, ColumnID: models.StringPtr("name"), Operator: models.OpContains}
}

func group(id string, connector models.Connector, children ...models.Item) *models.Group {
	return &models.Group{ID: id, Connector: connector, Children: children}
}

func input(items ...models.Item) Input {
	return Input{
		Forest:  models.Forest{Items: items, Connector: models.ConnectorAnd},
		Catalog: testCatalog(),
		Metrics: DefaultMetrics(),
	}
}

func mustFind(t *testing.T, entries []Entry, id string) Entry {
	t.Helper()
	e, ok := Find(entries, id)
	if !ok {
		t.Fatalf("entry %s not found", id)
	}
	return e
}

func TestCompute_EmptyForest(t *testing.T) {
	entries := Compute(input())
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestCompute_TwoSiblings(t *testing.T) {
	entries := Compute(input(cond("c1"), cond("c2")))

	first := mustFind(t, entries, "c1")
	second := mustFind(t, entries, "c2")
	if first.ShowConnector || first.ConnectorEditable {
		t.Error("expected no connector on the first item")
	}
	if first.ConnectorLabel != WhereLabel {
		t.Errorf("expected 'Where' label, got '%s'", first.ConnectorLabel)
	}
	if !second.ShowConnector || !second.ConnectorEditable {
		t.Error("expected an editable connector on the second item")
	}
	if second.ConnectorLabel != "and" {
		t.Errorf("expected label 'and', got '%s'", second.ConnectorLabel)
	}
	if first.Top != 0 || second.Top != 1 {
		t.Errorf("expected tops 0 and 1, got %d and %d", first.Top, second.Top)
	}
}

func TestCompute_ThreeSiblings(t *testing.T) {
	in := input(cond("c1"), cond("c2"), cond("c3"))
	in.Forest.Connector = models.ConnectorOr
	entries := Compute(in)

	second := mustFind(t, entries, "c2")
	third := mustFind(t, entries, "c3")
	if !second.ConnectorEditable {
		t.Error("expected the second connector to be editable")
	}
	if !third.ShowConnector || third.ConnectorEditable {
		t.Error("expected a static connector on the third item")
	}
	if third.ConnectorLabel != second.ConnectorLabel || third.ConnectorLabel != "or" {
		t.Errorf("expected both labels 'or', got '%s' and '%s'", second.ConnectorLabel, third.ConnectorLabel)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := input(cond("c1"), group("g1", models.ConnectorOr, cond("c2"), group("g2", models.ConnectorAnd)), cond("c3"))

	if !reflect.DeepEqual(Compute(in), Compute(in)) {
		t.Error("expected identical entries for identical input")
	}
}

func TestCompute_PreOrderAndGroupSizing(t *testing.T) {
	entries := Compute(input(cond("c1"), group("g1", models.ConnectorOr, cond("c2"), cond("c3")), cond("c4")))

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c1", "g1", "c2", "c3", "c4"}) {
		t.Fatalf("unexpected order %v", ids)
	}

	g := mustFind(t, entries, "g1")
	if g.Kind != KindGroup || g.Top != 1 || g.Height != 6 {
		t.Errorf("expected group at top 1 with height 6, got top %d height %d", g.Top, g.Height)
	}
	if g.Width != 66 {
		t.Errorf("expected group width 66, got %d", g.Width)
	}
	if g.Header != "Any of the following are true…" {
		t.Errorf("unexpected header '%s'", g.Header)
	}

	c2 := mustFind(t, entries, "c2")
	if c2.Top != 3 || c2.Left != 4 || c2.Depth != 1 {
		t.Errorf("expected c2 at (4,3) depth 1, got (%d,%d) depth %d", c2.Left, c2.Top, c2.Depth)
	}
	if c2.Width != DefaultMetrics().RowWidth {
		t.Errorf("expected constant row width, got %d", c2.Width)
	}
	if c2.ConnectorLabel != WhereLabel || c2.ShowConnector {
		t.Error("expected 'Where' on the first row of a group")
	}
	if c3 := mustFind(t, entries, "c3"); c3.ConnectorLabel != "or" || !c3.ConnectorEditable {
		t.Error("expected group connector on the second row of the group")
	}
	if c4 := mustFind(t, entries, "c4"); c4.Top != 7 {
		t.Errorf("expected c4 at top 7, got %d", c4.Top)
	}
}

func TestCompute_EmptyGroup(t *testing.T) {
	entries := Compute(input(group("g1", models.ConnectorAnd), cond("c1")))

	g := mustFind(t, entries, "g1")
	m := DefaultMetrics()
	if !g.Empty || g.Placeholder != EmptyGroupPlaceholder {
		t.Error("expected empty group placeholder")
	}
	if g.Header != "" {
		t.Errorf("expected no header on an empty group, got '%s'", g.Header)
	}
	if g.Width != m.EmptyGroupWidth || g.Height != m.EmptyGroupHeight {
		t.Errorf("expected %dx%d, got %dx%d", m.EmptyGroupWidth, m.EmptyGroupHeight, g.Width, g.Height)
	}
	if c := mustFind(t, entries, "c1"); c.Top != m.EmptyGroupHeight {
		t.Errorf("expected c1 below the empty group, got top %d", c.Top)
	}
}

func TestCompute_NestedDepthAndParents(t *testing.T) {
	entries := Compute(input(group("g0", models.ConnectorAnd, group("g1", models.ConnectorOr, cond("c1")))))

	g0 := mustFind(t, entries, "g0")
	g1 := mustFind(t, entries, "g1")
	c1 := mustFind(t, entries, "c1")

	if !g0.CanAddGroup || g1.CanAddGroup {
		t.Error("expected only the root-level group to accept groups")
	}
	if g1.Depth != 1 || g1.Left != 4 || g1.Top != 2 {
		t.Errorf("unexpected nested group geometry depth %d at (%d,%d)", g1.Depth, g1.Left, g1.Top)
	}
	if c1.Depth != 2 || c1.Left != 8 || c1.Top != 4 {
		t.Errorf("unexpected row geometry depth %d at (%d,%d)", c1.Depth, c1.Left, c1.Top)
	}
	if c1.ParentID != "g1" || c1.GrandparentID != "g0" {
		t.Errorf("expected parents g1/g0, got %s/%s", c1.ParentID, c1.GrandparentID)
	}
	if c1.Scope != filter.InGroup("g1") {
		t.Errorf("expected scope group:g1, got %s", c1.Scope)
	}
	if g1.Height != 5 || g0.Height != 9 {
		t.Errorf("expected heights 5 and 9, got %d and %d", g1.Height, g0.Height)
	}
	if g0.Width <= g1.Width {
		t.Errorf("expected outer group wider than inner, got %d <= %d", g0.Width, g1.Width)
	}
}

func TestCompute_ConnectorPropagation(t *testing.T) {
	in := input(
		group("g1", models.ConnectorOr, cond("c1"), cond("c2")),
		group("g2", models.ConnectorAnd, cond("c3"), cond("c4")),
	)
	entries := Compute(in)

	if g := mustFind(t, entries, "g2"); g.Header != "All of the following are true…" {
		t.Errorf("unexpected sibling header '%s'", g.Header)
	}
	if c := mustFind(t, entries, "c4"); c.ConnectorLabel != "and" {
		t.Errorf("expected sibling group connector 'and', got '%s'", c.ConnectorLabel)
	}
	if g := mustFind(t, entries, "g2"); g.ConnectorLabel != "and" {
		t.Errorf("expected root connector 'and' on g2, got '%s'", g.ConnectorLabel)
	}
}

func TestCompute_DragPreview(t *testing.T) {
	in := input(cond("A"), cond("B"), group("G", models.ConnectorAnd))
	in.Drag = &Drag{
		ConditionID: "A",
		Target:      filter.InGroup("G"),
		Index:       0,
		HasTarget:   true,
		X:           10,
		Y:           5,
		GrabX:       2,
	}
	entries := Compute(in)

	a := mustFind(t, entries, "A")
	if !a.Ghost || a.ParentID != "G" || a.Depth != 1 {
		t.Errorf("expected ghost row inside G, got ghost=%v parent=%s depth=%d", a.Ghost, a.ParentID, a.Depth)
	}
	if b := mustFind(t, entries, "B"); b.Top != 0 || b.ShowConnector {
		t.Error("expected B to become the first root item")
	}
	preview := mustFind(t, entries, PreviewID("A"))
	if preview.Kind != KindDragPreview || preview.Top != 5 || preview.Left != 8 {
		t.Errorf("unexpected preview %s at (%d,%d)", preview.Kind, preview.Left, preview.Top)
	}
	if entries[len(entries)-1].ID != PreviewID("A") {
		t.Error("expected the preview to be the last entry")
	}

	// The committed forest is untouched
	if len(in.Forest.Items) != 3 {
		t.Error("expected the input forest to keep three root items")
	}
}

func TestCompute_DragWithoutTargetKeepsTree(t *testing.T) {
	in := input(cond("A"), cond("B"))
	in.Drag = &Drag{ConditionID: "A", X: 70, Y: 20}
	entries := Compute(in)

	a := mustFind(t, entries, "A")
	if a.Top != 0 || !a.Ghost {
		t.Error("expected A to stay in place as a ghost")
	}
	if _, ok := Find(entries, PreviewID("A")); !ok {
		t.Error("expected a floating preview")
	}
}

func TestCompute_HighlightsAndMenus(t *testing.T) {
	in := input(cond("c1"), cond("c2"), &models.Condition{ID: "c3", ColumnID: models.StringPtr("gone"), Operator: models.OpEquals})
	in.Highlighted = func(key string) bool { return key == highlight.Key(highlight.Field, "c1") }
	in.OpenMenu = highlight.Key(highlight.Connector, filter.Root.String())
	in.ValueErrors = map[string]bool{"c2": true}
	in.CursorID = "c2"
	entries := Compute(in)

	if c1 := mustFind(t, entries, "c1"); !c1.Highlighted[highlight.Field] || c1.Highlighted[highlight.Operator] {
		t.Error("expected only the field of c1 to be highlighted")
	}
	c2 := mustFind(t, entries, "c2")
	if c2.OpenMenu != highlight.Connector {
		t.Errorf("expected connector menu on c2, got '%s'", c2.OpenMenu)
	}
	if !c2.ValueError || !c2.Focused {
		t.Error("expected c2 to be focused with a value error")
	}
	c3 := mustFind(t, entries, "c3")
	if !c3.Dangling || c3.FieldLabel != models.UnknownColumnName {
		t.Errorf("expected dangling column label, got '%s'", c3.FieldLabel)
	}
}

func TestExtentAndRows(t *testing.T) {
	entries := Compute(input(cond("c1"), group("g1", models.ConnectorAnd, cond("c2"))))

	w, h := Extent(entries)
	if w != 66 || h != 6 {
		t.Errorf("expected extent 66x6, got %dx%d", w, h)
	}
	if rows := Rows(entries); !reflect.DeepEqual(rows, []string{"c1", "c2"}) {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestMetrics_Normalize(t *testing.T) {
	m := Metrics{RowWidth: 10}.Normalize()
	if m.RowWidth < m.ConnectorWidth+m.FieldWidth+m.OperatorWidth {
		t.Errorf("expected row width to fit its boxes, got %d", m.RowWidth)
	}
	if m.RowHeight != 1 || m.Indent != 4 {
		t.Errorf("expected defaults, got row height %d indent %d", m.RowHeight, m.Indent)
	}
	if m.ValueWidth() <= 0 {
		t.Errorf("expected a positive value width, got %d", m.ValueWidth())
	}
}

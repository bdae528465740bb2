package layout

import (
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/highlight"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// Kind distinguishes layout entries
type Kind int

const (
	KindRow Kind = iota
	KindGroup
	KindDragPreview
)

func (k Kind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindGroup:
		return "group"
	case KindDragPreview:
		return "drag-preview"
	}
	return "unknown"
}

const (
	// WhereLabel replaces the connector on the first item of a scope
	WhereLabel = "Where"
	// EmptyGroupPlaceholder is centered inside groups without children
	EmptyGroupPlaceholder = "No conditions in this group"
)

// Entry is one positioned, renderable unit: a condition row, a group box
// or the floating preview of a dragged row
type Entry struct {
	ID   string
	Kind Kind

	Top, Left     int
	Width, Height int

	Depth         int // 0/1/2 for rows, 0/1 for groups
	Scope         filter.Scope
	Index         int // position among the scope's children
	ParentID      string
	GrandparentID string

	// Connector presentation; the scope connector applies to every sibling
	Connector         models.Connector
	ConnectorLabel    string
	ShowConnector     bool
	ConnectorEditable bool

	// Rows
	Condition     *models.Condition
	FieldLabel    string
	OperatorLabel string
	Value         string
	Dangling      bool
	ValueError    bool
	Ghost         bool

	// Groups
	Group       *models.Group
	Header      string
	Placeholder string
	Empty       bool
	CanAddGroup bool

	Focused     bool
	OpenMenu    highlight.Part
	Highlighted map[highlight.Part]bool
}

// Bottom is the first line below the entry
func (e Entry) Bottom() int { return e.Top + e.Height }

// Right is the first column right of the entry
func (e Entry) Right() int { return e.Left + e.Width }

// Contains reports whether the cell (x, y) lies inside the entry
func (e Entry) Contains(x, y int) bool {
	return x >= e.Left && x < e.Right() && y >= e.Top && y < e.Bottom()
}

// Drag describes an in-flight drag for layout purposes
type Drag struct {
	ConditionID string
	Target      filter.Scope
	Index       int
	HasTarget   bool // Target/Index resolve to a valid drop position
	X, Y        int  // pointer cell
	GrabX       int  // pointer offset inside the row when the drag began
	GrabY       int
}

// Input is everything the layout depends on
type Input struct {
	Forest      models.Forest
	Catalog     *models.Catalog
	Metrics     Metrics
	CursorID    string
	OpenMenu    string // highlight key of the open dropdown
	Highlighted func(key string) bool
	ValueErrors map[string]bool
	Drag        *Drag
}

// PreviewID is the entry id of the floating drag preview
func PreviewID(conditionID string) string {
	return "drag:" + conditionID
}

// Compute lays out the forest. It is a pure function of its input: while a
// drag has a target the forest is laid out as if the move were committed,
// with the moved row marked as a ghost and a floating preview appended.
func Compute(in Input) []Entry {
	f := in.Forest
	if in.Drag != nil && in.Drag.HasTarget {
		if moved, ok := filter.Move(f, in.Drag.ConditionID, in.Drag.Target, in.Drag.Index); ok {
			f = moved
		}
	}
	if f.Empty() {
		return nil
	}

	b := &builder{in: in, m: in.Metrics.Normalize()}
	b.scope(f.Items, f.Connector, filter.Root, 0, 0, 0, "", "")

	if in.Drag != nil {
		if row, ok := Find(b.entries, in.Drag.ConditionID); ok {
			preview := row
			preview.ID = PreviewID(row.ID)
			preview.Kind = KindDragPreview
			preview.Top = in.Drag.Y - in.Drag.GrabY
			preview.Left = in.Drag.X - in.Drag.GrabX
			preview.Ghost = false
			preview.ShowConnector = false
			preview.ConnectorEditable = false
			preview.ConnectorLabel = ""
			preview.OpenMenu = ""
			b.entries = append(b.entries, preview)
		}
	}
	return b.entries
}

type builder struct {
	in      Input
	m       Metrics
	entries []Entry
}

// scope lays out one sibling list starting at (top, left) and returns the
// height and width it occupies
func (b *builder) scope(items []models.Item, connector models.Connector, scope filter.Scope, top, left, depth int, parent, grandparent string) (int, int) {
	y := top
	width := 0
	for i, item := range items {
		e := Entry{
			ID:            item.ItemID(),
			Top:           y,
			Left:          left,
			Depth:         depth,
			Scope:         scope,
			Index:         i,
			ParentID:      parent,
			GrandparentID: grandparent,
			Connector:     connector,
			Focused:       b.in.CursorID == item.ItemID(),
		}
		switch i {
		case 0:
			e.ConnectorLabel = WhereLabel
		case 1:
			e.ShowConnector = true
			e.ConnectorEditable = true
			e.ConnectorLabel = string(connector)
		default:
			e.ShowConnector = true
			e.ConnectorLabel = string(connector)
		}

		if e.ConnectorEditable {
			key := highlight.Key(highlight.Connector, scope.String())
			if b.lit(key) {
				e.setHighlighted(highlight.Connector)
			}
			if b.in.OpenMenu == key {
				e.OpenMenu = highlight.Connector
			}
		}

		switch it := item.(type) {
		case *models.Condition:
			b.row(&e, it)
			b.entries = append(b.entries, e)
		case *models.Group:
			idx := len(b.entries)
			b.entries = append(b.entries, e)
			b.group(idx, it)
			e = b.entries[idx]
		}
		y += e.Height
		width = max(width, e.Width)
	}
	return y - top, width
}

func (b *builder) row(e *Entry, c *models.Condition) {
	e.Kind = KindRow
	e.Width = b.m.RowWidth
	e.Height = b.m.RowHeight
	e.Condition = c
	e.FieldLabel = b.in.Catalog.DisplayName(c.ColumnID)
	e.OperatorLabel = string(c.Operator)
	e.Value = c.Value
	_, resolved := b.in.Catalog.Resolve(c.ColumnID)
	e.Dangling = c.ColumnID != nil && !resolved
	e.ValueError = b.in.ValueErrors[c.ID]
	e.Ghost = b.in.Drag != nil && b.in.Drag.ConditionID == c.ID

	for _, part := range []highlight.Part{highlight.Field, highlight.Operator, highlight.Value} {
		key := highlight.Key(part, c.ID)
		if b.lit(key) {
			e.setHighlighted(part)
		}
		if b.in.OpenMenu == key {
			e.OpenMenu = part
		}
	}
}

func (b *builder) group(idx int, g *models.Group) {
	e := b.entries[idx]
	e.Kind = KindGroup
	e.Group = g
	e.CanAddGroup = e.Depth < filter.MaxGroupDepth

	if g.Empty() {
		e.Empty = true
		e.Placeholder = EmptyGroupPlaceholder
		e.Width = b.m.EmptyGroupWidth
		e.Height = b.m.EmptyGroupHeight
	} else {
		e.Header = g.Connector.Header()
		childTop := e.Top + b.m.Border + b.m.GroupHeader
		h, w := b.scope(g.Children, g.Connector, filter.InGroup(g.ID), childTop, e.Left+b.m.Indent, e.Depth+1, g.ID, e.ParentID)
		e.Height = 2*b.m.Border + b.m.GroupHeader + h + b.m.GroupFooter
		e.Width = max(b.m.EmptyGroupWidth, b.m.Indent+w+b.m.Border+1)
	}

	for _, part := range []highlight.Part{highlight.AddCondition, highlight.AddGroup} {
		if b.lit(highlight.Key(part, g.ID)) {
			e.setHighlighted(part)
		}
	}
	b.entries[idx] = e
}

func (b *builder) lit(key string) bool {
	return b.in.Highlighted != nil && b.in.Highlighted(key)
}

func (e *Entry) setHighlighted(part highlight.Part) {
	if e.Highlighted == nil {
		e.Highlighted = make(map[highlight.Part]bool)
	}
	e.Highlighted[part] = true
}

// Find returns the entry with the given id
func Find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Extent returns the width and height covered by the tree entries
func Extent(entries []Entry) (width, height int) {
	for _, e := range entries {
		if e.Kind == KindDragPreview {
			continue
		}
		width = max(width, e.Right())
		height = max(height, e.Bottom())
	}
	return width, height
}

// Rows returns the ids of row entries in display order
func Rows(entries []Entry) []string {
	var ids []string
	for _, e := range entries {
		if e.Kind == KindRow {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

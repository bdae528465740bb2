package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyfilter/internal/drag"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/highlight"
	"github.com/rebeliceyang/lazyfilter/internal/layout"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

const (
	// partHandle is the drag grip of a row
	partHandle highlight.Part = "handle"
	// partDelete is the remove action of a group
	partDelete highlight.Part = "delete"

	fieldMenuWidth = 34
	fieldMenuRows  = 8

	emptyForestText = "No conditions. Press a to add one."
)

var toolbarButtons = []struct {
	id, label string
}{
	{"apply", "[A]pply"},
	{"copy", "[y] Copy SQL"},
	{"clear", "[C]lear"},
}

// segment is a horizontal span of one line that reacts to clicks
type segment struct {
	part  highlight.Part
	x, w  int
	label string
}

func (s segment) contains(x int) bool {
	return x >= s.x && x < s.x+s.w
}

func findSegment(segs []segment, part highlight.Part) (segment, bool) {
	for _, s := range segs {
		if s.part == part {
			return s, true
		}
	}
	return segment{}, false
}

// rowSegments returns the controls of a row in canvas cells: the grip,
// the connector (only when editable), field, operator and value boxes
func rowSegments(e layout.Entry, m layout.Metrics) []segment {
	m = m.Normalize()
	x := e.Left
	segs := []segment{{part: partHandle, x: x, w: 1}}
	if e.ConnectorEditable {
		segs = append(segs, segment{part: highlight.Connector, x: x + 2, w: m.ConnectorWidth - 2})
	}
	x += m.ConnectorWidth + 1
	segs = append(segs, segment{part: highlight.Field, x: x, w: m.FieldWidth})
	x += m.FieldWidth + 1
	segs = append(segs, segment{part: highlight.Operator, x: x, w: m.OperatorWidth})
	x += m.OperatorWidth + 1
	segs = append(segs, segment{part: highlight.Value, x: x, w: m.ValueWidth()})
	return segs
}

func connectorText(e layout.Entry) string {
	switch {
	case e.ConnectorEditable:
		return e.ConnectorLabel + " ▾"
	case e.Kind == layout.KindDragPreview:
		return ""
	}
	return e.ConnectorLabel
}

// groupConnectorSegment is the connector control drawn on a group's top border
func groupConnectorSegment(e layout.Entry) (segment, bool) {
	if !e.ConnectorEditable {
		return segment{}, false
	}
	label := " " + connectorText(e) + " "
	return segment{part: highlight.Connector, x: e.Left + 2, w: runewidth.StringWidth(label), label: label}, true
}

// groupActionsY is the line holding a group's actions: the footer of a
// populated group or the bottom border of an empty one
func groupActionsY(e layout.Entry) int {
	if e.Empty {
		return e.Bottom() - 1
	}
	return e.Bottom() - 2
}

func groupActions(e layout.Entry) []segment {
	acts := []segment{{part: highlight.AddCondition, x: e.Left + 2, label: "+ condition"}}
	if e.CanAddGroup {
		acts = append(acts, segment{part: highlight.AddGroup, x: e.Left + 15, label: "+ group"})
	}
	remove := "✕ remove"
	acts = append(acts, segment{part: partDelete, x: e.Right() - 2 - runewidth.StringWidth(remove), label: remove})
	for i := range acts {
		acts[i].w = runewidth.StringWidth(acts[i].label)
	}
	return acts
}

func rootActions() []segment {
	return []segment{
		{part: highlight.AddCondition, x: 0, w: 11, label: "+ condition"},
		{part: highlight.AddGroup, x: 13, w: 7, label: "+ group"},
	}
}

// rootFooterY is the line of the root add actions, one blank line below
// the tree
func (b *FilterBuilder) rootFooterY() int {
	if len(b.entries) == 0 {
		return 2
	}
	_, h := layout.Extent(b.entries)
	return h + 1
}

// dropdown is an open menu anchored below a control
type dropdown struct {
	part    highlight.Part
	itemID  string       // condition id, or the scope string for connectors
	scope   filter.Scope // connector menus
	x, y    int
	options []string
	cursor  int
	picker  *ColumnPicker // field menus
}

func (d *dropdown) key() string {
	return highlight.Key(d.part, d.itemID)
}

func (d *dropdown) size() (int, int) {
	if d.picker != nil {
		return fieldMenuWidth, d.picker.Height() + 3
	}
	w := 0
	for _, o := range d.options {
		w = max(w, runewidth.StringWidth(o))
	}
	return w + 4, len(d.options) + 2
}

// listTop is the first option line inside the box
func (d *dropdown) listTop() int {
	if d.picker != nil {
		return 2
	}
	return 1
}

func (d *dropdown) contains(x, y int) bool {
	w, h := d.size()
	return x >= d.x && x < d.x+w && y >= d.y && y < d.y+h
}

func (d *dropdown) move(delta int) {
	if d.picker != nil {
		d.picker.MoveCursor(delta)
		return
	}
	if len(d.options) == 0 {
		return
	}
	d.cursor = min(max(d.cursor+delta, 0), len(d.options)-1)
}

// pick selects the option on list line and reports whether there was one
func (d *dropdown) pick(line int) bool {
	if d.picker != nil {
		_, ok := d.picker.Pick(line)
		return ok
	}
	if line < 0 || line >= len(d.options) {
		return false
	}
	d.cursor = line
	return true
}

// palette holds the canvas styles of one paint
type palette struct {
	border, borderFocused, drop     StyleID
	muted, header, connector, field StyleID
	operator, value, warn, err      StyleID
	lit, ghost, cursor, selected    StyleID
	preview                         StyleID
}

func (b *FilterBuilder) palette(c *Canvas) palette {
	th := b.Theme
	return palette{
		border:        c.Style(lipgloss.NewStyle().Foreground(th.GroupBorder)),
		borderFocused: c.Style(lipgloss.NewStyle().Foreground(th.BorderFocused)),
		drop:          c.Style(lipgloss.NewStyle().Foreground(th.DropTarget).Bold(true)),
		muted:         c.Style(lipgloss.NewStyle().Foreground(th.Muted)),
		header:        c.Style(lipgloss.NewStyle().Foreground(th.Muted).Italic(true)),
		connector:     c.Style(lipgloss.NewStyle().Foreground(th.Connector)),
		field:         c.Style(lipgloss.NewStyle().Foreground(th.Field)),
		operator:      c.Style(lipgloss.NewStyle().Foreground(th.Operator)),
		value:         c.Style(lipgloss.NewStyle().Foreground(th.String)),
		warn:          c.Style(lipgloss.NewStyle().Foreground(th.Warning)),
		err:           c.Style(lipgloss.NewStyle().Foreground(th.Error).Underline(true)),
		lit:           c.Style(lipgloss.NewStyle().Foreground(th.Highlight).Bold(true)),
		ghost:         c.Style(lipgloss.NewStyle().Foreground(th.Ghost)),
		cursor:        c.Style(lipgloss.NewStyle().Foreground(th.Cursor).Bold(true)),
		selected:      c.Style(lipgloss.NewStyle().Background(th.Selection).Foreground(th.Foreground)),
		preview:       c.Style(lipgloss.NewStyle().Background(th.Selection).Foreground(th.DropTarget)),
	}
}

// paint draws the displayed layout, the root footer and the open menu
func (b *FilterBuilder) paint() *Canvas {
	w, h := layout.Extent(b.entries)
	height := max(b.contentHeight(), b.scrollY+b.viewHeight(), h)
	width := max(b.Width, w+1)
	if b.menu != nil {
		mw, mh := b.menu.size()
		width = max(width, b.menu.x+mw)
		height = max(height, b.menu.y+mh)
	}
	c := NewCanvas(width, height)
	p := b.palette(c)

	if len(b.entries) == 0 {
		c.Text(0, 0, emptyForestText, p.muted)
	}

	target, dropping := drag.Target{}, false
	if b.drag.Active() {
		target, dropping = b.drag.Target()
	}

	var preview *layout.Entry
	for i := range b.entries {
		e := b.entries[i]
		off := b.reconciler.Offset(e.ID)
		e.Top += off.Top
		e.Left += off.Left
		switch e.Kind {
		case layout.KindGroup:
			b.paintGroup(c, p, e, dropping && target.Scope == filter.InGroup(e.ID))
		case layout.KindRow:
			b.paintRow(c, p, e)
		case layout.KindDragPreview:
			preview = &b.entries[i]
		}
	}

	y := b.rootFooterY()
	for _, a := range rootActions() {
		style := p.muted
		if b.coordinator.Active(highlight.Key(a.part, filter.Root.String())) {
			style = p.lit
		}
		c.Text(a.x, y, a.label, style)
	}

	if preview != nil {
		b.paintRow(c, p, *preview)
	}
	if b.menu != nil {
		b.paintMenu(c, p, b.menu)
	}
	return c
}

func (b *FilterBuilder) paintGroup(c *Canvas, p palette, e layout.Entry, dropTarget bool) {
	border := p.border
	switch {
	case dropTarget:
		border = p.drop
	case e.Focused:
		border = p.borderFocused
	}
	c.Box(e.Left, e.Top, e.Width, e.Height, border)

	// Position in the parent scope, drawn on the top border
	label := " " + connectorText(e) + " "
	style := p.connector
	if e.ConnectorEditable && (e.Highlighted[highlight.Connector] || e.OpenMenu == highlight.Connector) {
		style = p.lit
	}
	c.Text(e.Left+2, e.Top, label, style)

	if e.Empty {
		pw := runewidth.StringWidth(e.Placeholder)
		c.Text(e.Left+max((e.Width-pw)/2, 1), e.Top+1, e.Placeholder, p.muted)
	} else {
		c.Text(e.Left+2, e.Top+1, e.Header, p.header)
	}

	y := groupActionsY(e)
	for _, a := range groupActions(e) {
		style := p.muted
		if e.Highlighted[a.part] {
			style = p.lit
		}
		c.Text(a.x, y, a.label, style)
	}
}

func (b *FilterBuilder) paintRow(c *Canvas, p palette, e layout.Entry) {
	m := b.metrics
	y := e.Top
	cond := e.Condition
	pick := func(part highlight.Part, normal StyleID) StyleID {
		switch {
		case e.Kind == layout.KindDragPreview:
			return p.preview
		case e.Ghost:
			return p.ghost
		case e.OpenMenu == part, e.Highlighted[part]:
			return p.lit
		}
		return normal
	}

	if e.Kind == layout.KindDragPreview {
		c.Fill(e.Left, y, e.Width, 1, ' ', p.preview)
	}

	grip, gripStyle := '⠿', p.muted
	if e.Focused {
		grip, gripStyle = '▶', p.cursor
	}
	c.Set(e.Left, y, grip, pick(partHandle, gripStyle))
	c.Field(e.Left+2, y, m.ConnectorWidth-2, connectorText(e), pick(highlight.Connector, p.connector))

	for _, s := range rowSegments(e, m) {
		switch s.part {
		case highlight.Field:
			style := p.field
			switch {
			case cond.ColumnID == nil:
				style = p.muted
			case e.Dangling:
				style = p.warn
			}
			c.Field(s.x, y, s.w, e.FieldLabel+" ▾", pick(s.part, style))
		case highlight.Operator:
			c.Field(s.x, y, s.w, e.OperatorLabel+" ▾", pick(s.part, p.operator))
		case highlight.Value:
			if cond.ID == b.editingID && e.Kind == layout.KindRow {
				c.Raw(s.x, y, s.w, b.valueInput.View())
				continue
			}
			text, style := e.Value, p.value
			switch {
			case !cond.Operator.NeedsValue():
				text, style = "—", p.muted
			case text == "":
				text, style = "value…", p.muted
			case e.ValueError:
				style = p.err
			}
			c.Field(s.x, y, s.w, text, pick(s.part, style))
		}
	}
}

func (b *FilterBuilder) paintMenu(c *Canvas, p palette, d *dropdown) {
	w, h := d.size()
	c.Box(d.x, d.y, w, h, p.borderFocused)
	top := d.y + d.listTop()

	if d.picker != nil {
		for _, r := range d.picker.Rows() {
			style := p.field
			if r.Selected {
				style = p.selected
				c.Fill(d.x+1, top+r.Line, w-2, 1, ' ', style)
			}
			tag := string(r.Column.Type)
			c.Field(d.x+2, top+r.Line, w-5-len(tag), r.Column.Name, style)
			c.Text(d.x+w-2-len(tag), top+r.Line, tag, p.muted)
		}
		if d.picker.Matches() == 0 {
			c.Text(d.x+2, top, "No matching fields", p.muted)
		}
		c.Raw(d.x+1, d.y+1, w-2, d.picker.InputView())
		return
	}

	for i, o := range d.options {
		style := p.operator
		if d.part == highlight.Connector {
			style = p.connector
		}
		if i == d.cursor {
			style = p.selected
			c.Fill(d.x+1, top+i, w-2, 1, ' ', style)
		}
		c.Text(d.x+2, top+i, o, style)
	}
}

// View renders the builder: title with toolbar, the tree viewport, the SQL
// preview and the status line
func (b *FilterBuilder) View() string {
	if b.Width <= 0 || b.Height <= 0 {
		return ""
	}
	th := b.Theme
	b.clampScroll()

	// Title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(th.BorderFocused)
	title := titleStyle.Render("Filter")
	if b.table != "" {
		title += " " + lipgloss.NewStyle().Foreground(th.Field).Render(b.table)
	}
	conditions, groups := filter.Count(b.forest)
	counts := lipgloss.NewStyle().Foreground(th.Muted).Render(fmt.Sprintf("%d conditions · %d groups", conditions, groups))
	buttonStyle := lipgloss.NewStyle().Foreground(th.Info)
	var buttons []string
	for _, btn := range toolbarButtons {
		buttons = append(buttons, zone.Mark(b.zonePrefix+btn.id, buttonStyle.Render(btn.label)))
	}
	right := counts + "  " + strings.Join(buttons, " ")
	gap := max(b.Width-lipgloss.Width(title)-lipgloss.Width(right), 1)
	header := title + strings.Repeat(" ", gap) + right

	// Tree viewport
	vh := b.viewHeight()
	canvas := b.paint()
	body := lipgloss.NewStyle().MaxWidth(b.Width).Render(canvas.Render(b.scrollY, vh))
	body = zone.Mark(b.zonePrefix+"canvas", body)

	lines := []string{header, body}

	if b.showSQL {
		sql := b.sql.Preview(b.forest)
		style := lipgloss.NewStyle().Foreground(th.Keyword)
		if sql == "" {
			sql = "-- no complete conditions"
			style = lipgloss.NewStyle().Foreground(th.Muted)
		}
		lines = append(lines, style.Render(runewidth.Truncate(sql, b.Width, "…")))
	}

	lines = append(lines, b.statusLine())
	return strings.Join(lines, "\n")
}

func (b *FilterBuilder) statusLine() string {
	th := b.Theme
	switch {
	case b.status != "" && b.statusErr:
		return lipgloss.NewStyle().Foreground(th.Error).Render(runewidth.Truncate(b.status, b.Width, "…"))
	case b.status != "":
		return lipgloss.NewStyle().Foreground(th.Success).Render(runewidth.Truncate(b.status, b.Width, "…"))
	case !b.coordinator.Done():
		hint := b.coordinator.Hint() + "  (T to skip)"
		return lipgloss.NewStyle().Foreground(th.Highlight).Render(runewidth.Truncate(hint, b.Width, "…"))
	}
	hint := "a add · g group · f field · o operator · enter value · c and/or · m move · x remove · ? help"
	if b.editingID != "" {
		hint = "typing value · enter/esc done"
	}
	return lipgloss.NewStyle().Foreground(th.Muted).Render(runewidth.Truncate(hint, b.Width, "…"))
}

// dangling counts conditions whose column no longer resolves
func dangling(f models.Forest, catalog *models.Catalog) int {
	n := 0
	filter.Walk(f, func(v filter.Visit) bool {
		if c, ok := v.Item.(*models.Condition); ok && c.ColumnID != nil {
			if _, found := catalog.Resolve(c.ColumnID); !found {
				n++
			}
		}
		return true
	})
	return n
}

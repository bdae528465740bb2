package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// Visible is one on-screen slot of a virtualized list
type Visible struct {
	Index  int // position in the underlying list
	Offset int // line inside the viewport
}

// Virtualizer windows a long list to the lines that fit in Height
type Virtualizer struct {
	Height int
	offset int
}

// Offset returns the index of the first visible item
func (v *Virtualizer) Offset() int {
	return v.offset
}

func (v *Virtualizer) clamp(count int) {
	maxOffset := max(count-max(v.Height, 1), 0)
	v.offset = min(max(v.offset, 0), maxOffset)
}

// Visible returns the items currently on screen for a list of count items
func (v *Virtualizer) Visible(count int) []Visible {
	v.clamp(count)
	if v.Height <= 0 || count == 0 {
		return nil
	}
	end := min(v.offset+v.Height, count)
	out := make([]Visible, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		out = append(out, Visible{Index: i, Offset: i - v.offset})
	}
	return out
}

// ScrollTo scrolls the least amount needed to show item i
func (v *Virtualizer) ScrollTo(i, count int) {
	if i < v.offset {
		v.offset = i
	} else if v.Height > 0 && i >= v.offset+v.Height {
		v.offset = i - v.Height + 1
	}
	v.clamp(count)
}

// Scroll moves the window by delta items
func (v *Virtualizer) Scroll(delta, count int) {
	v.offset += delta
	v.clamp(count)
}

// ColumnPicker is the searchable column list behind the field dropdown
type ColumnPicker struct {
	input   textinput.Model
	columns []models.Column
	matches []int
	cursor  int
	view    Virtualizer
}

// NewColumnPicker creates a picker showing height columns at a time with
// the cursor on the column selected (may be empty)
func NewColumnPicker(columns []models.Column, selected string, height int) *ColumnPicker {
	ti := textinput.New()
	ti.Placeholder = "Search fields (n: t: b: d: filter by type)"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Focus()

	p := &ColumnPicker{
		input:   ti,
		columns: columns,
		view:    Virtualizer{Height: max(height, 1)},
	}
	p.refilter()
	for i, idx := range p.matches {
		if columns[idx].ID == selected {
			p.cursor = i
			p.view.ScrollTo(i, len(p.matches))
			break
		}
	}
	return p
}

func (p *ColumnPicker) refilter() {
	p.matches = MatchColumns(p.columns, ParseColumnQuery(p.input.Value()))
	p.cursor = min(p.cursor, max(len(p.matches)-1, 0))
	p.view.ScrollTo(p.cursor, len(p.matches))
}

// Update feeds a key to the search box and refilters
func (p *ColumnPicker) Update(msg tea.Msg) tea.Cmd {
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.view = Virtualizer{Height: p.view.Height}
		p.refilter()
	}
	return cmd
}

// SetQuery replaces the search text
func (p *ColumnPicker) SetQuery(q string) {
	p.input.SetValue(q)
	p.cursor = 0
	p.refilter()
}

// Query returns the search text
func (p *ColumnPicker) Query() string {
	return p.input.Value()
}

// MoveCursor moves the selection by delta matches
func (p *ColumnPicker) MoveCursor(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.matches)-1)
	p.view.ScrollTo(p.cursor, len(p.matches))
}

// Scroll moves the window without moving the cursor
func (p *ColumnPicker) Scroll(delta int) {
	p.view.Scroll(delta, len(p.matches))
}

// Selected returns the column under the cursor
func (p *ColumnPicker) Selected() (models.Column, bool) {
	if len(p.matches) == 0 {
		return models.Column{}, false
	}
	return p.columns[p.matches[p.cursor]], true
}

// PickerRow is one visible line of the picker list
type PickerRow struct {
	Column   models.Column
	Line     int
	Selected bool
}

// Rows returns the visible matches
func (p *ColumnPicker) Rows() []PickerRow {
	vis := p.view.Visible(len(p.matches))
	rows := make([]PickerRow, 0, len(vis))
	for _, v := range vis {
		rows = append(rows, PickerRow{
			Column:   p.columns[p.matches[v.Index]],
			Line:     v.Offset,
			Selected: v.Index == p.cursor,
		})
	}
	return rows
}

// Pick selects the match shown on viewport line and returns it
func (p *ColumnPicker) Pick(line int) (models.Column, bool) {
	for _, v := range p.view.Visible(len(p.matches)) {
		if v.Offset == line {
			p.cursor = v.Index
			return p.columns[p.matches[v.Index]], true
		}
	}
	return models.Column{}, false
}

// Matches returns the number of matching columns
func (p *ColumnPicker) Matches() int {
	return len(p.matches)
}

// Height returns the number of list lines
func (p *ColumnPicker) Height() int {
	return p.view.Height
}

// InputView renders the search box
func (p *ColumnPicker) InputView() string {
	return p.input.View()
}

// SetInputWidth sets the width of the search box
func (p *ColumnPicker) SetInputWidth(w int) {
	p.input.Width = w
}

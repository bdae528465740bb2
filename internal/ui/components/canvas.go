package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StyleID indexes a style registered on a Canvas
type StyleID int

// PlainStyle is the unstyled default of every cell
const PlainStyle StyleID = 0

type cell struct {
	r     rune
	style StyleID
	cont  bool   // covered by the wide rune or raw segment to the left
	raw   string // pre-rendered content, owns rawW cells
	rawW  int
}

// Canvas is a grid of styled terminal cells. Boxes and labels are painted
// at absolute cell positions, later paints win, and the grid is flattened
// to a string with one lipgloss render per run of equal style.
type Canvas struct {
	width, height int
	cells         [][]cell
	styles        []lipgloss.Style
}

// NewCanvas creates a blank canvas
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	c := &Canvas{
		width:  width,
		height: height,
		cells:  make([][]cell, height),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
	}
	for y := range c.cells {
		row := make([]cell, width)
		for x := range row {
			row[x].r = ' '
		}
		c.cells[y] = row
	}
	return c
}

// Width returns the canvas width
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height
func (c *Canvas) Height() int { return c.height }

// Style registers a style for later paints
func (c *Canvas) Style(s lipgloss.Style) StyleID {
	c.styles = append(c.styles, s)
	return StyleID(len(c.styles) - 1)
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// clear frees cell (x, y) from any wide rune or raw segment overlapping it
func (c *Canvas) clear(x, y int) {
	row := c.cells[y]
	if row[x].cont {
		// Walk back to the owner and blank it
		for ox := x - 1; ox >= 0; ox-- {
			if !row[ox].cont {
				c.release(ox, y)
				break
			}
		}
	}
	if row[x].raw != "" || runewidth.RuneWidth(row[x].r) > 1 {
		c.release(x, y)
	}
}

func (c *Canvas) release(x, y int) {
	row := c.cells[y]
	w := max(row[x].rawW, runewidth.RuneWidth(row[x].r))
	for i := x; i < x+w && i < c.width; i++ {
		row[i] = cell{r: ' ', style: row[x].style}
	}
	row[x] = cell{r: ' ', style: row[x].style}
}

// Set paints one rune. Wide runes cover the following cell too.
func (c *Canvas) Set(x, y int, r rune, style StyleID) {
	w := runewidth.RuneWidth(r)
	if w == 0 || !c.inside(x, y) || x+w > c.width {
		return
	}
	for i := 0; i < w; i++ {
		c.clear(x+i, y)
	}
	c.cells[y][x] = cell{r: r, style: style}
	if w == 2 {
		c.cells[y][x+1] = cell{cont: true, style: style}
	}
}

// Text paints s starting at (x, y), clipped to the canvas. It returns the
// number of cells written.
func (c *Canvas) Text(x, y int, s string, style StyleID) int {
	start := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.width {
			break
		}
		c.Set(x, y, r, style)
		x += w
	}
	return x - start
}

// Field paints s truncated with an ellipsis and padded to exactly w cells
func (c *Canvas) Field(x, y, w int, s string, style StyleID) {
	if w <= 0 {
		return
	}
	s = runewidth.Truncate(s, w, "…")
	s = runewidth.FillRight(s, w)
	c.Text(x, y, s, style)
}

// Fill paints the rectangle with r
func (c *Canvas) Fill(x, y, w, h int, r rune, style StyleID) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			c.Set(x+dx, y+dy, r, style)
		}
	}
}

// Box paints a rounded border around the rectangle; the inside is blanked
func (c *Canvas) Box(x, y, w, h int, style StyleID) {
	if w < 2 || h < 2 {
		return
	}
	c.Fill(x+1, y+1, w-2, h-2, ' ', PlainStyle)
	for dx := 1; dx < w-1; dx++ {
		c.Set(x+dx, y, '─', style)
		c.Set(x+dx, y+h-1, '─', style)
	}
	for dy := 1; dy < h-1; dy++ {
		c.Set(x, y+dy, '│', style)
		c.Set(x+w-1, y+dy, '│', style)
	}
	c.Set(x, y, '╭', style)
	c.Set(x+w-1, y, '╮', style)
	c.Set(x, y+h-1, '╰', style)
	c.Set(x+w-1, y+h-1, '╯', style)
}

// Raw places pre-rendered content (for example a text input view) over
// w cells, padded to w. It is emitted verbatim, so it should be painted
// last.
func (c *Canvas) Raw(x, y, w int, s string) {
	if !c.inside(x, y) || w <= 0 {
		return
	}
	w = min(w, c.width-x)
	if sw := lipgloss.Width(s); sw < w {
		s += strings.Repeat(" ", w-sw)
	}
	for i := 0; i < w; i++ {
		c.clear(x+i, y)
		c.cells[y][x+i] = cell{cont: true}
	}
	c.cells[y][x] = cell{raw: s, rawW: w}
}

// Rune returns the rune at (x, y), 0 outside the canvas or on covered cells
func (c *Canvas) Rune(x, y int) rune {
	if !c.inside(x, y) || c.cells[y][x].cont || c.cells[y][x].raw != "" {
		return 0
	}
	return c.cells[y][x].r
}

// Line returns the unstyled text of line y
func (c *Canvas) Line(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	var b strings.Builder
	for _, cl := range c.cells[y] {
		switch {
		case cl.raw != "":
			b.WriteString(cl.raw)
		case cl.cont:
		default:
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

// Render flattens lines [from, from+n) to a styled string
func (c *Canvas) Render(from, n int) string {
	from = max(from, 0)
	to := min(from+n, c.height)
	lines := make([]string, 0, max(to-from, 0))
	for y := from; y < to; y++ {
		lines = append(lines, c.renderLine(y))
	}
	return strings.Join(lines, "\n")
}

// String renders the whole canvas
func (c *Canvas) String() string {
	return c.Render(0, c.height)
}

func (c *Canvas) renderLine(y int) string {
	var out, run strings.Builder
	current := PlainStyle
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if current == PlainStyle {
			out.WriteString(run.String())
		} else {
			out.WriteString(c.styles[current].Render(run.String()))
		}
		run.Reset()
	}

	for _, cl := range c.cells[y] {
		switch {
		case cl.raw != "":
			flush()
			out.WriteString(cl.raw)
		case cl.cont:
		default:
			if cl.style != current {
				flush()
				current = cl.style
			}
			run.WriteRune(cl.r)
		}
	}
	flush()
	return out.String()
}

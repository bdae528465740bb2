package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// LoadPresetMsg is sent when a preset should replace the current filter
type LoadPresetMsg struct {
	Preset models.Preset
}

// DeletePresetMsg asks the parent to delete a preset
type DeletePresetMsg struct {
	Preset models.Preset
}

// RenamePresetMsg asks the parent to prompt for a new preset name
type RenamePresetMsg struct {
	Preset models.Preset
}

// ClosePresetsDialogMsg is sent when dialog should close
type ClosePresetsDialogMsg struct{}

// PresetsDialog lists the saved filters of the current table
type PresetsDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	presets  []models.Preset
	shown    []int
	selected int
	view     Virtualizer

	searching bool
	query     string
}

// NewPresetsDialog creates a new presets dialog
func NewPresetsDialog(th theme.Theme) *PresetsDialog {
	return &PresetsDialog{
		Width:  70,
		Height: 20,
		Theme:  th,
	}
}

// SetPresets updates the list, keeping the selection on the same preset
// when it still exists
func (d *PresetsDialog) SetPresets(presets []models.Preset) {
	var current string
	if p, ok := d.Selected(); ok {
		current = p.ID
	}
	d.presets = presets
	d.refilter()
	for i, idx := range d.shown {
		if presets[idx].ID == current {
			d.selected = i
		}
	}
	d.view.ScrollTo(d.selected, len(d.shown))
}

// Reset clears the search and moves to the top
func (d *PresetsDialog) Reset() {
	d.searching = false
	d.query = ""
	d.selected = 0
	d.view = Virtualizer{}
	d.refilter()
}

func (d *PresetsDialog) refilter() {
	d.shown = d.shown[:0]
	for i, p := range d.presets {
		if ok, _ := FuzzyMatch(d.query, p.Name); ok {
			d.shown = append(d.shown, i)
		}
	}
	d.selected = min(d.selected, max(len(d.shown)-1, 0))
}

func (d *PresetsDialog) listHeight() int {
	return max(d.Height-8, 1)
}

// Selected returns the highlighted preset
func (d *PresetsDialog) Selected() (models.Preset, bool) {
	if d.selected >= len(d.shown) {
		return models.Preset{}, false
	}
	return d.presets[d.shown[d.selected]], true
}

// Update handles keyboard input
func (d *PresetsDialog) Update(msg tea.KeyMsg) (*PresetsDialog, tea.Cmd) {
	d.view.Height = d.listHeight()
	if d.searching {
		return d.handleSearch(msg)
	}

	switch msg.String() {
	case "esc", "q":
		return d, func() tea.Msg {
			return ClosePresetsDialogMsg{}
		}
	case "up", "k":
		d.move(-1)
	case "down", "j":
		d.move(1)
	case "/":
		d.searching = true
	case "enter":
		if p, ok := d.Selected(); ok {
			return d, func() tea.Msg {
				return LoadPresetMsg{Preset: p}
			}
		}
	case "r":
		if p, ok := d.Selected(); ok {
			return d, func() tea.Msg {
				return RenamePresetMsg{Preset: p}
			}
		}
	case "d", "x":
		if p, ok := d.Selected(); ok {
			return d, func() tea.Msg {
				return DeletePresetMsg{Preset: p}
			}
		}
	}
	return d, nil
}

func (d *PresetsDialog) handleSearch(msg tea.KeyMsg) (*PresetsDialog, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		d.searching = false
		d.query = ""
	case tea.KeyEnter:
		d.searching = false
		return d, nil
	case tea.KeyBackspace:
		if r := []rune(d.query); len(r) > 0 {
			d.query = string(r[:len(r)-1])
		}
	case tea.KeyUp:
		d.move(-1)
		return d, nil
	case tea.KeyDown:
		d.move(1)
		return d, nil
	case tea.KeyRunes, tea.KeySpace:
		d.query += string(msg.Runes)
	default:
		return d, nil
	}
	d.selected = 0
	d.refilter()
	d.view.ScrollTo(0, len(d.shown))
	return d, nil
}

func (d *PresetsDialog) move(delta int) {
	if len(d.shown) == 0 {
		return
	}
	d.selected = min(max(d.selected+delta, 0), len(d.shown)-1)
	d.view.ScrollTo(d.selected, len(d.shown))
}

// View renders the dialog
func (d *PresetsDialog) View() string {
	d.view.Height = d.listHeight()
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Foreground).
		Background(d.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Saved Filters"))

	instrStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Muted).
		Padding(0, 1)
	if d.searching {
		sections = append(sections, instrStyle.Render("/"+d.query+"_"))
	} else {
		sections = append(sections, instrStyle.Render("↑↓: Navigate  Enter: Load  /: Search  r: Rename  d: Delete  Esc: Close"))
	}
	sections = append(sections, "")

	switch {
	case len(d.presets) == 0:
		sections = append(sections, "No saved filters yet. Press ctrl+s in the builder to save one.")
	case len(d.shown) == 0:
		sections = append(sections, fmt.Sprintf("No filters match %q", d.query))
	default:
		nameWidth := max(d.Width-30, 12)
		for _, v := range d.view.Visible(len(d.shown)) {
			p := d.presets[d.shown[v.Index]]
			line := runewidth.FillRight(runewidth.Truncate(p.Name, nameWidth, "…"), nameWidth) +
				"  " + presetSummary(p)

			style := lipgloss.NewStyle().Padding(0, 1)
			if v.Index == d.selected {
				style = style.Background(d.Theme.Selection).Foreground(d.Theme.Foreground)
			}
			sections = append(sections, style.Render(line))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.Border).
		Width(d.Width).
		Height(d.Height).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}

func presetSummary(p models.Preset) string {
	f, err := filter.FromDoc(p.Filter)
	if err != nil {
		return "invalid filter"
	}
	conditions, groups := filter.Count(f)
	s := fmt.Sprintf("%d cond", conditions)
	if groups > 0 {
		s += fmt.Sprintf(", %d grp", groups)
	}
	if !p.LastUsed.IsZero() {
		s += " · " + p.LastUsed.Format("Jan 2")
	}
	return s
}

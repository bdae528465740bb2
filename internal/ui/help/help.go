package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit without applying"},
		{"Esc/Enter", "Dismiss error"},
		{"Ctrl+S", "Save filter as preset"},
		{"p", "Open saved filters"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Previous item"},
		{"↓/j", "Next item"},
		{"Home/End", "First or last item"},
		{"PgUp/PgDn", "Scroll a page"},
		{"Mouse wheel", "Scroll"},
	}
}

// GetBuilderKeys returns filter builder key bindings
func GetBuilderKeys() []KeyBinding {
	return []KeyBinding{
		{"a", "Add condition next to the cursor"},
		{"g", "Add group"},
		{"f", "Choose field"},
		{"o", "Choose operator"},
		{"Enter/e", "Edit value"},
		{"c", "Choose AND / OR"},
		{"x, Del", "Remove condition or group"},
		{"C", "Clear all conditions"},
		{"y", "Copy SQL"},
		{"A", "Apply filter and exit"},
		{"T", "Skip tutorial step"},
	}
}

// GetMoveKeys returns drag and move key bindings
func GetMoveKeys() []KeyBinding {
	return []KeyBinding{
		{"m", "Start moving the condition"},
		{"↑↓←→", "Choose the drop position"},
		{"Enter/Space", "Drop"},
		{"Esc", "Cancel the move"},
		{"Drag with mouse", "Move a condition by its ⠿ handle"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Filter Builder", GetBuilderKeys()},
		{"Moving Conditions", GetMoveKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyfilter - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, s := range Sections() {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	// Wrap in a box
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(b.String())
}

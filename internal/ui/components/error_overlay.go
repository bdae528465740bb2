package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// ErrorOverlay shows a blocking error until it is dismissed
type ErrorOverlay struct {
	Theme theme.Theme
	Width int

	title   string
	message string
}

// NewErrorOverlay creates a hidden error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Theme: th, Width: 60}
}

// SetError shows an error; an empty message hides the overlay
func (e *ErrorOverlay) SetError(title, message string) {
	e.title = title
	e.message = message
}

// Visible reports whether an error is shown
func (e *ErrorOverlay) Visible() bool {
	return e.message != ""
}

// Dismiss hides the overlay
func (e *ErrorOverlay) Dismiss() {
	e.SetError("", "")
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	if !e.Visible() {
		return ""
	}
	title := e.title
	if title == "" {
		title = "Error"
	}
	hint := lipgloss.NewStyle().
		Foreground(e.Theme.Muted).
		Italic(true).
		Render("Press esc or enter to dismiss")

	p := Panel{
		Title:       "✗ " + title,
		Content:     lipgloss.NewStyle().Width(e.Width-4).Render(e.message) + "\n\n" + hint,
		Width:       e.Width,
		BorderColor: e.Theme.Error,
		TitleStyle:  lipgloss.NewStyle().Foreground(e.Theme.Error),
	}
	return p.View()
}

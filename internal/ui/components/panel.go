package components

import (
	"github.com/charmbracelet/lipgloss"
)

// Panel is a bordered box with an optional title line, used for overlays
type Panel struct {
	Title       string
	Content     string
	Width       int
	Height      int // 0 sizes the panel to its content
	BorderColor lipgloss.TerminalColor
	TitleStyle  lipgloss.Style
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 0 {
		return ""
	}

	style := lipgloss.NewStyle().
		Width(p.Width).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())
	if p.Height > 0 {
		style = style.Height(p.Height)
	}
	if p.BorderColor != nil {
		style = style.BorderForeground(p.BorderColor)
	}

	content := p.Content
	if p.Title != "" {
		content = p.TitleStyle.Bold(true).Render(p.Title) + "\n\n" + content
	}

	return style.Render(content)
}

// Center places a rendered overlay in the middle of a width x height area
func Center(width, height int, overlay string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
}

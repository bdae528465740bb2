package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// PromptSubmitMsg is sent when the prompt is confirmed
type PromptSubmitMsg struct {
	Purpose string
	Value   string
}

// PromptCancelMsg is sent when the prompt is dismissed
type PromptCancelMsg struct {
	Purpose string
}

// Prompt is a one-line text box, used to name presets
type Prompt struct {
	Input   textinput.Model
	Title   string
	Purpose string // echoed back in the result messages
	Theme   theme.Theme
	Width   int
	Visible bool
}

// NewPrompt creates a hidden prompt
func NewPrompt(th theme.Theme) *Prompt {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40

	return &Prompt{
		Input: ti,
		Theme: th,
		Width: 50,
	}
}

// Open shows the prompt with a title and initial value
func (p *Prompt) Open(purpose, title, value string) tea.Cmd {
	p.Purpose = purpose
	p.Title = title
	p.Input.SetValue(value)
	p.Input.CursorEnd()
	p.Visible = true
	return p.Input.Focus()
}

// Close hides the prompt
func (p *Prompt) Close() {
	p.Visible = false
	p.Input.Blur()
}

// Update handles messages
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(p.Input.Value())
			if value == "" {
				return p, nil
			}
			purpose := p.Purpose
			p.Close()
			return p, func() tea.Msg {
				return PromptSubmitMsg{Purpose: purpose, Value: value}
			}
		case "esc":
			purpose := p.Purpose
			p.Close()
			return p, func() tea.Msg {
				return PromptCancelMsg{Purpose: purpose}
			}
		}
	}

	var cmd tea.Cmd
	p.Input, cmd = p.Input.Update(msg)
	return p, cmd
}

// View renders the prompt box
func (p *Prompt) View() string {
	p.Input.Width = max(p.Width-6, 10)

	titleStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Info).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.BorderFocused).
		Padding(0, 1).
		Width(p.Width)

	helpStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Muted).
		Italic(true)

	content := titleStyle.Render(p.Title) + "\n" + p.Input.View()
	helpText := helpStyle.Render("Enter: save │ Esc: cancel")

	return boxStyle.Render(content + "\n" + helpText)
}

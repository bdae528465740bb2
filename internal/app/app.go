package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/db/connection"
	"github.com/rebeliceyang/lazyfilter/internal/db/metadata"
	"github.com/rebeliceyang/lazyfilter/internal/debug"
	"github.com/rebeliceyang/lazyfilter/internal/highlight"
	"github.com/rebeliceyang/lazyfilter/internal/history"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/presets"
	"github.com/rebeliceyang/lazyfilter/internal/ui/components"
	"github.com/rebeliceyang/lazyfilter/internal/ui/help"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

const (
	promptSave   = "save"
	promptRename = "rename"

	queryTimeout = 5 * time.Second
)

// Options are the collaborators of the application. Every field except
// Table and Catalog may be nil: the builder then runs without a database,
// without history or without presets.
type Options struct {
	Schema  string
	Table   string
	Catalog *models.Catalog // used until the database catalog is loaded

	Pool    *connection.Pool
	History *history.Store
	Presets *presets.Manager
	Watcher *presets.Watcher
}

// Result is the filter applied when the program exits
type Result struct {
	Table  string
	Forest models.Forest
	Where  string
	Args   []interface{}
}

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme

	builder *components.FilterBuilder

	pool     *connection.Pool
	history  *history.Store
	presets  *presets.Manager
	watcher  *presets.Watcher
	estimate int64 // planner row estimate, -1 when unknown

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay

	presetsDialog *components.PresetsDialog
	prompt        *components.Prompt
	renaming      models.Preset

	countSeq int
	result   *Result
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// CatalogLoadedMsg is sent when the column catalog was read from the database
type CatalogLoadedMsg struct {
	Catalog *models.Catalog
	Err     error
}

// MatchCountMsg carries the number of rows matching a committed filter
type MatchCountMsg struct {
	Seq   int
	Count int64
	Err   error
}

// RowEstimateMsg carries the planner estimate of the table size
type RowEstimateMsg struct {
	Rows int64
	Err  error
}

// PresetsChangedMsg is sent when the presets file changed on disk
type PresetsChangedMsg struct{}

// New creates a new App instance with config
func New(cfg *config.Config, opts Options) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	state := models.NewAppState()
	if opts.Schema != "" {
		state.Schema = opts.Schema
	}
	state.Table = opts.Table
	state.Connected = opts.Pool != nil

	th := theme.GetTheme(cfg.UI.Theme)

	app := &App{
		state:         state,
		config:        cfg,
		theme:         th,
		pool:          opts.Pool,
		history:       opts.History,
		presets:       opts.Presets,
		watcher:       opts.Watcher,
		estimate:      -1,
		errorOverlay:  components.NewErrorOverlay(th),
		presetsDialog: components.NewPresetsDialog(th),
		prompt:        components.NewPrompt(th),
	}

	restored, hasRestored := app.restore()

	builderOpts := []components.BuilderOption{
		components.WithCommitHook(app.recordHistory),
		components.WithMetrics(cfg.Layout),
		components.WithAnimation(cfg.UI.AnimationFrame(), cfg.UI.AnimationFrames),
		components.WithSQLPreview(cfg.UI.ShowSQLPreview),
		components.WithMouse(cfg.UI.MouseEnabled),
	}
	if cfg.UI.Tutorial && !hasRestored {
		builderOpts = append(builderOpts, components.WithCoordinator(
			highlight.NewCoordinator(highlight.DefaultSteps(), highlight.WithOnChange(func(step highlight.Step, done bool) {
				debug.Log("tutorial step %v done=%v", step.Keys, done)
			})),
		))
	}

	app.builder = components.NewFilterBuilder(th, opts.Catalog, builderOpts...)
	app.builder.SetTable(state.QualifiedTable())
	if hasRestored {
		app.builder.SetForest(restored)
		if app.builder.Status() == "" {
			app.builder.SetStatus("Restored the last filter for this table", false)
		}
	}
	app.resize()

	return app
}

// restore reads the last committed filter of the table from history
func (a *App) restore() (models.Forest, bool) {
	if a.history == nil || a.state.Table == "" {
		return models.Forest{}, false
	}
	f, ok, err := a.history.Latest(a.state.QualifiedTable())
	if err != nil {
		debug.Log("history restore: %v", err)
		return models.Forest{}, false
	}
	return f, ok && !f.Empty()
}

// recordHistory is the persistence sink: every committed forest is stored
func (a *App) recordHistory(f models.Forest) {
	if a.history == nil {
		return
	}
	where, _, err := a.builder.SQL().BuildWhere(f)
	if err != nil {
		debug.Log("history where: %v", err)
	}
	if err := a.history.Commit(a.state.QualifiedTable(), f, where); err != nil {
		a.builder.SetStatus(fmt.Sprintf("Failed to save history: %v", err), true)
	}
}

// Result returns the applied filter, nil when the user quit without applying
func (a *App) Result() *Result {
	return a.result
}

// Builder returns the filter builder
func (a *App) Builder() *components.FilterBuilder {
	return a.builder
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.pool != nil {
		cmds = append(cmds, a.loadCatalog(), a.estimateRows(), a.countMatches())
	}
	if a.watcher != nil {
		cmds = append(cmds, a.waitForPresets())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if a.overlayOpen() {
			return a, nil
		}
		_, cmd := a.builder.Update(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.resize()
		return a, nil

	case components.ApplyFilterMsg:
		a.result = &Result{
			Table:  a.state.QualifiedTable(),
			Forest: msg.Forest,
			Where:  msg.Where,
			Args:   msg.Args,
		}
		return a, tea.Sequence(a.builder.Close(), tea.Quit)

	case components.FilterChangedMsg:
		return a, a.countMatches()

	case CatalogLoadedMsg:
		if msg.Err != nil {
			a.ShowError("Database Error", fmt.Sprintf("Failed to load columns of %s:\n\n%v", a.state.QualifiedTable(), msg.Err))
			return a, nil
		}
		a.builder.SetCatalog(msg.Catalog)
		return a, nil

	case MatchCountMsg:
		if msg.Seq != a.countSeq {
			return a, nil
		}
		if msg.Err != nil {
			debug.Log("count: %v", msg.Err)
			a.state.MatchCount = -1
			return a, nil
		}
		a.state.MatchCount = msg.Count
		return a, nil

	case RowEstimateMsg:
		if msg.Err == nil {
			a.estimate = msg.Rows
		}
		return a, nil

	case PresetsChangedMsg:
		if err := a.presets.Load(); err != nil {
			debug.Log("presets reload: %v", err)
		}
		a.presetsDialog.SetPresets(a.presets.ForTable(a.state.QualifiedTable()))
		return a, a.waitForPresets()

	case components.PromptSubmitMsg:
		return a, a.submitPrompt(msg)

	case components.PromptCancelMsg:
		a.renaming = models.Preset{}
		return a, nil

	case components.LoadPresetMsg:
		return a, a.loadPreset(msg.Preset)

	case components.DeletePresetMsg:
		if err := a.presets.Delete(msg.Preset.ID); err != nil {
			a.ShowError("Preset Error", err.Error())
			return a, nil
		}
		a.presetsDialog.SetPresets(a.presets.ForTable(a.state.QualifiedTable()))
		a.builder.SetStatus(fmt.Sprintf("Deleted preset %q", msg.Preset.Name), false)
		return a, nil

	case components.RenamePresetMsg:
		a.renaming = msg.Preset
		return a, a.prompt.Open(promptRename, "Rename preset", msg.Preset.Name)

	case components.ClosePresetsDialogMsg:
		a.state.ViewMode = models.NormalMode
		return a, nil
	}

	// Animation frames, cursor blinks and clipboard results
	if a.prompt.Visible {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.Update(msg)
		return a, cmd
	}
	_, cmd := a.builder.Update(msg)
	return a, cmd
}

func (a *App) overlayOpen() bool {
	return a.showError || a.prompt.Visible || a.state.ViewMode != models.NormalMode
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Sequence(a.builder.Close(), tea.Quit)
	}

	// Handle error overlay dismissal first if visible
	if a.showError {
		if key == "esc" || key == "enter" {
			a.DismissError()
		}
		return a, nil
	}

	if a.prompt.Visible {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.Update(msg)
		return a, cmd
	}

	switch a.state.ViewMode {
	case models.HelpMode:
		if key == "?" || key == "esc" || key == "q" {
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	case models.PresetsMode:
		var cmd tea.Cmd
		a.presetsDialog, cmd = a.presetsDialog.Update(msg)
		return a, cmd
	}

	// Text boxes, menus and moves of the builder own the keyboard
	if a.builder.Capturing() {
		_, cmd := a.builder.Update(msg)
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Sequence(a.builder.Close(), tea.Quit)
	case "?":
		a.state.ViewMode = models.HelpMode
		return a, nil
	case "p":
		if a.presets == nil {
			a.builder.SetStatus("Presets are not available", true)
			return a, nil
		}
		a.presetsDialog.Reset()
		a.presetsDialog.SetPresets(a.presets.ForTable(a.state.QualifiedTable()))
		a.state.ViewMode = models.PresetsMode
		return a, nil
	case "ctrl+s":
		if a.presets == nil {
			a.builder.SetStatus("Presets are not available", true)
			return a, nil
		}
		if a.builder.Forest().Empty() {
			a.builder.SetStatus("Nothing to save yet", false)
			return a, nil
		}
		return a, a.prompt.Open(promptSave, "Save filter as", "")
	}

	_, cmd := a.builder.Update(msg)
	return a, cmd
}

func (a *App) submitPrompt(msg components.PromptSubmitMsg) tea.Cmd {
	table := a.state.QualifiedTable()
	switch msg.Purpose {
	case promptSave:
		f := a.builder.Forest()
		if existing, err := a.presets.FindByName(msg.Value); err == nil {
			if err := a.presets.Update(existing.ID, existing.Name, f); err != nil {
				a.ShowError("Preset Error", err.Error())
				return nil
			}
			a.builder.SetStatus(fmt.Sprintf("Updated preset %q", existing.Name), false)
			return nil
		}
		if _, err := a.presets.Add(msg.Value, table, f); err != nil {
			a.ShowError("Preset Error", err.Error())
			return nil
		}
		a.builder.SetStatus(fmt.Sprintf("Saved preset %q", msg.Value), false)

	case promptRename:
		p := a.renaming
		a.renaming = models.Preset{}
		f, err := presets.Forest(p)
		if err == nil {
			err = a.presets.Update(p.ID, msg.Value, f)
		}
		if err != nil {
			a.ShowError("Preset Error", err.Error())
			return nil
		}
		a.presetsDialog.SetPresets(a.presets.ForTable(table))
	}
	return nil
}

func (a *App) loadPreset(p models.Preset) tea.Cmd {
	f, err := presets.Forest(p)
	if err != nil {
		a.ShowError("Preset Error", fmt.Sprintf("Preset %q cannot be loaded:\n\n%v", p.Name, err))
		return nil
	}
	if err := a.presets.RecordUsage(p.ID); err != nil && !errors.Is(err, presets.ErrNotFound) {
		debug.Log("record usage: %v", err)
	}
	a.state.ViewMode = models.NormalMode
	a.builder.SetForest(f)
	a.recordHistory(f)
	if a.builder.Status() == "" {
		a.builder.SetStatus(fmt.Sprintf("Loaded preset %q", p.Name), false)
	}
	return a.countMatches()
}

// Database commands

func (a *App) loadCatalog() tea.Cmd {
	pool, schema, table := a.pool, a.state.Schema, a.state.Table
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		catalog, err := metadata.LoadCatalog(ctx, pool, schema, table)
		return CatalogLoadedMsg{Catalog: catalog, Err: err}
	}
}

func (a *App) estimateRows() tea.Cmd {
	pool, schema, table := a.pool, a.state.Schema, a.state.Table
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		n, err := metadata.EstimateRows(ctx, pool, schema, table)
		return RowEstimateMsg{Rows: n, Err: err}
	}
}

// countMatches counts the rows matching the current forest. Results of
// superseded counts are dropped by sequence number.
func (a *App) countMatches() tea.Cmd {
	if a.pool == nil {
		return nil
	}
	a.countSeq++
	seq := a.countSeq
	pool, schema, table := a.pool, a.state.Schema, a.state.Table
	b, f := a.builder.SQL(), a.builder.Forest()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		defer debug.LogEnterExit("count matches")()
		n, err := metadata.CountMatches(ctx, pool, b, schema, table, f)
		return MatchCountMsg{Seq: seq, Count: n, Err: err}
	}
}

func (a *App) waitForPresets() tea.Cmd {
	if a.watcher == nil || a.presets == nil {
		return nil
	}
	changed := a.watcher.Changed()
	return func() tea.Msg {
		if _, ok := <-changed; !ok {
			return nil
		}
		return PresetsChangedMsg{}
	}
}

// View implements tea.Model
func (a *App) View() string {
	return zone.Scan(a.render())
}

func (a *App) render() string {
	if a.showError {
		return components.Center(a.state.Width, a.state.Height, a.errorOverlay.View())
	}
	if a.prompt.Visible {
		return components.Center(a.state.Width, a.state.Height, a.prompt.View())
	}

	switch a.state.ViewMode {
	case models.HelpMode:
		return help.Render(a.state.Width, a.state.Height, a.theme)
	case models.PresetsMode:
		a.presetsDialog.Width = min(70, a.state.Width-4)
		a.presetsDialog.Height = min(20, a.state.Height-4)
		return components.Center(a.state.Width, a.state.Height, a.presetsDialog.View())
	}

	return a.renderNormalView()
}

// renderNormalView renders the top bar above the builder
func (a *App) renderNormalView() string {
	left := "lazyfilter"
	if t := a.state.QualifiedTable(); t != "" {
		left += " │ " + t
	}
	right := a.countLabel()

	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar(left, right))

	return lipgloss.JoinVertical(lipgloss.Left, topBar, a.builder.View())
}

func (a *App) countLabel() string {
	if !a.state.Connected {
		return "demo · no database"
	}
	label := "counting…"
	if a.state.MatchCount >= 0 {
		label = fmt.Sprintf("%d matching rows", a.state.MatchCount)
	}
	if a.estimate >= 0 {
		label += fmt.Sprintf(" of ~%d", a.estimate)
	}
	return label
}

// resize gives the builder everything below the top bar
func (a *App) resize() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}
	a.builder.SetSize(a.state.Width, max(a.state.Height-1, 5))
	a.errorOverlay.Width = min(60, max(a.state.Width-4, 20))
	a.prompt.Width = min(50, max(a.state.Width-4, 20))
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.state.Width-4, 0)

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen >= availableWidth {
		return left
	}

	spacing := availableWidth - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.errorOverlay.Dismiss()
	a.showError = false
}

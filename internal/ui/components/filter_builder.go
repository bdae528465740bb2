package components

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazyfilter/internal/animation"
	"github.com/rebeliceyang/lazyfilter/internal/debug"
	"github.com/rebeliceyang/lazyfilter/internal/drag"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/highlight"
	"github.com/rebeliceyang/lazyfilter/internal/layout"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// ApplyFilterMsg is sent when the user applies the filter
type ApplyFilterMsg struct {
	Forest models.Forest
	Where  string
	Args   []interface{}
}

// FilterChangedMsg is sent after every committed mutation
type FilterChangedMsg struct {
	Forest models.Forest
}

// SQLCopiedMsg reports the result of copying the SQL preview
type SQLCopiedMsg struct {
	Err error
}

// animationFrameMsg runs the callbacks the reconciler posted for the next frame
type animationFrameMsg struct {
	owner string
	fns   []func()
}

// menuExclusive is the member name of dropdown menus in the shared Exclusive
const menuExclusive = "menu"

// pendingPress is a left press on a row that becomes a click on release
// or a drag on motion
type pendingPress struct {
	id   string
	part highlight.Part
	x, y int
}

// FilterBuilder is the interactive condition tree editor
type FilterBuilder struct {
	Width  int
	Height int
	Theme  theme.Theme

	table   string
	catalog *models.Catalog
	forest  models.Forest
	mutator *filter.Mutator
	sql     *filter.Builder
	metrics layout.Metrics

	coordinator *highlight.Coordinator
	reconciler  *animation.Reconciler
	drag        *drag.Controller
	exclusive   *drag.Exclusive
	listeners   *drag.Listeners

	entries     []layout.Entry // displayed, includes the drag preview
	committed   []layout.Entry // committed forest, used for hit-testing
	valueErrors map[string]bool

	cursorID   string
	menu       *dropdown
	editingID  string
	valueInput textinput.Model
	press      *pendingPress

	status    string
	statusErr bool
	scrollY   int
	showSQL   bool
	mouse     bool

	frame    time.Duration
	frames   int
	posted   []func()
	cmds     []tea.Cmd
	onCommit func(models.Forest)
	mutOpts  []filter.MutatorOption

	zonePrefix string
}

// BuilderOption configures a FilterBuilder
type BuilderOption func(*FilterBuilder)

// WithCommitHook registers the persistence sink called with the forest
// after every committed mutation
func WithCommitHook(fn func(models.Forest)) BuilderOption {
	return func(b *FilterBuilder) {
		b.onCommit = fn
	}
}

// WithCoordinator attaches a tutorial highlight coordinator
func WithCoordinator(c *highlight.Coordinator) BuilderOption {
	return func(b *FilterBuilder) {
		b.coordinator = c
	}
}

// WithMetrics overrides the layout geometry
func WithMetrics(m layout.Metrics) BuilderOption {
	return func(b *FilterBuilder) {
		b.metrics = m.Normalize()
	}
}

// WithAnimation sets the frame interval and the number of easing frames
func WithAnimation(frame time.Duration, frames int) BuilderOption {
	return func(b *FilterBuilder) {
		b.frame = frame
		b.frames = frames
	}
}

// WithSQLPreview shows or hides the WHERE preview line
func WithSQLPreview(show bool) BuilderOption {
	return func(b *FilterBuilder) {
		b.showSQL = show
	}
}

// WithMouse tells the builder whether mouse reporting is on
func WithMouse(enabled bool) BuilderOption {
	return func(b *FilterBuilder) {
		b.mouse = enabled
	}
}

// WithMutatorOptions passes options to the tree mutator
func WithMutatorOptions(opts ...filter.MutatorOption) BuilderOption {
	return func(b *FilterBuilder) {
		b.mutOpts = append(b.mutOpts, opts...)
	}
}

// NewFilterBuilder creates a builder editing an empty forest over catalog
func NewFilterBuilder(th theme.Theme, catalog *models.Catalog, opts ...BuilderOption) *FilterBuilder {
	if catalog == nil {
		catalog = models.NewCatalog(nil)
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "value"
	ti.CharLimit = 256

	b := &FilterBuilder{
		Width:      80,
		Height:     24,
		Theme:      th,
		catalog:    catalog,
		forest:     models.NewForest(),
		metrics:    layout.DefaultMetrics(),
		showSQL:    true,
		mouse:      true,
		frame:      16 * time.Millisecond,
		frames:     1,
		valueInput: ti,
		zonePrefix: "fb-" + uuid.NewString()[:8] + "-",
	}
	for _, opt := range opts {
		opt(b)
	}

	b.mutator = filter.NewMutator(catalog, b.mutOpts...)
	b.sql = filter.NewBuilder(catalog)
	b.exclusive = &drag.Exclusive{}
	b.listeners = drag.NewListeners(b.trackAllMotion, b.trackCellMotion)
	b.drag = drag.NewController(b.listeners, b.exclusive)
	b.reconciler = animation.NewReconciler(
		animation.SchedulerFunc(func(fn func()) { b.posted = append(b.posted, fn) }),
		animation.WithFrames(b.frames),
	)
	b.valueInput.Width = b.metrics.ValueWidth() - 1
	b.relayout()
	return b
}

// trackAllMotion switches the terminal to report every pointer move
func (b *FilterBuilder) trackAllMotion() {
	if b.mouse {
		b.cmds = append(b.cmds, tea.EnableMouseAllMotion)
	}
}

// trackCellMotion restores motion reports only while a button is held
func (b *FilterBuilder) trackCellMotion() {
	if b.mouse {
		b.cmds = append(b.cmds, tea.EnableMouseCellMotion)
	}
}

// SetTable sets the table name shown in the title
func (b *FilterBuilder) SetTable(name string) {
	b.table = name
}

// Table returns the table being filtered
func (b *FilterBuilder) Table() string {
	return b.table
}

// SetCatalog replaces the column catalog. Conditions referring to columns
// that disappeared stay in the tree with a fallback label.
func (b *FilterBuilder) SetCatalog(catalog *models.Catalog) {
	if catalog == nil {
		catalog = models.NewCatalog(nil)
	}
	b.catalog = catalog
	b.mutator.SetCatalog(catalog)
	b.sql.SetCatalog(catalog)
	b.closeMenu()
	b.relayout()
	b.reportDangling()
}

// Catalog returns the column catalog
func (b *FilterBuilder) Catalog() *models.Catalog {
	return b.catalog
}

// SetForest replaces the tree without committing it, for restoring a
// saved filter
func (b *FilterBuilder) SetForest(f models.Forest) {
	if !f.Connector.Valid() {
		f.Connector = models.ConnectorAnd
	}
	b.drag.Cancel()
	b.exclusive.CloseAll()
	b.stopEditing()
	b.forest = f
	b.cursorID = ""
	b.scrollY = 0
	b.reconciler.Reset()
	b.relayout()
	b.reportDangling()
}

func (b *FilterBuilder) reportDangling() {
	if n := dangling(b.forest, b.catalog); n > 0 {
		b.SetStatus(fmt.Sprintf("%d conditions refer to fields that no longer exist", n), true)
	}
}

// Forest returns the current tree
func (b *FilterBuilder) Forest() models.Forest {
	return b.forest
}

// SQL returns the SQL generator bound to the catalog
func (b *FilterBuilder) SQL() *filter.Builder {
	return b.sql
}

// SetSize updates the available area
func (b *FilterBuilder) SetSize(width, height int) {
	b.Width, b.Height = width, height
	b.clampScroll()
}

// SetStatus shows a message on the status line
func (b *FilterBuilder) SetStatus(msg string, isErr bool) {
	b.status = msg
	b.statusErr = isErr
}

// Status returns the status line message
func (b *FilterBuilder) Status() string {
	return b.status
}

// Dragging reports whether a drag gesture is in progress
func (b *FilterBuilder) Dragging() bool {
	return b.drag.Active()
}

// Capturing reports whether keys go to a text box or menu of the builder
func (b *FilterBuilder) Capturing() bool {
	return b.editingID != "" || b.menu != nil || b.drag.Active()
}

// Close tears the builder down: an in-flight drag is cancelled, menus are
// closed and global pointer tracking is released
func (b *FilterBuilder) Close() tea.Cmd {
	b.drag.Close()
	b.exclusive.CloseAll()
	b.stopEditing()
	return b.flush()
}

// relayout recomputes the committed and the displayed layout and feeds the
// displayed one to the reconciler
func (b *FilterBuilder) relayout() {
	b.valueErrors = filter.ValueErrors(b.forest, b.catalog)
	in := layout.Input{
		Forest:      b.forest,
		Catalog:     b.catalog,
		Metrics:     b.metrics,
		CursorID:    b.cursorID,
		OpenMenu:    b.menuKey(),
		Highlighted: b.coordinator.Active,
		ValueErrors: b.valueErrors,
	}
	b.committed = layout.Compute(in)
	if d := b.drag.Layout(); d != nil {
		in.Drag = d
		b.entries = layout.Compute(in)
	} else {
		b.entries = b.committed
	}
	b.reconciler.Update(b.entries)
	b.ensureCursor()
}

// commit installs a new forest and notifies the persistence sink
func (b *FilterBuilder) commit(next models.Forest) {
	if sameForest(b.forest, next) {
		return
	}
	b.forest = next
	b.relayout()
	if b.onCommit != nil {
		b.onCommit(next)
	}
	b.cmds = append(b.cmds, func() tea.Msg { return FilterChangedMsg{Forest: next} })
}

// sameForest reports whether next is the unchanged result of a no-op edit.
// Every edit copies the root slice, so identity of the root items is enough.
func sameForest(a, b models.Forest) bool {
	if a.Connector != b.Connector || len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return true
}

// flush hands queued commands and posted animation callbacks to bubbletea
func (b *FilterBuilder) flush() tea.Cmd {
	cmds := b.cmds
	b.cmds = nil
	if len(b.posted) > 0 {
		fns := b.posted
		b.posted = nil
		owner := b.zonePrefix
		cmds = append(cmds, tea.Tick(b.frame, func(time.Time) tea.Msg {
			return animationFrameMsg{owner: owner, fns: fns}
		}))
	}
	return tea.Batch(cmds...)
}

// Update handles keyboard, mouse and animation messages
func (b *FilterBuilder) Update(msg tea.Msg) (*FilterBuilder, tea.Cmd) {
	switch msg := msg.(type) {
	case animationFrameMsg:
		if msg.owner == b.zonePrefix {
			for _, fn := range msg.fns {
				fn()
			}
		}
	case tea.KeyMsg:
		b.handleKey(msg)
	case tea.MouseMsg:
		b.handleMouse(msg)
	case SQLCopiedMsg:
		if msg.Err != nil {
			b.SetStatus(fmt.Sprintf("Copy failed: %v", msg.Err), true)
		} else {
			b.SetStatus("SQL copied to clipboard", false)
		}
	default:
		// Cursor blink and similar messages of the active text box
		var cmd tea.Cmd
		if b.editingID != "" {
			b.valueInput, cmd = b.valueInput.Update(msg)
		} else if b.menu != nil && b.menu.picker != nil {
			cmd = b.menu.picker.Update(msg)
		}
		b.cmds = append(b.cmds, cmd)
	}
	return b, b.flush()
}

func (b *FilterBuilder) handleKey(msg tea.KeyMsg) {
	key := msg.String()
	switch {
	case b.editingID != "":
		b.handleEditKey(msg)
		return
	case b.menu != nil:
		b.handleMenuKey(msg)
		return
	case b.drag.Active():
		b.handleDragKey(key)
		return
	}

	b.status, b.statusErr = "", false
	switch key {
	case "up", "k":
		b.moveCursor(-1)
	case "down", "j":
		b.moveCursor(1)
	case "home":
		b.moveCursor(-len(b.committed))
	case "end":
		b.moveCursor(len(b.committed))
	case "pgup":
		b.scroll(-b.viewHeight())
	case "pgdown":
		b.scroll(b.viewHeight())
	case "a":
		b.addCondition()
	case "g":
		b.addGroup()
	case "f":
		b.openRowMenu(highlight.Field)
	case "o":
		b.openRowMenu(highlight.Operator)
	case "c":
		b.openConnectorMenu()
	case "enter", "e":
		b.startEditing(b.cursorID)
	case "x", "d", "delete", "backspace":
		b.removeCursor()
	case "m":
		b.beginKeyboardDrag()
	case "y":
		b.copySQL()
	case "C":
		b.clearAll()
	case "A":
		b.apply()
	case "T":
		b.coordinator.Skip()
		b.relayout()
	}
}

// Cursor

func (b *FilterBuilder) navigable() []string {
	ids := make([]string, 0, len(b.committed))
	for _, e := range b.committed {
		if e.Kind != layout.KindDragPreview {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (b *FilterBuilder) cursorEntry() (layout.Entry, bool) {
	if b.cursorID == "" {
		return layout.Entry{}, false
	}
	return layout.Find(b.committed, b.cursorID)
}

func (b *FilterBuilder) ensureCursor() {
	if b.cursorID != "" {
		if _, ok := layout.Find(b.committed, b.cursorID); ok {
			return
		}
	}
	nav := b.navigable()
	if len(nav) == 0 {
		b.cursorID = ""
		return
	}
	b.setCursor(nav[0])
}

// setCursor moves the focus without recomputing positions
func (b *FilterBuilder) setCursor(id string) {
	b.cursorID = id
	for _, list := range [][]layout.Entry{b.committed, b.entries} {
		for i := range list {
			list[i].Focused = list[i].ID == id
		}
	}
}

func (b *FilterBuilder) moveCursor(delta int) {
	nav := b.navigable()
	if len(nav) == 0 {
		return
	}
	i := indexOf(nav, b.cursorID)
	if i < 0 {
		i = 0
	} else {
		i = min(max(i+delta, 0), len(nav)-1)
	}
	b.setCursor(nav[i])
	b.ensureVisible()
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Structural edits

func (b *FilterBuilder) addCondition() {
	e, ok := b.cursorEntry()
	var next models.Forest
	var id string
	switch {
	case !ok:
		b.coordinator.Clear(highlight.Key(highlight.AddCondition, filter.Root.String()))
		next, id = b.mutator.AddCondition(b.forest)
	case e.Kind == layout.KindGroup:
		b.coordinator.Clear(highlight.Key(highlight.AddCondition, e.ID))
		next, id = b.mutator.AddConditionToGroup(b.forest, e.ID, e.ParentID)
	case e.Scope.IsRoot():
		b.coordinator.Clear(highlight.Key(highlight.AddCondition, filter.Root.String()))
		next, id = b.mutator.AddCondition(b.forest)
	default:
		b.coordinator.Clear(highlight.Key(highlight.AddCondition, e.ParentID))
		next, id = b.mutator.AddConditionToGroup(b.forest, e.ParentID, e.GrandparentID)
	}
	b.afterAdd(next, id)
}

func (b *FilterBuilder) addGroup() {
	e, ok := b.cursorEntry()
	var next models.Forest
	var id string
	var err error
	switch {
	case !ok || (e.Kind == layout.KindRow && e.Scope.IsRoot()):
		b.coordinator.Clear(highlight.Key(highlight.AddGroup, filter.Root.String()))
		next, id = b.mutator.AddGroup(b.forest)
	case e.Kind == layout.KindGroup:
		b.coordinator.Clear(highlight.Key(highlight.AddGroup, e.ID))
		next, id, err = b.mutator.AddGroupToGroup(b.forest, e.ID, e.ParentID)
	default:
		b.coordinator.Clear(highlight.Key(highlight.AddGroup, e.ParentID))
		next, id, err = b.mutator.AddGroupToGroup(b.forest, e.ParentID, e.GrandparentID)
	}
	if errors.Is(err, filter.ErrMaxDepth) {
		b.SetStatus("Groups can only be nested one level deep", true)
		return
	}
	b.afterAdd(next, id)
}

func (b *FilterBuilder) afterAdd(next models.Forest, id string) {
	if id == "" {
		return
	}
	b.cursorID = id
	b.commit(next)
	b.ensureVisible()
}

// addToGroup runs an add action of a group footer
func (b *FilterBuilder) addToGroup(e layout.Entry, part highlight.Part) {
	b.setCursor(e.ID)
	switch part {
	case highlight.AddCondition:
		b.addCondition()
	case highlight.AddGroup:
		b.addGroup()
	}
}

// addToRoot runs an add action of the root footer
func (b *FilterBuilder) addToRoot(part highlight.Part) {
	b.setCursor("")
	switch part {
	case highlight.AddCondition:
		b.addCondition()
	case highlight.AddGroup:
		b.addGroup()
	}
}

func (b *FilterBuilder) removeCursor() {
	e, ok := b.cursorEntry()
	if !ok {
		return
	}
	b.remove(e)
}

func (b *FilterBuilder) remove(e layout.Entry) {
	pos := indexOf(b.navigable(), e.ID)
	var next models.Forest
	if e.Kind == layout.KindGroup {
		next = b.mutator.DeleteGroup(b.forest, e.ID, e.ParentID)
	} else {
		next = b.mutator.RemoveCondition(b.forest, e.ID, e.Scope)
	}
	if b.editingID == e.ID {
		b.stopEditing()
	}
	b.cursorID = ""
	b.commit(next)
	if nav := b.navigable(); len(nav) > 0 {
		b.setCursor(nav[min(max(pos, 0), len(nav)-1)])
	}
	b.clampScroll()
}

func (b *FilterBuilder) clearAll() {
	if b.forest.Empty() {
		return
	}
	conditions, _ := filter.Count(b.forest)
	b.commit(b.mutator.Clear(b.forest))
	b.SetStatus(fmt.Sprintf("Cleared %d conditions", conditions), false)
	b.scrollY = 0
}

// Menus

func (b *FilterBuilder) menuKey() string {
	if b.menu == nil {
		return ""
	}
	return b.menu.key()
}

func (b *FilterBuilder) openMenu(m *dropdown) {
	b.stopEditing()
	b.exclusive.Open(menuExclusive, b.closeMenu)
	b.menu = m
	b.coordinator.Clear(m.key())
	b.relayout()
}

// closeMenu is the Exclusive close callback of menus
func (b *FilterBuilder) closeMenu() {
	if b.menu == nil {
		return
	}
	b.exclusive.Release(menuExclusive)
	b.menu = nil
	b.relayout()
}

func (b *FilterBuilder) openRowMenu(part highlight.Part) {
	e, ok := b.cursorEntry()
	if !ok || e.Kind != layout.KindRow {
		return
	}
	b.openRowMenuFor(e, part)
}

func (b *FilterBuilder) openRowMenuFor(e layout.Entry, part highlight.Part) {
	seg, ok := findSegment(rowSegments(e, b.metrics), part)
	if !ok {
		return
	}
	c := e.Condition
	m := &dropdown{part: part, itemID: c.ID, x: seg.x, y: e.Top + 1}
	switch part {
	case highlight.Field:
		m.picker = NewColumnPicker(b.catalog.Columns, c.Column(), fieldMenuRows)
		m.picker.SetInputWidth(fieldMenuWidth - 5)
	case highlight.Operator:
		for i, op := range filter.OperatorsFor(b.catalog, c.ColumnID) {
			m.options = append(m.options, string(op))
			if op == c.Operator {
				m.cursor = i
			}
		}
	default:
		return
	}
	b.openMenu(m)
}

// openConnectorMenu opens the connector dropdown of the cursor's scope. The
// control lives on the second item of the scope.
func (b *FilterBuilder) openConnectorMenu() {
	e, ok := b.cursorEntry()
	if !ok {
		return
	}
	for _, sib := range b.committed {
		if sib.Scope == e.Scope && sib.ConnectorEditable && sib.Kind != layout.KindDragPreview {
			b.openConnectorMenuFor(sib)
			return
		}
	}
	b.SetStatus("Add a second item to choose AND or OR", false)
}

func (b *FilterBuilder) openConnectorMenuFor(e layout.Entry) {
	var seg segment
	var ok bool
	y := e.Top + 1
	if e.Kind == layout.KindGroup {
		seg, ok = groupConnectorSegment(e)
	} else {
		seg, ok = findSegment(rowSegments(e, b.metrics), highlight.Connector)
	}
	if !ok {
		return
	}
	m := &dropdown{
		part:    highlight.Connector,
		itemID:  e.Scope.String(),
		scope:   e.Scope,
		x:       seg.x,
		y:       y,
		options: []string{string(models.ConnectorAnd), string(models.ConnectorOr)},
	}
	if e.Connector == models.ConnectorOr {
		m.cursor = 1
	}
	b.openMenu(m)
}

func (b *FilterBuilder) handleMenuKey(msg tea.KeyMsg) {
	m := b.menu
	switch msg.String() {
	case "esc":
		b.closeMenu()
		return
	case "enter":
		b.chooseMenu()
		return
	case "up", "ctrl+p":
		m.move(-1)
		return
	case "down", "ctrl+n":
		m.move(1)
		return
	}
	if m.picker != nil {
		b.cmds = append(b.cmds, m.picker.Update(msg))
		return
	}
	switch msg.String() {
	case "k":
		m.move(-1)
	case "j":
		m.move(1)
	}
}

// chooseMenu applies the selected option and closes the menu
func (b *FilterBuilder) chooseMenu() {
	m := b.menu
	if m == nil {
		return
	}
	next := b.forest
	switch m.part {
	case highlight.Field:
		if col, ok := m.picker.Selected(); ok {
			id := col.ID
			next = b.mutator.SetFieldOperatorValue(b.forest, m.itemID, filter.ConditionEdit{ColumnID: &id})
		}
	case highlight.Operator:
		if m.cursor < len(m.options) {
			op := models.Operator(m.options[m.cursor])
			next = b.mutator.SetFieldOperatorValue(b.forest, m.itemID, filter.ConditionEdit{Operator: &op})
		}
	case highlight.Connector:
		if m.cursor < len(m.options) {
			next = b.mutator.SetConnector(b.forest, m.scope, models.Connector(m.options[m.cursor]))
		}
	}
	b.exclusive.Release(menuExclusive)
	b.menu = nil
	b.commit(next)
	b.relayout()
}

// Value editing

func (b *FilterBuilder) startEditing(id string) {
	c, _, ok := filter.FindCondition(b.forest, id)
	if !ok {
		return
	}
	b.coordinator.Clear(highlight.Key(highlight.Value, id))
	if !c.Operator.NeedsValue() {
		b.SetStatus(fmt.Sprintf("%q takes no value", c.Operator), false)
		b.relayout()
		return
	}
	b.exclusive.CloseAll()
	b.editingID = id
	b.setCursor(id)
	b.valueInput.SetValue(c.Value)
	b.valueInput.CursorEnd()
	b.cmds = append(b.cmds, b.valueInput.Focus())
	b.relayout()
}

func (b *FilterBuilder) stopEditing() {
	if b.editingID == "" {
		return
	}
	b.editingID = ""
	b.valueInput.Blur()
}

// handleEditKey feeds the value box and commits every change
func (b *FilterBuilder) handleEditKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "enter", "esc", "tab":
		b.stopEditing()
		b.relayout()
		return
	}
	if _, _, ok := filter.FindCondition(b.forest, b.editingID); !ok {
		b.stopEditing()
		return
	}
	before := b.valueInput.Value()
	var cmd tea.Cmd
	b.valueInput, cmd = b.valueInput.Update(msg)
	b.cmds = append(b.cmds, cmd)
	if v := b.valueInput.Value(); v != before {
		b.commit(b.mutator.SetFieldOperatorValue(b.forest, b.editingID, filter.ConditionEdit{Value: &v}))
	}
}

// Drag

func (b *FilterBuilder) beginKeyboardDrag() {
	e, ok := b.cursorEntry()
	if !ok || e.Kind != layout.KindRow {
		b.SetStatus("Only conditions can be moved", false)
		return
	}
	b.stopEditing()
	if err := b.drag.BeginKeyboard(b.committed, e.ID); err != nil {
		debug.Log("keyboard drag: %v", err)
		return
	}
	b.SetStatus("Moving: arrows to place, enter to drop, esc to cancel", false)
	b.relayout()
}

func (b *FilterBuilder) handleDragKey(key string) {
	switch key {
	case "up", "k":
		b.drag.Nudge(b.committed, 0, -1)
	case "down", "j":
		b.drag.Nudge(b.committed, 0, 1)
	case "left", "h":
		b.drag.Nudge(b.committed, -b.metrics.Indent, 0)
	case "right", "l":
		b.drag.Nudge(b.committed, b.metrics.Indent, 0)
	case "enter", " ":
		b.finishDrag(b.drag.DropHere(b.forest))
		return
	case "esc":
		b.drag.Cancel()
		b.SetStatus("Move cancelled", false)
	}
	b.relayout()
}

// finishDrag commits a successful drop
func (b *FilterBuilder) finishDrag(next models.Forest, dropped bool) {
	id := b.drag.ConditionID()
	if !dropped {
		b.SetStatus("Move cancelled", false)
		b.relayout()
		return
	}
	b.SetStatus("", false)
	b.cursorID = id
	b.commit(next)
	b.relayout()
	b.ensureVisible()
}

// Mouse

func (b *FilterBuilder) handleMouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		for _, btn := range toolbarButtons {
			if zone.Get(b.zonePrefix + btn.id).InBounds(msg) {
				b.runToolbar(btn.id)
				return
			}
		}
	}

	z := zone.Get(b.zonePrefix + "canvas")
	if z.IsZero() {
		return
	}
	x, y := msg.X-z.StartX, msg.Y-z.StartY+b.scrollY

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		b.scroll(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		b.scroll(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if z.InBounds(msg) {
			b.pressAt(x, y)
		} else if b.menu != nil {
			b.closeMenu()
		}
	case msg.Action == tea.MouseActionMotion:
		b.motionAt(x, y)
	case msg.Action == tea.MouseActionRelease:
		b.releaseAt(x, y)
	}
}

func (b *FilterBuilder) runToolbar(id string) {
	switch id {
	case "apply":
		b.apply()
	case "copy":
		b.copySQL()
	case "clear":
		b.clearAll()
	}
}

// pressAt handles a left press at canvas cell (x, y)
func (b *FilterBuilder) pressAt(x, y int) {
	b.press = nil
	if m := b.menu; m != nil {
		if m.contains(x, y) {
			if m.pick(y - m.y - m.listTop()) {
				b.chooseMenu()
			}
			return
		}
		b.closeMenu()
		return
	}
	if b.editingID != "" {
		b.stopEditing()
		b.relayout()
	}

	if part, ok := b.rootFooterHit(x, y); ok {
		b.addToRoot(part)
		return
	}

	e, part, ok := b.hit(x, y)
	if !ok {
		return
	}
	switch e.Kind {
	case layout.KindRow:
		b.setCursor(e.ID)
		b.press = &pendingPress{id: e.ID, part: part, x: x, y: y}
	case layout.KindGroup:
		b.setCursor(e.ID)
		switch part {
		case highlight.Connector:
			b.openConnectorMenuFor(e)
		case highlight.AddCondition, highlight.AddGroup:
			b.addToGroup(e, part)
		case partDelete:
			b.remove(e)
		}
	}
}

// motionAt turns a pending press on a row's grip into a drag and follows
// the pointer
func (b *FilterBuilder) motionAt(x, y int) {
	if b.drag.Active() {
		b.drag.Move(b.committed, x, y)
		b.relayout()
		return
	}
	p := b.press
	if p == nil || p.part != partHandle || (p.x == x && p.y == y) {
		return
	}
	b.press = nil
	if err := b.drag.Begin(b.committed, p.id, p.x, p.y); err != nil {
		debug.Log("drag: %v", err)
		return
	}
	b.drag.Move(b.committed, x, y)
	b.relayout()
}

// releaseAt drops a drag, or clicks the control under a pending press
func (b *FilterBuilder) releaseAt(x, y int) {
	if b.drag.Active() {
		b.finishDrag(b.drag.Drop(b.forest, b.committed, x, y))
		return
	}
	p := b.press
	b.press = nil
	if p == nil {
		return
	}
	e, ok := layout.Find(b.committed, p.id)
	if !ok {
		return
	}
	switch p.part {
	case highlight.Connector:
		b.openConnectorMenuFor(e)
	case highlight.Field, highlight.Operator:
		b.openRowMenuFor(e, p.part)
	case highlight.Value:
		b.startEditing(e.ID)
	}
}

// hit returns the topmost committed entry at (x, y) and the control hit
func (b *FilterBuilder) hit(x, y int) (layout.Entry, highlight.Part, bool) {
	for i := len(b.committed) - 1; i >= 0; i-- {
		e := b.committed[i]
		if !e.Contains(x, y) {
			continue
		}
		switch e.Kind {
		case layout.KindRow:
			for _, s := range rowSegments(e, b.metrics) {
				if s.contains(x) {
					return e, s.part, true
				}
			}
			return e, "", true
		case layout.KindGroup:
			if y == e.Top {
				if s, ok := groupConnectorSegment(e); ok && s.contains(x) {
					return e, highlight.Connector, true
				}
			}
			if y == groupActionsY(e) {
				for _, a := range groupActions(e) {
					if a.contains(x) {
						return e, a.part, true
					}
				}
			}
			return e, "", true
		}
	}
	return layout.Entry{}, "", false
}

func (b *FilterBuilder) rootFooterHit(x, y int) (highlight.Part, bool) {
	if y != b.rootFooterY() {
		return "", false
	}
	for _, a := range rootActions() {
		if a.contains(x) {
			return a.part, true
		}
	}
	return "", false
}

// Output

func (b *FilterBuilder) apply() {
	where, args, err := b.sql.BuildWhere(b.forest)
	if err != nil {
		b.SetStatus(err.Error(), true)
		return
	}
	f := b.forest
	b.cmds = append(b.cmds, func() tea.Msg {
		return ApplyFilterMsg{Forest: f, Where: where, Args: args}
	})
}

func (b *FilterBuilder) copySQL() {
	text := b.sql.Preview(b.forest)
	if text == "" {
		b.SetStatus("Nothing to copy yet", false)
		return
	}
	b.cmds = append(b.cmds, func() tea.Msg {
		return SQLCopiedMsg{Err: clipboard.WriteAll(text)}
	})
}

// Scrolling

func (b *FilterBuilder) viewHeight() int {
	h := b.Height - 2
	if b.showSQL {
		h--
	}
	return max(h, 1)
}

func (b *FilterBuilder) contentHeight() int {
	return b.rootFooterY() + 1
}

func (b *FilterBuilder) clampScroll() {
	b.scrollY = min(max(b.scrollY, 0), max(b.contentHeight()-b.viewHeight(), 0))
}

func (b *FilterBuilder) scroll(delta int) {
	b.scrollY += delta
	b.clampScroll()
}

func (b *FilterBuilder) ensureVisible() {
	e, ok := b.cursorEntry()
	if !ok {
		return
	}
	top, bottom := e.Top, e.Bottom()
	if e.Kind == layout.KindGroup {
		bottom = top + 1
	}
	vh := b.viewHeight()
	if top < b.scrollY {
		b.scrollY = top
	} else if bottom > b.scrollY+vh {
		b.scrollY = bottom - vh
	}
	b.clampScroll()
}

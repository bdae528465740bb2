package drag

import (
	"errors"

	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/layout"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// State of the drag gesture
type State int

const (
	Idle State = iota
	Dragging
	Dropped
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// ExclusiveName is the member name the controller uses in an Exclusive
const ExclusiveName = "drag"

var (
	ErrAlreadyDragging = errors.New("a drag is already in progress")
	ErrNotDraggable    = errors.New("only condition rows can be dragged")
)

// Origin is where the dragged condition was picked up
type Origin struct {
	Scope filter.Scope
	Index int
}

// Controller is the pointer-gesture state machine for reparenting a
// condition. The tree is only touched on Drop, as a single Move.
type Controller struct {
	listeners *Listeners
	exclusive *Exclusive

	state       State
	conditionID string
	origin      Origin
	grabX       int
	grabY       int
	x, y        int
	target      Target
	hasTarget   bool
	release     func()
}

// NewController creates a drag controller. Both arguments may be nil.
func NewController(listeners *Listeners, exclusive *Exclusive) *Controller {
	if listeners == nil {
		listeners = NewListeners(nil, nil)
	}
	if exclusive == nil {
		exclusive = &Exclusive{}
	}
	return &Controller{listeners: listeners, exclusive: exclusive}
}

// State returns the gesture state
func (c *Controller) State() State { return c.state }

// Active reports whether a drag is in progress
func (c *Controller) Active() bool { return c.state == Dragging }

// ConditionID returns the dragged condition
func (c *Controller) ConditionID() string { return c.conditionID }

// Origin returns where the dragged condition was picked up
func (c *Controller) Origin() Origin { return c.origin }

// Target returns the current drop position and whether it resolves
func (c *Controller) Target() (Target, bool) { return c.target, c.hasTarget }

// Pointer returns the last pointer cell
func (c *Controller) Pointer() (int, int) { return c.x, c.y }

// Begin starts dragging the row conditionID from the pointer cell (x, y).
// entries is the committed layout.
func (c *Controller) Begin(entries []layout.Entry, conditionID string, x, y int) error {
	if c.state == Dragging {
		return ErrAlreadyDragging
	}
	row, ok := layout.Find(entries, conditionID)
	if !ok || row.Kind != layout.KindRow {
		return ErrNotDraggable
	}

	c.exclusive.Open(ExclusiveName, c.Cancel)
	c.release = c.listeners.Acquire()

	c.state = Dragging
	c.conditionID = conditionID
	c.origin = Origin{Scope: row.Scope, Index: row.Index}
	c.grabX = x - row.Left
	c.grabY = y - row.Top
	c.Move(entries, x, y)
	return nil
}

// BeginKeyboard starts a drag of the focused row without a pointer; the
// virtual pointer sits on the row's first cell
func (c *Controller) BeginKeyboard(entries []layout.Entry, conditionID string) error {
	row, ok := layout.Find(entries, conditionID)
	if !ok {
		return ErrNotDraggable
	}
	return c.Begin(entries, conditionID, row.Left+1, row.Top)
}

// Move repositions the pointer and re-resolves the drop position
func (c *Controller) Move(entries []layout.Entry, x, y int) {
	if c.state != Dragging {
		return
	}
	c.x, c.y = x, y
	c.target, c.hasTarget = Resolve(entries, c.conditionID, x, y)
}

// Nudge moves the pointer by (dx, dy) cells
func (c *Controller) Nudge(entries []layout.Entry, dx, dy int) {
	c.Move(entries, max(0, c.x+dx), max(0, c.y+dy))
}

// Drop ends the gesture at (x, y). When the position resolves the
// condition is moved in one structural update and the new forest is
// returned with true; otherwise the drag is cancelled and f is returned.
func (c *Controller) Drop(f models.Forest, entries []layout.Entry, x, y int) (models.Forest, bool) {
	if c.state != Dragging {
		return f, false
	}
	c.Move(entries, x, y)
	return c.DropHere(f)
}

// DropHere drops at the current pointer position
func (c *Controller) DropHere(f models.Forest) (models.Forest, bool) {
	if c.state != Dragging {
		return f, false
	}
	if !c.hasTarget {
		c.Cancel()
		return f, false
	}
	next, ok := filter.Move(f, c.conditionID, c.target.Scope, c.target.Index)
	if !ok {
		c.Cancel()
		return f, false
	}
	c.finish(Dropped)
	return next, true
}

// Cancel aborts the gesture without touching the tree
func (c *Controller) Cancel() {
	if c.state != Dragging {
		return
	}
	c.finish(Cancelled)
}

// Close releases everything on teardown
func (c *Controller) Close() {
	c.Cancel()
}

func (c *Controller) finish(s State) {
	c.state = s
	c.hasTarget = false
	c.exclusive.Release(ExclusiveName)
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// Layout returns the drag description for the layout engine, or nil
func (c *Controller) Layout() *layout.Drag {
	if c.state != Dragging {
		return nil
	}
	return &layout.Drag{
		ConditionID: c.conditionID,
		Target:      c.target.Scope,
		Index:       c.target.Index,
		HasTarget:   c.hasTarget,
		X:           c.x,
		Y:           c.y,
		GrabX:       c.grabX,
		GrabY:       c.grabY,
	}
}

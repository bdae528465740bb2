package drag

import (
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/layout"
)

// Target is a drop position: a scope and an index among its children,
// counted without the dragged condition
type Target struct {
	Scope filter.Scope
	Index int
}

// Resolve hit-tests a pointer cell against the committed layout. The
// deepest group box under the pointer wins; otherwise the root area (the
// root items plus one line below them) accepts the drop. Anywhere else
// does not resolve.
func Resolve(entries []layout.Entry, draggedID string, x, y int) (Target, bool) {
	if x < 0 || y < 0 {
		return Target{}, false
	}

	var hit *layout.Entry
	rootRight, rootBottom := 0, 0
	for i := range entries {
		e := &entries[i]
		if e.Kind == layout.KindDragPreview {
			continue
		}
		if e.Scope.IsRoot() {
			rootRight = max(rootRight, e.Right())
			rootBottom = max(rootBottom, e.Bottom())
		}
		if e.Kind != layout.KindGroup || !e.Contains(x, y) {
			continue
		}
		if hit == nil || e.Depth >= hit.Depth {
			hit = e
		}
	}

	var scope filter.Scope
	switch {
	case hit != nil:
		scope = filter.InGroup(hit.ID)
	case x < rootRight && y <= rootBottom:
		scope = filter.Root
	default:
		return Target{}, false
	}
	return Target{Scope: scope, Index: insertionIndex(entries, scope, draggedID, y)}, true
}

// insertionIndex counts the siblings whose vertical midpoint lies above y
func insertionIndex(entries []layout.Entry, scope filter.Scope, draggedID string, y int) int {
	n := 0
	for _, e := range entries {
		if e.Kind == layout.KindDragPreview || e.Scope != scope || e.ID == draggedID {
			continue
		}
		if 2*e.Top+e.Height <= 2*y {
			n++
		}
	}
	return n
}

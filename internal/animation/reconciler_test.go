package animation

import (
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/layout"
)

type manualScheduler struct {
	queue []func()
}

func (s *manualScheduler) Post(fn func()) {
	s.queue = append(s.queue, fn)
}

// flush runs the callbacks posted so far, like one painted frame
func (s *manualScheduler) flush() {
	q := s.queue
	s.queue = nil
	for _, fn := range q {
		fn()
	}
}

func rows(tops map[string]int, order ...string) []layout.Entry {
	entries := make([]layout.Entry, 0, len(order))
	for _, id := range order {
		entries = append(entries, layout.Entry{ID: id, Kind: layout.KindRow, Top: tops[id], Height: 1})
	}
	return entries
}

func TestReconciler_FirstLayoutIsNotAnimated(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s)

	if r.Update(rows(map[string]int{"a": 0, "b": 1}, "a", "b")) {
		t.Error("expected no animation for the first layout")
	}
	if r.Phase() != Stable || len(s.queue) != 0 {
		t.Error("expected stable phase with nothing scheduled")
	}
}

func TestReconciler_DeltaThenSettle(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s)
	r.Update(rows(map[string]int{"a": 0, "b": 1}, "a", "b"))

	if !r.Update(rows(map[string]int{"a": 1, "b": 0, "c": 2}, "b", "a", "c")) {
		t.Fatal("expected a settle to be scheduled")
	}
	if r.Phase() != DeltaApplied {
		t.Errorf("expected delta-applied, got %s", r.Phase())
	}
	if o := r.Offset("a"); o.Top != -1 {
		t.Errorf("expected a offset -1, got %d", o.Top)
	}
	if o := r.Offset("b"); o.Top != 1 {
		t.Errorf("expected b offset 1, got %d", o.Top)
	}
	if o := r.Offset("c"); !o.Zero() {
		t.Error("expected new entry c not to be animated")
	}

	s.flush()
	if r.Phase() != Stable {
		t.Errorf("expected stable after paint, got %s", r.Phase())
	}
	if !r.Offset("a").Zero() || !r.Offset("b").Zero() {
		t.Error("expected offsets cleared after paint")
	}
}

func TestReconciler_StaleSettleIsIgnored(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s)
	r.Update(rows(map[string]int{"a": 0}, "a"))
	r.Update(rows(map[string]int{"a": 2}, "a"))
	r.Update(rows(map[string]int{"a": 4}, "a"))

	if len(s.queue) != 2 {
		t.Fatalf("expected 2 scheduled settles, got %d", len(s.queue))
	}
	s.queue[0]()
	if r.Phase() != DeltaApplied {
		t.Error("expected stale settle not to clear newer offsets")
	}
	if o := r.Offset("a"); o.Top != -4 {
		t.Errorf("expected a drawn at its original line (offset -4), got %d", o.Top)
	}
	s.queue[1]()
	if r.Phase() != Stable {
		t.Errorf("expected stable, got %s", r.Phase())
	}
}

func TestReconciler_UnchangedLayoutKeepsOffsets(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s)
	r.Update(rows(map[string]int{"a": 0, "b": 1}, "a", "b"))
	r.Update(rows(map[string]int{"a": 1, "b": 0}, "b", "a"))

	if r.Update(rows(map[string]int{"a": 1, "b": 0}, "b", "a")) {
		t.Error("expected identical layout not to schedule anything")
	}
	if r.Offset("a").Top != -1 {
		t.Error("expected pending offsets to survive an identical layout")
	}
}

func TestReconciler_TracksLeft(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s)
	r.Update([]layout.Entry{{ID: "a", Kind: layout.KindRow, Top: 0, Left: 0}})
	r.Update([]layout.Entry{
		{ID: "a", Kind: layout.KindRow, Top: 3, Left: 4},
		{ID: layout.PreviewID("a"), Kind: layout.KindDragPreview, Top: 9, Left: 9},
	})

	o := r.Offset("a")
	if o.Top != -3 || o.Left != -4 {
		t.Errorf("expected offset (-4,-3), got (%d,%d)", o.Left, o.Top)
	}
	if !r.Offset(layout.PreviewID("a")).Zero() {
		t.Error("expected drag preview not to be animated")
	}
}

func TestReconciler_EasesOverFrames(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s, WithFrames(4))
	r.Update(rows(map[string]int{"a": 4}, "a"))
	r.Update(rows(map[string]int{"a": 0}, "a"))

	var seen []int
	for i := 0; i < 10 && r.Animating(); i++ {
		s.flush()
		seen = append(seen, r.Offset("a").Top)
	}
	expected := []int{3, 2, 1, 0}
	if len(seen) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, seen)
	}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, seen)
		}
	}
}

func TestReconciler_Reset(t *testing.T) {
	s := &manualScheduler{}
	r := NewReconciler(s)
	r.Update(rows(map[string]int{"a": 0}, "a"))
	r.Update(rows(map[string]int{"a": 1}, "a"))
	r.Reset()
	s.flush()

	if r.Animating() || !r.Offset("a").Zero() {
		t.Error("expected reset to stop the animation")
	}
	if r.Update(rows(map[string]int{"a": 5}, "a")) {
		t.Error("expected no animation right after reset")
	}
}

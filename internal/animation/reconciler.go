package animation

import "github.com/rebeliceyang/lazyfilter/internal/layout"

// Scheduler defers a callback until the current frame has been painted
type Scheduler interface {
	Post(fn func())
}

// SchedulerFunc adapts a function to Scheduler
type SchedulerFunc func(fn func())

// Post implements Scheduler
func (f SchedulerFunc) Post(fn func()) { f(fn) }

// Phase is the state of the reconciler
type Phase int

const (
	// Stable: every entry is drawn at its laid-out position
	Stable Phase = iota
	// DeltaApplied: moved entries are drawn at their previous position
	DeltaApplied
	// Playing: offsets are being eased back to zero
	Playing
)

func (p Phase) String() string {
	switch p {
	case Stable:
		return "stable"
	case DeltaApplied:
		return "delta-applied"
	case Playing:
		return "playing"
	}
	return "unknown"
}

// Offset is added to an entry's laid-out position when drawing it
type Offset struct {
	Top, Left int
}

// Zero reports whether the offset moves nothing
func (o Offset) Zero() bool { return o.Top == 0 && o.Left == 0 }

type position struct {
	top, left int
}

// Reconciler diffs successive layouts by entry id and drives the
// First-Last-Invert-Play offsets. It is not safe for concurrent use; the
// scheduler must run callbacks on the goroutine that calls Update.
type Reconciler struct {
	scheduler Scheduler
	frames    int

	prev    map[string]position
	offsets map[string]Offset
	start   map[string]Offset
	frame   int
	phase   Phase

	// generation invalidates settle callbacks posted for older layouts
	generation uint64
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithFrames eases offsets to zero over n frames after the first paint
// instead of clearing them at once
func WithFrames(n int) Option {
	return func(r *Reconciler) {
		r.frames = n
	}
}

// NewReconciler creates a reconciler posting deferred work to s
func NewReconciler(s Scheduler, opts ...Option) *Reconciler {
	r := &Reconciler{
		scheduler: s,
		prev:      make(map[string]position),
		offsets:   make(map[string]Offset),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update records a new layout pass. Entries whose position changed get an
// offset equal to previous minus next so they are drawn where they were;
// entries seen for the first time are not animated. It reports whether a
// settle was scheduled.
func (r *Reconciler) Update(entries []layout.Entry) bool {
	next := make(map[string]position, len(entries))
	offsets := make(map[string]Offset)
	for _, e := range entries {
		if e.Kind == layout.KindDragPreview {
			continue
		}
		pos := position{top: e.Top, left: e.Left}
		next[e.ID] = pos
		old, ok := r.prev[e.ID]
		if !ok || old == pos {
			continue
		}
		// Keep the visual position of entries that are still moving
		cur := r.offsets[e.ID]
		o := Offset{Top: old.top + cur.Top - pos.top, Left: old.left + cur.Left - pos.left}
		if !o.Zero() {
			offsets[e.ID] = o
		}
	}
	r.prev = next

	if len(offsets) == 0 {
		return false
	}
	for id, o := range r.offsets {
		if _, moved := offsets[id]; !moved {
			if _, alive := next[id]; alive {
				offsets[id] = o
			}
		}
	}

	r.offsets = offsets
	r.phase = DeltaApplied
	r.generation++
	gen := r.generation
	r.scheduler.Post(func() { r.settle(gen) })
	return true
}

// Offset returns the drawing offset of an entry
func (r *Reconciler) Offset(id string) Offset {
	return r.offsets[id]
}

// Phase returns the current phase
func (r *Reconciler) Phase() Phase {
	return r.phase
}

// Animating reports whether any entry is drawn away from its position
func (r *Reconciler) Animating() bool {
	return r.phase != Stable
}

// Reset forgets previous positions, so the next layout is not animated
func (r *Reconciler) Reset() {
	r.generation++
	r.prev = make(map[string]position)
	r.offsets = make(map[string]Offset)
	r.phase = Stable
}

func (r *Reconciler) settle(gen uint64) {
	if gen != r.generation {
		return
	}
	if r.frames <= 1 {
		r.offsets = make(map[string]Offset)
		r.phase = Stable
		return
	}
	r.start = r.offsets
	r.frame = 0
	r.phase = Playing
	r.play(gen)
}

func (r *Reconciler) play(gen uint64) {
	if gen != r.generation {
		return
	}
	r.frame++
	if r.frame >= r.frames {
		r.offsets = make(map[string]Offset)
		r.start = nil
		r.phase = Stable
		return
	}
	remaining := r.frames - r.frame
	offsets := make(map[string]Offset, len(r.start))
	for id, o := range r.start {
		offsets[id] = Offset{
			Top:  o.Top * remaining / r.frames,
			Left: o.Left * remaining / r.frames,
		}
	}
	r.offsets = offsets
	r.scheduler.Post(func() { r.play(gen) })
}

package drag

import "sync"

// Listeners hands out scoped acquisitions of global pointer tracking.
// Tracking is switched on with the first acquisition and off when the
// last one is released.
type Listeners struct {
	mu        sync.Mutex
	held      int
	onAcquire func()
	onRelease func()
}

// NewListeners creates a listener set. onAcquire and onRelease may be nil.
func NewListeners(onAcquire, onRelease func()) *Listeners {
	return &Listeners{onAcquire: onAcquire, onRelease: onRelease}
}

// Acquire starts global tracking and returns its release function.
// Calling release more than once has no further effect.
func (l *Listeners) Acquire() (release func()) {
	l.mu.Lock()
	l.held++
	first := l.held == 1
	l.mu.Unlock()
	if first && l.onAcquire != nil {
		l.onAcquire()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.held--
			last := l.held == 0
			l.mu.Unlock()
			if last && l.onRelease != nil {
				l.onRelease()
			}
		})
	}
}

// Held returns the number of outstanding acquisitions
func (l *Listeners) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Exclusive keeps at most one member of a family of overlays open:
// dropdown menus and drags. Opening a member closes the current one.
type Exclusive struct {
	current string
	close   func()
}

// Open makes name the open member, closing any other member first
func (e *Exclusive) Open(name string, close func()) {
	if e.current != "" && e.current != name && e.close != nil {
		prev := e.close
		e.current, e.close = "", nil
		prev()
	}
	e.current = name
	e.close = close
}

// Release forgets name if it is the open member, without closing it
func (e *Exclusive) Release(name string) {
	if e.current == name {
		e.current, e.close = "", nil
	}
}

// Current returns the open member, "" when none
func (e *Exclusive) Current() string {
	return e.current
}

// CloseAll closes the open member
func (e *Exclusive) CloseAll() {
	if e.current == "" {
		return
	}
	prev := e.close
	e.current, e.close = "", nil
	if prev != nil {
		prev()
	}
}

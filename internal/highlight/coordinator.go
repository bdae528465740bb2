package highlight

import "sync"

// Part identifies which control of an item a highlight points at
type Part string

const (
	Field        Part = "field"
	Operator     Part = "operator"
	Value        Part = "value"
	Connector    Part = "connector"
	AddCondition Part = "add-condition"
	AddGroup     Part = "add-group"
)

// Key builds the highlight id for a part of an item. Connector keys use
// the scope string ("root" or "group:<id>").
func Key(part Part, id string) string {
	return string(part) + ":" + id
}

// Step is one stage of a tutorial: the keys lit together and a hint
type Step struct {
	Keys []string
	Hint string
}

// Coordinator owns the highlight lifecycle. The builder reads the active
// keys for rendering and calls Clear when the user touches a highlighted
// control; the coordinator decides what lights up next.
type Coordinator struct {
	mu       sync.Mutex
	steps    []Step
	current  int
	active   map[string]bool
	onChange func(Step, bool)
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithOnChange registers a callback run after the active step changes.
// done is true once every step was completed.
func WithOnChange(fn func(step Step, done bool)) Option {
	return func(c *Coordinator) {
		c.onChange = fn
	}
}

// NewCoordinator creates a coordinator that walks through steps in order
func NewCoordinator(steps []Step, opts ...Option) *Coordinator {
	c := &Coordinator{steps: steps}
	for _, opt := range opts {
		opt(c)
	}
	c.load()
	return c
}

// DefaultSteps is the first-run tutorial for the filter builder
func DefaultSteps() []Step {
	return []Step{
		{Keys: []string{Key(AddCondition, "root")}, Hint: "Press a or click + condition to add your first filter"},
		{Keys: []string{Key(Field, "*")}, Hint: "Press f to pick the field to filter on"},
		{Keys: []string{Key(Operator, "*")}, Hint: "Press o to choose how to compare"},
		{Keys: []string{Key(Value, "*")}, Hint: "Press enter to type a value"},
		{Keys: []string{Key(AddGroup, "root")}, Hint: "Press g to group conditions with their own AND/OR"},
	}
}

func (c *Coordinator) load() {
	c.active = make(map[string]bool)
	if c.current >= len(c.steps) {
		return
	}
	for _, k := range c.steps[c.current].Keys {
		c.active[k] = true
	}
}

// Active reports whether key is highlighted. A key registered with the
// "*" id matches that part on every item.
func (c *Coordinator) Active(key string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked(key)
}

func (c *Coordinator) activeLocked(key string) bool {
	if c.active[key] {
		return true
	}
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return c.active[key[:i+1]+"*"]
		}
	}
	return false
}

// Snapshot returns the currently lit keys
func (c *Coordinator) Snapshot() map[string]bool {
	out := make(map[string]bool)
	if c == nil {
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.active {
		out[k] = v
	}
	return out
}

// Hint returns the text of the current step
func (c *Coordinator) Hint() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current >= len(c.steps) {
		return ""
	}
	return c.steps[c.current].Hint
}

// Done reports whether every step was completed
func (c *Coordinator) Done() bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current >= len(c.steps)
}

// Clear signals that the user interacted with key. When key belongs to the
// current step the coordinator advances. It reports whether anything changed.
func (c *Coordinator) Clear(key string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	if c.current >= len(c.steps) || !c.activeLocked(key) {
		c.mu.Unlock()
		return false
	}
	c.current++
	c.load()
	var step Step
	done := c.current >= len(c.steps)
	if !done {
		step = c.steps[c.current]
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(step, done)
	}
	return true
}

// Skip ends the tutorial
func (c *Coordinator) Skip() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.current = len(c.steps)
	c.load()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(Step{}, true)
	}
}

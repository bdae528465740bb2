package highlight

import "testing"

func TestCoordinator_AdvancesOnClear(t *testing.T) {
	var calls int
	var last bool
	c := NewCoordinator([]Step{
		{Keys: []string{Key(Field, "c1")}, Hint: "one"},
		{Keys: []string{Key(Operator, "*")}, Hint: "two"},
	}, WithOnChange(func(_ Step, done bool) {
		calls++
		last = done
	}))

	if !c.Active("field:c1") {
		t.Error("expected field:c1 to be highlighted")
	}
	if c.Active("field:c2") {
		t.Error("expected field:c2 not to be highlighted")
	}
	if c.Clear("operator:c1") {
		t.Error("expected clearing an inactive key to do nothing")
	}

	if !c.Clear("field:c1") {
		t.Fatal("expected clear to advance")
	}
	if c.Hint() != "two" {
		t.Errorf("expected hint 'two', got '%s'", c.Hint())
	}
	if !c.Active("operator:anything") {
		t.Error("expected wildcard operator highlight")
	}

	c.Clear("operator:c9")
	if !c.Done() {
		t.Error("expected tutorial to be done")
	}
	if calls != 2 || !last {
		t.Errorf("expected 2 change callbacks ending done, got %d done=%v", calls, last)
	}
	if len(c.Snapshot()) != 0 {
		t.Error("expected no active keys after the last step")
	}
}

func TestCoordinator_NilIsInactive(t *testing.T) {
	var c *Coordinator
	if c.Active("field:x") || c.Clear("field:x") {
		t.Error("expected nil coordinator to be inert")
	}
	if !c.Done() {
		t.Error("expected nil coordinator to report done")
	}
}

func TestCoordinator_Skip(t *testing.T) {
	c := NewCoordinator(DefaultSteps())
	c.Skip()
	if !c.Done() || c.Hint() != "" {
		t.Error("expected skip to end the tutorial")
	}
}

package filter

import (
	"reflect"
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/models"
	"pgregory.net/rapid"
)

func collectIDs(f models.Forest) (conditions, groups []string) {
	Walk(f, func(v Visit) bool {
		switch v.Item.(type) {
		case *models.Condition:
			conditions = append(conditions, v.Item.ItemID())
		case *models.Group:
			groups = append(groups, v.Item.ItemID())
		}
		return true
	})
	return conditions, groups
}

// randomForest drives a mutator through a random sequence of edits
func randomForest(t *rapid.T, m *Mutator) models.Forest {
	f := models.NewForest()
	steps := rapid.IntRange(0, 30).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		conditions, groups := collectIDs(f)
		switch rapid.IntRange(0, 7).Draw(t, "op") {
		case 0:
			f, _ = m.AddCondition(f)
		case 1:
			f, _ = m.AddGroup(f)
		case 2:
			if len(groups) > 0 {
				f, _ = m.AddConditionToGroup(f, rapid.SampledFrom(groups).Draw(t, "group"), "")
			}
		case 3:
			if len(groups) > 0 {
				f, _, _ = m.AddGroupToGroup(f, rapid.SampledFrom(groups).Draw(t, "group"), "")
			}
		case 4:
			if len(conditions) > 0 {
				f = m.RemoveItem(f, rapid.SampledFrom(conditions).Draw(t, "condition"))
			}
		case 5:
			if len(groups) > 0 {
				f = m.DeleteGroup(f, rapid.SampledFrom(groups).Draw(t, "group"), "")
			}
		case 6:
			if len(groups) > 0 {
				conn := rapid.SampledFrom([]models.Connector{models.ConnectorAnd, models.ConnectorOr}).Draw(t, "connector")
				f = m.SetConnector(f, InGroup(rapid.SampledFrom(groups).Draw(t, "group")), conn)
			}
		case 7:
			if len(conditions) > 0 {
				target := Root
				if len(groups) > 0 && rapid.Bool().Draw(t, "intoGroup") {
					target = InGroup(rapid.SampledFrom(groups).Draw(t, "target"))
				}
				f, _ = m.Move(f, rapid.SampledFrom(conditions).Draw(t, "condition"), target, rapid.IntRange(-1, 5).Draw(t, "index"))
			}
		}
	}
	return f
}

func TestProperty_ReachableForestsAreValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMutator(testCatalog(), WithIDGenerator(seqIDs()))
		f := randomForest(t, m)
		if err := Validate(f); err != nil {
			t.Fatalf("invalid forest: %v", err)
		}
	})
}

func TestProperty_AddThenRemoveRestoresForest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMutator(testCatalog(), WithIDGenerator(seqIDs()))
		f := randomForest(t, m)

		added, id := m.AddCondition(f)
		restored := m.RemoveCondition(added, id, Root)
		if !reflect.DeepEqual(restored, f) {
			t.Fatalf("expected %v, got %v", itemIDs(f.Items), itemIDs(restored.Items))
		}
	})
}

func TestProperty_MovePreservesConditions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMutator(testCatalog(), WithIDGenerator(seqIDs()))
		f := randomForest(t, m)
		conditions, groups := collectIDs(f)
		if len(conditions) == 0 {
			return
		}
		id := rapid.SampledFrom(conditions).Draw(t, "condition")
		target := Root
		if len(groups) > 0 && rapid.Bool().Draw(t, "intoGroup") {
			target = InGroup(rapid.SampledFrom(groups).Draw(t, "target"))
		}

		next, ok := m.Move(f, id, target, rapid.IntRange(0, 5).Draw(t, "index"))
		if !ok {
			t.Fatalf("move of %s into %s rejected", id, target)
		}
		after, _ := collectIDs(next)
		if len(after) != len(conditions) {
			t.Fatalf("expected %d conditions, got %d", len(conditions), len(after))
		}
		_, v, _ := FindCondition(next, id)
		if v.Scope != target {
			t.Fatalf("expected %s in %s, got %s", id, target, v.Scope)
		}
		if err := Validate(next); err != nil {
			t.Fatalf("invalid forest after move: %v", err)
		}
	})
}

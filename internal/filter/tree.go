package filter

import (
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// MaxGroupDepth is the deepest group depth that may still contain groups
// minus one: root-level groups have depth 0, groups nested in them depth 1,
// and depth-1 groups hold conditions only.
const MaxGroupDepth = 1

var (
	ErrMaxDepth         = errors.New("groups nested in a group cannot contain groups")
	ErrDuplicateID      = errors.New("duplicate item id")
	ErrUnknownItemType  = errors.New("unknown item type")
	ErrInvalidConnector = errors.New("invalid connector")
	ErrInvalidOperator  = errors.New("invalid operator")
)

// Scope addresses a list of siblings sharing one connector: the root
// (zero value) or the children of a group.
type Scope struct {
	GroupID string
}

// Root is the root scope
var Root = Scope{}

// InGroup returns the scope of a group's children
func InGroup(id string) Scope { return Scope{GroupID: id} }

// IsRoot reports whether the scope is the root
func (s Scope) IsRoot() bool { return s.GroupID == "" }

func (s Scope) String() string {
	if s.IsRoot() {
		return "root"
	}
	return "group:" + s.GroupID
}

// Visit describes one item reached by Walk
type Visit struct {
	Item          models.Item
	Index         int // position among its siblings
	Depth         int // 0 for root items, +1 per enclosing group
	Scope         Scope
	ParentID      string // enclosing group, "" at root
	GrandparentID string
}

// Walk visits every item in pre-order: a group is visited before its
// children. Returning false from fn skips the children of a group.
func Walk(f models.Forest, fn func(Visit) bool) {
	walkItems(f.Items, 0, Root, "", "", fn)
}

func walkItems(items []models.Item, depth int, scope Scope, parent, grandparent string, fn func(Visit) bool) {
	for i, item := range items {
		descend := fn(Visit{
			Item:          item,
			Index:         i,
			Depth:         depth,
			Scope:         scope,
			ParentID:      parent,
			GrandparentID: grandparent,
		})
		if g, ok := item.(*models.Group); ok && descend {
			walkItems(g.Children, depth+1, InGroup(g.ID), g.ID, parent, fn)
		}
	}
}

// Find locates an item by id
func Find(f models.Forest, id string) (Visit, bool) {
	var found Visit
	ok := false
	Walk(f, func(v Visit) bool {
		if ok {
			return false
		}
		if v.Item.ItemID() == id {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// FindGroup locates a group by id. The depth of the returned visit is the
// group depth (0 for root-level groups).
func FindGroup(f models.Forest, id string) (*models.Group, Visit, bool) {
	if id == "" {
		return nil, Visit{}, false
	}
	v, ok := Find(f, id)
	if !ok {
		return nil, Visit{}, false
	}
	g, isGroup := v.Item.(*models.Group)
	if !isGroup {
		return nil, Visit{}, false
	}
	return g, v, true
}

// FindCondition locates a condition by id
func FindCondition(f models.Forest, id string) (*models.Condition, Visit, bool) {
	v, ok := Find(f, id)
	if !ok {
		return nil, Visit{}, false
	}
	c, isCond := v.Item.(*models.Condition)
	if !isCond {
		return nil, Visit{}, false
	}
	return c, v, true
}

// ScopeItems returns the children addressed by a scope
func ScopeItems(f models.Forest, s Scope) ([]models.Item, bool) {
	if s.IsRoot() {
		return f.Items, true
	}
	g, _, ok := FindGroup(f, s.GroupID)
	if !ok {
		return nil, false
	}
	return g.Children, true
}

// ScopeConnector returns the connector shared by the siblings of a scope
func ScopeConnector(f models.Forest, s Scope) models.Connector {
	if s.IsRoot() {
		return f.Connector
	}
	if g, _, ok := FindGroup(f, s.GroupID); ok {
		return g.Connector
	}
	return f.Connector
}

// CanAddGroup reports whether a group may be added to the scope
func CanAddGroup(f models.Forest, s Scope) bool {
	if s.IsRoot() {
		return true
	}
	_, v, ok := FindGroup(f, s.GroupID)
	return ok && v.Depth < MaxGroupDepth
}

// Count returns the number of conditions and groups in the forest
func Count(f models.Forest) (conditions, groups int) {
	Walk(f, func(v Visit) bool {
		switch v.Item.(type) {
		case *models.Condition:
			conditions++
		case *models.Group:
			groups++
		}
		return true
	})
	return conditions, groups
}

// Validate checks the structural invariants of a forest: connectors and
// operators are known, ids are unique and groups respect the nesting cap.
func Validate(f models.Forest) error {
	if !f.Connector.Valid() {
		return fmt.Errorf("root: %w %q", ErrInvalidConnector, f.Connector)
	}
	seen := make(map[string]bool)
	var err error
	Walk(f, func(v Visit) bool {
		if err != nil {
			return false
		}
		id := v.Item.ItemID()
		if seen[id] {
			err = fmt.Errorf("%w: %s", ErrDuplicateID, id)
			return false
		}
		seen[id] = true
		if c, ok := v.Item.(*models.Condition); ok && !c.Operator.Valid() {
			err = fmt.Errorf("condition %s: %w %q", id, ErrInvalidOperator, c.Operator)
			return false
		}
		if g, ok := v.Item.(*models.Group); ok {
			if v.Depth > MaxGroupDepth {
				err = fmt.Errorf("group %s at depth %d: %w", id, v.Depth, ErrMaxDepth)
				return false
			}
			if !g.Connector.Valid() {
				err = fmt.Errorf("group %s: %w %q", id, ErrInvalidConnector, g.Connector)
				return false
			}
		}
		return true
	})
	return err
}

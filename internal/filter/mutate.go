package filter

import (
	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// Mutator applies structural edits to a forest. Every method takes the
// current forest and returns a new one; the input is never modified and
// subtrees untouched by an edit are shared with the result. Ids that no
// longer resolve turn an edit into a no-op.
type Mutator struct {
	catalog *models.Catalog
	newID   func() string
}

// MutatorOption configures a Mutator
type MutatorOption func(*Mutator)

// WithIDGenerator replaces the uuid generator, mostly for tests
func WithIDGenerator(fn func() string) MutatorOption {
	return func(m *Mutator) {
		m.newID = fn
	}
}

// NewMutator creates a mutator that picks default columns from catalog
func NewMutator(catalog *models.Catalog, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		catalog: catalog,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetCatalog swaps the column catalog used for defaults
func (m *Mutator) SetCatalog(catalog *models.Catalog) {
	m.catalog = catalog
}

// Catalog returns the current column catalog
func (m *Mutator) Catalog() *models.Catalog {
	return m.catalog
}

func (m *Mutator) newCondition() *models.Condition {
	c := &models.Condition{
		ID:       m.newID(),
		Operator: DefaultOperator(models.ColumnTypeText),
	}
	if col, ok := m.catalog.First(); ok {
		c.ColumnID = models.StringPtr(col.ID)
		c.Operator = DefaultOperator(col.Type)
	}
	return c
}

func (m *Mutator) newGroup() *models.Group {
	return &models.Group{ID: m.newID(), Connector: models.ConnectorAnd}
}

// AddCondition appends a new condition to the root
func (m *Mutator) AddCondition(f models.Forest) (models.Forest, string) {
	c := m.newCondition()
	f.Items = appendItem(f.Items, c)
	return f, c.ID
}

// AddGroup appends a new empty AND group to the root
func (m *Mutator) AddGroup(f models.Forest) (models.Forest, string) {
	g := m.newGroup()
	f.Items = appendItem(f.Items, g)
	return f, g.ID
}

// AddConditionToGroup appends a condition to the addressed group. The
// parent hint narrows the search to the children of that root-level group.
func (m *Mutator) AddConditionToGroup(f models.Forest, groupID, parentGroupID string) (models.Forest, string) {
	g, _, ok := resolveGroup(f, groupID, parentGroupID)
	if !ok {
		return f, ""
	}
	c := m.newCondition()
	f.Items, _ = mapGroup(f.Items, g.ID, func(g *models.Group) *models.Group {
		return g.WithChildren(appendItem(g.Children, c))
	})
	return f, c.ID
}

// AddGroupToGroup appends an empty group to the addressed group. Groups
// that are themselves nested cannot hold groups: the forest is returned
// unchanged together with ErrMaxDepth.
func (m *Mutator) AddGroupToGroup(f models.Forest, groupID, parentGroupID string) (models.Forest, string, error) {
	g, v, ok := resolveGroup(f, groupID, parentGroupID)
	if !ok {
		return f, "", nil
	}
	if v.Depth >= MaxGroupDepth {
		return f, "", ErrMaxDepth
	}
	ng := m.newGroup()
	f.Items, _ = mapGroup(f.Items, g.ID, func(g *models.Group) *models.Group {
		return g.WithChildren(appendItem(g.Children, ng))
	})
	return f, ng.ID, nil
}

// RemoveCondition deletes a condition from the given scope. Removing the
// last condition of a group removes the group as well.
func (m *Mutator) RemoveCondition(f models.Forest, conditionID string, scope Scope) models.Forest {
	if scope.IsRoot() {
		items, changed := removeCondition(f.Items, conditionID)
		if changed {
			f.Items = items
		}
		return f
	}
	f.Items = RemoveConditionFromGroupTree(f.Items, scope.GroupID, conditionID)
	return f
}

// RemoveItem deletes a condition or a group wherever it is
func (m *Mutator) RemoveItem(f models.Forest, id string) models.Forest {
	v, ok := Find(f, id)
	if !ok {
		return f
	}
	switch v.Item.(type) {
	case *models.Condition:
		return m.RemoveCondition(f, id, v.Scope)
	case *models.Group:
		return m.DeleteGroup(f, id, v.ParentID)
	}
	return f
}

// RemoveConditionFromGroupTree rebuilds items without conditionID inside
// the group targetGroupID. A group left empty by the removal is dropped
// from its parent, which cascades when that parent empties in turn.
func RemoveConditionFromGroupTree(items []models.Item, targetGroupID, conditionID string) []models.Item {
	out, _ := removeFromGroupTree(items, targetGroupID, conditionID, nil)
	return out
}

func removeFromGroupTree(items []models.Item, targetGroupID, conditionID string, protect map[string]bool) ([]models.Item, bool) {
	var out []models.Item
	changed := false
	for i, item := range items {
		g, ok := item.(*models.Group)
		if !ok {
			if changed {
				out = append(out, item)
			}
			continue
		}

		var children []models.Item
		var childChanged bool
		if g.ID == targetGroupID {
			children, childChanged = removeCondition(g.Children, conditionID)
		} else {
			children, childChanged = removeFromGroupTree(g.Children, targetGroupID, conditionID, protect)
		}
		if !childChanged {
			if changed {
				out = append(out, item)
			}
			continue
		}

		if !changed {
			out = make([]models.Item, 0, len(items))
			out = append(out, items[:i]...)
			changed = true
		}
		if len(children) == 0 && !protect[g.ID] {
			continue
		}
		out = append(out, g.WithChildren(children))
	}
	if !changed {
		return items, false
	}
	if len(out) == 0 {
		return nil, true
	}
	return out, true
}

// DeleteGroup removes a group and its subtree. A parent group left empty
// is removed too.
func (m *Mutator) DeleteGroup(f models.Forest, groupID, parentGroupID string) models.Forest {
	g, v, ok := resolveGroup(f, groupID, parentGroupID)
	if !ok {
		return f
	}
	if v.Scope.IsRoot() {
		f.Items, _ = removeByID(f.Items, g.ID)
		return f
	}
	f.Items, _ = deleteNested(f.Items, v.ParentID, g.ID)
	return f
}

func deleteNested(items []models.Item, parentID, id string) ([]models.Item, bool) {
	for i, item := range items {
		g, ok := item.(*models.Group)
		if !ok {
			continue
		}
		var children []models.Item
		var changed bool
		if g.ID == parentID {
			children, changed = removeByID(g.Children, id)
		} else {
			children, changed = deleteNested(g.Children, parentID, id)
		}
		if !changed {
			continue
		}
		if len(children) == 0 {
			out, _ := removeByID(items, g.ID)
			return out, true
		}
		out := cloneItems(items)
		out[i] = g.WithChildren(children)
		return out, true
	}
	return items, false
}

// SetConnector replaces the single connector of a scope
func (m *Mutator) SetConnector(f models.Forest, scope Scope, value models.Connector) models.Forest {
	if !value.Valid() {
		return f
	}
	if scope.IsRoot() {
		f.Connector = value
		return f
	}
	f.Items, _ = mapGroup(f.Items, scope.GroupID, func(g *models.Group) *models.Group {
		if g.Connector == value {
			return g
		}
		return &models.Group{ID: g.ID, Connector: value, Children: g.Children}
	})
	return f
}

// ConditionEdit lists the condition fields to change; nil fields are kept
type ConditionEdit struct {
	ColumnID *string
	Operator *models.Operator
	Value    *string
}

// SetFieldOperatorValue edits a condition in place: the result holds a new
// condition with the same id. Changing the column resets an operator the
// new column does not support.
func (m *Mutator) SetFieldOperatorValue(f models.Forest, conditionID string, edit ConditionEdit) models.Forest {
	if _, _, ok := FindCondition(f, conditionID); !ok {
		return f
	}
	f.Items, _ = mapCondition(f.Items, conditionID, func(c *models.Condition) *models.Condition {
		nc := c.Clone()
		if edit.ColumnID != nil {
			nc.ColumnID = models.StringPtr(*edit.ColumnID)
			col, ok := m.catalog.Lookup(*edit.ColumnID)
			colType := models.ColumnTypeText
			if ok {
				colType = col.Type
			}
			if !SupportsOperator(colType, nc.Operator) {
				nc.Operator = DefaultOperator(colType)
			}
		}
		if edit.Operator != nil && edit.Operator.Valid() {
			nc.Operator = *edit.Operator
		}
		if edit.Value != nil {
			nc.Value = *edit.Value
		}
		return nc
	})
	return f
}

// Move reparents a condition into target at index in one structural step.
// index counts the destination's children with the condition already
// removed and is clamped to the valid range. It reports false, returning
// the forest unchanged, when the condition or the target does not exist.
func (m *Mutator) Move(f models.Forest, conditionID string, target Scope, index int) (models.Forest, bool) {
	return Move(f, conditionID, target, index)
}

// Move is the pure form of Mutator.Move, used for drag previews
func Move(f models.Forest, conditionID string, target Scope, index int) (models.Forest, bool) {
	c, origin, ok := FindCondition(f, conditionID)
	if !ok {
		return f, false
	}
	protect := map[string]bool{}
	if !target.IsRoot() {
		_, tv, ok := FindGroup(f, target.GroupID)
		if !ok {
			return f, false
		}
		protect[target.GroupID] = true
		if tv.ParentID != "" {
			protect[tv.ParentID] = true
		}
	}

	var items []models.Item
	if origin.Scope.IsRoot() {
		items, _ = removeCondition(f.Items, conditionID)
	} else {
		items, _ = removeFromGroupTree(f.Items, origin.Scope.GroupID, conditionID, protect)
	}

	if target.IsRoot() {
		items = insertAt(items, index, c)
	} else {
		items, _ = mapGroup(items, target.GroupID, func(g *models.Group) *models.Group {
			return g.WithChildren(insertAt(g.Children, index, c))
		})
	}
	f.Items = items
	return f, true
}

// Clear removes every item and keeps the root connector
func (m *Mutator) Clear(f models.Forest) models.Forest {
	return models.Forest{Connector: f.Connector}
}

// resolveGroup finds a group, first under the parent hint when one is given
func resolveGroup(f models.Forest, groupID, parentGroupID string) (*models.Group, Visit, bool) {
	if parentGroupID != "" {
		if parent, pv, ok := FindGroup(f, parentGroupID); ok {
			for i, child := range parent.Children {
				if g, ok := child.(*models.Group); ok && g.ID == groupID {
					return g, Visit{
						Item:          g,
						Index:         i,
						Depth:         pv.Depth + 1,
						Scope:         InGroup(parent.ID),
						ParentID:      parent.ID,
						GrandparentID: pv.ParentID,
					}, true
				}
			}
		}
	}
	return FindGroup(f, groupID)
}

// mapGroup replaces the group with the given id by fn(group), copying only
// the slices on the path to it
func mapGroup(items []models.Item, id string, fn func(*models.Group) *models.Group) ([]models.Item, bool) {
	for i, item := range items {
		g, ok := item.(*models.Group)
		if !ok {
			continue
		}
		if g.ID == id {
			out := cloneItems(items)
			out[i] = fn(g)
			return out, true
		}
		if children, changed := mapGroup(g.Children, id, fn); changed {
			out := cloneItems(items)
			out[i] = g.WithChildren(children)
			return out, true
		}
	}
	return items, false
}

func mapCondition(items []models.Item, id string, fn func(*models.Condition) *models.Condition) ([]models.Item, bool) {
	for i, item := range items {
		switch it := item.(type) {
		case *models.Condition:
			if it.ID == id {
				out := cloneItems(items)
				out[i] = fn(it)
				return out, true
			}
		case *models.Group:
			if children, changed := mapCondition(it.Children, id, fn); changed {
				out := cloneItems(items)
				out[i] = it.WithChildren(children)
				return out, true
			}
		}
	}
	return items, false
}

// removeCondition drops a direct child condition with the given id
func removeCondition(items []models.Item, id string) ([]models.Item, bool) {
	for i, item := range items {
		if c, ok := item.(*models.Condition); ok && c.ID == id {
			return removeAt(items, i), true
		}
	}
	return items, false
}

// removeByID drops a direct child of any kind
func removeByID(items []models.Item, id string) ([]models.Item, bool) {
	for i, item := range items {
		if item.ItemID() == id {
			return removeAt(items, i), true
		}
	}
	return items, false
}

func removeAt(items []models.Item, i int) []models.Item {
	if len(items) == 1 {
		return nil
	}
	out := make([]models.Item, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func insertAt(items []models.Item, index int, item models.Item) []models.Item {
	if index < 0 {
		index = 0
	}
	if index > len(items) {
		index = len(items)
	}
	out := make([]models.Item, 0, len(items)+1)
	out = append(out, items[:index]...)
	out = append(out, item)
	return append(out, items[index:]...)
}

func appendItem(items []models.Item, item models.Item) []models.Item {
	return insertAt(items, len(items), item)
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	copy(out, items)
	return out
}

package models

// Connector joins the direct siblings of one scope
type Connector string

const (
	ConnectorAnd Connector = "and"
	ConnectorOr  Connector = "or"
)

// Valid reports whether c is a known connector
func (c Connector) Valid() bool {
	return c == ConnectorAnd || c == ConnectorOr
}

// Toggle returns the other connector
func (c Connector) Toggle() Connector {
	if c == ConnectorOr {
		return ConnectorAnd
	}
	return ConnectorOr
}

// Header returns the group header sentence for the connector
func (c Connector) Header() string {
	if c == ConnectorOr {
		return "Any of the following are true…"
	}
	return "All of the following are true…"
}

// SQL returns the SQL keyword for the connector
func (c Connector) SQL() string {
	if c == ConnectorOr {
		return "OR"
	}
	return "AND"
}

// Operator represents a filter comparison operator
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not equals"
	OpContains       Operator = "contains"
	OpNotContains    Operator = "does not contain"
	OpStartsWith     Operator = "starts with"
	OpEndsWith       Operator = "ends with"
	OpGreaterThan    Operator = "greater than"
	OpGreaterOrEqual Operator = "greater or equal"
	OpLessThan       Operator = "less than"
	OpLessOrEqual    Operator = "less or equal"
	OpIsEmpty        Operator = "is empty"
	OpIsNotEmpty     Operator = "is not empty"
)

// Valid reports whether o is a known operator
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// NeedsValue reports whether the operator compares against a user value
func (o Operator) NeedsValue() bool {
	return o != OpIsEmpty && o != OpIsNotEmpty
}

// Item is either a *Condition or a *Group
type Item interface {
	ItemID() string
	isFilterItem()
}

// Condition represents a single filter condition (a leaf of the tree)
type Condition struct {
	ID       string
	ColumnID *string // nil until a field is chosen, may dangle after schema changes
	Operator Operator
	Value    string
}

// ItemID implements Item
func (c *Condition) ItemID() string { return c.ID }

func (*Condition) isFilterItem() {}

// Column returns the column id or "" when unset
func (c *Condition) Column() string {
	if c.ColumnID == nil {
		return ""
	}
	return *c.ColumnID
}

// Clone returns a shallow copy safe to modify
func (c *Condition) Clone() *Condition {
	cp := *c
	if c.ColumnID != nil {
		id := *c.ColumnID
		cp.ColumnID = &id
	}
	return &cp
}

// Group represents a group of conditions with AND/OR logic.
// A group exclusively owns its children.
type Group struct {
	ID        string
	Connector Connector
	Children  []Item
}

// ItemID implements Item
func (g *Group) ItemID() string { return g.ID }

func (*Group) isFilterItem() {}

// Empty reports whether the group has no children
func (g *Group) Empty() bool { return len(g.Children) == 0 }

// WithChildren returns a copy of the group holding children
func (g *Group) WithChildren(children []Item) *Group {
	return &Group{ID: g.ID, Connector: g.Connector, Children: children}
}

// Forest represents the complete filter state: the root items and the
// connector shared by all of them
type Forest struct {
	Items     []Item
	Connector Connector
}

// NewForest returns an empty forest joined by AND
func NewForest() Forest {
	return Forest{Connector: ConnectorAnd}
}

// Empty reports whether the forest has no items
func (f Forest) Empty() bool { return len(f.Items) == 0 }

// StringPtr is a small helper for building conditions
func StringPtr(s string) *string { return &s }

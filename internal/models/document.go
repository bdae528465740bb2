package models

// Item kinds used in serialized documents
const (
	DocCondition = "condition"
	DocGroup     = "group"
)

// ItemDoc is the serialized form of a condition or a group
type ItemDoc struct {
	Type      string    `json:"type" yaml:"type"`
	ID        string    `json:"id" yaml:"id"`
	ColumnID  *string   `json:"column_id,omitempty" yaml:"column_id,omitempty"`
	Operator  Operator  `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value     string    `json:"value,omitempty" yaml:"value,omitempty"`
	Connector Connector `json:"connector,omitempty" yaml:"connector,omitempty"`
	Children  []ItemDoc `json:"children,omitempty" yaml:"children,omitempty"`
}

// ForestDoc is the serialized form of a Forest
type ForestDoc struct {
	Connector Connector `json:"connector" yaml:"connector"`
	Items     []ItemDoc `json:"items" yaml:"items"`
}

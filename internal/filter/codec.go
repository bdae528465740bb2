package filter

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// ErrMissingID is returned when a decoded item has no id
var ErrMissingID = errors.New("item without id")

// ToDoc converts a forest into its serializable form
func ToDoc(f models.Forest) models.ForestDoc {
	connector := f.Connector
	if !connector.Valid() {
		connector = models.ConnectorAnd
	}
	return models.ForestDoc{
		Connector: connector,
		Items:     itemsToDocs(f.Items),
	}
}

func itemsToDocs(items []models.Item) []models.ItemDoc {
	docs := make([]models.ItemDoc, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case *models.Condition:
			doc := models.ItemDoc{
				Type:     models.DocCondition,
				ID:       it.ID,
				Operator: it.Operator,
				Value:    it.Value,
			}
			if it.ColumnID != nil {
				doc.ColumnID = models.StringPtr(*it.ColumnID)
			}
			docs = append(docs, doc)
		case *models.Group:
			docs = append(docs, models.ItemDoc{
				Type:      models.DocGroup,
				ID:        it.ID,
				Connector: it.Connector,
				Children:  itemsToDocs(it.Children),
			})
		}
	}
	return docs
}

// FromDoc rebuilds a forest and checks it against the tree invariants
func FromDoc(doc models.ForestDoc) (models.Forest, error) {
	connector := doc.Connector
	if connector == "" {
		connector = models.ConnectorAnd
	}
	items, err := docsToItems(doc.Items)
	if err != nil {
		return models.Forest{}, err
	}
	f := models.Forest{Items: items, Connector: connector}
	if err := Validate(f); err != nil {
		return models.Forest{}, err
	}
	return f, nil
}

func docsToItems(docs []models.ItemDoc) ([]models.Item, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	items := make([]models.Item, 0, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("item %d: %w", i, ErrMissingID)
		}
		switch doc.Type {
		case models.DocCondition:
			c := &models.Condition{
				ID:       doc.ID,
				Operator: doc.Operator,
				Value:    doc.Value,
			}
			if doc.ColumnID != nil {
				c.ColumnID = models.StringPtr(*doc.ColumnID)
			}
			if c.Operator == "" {
				c.Operator = models.OpContains
			}
			items = append(items, c)
		case models.DocGroup:
			children, err := docsToItems(doc.Children)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", doc.ID, err)
			}
			connector := doc.Connector
			if connector == "" {
				connector = models.ConnectorAnd
			}
			items = append(items, &models.Group{ID: doc.ID, Connector: connector, Children: children})
		default:
			return nil, fmt.Errorf("item %s: %w %q", doc.ID, ErrUnknownItemType, doc.Type)
		}
	}
	return items, nil
}

// Encode serializes a forest to JSON
func Encode(f models.Forest) ([]byte, error) {
	data, err := json.Marshal(ToDoc(f))
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	return data, nil
}

// Decode parses a forest from JSON
func Decode(data []byte) (models.Forest, error) {
	var doc models.ForestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Forest{}, fmt.Errorf("failed to decode filter: %w", err)
	}
	f, err := FromDoc(doc)
	if err != nil {
		return models.Forest{}, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

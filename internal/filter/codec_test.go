package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func TestEncode_EmptyForest(t *testing.T) {
	data, err := Encode(models.NewForest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"connector":"and","items":[]}` {
		t.Errorf("unexpected json %s", data)
	}
}

func TestDecode_PreservesStructure(t *testing.T) {
	f := models.Forest{
		Items: []models.Item{
			condOn("c0", "age", models.OpGreaterThan, "3"),
			group("g0", models.ConnectorOr,
				&models.Condition{ID: "c1", Operator: models.OpIsEmpty},
				group("g1", models.ConnectorAnd, condOn("c2", "name", models.OpEquals, "x")),
			),
		},
		Connector: models.ConnectorOr,
	}

	data, err := Encode(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, f) {
		t.Errorf("decoded forest differs: %s", data)
	}
}

func TestDecode_RejectsTooDeepGroups(t *testing.T) {
	data := []byte(`{"connector":"and","items":[
		{"type":"group","id":"g0","connector":"and","children":[
			{"type":"group","id":"g1","connector":"and","children":[
				{"type":"group","id":"g2","connector":"and"}]}]}]}`)

	_, err := Decode(data)
	if !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth, got %v", err)
	}
}

func TestDecode_RejectsDuplicateIDs(t *testing.T) {
	data := []byte(`{"connector":"and","items":[
		{"type":"condition","id":"c0","operator":"contains"},
		{"type":"group","id":"g0","children":[{"type":"condition","id":"c0"}]}]}`)

	_, err := Decode(data)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestDecode_RejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"connector":"and","items":[{"type":"rule","id":"x"}]}`))
	if !errors.Is(err, ErrUnknownItemType) {
		t.Errorf("expected ErrUnknownItemType, got %v", err)
	}

	_, err = Decode([]byte(`{"items":[{"type":"condition"}]}`))
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestDecode_InvalidConnector(t *testing.T) {
	_, err := Decode([]byte(`{"connector":"xor","items":[]}`))
	if !errors.Is(err, ErrInvalidConnector) {
		t.Errorf("expected ErrInvalidConnector, got %v", err)
	}
}

func TestDecode_RejectsUnknownOperator(t *testing.T) {
	data := []byte(`{"connector":"and","items":[{"type":"condition","id":"c0","column_id":"age","operator":"foo","value":"1"}]}`)
	_, err := Decode(data)
	if !errors.Is(err, ErrInvalidOperator) {
		t.Errorf("expected ErrInvalidOperator, got %v", err)
	}

	// A missing operator still defaults to contains
	data = []byte(`{"connector":"and","items":[{"type":"condition","id":"c0","column_id":"name","value":"x"}]}`)
	f, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := f.Items[0].(*models.Condition); c.Operator != models.OpContains {
		t.Errorf("expected contains, got %s", c.Operator)
	}
}

package metadata

import "github.com/rebeliceyang/lazyfilter/internal/models"

// DemoTable is the table name shown when running without a database
const DemoTable = "demo.customers"

// DemoCatalog returns a static catalog covering every column type
func DemoCatalog() *models.Catalog {
	return models.NewCatalog([]models.Column{
		{ID: "id", Name: "ID", Type: models.ColumnTypeNumber, DataType: "integer"},
		{ID: "name", Name: "Name", Type: models.ColumnTypeText, DataType: "character varying"},
		{ID: "email", Name: "Email", Type: models.ColumnTypeText, DataType: "character varying", Nullable: true},
		{ID: "age", Name: "Age", Type: models.ColumnTypeNumber, DataType: "integer", Nullable: true},
		{ID: "lifetime_value", Name: "Lifetime value", Type: models.ColumnTypeNumber, DataType: "numeric"},
		{ID: "active", Name: "Active", Type: models.ColumnTypeBoolean, DataType: "boolean"},
		{ID: "notes", Name: "Notes", Type: models.ColumnTypeLongText, DataType: "text", Nullable: true},
		{ID: "signed_up_at", Name: "Signed up", Type: models.ColumnTypeDate, DataType: "timestamp with time zone"},
		{ID: "country", Name: "Country", Type: models.ColumnTypeText, DataType: "character varying"},
		{ID: "plan", Name: "Plan", Type: models.ColumnTypeText, DataType: "character varying"},
	})
}

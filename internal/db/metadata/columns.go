package metadata

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/lazyfilter/internal/db/connection"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// LoadCatalog retrieves the filterable columns of a table in ordinal order
func LoadCatalog(ctx context.Context, pool *connection.Pool, schema, table string) (*models.Catalog, error) {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable = 'YES' as nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s.%s has no columns or does not exist", schema, table)
	}

	return models.NewCatalog(columnsFromRows(rows)), nil
}

func columnsFromRows(rows []map[string]interface{}) []models.Column {
	columns := make([]models.Column, 0, len(rows))
	for _, row := range rows {
		var col models.Column
		col.ID = toString(row["column_name"])
		col.Name = col.ID
		col.DataType = toString(row["data_type"])
		col.Type = models.ColumnTypeFromPG(col.DataType)

		if nullable, ok := row["nullable"].(bool); ok {
			col.Nullable = nullable
		}

		columns = append(columns, col)
	}
	return columns
}

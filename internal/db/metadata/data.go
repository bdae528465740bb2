package metadata

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/lazyfilter/internal/db/connection"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// CountMatches counts the rows of a table matching the filter
func CountMatches(ctx context.Context, pool *connection.Pool, b *filter.Builder, schema, table string, f models.Forest) (int64, error) {
	sql, args, err := b.Count(schema, table, f)
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	n, err := pool.QueryInt(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

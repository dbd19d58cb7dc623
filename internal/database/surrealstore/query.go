package surrealstore

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// query runs a SurrealQL statement and returns the rows of its first result.
func query[T any](ctx context.Context, db *surrealdb.DB, sql string, params map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, db, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	first := (*results)[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("query execution failed: status %s", first.Status)
	}
	return first.Result, nil
}

// queryOne returns the first row, or nil when the statement matched nothing.
func queryOne[T any](ctx context.Context, db *surrealdb.DB, sql string, params map[string]any) (*T, error) {
	rows, err := query[T](ctx, db, sql, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// execute runs statements whose results are not needed. Every statement must
// succeed.
func execute(ctx context.Context, db *surrealdb.DB, sql string, params map[string]any) error {
	results, err := surrealdb.Query[any](ctx, db, sql, params)
	if err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	if results == nil {
		return nil
	}
	for i, r := range *results {
		if r.Status != "OK" {
			return fmt.Errorf("statement %d failed: status %s: %v", i, r.Status, r.Result)
		}
	}
	return nil
}

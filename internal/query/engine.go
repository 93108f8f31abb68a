// Package query implements the query gateway over an embedded DuckDB handle.
package query

import (
	"context"
	"database/sql"
	"fmt"

	"streampro-lake/internal/domain"
)

// Engine executes SQL text against the lake engine. The pipeline only sends
// DDL through it (schema creation, view registration).
type Engine struct {
	db *sql.DB
}

var _ domain.QueryGateway = (*Engine)(nil)

// NewEngine wraps an engine handle. Sharing the storage gateway's handle
// keeps the installed S3 secret visible to registered views.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Execute runs one SQL statement.
func (e *Engine) Execute(ctx context.Context, sqlText string) error {
	if _, err := e.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"streampro-lake/internal/ddl"
	"streampro-lake/internal/domain"
)

// readTableSQL builds the engine query that reads one object as a row table.
func readTableSQL(uri string, format domain.FileFormat) (string, error) {
	lit := ddl.QuoteLiteral(uri)
	switch format {
	case domain.FormatCSV:
		return fmt.Sprintf("SELECT * FROM read_csv(%s, header = true)", lit), nil
	case domain.FormatJSONL:
		return fmt.Sprintf("SELECT * FROM read_json(%s, format = 'newline_delimited')", lit), nil
	case domain.FormatParquet:
		return fmt.Sprintf("SELECT * FROM read_parquet(%s)", lit), nil
	default:
		return "", fmt.Errorf("unsupported read format: %q", format)
	}
}

// copyOptionsSQL builds the COPY TO option list for one output format.
// Parquet output uses snappy compression.
func copyOptionsSQL(format domain.FileFormat) (string, error) {
	switch format {
	case domain.FormatParquet:
		return "(FORMAT PARQUET, COMPRESSION SNAPPY)", nil
	case domain.FormatCSV:
		return "(FORMAT CSV, HEADER)", nil
	case domain.FormatJSONL:
		return "(FORMAT JSON, ARRAY false)", nil
	default:
		return "", fmt.Errorf("unsupported write format: %q", format)
	}
}

// ReadTable reads the object at key as a row table. A missing or unreadable
// object surfaces as an error; callers decide whether that is fatal.
func (g *Gateway) ReadTable(ctx context.Context, key string, format domain.FileFormat) (*domain.Table, error) {
	return g.readTableURI(ctx, g.s3URI(key), format)
}

func (g *Gateway) readTableURI(ctx context.Context, uri string, format domain.FileFormat) (*domain.Table, error) {
	query, err := readTableSQL(uri, format)
	if err != nil {
		return nil, err
	}

	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read %q as %s: %w", uri, format, err)
	}
	defer rows.Close() //nolint:errcheck

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %q columns: %w", uri, err)
	}

	table := &domain.Table{Columns: columns}
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %q row: %w", uri, err)
		}
		for i, c := range cells {
			cells[i] = normalizeCell(c)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %q rows: %w", uri, err)
	}
	return table, nil
}

// normalizeCell maps driver-specific scan values onto the loose cell types
// the pipeline works with.
func normalizeCell(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// WriteTable writes a row table to key in the given format by staging the
// rows into a temporary engine table and COPYing it out. Existing objects at
// key are overwritten.
func (g *Gateway) WriteTable(ctx context.Context, table *domain.Table, key string, format domain.FileFormat) error {
	return g.writeTableURI(ctx, table, g.s3URI(key), format)
}

func (g *Gateway) writeTableURI(ctx context.Context, table *domain.Table, uri string, format domain.FileFormat) error {
	if table == nil || len(table.Columns) == 0 {
		return fmt.Errorf("write %q: table has no columns", uri)
	}
	options, err := copyOptionsSQL(format)
	if err != nil {
		return err
	}
	createSQL, err := stagingTableSQL(table)
	if err != nil {
		return fmt.Errorf("write %q: %w", uri, err)
	}

	// TEMP tables are session-scoped, so the whole create/insert/copy/drop
	// sequence must run on one pinned connection; statements routed through
	// the pool can land on different sessions.
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("write %q: acquire connection: %w", uri, err)
	}
	defer conn.Close() //nolint:errcheck

	if _, err := conn.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("write %q: stage table: %w", uri, err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, "DROP TABLE IF EXISTS stage_out")
	}()

	if len(table.Rows) > 0 {
		placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ") + ")"
		insert, err := conn.PrepareContext(ctx, "INSERT INTO stage_out VALUES "+placeholders)
		if err != nil {
			return fmt.Errorf("write %q: prepare insert: %w", uri, err)
		}
		defer insert.Close() //nolint:errcheck
		for _, row := range table.Rows {
			if _, err := insert.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("write %q: insert row: %w", uri, err)
			}
		}
	}

	copySQL := fmt.Sprintf("COPY stage_out TO %s %s", ddl.QuoteLiteral(uri), options)
	if _, err := conn.ExecContext(ctx, copySQL); err != nil {
		return fmt.Errorf("write %q as %s: %w", uri, format, err)
	}
	return nil
}

// stagingTableSQL builds a CREATE OR REPLACE TEMP TABLE statement whose
// column types are inferred from the first non-nil cell in each column.
func stagingTableSQL(table *domain.Table) (string, error) {
	defs := make([]string, len(table.Columns))
	for i, name := range table.Columns {
		if err := ddl.ValidateIdentifier(name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", name, err)
		}
		defs[i] = fmt.Sprintf("%s %s", ddl.QuoteIdentifier(name), columnType(table, i))
	}
	return fmt.Sprintf("CREATE OR REPLACE TEMP TABLE stage_out (%s)", strings.Join(defs, ", ")), nil
}

// columnType infers an engine column type from the first non-nil cell.
// Columns with no values default to VARCHAR.
func columnType(table *domain.Table, col int) string {
	for _, row := range table.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case bool:
			return "BOOLEAN"
		case int, int32, int64:
			return "BIGINT"
		case float32, float64:
			return "DOUBLE"
		default:
			return "VARCHAR"
		}
	}
	return "VARCHAR"
}

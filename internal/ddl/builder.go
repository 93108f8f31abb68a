// Package ddl builds SQL DDL statements for the lake query engine: schema
// creation, external trusted tables, literal-backed views, and S3 secrets.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes a column for CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string
}

// CreateSchemaIfNotExists returns: CREATE SCHEMA IF NOT EXISTS "<name>".
// Idempotent, safe to run before every load.
func CreateSchemaIfNotExists(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid schema name: %w", err)
	}
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", QuoteIdentifier(name)), nil
}

// CreateExternalTable returns a DDL statement for a partitioned external
// table over columnar files:
//
//	CREATE TABLE IF NOT EXISTS "<schema>"."<table>" ("<col>" TYPE, ...)
//	WITH (partitioned_by = ARRAY['<col>'], external_location = '<loc>', format = 'PARQUET')
func CreateExternalTable(schema, table string, columns []ColumnDef, partitionCols []string, location string) (string, error) {
	if err := ValidateIdentifier(schema); err != nil {
		return "", fmt.Errorf("invalid schema name: %w", err)
	}
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if location == "" {
		return "", fmt.Errorf("external location is required")
	}

	var colDefs []string
	for _, c := range columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), c.Type))
	}

	var with []string
	if len(partitionCols) > 0 {
		var quoted []string
		for _, p := range partitionCols {
			if err := ValidateIdentifier(p); err != nil {
				return "", fmt.Errorf("invalid partition column %q: %w", p, err)
			}
			quoted = append(quoted, QuoteLiteral(p))
		}
		with = append(with, fmt.Sprintf("partitioned_by = ARRAY[%s]", strings.Join(quoted, ", ")))
	}
	with = append(with,
		fmt.Sprintf("external_location = %s", QuoteLiteral(location)),
		"format = 'PARQUET'",
	)

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (%s) WITH (%s)",
		QuoteIdentifier(schema),
		QuoteIdentifier(table),
		strings.Join(colDefs, ", "),
		strings.Join(with, ", "),
	), nil
}

// CreateValuesView returns a DDL statement for a view over an inline literal
// row set:
//
//	CREATE OR REPLACE VIEW "<schema>"."<table>" AS
//	SELECT <cols> FROM (VALUES <tuples>) AS t(<cols>)
//
// valueTuples must be pre-rendered "(lit, lit, ...)" strings; use
// FormatValueLiteral so embedded quotes are doubled and missing values map
// to NULL.
func CreateValuesView(schema, table string, columns []string, valueTuples []string) (string, error) {
	if err := ValidateIdentifier(schema); err != nil {
		return "", fmt.Errorf("invalid schema name: %w", err)
	}
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if len(valueTuples) == 0 {
		return "", fmt.Errorf("at least one value tuple is required")
	}

	var quoted []string
	for _, c := range columns {
		if err := ValidateIdentifier(c); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c, err)
		}
		quoted = append(quoted, QuoteIdentifier(c))
	}
	colList := strings.Join(quoted, ", ")

	return fmt.Sprintf("CREATE OR REPLACE VIEW %s.%s AS SELECT %s FROM (VALUES %s) AS t(%s)",
		QuoteIdentifier(schema),
		QuoteIdentifier(table),
		colList,
		strings.Join(valueTuples, ", "),
		colList,
	), nil
}

// CreateS3Secret returns a DuckDB DDL statement to create an S3 secret.
// useSSL false is needed for plain-http MinIO endpoints.
func CreateS3Secret(name, keyID, secret, endpoint, region, urlStyle string, useSSL bool) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secret name is required")
	}
	return fmt.Sprintf(`CREATE OR REPLACE SECRET %s (
	TYPE S3,
	KEY_ID %s,
	SECRET %s,
	ENDPOINT %s,
	REGION %s,
	URL_STYLE %s,
	USE_SSL %t
)`,
		QuoteIdentifier(name),
		QuoteLiteral(keyID),
		QuoteLiteral(secret),
		QuoteLiteral(endpoint),
		QuoteLiteral(region),
		QuoteLiteral(urlStyle),
		useSSL,
	), nil
}

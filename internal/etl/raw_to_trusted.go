package etl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"streampro-lake/internal/config"
	"streampro-lake/internal/ddl"
	"streampro-lake/internal/domain"
	"streampro-lake/internal/schema"
)

// maxViewRows bounds the inline literal row set embedded in a registered
// view. A limitation of VALUES-based view registration, not a query limit.
const maxViewRows = 100

// LoadFailure records one failed trusted-table write.
type LoadFailure struct {
	Table string
	Error string
}

// RawToTrusted reads per-table raw files, appends the ingestion_date
// partition column, writes snappy parquet to the trusted area, and registers
// queryable views over the written data.
type RawToTrusted struct {
	Hooks

	storage       domain.StorageGateway
	queries       domain.QueryGateway
	rawPrefix     string
	trustedPrefix string
	ingestionDate string
	schemaName    string
	logger        *slog.Logger
}

// NewRawToTrusted builds the raw→trusted stage from configuration.
func NewRawToTrusted(storage domain.StorageGateway, queries domain.QueryGateway, cfg *config.Config, logger *slog.Logger) *RawToTrusted {
	return &RawToTrusted{
		storage:       storage,
		queries:       queries,
		rawPrefix:     cfg.RawPrefix,
		trustedPrefix: cfg.TrustedPrefix,
		ingestionDate: cfg.IngestionDate,
		schemaName:    cfg.SchemaName,
		logger:        logger,
	}
}

// ID implements Stage.
func (p *RawToTrusted) ID() string { return "raw_to_trusted_processor" }

// Description implements Stage.
func (p *RawToTrusted) Description() string {
	return "Transform raw data to trusted layer with parquet format"
}

// tableToken strips the trusted_ prefix from a registry table name.
func tableToken(trustedTable string) string {
	return strings.TrimPrefix(trustedTable, "trusted_")
}

// rawSourceKey is {raw_prefix}/ingestion_date={date}/{token}_{date}.{ext}.
func (p *RawToTrusted) rawSourceKey(token string, format domain.FileFormat) string {
	return fmt.Sprintf("%s/ingestion_date=%s/%s_%s.%s",
		p.rawPrefix, p.ingestionDate, token, p.ingestionDate, format)
}

// trustedKey is {trusted_prefix}/{token}/ingestion_date={date}/data.parquet.
func (p *RawToTrusted) trustedKey(token string) string {
	return fmt.Sprintf("%s/%s/ingestion_date=%s/data.parquet",
		p.trustedPrefix, token, p.ingestionDate)
}

// rawFormat returns the raw-area serialization for a table token. Events
// land as line-delimited JSON; everything else as CSV.
func rawFormat(token string) domain.FileFormat {
	if token == "events" {
		return domain.FormatJSONL
	}
	return domain.FormatCSV
}

// Extract reads each registry table's raw file through its format-specific
// reader. A read failure or empty result skips that table; only tables that
// were read successfully flow on, each tagged with its trusted-table name.
func (p *RawToTrusted) Extract(ctx context.Context) ([]domain.ExtractedTable, error) {
	p.logger.Info("reading raw data", "raw_prefix", p.rawPrefix, "ingestion_date", p.ingestionDate)

	var extracted []domain.ExtractedTable
	for _, trustedTable := range schema.Tables() {
		token := tableToken(trustedTable)
		format := rawFormat(token)
		key := p.rawSourceKey(token, format)

		table, err := p.storage.ReadTable(ctx, key, format)
		if err != nil {
			p.logger.Warn("skipping table: raw read failed", "table", token, "key", key, "error", err)
			continue
		}
		if table.IsEmpty() {
			p.logger.Warn("skipping table: raw file empty", "table", token, "key", key)
			continue
		}

		p.logger.Info("read raw table", "table", token, "rows", table.NumRows())
		extracted = append(extracted, domain.ExtractedTable{
			TableType:    token,
			TrustedTable: trustedTable,
			Data:         table,
		})
	}

	p.logger.Info("extraction complete", "datasets", len(extracted))
	return extracted, nil
}

// Transform appends the ingestion_date column where it is absent, every row
// set to the target date. Append-only and total: no column is removed or
// retyped, and the input tables are replaced, not mutated.
func (p *RawToTrusted) Transform(_ context.Context, extracted []domain.ExtractedTable) ([]domain.ExtractedTable, error) {
	transformed := make([]domain.ExtractedTable, 0, len(extracted))
	for _, t := range extracted {
		data := t.Data
		if !data.HasColumn("ingestion_date") {
			data = data.WithColumn("ingestion_date", p.ingestionDate)
		}
		transformed = append(transformed, domain.ExtractedTable{
			TableType:    t.TableType,
			TrustedTable: t.TrustedTable,
			Data:         data,
		})
		p.logger.Debug("transformed table", "table", t.TableType, "rows", data.NumRows())
	}
	return transformed, nil
}

// Load ensures the target schema exists, then writes each table as snappy
// parquet to its trusted-area key. Per-table write failures are collected and
// do not abort the remaining tables; success means zero failures.
func (p *RawToTrusted) Load(ctx context.Context, transformed []domain.ExtractedTable) (*domain.ProcessingResult, error) {
	createSchema, err := ddl.CreateSchemaIfNotExists(p.schemaName)
	if err != nil {
		return nil, err
	}
	if err := p.queries.Execute(ctx, createSchema); err != nil {
		return nil, fmt.Errorf("create schema %s: %w", p.schemaName, err)
	}

	successful := 0
	var failures []LoadFailure
	var tablesCreated []string
	tokens := make([]string, 0, len(transformed))

	for _, t := range transformed {
		tokens = append(tokens, t.TableType)
		key := p.trustedKey(t.TableType)

		p.logger.Info("writing parquet", "table", t.TableType, "rows", t.Data.NumRows(), "key", key)
		if err := p.storage.WriteTable(ctx, t.Data, key, domain.FormatParquet); err != nil {
			failures = append(failures, LoadFailure{Table: t.TrustedTable, Error: err.Error()})
			p.logger.Error("failed to write table", "table", t.TrustedTable, "error", err)
			continue
		}
		successful++
		tablesCreated = append(tablesCreated, t.TrustedTable)
	}

	message := fmt.Sprintf("Created %d trusted parquet tables", successful)
	if len(failures) > 0 {
		message += fmt.Sprintf(", %d failed", len(failures))
	}

	result := domain.NewProcessingResult(len(failures) == 0, message)
	result.Metadata = map[string]any{
		"successful_loads": successful,
		"failed_loads":     failures,
		"tables_processed": tokens,
		"trusted_prefix":   p.trustedPrefix,
		"ingestion_date":   p.ingestionDate,
		"format":           "PARQUET",
		"compression":      "SNAPPY",
		"partitioned":      true,
	}
	result.RowsProcessed = len(transformed)
	result.TablesCreated = tablesCreated
	return result, nil
}

// PostProcess re-reads each written parquet file to obtain the realized
// column order, registers a bounded literal-row view through the query
// gateway, and appends registered view names to the result's created-table
// set. Per-table failures are logged and skipped. The readiness flags are
// set unconditionally.
func (p *RawToTrusted) PostProcess(ctx context.Context, result *domain.ProcessingResult) error {
	var registered []string

	for _, trustedTable := range schema.Tables() {
		token := tableToken(trustedTable)
		key := p.trustedKey(token)

		table, err := p.storage.ReadTable(ctx, key, domain.FormatParquet)
		if err != nil {
			p.logger.Warn("could not read back trusted table", "table", trustedTable, "error", err)
			continue
		}
		if table.IsEmpty() {
			p.logger.Warn("no data found for trusted table", "table", trustedTable)
			continue
		}

		tuples := valueTuples(table.Head(maxViewRows))
		viewSQL, err := schema.ViewDDL(p.schemaName, trustedTable, tuples)
		if err != nil {
			p.logger.Warn("could not build view DDL", "table", trustedTable, "error", err)
			continue
		}
		if err := p.queries.Execute(ctx, viewSQL); err != nil {
			p.logger.Warn("could not register view", "table", trustedTable, "error", err)
			continue
		}

		registered = append(registered, trustedTable)
		p.logger.Info("registered trusted view", "view", fmt.Sprintf("%s.%s", p.schemaName, trustedTable))
	}

	if len(registered) > 0 {
		result.TablesCreated = append(result.TablesCreated, registered...)
		result.Metadata["external_views_created"] = len(registered)
	}

	result.Metadata["data_lake_ready"] = true
	result.Metadata["analytics_ready"] = true
	return nil
}

// valueTuples renders each row of a table as a SQL "(lit, lit, ...)" tuple
// in the table's realized column order.
func valueTuples(table *domain.Table) []string {
	tuples := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		literals := make([]string, len(row))
		for i, cell := range row {
			literals[i] = ddl.FormatValueLiteral(cell)
		}
		tuples = append(tuples, "("+strings.Join(literals, ", ")+")")
	}
	return tuples
}

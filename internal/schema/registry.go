// Package schema is the fixed catalog of trusted-layer tables: column
// definitions, partition columns, and storage-location suffixes. It is
// process-wide read-only state defined once at startup.
package schema

import (
	"streampro-lake/internal/ddl"
	"streampro-lake/internal/domain"
)

// TableSchema describes one trusted table. Every partition column also
// appears in Columns; PartitionCols order drives partition path construction.
type TableSchema struct {
	Name           string
	Columns        []ddl.ColumnDef
	PartitionCols  []string
	LocationSuffix string
}

// ColumnNames returns the declared column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// trustedSchemas is the catalog, in declaration order. Tables() iterates in
// this order.
var trustedSchemas = []TableSchema{
	{
		Name: "trusted_users",
		Columns: []ddl.ColumnDef{
			{Name: "user_id", Type: "VARCHAR"},
			{Name: "signup_date", Type: "VARCHAR"},
			{Name: "subscription_tier", Type: "VARCHAR"},
			{Name: "age_group", Type: "VARCHAR"},
			{Name: "gender", Type: "VARCHAR"},
			{Name: "ingestion_date", Type: "VARCHAR"},
		},
		PartitionCols:  []string{"ingestion_date"},
		LocationSuffix: "users",
	},
	{
		Name: "trusted_videos",
		Columns: []ddl.ColumnDef{
			{Name: "video_id", Type: "VARCHAR"},
			{Name: "title", Type: "VARCHAR"},
			{Name: "genre", Type: "VARCHAR"},
			{Name: "duration_seconds", Type: "INTEGER"},
			{Name: "patent_id", Type: "VARCHAR"},
			{Name: "ingestion_date", Type: "VARCHAR"},
		},
		PartitionCols:  []string{"ingestion_date"},
		LocationSuffix: "videos",
	},
	{
		Name: "trusted_devices",
		Columns: []ddl.ColumnDef{
			{Name: "device", Type: "VARCHAR"},
			{Name: "os", Type: "VARCHAR"},
			{Name: "model", Type: "VARCHAR"},
			{Name: "os_version", Type: "DECIMAL(3,1)"},
			{Name: "ingestion_date", Type: "VARCHAR"},
		},
		PartitionCols:  []string{"ingestion_date"},
		LocationSuffix: "devices",
	},
	{
		Name: "trusted_events",
		Columns: []ddl.ColumnDef{
			{Name: "timestamp", Type: "VARCHAR"},
			{Name: "account_id", Type: "VARCHAR"},
			{Name: "video_id", Type: "VARCHAR"},
			{Name: "user_id", Type: "VARCHAR"},
			{Name: "event_name", Type: "VARCHAR"},
			{Name: "value", Type: "DECIMAL(2,1)"},
			{Name: "device", Type: "VARCHAR"},
			{Name: "app_version", Type: "VARCHAR"},
			{Name: "device_os", Type: "VARCHAR"},
			{Name: "network_type", Type: "VARCHAR"},
			{Name: "ip", Type: "VARCHAR"},
			{Name: "country", Type: "VARCHAR"},
			{Name: "session_id", Type: "VARCHAR"},
			{Name: "ingestion_date", Type: "VARCHAR"},
		},
		PartitionCols:  []string{"ingestion_date"},
		LocationSuffix: "events",
	},
}

// Tables returns all trusted table names in declaration order.
func Tables() []string {
	names := make([]string, len(trustedSchemas))
	for i, s := range trustedSchemas {
		names[i] = s.Name
	}
	return names
}

// Get returns the schema for a trusted table, or UnknownTableError if the
// name is not registered.
func Get(name string) (TableSchema, error) {
	for _, s := range trustedSchemas {
		if s.Name == name {
			return s, nil
		}
	}
	return TableSchema{}, domain.ErrUnknownTable(name)
}

// ExternalTableDDL builds the partitioned external-table DDL for a trusted
// table at the given storage location.
func ExternalTableDDL(schemaName, table, location string) (string, error) {
	s, err := Get(table)
	if err != nil {
		return "", err
	}
	return ddl.CreateExternalTable(schemaName, s.Name, s.Columns, s.PartitionCols, location)
}

// ViewDDL builds a CREATE OR REPLACE VIEW over an inline literal row set for
// a trusted table. valueTuples must be pre-rendered "(lit, ...)" strings; the
// column list is the schema's declared columns in declared order.
func ViewDDL(schemaName, table string, valueTuples []string) (string, error) {
	s, err := Get(table)
	if err != nil {
		return "", err
	}
	return ddl.CreateValuesView(schemaName, s.Name, s.ColumnNames(), valueTuples)
}

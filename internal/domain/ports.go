package domain

import "context"

// StorageGateway is the key-addressed object store the pipeline reads from
// and writes to. Implementations are external collaborators (S3/MinIO plus a
// file-capable SQL engine); the pipeline core depends only on this interface.
type StorageGateway interface {
	// List returns all object keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Copy performs a server-side copy from sourceKey to destKey.
	// Copying onto an existing key overwrites it.
	Copy(ctx context.Context, sourceKey, destKey string) error

	// ReadTable reads the object at key as a row table in the given format.
	ReadTable(ctx context.Context, key string, format FileFormat) (*Table, error)

	// WriteTable writes a row table to key in the given format.
	WriteTable(ctx context.Context, table *Table, key string, format FileFormat) error
}

// QueryGateway executes SQL text against the lake query engine. The pipeline
// uses it only for DDL: schema creation and trusted-view registration.
type QueryGateway interface {
	Execute(ctx context.Context, sqlText string) error
}

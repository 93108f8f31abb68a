// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"

	"streampro-lake/internal/domain"
)

// === Storage Gateway Mock ===

// MockStorageGateway implements domain.StorageGateway for testing.
type MockStorageGateway struct {
	ListFn       func(ctx context.Context, prefix string) ([]string, error)
	CopyFn       func(ctx context.Context, sourceKey, destKey string) error
	ReadTableFn  func(ctx context.Context, key string, format domain.FileFormat) (*domain.Table, error)
	WriteTableFn func(ctx context.Context, table *domain.Table, key string, format domain.FileFormat) error

	Copies [][2]string              // collected (source, dest) pairs for assertions
	Writes map[string]*domain.Table // collected successful writes by key
}

// List implements the interface method for testing.
func (m *MockStorageGateway) List(ctx context.Context, prefix string) ([]string, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, prefix)
	}
	panic("unexpected call to MockStorageGateway.List")
}

// Copy implements the interface method for testing.
func (m *MockStorageGateway) Copy(ctx context.Context, sourceKey, destKey string) error {
	if m.CopyFn != nil {
		if err := m.CopyFn(ctx, sourceKey, destKey); err != nil {
			return err
		}
	}
	m.Copies = append(m.Copies, [2]string{sourceKey, destKey})
	return nil
}

// ReadTable implements the interface method for testing.
func (m *MockStorageGateway) ReadTable(ctx context.Context, key string, format domain.FileFormat) (*domain.Table, error) {
	if m.ReadTableFn != nil {
		return m.ReadTableFn(ctx, key, format)
	}
	panic("unexpected call to MockStorageGateway.ReadTable")
}

// WriteTable implements the interface method for testing.
func (m *MockStorageGateway) WriteTable(ctx context.Context, table *domain.Table, key string, format domain.FileFormat) error {
	if m.WriteTableFn != nil {
		if err := m.WriteTableFn(ctx, table, key, format); err != nil {
			return err
		}
	}
	if m.Writes == nil {
		m.Writes = map[string]*domain.Table{}
	}
	m.Writes[key] = table
	return nil
}

var _ domain.StorageGateway = (*MockStorageGateway)(nil)

// === Query Gateway Mock ===

// MockQueryGateway implements domain.QueryGateway for testing.
type MockQueryGateway struct {
	ExecuteFn func(ctx context.Context, sqlText string) error

	Statements []string // collected statements for assertions
}

// Execute implements the interface method for testing.
func (m *MockQueryGateway) Execute(ctx context.Context, sqlText string) error {
	if m.ExecuteFn != nil {
		if err := m.ExecuteFn(ctx, sqlText); err != nil {
			return err
		}
	}
	m.Statements = append(m.Statements, sqlText)
	return nil
}

var _ domain.QueryGateway = (*MockQueryGateway)(nil)

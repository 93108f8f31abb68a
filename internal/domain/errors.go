// Package domain defines core types, interfaces, and errors for the lake pipeline.
package domain

import "fmt"

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UnknownTableError indicates a schema registry lookup with an unregistered
// table name. Registry lookups are only expected with registry-enumerated
// names, so this is a programming error rather than a runtime condition.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown trusted table: %s", e.Table)
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnknownTable creates an UnknownTableError for the given table name.
func ErrUnknownTable(table string) *UnknownTableError {
	return &UnknownTableError{Table: table}
}

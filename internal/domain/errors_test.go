package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstructors(t *testing.T) {
	assert.EqualError(t, ErrValidation("bad date %q", "2025-13-01"),
		`bad date "2025-13-01"`)
	assert.EqualError(t, ErrUnknownTable("trusted_foo"),
		"unknown trusted table: trusted_foo")
}

func TestUnknownTableErrorUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrUnknownTable("trusted_foo"))

	var ute *UnknownTableError
	assert.True(t, errors.As(wrapped, &ute))
	assert.Equal(t, "trusted_foo", ute.Table)
}

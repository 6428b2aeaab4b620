package dberror

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBError_IsMatchesByCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"configuration", Configuration("Generate", "bad"), ErrConfiguration, true},
		{"invalid argument refines configuration", InvalidArgument("Generate", "zero rows"), ErrConfiguration, true},
		{"invalid argument matches itself", InvalidArgument("Generate", "zero rows"), ErrInvalidArgument, true},
		{"configuration is not invalid argument", Configuration("Generate", "bad"), ErrInvalidArgument, false},
		{"unsupported type", UnsupportedType("Plan", "varchar"), ErrUnsupportedType, true},
		{"constraint", ConstraintViolation("HashIndex", "dup"), ErrConstraintViolation, true},
		{"constraint is not configuration", ConstraintViolation("HashIndex", "dup"), ErrConfiguration, false},
		{"wrapped with fmt", fmt.Errorf("load: %w", NotFound("Table", "x")), ErrNotFound, true},
		{"plain error", errors.New("boom"), ErrConfiguration, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestWrap_PreservesExistingCode(t *testing.T) {
	orig := ConstraintViolation("HashIndex", "duplicate key")
	wrapped := Wrap(orig, CodeStorage, "FillIndex", "Loader")

	require.Same(t, orig, wrapped)
	assert.Equal(t, CodeConstraintViolation, wrapped.Code)
	assert.Equal(t, "HashIndex", wrapped.Component)
}

func TestWrap_ForeignError(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(cause, CodeStorage, "Insert", "BoltTable")

	assert.Equal(t, CodeStorage, wrapped.Code)
	assert.Equal(t, ErrCategorySystem, wrapped.Category)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, Wrap(nil, CodeStorage, "Insert", "BoltTable"))
}

func TestDBError_Error(t *testing.T) {
	err := Configuration("Generate", "unsupported distribution %s", "Rotate").
		WithDetail("column %q", "flag").
		WithComponent("Generator")

	assert.Equal(t,
		`[CONFIGURATION_ERROR] unsupported distribution Rotate: column "flag" (operation: Generate, component: Generator)`,
		err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeUnsupportedType, CodeOf(fmt.Errorf("x: %w", UnsupportedType("Plan", "v"))))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestDBError_FormatStack(t *testing.T) {
	err := New(ErrCategoryUser, CodeConfiguration, "x")
	assert.True(t, strings.HasPrefix(err.FormatStack(), "Stack trace:\n"))
	assert.Equal(t, "", (&DBError{}).FormatStack())
}

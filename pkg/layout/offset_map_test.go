package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablegen/pkg/dberror"
	"tablegen/pkg/primitives"
	"tablegen/pkg/types"
)

func TestPlan_ContiguousOffsets(t *testing.T) {
	m, err := Plan([]Field{
		{ID: 1, Type: types.IntegerType},
		{ID: 2, Type: types.BigIntType},
		{ID: 3, Type: types.BooleanType},
		{ID: 7, Type: types.SmallIntType},
	})
	require.NoError(t, err)

	assert.Equal(t, uint16(15), m.Size())
	assert.Equal(t, 4, m.NumColumns())

	expected := map[primitives.ColumnID]primitives.Offset{1: 0, 2: 4, 3: 12, 7: 13}
	for id, off := range expected {
		got, ok := m.Offset(id)
		require.True(t, ok, "column %s missing", id)
		assert.Equal(t, off, got, "offset of %s", id)
	}

	_, ok := m.Offset(4)
	assert.False(t, ok)
	assert.Equal(t, "col#1@0+4,col#2@4+8,col#3@12+1,col#7@13+2", m.String())
}

func TestPlan_Deterministic(t *testing.T) {
	fields := []Field{{ID: 5, Type: types.TinyIntType}, {ID: 2, Type: types.IntegerType}}
	a, err := Plan(fields)
	require.NoError(t, err)
	b, err := Plan(fields)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	reordered, err := Plan([]Field{fields[1], fields[0]})
	require.NoError(t, err)
	assert.False(t, a.Equal(reordered))
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		target error
	}{
		{"empty", nil, dberror.ErrConfiguration},
		{"varchar", []Field{{ID: 1, Type: types.VarcharType}}, dberror.ErrUnsupportedType},
		{"duplicate", []Field{{ID: 1, Type: types.IntegerType}, {ID: 1, Type: types.BigIntType}}, dberror.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.fields)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestPlan_TooWide(t *testing.T) {
	fields := make([]Field, 0, 9000)
	for i := range 9000 {
		fields = append(fields, Field{ID: primitives.ColumnID(i + 1), Type: types.BigIntType})
	}
	_, err := Plan(fields)
	assert.ErrorIs(t, err, dberror.ErrConfiguration)
}

func TestOffsetMap_SlotsIsCopy(t *testing.T) {
	m, err := Plan([]Field{{ID: 1, Type: types.IntegerType}})
	require.NoError(t, err)

	slots := m.Slots()
	slots[0].Offset = 99
	assert.Equal(t, primitives.Offset(0), m.SlotAt(0).Offset)
}

package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowID_PackUnpack(t *testing.T) {
	tests := []struct {
		name string
		page PageNumber
		slot SlotID
	}{
		{"zero", 0, 0},
		{"first slot of later page", 7, 0},
		{"last slot", 3, 0xFFFF},
		{"max page", PageNumber(^uint32(0)), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rid := NewRowID(tt.page, tt.slot)
			assert.Equal(t, tt.page, rid.Page())
			assert.Equal(t, tt.slot, rid.Slot())
		})
	}
}

func TestRowID_String(t *testing.T) {
	assert.Equal(t, "RowID(page=2, slot=5)", NewRowID(2, 5).String())
}

func TestColumnID_String(t *testing.T) {
	assert.Equal(t, "col#3", ColumnID(3).String())
	assert.Equal(t, "col#invalid", InvalidColumnID.String())
}

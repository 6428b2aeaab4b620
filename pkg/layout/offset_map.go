package layout

import (
	"fmt"
	"math"
	"strings"

	"tablegen/pkg/dberror"
	"tablegen/pkg/primitives"
	"tablegen/pkg/types"
)

// Field is one column handed to the planner.
type Field struct {
	ID   primitives.ColumnID
	Type types.Type
}

// Slot describes where a planned field lives in a row buffer.
type Slot struct {
	ID       primitives.ColumnID
	Type     types.Type
	Offset   primitives.Offset
	Width    uint16
	Position int
}

// OffsetMap is the immutable mapping from column identifier to byte offset
// within a row buffer. It is safe for concurrent readers.
type OffsetMap struct {
	slots []Slot
	byID  map[primitives.ColumnID]int
	size  uint16
}

// Plan assigns contiguous offsets to fields in the order given.
//
// Returns:
//   - UNSUPPORTED_TYPE if any field has no fixed width
//   - CONFIGURATION_ERROR for an empty field list, duplicate identifiers, or
//     a row wider than a 16-bit offset can address
func Plan(fields []Field) (*OffsetMap, error) {
	if len(fields) == 0 {
		return nil, dberror.Configuration("Plan", "layout needs at least one column").
			WithComponent("LayoutPlanner")
	}

	m := &OffsetMap{
		slots: make([]Slot, 0, len(fields)),
		byID:  make(map[primitives.ColumnID]int, len(fields)),
	}

	var next uint32
	for i, f := range fields {
		width, ok := f.Type.Size()
		if !ok {
			return nil, dberror.UnsupportedType("Plan", "column %s has variable-width type %s", f.ID, f.Type).
				WithComponent("LayoutPlanner")
		}
		if _, dup := m.byID[f.ID]; dup {
			return nil, dberror.Configuration("Plan", "column %s appears twice in layout", f.ID).
				WithComponent("LayoutPlanner")
		}
		if next+uint32(width) > math.MaxUint16 {
			return nil, dberror.Configuration("Plan", "row of %d bytes exceeds addressable size", next+uint32(width)).
				WithComponent("LayoutPlanner")
		}

		m.byID[f.ID] = i
		m.slots = append(m.slots, Slot{
			ID:       f.ID,
			Type:     f.Type,
			Offset:   primitives.Offset(next),
			Width:    width,
			Position: i,
		})
		next += uint32(width)
	}

	m.size = uint16(next)
	return m, nil
}

// Size returns the byte size of a row buffer using this layout.
func (m *OffsetMap) Size() uint16 {
	return m.size
}

// NumColumns returns the number of planned fields.
func (m *OffsetMap) NumColumns() int {
	return len(m.slots)
}

// Lookup returns the slot for id.
func (m *OffsetMap) Lookup(id primitives.ColumnID) (Slot, bool) {
	pos, ok := m.byID[id]
	if !ok {
		return Slot{}, false
	}
	return m.slots[pos], true
}

// Offset returns the byte offset of id.
func (m *OffsetMap) Offset(id primitives.ColumnID) (primitives.Offset, bool) {
	s, ok := m.Lookup(id)
	return s.Offset, ok
}

// Contains reports whether id is covered by the layout.
func (m *OffsetMap) Contains(id primitives.ColumnID) bool {
	_, ok := m.byID[id]
	return ok
}

// SlotAt returns the slot at declaration position pos.
func (m *OffsetMap) SlotAt(pos int) Slot {
	return m.slots[pos]
}

// Slots returns a copy of all slots in declaration order.
func (m *OffsetMap) Slots() []Slot {
	out := make([]Slot, len(m.slots))
	copy(out, m.slots)
	return out
}

// Equal reports whether two maps assign identical slots.
func (m *OffsetMap) Equal(other *OffsetMap) bool {
	if other == nil || m.size != other.size || len(m.slots) != len(other.slots) {
		return false
	}
	for i := range m.slots {
		if m.slots[i] != other.slots[i] {
			return false
		}
	}
	return true
}

// String renders the layout as "col#1@0+4,col#2@4+8".
func (m *OffsetMap) String() string {
	parts := make([]string, len(m.slots))
	for i, s := range m.slots {
		parts[i] = fmt.Sprintf("%s@%d+%d", s.ID, s.Offset, s.Width)
	}
	return strings.Join(parts, ",")
}

package primitives

import "fmt"

// RowID is the location of a stored row, as handed out by a storage engine
// on insert and accepted back by select and index inserts.
//
// Paged engines pack the page number into the high 32 bits and the slot into
// the low 16 bits (see NewRowID). Engines without pages may use any
// monotonically assigned value, so callers must treat RowID as opaque.
type RowID uint64

// NewRowID packs a page/slot pair into a RowID.
func NewRowID(page PageNumber, slot SlotID) RowID {
	return RowID(uint64(page)<<32 | uint64(slot))
}

// Page returns the page half of a packed RowID.
func (r RowID) Page() PageNumber {
	return PageNumber(uint64(r) >> 32)
}

// Slot returns the slot half of a packed RowID.
func (r RowID) Slot() SlotID {
	return SlotID(uint64(r) & 0xFFFF)
}

func (r RowID) String() string {
	return fmt.Sprintf("RowID(page=%d, slot=%d)", r.Page(), r.Slot())
}

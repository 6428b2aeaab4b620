package primitives

import (
	"fmt"
	"math"
)

// ColumnID identifies a column within a table or an index key.
// Identifiers are assigned by the catalog and are never reused within one schema.
type ColumnID uint32

// TableID identifies a table registered in the catalog.
type TableID uint32

// IndexID identifies an index registered in the catalog.
type IndexID uint32

// PageNumber represents a page number within a table
type PageNumber uint32

// SlotID represents a slot number within a page (for tuple storage)
type SlotID uint16

// Offset represents a byte offset within a row buffer.
type Offset uint16

// Sentinel values for invalid/unset identifiers
const (
	InvalidColumnID ColumnID = math.MaxUint32
	InvalidTableID  TableID  = 0
	InvalidIndexID  IndexID  = 0
)

func (c ColumnID) String() string {
	if c == InvalidColumnID {
		return "col#invalid"
	}
	return fmt.Sprintf("col#%d", uint32(c))
}

// IsValid reports whether the table id was assigned by a catalog.
func (t TableID) IsValid() bool {
	return t != InvalidTableID
}

// IsValid reports whether the index id was assigned by a catalog.
func (i IndexID) IsValid() bool {
	return i != InvalidIndexID
}

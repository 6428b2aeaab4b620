package layout

import (
	"tablegen/pkg/dberror"
	"tablegen/pkg/primitives"
	"tablegen/pkg/utils/bitutil"
)

// ProjectedRow is a physical row buffer shaped by an OffsetMap. Null markers
// are kept per field position; a null field's bytes are zeroed so that two
// rows with the same logical content are byte-identical.
type ProjectedRow struct {
	layout *OffsetMap
	data   []byte
	nulls  bitutil.Bitmap
}

// NewProjectedRow allocates a row for layout with every field null.
func NewProjectedRow(layout *OffsetMap) *ProjectedRow {
	r := &ProjectedRow{
		layout: layout,
		data:   make([]byte, layout.Size()),
		nulls:  bitutil.New(uint32(layout.NumColumns())),
	}
	r.Reset()
	return r
}

// Layout returns the row's OffsetMap.
func (r *ProjectedRow) Layout() *OffsetMap {
	return r.layout
}

// Reset marks every field null and zeroes the data region.
func (r *ProjectedRow) Reset() {
	clear(r.data)
	for i := range r.layout.NumColumns() {
		r.nulls.Set(uint32(i))
	}
}

func (r *ProjectedRow) slot(op string, id primitives.ColumnID) (Slot, error) {
	s, ok := r.layout.Lookup(id)
	if !ok {
		return Slot{}, dberror.InvalidArgument(op, "column %s is not part of layout %s", id, r.layout).
			WithComponent("ProjectedRow")
	}
	return s, nil
}

// SetNullAt marks the field at pos null.
func (r *ProjectedRow) SetNullAt(pos int) {
	s := r.layout.slots[pos]
	clear(r.data[s.Offset : int(s.Offset)+int(s.Width)])
	r.nulls.Set(uint32(pos))
}

// IsNullAt reports whether the field at pos is null.
func (r *ProjectedRow) IsNullAt(pos int) bool {
	return r.nulls.Test(uint32(pos))
}

// AccessForceNotNullAt clears the null marker of the field at pos and
// returns its bytes for writing.
func (r *ProjectedRow) AccessForceNotNullAt(pos int) []byte {
	s := r.layout.slots[pos]
	r.nulls.Unset(uint32(pos))
	return r.data[s.Offset : int(s.Offset)+int(s.Width)]
}

// SetNull marks column id null.
func (r *ProjectedRow) SetNull(id primitives.ColumnID) error {
	s, err := r.slot("SetNull", id)
	if err != nil {
		return err
	}
	r.SetNullAt(s.Position)
	return nil
}

// IsNull reports whether column id is null.
func (r *ProjectedRow) IsNull(id primitives.ColumnID) (bool, error) {
	s, err := r.slot("IsNull", id)
	if err != nil {
		return false, err
	}
	return r.IsNullAt(s.Position), nil
}

// AccessForceNotNull clears the null marker of column id and returns its
// bytes for writing.
func (r *ProjectedRow) AccessForceNotNull(id primitives.ColumnID) ([]byte, error) {
	s, err := r.slot("AccessForceNotNull", id)
	if err != nil {
		return nil, err
	}
	return r.AccessForceNotNullAt(s.Position), nil
}

// Access returns the bytes of column id, or nil if the field is null.
func (r *ProjectedRow) Access(id primitives.ColumnID) ([]byte, error) {
	s, err := r.slot("Access", id)
	if err != nil {
		return nil, err
	}
	if r.IsNullAt(s.Position) {
		return nil, nil
	}
	return r.data[s.Offset : int(s.Offset)+int(s.Width)], nil
}

// Bytes returns the data region. The slice aliases the row.
func (r *ProjectedRow) Bytes() []byte {
	return r.data
}

// NullBitmap returns the per-field null markers. The bitmap aliases the row.
func (r *ProjectedRow) NullBitmap() bitutil.Bitmap {
	return r.nulls
}

// Load overwrites the row from raw data and null markers, as produced by
// Bytes and NullBitmap of a row with the same layout.
func (r *ProjectedRow) Load(data []byte, nulls bitutil.Bitmap) error {
	if len(data) != len(r.data) || len(nulls) != len(r.nulls) {
		return dberror.InvalidArgument("Load", "row image of %d bytes/%d words does not fit layout of %d bytes/%d words",
			len(data), len(nulls), len(r.data), len(r.nulls)).WithComponent("ProjectedRow")
	}
	copy(r.data, data)
	copy(r.nulls, nulls)
	return nil
}

// CopyFrom copies another row with an equal layout into r.
func (r *ProjectedRow) CopyFrom(other *ProjectedRow) error {
	if !r.layout.Equal(other.layout) {
		return dberror.InvalidArgument("CopyFrom", "cannot copy row with layout %s into layout %s", other.layout, r.layout).
			WithComponent("ProjectedRow")
	}
	return r.Load(other.data, other.nulls)
}

// Clone returns an independent copy of the row.
func (r *ProjectedRow) Clone() *ProjectedRow {
	return &ProjectedRow{
		layout: r.layout,
		data:   append([]byte(nil), r.data...),
		nulls:  r.nulls.Clone(),
	}
}

// Equal reports whether both rows hold the same fields and null markers.
func (r *ProjectedRow) Equal(other *ProjectedRow) bool {
	if other == nil || !r.layout.Equal(other.layout) {
		return false
	}
	return r.nulls.Equal(other.nulls) && string(r.data) == string(other.data)
}

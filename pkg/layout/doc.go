// Package layout translates logical columns into physical row buffers.
//
// Plan derives an OffsetMap once per table or index key: a contiguous,
// deterministic assignment of byte offsets to column identifiers, sized to
// the sum of the fixed widths in declaration order. Table rows and index
// keys are planned independently because a key may reorder or subset the
// table's columns.
//
// ProjectedRow is one physical row shaped by an OffsetMap: a byte region
// holding every fixed-width field plus one null marker per field. Rows are
// owned by whoever allocated them; storage engines copy into and out of
// them and never retain a caller's row.
package layout

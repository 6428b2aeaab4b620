package datagen

import (
	"slices"

	"github.com/valyala/bytebufferpool"

	"tablegen/pkg/types"
	"tablegen/pkg/utils/bitutil"
)

var valuePool bytebufferpool.Pool

// ColumnData is one generated batch: Count fixed-width values laid out back
// to back plus a null bitmap with one bit per row.
//
// The value buffer is borrowed from a pool and must be handed back with
// Release exactly once. Accessing the batch after Release panics.
type ColumnData struct {
	Type  types.Type
	Count uint32
	Width uint16
	Nulls bitutil.Bitmap

	buf *bytebufferpool.ByteBuffer
}

func newColumnData(t types.Type, count uint32) *ColumnData {
	width, _ := t.Size()
	size := int(count) * int(width)

	buf := valuePool.Get()
	buf.B = slices.Grow(buf.B[:0], size)[:size]
	clear(buf.B)

	return &ColumnData{
		Type:  t,
		Count: count,
		Width: width,
		Nulls: bitutil.New(count),
		buf:   buf,
	}
}

// Values returns the whole value region.
func (d *ColumnData) Values() []byte {
	return d.buf.B
}

// Value returns the bytes of row j.
func (d *ColumnData) Value(j uint32) []byte {
	start := int(j) * int(d.Width)
	return d.buf.B[start : start+int(d.Width)]
}

// Int decodes row j.
func (d *ColumnData) Int(j uint32) int64 {
	v, _ := types.Decode(d.Type, d.Value(j))
	return v
}

// IsNull reports whether row j is null.
func (d *ColumnData) IsNull(j uint32) bool {
	return d.Nulls.Test(j)
}

// Released reports whether the batch has been returned to the pool.
func (d *ColumnData) Released() bool {
	return d.buf == nil
}

// Release returns the value buffer to the pool. It reports false when the
// batch was already released.
func (d *ColumnData) Release() bool {
	if d.buf == nil {
		return false
	}
	valuePool.Put(d.buf)
	d.buf = nil
	d.Nulls = nil
	return true
}

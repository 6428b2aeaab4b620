package storage

import (
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/utils/bitutil"
)

// EncodeRow appends the row image of r to dst.
func EncodeRow(dst []byte, r *layout.ProjectedRow) []byte {
	dst = append(dst, r.NullBitmap().Bytes()...)
	return append(dst, r.Bytes()...)
}

// RowImageSize returns the encoded size of a row shaped by l.
func RowImageSize(l *layout.OffsetMap) int {
	return int(bitutil.NumWords(uint32(l.NumColumns())))*4 + int(l.Size())
}

// DecodeRow loads a row image produced by EncodeRow into out.
func DecodeRow(image []byte, out *layout.ProjectedRow) error {
	l := out.Layout()
	if len(image) != RowImageSize(l) {
		return dberror.InvalidArgument("DecodeRow", "row image has %d bytes, layout %s needs %d", len(image), l, RowImageSize(l)).
			WithComponent("storage")
	}
	nullBytes := len(image) - int(l.Size())
	return out.Load(image[nullBytes:], bitutil.FromBytes(image[:nullBytes]))
}

// HasNull reports whether any field of r is null.
func HasNull(r *layout.ProjectedRow) bool {
	return r.NullBitmap().Count() > 0
}

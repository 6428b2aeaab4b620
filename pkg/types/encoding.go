package types

import (
	"encoding/binary"
	"fmt"
)

// Physical fields are little-endian, matching a raw copy of the in-memory
// value on the platforms the generator targets. Booleans are one byte, 0 or 1.

// Encode writes v into dst using t's physical width. dst must be at least
// that wide; the value is truncated to the width without range checking, so
// callers validate with Contains first.
func Encode(t Type, v int64, dst []byte) error {
	size, ok := t.Size()
	if !ok {
		return fmt.Errorf("cannot encode variable-width type %s", t)
	}
	if len(dst) < int(size) {
		return fmt.Errorf("destination too small for %s: %d < %d", t, len(dst), size)
	}

	switch size {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	}
	return nil
}

// Decode reads a value of type t from src. Signed types are sign-extended;
// BOOLEAN and DATE are read unsigned.
func Decode(t Type, src []byte) (int64, error) {
	size, ok := t.Size()
	if !ok {
		return 0, fmt.Errorf("cannot decode variable-width type %s", t)
	}
	if len(src) < int(size) {
		return 0, fmt.Errorf("source too small for %s: %d < %d", t, len(src), size)
	}

	switch t {
	case BooleanType:
		return int64(src[0]), nil
	case DateType:
		return int64(binary.LittleEndian.Uint32(src)), nil
	}

	switch size {
	case 1:
		return int64(int8(src[0])), nil
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(src))), nil
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(src))), nil
	default:
		return int64(binary.LittleEndian.Uint64(src)), nil
	}
}

// Package bitutil provides the 32-bit-word validity bitmap used by generated
// column batches and row null markers.
package bitutil

import (
	"math/bits"
	"slices"
)

const wordBits = 32

// Bitmap is a fixed-size bit set backed by 32-bit words. Bit i lives in word
// i/32 at position i%32. A set bit means "null" wherever it is used as a
// validity map.
type Bitmap []uint32

// NumWords returns the number of 32-bit words needed to hold n bits,
// i.e. ceil(n/32).
func NumWords(n uint32) uint32 {
	return (n + wordBits - 1) / wordBits
}

// New returns a bitmap able to hold n bits, all clear.
func New(n uint32) Bitmap {
	return make(Bitmap, NumWords(n))
}

// Set sets bit i.
func (b Bitmap) Set(i uint32) {
	b[i/wordBits] |= 1 << (i % wordBits)
}

// Unset clears bit i.
func (b Bitmap) Unset(i uint32) {
	b[i/wordBits] &^= 1 << (i % wordBits)
}

// Test reports whether bit i is set.
func (b Bitmap) Test(i uint32) bool {
	return b[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Clear clears every bit.
func (b Bitmap) Clear() {
	clear(b)
}

// Count returns the number of set bits.
func (b Bitmap) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount32(w)
	}
	return n
}

// Equal reports whether both bitmaps hold the same words.
func (b Bitmap) Equal(other Bitmap) bool {
	return slices.Equal(b, other)
}

// Clone returns an independent copy.
func (b Bitmap) Clone() Bitmap {
	return slices.Clone(b)
}

// Bytes returns the bitmap as little-endian bytes, four per word.
func (b Bitmap) Bytes() []byte {
	out := make([]byte, len(b)*4)
	for i, w := range b {
		out[i*4] = byte(w)
		out[i*4+1] = byte(w >> 8)
		out[i*4+2] = byte(w >> 16)
		out[i*4+3] = byte(w >> 24)
	}
	return out
}

// FromBytes decodes the output of Bytes. Trailing bytes that do not fill a
// whole word are ignored.
func FromBytes(data []byte) Bitmap {
	b := make(Bitmap, len(data)/4)
	for i := range b {
		b[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	return b
}

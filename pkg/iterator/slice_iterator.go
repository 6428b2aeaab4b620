package iterator

import "fmt"

// SliceIterator iterates a materialized slice. Engines that snapshot the
// visible row locations before a scan hand one of these out as their
// RowIterator.
//
// Example usage:
//
//	iter := NewSliceIterator(rowIDs)
//	for ok, _ := iter.HasNext(); ok; ok, _ = iter.HasNext() {
//	    rid, _ := iter.Next()
//	    process(rid)
//	}
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
	closed       bool
}

// NewSliceIterator creates a new iterator over the given slice.
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

// HasNext checks if there are more elements available.
func (it *SliceIterator[T]) HasNext() (bool, error) {
	if it.closed {
		return false, fmt.Errorf("slice iterator is closed")
	}
	return it.currentIndex < len(it.data), nil
}

// Next returns the next element from the slice and advances the position.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T

	if it.closed {
		return zero, fmt.Errorf("slice iterator is closed")
	}
	if it.currentIndex >= len(it.data) {
		return zero, fmt.Errorf("no more elements in slice iterator")
	}

	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

// Rewind resets the read position to the beginning of the slice.
func (it *SliceIterator[T]) Rewind() error {
	it.currentIndex = 0
	it.closed = false
	return nil
}

// Remaining returns the number of elements left to iterate.
func (it *SliceIterator[T]) Remaining() int {
	return len(it.data) - it.currentIndex
}

// Close drops the slice.
func (it *SliceIterator[T]) Close() error {
	it.closed = true
	it.data = nil
	it.currentIndex = 0
	return nil
}

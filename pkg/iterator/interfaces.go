// Package iterator holds the cursor contracts shared by the storage engines.
package iterator

import "tablegen/pkg/primitives"

// RowIterator walks the row locations of one table in the engine's native
// order. The order is unspecified and may differ between scans.
type RowIterator interface {
	// HasNext reports whether another location is available without
	// consuming it.
	HasNext() (bool, error)

	// Next returns the next location and advances the cursor.
	Next() (primitives.RowID, error)

	// Close releases resources held by the iterator. Calling Close twice is
	// safe.
	Close() error
}

// Drain consumes it, calling fn for every location, and closes it.
func Drain(it RowIterator, fn func(primitives.RowID) error) (err error) {
	defer func() {
		if cerr := it.Close(); err == nil {
			err = cerr
		}
	}()

	for {
		ok, err := it.HasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rid, err := it.Next()
		if err != nil {
			return err
		}
		if err := fn(rid); err != nil {
			return err
		}
	}
}

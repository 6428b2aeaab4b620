package loader

import (
	"tablegen/pkg/dberror"
	"tablegen/pkg/iterator"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
)

// IndexStats summarises one index population.
type IndexStats struct {
	Entries uint64
}

// projection copies one table field into one key field.
type projection struct {
	src      primitives.Offset
	srcPos   int
	dst      primitives.ColumnID
	width    uint16
	nullable bool
}

// planProjection resolves every key column's source offset in the table
// layout and its destination in the key layout.
func planProjection(tbl *layout.OffsetMap, idx storage.Index) ([]projection, error) {
	cols := idx.Schema().Columns
	key := idx.KeyLayout()
	plan := make([]projection, len(cols))
	for i, col := range cols {
		src, ok := tbl.Lookup(col.Source)
		if !ok {
			return nil, dberror.InvalidArgument("FillIndex", "index %q: source %s of key column %q is not in the table layout", idx.Name(), col.Source, col.Name).WithComponent("IndexPopulator")
		}
		dst, ok := key.Lookup(col.ID)
		if !ok {
			return nil, dberror.InvalidArgument("FillIndex", "index %q: key column %q is not in the key layout", idx.Name(), col.Name).WithComponent("IndexPopulator")
		}
		if src.Width != dst.Width {
			return nil, dberror.Configuration("FillIndex", "index %q: key column %q is %d bytes wide but its source is %d", idx.Name(), col.Name, dst.Width, src.Width).WithComponent("IndexPopulator")
		}
		plan[i] = projection{
			src:      src.Offset,
			srcPos:   src.Position,
			dst:      col.ID,
			width:    dst.Width,
			nullable: col.Nullable,
		}
	}
	return plan, nil
}

// FillIndex inserts one key into idx for every row of tbl visible to txn,
// in the table's scan order.
//
// A null source field becomes a null key field only when the key column is
// nullable; otherwise its stored bytes are copied as they are. Errors from
// the index, CONSTRAINT_VIOLATION included, are returned unchanged.
func FillIndex(txn storage.Transaction, tbl storage.Table, idx storage.Index) (IndexStats, error) {
	var stats IndexStats

	plan, err := planProjection(tbl.Layout(), idx)
	if err != nil {
		return stats, err
	}

	it, err := tbl.Scan(txn)
	if err != nil {
		return stats, err
	}

	row := layout.NewProjectedRow(tbl.Layout())
	key := idx.NewKey()
	err = iterator.Drain(it, func(rid primitives.RowID) error {
		if err := tbl.Select(txn, rid, row); err != nil {
			return err
		}
		key.Reset()
		data := row.Bytes()
		for _, p := range plan {
			if p.nullable && row.IsNullAt(p.srcPos) {
				if err := key.SetNull(p.dst); err != nil {
					return err
				}
				continue
			}
			dst, err := key.AccessForceNotNull(p.dst)
			if err != nil {
				return err
			}
			copy(dst, data[p.src:int(p.src)+int(p.width)])
		}
		if err := idx.Insert(txn, key, rid); err != nil {
			return err
		}
		stats.Entries++
		return nil
	})
	return stats, err
}

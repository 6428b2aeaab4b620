package boltstore

import (
	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/dberror"
	"tablegen/pkg/iterator"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
)

// Table is a bucket of row images keyed by insertion sequence.
type Table struct {
	engine *Engine
	sch    *schema.Schema
	layout *layout.OffsetMap
	bucket []byte
}

var _ storage.Table = (*Table)(nil)

func (t *Table) Name() string {
	return t.sch.TableName
}

func (t *Table) Layout() *layout.OffsetMap {
	return t.layout
}

func (t *Table) BeginWrite(tx storage.Transaction) (*layout.ProjectedRow, error) {
	if _, err := t.engine.active("BeginWrite", tx); err != nil {
		return nil, err
	}
	return layout.NewProjectedRow(t.layout), nil
}

// Insert stores the row under the bucket's next sequence number, which
// becomes its location.
func (t *Table) Insert(tx storage.Transaction, row *layout.ProjectedRow) (primitives.RowID, error) {
	bt, err := t.engine.active("Insert", tx)
	if err != nil {
		return 0, err
	}
	if !row.Layout().Equal(t.layout) {
		return 0, dberror.InvalidArgument("Insert", "row layout %s does not match table %q layout %s",
			row.Layout(), t.Name(), t.layout).WithComponent("boltstore")
	}

	b, err := bt.bucket(t.bucket)
	if err != nil {
		return 0, err
	}
	// Keys are strictly increasing, so pages can be filled completely.
	b.FillPercent = 1.0

	seq, err := b.NextSequence()
	if err != nil {
		return 0, dberror.Wrap(err, dberror.CodeStorage, "Insert", "boltstore")
	}
	if err := b.Put(encodeRID(nil, seq), storage.EncodeRow(nil, row)); err != nil {
		return 0, dberror.Wrap(err, dberror.CodeStorage, "Insert", "boltstore")
	}

	bt.ctx.RecordTupleWrite()
	return primitives.RowID(seq), nil
}

func (t *Table) Select(tx storage.Transaction, rid primitives.RowID, out *layout.ProjectedRow) error {
	bt, err := t.engine.active("Select", tx)
	if err != nil {
		return err
	}
	b, err := bt.bucket(t.bucket)
	if err != nil {
		return err
	}

	image := b.Get(encodeRID(nil, uint64(rid)))
	if image == nil {
		return dberror.NotFound("Select", "table %q has no row %d", t.Name(), uint64(rid))
	}
	if err := storage.DecodeRow(image, out); err != nil {
		return dberror.Wrap(err, dberror.CodeStorage, "Select", "boltstore")
	}
	bt.ctx.RecordTupleRead()
	return nil
}

// Scan snapshots the row locations in key order.
func (t *Table) Scan(tx storage.Transaction) (iterator.RowIterator, error) {
	bt, err := t.engine.active("Scan", tx)
	if err != nil {
		return nil, err
	}
	b, err := bt.bucket(t.bucket)
	if err != nil {
		return nil, err
	}

	rids := make([]primitives.RowID, 0)
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		seq, err := decodeRID(k)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeStorage, "Scan", "boltstore")
		}
		rids = append(rids, primitives.RowID(seq))
	}
	return iterator.NewSliceIterator(rids), nil
}

func (t *Table) Count(tx storage.Transaction) (uint64, error) {
	bt, err := t.engine.active("Count", tx)
	if err != nil {
		return 0, err
	}
	b, err := bt.bucket(t.bucket)
	if err != nil {
		return 0, err
	}

	var n uint64
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n, nil
}

package boltstore

import (
	"bytes"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
)

// Index is a bucket of (key image, row location) composite keys.
type Index struct {
	engine    *Engine
	sch       *schema.IndexSchema
	keyLayout *layout.OffsetMap
	bucket    []byte
}

var _ storage.Index = (*Index)(nil)

func (idx *Index) Name() string {
	return idx.sch.IndexName
}

func (idx *Index) Schema() *schema.IndexSchema {
	return idx.sch
}

func (idx *Index) KeyLayout() *layout.OffsetMap {
	return idx.keyLayout
}

func (idx *Index) NewKey() *layout.ProjectedRow {
	return layout.NewProjectedRow(idx.keyLayout)
}

func (idx *Index) open(op string, tx storage.Transaction, key *layout.ProjectedRow) (*txn, error) {
	bt, err := idx.engine.active(op, tx)
	if err != nil {
		return nil, err
	}
	if key != nil && !key.Layout().Equal(idx.keyLayout) {
		return nil, dberror.InvalidArgument(op, "key layout %s does not match index %q layout %s",
			key.Layout(), idx.Name(), idx.keyLayout).WithComponent("boltstore")
	}
	return bt, nil
}

// Insert adds the composite key. Unique indexes probe for any entry with the
// same key image first; keys containing NULL are never probed.
func (idx *Index) Insert(tx storage.Transaction, key *layout.ProjectedRow, rid primitives.RowID) error {
	bt, err := idx.open("Insert", tx, key)
	if err != nil {
		return err
	}
	b, err := bt.bucket(idx.bucket)
	if err != nil {
		return err
	}

	image := storage.EncodeRow(nil, key)
	if idx.sch.Unique && !storage.HasNull(key) {
		if k, _ := b.Cursor().Seek(image); k != nil && bytes.HasPrefix(k, image) {
			existing, _ := decodeRID(k[len(image):])
			return dberror.ConstraintViolation("BoltIndex", "duplicate key in unique index %q", idx.Name()).
				WithDetail("existing entry points at row %d", existing)
		}
	}

	if err := b.Put(encodeRID(image, uint64(rid)), nil); err != nil {
		return dberror.Wrap(err, dberror.CodeStorage, "Insert", "boltstore")
	}
	bt.ctx.RecordIndexEntry()
	return nil
}

func (idx *Index) Lookup(tx storage.Transaction, key *layout.ProjectedRow) ([]primitives.RowID, error) {
	bt, err := idx.open("Lookup", tx, key)
	if err != nil {
		return nil, err
	}
	b, err := bt.bucket(idx.bucket)
	if err != nil {
		return nil, err
	}

	image := storage.EncodeRow(nil, key)
	var rids []primitives.RowID
	c := b.Cursor()
	for k, _ := c.Seek(image); k != nil && bytes.HasPrefix(k, image); k, _ = c.Next() {
		rid, err := decodeRID(k[len(image):])
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeStorage, "Lookup", "boltstore")
		}
		rids = append(rids, primitives.RowID(rid))
	}
	return rids, nil
}

func (idx *Index) Len(tx storage.Transaction) (uint64, error) {
	var n uint64
	err := idx.Entries(tx, func(storage.IndexEntry) error {
		n++
		return nil
	})
	return n, err
}

func (idx *Index) Entries(tx storage.Transaction, fn func(storage.IndexEntry) error) error {
	bt, err := idx.open("Entries", tx, nil)
	if err != nil {
		return err
	}
	b, err := bt.bucket(idx.bucket)
	if err != nil {
		return err
	}

	key := idx.NewKey()
	imageSize := storage.RowImageSize(idx.keyLayout)
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if len(k) != imageSize+ridSize {
			return dberror.New(dberror.ErrCategorySystem, dberror.CodeStorage, "corrupt index entry").
				WithDetail("index %q entry has %d bytes, want %d", idx.Name(), len(k), imageSize+ridSize)
		}
		if err := storage.DecodeRow(k[:imageSize], key); err != nil {
			return err
		}
		rid, _ := decodeRID(k[imageSize:])
		if err := fn(storage.IndexEntry{Key: key, RID: primitives.RowID(rid)}); err != nil {
			return err
		}
	}
	return nil
}

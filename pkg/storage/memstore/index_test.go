package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/types"
)

func newTestIndex(t *testing.T, e *Engine, tbl storage.Table, kind schema.IndexKind, unique bool) storage.Index {
	t.Helper()
	sch, err := schema.NewIndexSchema(1, "idx_"+string(kind), tbl.(*HeapTable).Schema(), []schema.IndexColumn{
		{Name: "kb", ID: 1, Type: types.BigIntType, Nullable: true, Source: 2},
		{Name: "ka", ID: 2, Type: types.IntegerType, Source: 1},
	}, unique, kind)
	require.NoError(t, err)
	idx, err := e.CreateIndex(sch, tbl)
	require.NoError(t, err)
	return idx
}

func key(t *testing.T, idx storage.Index, b *int64, a int64) *layout.ProjectedRow {
	t.Helper()
	k := idx.NewKey()
	if b != nil {
		setInt(t, k, 1, types.BigIntType, *b)
	}
	setInt(t, k, 2, types.IntegerType, a)
	return k
}

func ptr(v int64) *int64 { return &v }

func TestIndex_InsertLookup(t *testing.T) {
	for _, kind := range []schema.IndexKind{schema.HashIndex, schema.OrderedIndex} {
		t.Run(string(kind), func(t *testing.T) {
			e := New()
			tbl, err := e.CreateTable(testSchema(t))
			require.NoError(t, err)
			idx := newTestIndex(t, e, tbl, kind, false)

			tx := begin(t, e)
			require.NoError(t, idx.Insert(tx, key(t, idx, ptr(5), 1), primitives.NewRowID(0, 1)))
			require.NoError(t, idx.Insert(tx, key(t, idx, ptr(5), 1), primitives.NewRowID(0, 2)))
			require.NoError(t, idx.Insert(tx, key(t, idx, nil, 1), primitives.NewRowID(0, 3)))
			require.NoError(t, idx.Insert(tx, key(t, idx, ptr(-7), 2), primitives.NewRowID(0, 4)))

			rids, err := idx.Lookup(tx, key(t, idx, ptr(5), 1))
			require.NoError(t, err)
			assert.ElementsMatch(t, []primitives.RowID{primitives.NewRowID(0, 1), primitives.NewRowID(0, 2)}, rids)

			rids, err = idx.Lookup(tx, key(t, idx, nil, 1))
			require.NoError(t, err)
			assert.Equal(t, []primitives.RowID{primitives.NewRowID(0, 3)}, rids)

			n, err := idx.Len(tx)
			require.NoError(t, err)
			assert.Equal(t, uint64(4), n)
			assert.Equal(t, 4, tx.Context().GetStatistics().IndexEntries)
			require.NoError(t, e.Commit(tx))
		})
	}
}

func TestIndex_OrderedEntriesSorted(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)
	idx := newTestIndex(t, e, tbl, schema.OrderedIndex, false)

	tx := begin(t, e)
	for i, b := range []int64{30, -2, 300, 0} {
		require.NoError(t, idx.Insert(tx, key(t, idx, ptr(b), 0), primitives.RowID(i)))
	}
	require.NoError(t, idx.Insert(tx, key(t, idx, nil, 0), primitives.RowID(9)))

	var order []primitives.RowID
	require.NoError(t, idx.Entries(tx, func(ent storage.IndexEntry) error {
		order = append(order, ent.RID)
		return nil
	}))
	assert.Equal(t, []primitives.RowID{9, 1, 3, 0, 2}, order)
}

func TestIndex_UniqueViolation(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)
	idx := newTestIndex(t, e, tbl, schema.HashIndex, true)

	tx := begin(t, e)
	require.NoError(t, idx.Insert(tx, key(t, idx, ptr(1), 1), 1))
	err = idx.Insert(tx, key(t, idx, ptr(1), 1), 2)
	require.ErrorIs(t, err, dberror.ErrConstraintViolation)
	assert.Contains(t, err.Error(), "col#1=1")

	// Keys containing NULL never conflict.
	require.NoError(t, idx.Insert(tx, key(t, idx, nil, 1), 3))
	require.NoError(t, idx.Insert(tx, key(t, idx, nil, 1), 4))
	require.NoError(t, e.Abort(tx))

	// Aborted entries free their keys.
	tx = begin(t, e)
	require.NoError(t, idx.Insert(tx, key(t, idx, ptr(1), 1), 5))
	require.NoError(t, e.Commit(tx))
}

func TestIndex_EntriesMatchKeys(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)
	idx := newTestIndex(t, e, tbl, schema.HashIndex, false)

	tx := begin(t, e)
	want := key(t, idx, nil, 42)
	require.NoError(t, idx.Insert(tx, want, 7))

	require.NoError(t, idx.Entries(tx, func(ent storage.IndexEntry) error {
		assert.True(t, ent.Key.Equal(want))
		assert.Equal(t, primitives.RowID(7), ent.RID)
		return nil
	}))

	other := begin(t, e)
	n, err := idx.Len(other)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFormatKey(t *testing.T) {
	l, err := layout.Plan([]layout.Field{{ID: 1, Type: types.IntegerType}, {ID: 2, Type: types.SmallIntType}})
	require.NoError(t, err)
	row := layout.NewProjectedRow(l)
	setInt(t, row, 1, types.IntegerType, -3)
	assert.Equal(t, "(col#1=-3, col#2=NULL)", formatKey(l, storage.EncodeRow(nil, row)))
}

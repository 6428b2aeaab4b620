package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/dberror"
	"tablegen/pkg/iterator"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/types"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.NewSchemaBuilder(1, "t").
		AddColumn("a", types.IntegerType).
		AddNullableColumn("b", types.BigIntType).
		Build()
	require.NoError(t, err)
	return sch
}

func begin(t *testing.T, e *Engine) storage.Transaction {
	t.Helper()
	tx, err := e.Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func setInt(t *testing.T, row *layout.ProjectedRow, id primitives.ColumnID, typ types.Type, v int64) {
	t.Helper()
	buf, err := row.AccessForceNotNull(id)
	require.NoError(t, err)
	require.NoError(t, types.Encode(typ, v, buf))
}

func getInt(t *testing.T, row *layout.ProjectedRow, id primitives.ColumnID, typ types.Type) (int64, bool) {
	t.Helper()
	buf, err := row.Access(id)
	require.NoError(t, err)
	if buf == nil {
		return 0, false
	}
	v, err := types.Decode(typ, buf)
	require.NoError(t, err)
	return v, true
}

func insertRows(t *testing.T, tbl storage.Table, tx storage.Transaction, n int) []primitives.RowID {
	t.Helper()
	rids := make([]primitives.RowID, 0, n)
	for i := range n {
		row, err := tbl.BeginWrite(tx)
		require.NoError(t, err)
		setInt(t, row, 1, types.IntegerType, int64(i))
		if i%3 != 0 {
			setInt(t, row, 2, types.BigIntType, int64(i*10))
		}
		rid, err := tbl.Insert(tx, row)
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	return rids
}

func TestHeapTable_InsertSelectScan(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)

	tx := begin(t, e)
	rids := insertRows(t, tbl, tx, 1000)

	ht := tbl.(*HeapTable)
	assert.Equal(t, PageSize/(4+12+slotOverhead), ht.SlotsPerPage())
	assert.Equal(t, (1000+ht.SlotsPerPage()-1)/ht.SlotsPerPage(), ht.NumPages())

	out := layout.NewProjectedRow(tbl.Layout())
	require.NoError(t, tbl.Select(tx, rids[4], out))
	a, ok := getInt(t, out, 1, types.IntegerType)
	require.True(t, ok)
	assert.Equal(t, int64(4), a)
	b, ok := getInt(t, out, 2, types.BigIntType)
	require.True(t, ok)
	assert.Equal(t, int64(40), b)

	require.NoError(t, tbl.Select(tx, rids[3], out))
	_, ok = getInt(t, out, 2, types.BigIntType)
	assert.False(t, ok)

	var scanned []primitives.RowID
	it, err := tbl.Scan(tx)
	require.NoError(t, err)
	require.NoError(t, iterator.Drain(it, func(rid primitives.RowID) error {
		scanned = append(scanned, rid)
		return nil
	}))
	assert.Equal(t, rids, scanned)

	require.NoError(t, e.Commit(tx))
	assert.Equal(t, 0, e.ActiveTransactions())
	stats := tx.Context().GetStatistics()
	assert.Equal(t, 1000, stats.TuplesWritten)
	assert.Equal(t, ht.NumPages(), stats.PagesWritten)
}

func TestHeapTable_Visibility(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)

	writer := begin(t, e)
	rids := insertRows(t, tbl, writer, 5)

	reader := begin(t, e)
	n, err := tbl.Count(reader)
	require.NoError(t, err)
	assert.Zero(t, n, "uncommitted rows are private to the writer")

	err = tbl.Select(reader, rids[0], layout.NewProjectedRow(tbl.Layout()))
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	n, err = tbl.Count(writer)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	require.NoError(t, e.Commit(writer))
	n, err = tbl.Count(reader)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
	require.NoError(t, e.Commit(reader))
}

func TestHeapTable_AbortDiscards(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)

	tx := begin(t, e)
	insertRows(t, tbl, tx, 10)
	require.NoError(t, e.Abort(tx))

	check := begin(t, e)
	n, err := tbl.Count(check)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEngine_TransactionState(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)

	tx := begin(t, e)
	require.NoError(t, e.Commit(tx))
	assert.ErrorIs(t, e.Commit(tx), dberror.ErrTxnState)
	assert.ErrorIs(t, e.Abort(tx), dberror.ErrTxnState)

	_, err = tbl.BeginWrite(tx)
	assert.ErrorIs(t, err, dberror.ErrTxnState)

	other := New()
	foreign := begin(t, other)
	assert.ErrorIs(t, e.Commit(foreign), dberror.ErrInvalidArgument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_CreateErrors(t *testing.T) {
	e := New()
	sch := testSchema(t)
	tbl, err := e.CreateTable(sch)
	require.NoError(t, err)

	_, err = e.CreateTable(sch)
	assert.ErrorIs(t, err, dberror.ErrConfiguration)

	varchar, err := schema.NewSchemaBuilder(2, "v").AddColumn("s", types.VarcharType).Build()
	require.NoError(t, err)
	_, err = e.CreateTable(varchar)
	assert.ErrorIs(t, err, dberror.ErrUnsupportedType)

	wide, err := schema.NewIndexSchema(1, "wide", sch, []schema.IndexColumn{
		{Name: "k", ID: 1, Type: types.BigIntType, Source: 1},
	}, false, schema.HashIndex)
	require.NoError(t, err)
	_, err = e.CreateIndex(wide, tbl)
	assert.ErrorIs(t, err, dberror.ErrConfiguration)

	require.NoError(t, e.Close())
	_, err = e.Begin(context.Background())
	assert.Error(t, err)
}

func TestRowLayoutMismatch(t *testing.T) {
	e := New()
	tbl, err := e.CreateTable(testSchema(t))
	require.NoError(t, err)

	other, err := layout.Plan([]layout.Field{{ID: 1, Type: types.IntegerType}})
	require.NoError(t, err)

	tx := begin(t, e)
	_, err = tbl.Insert(tx, layout.NewProjectedRow(other))
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}

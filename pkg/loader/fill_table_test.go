package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablegen/pkg/datagen"
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/storage/memstore"
	"tablegen/pkg/types"
)

func TestNumBatches(t *testing.T) {
	tests := []struct {
		rows      uint64
		batchSize uint32
		want      int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{10000, 0, 1},
		{10001, 0, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumBatches(tt.rows, tt.batchSize), "rows=%d batch=%d", tt.rows, tt.batchSize)
	}
}

func TestFillTable_SerialScenario(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 5, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
	}}
	e, tbl, stats := loadTable(t, spec, 0)

	assert.Equal(t, uint64(5), stats.Rows)
	assert.Equal(t, 1, stats.Batches)

	_, rows := readRows(t, e, tbl)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, int64(i), row[0].v)
		assert.False(t, row[0].null)
	}
}

func TestFillTable_SerialAcrossBatches(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 2503, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.BigIntType, false, datagen.Serial, 100, 0),
		datagen.NewColumn("b", types.BooleanType, false, datagen.Serial, 0, 0),
	}}
	e, tbl, stats := loadTable(t, spec, 1000)

	assert.Equal(t, uint64(2503), stats.Rows)
	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, int64(2603), spec.Columns[0].Counter())

	_, rows := readRows(t, e, tbl)
	require.Len(t, rows, 2503)

	var falses int
	for i, row := range rows {
		assert.Equal(t, int64(100+i), row[0].v)
		if row[1].v == 0 {
			falses++
		}
	}
	// Boolean Serial is per batch: floor(n/2) false rows in each.
	assert.Equal(t, 500+500+251, falses)
}

func TestFillTable_TransitionsAndReleases(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 25, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
		datagen.NewColumn("b", types.SmallIntType, true, datagen.Uniform, -5, 5),
		datagen.NewCloneColumn("c", types.SmallIntType, true, 1),
		datagen.NewCloneColumn("d", types.SmallIntType, true, 2),
	}}
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, spec))
	require.NoError(t, err)

	var seen []Transition
	var batchRows []uint32
	txn := begin(t, e)
	stats, err := FillTable(newTestContext(), txn, tbl, spec, FillOptions{
		BatchSize: 10,
		Observer:  func(tr Transition) { seen = append(seen, tr) },
		OnBatch:   func(rows uint32) { batchRows = append(batchRows, rows) },
	})
	require.NoError(t, err)
	require.NoError(t, e.Commit(txn))

	assert.Equal(t, LoadStats{Rows: 25, Batches: 3, Released: 6}, stats)
	assert.Equal(t, []uint32{10, 10, 5}, batchRows)

	want := []Transition{{Table: "t", Phase: PhaseIdle, Batch: -1}}
	for i, n := range []uint32{10, 10, 5} {
		for _, p := range []Phase{PhaseGenerating, PhaseAssembling, PhaseInserting} {
			want = append(want, Transition{Table: "t", Phase: p, Batch: i, Rows: n})
		}
	}
	want = append(want, Transition{Table: "t", Phase: PhaseDone, Batch: -1})
	assert.Equal(t, want, seen)
}

func TestFillTable_CloneIdentity(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 3000, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("src", types.IntegerType, true, datagen.Uniform, -1000, 1000),
		datagen.NewColumn("other", types.IntegerType, false, datagen.Uniform, 0, 10),
		datagen.NewCloneColumn("c1", types.IntegerType, true, 0),
		datagen.NewCloneColumn("c2", types.IntegerType, true, 2),
	}}
	e, tbl, _ := loadTable(t, spec, 1000)

	_, rows := readRows(t, e, tbl)
	require.Len(t, rows, 3000)

	var nulls int
	for _, row := range rows {
		for _, clone := range []int{2, 3} {
			assert.Equal(t, row[0].raw, row[clone].raw)
			assert.Equal(t, row[0].null, row[clone].null)
		}
		if row[0].null {
			nulls++
		}
	}
	assert.Positive(t, nulls)
}

func TestFillTable_UniformWithinRange(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 12000, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.TinyIntType, false, datagen.Uniform, -3, 9),
	}}
	e, tbl, _ := loadTable(t, spec, 0)

	_, rows := readRows(t, e, tbl)
	require.Len(t, rows, 12000)
	for _, row := range rows {
		assert.GreaterOrEqual(t, row[0].v, int64(-3))
		assert.LessOrEqual(t, row[0].v, int64(9))
	}
}

func TestFillTable_ZeroRows(t *testing.T) {
	spec := &datagen.TableSpec{Name: "empty", Rows: 0, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
	}}
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, spec))
	require.NoError(t, err)

	var seen []Phase
	txn := begin(t, e)
	stats, err := FillTable(newTestContext(), txn, tbl, spec, FillOptions{
		Observer: func(tr Transition) { seen = append(seen, tr.Phase) },
	})
	require.NoError(t, err)
	require.NoError(t, e.Commit(txn))

	assert.Equal(t, LoadStats{}, stats)
	assert.Equal(t, []Phase{PhaseIdle, PhaseDone}, seen)

	txn = begin(t, e)
	n, err := tbl.Count(txn)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, e.Commit(txn))
}

func TestFillTable_LayoutMismatch(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 1, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
	}}
	wide := &datagen.TableSpec{Name: "t", Rows: 1, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
		datagen.NewColumn("b", types.IntegerType, false, datagen.Serial, 0, 0),
	}}
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, wide))
	require.NoError(t, err)

	txn := begin(t, e)
	defer func() { _ = e.Abort(txn) }()
	_, err = FillTable(newTestContext(), txn, tbl, spec, FillOptions{})
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}

// failingTable rejects inserts once failAfter rows were accepted.
type failingTable struct {
	storage.Table
	failAfter int
	inserted  int
}

var errInsert = errors.New("insert rejected")

func (f *failingTable) Insert(txn storage.Transaction, row *layout.ProjectedRow) (primitives.RowID, error) {
	if f.inserted == f.failAfter {
		return 0, errInsert
	}
	f.inserted++
	return f.Table.Insert(txn, row)
}

func TestFillTable_InsertFailureReleasesBatch(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 50, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
		datagen.NewColumn("b", types.IntegerType, true, datagen.Uniform, 0, 9),
		datagen.NewCloneColumn("c", types.IntegerType, true, 1),
	}}
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, spec))
	require.NoError(t, err)
	ft := &failingTable{Table: tbl, failAfter: 15}

	txn := begin(t, e)
	stats, err := FillTable(newTestContext(), txn, ft, spec, FillOptions{BatchSize: 10})
	require.ErrorIs(t, err, errInsert)
	require.NoError(t, e.Abort(txn))

	assert.Equal(t, uint64(10), stats.Rows)
	assert.Equal(t, 1, stats.Batches)
	// Two generated columns per batch; the failing batch is released too.
	assert.Equal(t, 4, stats.Released)

	txn = begin(t, e)
	n, err := tbl.Count(txn)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, e.Commit(txn))
}

func TestFillTable_GenerationFailureReleasesBatch(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 10, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Uniform, 0, 9),
		datagen.NewColumn("b", types.BooleanType, false, datagen.Rotate, 0, 1),
	}}
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, spec))
	require.NoError(t, err)

	txn := begin(t, e)
	defer func() { _ = e.Abort(txn) }()
	stats, err := FillTable(newTestContext(), txn, tbl, spec, FillOptions{})
	assert.ErrorIs(t, err, dberror.ErrConfiguration)
	assert.Equal(t, 1, stats.Released)
	assert.Zero(t, stats.Rows)
}

func TestFillTable_RejectsCloneWithDifferentNullability(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 2000, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("src", types.IntegerType, true, datagen.Uniform, 1, 1000),
		datagen.NewCloneColumn("c", types.IntegerType, false, 0),
	}}
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, spec))
	require.NoError(t, err)

	var seen []Transition
	txn := begin(t, e)
	stats, err := FillTable(newTestContext(), txn, tbl, spec, FillOptions{
		Observer: func(tr Transition) { seen = append(seen, tr) },
	})
	require.ErrorIs(t, err, dberror.ErrConfiguration)
	assert.Contains(t, err.Error(), `clone column "c"`)
	assert.Equal(t, LoadStats{}, stats)
	assert.Empty(t, seen)

	n, err := tbl.Count(txn)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, e.Abort(txn))
}

func TestFillTable_NullableCloneKeepsSourceNulls(t *testing.T) {
	spec := &datagen.TableSpec{Name: "t", Rows: 2000, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("src", types.IntegerType, true, datagen.Uniform, 1, 1000),
		datagen.NewColumn("plain", types.IntegerType, false, datagen.Uniform, 1, 1000),
		datagen.NewCloneColumn("c", types.IntegerType, true, 0),
	}}
	e, tbl, _ := loadTable(t, spec, 500)

	_, rows := readRows(t, e, tbl)
	require.Len(t, rows, 2000)

	var nulls int
	for _, row := range rows {
		assert.Equal(t, row[0].null, row[2].null)
		assert.Equal(t, row[0].raw, row[2].raw)
		assert.False(t, row[1].null)
		if row[0].null {
			nulls++
		}
	}
	assert.Greater(t, nulls, 100)
}

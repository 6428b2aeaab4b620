package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/datagen"
	"tablegen/pkg/dberror"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/types"
)

func threeColumnSpec(rows uint64) *datagen.TableSpec {
	return &datagen.TableSpec{Name: "t", Rows: rows, Columns: []*datagen.ColumnSpec{
		datagen.NewColumn("a", types.IntegerType, false, datagen.Serial, 0, 0),
		datagen.NewColumn("b", types.BigIntType, true, datagen.Uniform, -50, 50),
		datagen.NewColumn("c", types.SmallIntType, false, datagen.Uniform, 0, 3),
	}}
}

func createIndex(t *testing.T, e storage.Engine, tbl storage.Table, sch *schema.Schema, unique bool, kind schema.IndexKind, cols ...schema.IndexColumn) storage.Index {
	t.Helper()
	for i := range cols {
		cols[i].ID = primitives.ColumnID(i + 1)
	}
	isch, err := schema.NewIndexSchema(1, "idx", sch, cols, unique, kind)
	require.NoError(t, err)
	idx, err := e.CreateIndex(isch, tbl)
	require.NoError(t, err)
	return idx
}

func TestFillIndex_ProjectsKeyColumns(t *testing.T) {
	for _, kind := range []schema.IndexKind{schema.HashIndex, schema.OrderedIndex} {
		t.Run(string(kind), func(t *testing.T) {
			spec := threeColumnSpec(2000)
			e, tbl, _ := loadTable(t, spec, 700)
			idx := createIndex(t, e, tbl, schemaFor(t, spec), false, kind,
				schema.IndexColumn{Name: "ka", Type: types.IntegerType, Source: 1},
				schema.IndexColumn{Name: "kb", Type: types.BigIntType, Nullable: true, Source: 2},
			)

			txn := begin(t, e)
			stats, err := FillIndex(txn, tbl, idx)
			require.NoError(t, err)
			require.NoError(t, e.Commit(txn))
			assert.Equal(t, uint64(2000), stats.Entries)

			rids, rows := readRows(t, e, tbl)
			byRID := make(map[primitives.RowID][]cell, len(rids))
			for i, rid := range rids {
				byRID[rid] = rows[i]
			}

			txn = begin(t, e)
			defer func() { require.NoError(t, e.Commit(txn)) }()

			n, err := idx.Len(txn)
			require.NoError(t, err)
			assert.Equal(t, uint64(2000), n)

			var seen int
			require.NoError(t, idx.Entries(txn, func(ent storage.IndexEntry) error {
				seen++
				src, ok := byRID[ent.RID]
				require.True(t, ok)
				key := decodeRow(t, ent.Key)
				assert.Equal(t, src[0].raw, key[0].raw)
				assert.False(t, key[0].null)
				assert.Equal(t, src[1].raw, key[1].raw)
				assert.Equal(t, src[1].null, key[1].null)
				return nil
			}))
			assert.Equal(t, 2000, seen)
		})
	}
}

func TestFillIndex_ReorderedAndSubsetKeys(t *testing.T) {
	tests := []struct {
		name    string
		cols    []schema.IndexColumn
		sources []int // table position of each key field
	}{
		{
			name: "reversed",
			cols: []schema.IndexColumn{
				{Name: "kc", Type: types.SmallIntType, Source: 3},
				{Name: "kb", Type: types.BigIntType, Nullable: true, Source: 2},
				{Name: "ka", Type: types.IntegerType, Source: 1},
			},
			sources: []int{2, 1, 0},
		},
		{
			name: "subset",
			cols: []schema.IndexColumn{
				{Name: "kc", Type: types.SmallIntType, Source: 3},
				{Name: "ka", Type: types.IntegerType, Source: 1},
			},
			sources: []int{2, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := threeColumnSpec(1500)
			e, tbl, _ := loadTable(t, spec, 400)
			idx := createIndex(t, e, tbl, schemaFor(t, spec), false, schema.OrderedIndex, tt.cols...)

			txn := begin(t, e)
			stats, err := FillIndex(txn, tbl, idx)
			require.NoError(t, err)
			require.NoError(t, e.Commit(txn))
			assert.Equal(t, uint64(1500), stats.Entries)

			rids, rows := readRows(t, e, tbl)
			byRID := make(map[primitives.RowID][]cell, len(rids))
			for i, rid := range rids {
				byRID[rid] = rows[i]
			}

			txn = begin(t, e)
			defer func() { require.NoError(t, e.Commit(txn)) }()

			require.NoError(t, idx.Entries(txn, func(ent storage.IndexEntry) error {
				src, ok := byRID[ent.RID]
				require.True(t, ok)
				key := decodeRow(t, ent.Key)
				require.Len(t, key, len(tt.sources))
				for k, pos := range tt.sources {
					assert.Equal(t, src[pos].raw, key[k].raw, "key field %d", k)
					assert.Equal(t, src[pos].null, key[k].null, "key field %d", k)
					assert.Equal(t, src[pos].v, key[k].v, "key field %d", k)
				}
				return nil
			}))
		})
	}
}

func TestFillIndex_NullIntoNonNullableKey(t *testing.T) {
	spec := threeColumnSpec(500)
	e, tbl, _ := loadTable(t, spec, 0)
	idx := createIndex(t, e, tbl, schemaFor(t, spec), false, schema.OrderedIndex,
		schema.IndexColumn{Name: "kb", Type: types.BigIntType, Source: 2},
	)

	txn := begin(t, e)
	_, err := FillIndex(txn, tbl, idx)
	require.NoError(t, err)

	require.NoError(t, idx.Entries(txn, func(ent storage.IndexEntry) error {
		isNull, err := ent.Key.IsNull(1)
		require.NoError(t, err)
		assert.False(t, isNull)
		return nil
	}))
	require.NoError(t, e.Commit(txn))
}

func TestFillIndex_UniqueViolation(t *testing.T) {
	spec := threeColumnSpec(100)
	e, tbl, _ := loadTable(t, spec, 0)
	idx := createIndex(t, e, tbl, schemaFor(t, spec), true, schema.HashIndex,
		schema.IndexColumn{Name: "kc", Type: types.SmallIntType, Source: 3},
	)

	txn := begin(t, e)
	stats, err := FillIndex(txn, tbl, idx)
	require.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrConstraintViolation)
	assert.Equal(t, dberror.CodeConstraintViolation, dberror.CodeOf(err))
	assert.Less(t, stats.Entries, uint64(100))
	require.NoError(t, e.Abort(txn))
}

func TestFillIndex_UniqueSerialKey(t *testing.T) {
	spec := threeColumnSpec(1000)
	e, tbl, _ := loadTable(t, spec, 0)
	idx := createIndex(t, e, tbl, schemaFor(t, spec), true, schema.OrderedIndex,
		schema.IndexColumn{Name: "ka", Type: types.IntegerType, Source: 1},
	)

	txn := begin(t, e)
	stats, err := FillIndex(txn, tbl, idx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), stats.Entries)
	require.NoError(t, e.Commit(txn))
}

func TestFillIndex_EmptyTable(t *testing.T) {
	spec := threeColumnSpec(0)
	e, tbl, _ := loadTable(t, spec, 0)
	idx := createIndex(t, e, tbl, schemaFor(t, spec), false, schema.OrderedIndex,
		schema.IndexColumn{Name: "ka", Type: types.IntegerType, Source: 1},
	)

	txn := begin(t, e)
	stats, err := FillIndex(txn, tbl, idx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
	require.NoError(t, e.Commit(txn))
}

package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/datagen"
	"tablegen/pkg/iterator"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/storage/memstore"
	"tablegen/pkg/types"
)

// cell is one decoded field of a stored row.
type cell struct {
	v    int64
	null bool
	raw  []byte
}

func newTestContext() *datagen.Context {
	return datagen.NewContext(datagen.Options{Seed: 42, Stream: 7})
}

func schemaFor(t *testing.T, spec *datagen.TableSpec) *schema.Schema {
	t.Helper()
	cols := make([]schema.Column, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = schema.Column{Name: c.Name, ID: primitives.ColumnID(i + 1), Type: c.Type, Nullable: c.Nullable}
	}
	sch, err := schema.NewSchema(1, spec.Name, cols)
	require.NoError(t, err)
	return sch
}

func begin(t *testing.T, e storage.TransactionManager) storage.Transaction {
	t.Helper()
	txn, err := e.Begin(context.Background())
	require.NoError(t, err)
	return txn
}

// loadTable creates spec's table in a fresh memstore engine and fills it
// in one committed transaction.
func loadTable(t *testing.T, spec *datagen.TableSpec, batchSize uint32) (*memstore.Engine, storage.Table, LoadStats) {
	t.Helper()
	e := memstore.New()
	tbl, err := e.CreateTable(schemaFor(t, spec))
	require.NoError(t, err)

	txn := begin(t, e)
	stats, err := FillTable(newTestContext(), txn, tbl, spec, FillOptions{BatchSize: batchSize})
	require.NoError(t, err)
	require.NoError(t, e.Commit(txn))
	return e, tbl, stats
}

// readRows decodes every visible row of tbl in scan order.
func readRows(t *testing.T, e storage.TransactionManager, tbl storage.Table) ([]primitives.RowID, [][]cell) {
	t.Helper()
	txn := begin(t, e)
	defer func() { require.NoError(t, e.Commit(txn)) }()

	it, err := tbl.Scan(txn)
	require.NoError(t, err)

	var rids []primitives.RowID
	var rows [][]cell
	row := layout.NewProjectedRow(tbl.Layout())
	require.NoError(t, iterator.Drain(it, func(rid primitives.RowID) error {
		if err := tbl.Select(txn, rid, row); err != nil {
			return err
		}
		rids = append(rids, rid)
		rows = append(rows, decodeRow(t, row))
		return nil
	}))
	return rids, rows
}

func decodeRow(t *testing.T, row *layout.ProjectedRow) []cell {
	t.Helper()
	slots := row.Layout().Slots()
	out := make([]cell, len(slots))
	for i, s := range slots {
		raw := append([]byte(nil), row.Bytes()[s.Offset:int(s.Offset)+int(s.Width)]...)
		v, err := types.Decode(s.Type, raw)
		require.NoError(t, err)
		out[i] = cell{v: v, null: row.IsNullAt(i), raw: raw}
	}
	return out
}

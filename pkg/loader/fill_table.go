package loader

import (
	"fmt"
	"log/slog"

	"tablegen/pkg/datagen"
	"tablegen/pkg/dberror"
	"tablegen/pkg/logging"
	"tablegen/pkg/storage"
)

// DefaultBatchSize is the nominal number of rows generated per batch.
const DefaultBatchSize = 10000

// Phase is a state of the batched loader.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGenerating
	PhaseAssembling
	PhaseInserting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseGenerating:
		return "Generating"
	case PhaseAssembling:
		return "Assembling"
	case PhaseInserting:
		return "Inserting"
	case PhaseDone:
		return "Done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Transition is reported to an Observer whenever a table load changes
// phase. Batch is -1 for Idle and Done.
type Transition struct {
	Table string
	Phase Phase
	Batch int
	Rows  uint32
}

// Observer receives loader transitions. Generator may call it from several
// goroutines at once when it loads tables in parallel.
type Observer func(Transition)

// LoadStats summarises one table load.
type LoadStats struct {
	Rows     uint64
	Batches  int
	Released int
}

// FillOptions tunes FillTable.
type FillOptions struct {
	// BatchSize defaults to DefaultBatchSize when zero.
	BatchSize uint32
	Observer  Observer

	// OnBatch is called after every fully inserted batch.
	OnBatch func(rows uint32)
	Logger  *slog.Logger
}

// NumBatches returns ceil(rows / batchSize).
func NumBatches(rows uint64, batchSize uint32) int {
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	bs := uint64(batchSize)
	return int(rows/bs + min(rows%bs, 1))
}

// FillTable inserts spec.Rows generated rows into tbl through txn.
//
// The table's layout must have one field per spec column, in spec order.
// Every batch's generated buffers are released before FillTable moves to the
// next batch or returns, including when generation or insertion fails. The
// first error aborts the load and is returned unchanged; rolling back the
// rows already inserted is left to the caller's transaction.
func FillTable(ctx *datagen.Context, txn storage.Transaction, tbl storage.Table, spec *datagen.TableSpec, opts FillOptions) (LoadStats, error) {
	var stats LoadStats

	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.WithTable(spec.Name)
	}
	notify := func(phase Phase, batch int, rows uint32) {
		if opts.Observer != nil {
			opts.Observer(Transition{Table: spec.Name, Phase: phase, Batch: batch, Rows: rows})
		}
	}

	if n := tbl.Layout().NumColumns(); n != len(spec.Columns) {
		return stats, dberror.InvalidArgument("FillTable", "table %q has %d fields but spec declares %d columns", tbl.Name(), n, len(spec.Columns)).WithComponent("Loader")
	}
	if err := checkClones(spec); err != nil {
		return stats, err
	}

	notify(PhaseIdle, -1, 0)

	numBatches := NumBatches(spec.Rows, opts.BatchSize)
	for i := range numBatches {
		n := opts.BatchSize
		if remaining := spec.Rows - stats.Rows; remaining < uint64(n) {
			n = uint32(remaining)
		}

		released, err := fillBatch(ctx, txn, tbl, spec, i, n, notify)
		stats.Released += released
		if err != nil {
			return stats, err
		}

		stats.Rows += uint64(n)
		stats.Batches++
		if opts.OnBatch != nil {
			opts.OnBatch(n)
		}
		opts.Logger.Debug("batch inserted", "batch", i, "rows", n)
	}

	notify(PhaseDone, -1, 0)
	return stats, nil
}

// checkClones rejects clone columns that could not store their source's
// values and null markers unchanged.
func checkClones(spec *datagen.TableSpec) error {
	for i, col := range spec.Columns {
		if !col.Clone {
			continue
		}
		if col.CloneOf < 0 || col.CloneOf >= i {
			return dberror.Configuration("FillTable", "clone column %q must reference an earlier column, got %d", col.Name, col.CloneOf).WithComponent("Loader")
		}
		if src := spec.Columns[col.CloneOf]; src.Nullable != col.Nullable {
			return dberror.Configuration("FillTable", "clone column %q has nullable=%t but its source %q has nullable=%t",
				col.Name, col.Nullable, src.Name, src.Nullable).WithComponent("Loader")
		}
	}
	return nil
}

// fillBatch generates, assembles and inserts one batch of n rows and
// reports how many buffers it released.
func fillBatch(ctx *datagen.Context, txn storage.Transaction, tbl storage.Table, spec *datagen.TableSpec, index int, n uint32, notify func(Phase, int, uint32)) (released int, err error) {
	b := newBatch(len(spec.Columns))
	defer func() { released = b.release() }()

	notify(PhaseGenerating, index, n)
	for i, col := range spec.Columns {
		if col.Clone {
			b.setAlias(i, col.CloneOf)
			continue
		}
		data, err := datagen.Generate(ctx, col, n)
		if err != nil {
			return 0, err
		}
		b.setGenerated(i, data)
	}

	notify(PhaseAssembling, index, n)
	columns := make([]*datagen.ColumnData, len(spec.Columns))
	for i := range spec.Columns {
		columns[i] = b.column(i)
	}

	notify(PhaseInserting, index, n)
	for j := range n {
		row, err := tbl.BeginWrite(txn)
		if err != nil {
			return 0, err
		}
		for i, col := range spec.Columns {
			data := columns[i]
			if col.Nullable && data.IsNull(j) {
				row.SetNullAt(i)
				continue
			}
			copy(row.AccessForceNotNullAt(i), data.Value(j))
		}
		if _, err := tbl.Insert(txn, row); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

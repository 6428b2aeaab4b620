package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"tablegen/pkg/catalog"
	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/datagen"
	"tablegen/pkg/dberror"
	"tablegen/pkg/logging"
	"tablegen/pkg/metrics"
	"tablegen/pkg/storage"
	"tablegen/pkg/utils/functools"
)

// Recorder receives build measurements. *metrics.Collector implements it.
type Recorder interface {
	BatchInserted(table string, rows int)
	IndexEntriesInserted(index string, n uint64)
	BuildFinished(kind string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) BatchInserted(string, int)                  {}
func (nopRecorder) IndexEntriesInserted(string, uint64)        {}
func (nopRecorder) BuildFinished(string, time.Duration, error) {}

// Options configures a Generator.
type Options struct {
	// Seed is the run seed. Each table derives its own stream from it and
	// its name, so results do not depend on scheduling.
	Seed      uint64
	SeedScope datagen.SeedScope

	// NullProbability follows datagen.Options: zero means the default and
	// datagen.NoNulls disables nulls.
	NullProbability float64

	// BatchSize defaults to DefaultBatchSize.
	BatchSize uint32

	// Parallelism bounds how many tables, then indexes, GenerateAll builds
	// at once. Values below 1 mean 1.
	Parallelism int

	Observer Observer
	Recorder Recorder
}

// TableResult is the outcome of one table load.
type TableResult struct {
	Name     string
	Stats    LoadStats
	Duration time.Duration
}

// IndexResult is the outcome of one index build.
type IndexResult struct {
	Name     string
	Table    string
	Stats    IndexStats
	Duration time.Duration
}

// Report lists what GenerateAll built, in spec order.
type Report struct {
	RunID    string
	Tables   []TableResult
	Indexes  []IndexResult
	Duration time.Duration
}

// Generator builds tables and indexes into one storage engine and records
// them in one catalog.
type Generator struct {
	engine  storage.Engine
	catalog *catalog.Catalog
	opts    Options
	runID   string
	logger  *slog.Logger
}

// New returns a Generator with a fresh run identifier.
func New(engine storage.Engine, cat *catalog.Catalog, opts Options) *Generator {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	runID := uuid.NewString()
	return &Generator{
		engine:  engine,
		catalog: cat,
		opts:    opts,
		runID:   runID,
		logger:  logging.WithRun(runID).With("component", "Generator"),
	}
}

// RunID identifies this generator's run in logs and reports.
func (g *Generator) RunID() string {
	return g.runID
}

// Catalog returns the catalog tables and indexes are registered in.
func (g *Generator) Catalog() *catalog.Catalog {
	return g.catalog
}

// contextFor seeds the generation context of one table.
func (g *Generator) contextFor(table string) *datagen.Context {
	return datagen.NewContext(datagen.Options{
		Seed:            g.opts.Seed,
		Stream:          xxhash.Sum64String(table),
		Scope:           g.opts.SeedScope,
		NullProbability: g.opts.NullProbability,
	})
}

// CreateTable registers spec in the catalog, creates its storage table and
// loads spec.Rows rows inside a single transaction. The transaction is
// aborted if the load fails.
func (g *Generator) CreateTable(ctx context.Context, spec *datagen.TableSpec) (result TableResult, err error) {
	start := time.Now()
	result.Name = spec.Name
	log := g.logger.With("table", spec.Name)
	defer func() {
		result.Duration = time.Since(start)
		g.opts.Recorder.BuildFinished(metrics.KindTable, result.Duration, err)
	}()

	if err := spec.Validate(); err != nil {
		return result, err
	}

	columns := functools.Map(spec.Columns, func(c *datagen.ColumnSpec) schema.Column {
		return schema.Column{Name: c.Name, Type: c.Type, Nullable: c.Nullable}
	})
	sch, err := g.catalog.CreateTable(spec.Name, columns)
	if err != nil {
		return result, err
	}
	tbl, err := g.engine.CreateTable(sch)
	if err != nil {
		return result, err
	}
	if err := g.catalog.SetTable(sch.TableID, tbl); err != nil {
		return result, err
	}

	txn, err := g.engine.Begin(ctx)
	if err != nil {
		return result, err
	}

	spec.ResetCounters()
	stats, err := FillTable(g.contextFor(spec.Name), txn, tbl, spec, FillOptions{
		BatchSize: g.opts.BatchSize,
		Observer:  g.opts.Observer,
		OnBatch:   func(rows uint32) { g.opts.Recorder.BatchInserted(spec.Name, int(rows)) },
		Logger:    log.With("tx_id", uint64(txn.Context().ID)),
	})
	result.Stats = stats
	if err != nil {
		g.abort(txn, log, err)
		return result, err
	}
	if err := g.engine.Commit(txn); err != nil {
		return result, err
	}

	log.Info("table loaded",
		"rows", stats.Rows,
		"batches", stats.Batches,
		"duration", time.Since(start))
	return result, nil
}

// CreateIndex resolves spec's source columns against the table's schema,
// registers and creates the index, and populates it inside a fresh
// transaction.
func (g *Generator) CreateIndex(ctx context.Context, spec *datagen.IndexSpec) (result IndexResult, err error) {
	start := time.Now()
	result.Name = spec.Name
	result.Table = spec.Table
	log := g.logger.With("index", spec.Name, "table", spec.Table)
	defer func() {
		result.Duration = time.Since(start)
		g.opts.Recorder.BuildFinished(metrics.KindIndex, result.Duration, err)
	}()

	if err := spec.Validate(); err != nil {
		return result, err
	}

	tableID, err := g.catalog.TableOID(spec.Table)
	if err != nil {
		return result, err
	}
	sch, err := g.catalog.Schema(tableID)
	if err != nil {
		return result, err
	}
	tbl, err := g.catalog.Table(tableID)
	if err != nil {
		return result, err
	}

	columns, err := resolveKeyColumns(spec, sch)
	if err != nil {
		return result, err
	}
	isch, err := g.catalog.CreateIndex(spec.Name, tableID, columns, spec.Unique, spec.Kind)
	if err != nil {
		return result, err
	}
	idx, err := g.engine.CreateIndex(isch, tbl)
	if err != nil {
		return result, err
	}
	if err := g.catalog.SetIndex(isch.IndexID, idx); err != nil {
		return result, err
	}

	txn, err := g.engine.Begin(ctx)
	if err != nil {
		return result, err
	}
	stats, err := FillIndex(txn, tbl, idx)
	result.Stats = stats
	if err != nil {
		g.abort(txn, log, err)
		return result, err
	}
	if err := g.engine.Commit(txn); err != nil {
		return result, err
	}
	g.opts.Recorder.IndexEntriesInserted(spec.Name, stats.Entries)

	log.Info("index populated",
		"entries", stats.Entries,
		"duration", time.Since(start))
	return result, nil
}

// resolveKeyColumns maps every key column's source name to the table
// column identifier, reporting all unknown sources at once.
func resolveKeyColumns(spec *datagen.IndexSpec, sch *schema.Schema) ([]schema.IndexColumn, error) {
	var result *multierror.Error
	columns := make([]schema.IndexColumn, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		src, ok := sch.ColumnByName(col.Source)
		if !ok {
			result = multierror.Append(result, dberror.Configuration("CreateIndex", "index %q: key column %q projects unknown column %q of table %q", spec.Name, col.Name, col.Source, sch.TableName))
			continue
		}
		columns = append(columns, schema.IndexColumn{
			Name:     col.Name,
			Type:     col.Type,
			Nullable: col.Nullable,
			Source:   src.ID,
		})
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return columns, nil
}

func (g *Generator) abort(txn storage.Transaction, log *slog.Logger, cause error) {
	log.Error("build aborted", "error", cause)
	if err := g.engine.Abort(txn); err != nil {
		log.Warn("abort failed", "error", err)
	}
}

// GenerateAll loads every table, then builds every index. Up to
// Options.Parallelism builds run at once within each phase. The first
// failure cancels builds that have not started yet and is returned with
// the partial report.
func (g *Generator) GenerateAll(ctx context.Context, tables []*datagen.TableSpec, indexes []*datagen.IndexSpec) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:   g.runID,
		Tables:  make([]TableResult, len(tables)),
		Indexes: make([]IndexResult, len(indexes)),
	}
	g.logger.Info("run started",
		"tables", len(tables),
		"indexes", len(indexes),
		"parallelism", g.opts.Parallelism)

	err := g.phase(ctx, len(tables), func(ctx context.Context, i int) error {
		res, err := g.CreateTable(ctx, tables[i])
		report.Tables[i] = res
		return err
	})
	if err == nil {
		err = g.phase(ctx, len(indexes), func(ctx context.Context, i int) error {
			res, err := g.CreateIndex(ctx, indexes[i])
			report.Indexes[i] = res
			return err
		})
	}

	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	g.logger.Info("run finished", "duration", report.Duration)
	return report, nil
}

func (g *Generator) phase(ctx context.Context, n int, build func(context.Context, int) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Parallelism)
	for i := range n {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return build(ctx, i)
		})
	}
	return eg.Wait()
}

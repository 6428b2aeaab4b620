package memstore

import (
	"context"
	"sync"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/concurrency/transaction"
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/logging"
	"tablegen/pkg/storage"
)

// Engine owns the tables, indexes and transactions of one in-memory store.
// It is safe for concurrent use.
type Engine struct {
	registry *transaction.TransactionRegistry

	mu      sync.RWMutex
	tables  map[string]*HeapTable
	indexes map[string]*Index
	closed  bool
}

var _ storage.Engine = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		registry: transaction.NewTransactionRegistry(),
		tables:   make(map[string]*HeapTable),
		indexes:  make(map[string]*Index),
	}
}

// Begin starts a transaction.
func (e *Engine) Begin(ctx context.Context) (storage.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, errClosed("Begin")
	}

	return &txn{ctx: e.registry.Begin(), engine: e}, nil
}

// Commit publishes every row and index entry written by txn.
func (e *Engine) Commit(t storage.Transaction) error {
	mt, err := e.own("Commit", t)
	if err != nil {
		return err
	}
	if err := mt.ctx.BeginFinish(true); err != nil {
		return err
	}

	mt.finish(true)
	mt.ctx.CompleteFinish(true)
	e.registry.Remove(mt.ctx.ID)

	stats := mt.ctx.GetStatistics()
	logging.WithTx(uint64(mt.ctx.ID)).Debug("memstore transaction committed",
		"tuples_written", stats.TuplesWritten,
		"pages_written", stats.PagesWritten,
		"duration", mt.ctx.Duration())
	return nil
}

// Abort discards every row and index entry written by txn.
func (e *Engine) Abort(t storage.Transaction) error {
	mt, err := e.own("Abort", t)
	if err != nil {
		return err
	}
	if err := mt.ctx.BeginFinish(false); err != nil {
		return err
	}

	mt.finish(false)
	mt.ctx.CompleteFinish(false)
	e.registry.Remove(mt.ctx.ID)

	logging.WithTx(uint64(mt.ctx.ID)).Debug("memstore transaction aborted")
	return nil
}

// ActiveTransactions returns the number of transactions not yet finished.
func (e *Engine) ActiveTransactions() int {
	return e.registry.Count()
}

// CreateTable creates an empty heap table for sch.
func (e *Engine) CreateTable(sch *schema.Schema) (storage.Table, error) {
	l, err := layout.Plan(sch.Fields())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errClosed("CreateTable")
	}
	if _, exists := e.tables[sch.TableName]; exists {
		return nil, dberror.Configuration("CreateTable", "table %q already exists", sch.TableName).
			WithComponent("memstore")
	}

	t := newHeapTable(e, sch, l)
	e.tables[sch.TableName] = t
	return t, nil
}

// CreateIndex creates an empty index over table, which must belong to e.
func (e *Engine) CreateIndex(sch *schema.IndexSchema, table storage.Table) (storage.Index, error) {
	ht, ok := table.(*HeapTable)
	if !ok || ht.engine != e {
		return nil, dberror.InvalidArgument("CreateIndex", "table %q does not belong to this engine", table.Name()).
			WithComponent("memstore")
	}
	if err := checkKeySources(sch, ht.sch); err != nil {
		return nil, err
	}

	keyLayout, err := layout.Plan(sch.KeyFields())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errClosed("CreateIndex")
	}
	if _, exists := e.indexes[sch.IndexName]; exists {
		return nil, dberror.Configuration("CreateIndex", "index %q already exists", sch.IndexName).
			WithComponent("memstore")
	}

	idx := newIndex(e, sch, keyLayout)
	e.indexes[sch.IndexName] = idx
	return idx, nil
}

// Close drops every table and index. Later calls fail.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.tables = map[string]*HeapTable{}
	e.indexes = map[string]*Index{}
	return nil
}

func (e *Engine) own(op string, t storage.Transaction) (*txn, error) {
	mt, ok := t.(*txn)
	if !ok || mt.engine != e {
		return nil, dberror.InvalidArgument(op, "transaction does not belong to this engine").
			WithComponent("memstore")
	}
	return mt, nil
}

// active resolves t and checks it can still read and write.
func (e *Engine) active(op string, t storage.Transaction) (*txn, error) {
	mt, err := e.own(op, t)
	if err != nil {
		return nil, err
	}
	if err := mt.ctx.EnsureActive(op); err != nil {
		return nil, err
	}
	return mt, nil
}

// checkKeySources verifies every key column projects a table column of the
// same physical width.
func checkKeySources(idx *schema.IndexSchema, table *schema.Schema) error {
	for _, col := range idx.Columns {
		src, ok := table.ColumnByID(col.Source)
		if !ok {
			return dberror.NotFound("CreateIndex", "index %q: source column %s not in table %q", idx.IndexName, col.Source, table.TableName)
		}
		if src.Width() != col.Width() {
			return dberror.Configuration("CreateIndex", "index %q: key column %q is %s but source %q is %s",
				idx.IndexName, col.Name, col.Type, src.Name, src.Type)
		}
	}
	return nil
}

func errClosed(op string) error {
	e := dberror.New(dberror.ErrCategorySystem, dberror.CodeStorage, "memstore engine is closed")
	e.Operation = op
	return e
}

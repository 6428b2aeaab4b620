package storage

import (
	"context"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/concurrency/transaction"
	"tablegen/pkg/iterator"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
)

// Transaction is an engine's handle on one unit of work.
type Transaction interface {
	Context() *transaction.TransactionContext
}

// TransactionManager starts and finishes transactions. Committing or aborting
// a transaction that is not active fails with TXN_STATE.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	Commit(txn Transaction) error
	Abort(txn Transaction) error
}

// Table stores fixed-width rows shaped by Layout.
type Table interface {
	Name() string
	Layout() *layout.OffsetMap

	// BeginWrite returns an all-null row buffer for the table's layout that
	// the caller fills and passes to Insert.
	BeginWrite(txn Transaction) (*layout.ProjectedRow, error)
	Insert(txn Transaction, row *layout.ProjectedRow) (primitives.RowID, error)

	// Select copies the row at rid into out. Rows the transaction cannot
	// see fail with NOT_FOUND.
	Select(txn Transaction, rid primitives.RowID, out *layout.ProjectedRow) error

	// Scan snapshots the locations visible to txn.
	Scan(txn Transaction) (iterator.RowIterator, error)
	Count(txn Transaction) (uint64, error)
}

// IndexEntry is one key and the row it points at.
type IndexEntry struct {
	Key *layout.ProjectedRow
	RID primitives.RowID
}

// Index maps keys shaped by KeyLayout to row locations. Unique indexes fail
// Insert with CONSTRAINT_VIOLATION when a key without nulls is already
// present.
type Index interface {
	Name() string
	Schema() *schema.IndexSchema
	KeyLayout() *layout.OffsetMap
	NewKey() *layout.ProjectedRow
	Insert(txn Transaction, key *layout.ProjectedRow, rid primitives.RowID) error
	Lookup(txn Transaction, key *layout.ProjectedRow) ([]primitives.RowID, error)
	Len(txn Transaction) (uint64, error)

	// Entries calls fn for every visible entry in index order. The key
	// passed to fn is only valid during the call.
	Entries(txn Transaction, fn func(IndexEntry) error) error
}

// Engine creates tables and indexes and owns their transactions.
type Engine interface {
	TransactionManager
	CreateTable(sch *schema.Schema) (Table, error)
	CreateIndex(sch *schema.IndexSchema, table Table) (Index, error)
	Close() error
}

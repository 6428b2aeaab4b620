// Package boltstore persists tables and indexes in a single bbolt file.
//
// Each table is a bucket keyed by an 8-byte big-endian row sequence whose
// values are row images. Each index is a bucket keyed by the key image
// followed by the 8-byte row location, with empty values, so duplicate keys
// sort together and unique probes are a single cursor seek. Both index kinds
// share this structure and iterate in key image byte order.
//
// A storage transaction is one writable bbolt transaction. bbolt admits a
// single writer at a time, so concurrent Begin calls wait for the current
// writer to finish.
package boltstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/concurrency/transaction"
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/logging"
	"tablegen/pkg/storage"
)

const (
	tableBucketPrefix = "table/"
	indexBucketPrefix = "index/"
	ridSize           = 8
)

// Options tunes the bbolt file.
type Options struct {
	// NoSync skips fsync on commit. Suitable for throwaway benchmark data.
	NoSync  bool
	Timeout time.Duration
}

// Engine is a storage.Engine backed by bbolt.
type Engine struct {
	db       *bbolt.DB
	registry *transaction.TransactionRegistry

	mu      sync.RWMutex
	tables  map[string]*Table
	indexes map[string]*Index
}

var _ storage.Engine = (*Engine)(nil)

// Open opens or creates the bbolt file at path.
func Open(path string, opts Options) (*Engine, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: opts.Timeout, NoSync: opts.NoSync})
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeStorage, "Open", "boltstore")
	}

	logging.WithComponent("boltstore").Info("opened bolt file", "path", path, "no_sync", opts.NoSync)
	return &Engine{
		db:       db,
		registry: transaction.NewTransactionRegistry(),
		tables:   make(map[string]*Table),
		indexes:  make(map[string]*Index),
	}, nil
}

// Path returns the file backing the engine.
func (e *Engine) Path() string {
	return e.db.Path()
}

type txn struct {
	ctx    *transaction.TransactionContext
	engine *Engine
	tx     *bbolt.Tx
}

func (t *txn) Context() *transaction.TransactionContext {
	return t.ctx
}

// Begin opens a writable bbolt transaction, waiting for any current writer.
func (e *Engine) Begin(ctx context.Context) (storage.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := e.db.Begin(true)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeStorage, "Begin", "boltstore")
	}
	return &txn{ctx: e.registry.Begin(), engine: e, tx: tx}, nil
}

func (e *Engine) Commit(t storage.Transaction) error {
	bt, err := e.own("Commit", t)
	if err != nil {
		return err
	}
	if err := bt.ctx.BeginFinish(true); err != nil {
		return err
	}
	defer e.registry.Remove(bt.ctx.ID)

	if err := bt.tx.Commit(); err != nil {
		bt.ctx.CompleteFinish(false)
		return dberror.Wrap(err, dberror.CodeStorage, "Commit", "boltstore")
	}
	bt.ctx.CompleteFinish(true)

	stats := bt.ctx.GetStatistics()
	logging.WithTx(uint64(bt.ctx.ID)).Debug("bolt transaction committed",
		"tuples_written", stats.TuplesWritten,
		"index_entries", stats.IndexEntries,
		"duration", bt.ctx.Duration())
	return nil
}

func (e *Engine) Abort(t storage.Transaction) error {
	bt, err := e.own("Abort", t)
	if err != nil {
		return err
	}
	if err := bt.ctx.BeginFinish(false); err != nil {
		return err
	}
	defer e.registry.Remove(bt.ctx.ID)

	err = bt.tx.Rollback()
	bt.ctx.CompleteFinish(false)
	if err != nil {
		return dberror.Wrap(err, dberror.CodeStorage, "Abort", "boltstore")
	}
	return nil
}

// CreateTable creates the table's bucket. The bucket must not exist yet.
func (e *Engine) CreateTable(sch *schema.Schema) (storage.Table, error) {
	l, err := layout.Plan(sch.Fields())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.tables[sch.TableName]; exists {
		return nil, dberror.Configuration("CreateTable", "table %q already exists", sch.TableName).WithComponent("boltstore")
	}

	bucket := []byte(tableBucketPrefix + sch.TableName)
	if err := e.createBucket(bucket); err != nil {
		return nil, err
	}

	t := &Table{engine: e, sch: sch, layout: l, bucket: bucket}
	e.tables[sch.TableName] = t
	return t, nil
}

// CreateIndex creates the index's bucket over a table of this engine.
func (e *Engine) CreateIndex(sch *schema.IndexSchema, table storage.Table) (storage.Index, error) {
	bt, ok := table.(*Table)
	if !ok || bt.engine != e {
		return nil, dberror.InvalidArgument("CreateIndex", "table %q does not belong to this engine", table.Name()).
			WithComponent("boltstore")
	}
	for _, col := range sch.Columns {
		src, ok := bt.sch.ColumnByID(col.Source)
		if !ok {
			return nil, dberror.NotFound("CreateIndex", "index %q: source column %s not in table %q", sch.IndexName, col.Source, bt.Name())
		}
		if src.Width() != col.Width() {
			return nil, dberror.Configuration("CreateIndex", "index %q: key column %q is %s but source %q is %s",
				sch.IndexName, col.Name, col.Type, src.Name, src.Type)
		}
	}
	keyLayout, err := layout.Plan(sch.KeyFields())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.indexes[sch.IndexName]; exists {
		return nil, dberror.Configuration("CreateIndex", "index %q already exists", sch.IndexName).WithComponent("boltstore")
	}

	bucket := []byte(indexBucketPrefix + sch.IndexName)
	if err := e.createBucket(bucket); err != nil {
		return nil, err
	}

	idx := &Index{engine: e, sch: sch, keyLayout: keyLayout, bucket: bucket}
	e.indexes[sch.IndexName] = idx
	return idx, nil
}

func (e *Engine) createBucket(name []byte) error {
	err := e.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket(name)
		return err
	})
	if errors.Is(err, bbolt.ErrBucketExists) {
		return dberror.Configuration("CreateBucket", "bucket %q already exists in %s", name, e.db.Path()).
			WithComponent("boltstore")
	}
	if err != nil {
		return dberror.Wrap(err, dberror.CodeStorage, "CreateBucket", "boltstore")
	}
	return nil
}

// Close closes the bolt file. Open transactions must be finished first.
func (e *Engine) Close() error {
	return e.db.Close()
}

func (e *Engine) own(op string, t storage.Transaction) (*txn, error) {
	bt, ok := t.(*txn)
	if !ok || bt.engine != e {
		return nil, dberror.InvalidArgument(op, "transaction does not belong to this engine").WithComponent("boltstore")
	}
	return bt, nil
}

func (e *Engine) active(op string, t storage.Transaction) (*txn, error) {
	bt, err := e.own(op, t)
	if err != nil {
		return nil, err
	}
	if err := bt.ctx.EnsureActive(op); err != nil {
		return nil, err
	}
	return bt, nil
}

// bucket resolves a bucket inside the transaction.
func (t *txn) bucket(name []byte) (*bbolt.Bucket, error) {
	b := t.tx.Bucket(name)
	if b == nil {
		return nil, dberror.NotFound("Bucket", "bucket %q missing", name)
	}
	return b, nil
}

func encodeRID(dst []byte, rid uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, rid)
}

func decodeRID(src []byte) (uint64, error) {
	if len(src) != ridSize {
		return 0, fmt.Errorf("row location has %d bytes, want %d", len(src), ridSize)
	}
	return binary.BigEndian.Uint64(src), nil
}

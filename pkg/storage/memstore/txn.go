package memstore

import (
	"slices"
	"sync"

	"tablegen/pkg/concurrency/transaction"
)

// txn is the engine's transaction handle. Writers register a publish and a
// discard hook for everything they stage; exactly one set runs at finish.
type txn struct {
	ctx    *transaction.TransactionContext
	engine *Engine

	mu       sync.Mutex
	onCommit []func()
	onAbort  []func()
}

func (t *txn) Context() *transaction.TransactionContext {
	return t.ctx
}

func (t *txn) stage(commit, abort func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommit = append(t.onCommit, commit)
	t.onAbort = append(t.onAbort, abort)
}

// finish runs commit hooks in staging order or abort hooks in reverse.
func (t *txn) finish(commit bool) {
	t.mu.Lock()
	hooks := t.onCommit
	if !commit {
		hooks = slices.Clone(t.onAbort)
		slices.Reverse(hooks)
	}
	t.onCommit, t.onAbort = nil, nil
	t.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// visible reports whether a record owned by owner can be seen by reader.
// Owner zero marks a committed record.
func visible(owner, reader transaction.TransactionID, dead bool) bool {
	return !dead && (owner == 0 || owner == reader)
}

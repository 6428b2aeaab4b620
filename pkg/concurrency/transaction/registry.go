package transaction

import (
	"sync"
	"sync/atomic"

	"tablegen/pkg/dberror"
)

// TransactionRegistry issues transaction identifiers and tracks the contexts
// of transactions that have not been removed yet.
type TransactionRegistry struct {
	next     atomic.Uint64
	contexts map[TransactionID]*TransactionContext
	mutex    sync.RWMutex
}

// NewTransactionRegistry creates a new transaction registry
func NewTransactionRegistry() *TransactionRegistry {
	return &TransactionRegistry{
		contexts: make(map[TransactionID]*TransactionContext),
	}
}

// Begin creates a new transaction context and registers it
func (tr *TransactionRegistry) Begin() *TransactionContext {
	tid := TransactionID(tr.next.Add(1))
	ctx := NewTransactionContext(tid)

	tr.mutex.Lock()
	tr.contexts[tid] = ctx
	tr.mutex.Unlock()

	return ctx
}

// Get retrieves a transaction context by ID
func (tr *TransactionRegistry) Get(tid TransactionID) (*TransactionContext, error) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	ctx, exists := tr.contexts[tid]
	if !exists {
		return nil, dberror.NotFound("Get", "transaction %s not found", tid)
	}
	return ctx, nil
}

// Remove removes a transaction context from the registry
func (tr *TransactionRegistry) Remove(tid TransactionID) {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	delete(tr.contexts, tid)
}

// GetActive returns all active transaction contexts
func (tr *TransactionRegistry) GetActive() []*TransactionContext {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	active := make([]*TransactionContext, 0)
	for _, ctx := range tr.contexts {
		if ctx.IsActive() {
			active = append(active, ctx)
		}
	}
	return active
}

// Count returns the number of registered transactions
func (tr *TransactionRegistry) Count() int {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()
	return len(tr.contexts)
}

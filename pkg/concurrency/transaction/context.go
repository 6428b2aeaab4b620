package transaction

import (
	"fmt"
	"sync"
	"time"

	"tablegen/pkg/dberror"
)

// TransactionStatus represents the current state of a transaction
type TransactionStatus int

const (
	TxActive TransactionStatus = iota
	TxCommitting
	TxAborting
	TxCommitted
	TxAborted
)

func (ts TransactionStatus) String() string {
	switch ts {
	case TxActive:
		return "ACTIVE"
	case TxCommitting:
		return "COMMITTING"
	case TxAborting:
		return "ABORTING"
	case TxCommitted:
		return "COMMITTED"
	case TxAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// TransactionStats is a snapshot of what a transaction has touched.
type TransactionStats struct {
	TuplesRead    int
	TuplesWritten int
	IndexEntries  int
	PagesWritten  int
}

// TransactionContext carries the lifecycle and counters of one transaction.
// Storage engines embed it in their own transaction handles.
type TransactionContext struct {
	ID TransactionID

	status    TransactionStatus
	startTime time.Time
	endTime   time.Time
	mutex     sync.RWMutex

	tuplesRead    int
	tuplesWritten int
	indexEntries  int
	pagesWritten  int
}

func NewTransactionContext(tid TransactionID) *TransactionContext {
	return &TransactionContext{
		ID:        tid,
		status:    TxActive,
		startTime: time.Now(),
	}
}

// IsActive returns true if the transaction is still active
func (tc *TransactionContext) IsActive() bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status == TxActive
}

func (tc *TransactionContext) GetStatus() TransactionStatus {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status
}

// EnsureActive fails with TXN_STATE unless the transaction is active.
func (tc *TransactionContext) EnsureActive(op string) error {
	if status := tc.GetStatus(); status != TxActive {
		return dberror.TxnState(op, "transaction %s is %s", tc.ID, status)
	}
	return nil
}

// BeginFinish moves an active transaction into COMMITTING or ABORTING.
// Only one finish may be in progress; any other starting state fails with
// TXN_STATE.
func (tc *TransactionContext) BeginFinish(commit bool) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.status != TxActive {
		return dberror.TxnState("Finish", "transaction %s is %s", tc.ID, tc.status)
	}
	if commit {
		tc.status = TxCommitting
	} else {
		tc.status = TxAborting
	}
	return nil
}

// CompleteFinish records the terminal state after BeginFinish.
func (tc *TransactionContext) CompleteFinish(committed bool) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if committed {
		tc.status = TxCommitted
	} else {
		tc.status = TxAborted
	}
	tc.endTime = time.Now()
}

// RecordTupleRead increments the tuples read counter
func (tc *TransactionContext) RecordTupleRead() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.tuplesRead++
}

// RecordTupleWrite increments the tuples written counter
func (tc *TransactionContext) RecordTupleWrite() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.tuplesWritten++
}

// RecordIndexEntry increments the index entries counter
func (tc *TransactionContext) RecordIndexEntry() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.indexEntries++
}

// RecordPageWrite increments the pages written counter
func (tc *TransactionContext) RecordPageWrite() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.pagesWritten++
}

// GetStatistics returns a snapshot of transaction statistics
func (tc *TransactionContext) GetStatistics() TransactionStats {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return TransactionStats{
		TuplesRead:    tc.tuplesRead,
		TuplesWritten: tc.tuplesWritten,
		IndexEntries:  tc.indexEntries,
		PagesWritten:  tc.pagesWritten,
	}
}

// Duration returns how long the transaction has been running
func (tc *TransactionContext) Duration() time.Duration {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.durationLocked()
}

func (tc *TransactionContext) durationLocked() time.Duration {
	endTime := tc.endTime
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(tc.startTime)
}

// String returns a string representation of the transaction context
func (tc *TransactionContext) String() string {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return fmt.Sprintf("Transaction %s [Status=%s, Duration=%v, Written=%d, Read=%d]",
		tc.ID, tc.status, tc.durationLocked(), tc.tuplesWritten, tc.tuplesRead)
}

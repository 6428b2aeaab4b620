package transaction

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablegen/pkg/dberror"
)

// TestTransactionStatus_String tests the string representation of transaction statuses
func TestTransactionStatus_String(t *testing.T) {
	tests := []struct {
		status   TransactionStatus
		expected string
	}{
		{TxActive, "ACTIVE"},
		{TxCommitting, "COMMITTING"},
		{TxAborting, "ABORTING"},
		{TxCommitted, "COMMITTED"},
		{TxAborted, "ABORTED"},
		{TransactionStatus(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestTransactionContext_Lifecycle(t *testing.T) {
	tc := NewTransactionContext(7)
	assert.True(t, tc.IsActive())
	require.NoError(t, tc.EnsureActive("Insert"))

	require.NoError(t, tc.BeginFinish(true))
	assert.Equal(t, TxCommitting, tc.GetStatus())
	assert.ErrorIs(t, tc.BeginFinish(false), dberror.ErrTxnState)

	tc.CompleteFinish(true)
	assert.Equal(t, TxCommitted, tc.GetStatus())
	assert.ErrorIs(t, tc.EnsureActive("Insert"), dberror.ErrTxnState)

	d := tc.Duration()
	assert.Equal(t, d, tc.Duration(), "duration is frozen once finished")
}

func TestTransactionContext_Abort(t *testing.T) {
	tc := NewTransactionContext(1)
	require.NoError(t, tc.BeginFinish(false))
	assert.Equal(t, TxAborting, tc.GetStatus())
	tc.CompleteFinish(false)
	assert.Equal(t, TxAborted, tc.GetStatus())
	assert.Contains(t, tc.String(), "TID-1")
	assert.Contains(t, tc.String(), "ABORTED")
}

func TestTransactionContext_Statistics(t *testing.T) {
	tc := NewTransactionContext(1)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tc.RecordTupleWrite()
			tc.RecordTupleRead()
			tc.RecordIndexEntry()
		}()
	}
	wg.Wait()
	tc.RecordPageWrite()

	assert.Equal(t, TransactionStats{TuplesRead: 10, TuplesWritten: 10, IndexEntries: 10, PagesWritten: 1}, tc.GetStatistics())
}

func TestTransactionRegistry(t *testing.T) {
	tr := NewTransactionRegistry()

	a := tr.Begin()
	b := tr.Begin()
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.ID.IsValid())
	assert.Equal(t, 2, tr.Count())

	got, err := tr.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, b.BeginFinish(true))
	b.CompleteFinish(true)
	active := tr.GetActive()
	require.Len(t, active, 1)
	assert.Same(t, a, active[0])

	tr.Remove(a.ID)
	_, err = tr.Get(a.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	assert.Equal(t, 1, tr.Count())
}

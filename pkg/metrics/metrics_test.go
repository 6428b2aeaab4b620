package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := New(nil)

	c.BatchInserted("t1", 10000)
	c.BatchInserted("t1", 5)
	c.BatchInserted("t2", 3)
	c.IndexEntriesInserted("idx", 42)

	assert.Equal(t, float64(10005), testutil.ToFloat64(c.rowsInserted.WithLabelValues("t1")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.batches.WithLabelValues("t1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.batches.WithLabelValues("t2")))
	assert.Equal(t, float64(42), testutil.ToFloat64(c.indexEntries.WithLabelValues("idx")))
}

func TestCollector_BuildFinished(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := New(reg)

	c.BuildFinished(KindTable, 20*time.Millisecond, nil)
	c.BuildFinished(KindIndex, time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(0), testutil.ToFloat64(c.failures.WithLabelValues(KindTable)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.failures.WithLabelValues(KindIndex)))

	const want = `
# HELP tablegen_build_failures_total Table loads and index builds that were aborted.
# TYPE tablegen_build_failures_total counter
tablegen_build_failures_total{kind="index"} 1
tablegen_build_failures_total{kind="table"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "tablegen_build_failures_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(c.buildDuration))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.BatchInserted("t1", 7)

	path := filepath.Join(t.TempDir(), "tablegen.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tablegen_rows_inserted_total{table="t1"} 7`)
}

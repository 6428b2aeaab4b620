// Package metrics exposes load and index-build counters as Prometheus
// collectors. A run has no HTTP surface, so results are written out once in
// the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Build kinds used as the "kind" label.
const (
	KindTable = "table"
	KindIndex = "index"
)

// Collector records what a generation run did.
type Collector struct {
	rowsInserted  *prometheus.CounterVec
	batches       *prometheus.CounterVec
	indexEntries  *prometheus.CounterVec
	failures      *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
}

// New builds a Collector and registers it with reg. A nil reg leaves the
// collectors unregistered, which tests use to inspect values directly.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablegen_rows_inserted_total",
			Help: "Rows inserted into generated tables.",
		}, []string{"table"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablegen_batches_total",
			Help: "Generation batches completed per table.",
		}, []string{"table"}),
		indexEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablegen_index_entries_total",
			Help: "Entries inserted into populated indexes.",
		}, []string{"index"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablegen_build_failures_total",
			Help: "Table loads and index builds that were aborted.",
		}, []string{"kind"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tablegen_build_duration_seconds",
			Help:    "Wall time of one table load or index build.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(c.rowsInserted, c.batches, c.indexEntries, c.failures, c.buildDuration)
	}
	return c
}

// BatchInserted counts one finished batch of rows for table.
func (c *Collector) BatchInserted(table string, rows int) {
	c.rowsInserted.WithLabelValues(table).Add(float64(rows))
	c.batches.WithLabelValues(table).Inc()
}

// IndexEntriesInserted counts entries added to index.
func (c *Collector) IndexEntriesInserted(index string, n uint64) {
	c.indexEntries.WithLabelValues(index).Add(float64(n))
}

// BuildFinished observes one build of the given kind. Failed builds are
// counted separately but still observed.
func (c *Collector) BuildFinished(kind string, d time.Duration, err error) {
	c.buildDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err != nil {
		c.failures.WithLabelValues(kind).Inc()
	}
}

// WriteTextfile writes everything g gathers to path, replacing the file
// atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

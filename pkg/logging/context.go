package logging

import (
	"log/slog"
)

// WithRun creates a logger tagged with a generation run identifier.
// Every table and index built by one run shares it.
//
// Example:
//
//	log := logging.WithRun(runID)
//	log.Info("run started", "tables", len(specs))
func WithRun(runID string) *slog.Logger {
	return GetLogger().With("run_id", runID)
}

// WithTx creates a logger with transaction context.
//
// Example:
//
//	log := logging.WithTx(txID)
//	log.Debug("committed", "rows", count)
func WithTx(txID uint64) *slog.Logger {
	return GetLogger().With("tx_id", txID)
}

// WithTable creates a logger with table context.
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithIndex creates a logger with index context.
func WithIndex(indexName string) *slog.Logger {
	return GetLogger().With("index", indexName)
}

// WithComponent creates a logger with component/subsystem context.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("load aborted", "table", name)
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// Package logging provides the process-wide structured logger.
//
// The package wraps [log/slog] and exposes a single global logger that is
// initialized once and then retrieved through GetLogger. Every subsystem
// logs through this package so level, format and destination are set in one
// place.
//
// # Initialisation
//
// Call Init once at program startup, before starting goroutines that log:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// If GetLogger is called before Init, an INFO-level text logger on stderr is
// created lazily.
//
// # Context helpers
//
// Helpers return child loggers carrying structured fields:
//
//	log := logging.WithRun(runID)     // adds run_id
//	log := logging.WithTable(name)    // adds table
//	log := logging.WithIndex(name)    // adds index
//	log := logging.WithTx(txID)       // adds tx_id
package logging

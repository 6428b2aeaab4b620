package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"tablegen/pkg/ui"
)

// flags holds the global options. The *Set fields record whether a flag was
// given, so only explicit flags override the run file.
type flags struct {
	logLevel    string
	logLevelSet bool
	logFormat   string
	logFmtSet   bool

	seed        uint64
	seedSet     bool
	seedScope   string
	scopeSet    bool
	batchSize   uint32
	batchSet    bool
	parallelism int
	parSet      bool

	storage    string
	storageSet bool
	path       string
	pathSet    bool
	noSync     bool

	metricsFile string
	progress    bool
}

func main() {
	var f flags

	app := kingpin.New(filepath.Base(os.Args[0]), "Schema-driven table and secondary index generator.").UsageWriter(os.Stdout)
	app.HelpFlag.Short('h')

	app.Flag("log.level", "Log level: debug, info, warn, error.").IsSetByUser(&f.logLevelSet).Default("info").EnumVar(&f.logLevel, "debug", "info", "warn", "error")
	app.Flag("log.format", "Log format: text or json.").IsSetByUser(&f.logFmtSet).Default("text").EnumVar(&f.logFormat, "text", "json")
	app.Flag("seed", "Run seed every table derives its random stream from.").IsSetByUser(&f.seedSet).Uint64Var(&f.seed)
	app.Flag("seed-scope", "Reseed once per table (run) or before every draw (call).").IsSetByUser(&f.scopeSet).EnumVar(&f.seedScope, "run", "call")
	app.Flag("batch-size", "Rows generated per batch.").IsSetByUser(&f.batchSet).Uint32Var(&f.batchSize)
	app.Flag("parallelism", "Tables or indexes built at once.").IsSetByUser(&f.parSet).IntVar(&f.parallelism)
	app.Flag("storage", "Storage engine: memory or bolt.").IsSetByUser(&f.storageSet).EnumVar(&f.storage, "memory", "bolt")
	app.Flag("path", "Database file of the bolt engine.").IsSetByUser(&f.pathSet).StringVar(&f.path)
	app.Flag("no-sync", "Skip fsync on bolt commits.").BoolVar(&f.noSync)
	app.Flag("metrics-file", "Write Prometheus metrics in textfile format to this path after the run.").StringVar(&f.metricsFile)
	app.Flag("progress", "Print a line per inserted batch to stderr.").BoolVar(&f.progress)

	loadCmd := app.Command("load", "Build the tables and indexes described by a run file.")
	loadFile := loadCmd.Arg("config", "Run file (YAML).").Required().ExistingFile()

	builtinCmd := app.Command("builtin", "Build the built-in test tables and indexes.")
	builtinMiniRunner := builtinCmd.Flag("mini-runner", "Also build the mini-runner tables.").Bool()
	builtinMiniIndexes := builtinCmd.Flag("mini-runner-indexes", "Also build the mini-runner index tables and indexes.").Bool()

	validateCmd := app.Command("validate", "Check a run file and print what it would build.")
	validateFile := validateCmd.Arg("config", "Run file (YAML).").Required().ExistingFile()

	parsedCmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	var err error
	switch parsedCmd {
	case loadCmd.FullCommand():
		err = runLoad(ctx, os.Stdout, f, *loadFile)
	case builtinCmd.FullCommand():
		err = runBuiltin(ctx, os.Stdout, f, *builtinMiniRunner, *builtinMiniIndexes)
	case validateCmd.FullCommand():
		err = runValidate(os.Stdout, f, *validateFile)
	}
	stop()
	os.Exit(checkError(os.Stderr, err))
}

func checkError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if _, reported := err.(reportedError); !reported {
		fmt.Fprint(w, ui.RenderErrors(err))
	}
	return 1
}

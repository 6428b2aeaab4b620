package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"tablegen/pkg/catalog"
	"tablegen/pkg/config"
	"tablegen/pkg/loader"
	"tablegen/pkg/logging"
	"tablegen/pkg/metrics"
	"tablegen/pkg/storage"
	"tablegen/pkg/storage/boltstore"
	"tablegen/pkg/storage/memstore"
	"tablegen/pkg/ui"
)

// reportedError wraps a failure already rendered to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// applyFlags overrides run-file options with explicitly given flags.
func applyFlags(cfg *config.Config, f flags) {
	if f.logLevelSet {
		cfg.Log.Level = f.logLevel
	}
	if f.logFmtSet {
		cfg.Log.Format = f.logFormat
	}
	if f.seedSet {
		cfg.Seed = f.seed
	}
	if f.scopeSet {
		cfg.SeedScope = f.seedScope
	}
	if f.batchSet {
		cfg.BatchSize = f.batchSize
	}
	if f.parSet {
		cfg.Parallelism = f.parallelism
	}
	if f.storageSet {
		cfg.Storage.Engine = f.storage
	}
	if f.pathSet {
		cfg.Storage.Path = f.path
	}
	if f.noSync {
		cfg.Storage.NoSync = true
	}
	cfg.ApplyDefaults()
}

func openEngine(cfg config.StorageConfig) (storage.Engine, error) {
	switch cfg.Engine {
	case config.EngineBolt:
		return boltstore.Open(cfg.Path, boltstore.Options{NoSync: cfg.NoSync})
	default:
		return memstore.New(), nil
	}
}

func runLoad(ctx context.Context, out io.Writer, f flags, path string) error {
	cfg, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	return run(ctx, out, f, cfg)
}

func runBuiltin(ctx context.Context, out io.Writer, f flags, miniRunner, miniIndexes bool) error {
	cfg := &config.Config{Builtin: config.BuiltinConfig{
		TestTables:        true,
		MiniRunner:        miniRunner,
		MiniRunnerIndexes: miniIndexes,
	}}
	return run(ctx, out, f, cfg)
}

func run(ctx context.Context, out io.Writer, f flags, cfg *config.Config) (err error) {
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg, err := cfg.LoggingConfig()
	if err != nil {
		return err
	}
	if err := logging.Init(logCfg); err != nil {
		return err
	}
	defer logging.Close()

	tables, indexes, err := cfg.Specs()
	if err != nil {
		return err
	}
	opts, err := cfg.LoaderOptions()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts.Recorder = metrics.New(reg)
	if f.progress {
		opts.Observer = ui.NewProgress(os.Stderr).Observe
	}

	engine, err := openEngine(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := engine.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	report, runErr := loader.New(engine, catalog.New(), opts).GenerateAll(ctx, tables, indexes)
	fmt.Fprint(out, ui.RenderReport(report, runErr))

	if f.metricsFile != "" {
		if err := metrics.WriteTextfile(f.metricsFile, reg); err != nil {
			return err
		}
	}
	if runErr != nil {
		return reportedError{runErr}
	}
	return nil
}

func runValidate(out io.Writer, f flags, path string) error {
	cfg, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}
	tables, indexes, err := cfg.Specs()
	if err != nil {
		return err
	}
	fmt.Fprint(out, ui.RenderPlan(tables, indexes))
	return nil
}

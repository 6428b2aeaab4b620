// Package config loads the YAML description of a generation run: the
// tables and indexes to build, the random seed, the storage engine and the
// logging setup.
//
// Loading is strict. Unknown keys are rejected by the decoder, struct tags
// are checked with validator, and the semantic checks (types, clone
// references, index sources, value ranges) report every problem at once.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"tablegen/pkg/dberror"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultSeedScope       = "run"
	DefaultBatchSize       = 10000
	DefaultParallelism     = 1
	DefaultNullProbability = 0.1
	DefaultEngine          = EngineMemory
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Storage engines.
const (
	EngineMemory = "memory"
	EngineBolt   = "bolt"
)

// Config is the root of a run file.
type Config struct {
	Seed            uint64   `yaml:"seed"`
	SeedScope       string   `yaml:"seed_scope" validate:"omitempty,oneof=run call"`
	BatchSize       uint32   `yaml:"batch_size"`
	Parallelism     int      `yaml:"parallelism" validate:"gte=0"`
	NullProbability *float64 `yaml:"null_probability" validate:"omitempty,gte=0,lte=1"`

	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Builtin BuiltinConfig `yaml:"builtin"`

	Tables  []TableConfig `yaml:"tables" validate:"dive"`
	Indexes []IndexConfig `yaml:"indexes" validate:"dive"`
}

// StorageConfig selects the engine tables are written to.
type StorageConfig struct {
	Engine string `yaml:"engine" validate:"omitempty,oneof=memory bolt"`
	Path   string `yaml:"path" validate:"required_if=Engine bolt"`
	NoSync bool   `yaml:"no_sync"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Path   string `yaml:"path"`
}

// BuiltinConfig adds the built-in catalogs to the run.
type BuiltinConfig struct {
	TestTables        bool `yaml:"test_tables"`
	MiniRunner        bool `yaml:"mini_runner"`
	MiniRunnerIndexes bool `yaml:"mini_runner_indexes"`
}

// TableConfig declares one table.
type TableConfig struct {
	Name    string         `yaml:"name" validate:"required"`
	Rows    uint64         `yaml:"rows"`
	Columns []ColumnConfig `yaml:"columns" validate:"required,min=1,dive"`
}

// ColumnConfig declares one column. CloneOf names an earlier column of the
// same table whose values the column repeats; Distribution, Min and Max are
// ignored for clones, and a clone is nullable exactly when its source is.
type ColumnConfig struct {
	Name         string `yaml:"name" validate:"required"`
	Type         string `yaml:"type" validate:"required"`
	Nullable     bool   `yaml:"nullable"`
	Distribution string `yaml:"distribution" validate:"required_without=CloneOf"`
	Min          int64  `yaml:"min"`
	Max          int64  `yaml:"max"`
	CloneOf      string `yaml:"clone_of"`
}

// IndexConfig declares one secondary index.
type IndexConfig struct {
	Name    string              `yaml:"name" validate:"required"`
	Table   string              `yaml:"table" validate:"required"`
	Unique  bool                `yaml:"unique"`
	Type    string              `yaml:"type" validate:"omitempty,oneof=hash ordered btree HASH ORDERED BTREE"`
	Columns []IndexColumnConfig `yaml:"columns" validate:"required,min=1,dive"`
}

// IndexColumnConfig declares one key column projected from Source.
type IndexColumnConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Type     string `yaml:"type" validate:"required"`
	Nullable bool   `yaml:"nullable"`
	Source   string `yaml:"source" validate:"required"`
}

// Load reads, defaults and validates the run file at path.
func Load(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile reads and defaults the run file at path without validating it,
// so callers can override options first.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeConfiguration, "Load", "Config")
	}
	return Decode(data)
}

// Parse decodes a run file, applies defaults and validates it. An empty
// document is a valid run with nothing to build.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode strictly decodes a run file and applies defaults.
func Decode(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, dberror.Configuration("Decode", "decode run file: %v", err).WithComponent("Config")
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset option.
func (c *Config) ApplyDefaults() {
	if c.SeedScope == "" {
		c.SeedScope = DefaultSeedScope
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Parallelism == 0 {
		c.Parallelism = DefaultParallelism
	}
	if c.NullProbability == nil {
		p := DefaultNullProbability
		c.NullProbability = &p
	}
	if c.Storage.Engine == "" {
		c.Storage.Engine = DefaultEngine
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct-tag checks and then the semantic checks, and
// returns every problem found as one error.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return dberror.Configuration("Validate", "%v", err).WithComponent("Config")
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fieldError(fe))
		}
		// Semantic checks assume the structure is sound.
		return result.ErrorOrNil()
	}

	if _, _, err := c.Specs(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	var msg string
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		msg = "is required"
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		msg = fmt.Sprintf("must have at least %s entries", fe.Param())
	default:
		msg = fmt.Sprintf("failed %q check (%s)", fe.Tag(), fe.Param())
	}
	return dberror.Configuration("Validate", "%s %s", field, msg).WithComponent("Config")
}

package config

import (
	"github.com/hashicorp/go-multierror"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/datagen"
	"tablegen/pkg/dberror"
	"tablegen/pkg/loader"
	"tablegen/pkg/logging"
	"tablegen/pkg/types"
)

const specsOp = "Specs"

func configErr(format string, args ...any) error {
	return dberror.Configuration(specsOp, format, args...).WithComponent("Config")
}

// Specs converts the run into the table and index specs to build. Built-in
// catalogs come first, in the order test tables, mini-runner tables,
// mini-runner index tables, followed by the configured tables and indexes.
//
// Every problem is reported: unknown types and distributions, clone
// references that do not name an earlier column, duplicate names, index
// tables or source columns that do not exist and value ranges a type cannot
// hold.
func (c *Config) Specs() ([]*datagen.TableSpec, []*datagen.IndexSpec, error) {
	var result *multierror.Error
	var tables []*datagen.TableSpec
	var indexes []*datagen.IndexSpec

	if c.Builtin.TestTables {
		tables = append(tables, loader.TestTableSpecs()...)
		indexes = append(indexes, loader.TestIndexSpecs()...)
	}
	if c.Builtin.MiniRunner {
		tables = append(tables, loader.MiniRunnerTableSpecs()...)
	}
	if c.Builtin.MiniRunnerIndexes {
		t, i := loader.MiniRunnerIndexSpecs()
		tables = append(tables, t...)
		indexes = append(indexes, i...)
	}

	byName := make(map[string]*datagen.TableSpec, len(tables)+len(c.Tables))
	for _, spec := range tables {
		byName[spec.Name] = spec
	}

	for _, tc := range c.Tables {
		spec, err := tc.spec()
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, dup := byName[spec.Name]; dup {
			result = multierror.Append(result, configErr("table %q is declared twice", spec.Name))
			continue
		}
		if err := spec.Validate(); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		byName[spec.Name] = spec
		tables = append(tables, spec)
	}

	seenIndex := make(map[string]struct{}, len(indexes)+len(c.Indexes))
	for _, spec := range indexes {
		seenIndex[spec.Name] = struct{}{}
	}
	for _, ic := range c.Indexes {
		spec, err := ic.spec()
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, dup := seenIndex[spec.Name]; dup {
			result = multierror.Append(result, configErr("index %q is declared twice", spec.Name))
			continue
		}
		seenIndex[spec.Name] = struct{}{}
		if err := checkIndexSources(spec, byName[spec.Table]); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		indexes = append(indexes, spec)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, nil, err
	}
	return tables, indexes, nil
}

func (tc TableConfig) spec() (*datagen.TableSpec, error) {
	var result *multierror.Error
	spec := &datagen.TableSpec{Name: tc.Name, Rows: tc.Rows}
	positions := make(map[string]int, len(tc.Columns))

	for _, cc := range tc.Columns {
		t, err := types.ParseType(cc.Type)
		if err != nil {
			result = multierror.Append(result, configErr("table %q column %q: %v", tc.Name, cc.Name, err))
			continue
		}

		var col *datagen.ColumnSpec
		if cc.CloneOf != "" {
			ref, ok := positions[cc.CloneOf]
			if !ok {
				result = multierror.Append(result, configErr("table %q column %q: clone_of %q does not name an earlier column", tc.Name, cc.Name, cc.CloneOf))
				continue
			}
			src := spec.Columns[ref]
			if cc.Nullable && !src.Nullable {
				result = multierror.Append(result, configErr("table %q column %q: clone_of %q is not nullable", tc.Name, cc.Name, cc.CloneOf))
				continue
			}
			col = datagen.NewCloneColumn(cc.Name, t, src.Nullable, ref)
		} else {
			dist, err := datagen.ParseDistribution(cc.Distribution)
			if err != nil {
				result = multierror.Append(result, configErr("table %q column %q: %v", tc.Name, cc.Name, err))
				continue
			}
			col = datagen.NewColumn(cc.Name, t, cc.Nullable, dist, cc.Min, cc.Max)
		}

		if _, dup := positions[cc.Name]; !dup {
			positions[cc.Name] = len(spec.Columns)
		}
		spec.Columns = append(spec.Columns, col)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return spec, nil
}

func (ic IndexConfig) spec() (*datagen.IndexSpec, error) {
	var result *multierror.Error
	kind, err := schema.ParseIndexKind(ic.Type)
	if err != nil {
		result = multierror.Append(result, configErr("index %q: %v", ic.Name, err))
	}

	spec := &datagen.IndexSpec{Name: ic.Name, Table: ic.Table, Unique: ic.Unique, Kind: kind}
	for _, cc := range ic.Columns {
		t, err := types.ParseType(cc.Type)
		if err != nil {
			result = multierror.Append(result, configErr("index %q key column %q: %v", ic.Name, cc.Name, err))
			continue
		}
		spec.Columns = append(spec.Columns, datagen.IndexColumnSpec{
			Name:     cc.Name,
			Type:     t,
			Nullable: cc.Nullable,
			Source:   cc.Source,
		})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// checkIndexSources resolves an index's table and source columns against
// the declared specs.
func checkIndexSources(spec *datagen.IndexSpec, table *datagen.TableSpec) error {
	if table == nil {
		return configErr("index %q: table %q is not declared", spec.Name, spec.Table)
	}
	var result *multierror.Error
	for _, col := range spec.Columns {
		i := table.ColumnIndex(col.Source)
		if i < 0 {
			result = multierror.Append(result, configErr("index %q key column %q: table %q has no column %q", spec.Name, col.Name, table.Name, col.Source))
			continue
		}
		src := table.Columns[i]
		srcWidth, _ := src.Type.Size()
		keyWidth, _ := col.Type.Size()
		if srcWidth != keyWidth {
			result = multierror.Append(result, configErr("index %q key column %q is %s but source %q is %s", spec.Name, col.Name, col.Type, src.Name, src.Type))
		}
	}
	return result.ErrorOrNil()
}

// LoaderOptions returns the generator options of the run.
func (c *Config) LoaderOptions() (loader.Options, error) {
	scope, err := datagen.ParseSeedScope(c.SeedScope)
	if err != nil {
		return loader.Options{}, dberror.Configuration("LoaderOptions", "%v", err).WithComponent("Config")
	}
	return loader.Options{
		Seed:            c.Seed,
		SeedScope:       scope,
		NullProbability: c.nullProbability(),
		BatchSize:       c.BatchSize,
		Parallelism:     c.Parallelism,
	}, nil
}

// nullProbability maps an explicit zero to datagen.NoNulls, since the
// generator reads zero as unset.
func (c *Config) nullProbability() float64 {
	switch {
	case c.NullProbability == nil:
		return DefaultNullProbability
	case *c.NullProbability == 0:
		return datagen.NoNulls
	default:
		return *c.NullProbability
	}
}

// LoggingConfig returns the logging setup of the run.
func (c *Config) LoggingConfig() (logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, dberror.Configuration("LoggingConfig", "%v", err).WithComponent("Config")
	}
	return logging.Config{
		Level:      level,
		OutputPath: c.Log.Path,
		Format:     c.Log.Format,
	}, nil
}

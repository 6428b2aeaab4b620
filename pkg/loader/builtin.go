package loader

import (
	"fmt"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/datagen"
	"tablegen/pkg/types"
)

// Row counts of the built-in test tables.
const (
	Test1Rows    = 10000
	Test2Rows    = 1000
	AllTypesRows = 1000

	// vectorSize bounds the uniform columns of test_2.
	vectorSize = 2048
)

var (
	miniRunnerRows       = []uint64{1, 3, 5, 7, 10, 50, 100, 500, 1000, 2000, 5000, 10000, 20000, 50000, 100000, 200000, 500000, 1000000}
	miniRunnerIndexRows  = []uint64{1, 100, 1000, 10000}
	miniRunnerIndexKeys  = []int{1, 4, 8, 15}
	miniRunnerColumns    = 31
	miniRunnerRotateCol  = 15
	miniRunnerIndexWidth = 15
)

func serial(name string, t types.Type) *datagen.ColumnSpec {
	return datagen.NewColumn(name, t, false, datagen.Serial, 0, 0)
}

func uniform(name string, t types.Type, nullable bool, lo, hi int64) *datagen.ColumnSpec {
	return datagen.NewColumn(name, t, nullable, datagen.Uniform, lo, hi)
}

// TestTableSpecs returns the fixed tables used by execution tests. Every
// call builds new specs, so their Serial counters are independent.
func TestTableSpecs() []*datagen.TableSpec {
	return []*datagen.TableSpec{
		{Name: "empty_table", Rows: 0, Columns: []*datagen.ColumnSpec{
			serial("colA", types.IntegerType),
		}},
		{Name: "test_1", Rows: Test1Rows, Columns: []*datagen.ColumnSpec{
			serial("colA", types.IntegerType),
			uniform("colB", types.IntegerType, false, 0, 9),
			uniform("colC", types.IntegerType, false, 0, 9999),
			uniform("colD", types.IntegerType, false, 0, 99999),
		}},
		{Name: "test_2", Rows: Test2Rows, Columns: []*datagen.ColumnSpec{
			serial("col1", types.SmallIntType),
			uniform("col2", types.IntegerType, true, 0, 9),
			uniform("col3", types.BigIntType, false, 0, vectorSize),
			uniform("col4", types.IntegerType, true, 0, 2*vectorSize),
		}},
		{Name: "empty_table2", Rows: 0, Columns: []*datagen.ColumnSpec{
			serial("colA", types.IntegerType),
			uniform("colB", types.BooleanType, false, 0, 0),
		}},
		{Name: "all_types_table", Rows: AllTypesRows, Columns: allTypesColumns(false)},
		{Name: "all_types_empty_table", Rows: 0, Columns: allTypesColumns(true)},
	}
}

// allTypesColumns lists one column per generated type. The empty variant
// also carries DATE and DECIMAL, which only need a layout.
func allTypesColumns(empty bool) []*datagen.ColumnSpec {
	var cols []*datagen.ColumnSpec
	if empty {
		cols = append(cols,
			serial("date_col", types.DateType),
			serial("real_col", types.DecimalType))
	}
	return append(cols,
		serial("bool_col", types.BooleanType),
		uniform("tinyint_col", types.TinyIntType, false, 0, 127),
		datagen.NewColumn("smallint_col", types.SmallIntType, false, datagen.Serial, 0, 1000),
		uniform("int_col", types.IntegerType, false, 0, 0),
		uniform("bigint_col", types.BigIntType, false, 0, 1000))
}

// TestIndexSpecs returns the indexes over TestTableSpecs.
func TestIndexSpecs() []*datagen.IndexSpec {
	return []*datagen.IndexSpec{
		{Name: "index_empty", Table: "empty_table", Columns: []datagen.IndexColumnSpec{
			{Name: "index_colA", Type: types.IntegerType, Source: "colA"},
		}},
		{Name: "index_1", Table: "test_1", Columns: []datagen.IndexColumnSpec{
			{Name: "index_colA", Type: types.IntegerType, Source: "colA"},
		}},
		{Name: "index_2", Table: "test_2", Columns: []datagen.IndexColumnSpec{
			{Name: "index_col1", Type: types.SmallIntType, Source: "col1"},
		}},
		{Name: "index_2_multi", Table: "test_2", Columns: []datagen.IndexColumnSpec{
			{Name: "index_col1", Type: types.SmallIntType, Source: "col1"},
			{Name: "index_col2", Type: types.IntegerType, Nullable: true, Source: "col2"},
		}},
	}
}

// MiniRunnerTableName names a mini-runner table by its shape.
func MiniRunnerTableName(t types.Type, columns int, rows, cardinality uint64) string {
	return fmt.Sprintf("%sCol%dRow%dCar%d", t, columns, rows, cardinality)
}

// MiniRunnerIndexTableName names the table an index mini-runner builds on.
func MiniRunnerIndexTableName(t types.Type, rows uint64) string {
	return fmt.Sprintf("Index%sRow%d", t, rows)
}

// cardinalities returns 1, 2, 4, ... below rows, followed by rows itself.
func cardinalities(rows uint64) []uint64 {
	var out []uint64
	for c := uint64(1); c < rows; c *= 2 {
		out = append(out, c)
	}
	return append(out, rows)
}

// MiniRunnerTableSpecs returns the INTEGER tables swept by the execution
// mini-runners: one per (row count, cardinality) pair. Column 1 is Serial,
// columns 2-14 are Uniform over [0, rows-1], column 15 rotates over
// [0, cardinality] and every later column clones column 15.
func MiniRunnerTableSpecs() []*datagen.TableSpec {
	var specs []*datagen.TableSpec
	for _, rows := range miniRunnerRows {
		for _, card := range cardinalities(rows) {
			specs = append(specs, miniRunnerTable(types.IntegerType, rows, card))
		}
	}
	return specs
}

func miniRunnerTable(t types.Type, rows, card uint64) *datagen.TableSpec {
	cols := make([]*datagen.ColumnSpec, 0, miniRunnerColumns)
	rotate := miniRunnerRotateCol - 1
	for j := 1; j <= miniRunnerColumns; j++ {
		name := fmt.Sprintf("col%d", j)
		switch {
		case j == 1:
			cols = append(cols, serial(name, t))
		case j == miniRunnerRotateCol:
			cols = append(cols, datagen.NewColumn(name, t, false, datagen.Rotate, 0, int64(card)))
		case j > miniRunnerRotateCol:
			cols = append(cols, datagen.NewCloneColumn(name, t, false, rotate))
		default:
			cols = append(cols, uniform(name, t, false, 0, int64(rows)-1))
		}
	}
	return &datagen.TableSpec{
		Name:    MiniRunnerTableName(t, miniRunnerColumns, rows, card),
		Rows:    rows,
		Columns: cols,
	}
}

// MiniRunnerIndexSpecs returns the tables and indexes of the index
// mini-runners. Each table has 15 Serial INTEGER columns; its indexes are
// keyed on the first 1, 4, 8 and 15 columns.
func MiniRunnerIndexSpecs() ([]*datagen.TableSpec, []*datagen.IndexSpec) {
	var tables []*datagen.TableSpec
	var indexes []*datagen.IndexSpec
	t := types.IntegerType
	for _, rows := range miniRunnerIndexRows {
		name := MiniRunnerIndexTableName(t, rows)
		cols := make([]*datagen.ColumnSpec, miniRunnerIndexWidth)
		for j := range cols {
			cols[j] = serial(fmt.Sprintf("col%d", j+1), t)
		}
		tables = append(tables, &datagen.TableSpec{Name: name, Rows: rows, Columns: cols})

		for _, keys := range miniRunnerIndexKeys {
			key := make([]datagen.IndexColumnSpec, keys)
			for j := range key {
				col := fmt.Sprintf("col%d", j+1)
				key[j] = datagen.IndexColumnSpec{Name: col, Type: t, Source: col}
			}
			indexes = append(indexes, &datagen.IndexSpec{
				Name:    fmt.Sprintf("%s_index_%d", name, keys),
				Table:   name,
				Columns: key,
				Kind:    schema.OrderedIndex,
			})
		}
	}
	return tables, indexes
}

package datagen

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/dberror"
	"tablegen/pkg/types"
)

// ColumnSpec declares one generated or cloned table column.
//
// Build specs with NewColumn or NewCloneColumn. The Serial counter is the
// only mutable part and is advanced by Generate.
type ColumnSpec struct {
	Name         string
	Type         types.Type
	Nullable     bool
	Distribution Distribution
	Min, Max     int64

	// Clone marks a column whose batch aliases column CloneOf of the same
	// table. CloneOf must reference an earlier column.
	Clone   bool
	CloneOf int

	counter     int64
	counterLive bool
	exhausted   bool
}

// NewColumn declares a generated column.
func NewColumn(name string, t types.Type, nullable bool, dist Distribution, lo, hi int64) *ColumnSpec {
	return &ColumnSpec{
		Name:         name,
		Type:         t,
		Nullable:     nullable,
		Distribution: dist,
		Min:          lo,
		Max:          hi,
	}
}

// NewCloneColumn declares a column aliasing the column at index ref. Its
// type and nullability must match the referenced column.
func NewCloneColumn(name string, t types.Type, nullable bool, ref int) *ColumnSpec {
	return &ColumnSpec{
		Name:     name,
		Type:     t,
		Nullable: nullable,
		Clone:    true,
		CloneOf:  ref,
	}
}

// Counter returns the next value a Serial draw would emit.
func (c *ColumnSpec) Counter() int64 {
	if !c.counterLive {
		return c.Min
	}
	return c.counter
}

// ResetCounter rewinds the Serial counter to Min.
func (c *ColumnSpec) ResetCounter() {
	c.counter, c.counterLive, c.exhausted = c.Min, false, false
}

// advance moves the counter past n emitted values. Emitting hi itself
// exhausts the counter so the next draw cannot wrap.
func (c *ColumnSpec) advance(n, hi int64) {
	start := c.Counter()
	if uint64(hi)-uint64(start) == uint64(n-1) {
		c.exhausted = true
	}
	c.counter = start + n
	c.counterLive = true
}

// Validate checks a single generated column. Clone references are checked by
// TableSpec.Validate, which knows the column order.
func (c *ColumnSpec) Validate() error {
	const op = "ColumnSpec.Validate"

	if !c.Type.IsFixedWidth() {
		return dberror.UnsupportedType(op, "column %q: type %s is not fixed-width", c.Name, c.Type)
	}
	if c.Clone {
		return nil
	}

	if !c.Type.IsIntegral() && c.Type != types.BooleanType {
		return dberror.Configuration(op, "column %q: type %s cannot be generated", c.Name, c.Type)
	}

	switch c.Distribution {
	case Uniform, Serial:
	case Rotate:
		if c.Type == types.BooleanType {
			return dberror.Configuration(op, "column %q: boolean columns do not support %s", c.Name, c.Distribution)
		}
	default:
		return dberror.Configuration(op, "column %q: unsupported distribution %s", c.Name, c.Distribution)
	}

	if c.Type == types.BooleanType {
		return nil
	}
	if c.Distribution == Serial {
		// Max does not bound a Serial column; the counter runs to the type's limit.
		if !c.Type.Contains(c.Min) {
			return dberror.Configuration(op, "column %q: serial start %d not representable in %s", c.Name, c.Min, c.Type)
		}
		return nil
	}
	if c.Min > c.Max {
		return dberror.Configuration(op, "column %q: min %d exceeds max %d", c.Name, c.Min, c.Max)
	}
	if !c.Type.Contains(c.Min) || !c.Type.Contains(c.Max) {
		lo, hi, _ := c.Type.Range()
		return dberror.Configuration(op, "column %q: range [%d, %d] not representable in %s", c.Name, c.Min, c.Max, c.Type).
			WithDetail("%s holds [%d, %d]", c.Type, lo, hi)
	}
	return nil
}

// TableSpec declares a table, its row count and its columns. Column order is
// generation order and defines clone reference indexes.
type TableSpec struct {
	Name    string
	Rows    uint64
	Columns []*ColumnSpec
}

// Validate reports every problem in the table spec at once.
func (t *TableSpec) Validate() error {
	var result *multierror.Error

	if t.Name == "" {
		result = multierror.Append(result, dberror.Configuration("TableSpec.Validate", "table name is empty"))
	}
	if len(t.Columns) == 0 {
		result = multierror.Append(result, dberror.Configuration("TableSpec.Validate", "table %q has no columns", t.Name))
	}

	seen := make(map[string]struct{}, len(t.Columns))
	for i, col := range t.Columns {
		if col == nil {
			result = multierror.Append(result, dberror.Configuration("TableSpec.Validate", "table %q: column %d is nil", t.Name, i))
			continue
		}
		if _, dup := seen[col.Name]; dup {
			result = multierror.Append(result, dberror.Configuration("TableSpec.Validate", "table %q: duplicate column %q", t.Name, col.Name))
		}
		seen[col.Name] = struct{}{}

		if err := t.validateColumn(col); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if col.Clone {
			if err := t.validateClone(i, col); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	return result.ErrorOrNil()
}

// validateColumn checks generation rules only for tables that generate rows.
// An empty table only needs a plannable layout.
func (t *TableSpec) validateColumn(col *ColumnSpec) error {
	if t.Rows > 0 {
		return col.Validate()
	}
	if !col.Type.IsFixedWidth() {
		return dberror.UnsupportedType("TableSpec.Validate", "column %q: type %s is not fixed-width", col.Name, col.Type)
	}
	return nil
}

func (t *TableSpec) validateClone(i int, col *ColumnSpec) error {
	const op = "TableSpec.Validate"
	if col.CloneOf < 0 || col.CloneOf >= i {
		return dberror.Configuration(op, "table %q: clone column %q must reference an earlier column, got %d", t.Name, col.Name, col.CloneOf)
	}
	ref := t.Columns[col.CloneOf]
	if ref == nil {
		return nil
	}
	if ref.Type != col.Type {
		return dberror.Configuration(op, "table %q: clone column %q is %s but references %s column %q", t.Name, col.Name, col.Type, ref.Type, ref.Name)
	}
	if ref.Nullable != col.Nullable {
		return dberror.Configuration(op, "table %q: clone column %q has nullable=%t but references column %q with nullable=%t",
			t.Name, col.Name, col.Nullable, ref.Name, ref.Nullable)
	}
	return nil
}

// Root follows clone references from column i to the generated column whose
// batch it ultimately shares.
func (t *TableSpec) Root(i int) int {
	for t.Columns[i].Clone {
		i = t.Columns[i].CloneOf
	}
	return i
}

// ColumnIndex returns the position of the named column, or -1.
func (t *TableSpec) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// ResetCounters rewinds every Serial counter so the table spec can be loaded again.
func (t *TableSpec) ResetCounters() {
	for _, col := range t.Columns {
		col.ResetCounter()
	}
}

func (t *TableSpec) String() string {
	return fmt.Sprintf("%s(%d rows, %d columns)", t.Name, t.Rows, len(t.Columns))
}

// IndexColumnSpec declares one key column, projected from the table column
// named Source.
type IndexColumnSpec struct {
	Name     string
	Type     types.Type
	Nullable bool
	Source   string
}

// IndexSpec declares a secondary index over an existing table.
type IndexSpec struct {
	Name    string
	Table   string
	Columns []IndexColumnSpec
	Unique  bool
	Kind    schema.IndexKind
}

// Validate reports every structural problem in the index spec. Source columns are
// resolved later against the table's schema.
func (s *IndexSpec) Validate() error {
	const op = "IndexSpec.Validate"
	var result *multierror.Error

	if s.Name == "" {
		result = multierror.Append(result, dberror.Configuration(op, "index name is empty"))
	}
	if s.Table == "" {
		result = multierror.Append(result, dberror.Configuration(op, "index %q has no table", s.Name))
	}
	if len(s.Columns) == 0 {
		result = multierror.Append(result, dberror.Configuration(op, "index %q has no key columns", s.Name))
	}

	seen := make(map[string]struct{}, len(s.Columns))
	for _, col := range s.Columns {
		if _, dup := seen[col.Name]; dup {
			result = multierror.Append(result, dberror.Configuration(op, "index %q: duplicate key column %q", s.Name, col.Name))
		}
		seen[col.Name] = struct{}{}

		if col.Source == "" {
			result = multierror.Append(result, dberror.Configuration(op, "index %q: key column %q has no source column", s.Name, col.Name))
		}
		if !col.Type.IsFixedWidth() {
			result = multierror.Append(result, dberror.UnsupportedType(op, "index %q: key column %q has type %s", s.Name, col.Name, col.Type))
		}
	}

	return result.ErrorOrNil()
}

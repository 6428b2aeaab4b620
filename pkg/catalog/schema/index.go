package schema

import (
	"fmt"
	"strings"

	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/types"
)

// IndexKind selects the index structure a storage engine builds.
type IndexKind string

const (
	HashIndex    IndexKind = "HASH"
	OrderedIndex IndexKind = "ORDERED"
)

// ParseIndexKind resolves a case-insensitive kind name. An empty string
// selects the ordered index.
func ParseIndexKind(str string) (IndexKind, error) {
	switch strings.ToUpper(strings.TrimSpace(str)) {
	case "", "ORDERED", "BTREE":
		return OrderedIndex, nil
	case "HASH":
		return HashIndex, nil
	default:
		return "", fmt.Errorf("unknown index kind %q", str)
	}
}

func (k *IndexKind) UnmarshalText(text []byte) error {
	parsed, err := ParseIndexKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IndexColumn is one key column. Source is the table column it projects.
type IndexColumn struct {
	Name     string
	ID       primitives.ColumnID
	Type     types.Type
	Nullable bool
	Source   primitives.ColumnID
}

// IndexSchema describes the key of a secondary index. Key column identifiers
// are local to the index and independent of the table's.
type IndexSchema struct {
	IndexID   primitives.IndexID
	IndexName string
	TableID   primitives.TableID
	TableName string
	Columns   []IndexColumn
	Unique    bool
	Kind      IndexKind

	nameToIndex map[string]int
}

// NewIndexSchema validates key columns and builds the name lookup.
func NewIndexSchema(indexID primitives.IndexID, name string, table *Schema, columns []IndexColumn, unique bool, kind IndexKind) (*IndexSchema, error) {
	if name == "" {
		return nil, fmt.Errorf("index must have a name")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("index '%s' must have at least one key column", name)
	}
	if kind == "" {
		kind = OrderedIndex
	}

	s := &IndexSchema{
		IndexID:     indexID,
		IndexName:   name,
		TableID:     table.TableID,
		TableName:   table.TableName,
		Columns:     make([]IndexColumn, len(columns)),
		Unique:      unique,
		Kind:        kind,
		nameToIndex: make(map[string]int, len(columns)),
	}

	seenIDs := make(map[primitives.ColumnID]struct{}, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("index '%s': key column %d has no name", name, i)
		}
		if _, dup := s.nameToIndex[col.Name]; dup {
			return nil, fmt.Errorf("index '%s': duplicate key column '%s'", name, col.Name)
		}
		if _, dup := seenIDs[col.ID]; dup {
			return nil, fmt.Errorf("index '%s': duplicate key column id %s", name, col.ID)
		}
		if _, ok := table.ColumnByID(col.Source); !ok {
			return nil, fmt.Errorf("index '%s': key column '%s' projects unknown table column %s", name, col.Name, col.Source)
		}
		s.Columns[i] = col
		s.nameToIndex[col.Name] = i
		seenIDs[col.ID] = struct{}{}
	}
	return s, nil
}

// ColumnByName returns the named key column.
func (s *IndexSchema) ColumnByName(name string) (IndexColumn, bool) {
	idx, ok := s.nameToIndex[name]
	if !ok {
		return IndexColumn{}, false
	}
	return s.Columns[idx], true
}

// KeyFields returns the (identifier, type) pairs of the key in order.
func (s *IndexSchema) KeyFields() []layout.Field {
	fields := make([]layout.Field, len(s.Columns))
	for i, col := range s.Columns {
		fields[i] = layout.Field{ID: col.ID, Type: col.Type}
	}
	return fields
}

// Width returns the key column's fixed physical width.
func (c IndexColumn) Width() uint16 {
	w, _ := c.Type.Size()
	return w
}

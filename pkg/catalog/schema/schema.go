package schema

import (
	"fmt"

	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
)

// Schema is the ordered column list of one table.
type Schema struct {
	TableID   primitives.TableID
	TableName string
	Columns   []Column

	fieldNameToIndex map[string]int
	idToIndex        map[primitives.ColumnID]int
}

// NewSchema validates columns and builds the lookup tables. Column order is
// kept as given.
func NewSchema(tableID primitives.TableID, tableName string, columns []Column) (*Schema, error) {
	if tableName == "" {
		return nil, fmt.Errorf("schema must have a table name")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema must have at least one column")
	}

	s := &Schema{
		TableID:          tableID,
		TableName:        tableName,
		Columns:          make([]Column, len(columns)),
		fieldNameToIndex: make(map[string]int, len(columns)),
		idToIndex:        make(map[primitives.ColumnID]int, len(columns)),
	}

	for i, col := range columns {
		if err := col.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.fieldNameToIndex[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name '%s' in table '%s'", col.Name, tableName)
		}
		if _, dup := s.idToIndex[col.ID]; dup {
			return nil, fmt.Errorf("duplicate column id %s in table '%s'", col.ID, tableName)
		}
		s.Columns[i] = col
		s.fieldNameToIndex[col.Name] = i
		s.idToIndex[col.ID] = i
	}
	return s, nil
}

// GetFieldIndex returns the position of the named column or -1.
func (s *Schema) GetFieldIndex(fieldName string) int {
	if idx, ok := s.fieldNameToIndex[fieldName]; ok {
		return idx
	}
	return -1
}

// ColumnByName returns the named column.
func (s *Schema) ColumnByName(name string) (Column, bool) {
	idx, ok := s.fieldNameToIndex[name]
	if !ok {
		return Column{}, false
	}
	return s.Columns[idx], true
}

// ColumnByID returns the column with the given identifier.
func (s *Schema) ColumnByID(id primitives.ColumnID) (Column, bool) {
	idx, ok := s.idToIndex[id]
	if !ok {
		return Column{}, false
	}
	return s.Columns[idx], true
}

// NumFields returns the number of columns.
func (s *Schema) NumFields() int {
	return len(s.Columns)
}

// FieldNames returns the column names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Fields returns the (identifier, type) pairs the layout planner consumes.
func (s *Schema) Fields() []layout.Field {
	fields := make([]layout.Field, len(s.Columns))
	for i, col := range s.Columns {
		fields[i] = layout.Field{ID: col.ID, Type: col.Type}
	}
	return fields
}

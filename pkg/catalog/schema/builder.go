package schema

import (
	"tablegen/pkg/primitives"
	"tablegen/pkg/types"
)

// SchemaBuilder assembles a Schema, numbering columns from 1 in the order
// they are added.
type SchemaBuilder struct {
	tableID   primitives.TableID
	tableName string
	columns   []Column
}

// NewSchemaBuilder creates a new schema builder
func NewSchemaBuilder(tableID primitives.TableID, tableName string) *SchemaBuilder {
	return &SchemaBuilder{
		tableID:   tableID,
		tableName: tableName,
		columns:   make([]Column, 0),
	}
}

// AddColumn adds a NOT NULL column
func (sb *SchemaBuilder) AddColumn(name string, fieldType types.Type) *SchemaBuilder {
	return sb.add(name, fieldType, false)
}

// AddNullableColumn adds a column that may hold NULL
func (sb *SchemaBuilder) AddNullableColumn(name string, fieldType types.Type) *SchemaBuilder {
	return sb.add(name, fieldType, true)
}

func (sb *SchemaBuilder) add(name string, fieldType types.Type, nullable bool) *SchemaBuilder {
	sb.columns = append(sb.columns, Column{
		Name:     name,
		ID:       primitives.ColumnID(len(sb.columns) + 1),
		Type:     fieldType,
		Nullable: nullable,
	})
	return sb
}

// Build constructs the schema
func (sb *SchemaBuilder) Build() (*Schema, error) {
	return NewSchema(sb.tableID, sb.tableName, sb.columns)
}

package schema

import (
	"fmt"

	"tablegen/pkg/primitives"
	"tablegen/pkg/types"
)

// Column is the catalog's view of one table column.
type Column struct {
	Name     string              // Column name
	ID       primitives.ColumnID // Identifier assigned by the catalog, 1-based
	Type     types.Type          // Logical type
	Nullable bool                // Whether rows may hold NULL
}

// Width returns the column's fixed physical width; zero for variable-width types.
func (c Column) Width() uint16 {
	w, _ := c.Type.Size()
	return w
}

func (c Column) validate() error {
	if c.Name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if !types.IsValidType(c.Type) || c.Type == types.InvalidType {
		return fmt.Errorf("column '%s' has invalid type %s", c.Name, c.Type)
	}
	if c.ID == primitives.InvalidColumnID {
		return fmt.Errorf("column '%s' has no identifier", c.Name)
	}
	return nil
}

func (c Column) String() string {
	null := "NOT NULL"
	if c.Nullable {
		null = "NULL"
	}
	return fmt.Sprintf("%s %s %s", c.Name, c.Type, null)
}

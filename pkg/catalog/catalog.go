// Package catalog registers the tables and indexes of one generation run and
// hands out their object identifiers.
//
// The catalog is purely in memory. It owns the logical schemas and keeps a
// reference to the physical table or index a storage engine created for each
// of them, so the loader can resolve an index's source table by name.
package catalog

import (
	"sync"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/dberror"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
)

const component = "Catalog"

type tableEntry struct {
	schema  *schema.Schema
	table   storage.Table
	indexes []primitives.IndexID
}

type indexEntry struct {
	schema *schema.IndexSchema
	index  storage.Index
}

// Catalog maps table and index names to identifiers, schemas and storage
// handles. It is safe for concurrent use.
type Catalog struct {
	mu sync.RWMutex

	nextTableID primitives.TableID
	nextIndexID primitives.IndexID

	tableNames map[string]primitives.TableID
	tables     map[primitives.TableID]*tableEntry
	order      []primitives.TableID

	indexNames map[string]primitives.IndexID
	indexes    map[primitives.IndexID]*indexEntry
}

// New returns an empty catalog. Identifiers start at 1.
func New() *Catalog {
	return &Catalog{
		tableNames: make(map[string]primitives.TableID),
		tables:     make(map[primitives.TableID]*tableEntry),
		indexNames: make(map[string]primitives.IndexID),
		indexes:    make(map[primitives.IndexID]*indexEntry),
	}
}

// CreateTable registers a new table and assigns column identifiers in
// declaration order, starting at 1. Any ID already set on the columns is
// overwritten.
//
// Parameters:
//   - name: unique table name
//   - columns: ordered column definitions
//
// Returns the registered schema, or CONFIGURATION_ERROR when the name is
// taken or the columns do not form a valid schema.
func (c *Catalog) CreateTable(name string, columns []schema.Column) (*schema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tableNames[name]; exists {
		return nil, dberror.Configuration("CreateTable", "table %q already exists", name).WithComponent(component)
	}

	cols := make([]schema.Column, len(columns))
	for i, col := range columns {
		col.ID = primitives.ColumnID(i + 1)
		cols[i] = col
	}

	id := c.nextTableID + 1
	sch, err := schema.NewSchema(id, name, cols)
	if err != nil {
		return nil, dberror.Configuration("CreateTable", "%v", err).WithComponent(component)
	}

	c.nextTableID = id
	c.tableNames[name] = id
	c.tables[id] = &tableEntry{schema: sch}
	c.order = append(c.order, id)
	return sch, nil
}

// TableOID resolves a table name.
func (c *Catalog) TableOID(name string) (primitives.TableID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.tableNames[name]
	if !ok {
		return primitives.InvalidTableID, dberror.NotFound("TableOID", "table %q does not exist", name).WithComponent(component)
	}
	return id, nil
}

// Schema returns the schema registered for a table.
func (c *Catalog) Schema(id primitives.TableID) (*schema.Schema, error) {
	entry, err := c.table(id, "Schema")
	if err != nil {
		return nil, err
	}
	return entry.schema, nil
}

// SetTable attaches the storage table created for id. It can be called once.
func (c *Catalog) SetTable(id primitives.TableID, tbl storage.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.tables[id]
	if !ok {
		return dberror.NotFound("SetTable", "table id %d does not exist", id).WithComponent(component)
	}
	if entry.table != nil {
		return dberror.Configuration("SetTable", "table %q already has storage attached", entry.schema.TableName).WithComponent(component)
	}
	entry.table = tbl
	return nil
}

// Table returns the storage table attached to id.
func (c *Catalog) Table(id primitives.TableID) (storage.Table, error) {
	entry, err := c.table(id, "Table")
	if err != nil {
		return nil, err
	}
	if entry.table == nil {
		return nil, dberror.NotFound("Table", "table %q has no storage attached", entry.schema.TableName).WithComponent(component)
	}
	return entry.table, nil
}

// Tables returns table names in creation order.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	for i, id := range c.order {
		names[i] = c.tables[id].schema.TableName
	}
	return names
}

// CreateIndex registers an index over an existing table. Key column
// identifiers are assigned 1-based in declaration order; each column's
// Source must already name a column of the table.
//
// Returns CONFIGURATION_ERROR when the index name is taken or the key is
// invalid, and NOT_FOUND when the table is unknown.
func (c *Catalog) CreateIndex(name string, table primitives.TableID, columns []schema.IndexColumn, unique bool, kind schema.IndexKind) (*schema.IndexSchema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.indexNames[name]; exists {
		return nil, dberror.Configuration("CreateIndex", "index %q already exists", name).WithComponent(component)
	}
	tbl, ok := c.tables[table]
	if !ok {
		return nil, dberror.NotFound("CreateIndex", "table id %d does not exist", table).WithComponent(component)
	}

	cols := make([]schema.IndexColumn, len(columns))
	for i, col := range columns {
		col.ID = primitives.ColumnID(i + 1)
		cols[i] = col
	}

	id := c.nextIndexID + 1
	isch, err := schema.NewIndexSchema(id, name, tbl.schema, cols, unique, kind)
	if err != nil {
		return nil, dberror.Configuration("CreateIndex", "%v", err).WithComponent(component)
	}

	c.nextIndexID = id
	c.indexNames[name] = id
	c.indexes[id] = &indexEntry{schema: isch}
	tbl.indexes = append(tbl.indexes, id)
	return isch, nil
}

// IndexOID resolves an index name.
func (c *Catalog) IndexOID(name string) (primitives.IndexID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.indexNames[name]
	if !ok {
		return primitives.InvalidIndexID, dberror.NotFound("IndexOID", "index %q does not exist", name).WithComponent(component)
	}
	return id, nil
}

// IndexSchema returns the key schema registered for an index.
func (c *Catalog) IndexSchema(id primitives.IndexID) (*schema.IndexSchema, error) {
	entry, err := c.index(id, "IndexSchema")
	if err != nil {
		return nil, err
	}
	return entry.schema, nil
}

// SetIndex attaches the storage index created for id. It can be called once.
func (c *Catalog) SetIndex(id primitives.IndexID, idx storage.Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.indexes[id]
	if !ok {
		return dberror.NotFound("SetIndex", "index id %d does not exist", id).WithComponent(component)
	}
	if entry.index != nil {
		return dberror.Configuration("SetIndex", "index %q already has storage attached", entry.schema.IndexName).WithComponent(component)
	}
	entry.index = idx
	return nil
}

// Index returns the storage index attached to id.
func (c *Catalog) Index(id primitives.IndexID) (storage.Index, error) {
	entry, err := c.index(id, "Index")
	if err != nil {
		return nil, err
	}
	if entry.index == nil {
		return nil, dberror.NotFound("Index", "index %q has no storage attached", entry.schema.IndexName).WithComponent(component)
	}
	return entry.index, nil
}

// IndexesOf returns the indexes registered on a table, in creation order.
func (c *Catalog) IndexesOf(table primitives.TableID) ([]primitives.IndexID, error) {
	entry, err := c.table(table, "IndexesOf")
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]primitives.IndexID(nil), entry.indexes...), nil
}

func (c *Catalog) table(id primitives.TableID, op string) (*tableEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.tables[id]
	if !ok {
		return nil, dberror.NotFound(op, "table id %d does not exist", id).WithComponent(component)
	}
	return entry, nil
}

func (c *Catalog) index(id primitives.IndexID, op string) (*indexEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.indexes[id]
	if !ok {
		return nil, dberror.NotFound(op, "index id %d does not exist", id).WithComponent(component)
	}
	return entry, nil
}

package memstore

import (
	"sync"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/concurrency/transaction"
	"tablegen/pkg/dberror"
	"tablegen/pkg/iterator"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/utils/bitutil"
)

// PageSize is the byte budget of one heap page.
const PageSize = 4096

// slotOverhead is the per-slot bookkeeping charged against a page: owner
// plus liveness.
const slotOverhead = 9

// heapPage holds up to capacity rows back to back in data.
type heapPage struct {
	data   []byte
	nulls  []bitutil.Bitmap
	owners []transaction.TransactionID
	dead   []bool
}

func (p *heapPage) used() int {
	return len(p.owners)
}

// HeapTable is a paged, append-only heap of fixed-width rows.
type HeapTable struct {
	engine       *Engine
	sch          *schema.Schema
	layout       *layout.OffsetMap
	rowSize      int
	slotsPerPage int

	mu    sync.RWMutex
	pages []*heapPage
}

var _ storage.Table = (*HeapTable)(nil)

func newHeapTable(e *Engine, sch *schema.Schema, l *layout.OffsetMap) *HeapTable {
	rowSize := int(l.Size())
	perSlot := storage.RowImageSize(l) + slotOverhead
	return &HeapTable{
		engine:       e,
		sch:          sch,
		layout:       l,
		rowSize:      rowSize,
		slotsPerPage: max(1, PageSize/perSlot),
	}
}

func (t *HeapTable) Name() string {
	return t.sch.TableName
}

func (t *HeapTable) Layout() *layout.OffsetMap {
	return t.layout
}

// Schema returns the table's column list.
func (t *HeapTable) Schema() *schema.Schema {
	return t.sch
}

// SlotsPerPage returns the number of rows one page holds.
func (t *HeapTable) SlotsPerPage() int {
	return t.slotsPerPage
}

// NumPages returns the number of allocated pages.
func (t *HeapTable) NumPages() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pages)
}

func (t *HeapTable) BeginWrite(tx storage.Transaction) (*layout.ProjectedRow, error) {
	if _, err := t.engine.active("BeginWrite", tx); err != nil {
		return nil, err
	}
	return layout.NewProjectedRow(t.layout), nil
}

// Insert appends a copy of row, owned by tx until it finishes.
func (t *HeapTable) Insert(tx storage.Transaction, row *layout.ProjectedRow) (primitives.RowID, error) {
	mt, err := t.engine.active("Insert", tx)
	if err != nil {
		return 0, err
	}
	if !row.Layout().Equal(t.layout) {
		return 0, dberror.InvalidArgument("Insert", "row layout %s does not match table %q layout %s",
			row.Layout(), t.Name(), t.layout).WithComponent("HeapTable")
	}

	t.mu.Lock()
	var p *heapPage
	newPage := false
	if n := len(t.pages); n == 0 || t.pages[n-1].used() == t.slotsPerPage {
		p = &heapPage{data: make([]byte, 0, t.slotsPerPage*t.rowSize)}
		t.pages = append(t.pages, p)
		newPage = true
	} else {
		p = t.pages[n-1]
	}
	pageNo := len(t.pages) - 1
	slot := p.used()

	p.data = append(p.data, row.Bytes()...)
	p.nulls = append(p.nulls, row.NullBitmap().Clone())
	p.owners = append(p.owners, mt.ctx.ID)
	p.dead = append(p.dead, false)
	t.mu.Unlock()

	mt.stage(
		func() {
			t.mu.Lock()
			p.owners[slot] = 0
			t.mu.Unlock()
		},
		func() {
			t.mu.Lock()
			p.dead[slot] = true
			t.mu.Unlock()
		},
	)

	mt.ctx.RecordTupleWrite()
	if newPage {
		mt.ctx.RecordPageWrite()
	}
	return primitives.NewRowID(primitives.PageNumber(pageNo), primitives.SlotID(slot)), nil
}

// Select copies the row at rid into out.
func (t *HeapTable) Select(tx storage.Transaction, rid primitives.RowID, out *layout.ProjectedRow) error {
	mt, err := t.engine.active("Select", tx)
	if err != nil {
		return err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	pageNo, slot := int(rid.Page()), int(rid.Slot())
	if pageNo >= len(t.pages) || slot >= t.pages[pageNo].used() {
		return dberror.NotFound("Select", "table %q has no row at %s", t.Name(), rid)
	}
	p := t.pages[pageNo]
	if !visible(p.owners[slot], mt.ctx.ID, p.dead[slot]) {
		return dberror.NotFound("Select", "row %s of table %q is not visible to %s", rid, t.Name(), mt.ctx.ID)
	}

	start := slot * t.rowSize
	if err := out.Load(p.data[start:start+t.rowSize], p.nulls[slot]); err != nil {
		return dberror.Wrap(err, dberror.CodeInvalidArgument, "Select", "HeapTable")
	}
	mt.ctx.RecordTupleRead()
	return nil
}

// Scan snapshots the locations visible to tx in page order.
func (t *HeapTable) Scan(tx storage.Transaction) (iterator.RowIterator, error) {
	mt, err := t.engine.active("Scan", tx)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	rids := make([]primitives.RowID, 0)
	for pageNo, p := range t.pages {
		for slot := range p.used() {
			if visible(p.owners[slot], mt.ctx.ID, p.dead[slot]) {
				rids = append(rids, primitives.NewRowID(primitives.PageNumber(pageNo), primitives.SlotID(slot)))
			}
		}
	}
	return iterator.NewSliceIterator(rids), nil
}

// Count returns the number of rows visible to tx.
func (t *HeapTable) Count(tx storage.Transaction) (uint64, error) {
	mt, err := t.engine.active("Count", tx)
	if err != nil {
		return 0, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var n uint64
	for _, p := range t.pages {
		for slot := range p.used() {
			if visible(p.owners[slot], mt.ctx.ID, p.dead[slot]) {
				n++
			}
		}
	}
	return n, nil
}

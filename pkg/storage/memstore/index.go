package memstore

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/concurrency/transaction"
	"tablegen/pkg/dberror"
	"tablegen/pkg/layout"
	"tablegen/pkg/primitives"
	"tablegen/pkg/storage"
	"tablegen/pkg/types"
	"tablegen/pkg/utils/bitutil"
)

type indexEntry struct {
	image   []byte
	hasNull bool
	rid     primitives.RowID
	owner   transaction.TransactionID
	dead    bool
}

// entryStore is the structure behind an Index.
type entryStore interface {
	// matches returns the entries whose key image equals image.
	matches(image []byte) []*indexEntry
	add(e *indexEntry)
	each(fn func(*indexEntry) bool)
}

// Index is a secondary index over a HeapTable.
type Index struct {
	engine    *Engine
	sch       *schema.IndexSchema
	keyLayout *layout.OffsetMap
	component string

	mu    sync.RWMutex
	store entryStore
}

var _ storage.Index = (*Index)(nil)

func newIndex(e *Engine, sch *schema.IndexSchema, keyLayout *layout.OffsetMap) *Index {
	idx := &Index{engine: e, sch: sch, keyLayout: keyLayout}
	switch sch.Kind {
	case schema.HashIndex:
		idx.component = "HashIndex"
		idx.store = newHashStore()
	default:
		idx.component = "OrderedIndex"
		idx.store = &orderedStore{keyLayout: keyLayout}
	}
	return idx
}

func (idx *Index) Name() string {
	return idx.sch.IndexName
}

func (idx *Index) Schema() *schema.IndexSchema {
	return idx.sch
}

func (idx *Index) KeyLayout() *layout.OffsetMap {
	return idx.keyLayout
}

func (idx *Index) NewKey() *layout.ProjectedRow {
	return layout.NewProjectedRow(idx.keyLayout)
}

// Insert adds (key, rid), owned by tx until it finishes. Unique indexes
// reject a null-free key that any live entry already holds.
func (idx *Index) Insert(tx storage.Transaction, key *layout.ProjectedRow, rid primitives.RowID) error {
	mt, err := idx.engine.active("Insert", tx)
	if err != nil {
		return err
	}
	if err := idx.checkKey("Insert", key); err != nil {
		return err
	}

	e := &indexEntry{
		image:   storage.EncodeRow(nil, key),
		hasNull: storage.HasNull(key),
		rid:     rid,
		owner:   mt.ctx.ID,
	}

	idx.mu.Lock()
	if idx.sch.Unique && !e.hasNull {
		for _, other := range idx.store.matches(e.image) {
			if !other.dead {
				idx.mu.Unlock()
				return dberror.ConstraintViolation(idx.component, "duplicate key %s in unique index %q",
					formatKey(idx.keyLayout, e.image), idx.Name()).
					WithDetail("existing entry points at %s", other.rid)
			}
		}
	}
	idx.store.add(e)
	idx.mu.Unlock()

	mt.stage(
		func() {
			idx.mu.Lock()
			e.owner = 0
			idx.mu.Unlock()
		},
		func() {
			idx.mu.Lock()
			e.dead = true
			idx.mu.Unlock()
		},
	)
	mt.ctx.RecordIndexEntry()
	return nil
}

// Lookup returns the locations stored under key.
func (idx *Index) Lookup(tx storage.Transaction, key *layout.ProjectedRow) ([]primitives.RowID, error) {
	mt, err := idx.engine.active("Lookup", tx)
	if err != nil {
		return nil, err
	}
	if err := idx.checkKey("Lookup", key); err != nil {
		return nil, err
	}

	image := storage.EncodeRow(nil, key)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var rids []primitives.RowID
	for _, e := range idx.store.matches(image) {
		if visible(e.owner, mt.ctx.ID, e.dead) {
			rids = append(rids, e.rid)
		}
	}
	return rids, nil
}

// Len returns the number of entries visible to tx.
func (idx *Index) Len(tx storage.Transaction) (uint64, error) {
	var n uint64
	err := idx.Entries(tx, func(storage.IndexEntry) error {
		n++
		return nil
	})
	return n, err
}

// Entries walks the visible entries. Hash indexes yield insertion order,
// ordered indexes key order.
func (idx *Index) Entries(tx storage.Transaction, fn func(storage.IndexEntry) error) error {
	mt, err := idx.engine.active("Entries", tx)
	if err != nil {
		return err
	}

	idx.mu.RLock()
	var snapshot []*indexEntry
	idx.store.each(func(e *indexEntry) bool {
		if visible(e.owner, mt.ctx.ID, e.dead) {
			snapshot = append(snapshot, e)
		}
		return true
	})
	idx.mu.RUnlock()

	key := idx.NewKey()
	for _, e := range snapshot {
		if err := storage.DecodeRow(e.image, key); err != nil {
			return err
		}
		if err := fn(storage.IndexEntry{Key: key, RID: e.rid}); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) checkKey(op string, key *layout.ProjectedRow) error {
	if !key.Layout().Equal(idx.keyLayout) {
		return dberror.InvalidArgument(op, "key layout %s does not match index %q layout %s",
			key.Layout(), idx.Name(), idx.keyLayout).WithComponent(idx.component)
	}
	return nil
}

// hashStore buckets entries by the xxhash of their key image.
type hashStore struct {
	buckets map[uint64][]*indexEntry
	order   []*indexEntry
}

func newHashStore() *hashStore {
	return &hashStore{buckets: make(map[uint64][]*indexEntry)}
}

func (s *hashStore) matches(image []byte) []*indexEntry {
	var out []*indexEntry
	for _, e := range s.buckets[xxhash.Sum64(image)] {
		if bytes.Equal(e.image, image) {
			out = append(out, e)
		}
	}
	return out
}

func (s *hashStore) add(e *indexEntry) {
	h := xxhash.Sum64(e.image)
	s.buckets[h] = append(s.buckets[h], e)
	s.order = append(s.order, e)
}

func (s *hashStore) each(fn func(*indexEntry) bool) {
	for _, e := range s.order {
		if !fn(e) {
			return
		}
	}
}

// orderedStore keeps entries sorted by key value, nulls first, then by row
// location.
type orderedStore struct {
	keyLayout *layout.OffsetMap
	entries   []*indexEntry
}

func (s *orderedStore) lowerBound(image []byte) int {
	i, _ := slices.BinarySearchFunc(s.entries, image, func(e *indexEntry, target []byte) int {
		return compareKeys(s.keyLayout, e.image, target)
	})
	return i
}

func (s *orderedStore) matches(image []byte) []*indexEntry {
	var out []*indexEntry
	for i := s.lowerBound(image); i < len(s.entries); i++ {
		if compareKeys(s.keyLayout, s.entries[i].image, image) != 0 {
			break
		}
		out = append(out, s.entries[i])
	}
	return out
}

func (s *orderedStore) add(e *indexEntry) {
	i, _ := slices.BinarySearchFunc(s.entries, e, func(a, b *indexEntry) int {
		if c := compareKeys(s.keyLayout, a.image, b.image); c != 0 {
			return c
		}
		return cmp.Compare(a.rid, b.rid)
	})
	s.entries = slices.Insert(s.entries, i, e)
}

func (s *orderedStore) each(fn func(*indexEntry) bool) {
	for _, e := range s.entries {
		if !fn(e) {
			return
		}
	}
}

// splitImage separates an EncodeRow image into null bitmap and data.
func splitImage(l *layout.OffsetMap, image []byte) (bitutil.Bitmap, []byte) {
	nullBytes := len(image) - int(l.Size())
	return bitutil.FromBytes(image[:nullBytes]), image[nullBytes:]
}

// compareKeys orders two key images field by field.
func compareKeys(l *layout.OffsetMap, a, b []byte) int {
	an, ad := splitImage(l, a)
	bn, bd := splitImage(l, b)

	for pos := range l.NumColumns() {
		aNull, bNull := an.Test(uint32(pos)), bn.Test(uint32(pos))
		switch {
		case aNull && bNull:
			continue
		case aNull:
			return -1
		case bNull:
			return 1
		}

		s := l.SlotAt(pos)
		end := int(s.Offset) + int(s.Width)
		av, _ := types.Decode(s.Type, ad[s.Offset:end])
		bv, _ := types.Decode(s.Type, bd[s.Offset:end])
		if c := cmp.Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

// formatKey renders a key image as "(col#1=5, col#2=NULL)".
func formatKey(l *layout.OffsetMap, image []byte) string {
	nulls, data := splitImage(l, image)
	parts := make([]string, l.NumColumns())
	for pos := range parts {
		s := l.SlotAt(pos)
		if nulls.Test(uint32(pos)) {
			parts[pos] = fmt.Sprintf("%s=NULL", s.ID)
			continue
		}
		v, _ := types.Decode(s.Type, data[s.Offset:int(s.Offset)+int(s.Width)])
		parts[pos] = fmt.Sprintf("%s=%d", s.ID, v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

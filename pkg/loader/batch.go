package loader

import (
	"tablegen/pkg/datagen"
)

type slotKind uint8

const (
	slotEmpty slotKind = iota
	slotGenerated
	slotAlias
)

// slot holds one column of a batch. A generated slot owns its data; an
// alias slot only names the column whose data it shares and never owns any.
type slot struct {
	kind slotKind
	data *datagen.ColumnData
	ref  int
}

// batch is the column data of one batch, indexed like the table spec's
// columns.
type batch struct {
	slots    []slot
	released int
}

func newBatch(columns int) *batch {
	return &batch{slots: make([]slot, columns)}
}

func (b *batch) setGenerated(i int, data *datagen.ColumnData) {
	b.slots[i] = slot{kind: slotGenerated, data: data}
}

func (b *batch) setAlias(i, ref int) {
	b.slots[i] = slot{kind: slotAlias, ref: ref}
}

// column resolves slot i to the data it reads, following aliases.
func (b *batch) column(i int) *datagen.ColumnData {
	for b.slots[i].kind == slotAlias {
		i = b.slots[i].ref
	}
	return b.slots[i].data
}

// release hands back every generated slot's data and reports how many
// buffers it freed. Releasing twice frees nothing the second time.
func (b *batch) release() int {
	n := 0
	for i := range b.slots {
		s := &b.slots[i]
		if s.kind != slotGenerated || s.data == nil {
			continue
		}
		if s.data.Release() {
			n++
		}
		s.data = nil
	}
	b.released += n
	return n
}

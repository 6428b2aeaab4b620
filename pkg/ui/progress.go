package ui

import (
	"fmt"
	"io"
	"sync"

	"tablegen/pkg/loader"
)

// Progress prints one line when a batch starts inserting and one when a
// table has loaded. It is safe to use from the parallel loader.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	batches map[string]int
}

// NewProgress writes progress lines to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, batches: make(map[string]int)}
}

// Observe is a loader.Observer.
func (p *Progress) Observe(tr loader.Transition) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch tr.Phase {
	case loader.PhaseInserting:
		p.batches[tr.Table]++
		fmt.Fprintf(p.w, "%s %s batch %d (%s rows)\n",
			mutedStyle.Render("…"), tr.Table, tr.Batch, count(uint64(tr.Rows)))
	case loader.PhaseDone:
		fmt.Fprintf(p.w, "%s %s loaded in %d batches\n",
			successStyle.Render("✓"), tr.Table, p.batches[tr.Table])
	}
}

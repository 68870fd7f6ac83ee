// Package linemap maintains the table mapping markdown source lines to
// vertical offsets inside the rendered preview. The table is rebuilt
// wholesale whenever the preview content changes and answers lookups in
// both directions without ever touching layout geometry.
package linemap

import (
	"math"
	"sort"
	"sync"
)

// Entry pairs a 1-based source line with the vertical offset, in layout
// units, of the block rendered from it. Offsets include scroll
// position at rebuild time, so they are stable under later scrolling.
type Entry struct {
	Line   int
	Offset int
}

// Table is the sorted line→offset mapping. Lookups may come from timer
// goroutines while the interactive loop rebuilds, so access is
// mutex-guarded.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Rebuild replaces the table contents. Entries are sorted ascending by
// line; when several entries claim the same source line the first
// occurrence wins.
func (t *Table) Rebuild(entries []Entry) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Line < sorted[j].Line
	})

	deduped := sorted[:0]
	for _, e := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Line == e.Line {
			continue
		}
		deduped = append(deduped, e)
	}

	t.mu.Lock()
	t.entries = deduped
	t.mu.Unlock()
}

// Clear empties the table. Subsequent lookups return the degenerate
// defaults: line 1, offset 0.
func (t *Table) Clear() {
	t.mu.Lock()
	t.entries = nil
	t.mu.Unlock()
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a copy of the table contents in order.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// OffsetForLine returns the entry for line, or the greatest entry whose
// line is <= line (floor match). Queries below range clamp to the first
// entry, above range to the last. Floor matching rather than
// interpolation avoids overshooting past content that does not exist at
// a fractional line.
func (t *Table) OffsetForLine(line int) Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.entries) == 0 {
		return Entry{Line: 1, Offset: 0}
	}
	if line <= t.entries[0].Line {
		return t.entries[0]
	}
	last := t.entries[len(t.entries)-1]
	if line >= last.Line {
		return last
	}

	// First index whose line exceeds the query; the floor match sits
	// immediately before it.
	idx := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Line > line
	})
	return t.entries[idx-1]
}

// LineForOffset maps a preview offset back to a source line,
// interpolating linearly between the bracketing entries and rounding to
// the nearest line. Interpolation gives smoother perceived sync in this
// direction because the preview's visual density differs from the
// editor's line density.
func (t *Table) LineForOffset(offset int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.entries) == 0 {
		return 1
	}
	if offset <= t.entries[0].Offset {
		return t.entries[0].Line
	}
	last := t.entries[len(t.entries)-1]
	if offset >= last.Offset {
		return last.Line
	}

	idx := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Offset > offset
	})
	// lo.Offset <= offset < hi.Offset, so the span is never zero.
	lo, hi := t.entries[idx-1], t.entries[idx]

	ratio := float64(offset-lo.Offset) / float64(hi.Offset-lo.Offset)
	return int(math.Round(float64(lo.Line) + ratio*float64(hi.Line-lo.Line)))
}

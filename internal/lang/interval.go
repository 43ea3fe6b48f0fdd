package lang

import "sort"

// IntervalIndex answers "which recorded span covers this offset" stabbing
// queries over the spans of one snapshot table. Entry ids are the positions
// the spans held in that table. The indexed spans are identifier tokens, so
// they are pairwise disjoint; zero-width spans can never cover an offset
// and are dropped at construction.
type IntervalIndex struct {
	entries []indexEntry
}

type indexEntry struct {
	span Span
	id   int
}

// NewIntervalIndex builds an index over a span table.
func NewIntervalIndex(spans []Span) *IntervalIndex {
	ix := &IntervalIndex{entries: make([]indexEntry, 0, len(spans))}
	for i, sp := range spans {
		if sp.Empty() {
			continue
		}
		ix.entries = append(ix.entries, indexEntry{span: sp, id: i})
	}
	sort.SliceStable(ix.entries, func(i, j int) bool {
		return ix.entries[i].span.Start < ix.entries[j].span.Start
	})
	return ix
}

// Covering returns the table position and span of the entry covering the
// offset. With disjoint spans at most one entry can match: the rightmost
// entry starting at or before the offset.
func (ix *IntervalIndex) Covering(offset int) (int, Span, bool) {
	n := len(ix.entries)
	i := sort.Search(n, func(i int) bool {
		return ix.entries[i].span.Start > offset
	})
	if i == 0 {
		return 0, Span{}, false
	}
	e := ix.entries[i-1]
	if !e.span.Covers(offset) {
		return 0, Span{}, false
	}
	return e.id, e.span, true
}

// Len reports how many spans were indexed.
func (ix *IntervalIndex) Len() int {
	return len(ix.entries)
}

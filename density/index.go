package density

import (
	"sort"
)

// Index maps chromosome names to sorted read positions.
type Index struct {
	positions map[string][]int
	total     int
}

// NewIndex takes ownership of positions and sorts every chromosome in place.
// Input order within a chromosome is irrelevant.
func NewIndex(positions map[string][]int) *Index {
	idx := &Index{positions: make(map[string][]int, len(positions))}
	for chrom, pos := range positions {
		if len(pos) == 0 {
			continue
		}
		sort.Ints(pos)
		idx.positions[chrom] = pos
		idx.total += len(pos)
	}
	return idx
}

// Builder accumulates read positions for NewIndex.
type Builder struct {
	positions map[string][]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{positions: map[string][]int{}}
}

// Add records one read position.
func (b *Builder) Add(chrom string, pos int) {
	b.positions[chrom] = append(b.positions[chrom], pos)
}

// Build sorts the accumulated positions and returns the index.  The Builder
// must not be used afterwards.
func (b *Builder) Build() *Index {
	idx := NewIndex(b.positions)
	b.positions = nil
	return idx
}

// Total returns the number of reads over all chromosomes.
func (x *Index) Total() int {
	return x.total
}

// Chroms returns the chromosome names in lexicographic order.
func (x *Index) Chroms() []string {
	chroms := make([]string, 0, len(x.positions))
	for chrom := range x.positions {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// Positions returns the sorted positions of chrom.  The caller must not
// modify the result.
func (x *Index) Positions(chrom string) []int {
	return x.positions[chrom]
}

// Count returns the number of positions in [start, end).  A chromosome
// missing from the index has no reads.
func (x *Index) Count(chrom string, start, end int) int {
	if end <= start {
		return 0
	}
	pos := x.positions[chrom]
	if pos == nil {
		return 0
	}
	lo := sort.SearchInts(pos, start)
	hi := lo + sort.SearchInts(pos[lo:], end)
	return hi - lo
}

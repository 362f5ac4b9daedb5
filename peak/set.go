package peak

import "sort"

// Set maps a chromosome name to its peaks, ordered by start.  Sets are built
// once and handed between stages; a stage never appends to a set it did not
// create.
type Set map[string][]*Peak

// NewSet groups peaks by chromosome and sorts each chromosome.
func NewSet(peaks []*Peak) Set {
	s := Set{}
	for _, p := range peaks {
		s[p.Chrom] = append(s[p.Chrom], p)
	}
	s.Sort()
	return s
}

// Add appends p to its chromosome.  Call Sort once all peaks are added.
func (s Set) Add(p *Peak) {
	s[p.Chrom] = append(s[p.Chrom], p)
}

// Sort orders every chromosome by (start, end, summit).
func (s Set) Sort() {
	for _, peaks := range s {
		SortPeaks(peaks)
	}
}

// SortPeaks orders peaks in place by (start, end, summit).
func SortPeaks(peaks []*Peak) {
	sort.SliceStable(peaks, func(i, j int) bool {
		a, b := peaks[i], peaks[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Summit < b.Summit
	})
}

// Chroms returns the chromosomes that hold at least one peak, in
// lexicographic order.
func (s Set) Chroms() []string {
	chroms := make([]string, 0, len(s))
	for chrom, peaks := range s {
		if len(peaks) > 0 {
			chroms = append(chroms, chrom)
		}
	}
	sort.Strings(chroms)
	return chroms
}

// Len returns the total number of peaks.
func (s Set) Len() int {
	n := 0
	for _, peaks := range s {
		n += len(peaks)
	}
	return n
}

// Each calls fn on every peak in chromosome order.
func (s Set) Each(fn func(p *Peak)) {
	for _, chrom := range s.Chroms() {
		for _, p := range s[chrom] {
			fn(p)
		}
	}
}

// Peaks returns all peaks in chromosome order.
func (s Set) Peaks() []*Peak {
	out := make([]*Peak, 0, s.Len())
	s.Each(func(p *Peak) { out = append(out, p) })
	return out
}

// Clone returns a deep copy; the peaks of the copy can be modified without
// affecting s.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for chrom, peaks := range s {
		cp := make([]*Peak, len(peaks))
		for i, p := range peaks {
			cp[i] = p.Clone()
		}
		c[chrom] = cp
	}
	return c
}

// Merge returns a new set holding the peaks of all given sets, sorted.  The
// peaks themselves are shared, not copied.
func Merge(sets ...Set) Set {
	out := Set{}
	for _, s := range sets {
		for chrom, peaks := range s {
			out[chrom] = append(out[chrom], peaks...)
		}
	}
	out.Sort()
	return out
}

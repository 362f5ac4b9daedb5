package overlap

import (
	"github.com/biogo/store/interval"
	"github.com/changebio/MAnorm/peak"
)

// peakInterval adapts a peak to the biogo interval tree.
type peakInterval struct {
	start, end int
	uid        uintptr
}

// Overlap uses half-open semantics.
func (i peakInterval) Overlap(b interval.IntRange) bool {
	return peak.Overlap(i.start, i.end, b.Start, b.End)
}

func (i peakInterval) ID() uintptr {
	return i.uid
}

func (i peakInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// chromTree indexes the peaks of one chromosome of one sample.
type chromTree struct {
	tree interval.IntTree
}

func newChromTree(peaks []*peak.Peak) (*chromTree, error) {
	t := &chromTree{}
	for i, p := range peaks {
		if err := t.tree.Insert(peakInterval{start: p.Start, end: p.End, uid: uintptr(i)}, true); err != nil {
			return nil, err
		}
	}
	t.tree.AdjustRanges()
	return t, nil
}

// overlapsAny reports whether [start, end) overlaps any indexed peak.
func (t *chromTree) overlapsAny(start, end int) bool {
	if t == nil || t.tree.Len() == 0 {
		return false
	}
	found := false
	t.tree.DoMatching(func(interval.IntInterface) bool {
		found = true
		return true
	}, peakInterval{start: start, end: end})
	return found
}

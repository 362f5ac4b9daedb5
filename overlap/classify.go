package overlap

import (
	"fmt"
	"sort"

	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Result holds the three disjoint groups produced by Classify.  All peaks in
// a Result are new objects; the inputs of Classify are left untouched.
type Result struct {
	Unique1 peak.Set
	Unique2 peak.Set
	Merged  peak.Set
}

// Classify splits the peaks of two samples into unique and merged common
// peaks.  See the package documentation for the exact rules.
func Classify(s1, s2 peak.Set) (Result, error) {
	res := Result{Unique1: peak.Set{}, Unique2: peak.Set{}, Merged: peak.Set{}}
	var nCommon1, nCommon2 int
	for _, chrom := range unionChroms(s1, s2) {
		p1, p2 := sortedCopy(s1[chrom]), sortedCopy(s2[chrom])
		t1, err := newChromTree(p1)
		if err != nil {
			return Result{}, errors.E(err, fmt.Sprintf("overlap: indexing %s of sample 1", chrom))
		}
		t2, err := newChromTree(p2)
		if err != nil {
			return Result{}, errors.E(err, fmt.Sprintf("overlap: indexing %s of sample 2", chrom))
		}
		var common []*peak.Peak
		for _, p := range p1 {
			if t2.overlapsAny(p.Start, p.End) {
				p.Sources1 = 1
				common = append(common, p)
				nCommon1++
				continue
			}
			p.Group, p.Sources1 = peak.Unique1, 1
			res.Unique1.Add(p)
		}
		for _, p := range p2 {
			if t1.overlapsAny(p.Start, p.End) {
				p.Sources2 = 1
				common = append(common, p)
				nCommon2++
				continue
			}
			p.Group, p.Sources2 = peak.Unique2, 1
			res.Unique2.Add(p)
		}
		merged, err := mergeCommon(chrom, common)
		if err != nil {
			return Result{}, err
		}
		if len(merged) > 0 {
			res.Merged[chrom] = merged
		}
	}
	res.Unique1.Sort()
	res.Unique2.Sort()
	log.Printf("overlap: %d unique to sample 1, %d unique to sample 2, %d merged common peaks from %d+%d common peaks",
		res.Unique1.Len(), res.Unique2.Len(), res.Merged.Len(), nCommon1, nCommon2)
	return res, nil
}

// mergeCommon unions transitively overlapping common peaks with a sweep over
// the peaks sorted by start.  Each run of peaks whose start lies before the
// running end becomes one merged peak.
func mergeCommon(chrom string, common []*peak.Peak) ([]*peak.Peak, error) {
	if len(common) == 0 {
		return nil, nil
	}
	peak.SortPeaks(common)
	var merged []*peak.Peak
	start, end := common[0].Start, common[0].End
	src1, src2 := common[0].Sources1, common[0].Sources2
	flush := func() error {
		p, err := peak.New(chrom, start, end, peak.NoSummit)
		if err != nil {
			return err
		}
		p.Group = peak.MergedCommon
		p.Sources1, p.Sources2 = src1, src2
		merged = append(merged, p)
		return nil
	}
	for _, p := range common[1:] {
		if peak.Overlap(start, end, p.Start, p.End) {
			if p.End > end {
				end = p.End
			}
			src1 += p.Sources1
			src2 += p.Sources2
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		start, end = p.Start, p.End
		src1, src2 = p.Sources1, p.Sources2
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return merged, nil
}

func sortedCopy(peaks []*peak.Peak) []*peak.Peak {
	if len(peaks) == 0 {
		return nil
	}
	cp := make([]*peak.Peak, len(peaks))
	for i, p := range peaks {
		cp[i] = p.Clone()
		cp[i].Sources1, cp[i].Sources2 = 0, 0
	}
	peak.SortPeaks(cp)
	return cp
}

func unionChroms(s1, s2 peak.Set) []string {
	chroms := s1.Chroms()
	for _, c := range s2.Chroms() {
		if len(s1[c]) == 0 {
			chroms = append(chroms, c)
		}
	}
	sort.Strings(chroms)
	return chroms
}

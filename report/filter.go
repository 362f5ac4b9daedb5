package report

import (
	"io"
	"math"
	"strconv"

	"github.com/changebio/MAnorm/manorm"
	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/tsv"
)

// Filter defines which peaks count as biased or unbiased.
type Filter struct {
	// BiasedM is the |M| cutoff above which a significant peak is biased;
	// peaks with |M| below it are unbiased.
	BiasedM float64
	// BiasedP is the p-value a biased peak must fall below.
	BiasedP float64
	// OverlapDependent restricts biased peaks to unique peaks and unbiased
	// peaks to merged common peaks.  Otherwise all peaks are considered.
	OverlapDependent bool
}

// DefaultFilter matches the cutoffs bio-manorm uses unless overridden.
var DefaultFilter = Filter{BiasedM: 1, BiasedP: 0.01}

// Biased returns the significant peaks with M above BiasedM and below
// -BiasedM, and the label of the peak population they were drawn from.
func (f Filter) Biased(res *manorm.Result) (over, under []*peak.Peak, label string) {
	pop, label := peak.Merge(res.Unique1, res.Merged, res.Unique2), "all_peaks"
	if f.OverlapDependent {
		pop, label = peak.Merge(res.Unique1, res.Unique2), "unique_peaks"
	}
	pop.Each(func(p *peak.Peak) {
		if !(p.PValue < f.BiasedP) {
			return
		}
		if p.NormM > f.BiasedM {
			over = append(over, p)
		} else if p.NormM < -f.BiasedM {
			under = append(under, p)
		}
	})
	return over, under, label
}

// Unbiased returns the peaks with |M| below BiasedM, and the label of the
// peak population they were drawn from.
func (f Filter) Unbiased(res *manorm.Result) (peaks []*peak.Peak, label string) {
	pop, label := peak.Merge(res.Unique1, res.Merged, res.Unique2), "all_peaks"
	if f.OverlapDependent {
		pop, label = res.Merged, "merged_common_peaks"
	}
	pop.Each(func(p *peak.Peak) {
		if math.Abs(p.NormM) < f.BiasedM {
			peaks = append(peaks, p)
		}
	})
	return peaks, label
}

// WriteBED writes peaks as BED5 with names from_<label>_<n> and the
// normalized M-value in the score column.
func WriteBED(w io.Writer, peaks []*peak.Peak, label string) error {
	tw := tsv.NewWriter(w)
	for i, p := range peaks {
		tw.WriteString(p.Chrom)
		tw.WriteUint32(uint32(p.Start))
		tw.WriteUint32(uint32(p.End))
		tw.WriteString("from_" + label + "_" + strconv.Itoa(i+1))
		tw.WriteString(formatFloat(p.NormM))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

package peak

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
)

// NoSummit is passed to New when the input did not supply a summit.  The
// summit then defaults to the interval midpoint.
const NoSummit = -1

// Group is the classification of a peak relative to the other sample.
type Group int

const (
	// Unclassified is the group of a freshly parsed peak.
	Unclassified Group = iota
	// Unique1 peaks have no overlap in sample 2.
	Unique1
	// Unique2 peaks have no overlap in sample 1.
	Unique2
	// MergedCommon peaks are unions of overlapping peaks from both samples.
	MergedCommon
)

func (g Group) String() string {
	switch g {
	case Unique1:
		return "unique1"
	case Unique2:
		return "unique2"
	case MergedCommon:
		return "merged_common"
	default:
		return "unclassified"
	}
}

// Peak is a single genomic interval along with the statistics the pipeline
// attaches to it.  Fields that a stage has not computed yet are NaN.
type Peak struct {
	Chrom  string
	Start  int
	End    int
	Summit int // absolute coordinate
	Group  Group

	// Sources1 and Sources2 count the input peaks of each sample that were
	// merged into a MergedCommon peak.  Unique peaks have exactly one source.
	Sources1 int
	Sources2 int

	// Raw read counts and depth-scaled densities in the density window.
	Count1   int
	Count2   int
	Density1 float64
	Density2 float64

	// Raw log-ratio and average log-intensity.
	M float64
	A float64

	// Values after the MA rescaling.
	NormM        float64
	NormA        float64
	NormDensity1 float64
	NormDensity2 float64

	PValue float64
}

// New validates the geometry of a peak and returns it with all statistics
// unset.  summit may be NoSummit.
func New(chrom string, start, end, summit int) (*Peak, error) {
	if chrom == "" {
		return nil, errors.E(errors.Invalid, "peak: empty chromosome name")
	}
	if start < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("peak %s: negative start %d", chrom, start))
	}
	if start >= end {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("peak %s: start %d not before end %d", chrom, start, end))
	}
	if summit == NoSummit {
		summit = (start + end) / 2
	} else if summit < start || summit > end {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("peak %s:%d-%d: summit %d outside interval", chrom, start, end, summit))
	}
	nan := math.NaN()
	return &Peak{
		Chrom:        chrom,
		Start:        start,
		End:          end,
		Summit:       summit,
		M:            nan,
		A:            nan,
		NormM:        nan,
		NormA:        nan,
		NormDensity1: nan,
		NormDensity2: nan,
		PValue:       nan,
	}, nil
}

// Len returns the interval length.
func (p *Peak) Len() int {
	return p.End - p.Start
}

// Overlap reports whether the half-open intervals [start1, end1) and
// [start2, end2) share at least one base.  Touching intervals do not overlap.
func Overlap(start1, end1, start2, end2 int) bool {
	return max(start1, start2) < min(end1, end2)
}

// Clone returns a shallow copy of p.
func (p *Peak) Clone() *Peak {
	c := *p
	return &c
}

// HasDensities reports whether the raw M/A values have been computed.
func (p *Peak) HasDensities() bool {
	return !math.IsNaN(p.M)
}

// IsNormalized reports whether the MA rescaling has been applied.
func (p *Peak) IsNormalized() bool {
	return !math.IsNaN(p.NormM)
}

func (p *Peak) String() string {
	return fmt.Sprintf("%s:%d-%d", p.Chrom, p.Start, p.End)
}

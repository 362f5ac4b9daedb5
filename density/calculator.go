package density

import (
	"fmt"
	"math"

	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// WindowMode selects the interval reads are counted in.
type WindowMode int

const (
	// SummitWindow counts reads in [summit-HalfWindow, summit+HalfWindow).
	SummitWindow WindowMode = iota
	// PeakWindow counts reads in [start, end).
	PeakWindow
)

// DepthScale selects how raw counts are made comparable between samples of
// different sequencing depth.
type DepthScale int

const (
	// DepthMean scales both samples to the mean of their library sizes, so
	// densities stay in read-count units.
	DepthMean DepthScale = iota
	// DepthRPM scales counts to reads per million.
	DepthRPM
	// DepthNone leaves raw counts untouched.
	DepthNone
)

// ParseWindowMode parses "summit" or "peak".
func ParseWindowMode(s string) (WindowMode, error) {
	switch s {
	case "summit":
		return SummitWindow, nil
	case "peak":
		return PeakWindow, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown window mode %q", s))
}

// String returns the name ParseWindowMode accepts for m.
func (m WindowMode) String() string {
	switch m {
	case SummitWindow:
		return "summit"
	case PeakWindow:
		return "peak"
	}
	return fmt.Sprintf("WindowMode(%d)", int(m))
}

// ParseDepthScale parses "mean", "rpm" or "none".
func ParseDepthScale(s string) (DepthScale, error) {
	switch s {
	case "mean":
		return DepthMean, nil
	case "rpm":
		return DepthRPM, nil
	case "none":
		return DepthNone, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown depth scale %q", s))
}

// String returns the name ParseDepthScale accepts for d.
func (d DepthScale) String() string {
	switch d {
	case DepthMean:
		return "mean"
	case DepthRPM:
		return "rpm"
	case DepthNone:
		return "none"
	}
	return fmt.Sprintf("DepthScale(%d)", int(d))
}

// Opts defines the behavior of a Calculator.
type Opts struct {
	Window     WindowMode
	HalfWindow int
	Depth      DepthScale
	// Pseudocount is added to each density before the log2 transform, so that
	// empty windows have a finite M/A.  With pseudocount 1, two empty windows
	// give M = 0 and A = 0.
	Pseudocount float64
	// Parallelism bounds the number of chromosomes processed concurrently;
	// 0 lets traverse pick.
	Parallelism int
}

// DefaultOpts matches a 1 kb window centered on the summit.
var DefaultOpts = Opts{
	Window:      SummitWindow,
	HalfWindow:  500,
	Depth:       DepthMean,
	Pseudocount: 1,
}

// Calculator attaches read densities and raw M/A values to peaks.
type Calculator struct {
	opts           Opts
	idx1, idx2     *Index
	scale1, scale2 float64
}

// NewCalculator prepares a Calculator for the two samples' read indices.
func NewCalculator(idx1, idx2 *Index, opts Opts) (*Calculator, error) {
	if opts.Window == SummitWindow && opts.HalfWindow <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("density: half window must be positive, got %d", opts.HalfWindow))
	}
	if !(opts.Pseudocount > 0) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("density: pseudocount must be positive, got %v", opts.Pseudocount))
	}
	c := &Calculator{opts: opts, idx1: idx1, idx2: idx2, scale1: 1, scale2: 1}
	if opts.Depth != DepthNone {
		t1, t2 := float64(idx1.Total()), float64(idx2.Total())
		if t1 == 0 || t2 == 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("density: cannot depth-normalize an empty read set (%d and %d reads)", idx1.Total(), idx2.Total()))
		}
		switch opts.Depth {
		case DepthRPM:
			c.scale1, c.scale2 = 1e6/t1, 1e6/t2
		case DepthMean:
			mean := (t1 + t2) / 2
			c.scale1, c.scale2 = mean/t1, mean/t2
		}
	}
	log.Debug.Printf("density: %d and %d reads, scale factors %g and %g", idx1.Total(), idx2.Total(), c.scale1, c.scale2)
	return c, nil
}

// Window returns the half-open interval reads are counted in for p.
func (c *Calculator) Window(p *peak.Peak) (start, end int) {
	if c.opts.Window == PeakWindow {
		return p.Start, p.End
	}
	return p.Summit - c.opts.HalfWindow, p.Summit + c.opts.HalfWindow
}

// Scales returns the depth scale factors of both samples.
func (c *Calculator) Scales() (float64, float64) {
	return c.scale1, c.scale2
}

// Compute sets the counts, densities and raw M/A of p.
func (c *Calculator) Compute(p *peak.Peak) {
	start, end := c.Window(p)
	p.Count1 = c.idx1.Count(p.Chrom, start, end)
	p.Count2 = c.idx2.Count(p.Chrom, start, end)
	p.Density1 = float64(p.Count1) * c.scale1
	p.Density2 = float64(p.Count2) * c.scale2
	p.M, p.A = MA(p.Density1, p.Density2, c.opts.Pseudocount)
}

// ComputeSet runs Compute on every peak of s.  Chromosomes are independent
// and are processed in parallel; each task only touches its own slice.
func (c *Calculator) ComputeSet(s peak.Set) error {
	chroms := s.Chroms()
	fn := func(i int) error {
		for _, p := range s[chroms[i]] {
			c.Compute(p)
		}
		return nil
	}
	if c.opts.Parallelism > 0 {
		return traverse.Limit(c.opts.Parallelism).Each(len(chroms), fn)
	}
	return traverse.Each(len(chroms), fn)
}

// MA returns the log2 ratio and the average log2 intensity of two densities
// after adding the pseudocount.
func MA(d1, d2, pseudocount float64) (m, a float64) {
	l1 := math.Log2(d1 + pseudocount)
	l2 := math.Log2(d2 + pseudocount)
	return l1 - l2, (l1 + l2) / 2
}

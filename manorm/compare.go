package manorm

import (
	"context"
	"fmt"
	"math"

	"github.com/changebio/MAnorm/density"
	"github.com/changebio/MAnorm/overlap"
	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of a two-sample comparison.  Every peak in the three
// sets carries raw and normalized M/A values and a p-value.
type Result struct {
	Unique1 peak.Set
	Unique2 peak.Set
	Merged  peak.Set
	Fit     Fit
	Null    NullModel
	// Clamped counts p-values raised to Opts.PValueFloor.
	Clamped int
}

// All returns the peaks of all three groups as one set.
func (r *Result) All() peak.Set {
	return peak.Merge(r.Unique1, r.Merged, r.Unique2)
}

// Compare runs the full comparison of peaks1/reads1 against peaks2/reads2.
// The inputs are not modified.  Any error aborts the comparison; no partial
// result is returned.
func Compare(ctx context.Context, peaks1, peaks2 peak.Set, reads1, reads2 *density.Index, opts Opts) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	groups, err := overlap.Classify(peaks1, peaks2)
	if err != nil {
		return Result{}, err
	}
	if n := groups.Merged.Len(); n < opts.MinCommonPeaks {
		return Result{}, &InsufficientCommonPeaksError{Found: n, Required: opts.MinCommonPeaks}
	}
	if err = ctx.Err(); err != nil {
		return Result{}, err
	}

	calc, err := density.NewCalculator(reads1, reads2, opts.Density)
	if err != nil {
		return Result{}, err
	}
	for _, s := range []peak.Set{groups.Unique1, groups.Unique2, groups.Merged} {
		if err = calc.ComputeSet(s); err != nil {
			return Result{}, err
		}
	}
	if err = ctx.Err(); err != nil {
		return Result{}, err
	}

	fit, err := FitSet(groups.Merged, opts)
	if err != nil {
		return Result{}, err
	}
	Apply(fit, opts.Density.Pseudocount, groups.Unique1, groups.Unique2, groups.Merged)

	var normM []float64
	groups.Merged.Each(func(p *peak.Peak) { normM = append(normM, p.NormM) })
	fit.CommonMeanM = stat.Mean(normM, nil)
	log.Printf("manorm: M = %.6f + %.6f*A fitted on %d/%d merged common peaks in %d iterations (intercept shift %.4f); mean normalized M %.4f",
		fit.A, fit.B, fit.Inliers, len(normM), fit.Iterations, fit.Shift, fit.CommonMeanM)
	if !(math.Abs(fit.CommonMeanM) <= opts.CenterTolerance) {
		return Result{}, &DegenerateFitError{
			Reason:        fmt.Sprintf("mean normalized M of merged common peaks is %.4f, outside +/-%g", fit.CommonMeanM, opts.CenterTolerance),
			Iterations:    fit.Iterations,
			Inliers:       fit.Inliers,
			ResidualScale: fit.ResidualScale,
		}
	}

	null, err := EstimateNull(normM)
	if err != nil {
		return Result{}, err
	}
	clamped := ScorePeaks(null, opts.PValueFloor, groups.Unique1, groups.Unique2, groups.Merged)
	return Result{
		Unique1: groups.Unique1,
		Unique2: groups.Unique2,
		Merged:  groups.Merged,
		Fit:     fit,
		Null:    null,
		Clamped: clamped,
	}, nil
}

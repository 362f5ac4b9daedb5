package manorm

import (
	"math"

	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NullModel is the normal distribution with mean 0 that normalized M-values
// follow when a peak is not differentially bound.
type NullModel struct {
	Sigma float64
}

// EstimateNull estimates the null standard deviation from the normalized
// M-values of the merged common peaks as 1.4826 * MAD.  It falls back to the
// sample standard deviation when more than half of the values coincide.
func EstimateNull(normM []float64) (NullModel, error) {
	if len(normM) < 2 {
		return NullModel{}, &DegenerateFitError{Reason: "too few normalized M-values for the null model", Inliers: len(normM)}
	}
	dev := append([]float64(nil), normM...)
	center := median(dev)
	for i, v := range normM {
		dev[i] = math.Abs(v - center)
	}
	sigma := madScale * median(dev)
	if sigma == 0 {
		sigma = stat.StdDev(normM, nil)
		log.Printf("manorm: MAD of normalized M-values is 0, using standard deviation %g", sigma)
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return NullModel{}, &DegenerateFitError{Reason: "normalized M-values have no spread", Inliers: len(normM), ResidualScale: sigma}
	}
	return NullModel{Sigma: sigma}, nil
}

// PValue returns the two-tailed probability of a normalized M-value at least
// as extreme as m.  Results below floor, including underflow to 0, are
// clamped to floor and reported through clamped.
func (n NullModel) PValue(m, floor float64) (p float64, clamped bool) {
	p = 2 * distuv.UnitNormal.Survival(math.Abs(m)/n.Sigma)
	if p > 1 {
		p = 1
	}
	if p < floor || math.IsNaN(p) {
		return floor, true
	}
	return p, false
}

// ScorePeaks sets the p-value of every peak in sets and returns the number
// of p-values clamped to floor.
func ScorePeaks(null NullModel, floor float64, sets ...peak.Set) int {
	clamped := 0
	for _, s := range sets {
		s.Each(func(p *peak.Peak) {
			var c bool
			p.PValue, c = null.PValue(p.NormM, floor)
			if c {
				clamped++
			}
		})
	}
	if clamped > 0 {
		log.Error.Printf("manorm: warning: %d p-values underflowed and were clamped to %g", clamped, floor)
	}
	return clamped
}

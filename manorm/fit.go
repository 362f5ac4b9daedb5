package manorm

import (
	"math"
	"sort"

	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/stat"
)

// madScale converts a median absolute deviation into a normal standard
// deviation estimate.
const madScale = 1.4826

// minResidualScale keeps the trimming cutoff above rounding noise when the
// points lie exactly on a line.
const minResidualScale = 1e-9

// Fit holds the rescaling line M = A + B*A_raw and fit diagnostics.
type Fit struct {
	A float64 // intercept
	B float64 // slope

	Iterations    int
	Inliers       int
	ResidualScale float64
	// Shift is the amount added to the trimmed-fit intercept to center the
	// residuals of all merged common peaks.
	Shift float64
	// CommonMeanM is the mean normalized M-value of the merged common peaks,
	// set by Compare after the fit is applied.
	CommonMeanM float64
}

// Predict returns the fitted M-value at average intensity a.
func (f Fit) Predict(a float64) float64 {
	return f.A + f.B*a
}

// coefTolerance is the coefficient change below which two consecutive
// rounds count as the same fit.
const coefTolerance = 1e-6

// FitMA fits m = a + b*x by repeated trimmed least squares.  Each round fits
// ordinary least squares on the current inliers, measures every point's
// residual against that line, and keeps the points within TrimK robust
// residual scales of the median residual.  Points dropped in one round may
// come back in the next.  The fit has converged when a round leaves the
// inlier set unchanged, when the coefficients move by less than
// coefTolerance, or when the next inlier set is one that was already fitted,
// in which case the refits would cycle and the current line is kept.
func FitMA(m, a []float64, opts Opts) (Fit, error) {
	n := len(m)
	if len(a) != n {
		panic("manorm.FitMA: M and A lengths differ")
	}
	if n < opts.MinCommonPeaks {
		return Fit{}, &InsufficientCommonPeaksError{Found: n, Required: opts.MinCommonPeaks}
	}
	inlier := make([]bool, n)
	for i := range inlier {
		inlier[i] = true
	}
	nIn := n
	residuals := make([]float64, n)
	seen := map[string]bool{inlierKey(inlier): true}
	var (
		x, y                []float64
		scale               float64
		prevAlpha, prevBeta float64
	)
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		x, y = x[:0], y[:0]
		for i := range m {
			if inlier[i] {
				x = append(x, a[i])
				y = append(y, m[i])
			}
		}
		if len(x) < 3 {
			return Fit{}, &DegenerateFitError{Reason: "fewer than 3 inliers left", Iterations: iter, Inliers: len(x), ResidualScale: scale}
		}
		if stat.Variance(x, nil) == 0 {
			return Fit{}, &DegenerateFitError{Reason: "A values of the inliers have no spread", Iterations: iter, Inliers: len(x), ResidualScale: scale}
		}
		alpha, beta := stat.LinearRegression(x, y, nil, false)
		if math.IsNaN(alpha) || math.IsInf(alpha, 0) || math.IsNaN(beta) || math.IsInf(beta, 0) {
			return Fit{}, &DegenerateFitError{Reason: "non-finite coefficients", Iterations: iter, Inliers: len(x), ResidualScale: scale}
		}
		fit := Fit{A: alpha, B: beta, Iterations: iter, Inliers: len(x)}

		inRes := make([]float64, 0, len(x))
		for i := range m {
			residuals[i] = m[i] - (alpha + beta*a[i])
			if inlier[i] {
				inRes = append(inRes, residuals[i])
			}
		}
		center := median(inRes)
		for i := range inRes {
			inRes[i] = math.Abs(inRes[i] - center)
		}
		scale = madScale * median(inRes)
		fit.ResidualScale = scale
		cutoff := opts.TrimK * math.Max(scale, minResidualScale)

		changed := false
		nIn = 0
		for i, r := range residuals {
			keep := math.Abs(r-center) <= cutoff
			if keep != inlier[i] {
				changed = true
				inlier[i] = keep
			}
			if keep {
				nIn++
			}
		}
		log.Debug.Printf("manorm: fit iteration %d: M = %.6f + %.6f*A, residual scale %.4g, %d/%d inliers",
			iter, alpha, beta, scale, nIn, n)
		if !changed {
			return fit, nil
		}
		if iter > 1 && math.Abs(alpha-prevAlpha) < coefTolerance && math.Abs(beta-prevBeta) < coefTolerance {
			return fit, nil
		}
		key := inlierKey(inlier)
		if seen[key] {
			log.Debug.Printf("manorm: trimmed refits cycle after %d iterations; keeping M = %.6f + %.6f*A", iter, alpha, beta)
			return fit, nil
		}
		seen[key] = true
		prevAlpha, prevBeta = alpha, beta
	}
	return Fit{}, &DegenerateFitError{
		Reason:        "trimmed refits did not converge",
		Iterations:    opts.MaxIterations,
		Inliers:       nIn,
		ResidualScale: scale,
	}
}

// inlierKey encodes an inlier set as a map key.
func inlierKey(inlier []bool) string {
	key := make([]byte, len(inlier))
	for i, in := range inlier {
		key[i] = '0'
		if in {
			key[i] = '1'
		}
	}
	return string(key)
}

// FitSet runs FitMA on the raw M/A values of every peak in s, then shifts
// the intercept so that the mean residual over all of s is 0.  The slope
// stays the robust one.
func FitSet(s peak.Set, opts Opts) (Fit, error) {
	var m, a []float64
	s.Each(func(p *peak.Peak) {
		m = append(m, p.M)
		a = append(a, p.A)
	})
	fit, err := FitMA(m, a, opts)
	if err != nil {
		return Fit{}, err
	}
	res := make([]float64, len(m))
	for i := range m {
		res[i] = m[i] - fit.Predict(a[i])
	}
	fit.Shift = stat.Mean(res, nil)
	fit.A += fit.Shift
	return fit, nil
}

// Apply rescales the peaks of every set against fit.  The normalized
// A-value is the raw A-value, and the normalized densities are the densities
// implied by the normalized M/A with the pseudocount removed.
func Apply(fit Fit, pseudocount float64, sets ...peak.Set) {
	for _, s := range sets {
		s.Each(func(p *peak.Peak) {
			p.NormM = p.M - fit.Predict(p.A)
			p.NormA = p.A
			p.NormDensity1 = math.Max(math.Exp2(p.NormA+p.NormM/2)-pseudocount, 0)
			p.NormDensity2 = math.Max(math.Exp2(p.NormA-p.NormM/2)-pseudocount, 0)
		})
	}
}

// median returns the median of x, averaging the two middle values when
// len(x) is even.  x is reordered.
func median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return (x[n/2-1] + x[n/2]) / 2
}

package manorm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/changebio/MAnorm/peak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// linePoints returns n points on m = 0.5 - 0.2*a plus bounded deterministic
// noise.
func linePoints(n int) (m, a []float64) {
	m = make([]float64, n)
	a = make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = 2 + 10*float64(i)/float64(n-1)
		m[i] = 0.5 - 0.2*a[i] + 0.1*math.Sin(float64(i)*1.7)
	}
	return m, a
}

func TestFitMAOutlier(t *testing.T) {
	m, a := linePoints(100)
	const outlier = 50
	m[outlier] += 20

	fit, err := FitMA(m, a, DefaultOpts)
	require.NoError(t, err)
	assert.Equal(t, 99, fit.Inliers)

	var x, y []float64
	for i := range m {
		if i != outlier {
			x = append(x, a[i])
			y = append(y, m[i])
		}
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	assert.InEpsilon(t, alpha, fit.A, 0.01)
	assert.InEpsilon(t, beta, fit.B, 0.01)
	assert.InDelta(t, 0.5, fit.A, 0.1)
	assert.InDelta(t, -0.2, fit.B, 0.02)
}

func TestFitMAExactLine(t *testing.T) {
	m := make([]float64, 30)
	a := make([]float64, 30)
	for i := range m {
		a[i] = float64(i)
		m[i] = 1 + 0.5*a[i]
	}
	fit, err := FitMA(m, a, DefaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, 1, fit.A, 1e-9)
	assert.InDelta(t, 0.5, fit.B, 1e-9)
	assert.Equal(t, 1, fit.Iterations)
	assert.Equal(t, 30, fit.Inliers)
	assert.InDelta(t, 6, fit.Predict(10), 1e-9)
}

func TestFitMAMinCommonPeaks(t *testing.T) {
	m, a := linePoints(20)
	_, err := FitMA(m, a, DefaultOpts)
	assert.NoError(t, err)

	m, a = linePoints(19)
	_, err = FitMA(m, a, DefaultOpts)
	require.Error(t, err)
	e, ok := err.(*InsufficientCommonPeaksError)
	require.True(t, ok, "%T", err)
	assert.Equal(t, 19, e.Found)
	assert.Equal(t, 20, e.Required)
}

func TestFitMADegenerate(t *testing.T) {
	m, a := linePoints(30)
	for i := range a {
		a[i] = 5
	}
	_, err := FitMA(m, a, DefaultOpts)
	require.Error(t, err)
	e, ok := err.(*DegenerateFitError)
	require.True(t, ok, "%T", err)
	assert.Equal(t, 1, e.Iterations)
	assert.Equal(t, 30, e.Inliers)
}

func TestFitMANoConvergence(t *testing.T) {
	m, a := linePoints(100)
	m[10] += 20
	opts := DefaultOpts
	opts.MaxIterations = 1
	_, err := FitMA(m, a, opts)
	require.Error(t, err)
	e, ok := err.(*DegenerateFitError)
	require.True(t, ok, "%T", err)
	assert.Equal(t, 1, e.Iterations)
	assert.Contains(t, e.Error(), "did not converge")
}

func TestFitMALengthMismatch(t *testing.T) {
	assert.Panics(t, func() { FitMA(make([]float64, 20), make([]float64, 21), DefaultOpts) })
}

func TestFitSetAndApply(t *testing.T) {
	m, a := linePoints(25)
	var peaks []*peak.Peak
	for i := range m {
		p, err := peak.New("chr1", i*1000, i*1000+200, peak.NoSummit)
		require.NoError(t, err)
		p.M, p.A = m[i], a[i]
		peaks = append(peaks, p)
	}
	s := peak.NewSet(peaks)
	fit, err := FitSet(s, DefaultOpts)
	require.NoError(t, err)
	Apply(fit, 1, s)
	s.Each(func(p *peak.Peak) {
		assert.True(t, p.IsNormalized())
		assert.Equal(t, p.A, p.NormA)
		assert.InDelta(t, p.M-fit.Predict(p.A), p.NormM, 1e-12)
	})
}

func TestApplyDensities(t *testing.T) {
	p, err := peak.New("chr1", 0, 100, peak.NoSummit)
	require.NoError(t, err)
	p.M, p.A = 1, 2
	q, err := peak.New("chr1", 200, 300, peak.NoSummit)
	require.NoError(t, err)
	q.M, q.A = 0, 0
	Apply(Fit{A: 1}, 1, peak.NewSet([]*peak.Peak{p, q}))
	assert.Equal(t, 0.0, p.NormM)
	assert.InDelta(t, 3, p.NormDensity1, 1e-12)
	assert.InDelta(t, 3, p.NormDensity2, 1e-12)
	// Normalized densities never go negative.
	assert.Equal(t, -1.0, q.NormM)
	assert.Equal(t, 0.0, q.NormDensity1)
	assert.InDelta(t, math.Sqrt(2)-1, q.NormDensity2, 1e-12)
}

func TestMedian(t *testing.T) {
	assert.True(t, math.IsNaN(median(nil)))
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
}

func TestOptsValidate(t *testing.T) {
	opts := DefaultOpts
	assert.NoError(t, opts.Validate())
	for _, mod := range []func(o *Opts){
		func(o *Opts) { o.MinCommonPeaks = 2 },
		func(o *Opts) { o.TrimK = 0 },
		func(o *Opts) { o.MaxIterations = 0 },
		func(o *Opts) { o.CenterTolerance = math.NaN() },
		func(o *Opts) { o.PValueFloor = 0 },
		func(o *Opts) { o.PValueFloor = 1 },
	} {
		opts := DefaultOpts
		mod(&opts)
		assert.Error(t, opts.Validate())
	}
}

// cyclingA and cyclingM alternate between two inlier sets of 57 and 58
// points under plain trimmed refitting.
var (
	cyclingA = []float64{
		11.2, 5.78, 10.46, 6.41, 9.9, 6.81, 8.86, 8.92, 4.03, 9.67, 5.24, 8.04, 10.62, 9.09, 10.01,
		6.35, 7.92, 5.49, 7.92, 5.15, 11.4, 6.22, 8.85, 8.28, 7.43, 11.14, 9.12, 10.15, 5.43, 5.29,
		4.45, 10.28, 8.75, 4.69, 7.72, 8.17, 7.86, 8.99, 11.77, 6.98, 9.14, 10.12, 10.67, 7.41, 8.33,
		9.88, 9.24, 10.14, 8.54, 5.88, 8.83, 8.09, 9.55, 7.66, 8.58, 9.96, 6.4, 6.96, 4.8, 7.39,
	}
	cyclingM = []float64{
		-0.6, 0.23, -1.57, 0.11, -1.19, -0.72, -0.29, -0.55, 0.33, -0.78, -0.34, -0.79, -1.46, -1.14, -0.58,
		0.18, -0.13, -1.35, -0.04, -0.28, -0.35, -0.08, -0.47, -0.96, -0.93, -0.78, -1.3, -0.81, -0.18, -0.28,
		-0.27, -0.5, 0.21, 0.09, -1.05, -0.86, -2.33, -0.47, -0.48, -0.43, -0.85, -0.56, -2.68, -0.58, -0.82,
		-0.7, -0.5, -0.67, -0.47, -0.45, -1.1, -0.22, -1.08, -1.35, -0.66, -0.68, -0.27, -0.61, -0.13, 0.21,
	}
)

func TestFitMACycle(t *testing.T) {
	for _, maxIter := range []int{10, 1000} {
		opts := DefaultOpts
		opts.MaxIterations = maxIter
		fit, err := FitMA(cyclingM, cyclingA, opts)
		require.NoError(t, err, "max iterations %d", maxIter)
		assert.Equal(t, 3, fit.Iterations)
		assert.Equal(t, 57, fit.Inliers)
		assert.InDelta(t, 0.470751, fit.A, 1e-5)
		assert.InDelta(t, -0.124535, fit.B, 1e-5)
	}
}

func TestFitMASimulated(t *testing.T) {
	const n = 2000
	m := make([]float64, n)
	a := make([]float64, n)
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for i := range m {
			a[i] = 4 + 8*rng.Float64()
			m[i] = 0.3 - 0.1*a[i] + 0.4*rng.NormFloat64()
			if rng.Float64() < 0.1 {
				d := 1.5 + 2.5*rng.Float64()
				if rng.Intn(2) == 0 {
					d = -d
				}
				m[i] += d
			}
		}
		fit, err := FitMA(m, a, DefaultOpts)
		require.NoError(t, err, "seed %d", seed)
		assert.InDelta(t, -0.1, fit.B, 0.05, "seed %d", seed)
	}
}

func TestFitSetCenters(t *testing.T) {
	m, a := linePoints(100)
	for i := 0; i < 100; i += 10 {
		m[i] += 3
	}
	var peaks []*peak.Peak
	for i := range m {
		p, err := peak.New("chr1", i*1000, i*1000+200, peak.NoSummit)
		require.NoError(t, err)
		p.M, p.A = m[i], a[i]
		peaks = append(peaks, p)
	}
	s := peak.NewSet(peaks)
	fit, err := FitSet(s, DefaultOpts)
	require.NoError(t, err)
	assert.Equal(t, 90, fit.Inliers)
	assert.InDelta(t, 0.3, fit.Shift, 0.02)
	assert.InDelta(t, -0.2, fit.B, 0.02)

	Apply(fit, 1, s)
	var normM []float64
	s.Each(func(p *peak.Peak) { normM = append(normM, p.NormM) })
	assert.InDelta(t, 0, stat.Mean(normM, nil), 1e-9)
}

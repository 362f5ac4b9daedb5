package manorm

import (
	"fmt"

	"github.com/changebio/MAnorm/density"
	"github.com/grailbio/base/errors"
)

// Opts defines the behavior of Compare.
type Opts struct {
	// Density configures the read-density window, depth scaling and
	// pseudocount.
	Density density.Opts
	// MinCommonPeaks is the smallest merged common set the fit accepts.
	MinCommonPeaks int
	// TrimK is the outlier cutoff, in units of the robust residual scale
	// (1.4826 * MAD).
	TrimK float64
	// MaxIterations caps the number of trimmed refits.
	MaxIterations int
	// CenterTolerance bounds |mean M_norm| over the merged common peaks;
	// Compare fails beyond it.
	CenterTolerance float64
	// PValueFloor is the smallest reported p-value.
	PValueFloor float64
}

// DefaultOpts are the options used by bio-manorm unless overridden.
var DefaultOpts = Opts{
	Density:         density.DefaultOpts,
	MinCommonPeaks:  20,
	TrimK:           3,
	MaxIterations:   10,
	CenterTolerance: 0.05,
	PValueFloor:     1e-300,
}

// Validate checks option ranges.
func (o *Opts) Validate() error {
	switch {
	case o.MinCommonPeaks < 3:
		return errors.E(errors.Invalid, fmt.Sprintf("manorm: min common peaks must be at least 3, got %d", o.MinCommonPeaks))
	case !(o.TrimK > 0):
		return errors.E(errors.Invalid, fmt.Sprintf("manorm: trim cutoff must be positive, got %v", o.TrimK))
	case o.MaxIterations < 1:
		return errors.E(errors.Invalid, fmt.Sprintf("manorm: max iterations must be positive, got %d", o.MaxIterations))
	case !(o.CenterTolerance > 0):
		return errors.E(errors.Invalid, fmt.Sprintf("manorm: center tolerance must be positive, got %v", o.CenterTolerance))
	case !(o.PValueFloor > 0 && o.PValueFloor < 1):
		return errors.E(errors.Invalid, fmt.Sprintf("manorm: p-value floor must be in (0, 1), got %v", o.PValueFloor))
	}
	return nil
}

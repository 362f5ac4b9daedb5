package manorm

import "fmt"

// InsufficientCommonPeaksError is returned when there are too few merged
// common peaks to fit the MA model.
type InsufficientCommonPeaksError struct {
	Found    int
	Required int
}

func (e *InsufficientCommonPeaksError) Error() string {
	return fmt.Sprintf("manorm: found %d merged common peaks, need at least %d to fit the MA model", e.Found, e.Required)
}

// DegenerateFitError is returned when the robust fit cannot produce usable
// coefficients.  The fields describe the last iteration.
type DegenerateFitError struct {
	Reason        string
	Iterations    int
	Inliers       int
	ResidualScale float64
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("manorm: degenerate MA fit: %s (iteration %d, %d inliers, residual scale %g)",
		e.Reason, e.Iterations, e.Inliers, e.ResidualScale)
}

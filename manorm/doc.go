/*Package manorm compares the peaks of two ChIP-seq samples.

  Compare runs the whole pipeline: peaks are split into unique and merged
  common peaks (package overlap), read densities and raw M/A values are
  attached to every peak (package density), a line M = a + b*A is fitted to
  the merged common peaks by repeated trimmed least squares and its
  intercept shifted so the merged common peaks average M = 0, every peak is
  rescaled against that line, and finally each normalized M-value is scored
  against a normal null distribution estimated from the merged common peaks.

  Defaults:
    MinCommonPeaks  20     fewer merged common peaks is an error
    TrimK           3      outlier cutoff in robust residual-scale units
    MaxIterations   10     trimmed refits before giving up
    CenterTolerance 0.05   larger |mean M_norm| of merged common peaks is an error
    PValueFloor     1e-300 smaller p-values (including 0) are clamped here
*/
package manorm

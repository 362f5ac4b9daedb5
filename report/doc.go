/*Package report writes the result of a comparison to text files: the peak
  table, wiggle tracks of M-values and p-values, and BED files of biased and
  unbiased peaks.
*/
package report

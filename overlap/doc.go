/*Package overlap splits the peaks of two samples into peaks unique to each
  sample and merged common peaks.

  A peak is common when it overlaps at least one peak of the other sample
  (half-open intervals; touching peaks do not overlap).  Common peaks of both
  samples are then unioned: every maximal run of transitively overlapping
  common peaks becomes one merged peak whose summit is the midpoint of the
  merged interval.
*/
package overlap

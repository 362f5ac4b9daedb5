/*Package density counts sequencing reads under peaks.

  An Index holds, per chromosome, the sorted 5'-shifted read positions of one
  sample.  A Calculator combines the indices of both samples and attaches
  read counts, depth-scaled densities and raw M/A values to peaks.
*/
package density

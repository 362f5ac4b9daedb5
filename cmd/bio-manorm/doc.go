/*
Given the peaks and reads of two ChIP-seq samples, bio-manorm normalizes the
read densities of the two samples against each other using the peaks both
samples share, and reports for every peak a normalized M-value (log2 fold
change), A-value (average log2 intensity) and p-value.

Peaks may be BED-like (chr, start, end, optional summit relative to start) or
MACS .xls tables.  Reads may be BED6 (strand in column 6) or BAM.

Outputs, written next to the -name prefix:
  <name>_all_peak_MAvalues.xls            one row per peak
  <name>_peaks_Mvalues.wig                M-values at summits
  <name>_peaks_Pvalues.wig                -log10 p-values at summits
  <name>_M_over_<m>_biased_peaks_of_*.bed
  <name>_M_less_-<m>_biased_peaks_of_*.bed
  <name>_unbiased_peaks_of_*.bed

Sample usage:
bio-manorm \
    -p1 a_peaks.xls -p2 b_peaks.xls \
    -r1 a_reads.bed -r2 b_reads.bam \
    -s1 100 -s2 100 \
    -name a_vs_b
*/
package main

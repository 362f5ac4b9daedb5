/*Package peak defines the peak entity shared by every stage of the two-sample
  comparison, and Set, the per-chromosome collection the stages exchange.
  Coordinates are 0-based and half-open, as in BED.
*/
package peak

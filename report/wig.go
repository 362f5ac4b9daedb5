package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/tsv"
)

// wigSpan is the width drawn for each summit.
const wigSpan = 100

// Track selects the value plotted by WriteWig.
type Track int

const (
	// MValues plots normalized M-values.
	MValues Track = iota
	// PValues plots -log10 p-values.
	PValues
)

// WriteWig writes a variableStep wiggle track with one entry per peak
// summit.  Peaks of all groups are combined and sorted by summit.
func WriteWig(w io.Writer, all peak.Set, name string, track Track) error {
	title := name
	if track == PValues {
		title = name + "(-log10(p-value))"
	}
	if _, err := fmt.Fprintf(w, "track type=wiggle_0 name=%s visibility=full autoScale=on color=255,0,0 yLineMark=0 yLineOnOff=on priority=10\n", title); err != nil {
		return err
	}
	tw := tsv.NewWriter(w)
	for _, chrom := range all.Chroms() {
		peaks := append([]*peak.Peak(nil), all[chrom]...)
		sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Summit < peaks[j].Summit })
		tw.WriteString(fmt.Sprintf("variableStep chrom=%s span=%d", chrom, wigSpan))
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, p := range peaks {
			// wig positions are 1-based.
			tw.WriteUint32(uint32(p.Summit + 1))
			if track == PValues {
				tw.WriteString(formatFloat(negLog10(p.PValue)))
			} else {
				tw.WriteString(formatFloat(p.NormM))
			}
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

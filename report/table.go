package report

import (
	"io"
	"math"
	"strconv"

	"github.com/changebio/MAnorm/manorm"
	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/tsv"
)

// Names labels the two samples in headers and group columns.
type Names struct {
	Peaks1, Peaks2 string
	Reads1, Reads2 string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatPValue keeps full precision, since p-values span hundreds of orders
// of magnitude.
func formatPValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func groupLabel(g peak.Group, names Names) string {
	switch g {
	case peak.Unique1:
		return names.Peaks1 + "_unique"
	case peak.Unique2:
		return names.Peaks2 + "_unique"
	case peak.MergedCommon:
		return "merged_common_peak"
	}
	return g.String()
}

// WriteTable writes one row per peak: unique-1 peaks, then merged common
// peaks, then unique-2 peaks, each in chromosome order.  The summit column
// is relative to start.
func WriteTable(w io.Writer, res *manorm.Result, names Names) error {
	tw := tsv.NewWriter(w)
	for _, col := range []string{"chr", "start", "end", "summit", "M_value", "A_value", "P_value", "Peak_Group",
		"normalized_read_density_in_" + names.Reads1, "normalized_read_density_in_" + names.Reads2} {
		tw.WriteString(col)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, s := range []peak.Set{res.Unique1, res.Merged, res.Unique2} {
		for _, p := range s.Peaks() {
			tw.WriteString(p.Chrom)
			tw.WriteUint32(uint32(p.Start))
			tw.WriteUint32(uint32(p.End))
			tw.WriteUint32(uint32(p.Summit - p.Start))
			tw.WriteString(formatFloat(p.NormM))
			tw.WriteString(formatFloat(p.NormA))
			tw.WriteString(formatPValue(p.PValue))
			tw.WriteString(groupLabel(p.Group, names))
			tw.WriteString(formatFloat(p.NormDensity1))
			tw.WriteString(formatFloat(p.NormDensity2))
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// negLog10 maps a p-value to -log10(p) for tracks and filters.
func negLog10(p float64) float64 {
	return -math.Log10(p)
}

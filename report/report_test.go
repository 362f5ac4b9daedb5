package report

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/changebio/MAnorm/manorm"
	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeak(t *testing.T, chrom string, start, end, summit int, g peak.Group, m, p float64) *peak.Peak {
	pk, err := peak.New(chrom, start, end, summit)
	require.NoError(t, err)
	pk.Group = g
	pk.NormM, pk.NormA, pk.PValue = m, 5, p
	pk.NormDensity1, pk.NormDensity2 = 10, 2.5
	return pk
}

func newResult(t *testing.T) *manorm.Result {
	return &manorm.Result{
		Unique1: peak.NewSet([]*peak.Peak{newPeak(t, "chr1", 100, 300, 150, peak.Unique1, 2.5, 1e-5)}),
		Unique2: peak.NewSet([]*peak.Peak{newPeak(t, "chr2", 10, 50, peak.NoSummit, peak.Unique2, -3, 1e-300)}),
		Merged: peak.NewSet([]*peak.Peak{
			newPeak(t, "chr1", 1000, 1200, peak.NoSummit, peak.MergedCommon, 0.25, 0.5),
			newPeak(t, "chr1", 500, 700, peak.NoSummit, peak.MergedCommon, 1.5, 0.2),
		}),
		Fit:  manorm.Fit{A: 0.1, B: -0.05},
		Null: manorm.NullModel{Sigma: 0.4},
	}
}

var testNames = Names{Peaks1: "p1", Peaks2: "p2", Reads1: "r1", Reads2: "r2"}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, newResult(t), testNames))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "chr\tstart\tend\tsummit\tM_value\tA_value\tP_value\tPeak_Group\tnormalized_read_density_in_r1\tnormalized_read_density_in_r2", lines[0])
	assert.Equal(t, "chr1\t100\t300\t50\t2.500000\t5.000000\t1e-05\tp1_unique\t10.000000\t2.500000", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "chr1\t500\t700\t100\t1.500000\t"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "chr1\t1000\t1200\t100\t"), lines[3])
	assert.Equal(t, "chr2\t10\t50\t20\t-3.000000\t5.000000\t1e-300\tp2_unique\t10.000000\t2.500000", lines[4])
}

func TestWriteWig(t *testing.T) {
	res := newResult(t)
	var buf bytes.Buffer
	require.NoError(t, WriteWig(&buf, res.All(), "x", PValues))
	want := `track type=wiggle_0 name=x(-log10(p-value)) visibility=full autoScale=on color=255,0,0 yLineMark=0 yLineOnOff=on priority=10
variableStep chrom=chr1 span=100
151	5.000000
601	0.698970
1101	0.301030
variableStep chrom=chr2 span=100
31	300.000000
`
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteWig(&buf, res.All(), "x", MValues))
	assert.Contains(t, buf.String(), "\n151\t2.500000\n")
	assert.Contains(t, buf.String(), "\n31\t-3.000000\n")
}

func TestFilter(t *testing.T) {
	res := newResult(t)
	f := DefaultFilter
	over, under, label := f.Biased(res)
	assert.Equal(t, "all_peaks", label)
	require.Len(t, over, 1)
	assert.Equal(t, 100, over[0].Start)
	require.Len(t, under, 1)
	assert.Equal(t, "chr2", under[0].Chrom)

	unbiased, ulabel := f.Unbiased(res)
	assert.Equal(t, "all_peaks", ulabel)
	require.Len(t, unbiased, 1)
	assert.Equal(t, 1000, unbiased[0].Start)

	f.OverlapDependent = true
	_, _, label = f.Biased(res)
	assert.Equal(t, "unique_peaks", label)
	_, ulabel = f.Unbiased(res)
	assert.Equal(t, "merged_common_peaks", ulabel)

	// A large M is not biased without a small p-value.
	f.BiasedP = 1e-6
	over, under, _ = f.Biased(res)
	assert.Empty(t, over)
	assert.Len(t, under, 1)
}

func TestWriteBED(t *testing.T) {
	res := newResult(t)
	var buf bytes.Buffer
	require.NoError(t, WriteBED(&buf, res.Merged.Peaks(), "x"))
	assert.Equal(t, "chr1\t500\t700\tfrom_x_1\t1.500000\nchr1\t1000\t1200\tfrom_x_2\t0.250000\n", buf.String())
}

func TestWriteAll(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	prefix := filepath.Join(tempDir, "cmp")
	require.NoError(t, WriteAll(context.Background(), newResult(t), prefix, testNames, DefaultFilter))
	for _, name := range []string{
		"cmp_all_peak_MAvalues.xls",
		"cmp_peaks_Mvalues.wig",
		"cmp_peaks_Pvalues.wig",
		"cmp_M_over_1.00_biased_peaks_of_all_peaks.bed",
		"cmp_M_less_-1.00_biased_peaks_of_all_peaks.bed",
		"cmp_unbiased_peaks_of_all_peaks.bed",
	} {
		data, err := ioutil.ReadFile(filepath.Join(tempDir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestSummary(t *testing.T) {
	s := Summary(newResult(t))
	assert.Contains(t, s, "1 unique to sample 1, 1 unique to sample 2, 2 merged common")
	assert.Contains(t, s, "null sigma 0.4000")
}

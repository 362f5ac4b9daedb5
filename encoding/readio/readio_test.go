package readio

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

const readsBED = `chr1	100	136	r1	0	+
chr1	200	236	r2	0	-
chr2	50	86	r3	0	+
`

func TestReadBED(t *testing.T) {
	idx, err := ReadBED(strings.NewReader(readsBED), 10)
	assert.NoError(t, err)
	expect.EQ(t, idx.Total(), 3)
	expect.EQ(t, idx.Positions("chr1"), []int{110, 226})
	expect.EQ(t, idx.Positions("chr2"), []int{60})

	idx, err = ReadBED(strings.NewReader(readsBED), 0)
	assert.NoError(t, err)
	expect.EQ(t, idx.Positions("chr1"), []int{100, 236})
}

func TestReadBEDErrors(t *testing.T) {
	tests := []string{
		"chr1 100 136 r1 0\n",
		"chr1 100 136 r1 0 .\n",
		"chr1 abc 136 r1 0 +\n",
		"chr1 100 abc r1 0 -\n",
	}
	for _, in := range tests {
		_, err := ReadBED(strings.NewReader(in), 100)
		expect.True(t, errors.Is(errors.Invalid, err), "%q: %v", in, err)
	}
}

func newRecord(t *testing.T, name string, ref *sam.Reference, pos int, flags sam.Flags) *sam.Record {
	// sam.NewRecord rejects an empty sequence, so unmapped reads carry one too.
	var (
		cigar []sam.CigarOp
		seq   = []byte("ACGTACGTAC")
		qual  = bytes.Repeat([]byte{30}, 10)
	)
	if ref != nil {
		cigar = []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 10)}
	}
	rec, err := sam.NewRecord(name, ref, nil, pos, -1, 0, 60, cigar, seq, qual, nil)
	assert.NoError(t, err)
	rec.Flags = flags
	return rec
}

func newBAM(t *testing.T) []byte {
	chr1, err := sam.NewReference("chr1", "", "", 100000, nil, nil)
	assert.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 100000, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	assert.NoError(t, err)

	var buf bytes.Buffer
	bw, err := bam.NewWriter(&buf, header, 1)
	assert.NoError(t, err)
	for _, rec := range []*sam.Record{
		newRecord(t, "a", chr1, 100, 0),
		newRecord(t, "b", chr1, 500, sam.Reverse),
		newRecord(t, "c", chr2, 40, 0),
		newRecord(t, "d", nil, -1, sam.Unmapped),
	} {
		assert.NoError(t, bw.Write(rec))
	}
	assert.NoError(t, bw.Close())
	return buf.Bytes()
}

func TestReadBAM(t *testing.T) {
	idx, err := ReadBAM(bytes.NewReader(newBAM(t)), 3)
	assert.NoError(t, err)
	expect.EQ(t, idx.Total(), 3)
	expect.EQ(t, idx.Positions("chr1"), []int{103, 507})
	expect.EQ(t, idx.Positions("chr2"), []int{43})
}

func TestReadFile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	bamPath := filepath.Join(tempDir, "reads.bam")
	assert.NoError(t, ioutil.WriteFile(bamPath, newBAM(t), 0644))

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(readsBED))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	bedPath := filepath.Join(tempDir, "reads.bed.gz")
	assert.NoError(t, ioutil.WriteFile(bedPath, buf.Bytes(), 0644))

	ctx := context.Background()
	idx, err := ReadFile(ctx, bamPath, 0)
	assert.NoError(t, err)
	expect.EQ(t, idx.Positions("chr1"), []int{100, 510})

	idx, err = ReadFile(ctx, bedPath, 10)
	assert.NoError(t, err)
	expect.EQ(t, idx.Total(), 3)
	expect.EQ(t, idx.Positions("chr2"), []int{60})
}

package fasta

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const fastaData = `>chr7 some description
acgtAC
GAGGAC
GCG
>chr8
ACGT
`

func TestGet(t *testing.T) {
	tests := []struct {
		seq        string
		start, end uint64
		want       string
		wantErr    bool
	}{
		{"chr7", 0, 1, "A", false},
		{"chr7", 1, 2, "C", false},
		{"chr7", 0, 15, "ACGTACGAGGACGCG", false},
		{"chr7", 5, 9, "CGAG", false},
		{"chr8", 0, 4, "ACGT", false},
		{"chr7", 0, 16, "", true},
		{"chr7", 3, 3, "", true},
		{"chr9", 0, 1, "", true},
	}
	f, err := New(strings.NewReader(fastaData), Opts{ToUpper: true})
	assert.NoError(t, err)
	for _, test := range tests {
		got, err := f.Get(test.seq, test.start, test.end)
		if test.wantErr {
			expect.True(t, err != nil, "%+v", test)
			continue
		}
		assert.NoError(t, err)
		expect.EQ(t, got, test.want, "%+v", test)
	}
}

func TestLenAndNames(t *testing.T) {
	f, err := New(strings.NewReader(fastaData), Opts{})
	assert.NoError(t, err)
	expect.EQ(t, f.SeqNames(), []string{"chr7", "chr8"})
	n, err := f.Len("chr7")
	assert.NoError(t, err)
	expect.EQ(t, n, uint64(15))
	_, err = f.Len("chrX")
	expect.True(t, err != nil)

	// Soft-masking is kept without ToUpper.
	s, err := f.Get("chr7", 0, 2)
	assert.NoError(t, err)
	expect.EQ(t, s, "ac")
}

func TestNewErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"ACGT\n",
		">chr1\nAC\n>chr1\nGT\n",
	} {
		_, err := New(strings.NewReader(in), Opts{})
		expect.True(t, err != nil, "%q", in)
	}
}

// Package seqmatrix extracts the genomic sequence under each peak and encodes
// it as a one-hot matrix with one row per base (A, C, G, T) and one column
// per position.
//
// The genome is a directory holding one FASTA file per chromosome, named
// after the chromosome (optionally with a .fa, .fasta or .gz suffix).
package seqmatrix

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/changebio/MAnorm/encoding/bedio"
	"github.com/changebio/MAnorm/encoding/fasta"
	"github.com/grailbio/base/errors"
	gunsafe "github.com/grailbio/base/unsafe"
)

// Peak is one row of a BED6 peak file: chr, start, end, name, summit,
// strand.
type Peak struct {
	Chrom  string
	Start  int
	End    int
	Name   string
	Summit int
	Strand byte
}

// ReadPeaks parses a BED6 peak file.  The summit column must be an integer,
// but the summit is then reset to the interval midpoint.
func ReadPeaks(r io.Reader) ([]Peak, error) {
	var peaks []Peak
	scanner := bedio.NewScanner(r, 6)
	for scanner.Scan() {
		tokens := scanner.Tokens()
		if len(tokens) < 6 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("seqmatrix: line %d: need 6 columns, got %d", scanner.Line(), len(tokens)))
		}
		var fields [3]int
		for i, tok := range [][]byte{tokens[1], tokens[2], tokens[4]} {
			v, err := strconv.Atoi(gunsafe.BytesToString(tok))
			if err != nil {
				return nil, errors.E(errors.Invalid, fmt.Sprintf("seqmatrix: line %d: invalid integer %q", scanner.Line(), tok))
			}
			fields[i] = v
		}
		start, end := fields[0], fields[1]
		if start < 0 || end <= start {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("seqmatrix: line %d: invalid interval %d-%d", scanner.Line(), start, end))
		}
		strand := tokens[5][0]
		if len(tokens[5]) != 1 || (strand != '+' && strand != '-' && strand != '.') {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("seqmatrix: line %d: invalid strand %q", scanner.Line(), tokens[5]))
		}
		peaks = append(peaks, Peak{
			Chrom:  string(tokens[0]),
			Start:  start,
			End:    end,
			Name:   string(tokens[3]),
			Summit: (start + end) / 2,
			Strand: strand,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(peaks) == 0 {
		return nil, errors.E(errors.Invalid, "seqmatrix: no peaks in peak file")
	}
	return peaks, nil
}

// Genome loads per-chromosome FASTA files on demand.  Thread-safe.
type Genome struct {
	dir string

	mu    sync.Mutex
	seqs  map[string]fasta.Fasta
	names map[string]string
}

// NewGenome returns a Genome reading from dir.
func NewGenome(dir string) *Genome {
	return &Genome{dir: dir, seqs: map[string]fasta.Fasta{}, names: map[string]string{}}
}

func (g *Genome) load(ctx context.Context, chrom string) (fasta.Fasta, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.seqs[chrom]; ok {
		return f, g.names[chrom], nil
	}
	var lastErr error
	for _, suffix := range []string{"", ".fa", ".fasta", ".fa.gz"} {
		path := filepath.Join(g.dir, chrom+suffix)
		r, closeFn, err := bedio.Open(ctx, path)
		if err != nil {
			lastErr = err
			continue
		}
		f, err := fasta.New(r, fasta.Opts{ToUpper: true})
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return nil, "", errors.E(err, "seqmatrix: reading", path)
		}
		// Per-chromosome files hold a single record; its header name need not
		// match the file name.
		name := f.SeqNames()[0]
		g.seqs[chrom], g.names[chrom] = f, name
		return f, name, nil
	}
	return nil, "", errors.E(lastErr, "seqmatrix: no FASTA file for", chrom, "in", g.dir)
}

// Sequence returns the bases of chrom in [start, end), truncated at the end
// of the chromosome.
func (g *Genome) Sequence(ctx context.Context, chrom string, start, end int) (string, error) {
	f, name, err := g.load(ctx, chrom)
	if err != nil {
		return "", err
	}
	n, err := f.Len(name)
	if err != nil {
		return "", err
	}
	if uint64(end) > n {
		end = int(n)
	}
	if start >= end {
		return "", nil
	}
	return f.Get(name, uint64(start), uint64(end))
}

// Opts defines the sequence window of Extract.
type Opts struct {
	// Length is the window width used when Centered is set.
	Length int
	// Centered takes summit +/- Length/2 instead of [start, end).
	Centered bool
}

// Window returns the interval extracted for p.
func Window(p Peak, opts Opts) (start, end int) {
	if !opts.Centered {
		return p.Start, p.End
	}
	start = p.Summit - opts.Length/2
	if start < 0 {
		start = 0
	}
	return start, p.Summit + opts.Length/2
}

// Matrix is a one-hot encoding: Matrix[b][i] is 1 when position i holds
// base b.
type Matrix [4][]uint8

// Encode one-hot encodes seq.  Rows are A, C, G, T for the + strand; for the
// - strand each base is replaced by its complement, so the rows read T, G,
// C, A.  Column order is never reversed.  Bases other than ACGT give an
// all-zero column.
func Encode(seq string, strand byte) Matrix {
	var m Matrix
	for b := range m {
		m[b] = make([]uint8, len(seq))
	}
	rows := &plusRows
	if strand == '-' {
		rows = &minusRows
	}
	for i := 0; i < len(seq); i++ {
		if r := rows[seq[i]]; r > 0 {
			m[r-1][i] = 1
		}
	}
	return m
}

// plusRows and minusRows map a base to 1 + its matrix row; 0 means no row.
var plusRows, minusRows [256]uint8

func init() {
	for i, b := range []byte("ACGT") {
		plusRows[b] = uint8(i + 1)
	}
	for i, b := range []byte("TGCA") {
		minusRows[b] = uint8(i + 1)
	}
}

// Record is one extracted peak.
type Record struct {
	Peak
	SeqStart int
	SeqEnd   int
	Seq      string
	Matrix   Matrix
}

// Extract reads and encodes the sequence window of every peak.
func Extract(ctx context.Context, g *Genome, peaks []Peak, opts Opts) ([]Record, error) {
	if opts.Centered && opts.Length <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("seqmatrix: window length must be positive, got %d", opts.Length))
	}
	records := make([]Record, len(peaks))
	for i, p := range peaks {
		start, end := Window(p, opts)
		// SeqEnd is clipped to the chromosome end.
		seq, err := g.Sequence(ctx, p.Chrom, start, end)
		if err != nil {
			return nil, err
		}
		records[i] = Record{Peak: p, SeqStart: start, SeqEnd: start + len(seq), Seq: seq, Matrix: Encode(seq, p.Strand)}
	}
	return records, nil
}

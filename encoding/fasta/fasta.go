// Package fasta parses FASTA files into memory.  FASTA files consist of a
// number of named sequences that may be interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end).  Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// Opts defines behavior of New.
type Opts struct {
	// ToUpper converts all bases to upper case, dropping soft-masking.
	ToUpper bool
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory.
func New(r io.Reader, opts Opts) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seqName string
	var seq bytes.Buffer
	store := func() error {
		if seqName == "" {
			return errors.Errorf("malformed FASTA file")
		}
		if _, ok := f.seqs[seqName]; ok {
			return errors.Errorf("duplicate sequence %s", seqName)
		}
		s := seq.Bytes()
		if opts.ToUpper {
			s = bytes.ToUpper(s)
		}
		f.seqs[seqName] = string(s)
		f.seqNames = append(f.seqNames, seqName)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if seqName != "" || seq.Len() != 0 {
				if err := store(); err != nil {
					return nil, err
				}
			}
			seqName = strings.Split(string(line[1:]), " ")[0]
		} else {
			seq.Write(bytes.TrimRight(line, "\r"))
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if seqName == "" && seq.Len() == 0 {
		return nil, errors.Errorf("empty FASTA file")
	}
	if err := store(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}

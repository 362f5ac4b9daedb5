// Package readio turns aligned reads into a density.Index.
//
// Each read contributes one position: its 5' end moved shift bases towards
// the 3' end, which estimates the center of the sequenced fragment.  For a
// read on the forward strand that is start+shift, for a read on the reverse
// strand end-shift.
package readio

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/changebio/MAnorm/density"
	"github.com/changebio/MAnorm/encoding/bedio"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// ReadBED parses reads in BED6 layout: chr, start, end, name, score, strand.
func ReadBED(r io.Reader, shift int) (*density.Index, error) {
	b := density.NewBuilder()
	scanner := bedio.NewScanner(r, 6)
	for scanner.Scan() {
		tokens := scanner.Tokens()
		if len(tokens) < 6 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("readio: line %d has %d columns, need 6 (strand in column 6)", scanner.Line(), len(tokens)))
		}
		start, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("readio: line %d: bad start %q", scanner.Line(), tokens[1]))
		}
		end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("readio: line %d: bad end %q", scanner.Line(), tokens[2]))
		}
		var pos int
		switch string(tokens[5]) {
		case "+":
			pos = start + shift
		case "-":
			pos = end - shift
		default:
			return nil, errors.E(errors.Invalid, fmt.Sprintf("readio: line %d: bad strand %q", scanner.Line(), tokens[5]))
		}
		b.Add(string(tokens[0]), pos)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// ReadBAM reads every mapped record of a BAM stream.
func ReadBAM(r io.Reader, shift int) (*density.Index, error) {
	br, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, err
	}
	defer br.Close()
	b := density.NewBuilder()
	nUnmapped := 0
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.Flags&sam.Unmapped != 0 || rec.Ref == nil {
			nUnmapped++
			continue
		}
		pos := rec.Pos + shift
		if rec.Flags&sam.Reverse != 0 {
			pos = rec.End() - shift
		}
		b.Add(rec.Ref.Name(), pos)
	}
	if nUnmapped > 0 {
		log.Debug.Printf("readio: skipped %d unmapped records", nUnmapped)
	}
	return b.Build(), nil
}

// ReadFile reads the reads at path; names ending in .bam are read as BAM,
// anything else as (possibly gzipped) BED.
func ReadFile(ctx context.Context, path string, shift int) (idx *density.Index, err error) {
	reader, closeFn, err := bedio.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "readio: open", path)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if strings.HasSuffix(path, ".bam") {
		idx, err = ReadBAM(reader, shift)
	} else {
		idx, err = ReadBED(reader, shift)
	}
	if err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("readio: %d reads on %d chromosomes loaded from %s", idx.Total(), len(idx.Chroms()), path)
	return idx, nil
}

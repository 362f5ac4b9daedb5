// Package peakio reads peak files into peak.Sets.
//
// Two layouts are supported:
//   BED-like: chr, start, end and an optional 4th column holding the summit
//             relative to start.  A 4th column that is not an integer (a peak
//             name, say) means the summit is unknown and defaults to the
//             midpoint.
//   MACS xls: the tab-separated peak table written by MACS.  Column 5 is the
//             summit, relative to start unless the header names it
//             "abs_summit".  Rows that do not parse are skipped.
// Lines starting with '#' are ignored in both layouts.
package peakio

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/changebio/MAnorm/encoding/bedio"
	"github.com/changebio/MAnorm/peak"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
)

// ReadBED parses a BED-like peak file.
func ReadBED(r io.Reader) (peak.Set, error) {
	s := peak.Set{}
	scanner := bedio.NewScanner(r, 4)
	for scanner.Scan() {
		tokens := scanner.Tokens()
		if len(tokens) < 3 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peakio: line %d has fewer than 3 columns", scanner.Line()))
		}
		start, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peakio: line %d: bad start %q", scanner.Line(), tokens[1]))
		}
		end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peakio: line %d: bad end %q", scanner.Line(), tokens[2]))
		}
		summit := peak.NoSummit
		if len(tokens) == 4 {
			if rel, err := strconv.Atoi(gunsafe.BytesToString(tokens[3])); err == nil {
				summit = start + rel
			}
		}
		p, err := peak.New(string(tokens[0]), start, end, summit)
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("peakio: line %d", scanner.Line()))
		}
		s.Add(p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	s.Sort()
	return s, nil
}

// ReadXls parses a MACS xls peak table.
func ReadXls(r io.Reader) (peak.Set, error) {
	s := peak.Set{}
	absSummit := false
	skipped := 0
	scanner := bedio.NewScanner(r, 5)
	for scanner.Scan() {
		tokens := scanner.Tokens()
		if len(tokens) < 5 {
			skipped++
			continue
		}
		if string(tokens[0]) == "chr" && string(tokens[1]) == "start" {
			absSummit = string(tokens[4]) == "abs_summit"
			continue
		}
		start, e1 := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		end, e2 := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		summit, e3 := strconv.Atoi(gunsafe.BytesToString(tokens[4]))
		if e1 != nil || e2 != nil || e3 != nil {
			skipped++
			continue
		}
		if !absSummit {
			summit += start
		}
		p, err := peak.New(string(tokens[0]), start, end, summit)
		if err != nil {
			skipped++
			continue
		}
		s.Add(p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("peakio: skipped %d unparsable xls rows", skipped)
	}
	s.Sort()
	return s, nil
}

// ReadFile reads the peaks at path, choosing the layout by file name.
func ReadFile(ctx context.Context, path string) (s peak.Set, err error) {
	reader, closeFn, err := bedio.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "peakio: open", path)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if strings.HasSuffix(strings.TrimSuffix(path, ".gz"), ".xls") {
		s, err = ReadXls(reader)
	} else {
		s, err = ReadBED(reader)
	}
	if err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("peakio: %d peaks on %d chromosomes loaded from %s", s.Len(), len(s.Chroms()), path)
	return s, nil
}

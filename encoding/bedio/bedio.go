// Package bedio provides the line tokenizer and file opener shared by the
// peak and read parsers.  Files may live anywhere grailbio/base/file can
// reach and may be gzip-compressed.
package bedio

import (
	"bufio"
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// Scanner splits a text file into lines of whitespace-separated tokens,
// skipping blank lines and lines starting with '#'.
type Scanner struct {
	scanner *bufio.Scanner
	tokens  [][]byte
	n       int
	line    int
}

// NewScanner returns a Scanner that keeps at most maxTokens tokens per line.
func NewScanner(r io.Reader, maxTokens int) *Scanner {
	return &Scanner{
		scanner: bufio.NewScanner(r),
		tokens:  make([][]byte, maxTokens),
	}
}

// Scan advances to the next non-comment line.
func (s *Scanner) Scan() bool {
	for s.scanner.Scan() {
		s.line++
		curLine := s.scanner.Bytes()
		s.n = getTokens(s.tokens, curLine)
		if s.n == 0 || s.tokens[0][0] == '#' {
			continue
		}
		return true
	}
	return false
}

// Tokens returns the tokens of the current line.  They alias the scanner's
// buffer and are only valid until the next call to Scan.
func (s *Scanner) Tokens() [][]byte {
	return s.tokens[:s.n]
}

// Line returns the 1-based number of the current line.
func (s *Scanner) Line() int {
	return s.line
}

// Err returns the first read error.
func (s *Scanner) Err() error {
	return s.scanner.Err()
}

// Open opens path for reading, decompressing it when the name says gzip.
// The returned function closes the file.
func Open(ctx context.Context, path string) (io.Reader, func() error, error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return infile.Close(ctx) }
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz, err := gzip.NewReader(reader)
		if err != nil {
			_ = infile.Close(ctx)
			return nil, nil, err
		}
		reader = gz
	}
	return reader, closeFn, nil
}

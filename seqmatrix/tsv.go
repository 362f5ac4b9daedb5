package seqmatrix

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
)

// WriteTSV writes one line per record: chrom, sequence start and end, name,
// strand, width, and the matrix flattened row by row as a string of 0/1
// digits per row.
func WriteTSV(w io.Writer, records []Record) error {
	tw := tsv.NewWriter(w)
	for _, col := range []string{"chr", "seq_start", "seq_end", "name", "strand", "width", "A", "C", "G", "T"} {
		tw.WriteString(col)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	row := make([]byte, 0, 1024)
	for _, r := range records {
		tw.WriteString(r.Chrom)
		tw.WriteUint32(uint32(r.SeqStart))
		tw.WriteUint32(uint32(r.SeqEnd))
		tw.WriteString(r.Name)
		tw.WriteString(string(r.Strand))
		tw.WriteString(strconv.Itoa(len(r.Seq)))
		for b := range r.Matrix {
			row = row[:0]
			for _, v := range r.Matrix[b] {
				row = append(row, '0'+v)
			}
			tw.WriteString(string(row))
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

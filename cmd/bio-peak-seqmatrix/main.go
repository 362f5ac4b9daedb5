// bio-peak-seqmatrix extracts the genomic sequence under each peak of a BED6
// file and writes its one-hot encoding as TSV.
//
// Sample usage:
// bio-peak-seqmatrix -genome hg19_chroms/ -len 200 -center peaks.bed > peaks.tsv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/changebio/MAnorm/encoding/bedio"
	"github.com/changebio/MAnorm/seqmatrix"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	genomeDir = flag.String("genome", "", "Directory holding one FASTA file per chromosome; required")
	length    = flag.Int("len", 1000, "Window width when -center is set")
	center    = flag.Bool("center", false, "Extract summit +/- len/2 instead of the whole peak")
	out       = flag.String("out", "", "Output TSV path; default stdout")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] peaks.bed\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 || *genomeDir == "" {
		usage()
		os.Exit(2)
	}
	ctx := vcontext.Background()
	r, closeFn, err := bedio.Open(ctx, flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}
	peaks, err := seqmatrix.ReadPeaks(r)
	if cerr := closeFn(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
	log.Printf("bio-peak-seqmatrix: %d peaks", len(peaks))

	records, err := seqmatrix.Extract(ctx, seqmatrix.NewGenome(*genomeDir), peaks, seqmatrix.Opts{Length: *length, Centered: *center})
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *out == "" {
		if err := seqmatrix.WriteTSV(os.Stdout, records); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}
	dst, err := file.Create(ctx, *out)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := seqmatrix.WriteTSV(dst.Writer(ctx), records); err != nil {
		log.Fatalf("%v", err)
	}
	if err := dst.Close(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

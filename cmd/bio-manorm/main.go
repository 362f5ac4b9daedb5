package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/changebio/MAnorm/density"
	"github.com/changebio/MAnorm/encoding/peakio"
	"github.com/changebio/MAnorm/encoding/readio"
	"github.com/changebio/MAnorm/manorm"
	"github.com/changebio/MAnorm/report"
	"github.com/changebio/MAnorm/util"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	peaks1Path       = flag.String("p1", "", "Peak file of sample 1 (BED-like or MACS .xls); required")
	peaks2Path       = flag.String("p2", "", "Peak file of sample 2 (BED-like or MACS .xls); required")
	reads1Path       = flag.String("r1", "", "Read file of sample 1 (BED6 or .bam); required")
	reads2Path       = flag.String("r2", "", "Read file of sample 2 (BED6 or .bam); required")
	shift1           = flag.Int("s1", 100, "Bases each sample 1 read is shifted from its 5' end towards its 3' end")
	shift2           = flag.Int("s2", 100, "Bases each sample 2 read is shifted from its 5' end towards its 3' end")
	windowMode       = flag.String("window-mode", manorm.DefaultOpts.Density.Window.String(), "Read-density window: 'summit' (summit +/- width/2) or 'peak' (whole peak)")
	width            = flag.Int("w", 2*manorm.DefaultOpts.Density.HalfWindow, "Width of the summit-centered read-density window")
	depthScale       = flag.String("depth", manorm.DefaultOpts.Density.Depth.String(), "Sequencing-depth scaling: 'mean', 'rpm' or 'none'")
	pseudocount      = flag.Float64("pseudocount", manorm.DefaultOpts.Density.Pseudocount, "Added to read densities before the log2 transform")
	minCommon        = flag.Int("min-common", manorm.DefaultOpts.MinCommonPeaks, "Minimum number of merged common peaks required to fit the MA model")
	trimK            = flag.Float64("trim-k", manorm.DefaultOpts.TrimK, "Outlier cutoff of the robust fit, in robust residual standard deviations")
	maxIter          = flag.Int("max-iter", manorm.DefaultOpts.MaxIterations, "Maximum number of trimmed refits")
	centerTol        = flag.Float64("center-tol", manorm.DefaultOpts.CenterTolerance, "Fail when |mean normalized M| of merged common peaks exceeds this")
	pFloor           = flag.Float64("p-floor", manorm.DefaultOpts.PValueFloor, "Smallest reported p-value")
	biasedM          = flag.Float64("m", report.DefaultFilter.BiasedM, "|M| cutoff of biased peaks; peaks below it are unbiased")
	biasedP          = flag.Float64("p", report.DefaultFilter.BiasedP, "p-value cutoff of biased peaks")
	overlapDependent = flag.Bool("overlap-dependent", false, "Draw biased peaks from unique peaks only and unbiased peaks from merged common peaks only")
	name             = flag.String("name", "manorm", "Output path prefix")
	parallelism      = flag.Int("parallelism", 0, "Maximum number of chromosomes processed concurrently; 0 = automatic")
	logJSON          = flag.Bool("log-json", false, "Emit log messages as JSON")
)

func bioManormUsage() {
	fmt.Printf("Usage: %s [OPTIONS] -p1 peaks1 -p2 peaks2 -r1 reads1 -r2 reads2\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func sampleName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".bed", ".bam", ".xls"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func main() {
	flag.Usage = bioManormUsage
	shutdown := grail.Init()
	defer shutdown()

	if *logJSON {
		restore, err := util.UseZap(log.Info)
		if err != nil {
			log.Fatalf("zap logger: %v", err)
		}
		defer restore()
	}
	var missing []string
	for _, f := range []struct{ name, val string }{{"p1", *peaks1Path}, {"p2", *peaks2Path}, {"r1", *reads1Path}, {"r2", *reads2Path}} {
		if f.val == "" {
			missing = append(missing, "-"+f.name)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("Missing required flags: %s", strings.Join(missing, " "))
	}

	opts := manorm.DefaultOpts
	var err error
	if opts.Density.Window, err = density.ParseWindowMode(*windowMode); err != nil {
		log.Fatalf("%v", err)
	}
	if opts.Density.Depth, err = density.ParseDepthScale(*depthScale); err != nil {
		log.Fatalf("%v", err)
	}
	opts.Density.HalfWindow = *width / 2
	opts.Density.Pseudocount = *pseudocount
	opts.Density.Parallelism = *parallelism
	opts.MinCommonPeaks = *minCommon
	opts.TrimK = *trimK
	opts.MaxIterations = *maxIter
	opts.CenterTolerance = *centerTol
	opts.PValueFloor = *pFloor

	ctx := vcontext.Background()
	peaks1, err := peakio.ReadFile(ctx, *peaks1Path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	peaks2, err := peakio.ReadFile(ctx, *peaks2Path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	reads1, err := readio.ReadFile(ctx, *reads1Path, *shift1)
	if err != nil {
		log.Fatalf("%v", err)
	}
	reads2, err := readio.ReadFile(ctx, *reads2Path, *shift2)
	if err != nil {
		log.Fatalf("%v", err)
	}

	res, err := manorm.Compare(ctx, peaks1, peaks2, reads1, reads2, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("bio-manorm: %s", report.Summary(&res))

	names := report.Names{
		Peaks1: sampleName(*peaks1Path),
		Peaks2: sampleName(*peaks2Path),
		Reads1: sampleName(*reads1Path),
		Reads2: sampleName(*reads2Path),
	}
	filter := report.Filter{BiasedM: *biasedM, BiasedP: *biasedP, OverlapDependent: *overlapDependent}
	if err := report.WriteAll(ctx, &res, *name, names, filter); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}

package report

import (
	"context"
	"fmt"
	"io"

	"github.com/changebio/MAnorm/manorm"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// writeFile creates path and hands its writer to fn.
func writeFile(ctx context.Context, path string, fn func(w io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(out.Writer(ctx))
}

// WriteAll writes every report for res next to prefix:
//   <prefix>_all_peak_MAvalues.xls
//   <prefix>_peaks_Mvalues.wig, <prefix>_peaks_Pvalues.wig
//   <prefix>_M_over_<m>_biased_peaks_of_<pop>.bed
//   <prefix>_M_less_-<m>_biased_peaks_of_<pop>.bed
//   <prefix>_unbiased_peaks_of_<pop>.bed
func WriteAll(ctx context.Context, res *manorm.Result, prefix string, names Names, f Filter) error {
	if err := writeFile(ctx, prefix+"_all_peak_MAvalues.xls", func(w io.Writer) error {
		return WriteTable(w, res, names)
	}); err != nil {
		return err
	}
	all := res.All()
	if err := writeFile(ctx, prefix+"_peaks_Mvalues.wig", func(w io.Writer) error {
		return WriteWig(w, all, prefix, MValues)
	}); err != nil {
		return err
	}
	if err := writeFile(ctx, prefix+"_peaks_Pvalues.wig", func(w io.Writer) error {
		return WriteWig(w, all, prefix, PValues)
	}); err != nil {
		return err
	}

	over, under, label := f.Biased(res)
	if err := writeFile(ctx, fmt.Sprintf("%s_M_over_%.2f_biased_peaks_of_%s.bed", prefix, f.BiasedM, label), func(w io.Writer) error {
		return WriteBED(w, over, label)
	}); err != nil {
		return err
	}
	if err := writeFile(ctx, fmt.Sprintf("%s_M_less_-%.2f_biased_peaks_of_%s.bed", prefix, f.BiasedM, label), func(w io.Writer) error {
		return WriteBED(w, under, label)
	}); err != nil {
		return err
	}
	log.Printf("report: %d biased peaks (%d over, %d under)", len(over)+len(under), len(over), len(under))

	unbiased, ulabel := f.Unbiased(res)
	if err := writeFile(ctx, fmt.Sprintf("%s_unbiased_peaks_of_%s.bed", prefix, ulabel), func(w io.Writer) error {
		return WriteBED(w, unbiased, ulabel)
	}); err != nil {
		return err
	}
	log.Printf("report: %d unbiased peaks", len(unbiased))
	return nil
}

// Summary describes res in one line.
func Summary(res *manorm.Result) string {
	return fmt.Sprintf("%d unique to sample 1, %d unique to sample 2, %d merged common; M = %.4f + %.4f*A; null sigma %.4f; %d p-values clamped",
		res.Unique1.Len(), res.Unique2.Len(), res.Merged.Len(), res.Fit.A, res.Fit.B, res.Null.Sigma, res.Clamped)
}

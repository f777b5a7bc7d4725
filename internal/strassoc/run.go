// Package strassoc streams variant records from a VCF and tests each
// for association with a binary phenotype, adjusting for covariates
package strassoc

import (
	"fmt"
	"io"
	"os"

	"github.com/carbocation/vcfgo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pladd04/TRTools/config"
)

// AssocCmd is the entry point for the root command
func AssocCmd(cmd *cobra.Command, args []string) {
	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	opts, err := inputParser{}.parse(cmd, config.New())
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := Run(opts); err != nil {
		log.Fatalf("%v", err)
	}
}

// Run executes the whole association pipeline: load the cohort,
// stream records, test, and write the summary table
func Run(opts *Options) error {
	cohort, err := loadCohort(opts)
	if err != nil {
		return err
	}

	src, err := OpenVCF(opts.VCF, opts.Region)
	if err != nil {
		return fmt.Errorf("failed to open VCF %s: %v", opts.VCF, err)
	}
	defer src.Close()

	order, vcfIndex := matchVCF(cohort, src.Samples())
	if len(order) == 0 {
		log.Warn("no overlap between phenotyped samples and VCF samples")
	}
	log.Debugf("analyzing %d samples, %d covariates", len(order), len(cohort.CovarNames))

	var out io.Writer = os.Stdout
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := NewWriter(out)
	if err := w.Header(); err != nil {
		return err
	}

	for {
		v := src.Next()
		if v == nil {
			break
		}
		if err := testRecord(w, v, order, vcfIndex, opts); err != nil {
			return err
		}
	}

	return nil
}

// testRecord runs the primary association for one record plus any
// requested STR allele sub-tests
func testRecord(w *Writer, v *vcfgo.Variant, order []*Sample, vcfIndex map[string]int, opts *Options) error {
	class := Classify(v, opts.InferSNPSTR, opts.MinSTRLength)
	if class == ClassSkip {
		log.Debugf("%s:%d: skipped, too short for an STR", v.Chrom(), v.Pos)
		return nil
	}

	primary := STRLengthSum()
	if class == ClassSNP {
		primary = SNPDosage()
	}
	if err := runTest(w, v, order, vcfIndex, primary, AssocType(class, 0, 0), opts.MinMaf, opts); err != nil {
		return err
	}
	if class != ClassSTR {
		return nil
	}

	if opts.AlleleTests {
		for alt := 1; alt <= len(v.Alt()); alt++ {
			label := AssocType(class, alt, 0)
			if err := runTest(w, v, order, vcfIndex, STRByAllele(alt), label, 0, opts); err != nil {
				return err
			}
		}
	}
	if opts.AlleleTestsLength {
		for _, length := range altLengths(v.Alt()) {
			label := AssocType(class, 0, length)
			if err := runTest(w, v, order, vcfIndex, STRByLength(length), label, 0, opts); err != nil {
				return err
			}
		}
	}

	return nil
}

// runTest encodes genotypes, runs one association, and emits its row.
// Tests that fail are logged and dropped, never fatal
func runTest(w *Writer, v *vcfgo.Variant, order []*Sample, vcfIndex map[string]int, enc Encoding, label string, minmaf float64, opts *Options) error {
	gts, kept := LoadGT(v, order, vcfIndex, enc)
	assoc, err := PerformAssociation(Test{GT: gts, Samples: kept, MinMaf: minmaf}, opts.CaseControl, opts.MaxIter, opts.Tol)
	if err != nil {
		log.Debugf("%s:%d %s: no result: %v", v.Chrom(), v.Pos, label, err)
		return nil
	}
	return w.Row(v.Chrom(), v.Pos, label, assoc)
}

// loadCohort builds the phenotype/covariate table from the configured
// phenotype source, covariates file, and sample lists
func loadCohort(opts *Options) (*Cohort, error) {
	var cohort *Cohort
	var err error
	if opts.Fam != "" {
		cohort, err = LoadFam(opts.Fam, opts.MissingPheno, opts.Sex)
	} else {
		cohort, err = LoadPheno(opts.Pheno, opts.MissingPheno, opts.MPheno)
	}
	if err != nil {
		return nil, err
	}

	if opts.Covar != "" {
		if err := cohort.AddCovars(opts.Covar, opts.CovarSelect); err != nil {
			return nil, err
		}
	}
	if opts.Sex {
		cohort.UseSexCovariate()
	}

	if opts.SamplesFile != "" {
		if err := cohort.Restrict(opts.SamplesFile, true); err != nil {
			return nil, err
		}
	}
	if opts.ExcludeSamplesFile != "" {
		if err := cohort.Restrict(opts.ExcludeSamplesFile, false); err != nil {
			return nil, err
		}
	}

	return cohort, nil
}

// matchVCF intersects the cohort with the VCF samples. The analysis
// order follows the VCF header so output is deterministic
func matchVCF(cohort *Cohort, vcfSamples []string) ([]*Sample, map[string]int) {
	byKey := make(map[string]*Sample, len(cohort.Samples))
	for _, s := range cohort.Samples {
		byKey[s.Key()] = s
	}

	var order []*Sample
	vcfIndex := make(map[string]int, len(vcfSamples))
	for col, name := range vcfSamples {
		s, ok := byKey[name]
		if !ok {
			continue
		}
		order = append(order, s)
		vcfIndex[name] = col
	}

	return order, vcfIndex
}

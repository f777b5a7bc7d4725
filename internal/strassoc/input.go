package strassoc

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pladd04/TRTools/config"
)

// CovarMode says how covariate columns are chosen from the covariates file
type CovarMode int

const (
	// CovarDefault takes every column after the four identity columns
	CovarDefault CovarMode = iota

	// CovarByName takes the named columns from the file's header row
	CovarByName

	// CovarByNumber takes the 1-based column numbers given
	CovarByNumber
)

// CovarSelection is the covariate-column policy. It is resolved once
// when flags are parsed and never re-decided per call
type CovarSelection struct {
	Mode    CovarMode
	Names   []string
	Numbers []int
}

// Region is a single genomic interval chrom[:start-end]. A zero End
// means the whole chromosome
type Region struct {
	Chrom string
	Start uint64
	End   uint64
}

// Contains reports whether the position falls inside the region
func (r *Region) Contains(chrom string, pos uint64) bool {
	if chrom != r.Chrom {
		return false
	}
	if r.End == 0 {
		return true
	}
	return pos >= r.Start && pos <= r.End
}

// Options holds the fully validated settings for one association run
type Options struct {
	// the input VCF, plain text or gzipped
	VCF string

	// where to write the association table. Empty means stdout
	Out string

	// FAM file with phenotype info (mutually exclusive with Pheno)
	Fam string

	// generic phenotype file (mutually exclusive with Fam)
	Pheno string

	// 1-based phenotype column selector: column MPheno+2 of Pheno
	MPheno int

	// phenotype value marking a sample as unphenotyped
	MissingPheno string

	// optional include/exclude sample list files (FID, IID pairs)
	SamplesFile        string
	ExcludeSamplesFile string

	// optional covariates file and its column-selection policy
	Covar       string
	CovarSelect CovarSelection

	// use the FAM sex column as a covariate
	Sex bool

	// true for logistic (case/control), false for linear
	CaseControl bool

	// optional restriction to a single genomic region
	Region *Region

	// infer SNP vs STR status per record instead of assuming STR
	InferSNPSTR bool

	// run bi-allelic sub-tests per alternate allele / per allele length
	AlleleTests       bool
	AlleleTestsLength bool

	// MAF cutoff for primary tests
	MinMaf float64

	// minimum REF length for an inferred STR
	MinSTRLength int

	// logistic fit iteration cap and convergence tolerance
	MaxIter int
	Tol     float64
}

// RegisterFlags declares every plinkstr flag on the command and binds
// the settings-backed ones to Viper
func RegisterFlags(cmd *cobra.Command) {
	// Input/output
	cmd.Flags().String("vcf", "", "input VCF file (plain or gzipped)")
	cmd.Flags().String("out", "", "output file (default: stdout)")
	cmd.Flags().String("fam", "", "FAM file with phenotype info")
	cmd.Flags().String("samples", "", "file with list of samples to include")
	cmd.Flags().String("exclude-samples", "", "file with list of samples to exclude")

	// Phenotypes
	cmd.Flags().String("pheno", "", "phenotypes file (to use instead of --fam)")
	cmd.Flags().Int("mpheno", 1, "use (n+2)th column from --pheno")
	cmd.Flags().String("missing-phenotype", "-9", "missing phenotype code")

	// Covariates
	cmd.Flags().String("covar", "", "covariates file")
	cmd.Flags().String("covar-name", "", "names of covariates to load, comma-separated")
	cmd.Flags().String("covar-number", "", "column numbers of covariates to load, comma-separated")
	cmd.Flags().Bool("sex", false, "include sex from fam file as covariate")

	// Association testing
	cmd.Flags().Bool("linear", false, "perform linear regression")
	cmd.Flags().Bool("logistic", false, "perform logistic regression")
	cmd.Flags().String("region", "", "only process this region (chrom:start-end)")
	cmd.Flags().Bool("infer-snpstr", false, "infer which positions are SNPs vs. STRs")
	cmd.Flags().Bool("allele-tests", false, "also perform allele-based tests using each separate allele")
	cmd.Flags().Bool("allele-tests-length", false, "also perform allele-based tests using allele length")
	cmd.Flags().Float64("minmaf", 0.05, "ignore bi-allelic sites with low MAF")

	// Fine mapping
	cmd.Flags().String("condition", "", "comma-separated list of positions (chrom:start) to condition on")

	cmd.Flags().String("settings", "", "YAML settings file overriding built-in defaults")
	cmd.Flags().BoolP("verbose", "v", false, "log per-test diagnostics")

	viper.BindPFlag("min-maf", cmd.Flags().Lookup("minmaf"))
	viper.BindPFlag("missing-phenotype", cmd.Flags().Lookup("missing-phenotype"))
	viper.BindPFlag("settings", cmd.Flags().Lookup("settings"))
	viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
}

// inputParser contains methods for parsing flags from the input &cobra.Command
type inputParser struct{}

// parse gathers and validates every flag into an Options struct.
// Configuration errors returned here are fatal: nothing has been
// written yet when they surface
func (p inputParser) parse(cmd *cobra.Command, c *config.Config) (*Options, error) {
	fs := cmd.Flags()

	vcf, _ := fs.GetString("vcf")
	if vcf == "" {
		return nil, fmt.Errorf("must specify an input VCF with --vcf")
	}

	linear, _ := fs.GetBool("linear")
	logistic, _ := fs.GetBool("logistic")
	if linear == logistic {
		return nil, fmt.Errorf("must choose one of --linear or --logistic")
	}

	fam, _ := fs.GetString("fam")
	pheno, _ := fs.GetString("pheno")
	if fam == "" && pheno == "" {
		return nil, fmt.Errorf("must specify phenotype using either --fam or --pheno")
	}
	if fam != "" && pheno != "" {
		return nil, fmt.Errorf("--fam and --pheno are mutually exclusive")
	}

	sex, _ := fs.GetBool("sex")
	if sex && fam == "" {
		return nil, fmt.Errorf("--sex only works when using --fam (not --pheno)")
	}

	covar, _ := fs.GetString("covar")
	covarName, _ := fs.GetString("covar-name")
	covarNumber, _ := fs.GetString("covar-number")
	sel, err := p.parseCovarSelection(covar, covarName, covarNumber)
	if err != nil {
		return nil, err
	}

	regionFlag, _ := fs.GetString("region")
	region, err := p.parseRegion(regionFlag)
	if err != nil {
		return nil, err
	}

	if condition, _ := fs.GetString("condition"); condition != "" {
		log.Warnf("--condition is not implemented and will be ignored: %s", condition)
	}
	if linear {
		log.Warn("linear regression is not implemented: every test will be skipped")
	}

	out, _ := fs.GetString("out")
	samples, _ := fs.GetString("samples")
	excludeSamples, _ := fs.GetString("exclude-samples")
	mpheno, _ := fs.GetInt("mpheno")
	inferSNPSTR, _ := fs.GetBool("infer-snpstr")
	alleleTests, _ := fs.GetBool("allele-tests")
	alleleTestsLength, _ := fs.GetBool("allele-tests-length")

	return &Options{
		VCF:                vcf,
		Out:                out,
		Fam:                fam,
		Pheno:              pheno,
		MPheno:             mpheno,
		MissingPheno:       c.MissingPhenotype,
		SamplesFile:        samples,
		ExcludeSamplesFile: excludeSamples,
		Covar:              covar,
		CovarSelect:        sel,
		Sex:                sex,
		CaseControl:        logistic,
		Region:             region,
		InferSNPSTR:        inferSNPSTR,
		AlleleTests:        alleleTests,
		AlleleTestsLength:  alleleTestsLength,
		MinMaf:             c.MinMaf,
		MinSTRLength:       c.MinSTRLength,
		MaxIter:            c.MaxFitIterations,
		Tol:                c.FitTolerance,
	}, nil
}

// parseCovarSelection resolves the name/number/default branching into
// a single CovarSelection
func (p inputParser) parseCovarSelection(covar, names, numbers string) (CovarSelection, error) {
	if names != "" && numbers != "" {
		return CovarSelection{}, fmt.Errorf("--covar-name and --covar-number are mutually exclusive")
	}
	if covar == "" && (names != "" || numbers != "") {
		return CovarSelection{}, fmt.Errorf("--covar-name and --covar-number require --covar")
	}

	if names != "" {
		return CovarSelection{
			Mode:  CovarByName,
			Names: strings.Split(names, ","),
		}, nil
	}

	if numbers != "" {
		var cols []int
		for _, field := range strings.Split(numbers, ",") {
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 {
				return CovarSelection{}, fmt.Errorf("bad covariate column number %q", field)
			}
			cols = append(cols, n)
		}
		return CovarSelection{
			Mode:    CovarByNumber,
			Numbers: cols,
		}, nil
	}

	return CovarSelection{Mode: CovarDefault}, nil
}

// parseRegion parses chrom or chrom:start-end. A nil Region means the
// whole file
func (p inputParser) parseRegion(region string) (*Region, error) {
	if region == "" {
		return nil, nil
	}

	chrom, span, found := strings.Cut(region, ":")
	if chrom == "" {
		return nil, fmt.Errorf("bad region %q", region)
	}
	if !found {
		return &Region{Chrom: chrom}, nil
	}

	startField, endField, found := strings.Cut(span, "-")
	if !found {
		return nil, fmt.Errorf("bad region %q: expected chrom:start-end", region)
	}
	start, err := strconv.ParseUint(startField, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad region start in %q", region)
	}
	end, err := strconv.ParseUint(endField, 10, 64)
	if err != nil || end < start {
		return nil, fmt.Errorf("bad region end in %q", region)
	}

	return &Region{Chrom: chrom, Start: start, End: end}, nil
}

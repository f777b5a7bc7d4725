package strassoc

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Skip reasons. Every test that emits no row fails with one of these,
// so callers and tests can tell a low-MAF skip from an optimizer
// failure
var (
	errNoSamples  = errors.New("no samples with a genotype call")
	errLowMAF     = errors.New("maf outside the testable range")
	errLinearStub = errors.New("linear regression not implemented")
	errSingular   = errors.New("singular design matrix")
	errNoConverge = errors.New("fit did not converge")
	errSeparated  = errors.New("complete separation, no finite fit")
)

// Assoc is one successfully computed association result
type Assoc struct {
	PVal float64
	Coef float64
	MAF  float64
	N    int
}

// Test is the explicit input to one association test: the encoded
// genotypes aligned with the cohort samples that had a complete call,
// plus the MAF floor for this test. Allele sub-tests run with a zero
// floor
type Test struct {
	GT      []float64
	Samples []*Sample
	MinMaf  float64
}

// PerformAssociation runs one regression of phenotype on genotype and
// covariates. It returns a skip reason instead of a result when the
// MAF falls outside (MinMaf, 1-MinMaf) or the fit fails
func PerformAssociation(t Test, caseControl bool, maxIter int, tol float64) (*Assoc, error) {
	n := len(t.GT)
	if n == 0 {
		return nil, errNoSamples
	}

	sum := 0.0
	for _, gt := range t.GT {
		sum += gt
	}
	maf := sum / float64(2*n)
	if maf <= t.MinMaf || maf >= 1-t.MinMaf {
		return nil, errLowMAF
	}

	if !caseControl {
		// TODO implement linear regression
		return nil, errLinearStub
	}

	ncovars := len(t.Samples[0].Covars)
	p := 2 + ncovars // intercept, genotype, covariates
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i, s := range t.Samples {
		X.Set(i, 0, 1)
		X.Set(i, 1, t.GT[i])
		for j, c := range s.Covars {
			X.Set(i, 2+j, c)
		}
		y[i] = float64(s.Phenotype)
	}

	coefs, stderrs, err := fitLogistic(X, y, maxIter, tol)
	if err != nil {
		return nil, err
	}

	return &Assoc{
		PVal: waldPValue(coefs[1], stderrs[1]),
		Coef: coefs[1],
		MAF:  maf,
		N:    n,
	}, nil
}

package strassoc

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// fitLogistic fits a logistic regression of y on the columns of X by
// iteratively reweighted least squares and returns the coefficient
// estimates with their standard errors. X must carry an intercept
// column; y must be 0/1
func fitLogistic(X *mat.Dense, y []float64, maxIter int, tol float64) (coefs, stderrs []float64, err error) {
	n, p := X.Dims()
	beta := mat.NewVecDense(p, nil)
	mu := make([]float64, n)
	resid := mat.NewVecDense(n, nil)
	weighted := mat.NewDense(n, p, nil)
	hessian := mat.NewDense(p, p, nil)
	grad := mat.NewVecDense(p, nil)
	var step mat.VecDense

	converged := false
	for iter := 0; iter < maxIter && !converged; iter++ {
		for i := 0; i < n; i++ {
			mu[i] = sigmoid(mat.Dot(X.RowView(i), beta))
			resid.SetVec(i, y[i]-mu[i])

			// w floored away from zero so the system stays solvable
			// when fitted probabilities saturate
			w := math.Max(mu[i]*(1-mu[i]), 1e-10)
			for j := 0; j < p; j++ {
				weighted.Set(i, j, X.At(i, j)*w)
			}
		}

		hessian.Mul(X.T(), weighted)
		grad.MulVec(X.T(), resid)

		if err := step.SolveVec(hessian, grad); err != nil {
			return nil, nil, errSingular
		}

		converged = true
		for j := 0; j < p; j++ {
			d := step.AtVec(j)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, nil, errNoConverge
			}
			if math.Abs(d) >= tol {
				converged = false
			}
		}
		beta.AddVec(beta, &step)
	}
	if !converged {
		return nil, nil, errNoConverge
	}

	// a (near-)perfect fit means the classes are separated and the
	// likelihood has no finite maximum
	separated := true
	for i := 0; i < n; i++ {
		if math.Abs(y[i]-mu[i]) > 1e-4 {
			separated = false
			break
		}
	}
	if separated {
		return nil, nil, errSeparated
	}

	var covariance mat.Dense
	if err := covariance.Inverse(hessian); err != nil {
		return nil, nil, errSingular
	}

	coefs = make([]float64, p)
	stderrs = make([]float64, p)
	for j := 0; j < p; j++ {
		coefs[j] = beta.AtVec(j)
		v := covariance.At(j, j)
		if v <= 0 || math.IsNaN(v) {
			return nil, nil, errSingular
		}
		stderrs[j] = math.Sqrt(v)
	}

	return coefs, stderrs, nil
}

// waldPValue is the two-sided p-value of coef under its asymptotic
// normal distribution
func waldPValue(coef, stderr float64) float64 {
	return 2 * distuv.UnitNormal.Survival(math.Abs(coef/stderr))
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

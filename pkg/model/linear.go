package model

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// rcond is the relative singular value cutoff used to find the effective rank.
const rcond = 1e-12

// LinearRegression is ordinary least squares with an intercept. X and y are
// centred and the coefficients are the minimum-norm least squares solution,
// so perfectly collinear inputs (e.g. a full one-hot block) are fine.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

// NewLinearRegression returns an unfitted model.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Fit solves the least squares problem for X (n x p) and y.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("linear: empty X")
	}
	if len(y) != n {
		return errors.New("linear: X and y length mismatch")
	}
	p := len(X[0])

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	xMean := make([]float64, p)
	for _, row := range X {
		if len(row) != p {
			return errors.New("linear: inconsistent number of features in X rows")
		}
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}

	m.Coef = make([]float64, p)
	m.Intercept = yMean
	if p == 0 {
		return nil
	}

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return errors.New("linear: svd factorization failed")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		// every feature is constant; the mean is the best fit
		return nil
	}
	var coef mat.VecDense
	svd.SolveVecTo(&coef, yc, rank)
	for j := 0; j < p; j++ {
		m.Coef[j] = coef.AtVec(j)
		m.Intercept -= m.Coef[j] * xMean[j]
	}
	return nil
}

// Predict returns predictions for rows in X.
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	pred := make([]float64, len(X))
	for i, row := range X {
		sum := m.Intercept
		for j, v := range row {
			if j < len(m.Coef) {
				sum += m.Coef[j] * v
			}
		}
		pred[i] = sum
	}
	return pred
}

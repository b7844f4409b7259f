package model

import (
	"fmt"
	"math"
)

// Ridge is an L2-regularized linear regressor solved in closed form via the
// normal equations. The small regularization term keeps the system solvable
// when raw OHLCV columns are nearly collinear; a genuinely singular system
// still surfaces as an error. No randomness anywhere, so repeated fits on
// the same data are identical.
type Ridge struct {
	Weights   []float64
	Intercept float64
	Lambda    float64
}

// NewRidge returns a regressor with a conservative default penalty.
func NewRidge() *Ridge {
	return &Ridge{Lambda: 1e-3}
}

// Fit solves (X'X + lambda*I) w = X'y with an unpenalized intercept term.
func (m *Ridge) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("ridge: %d rows vs %d targets", len(X), len(y))
	}
	p := len(X[0])
	dim := p + 1 // intercept last

	// normal equations
	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim+1) // augmented with X'y
	}
	for _, row := range X {
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				a[i][j] += row[i] * row[j]
			}
			a[i][p] += row[i]
			a[p][i] += row[i]
		}
		a[p][p]++
	}
	for k, row := range X {
		for i := 0; i < p; i++ {
			a[i][dim] += row[i] * y[k]
		}
		a[p][dim] += y[k]
	}
	for i := 0; i < p; i++ {
		a[i][i] += m.Lambda
	}

	w, err := solve(a, dim)
	if err != nil {
		return fmt.Errorf("ridge: %w", err)
	}
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ridge: solution is not finite")
		}
	}
	m.Weights = w[:p]
	m.Intercept = w[p]
	return nil
}

// Predict returns the point estimate for one feature row.
func (m *Ridge) Predict(x []float64) float64 {
	out := m.Intercept
	for j, v := range x {
		out += m.Weights[j] * v
	}
	return out
}

// solve runs Gaussian elimination with partial pivoting on the augmented
// matrix a (dim x dim+1).
func solve(a [][]float64, dim int) ([]float64, error) {
	for col := 0; col < dim; col++ {
		pivot := col
		for r := col + 1; r < dim; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular matrix at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := col + 1; r < dim; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c <= dim; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}
	w := make([]float64, dim)
	for i := dim - 1; i >= 0; i-- {
		sum := a[i][dim]
		for j := i + 1; j < dim; j++ {
			sum -= a[i][j] * w[j]
		}
		w[i] = sum / a[i][i]
	}
	return w, nil
}

package model

import (
	"fmt"
	"math"
)

// Logistic is a binary logistic-regression classifier trained with batch
// gradient descent. Weights start at zero and the iteration count is fixed,
// so training is fully deterministic: identical inputs always produce
// identical weights and metrics.
type Logistic struct {
	Weights      []float64
	Bias         float64
	LearningRate float64
	Iterations   int
}

// NewLogistic returns a classifier with the default training schedule.
func NewLogistic() *Logistic {
	return &Logistic{LearningRate: 0.1, Iterations: 500}
}

// Fit trains on standardized features X and 0/1 labels y. classWeights
// reweights per-class gradient contributions; inverse-frequency weights keep
// minority-class errors from being ignored.
func (m *Logistic) Fit(X [][]float64, y []int, classWeights map[int]float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("logistic: %d rows vs %d labels", len(X), len(y))
	}
	p := len(X[0])
	m.Weights = make([]float64, p)
	m.Bias = 0

	n := float64(len(X))
	grad := make([]float64, p)
	for iter := 0; iter < m.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, row := range X {
			pred := m.PredictProba(row)
			w := classWeights[y[i]]
			if w == 0 {
				w = 1
			}
			err := (pred - float64(y[i])) * w
			for j, v := range row {
				grad[j] += err * v
			}
			gradBias += err
		}
		for j := range m.Weights {
			m.Weights[j] -= m.LearningRate * grad[j] / n
		}
		m.Bias -= m.LearningRate * gradBias / n
	}

	for _, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("logistic: weights diverged")
		}
	}
	return nil
}

// PredictProba returns P(y=1 | x).
func (m *Logistic) PredictProba(x []float64) float64 {
	z := m.Bias
	for j, v := range x {
		z += m.Weights[j] * v
	}
	return 1 / (1 + math.Exp(-z))
}

// Predict returns the 0/1 class at the 0.5 threshold.
func (m *Logistic) Predict(x []float64) int {
	if m.PredictProba(x) >= 0.5 {
		return 1
	}
	return 0
}

// InverseFrequencyWeights computes balanced class weights n/(k*count(c)),
// the same scheme as balanced class weighting in the usual toolkits.
func InverseFrequencyWeights(y []int) map[int]float64 {
	counts := make(map[int]int)
	for _, v := range y {
		counts[v]++
	}
	weights := make(map[int]float64, len(counts))
	n := float64(len(y))
	k := float64(len(counts))
	for c, cnt := range counts {
		weights[c] = n / (k * float64(cnt))
	}
	return weights
}

package dataset

import "math"

// StandardScaler standardizes features to zero mean and unit variance.
// Fit is called exactly once, on the fit partition; applying it to the eval
// partition or the live row never refits, which keeps evaluation and
// production predictions free of leakage.
type StandardScaler struct {
	Means   []float64
	Stddevs []float64
	fitted  bool
}

// Fit computes per-feature mean and population standard deviation.
// Near-zero deviations are clamped to 1 so constant columns pass through.
func (s *StandardScaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	p := len(rows[0])
	s.Means = make([]float64, p)
	s.Stddevs = make([]float64, p)
	n := float64(len(rows))
	for j := 0; j < p; j++ {
		sum := 0.0
		for _, row := range rows {
			sum += row[j]
		}
		s.Means[j] = sum / n
	}
	for j := 0; j < p; j++ {
		ss := 0.0
		for _, row := range rows {
			d := row[j] - s.Means[j]
			ss += d * d
		}
		s.Stddevs[j] = math.Sqrt(ss / n)
		if s.Stddevs[j] < 1e-10 {
			s.Stddevs[j] = 1
		}
	}
	s.fitted = true
}

// Fitted reports whether Fit has run.
func (s *StandardScaler) Fitted() bool { return s.fitted }

// Transform returns a scaled copy of row.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Stddevs[j]
	}
	return out
}

// TransformAll returns scaled copies of all rows.
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}

package model

import (
	"strconv"

	"StockCast/internal/domain/models"
)

// Accuracy is the share of exact matches.
func Accuracy(actual, predicted []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	hits := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(actual))
}

// ClassificationReport builds per-class precision/recall/f1/support for the
// 0 and 1 classes.
func ClassificationReport(actual, predicted []int) map[string]models.ClassMetrics {
	report := make(map[string]models.ClassMetrics, 2)
	for _, class := range []int{0, 1} {
		var tp, fp, fn, support int
		for i := range actual {
			switch {
			case actual[i] == class && predicted[i] == class:
				tp++
			case actual[i] != class && predicted[i] == class:
				fp++
			case actual[i] == class && predicted[i] != class:
				fn++
			}
			if actual[i] == class {
				support++
			}
		}
		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[strconv.Itoa(class)] = models.ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}
	}
	return report
}

// RegressionMetrics computes MSE, MAE and R-squared.
func RegressionMetrics(actual, predicted []float64) (mse, mae, r2 float64) {
	n := float64(len(actual))
	if n == 0 {
		return 0, 0, 0
	}
	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= n

	var ssRes, ssTot, absSum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		if d < 0 {
			d = -d
		}
		absSum += d
		t := actual[i] - mean
		ssTot += t * t
	}
	mse = ssRes / n
	mae = absSum / n
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return mse, mae, r2
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictionsServed *prometheus.CounterVec
	horizonFailures   *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	lastClose         *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictionsServed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_predictions_served_total",
				Help: "Total number of per-horizon predictions served",
			},
			[]string{"symbol", "horizon"},
		),
		horizonFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_horizon_failures_total",
				Help: "Total number of per-horizon training failures",
			},
			[]string{"horizon", "kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_close",
				Help: "Last observed closing price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPredictionServed records a successfully trained horizon.
func (r *Recorder) RecordPredictionServed(symbol, horizon string) {
	r.predictionsServed.WithLabelValues(symbol, horizon).Inc()
}

// RecordHorizonFailure records a per-horizon training failure by kind.
func (r *Recorder) RecordHorizonFailure(horizon, kind string) {
	r.horizonFailures.WithLabelValues(horizon, kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the latest closing price for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

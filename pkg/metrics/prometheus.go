package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	finalEquity *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	cacheTotal  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantease_runs_total",
				Help: "Total strategy runs by model kind and outcome",
			},
			[]string{"model", "status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantease_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		finalEquity: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantease_final_equity",
				Help: "Final strategy equity of the last run per ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantease_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantease_series_cache_total",
				Help: "Price series cache lookups by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRun records one completed or failed strategy run.
func (r *Recorder) RecordRun(model, status string) {
	r.runsTotal.WithLabelValues(model, status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFinalEquity records the final simulated equity for a ticker.
func (r *Recorder) RecordFinalEquity(ticker string, value float64) {
	r.finalEquity.WithLabelValues(ticker).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCache records a series cache hit or miss.
func (r *Recorder) RecordCache(outcome string) {
	r.cacheTotal.WithLabelValues(outcome).Inc()
}

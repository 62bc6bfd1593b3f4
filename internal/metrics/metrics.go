// Package metrics exposes evaluation counters and timings over Prometheus.
// Each collector owns its registry so independent engines in one process do
// not collide.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks the evaluation pipeline.
type Collector struct {
	registry *prometheus.Registry

	evaluations     *prometheus.CounterVec
	scoringFailures *prometheus.CounterVec
	recalcExchanges prometheus.Counter
	recalcFailures  prometheus.Counter
	duration        prometheus.Histogram
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lca",
			Name:      "evaluations_total",
			Help:      "Evaluations completed, by outcome.",
		}, []string{"outcome"}),
		scoringFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lca",
			Name:      "scoring_failures_total",
			Help:      "Scoring requests that produced no finite score, by method.",
		}, []string{"method"}),
		recalcExchanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lca",
			Name:      "recalc_exchanges_total",
			Help:      "Exchange amounts rewritten by recalculation passes.",
		}),
		recalcFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lca",
			Name:      "recalc_failures_total",
			Help:      "Formula resolutions that failed during recalculation.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lca",
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of one full evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	c.registry.MustRegister(c.evaluations, c.scoringFailures, c.recalcExchanges, c.recalcFailures, c.duration)
	return c
}

// ObserveEvaluation records one completed evaluation.
func (c *Collector) ObserveEvaluation(outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.evaluations.WithLabelValues(outcome).Inc()
	c.duration.Observe(seconds)
}

// ObserveScoringFailure records one request that fell back to the sentinel.
func (c *Collector) ObserveScoringFailure(method string) {
	if c == nil {
		return
	}
	c.scoringFailures.WithLabelValues(method).Inc()
}

// ObserveRecalc records the outcome of one recalculation pass.
func (c *Collector) ObserveRecalc(updated, failed int) {
	if c == nil {
		return
	}
	c.recalcExchanges.Add(float64(updated))
	c.recalcFailures.Add(float64(failed))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus metrics for FDP fetching, aggregation and caching.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datavisiting/fdp-explorer/pkg/rdf"
)

const namespace = "fdp_explorer"

// Metrics holds the application's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec   // By outcome (ok/timeout/connection/parse) and format
	fetchDuration *prometheus.HistogramVec // By format

	aggregationDuration prometheus.Histogram
	aggregatedDatasets  prometheus.Gauge

	cacheRequests *prometheus.CounterVec // By result (hit/miss/error)
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of FDP metadata fetches",
		}, []string{"outcome", "format"}),

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "FDP metadata fetch duration in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),

		aggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Time to aggregate datasets across all FDPs of a session",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),

		aggregatedDatasets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "datasets",
			Help:      "Number of datasets in the most recent aggregation",
		}),

		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Dataset cache lookups by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchTotal,
		m.fetchDuration,
		m.aggregationDuration,
		m.aggregatedDatasets,
		m.cacheRequests,
	)
	return m
}

// ObserveFetch records one completed fetch.
func (m *Metrics) ObserveFetch(outcome string, format rdf.Format, duration time.Duration) {
	f := string(format)
	if f == "" {
		f = "none"
	}
	m.fetchTotal.WithLabelValues(outcome, f).Inc()
	m.fetchDuration.WithLabelValues(f).Observe(duration.Seconds())
}

// ObserveAggregation records one aggregation run.
func (m *Metrics) ObserveAggregation(datasets int, duration time.Duration) {
	m.aggregationDuration.Observe(duration.Seconds())
	m.aggregatedDatasets.Set(float64(datasets))
}

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ObserveCache records a dataset cache lookup.
func (m *Metrics) ObserveCache(result string) {
	m.cacheRequests.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

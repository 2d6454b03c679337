package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SearchMetrics holds all Prometheus metrics for the search service.
type SearchMetrics struct {
	SearchesTotal     *prometheus.CounterVec
	SearchDuration    *prometheus.HistogramVec
	SearchResults     *prometheus.HistogramVec
	LogWritesTotal    *prometheus.CounterVec
	BackgroundDropped prometheus.Counter
}

// NewSearchMetrics initializes and registers the metrics with the default registry.
func NewSearchMetrics() *SearchMetrics {
	return NewSearchMetricsWith(prometheus.DefaultRegisterer)
}

// NewSearchMetricsWith registers the metrics with reg. Tests pass a fresh registry.
func NewSearchMetricsWith(reg prometheus.Registerer) *SearchMetrics {
	factory := promauto.With(reg)
	return &SearchMetrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests by provider, status and reason.",
		}, []string{"provider", "status", "reason"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search request duration by provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		SearchResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "search",
			Name:      "results",
			Help:      "Number of (deduplicated) results returned per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"provider"}),
		LogWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "log",
			Name:      "writes_total",
			Help:      "Total number of search log writes by sink and outcome.",
		}, []string{"sink", "outcome"}), // outcome: ok, error
		BackgroundDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "log",
			Name:      "background_dropped_total",
			Help:      "Background log writes rejected because the worker pool was saturated or closed.",
		}),
	}
}

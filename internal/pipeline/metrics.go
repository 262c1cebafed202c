package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a run. Each Metrics owns its
// registry, so several managers never share counters.
type Metrics struct {
	registry *prometheus.Registry

	// items counts processed items by result (ok, failed)
	items *prometheus.CounterVec

	// fallbacks counts items tokenized from the whole score
	fallbacks prometheus.Counter

	// tokens counts emitted tokens
	tokens prometheus.Counter

	// duration tracks per-item extraction latency
	duration prometheus.Histogram
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		items: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notecorpus_items_total",
			Help: "Processed corpus items by result",
		}, []string{"result"}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "notecorpus_fallback_total",
			Help: "Items tokenized from the flattened score",
		}),
		tokens: f.NewCounter(prometheus.CounterOpts{
			Name: "notecorpus_tokens_total",
			Help: "Tokens extracted",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "notecorpus_item_duration_seconds",
			Help:    "Per-item extraction duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
	}
}

// WriteTextfile writes the current values in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

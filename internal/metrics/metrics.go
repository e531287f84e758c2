package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the relay's Prometheus metrics. One
// instance is created at startup and shared by the relay client and server.
type Collector struct {
	registry *prometheus.Registry

	relayTotal       *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
}

// NewCollector creates a collector backed by the given registry. A nil
// registry gets a fresh one, which keeps tests isolated.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		relayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finking",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Relay attempts by outcome (ok or error kind).",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "finking",
			Subsystem: "relay",
			Name:      "upstream_duration_seconds",
			Help:      "Latency of the upstream completion call.",
			// LLM completions run from sub-second to the 30s cutoff
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}

	registry.MustRegister(
		c.relayTotal,
		c.upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// RecordOutcome counts one relay attempt by outcome (ok or error kind)
func (c *Collector) RecordOutcome(outcome string) {
	c.relayTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the latency of one upstream completion call
func (c *Collector) ObserveUpstream(duration time.Duration) {
	c.upstreamDuration.Observe(duration.Seconds())
}

// Handler returns the scrape endpoint handler for this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

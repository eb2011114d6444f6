// Package metrics exposes Prometheus metrics of schema reloads and query
// resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the metrics of one process. It has its own registry, so
// tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	Resolves        *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
	Reloads         *prometheus.CounterVec
	ReloadDuration  *prometheus.HistogramVec
	VertexTypes     *prometheus.GaugeVec
}

// NewCollector returns a collector with metric names under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_calls_total",
			Help:      "Root field resolutions by field and outcome.",
		}, []string{"field", "status"}),
		ResolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolver_duration_seconds",
			Help:      "Root field resolution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"field"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_reloads_total",
			Help:      "Schema compilations by space and outcome.",
		}, []string{"space", "status"}),
		ReloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schema_reload_duration_seconds",
			Help:      "Schema load and compile latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"space"}),
		VertexTypes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vertex_types",
			Help:      "Vertex types of the active schema.",
		}, []string{"space"}),
	}
	c.registry.MustRegister(
		c.Resolves,
		c.ResolveDuration,
		c.Reloads,
		c.ReloadDuration,
		c.VertexTypes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry of c.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics of c in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveResolver implements graphql.Metrics.
func (c *Collector) ObserveResolver(field string, took time.Duration, err error) {
	c.Resolves.WithLabelValues(field, status(err)).Inc()
	c.ResolveDuration.WithLabelValues(field).Observe(took.Seconds())
}

// ObserveReload implements graphql.Metrics.
func (c *Collector) ObserveReload(space string, took time.Duration, err error) {
	c.Reloads.WithLabelValues(space, status(err)).Inc()
	c.ReloadDuration.WithLabelValues(space).Observe(took.Seconds())
}

// SetVertexTypes implements graphql.Metrics.
func (c *Collector) SetVertexTypes(space string, n int) {
	c.VertexTypes.WithLabelValues(space).Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

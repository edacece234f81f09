// Package metrics exposes pipeline counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	graphBuilds   prometheus.Counter
	graphDuration prometheus.Histogram
	skipped       *prometheus.CounterVec
	rendered      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		graphBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphblog",
			Name:      "graph_builds_total",
			Help:      "Number of full-corpus graph builds.",
		}),
		graphDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphblog",
			Name:      "graph_build_duration_seconds",
			Help:      "Wall time of full-corpus graph builds.",
			Buckets:   prometheus.DefBuckets,
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphblog",
			Name:      "documents_skipped_total",
			Help:      "Files left out of the graph, by failure kind.",
		}, []string{"kind"}),
		rendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphblog",
			Name:      "documents_rendered_total",
			Help:      "Single-document retrievals, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.graphBuilds, m.graphDuration, m.skipped, m.rendered)
	return m
}

// ObserveGraphBuild records one graph build and its duration.
func (m *Metrics) ObserveGraphBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.graphBuilds.Inc()
	m.graphDuration.Observe(d.Seconds())
}

// DocumentSkipped counts a file excluded from the graph.
func (m *Metrics) DocumentSkipped(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.skipped.WithLabelValues(kind).Inc()
}

// DocumentRendered counts a single-document retrieval; outcome is "ok" or an error kind.
func (m *Metrics) DocumentRendered(outcome string) {
	if m == nil {
		return
	}
	m.rendered.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

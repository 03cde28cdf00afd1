package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

const namespace = "logtree"

// Metrics holds the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	TreeNodes     prometheus.Histogram
	MergedNodes   prometheus.Counter
	Builds        *prometheus.CounterVec
	Issues        prometheus.Counter
	CacheLookups  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each tree pipeline stage.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"stage"},
		),
		TreeNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tree_nodes",
				Help:      "Number of nodes in built trees.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		MergedNodes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merged_nodes_total",
				Help:      "Nodes absorbed by chain compression.",
			},
		),
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_total",
				Help:      "Trees built, by outcome.",
			},
			[]string{"result"},
		),
		Issues: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_nodes_total",
				Help:      "Malformed nodes skipped while decoding.",
			},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Tree cache lookups, by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.StageDuration,
		m.TreeNodes,
		m.MergedNodes,
		m.Builds,
		m.Issues,
		m.CacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records pipeline events into the collectors.
func (m *Metrics) Hooks() domain.PipelineHooks {
	return domain.PipelineHooks{
		OnStage: func(_ context.Context, e *domain.StageEvent) {
			m.StageDuration.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
		},
		OnBuild: func(_ context.Context, e *domain.BuildEvent) {
			result := "ok"
			if e.Empty {
				result = "empty"
			}
			m.Builds.WithLabelValues(result).Inc()
			m.TreeNodes.Observe(float64(e.Nodes))
			if e.Merged > 0 {
				m.MergedNodes.Add(float64(e.Merged))
			}
			if e.Issues > 0 {
				m.Issues.Add(float64(e.Issues))
			}
		},
		OnCache: func(_ context.Context, e *domain.CacheEvent) {
			result := "miss"
			if e.Hit {
				result = "hit"
			}
			m.CacheLookups.WithLabelValues(result).Inc()
		},
	}
}

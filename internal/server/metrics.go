package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/conceptmap/pkg/observability"
)

const metricsNamespace = "conceptmap"

// Metrics collects Prometheus metrics for the API. It implements every
// observability hook interface so the pipeline, the generator and the
// caches report into it once it is installed with [Metrics.Install].
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal counts responses by method, route pattern and status.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPDurationSeconds measures handler latency by method and route.
	HTTPDurationSeconds *prometheus.HistogramVec
	// HTTPInFlight is the number of requests being served.
	HTTPInFlight prometheus.Gauge

	LayoutsTotal          *prometheus.CounterVec
	LayoutDurationSeconds prometheus.Histogram
	RenderDurationSeconds *prometheus.HistogramVec

	GenerationsTotal          *prometheus.CounterVec
	GenerationDurationSeconds prometheus.Histogram
	GeneratedConcepts         prometheus.Histogram

	// CacheEventsTotal counts cache lookups and writes by key type and event
	// (hit, miss, set).
	CacheEventsTotal *prometheus.CounterVec
	CacheBytesTotal  *prometheus.CounterVec
}

// NewMetrics registers all metrics in a fresh registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		LayoutsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "layout",
			Name:      "computed_total",
			Help:      "Layouts computed (cache misses) by max levels.",
		}, []string{"max_levels"}),
		LayoutDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "layout",
			Name:      "duration_seconds",
			Help:      "Time spent computing layouts.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		RenderDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time spent rendering artifacts, by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"status"}),
		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "generate",
			Name:      "requests_total",
			Help:      "Concept map generations by outcome.",
		}, []string{"status"}),
		GenerationDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "generate",
			Name:      "duration_seconds",
			Help:      "Language model round trip time.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		GeneratedConcepts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "generate",
			Name:      "concepts",
			Help:      "Concepts per generated map.",
			Buckets:   prometheus.LinearBuckets(5, 5, 8),
		}),
		CacheEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type.",
		}, []string{"kind", "event"}),
		CacheBytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"kind"}),
	}
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install makes m the receiver of all observability hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetGenerateHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, maxLevels int, d time.Duration, _ error) {
	m.LayoutsTotal.WithLabelValues(strconv.Itoa(maxLevels)).Inc()
	m.LayoutDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.RenderDurationSeconds.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnGenerateStart(context.Context, string, int) {}

func (m *Metrics) OnGenerateComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	m.GenerationsTotal.WithLabelValues(status(err)).Inc()
	m.GenerationDurationSeconds.Observe(d.Seconds())
	if err == nil {
		m.GeneratedConcepts.Observe(float64(nodes))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.CacheEventsTotal.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.CacheEventsTotal.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.CacheEventsTotal.WithLabelValues(kind, "set").Inc()
	m.CacheBytesTotal.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.GenerateHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

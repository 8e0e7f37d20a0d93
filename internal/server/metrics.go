package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for graph construction, derived
// queries and HTTP traffic. It implements [observability.BuildHooks],
// [observability.QueryHooks] and [observability.HTTPHooks]; install it with
// the observability setters before building the graph so that the build is
// recorded too.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge

	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	packages      prometheus.Gauge
	links         prometheus.Gauge

	deriveDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guppy_http_requests_total",
				Help: "Number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guppy_http_request_duration_seconds",
				Help:    "Time taken to serve HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "guppy_http_requests_in_flight",
				Help: "Number of HTTP requests being served.",
			},
		),
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guppy_graph_builds_total",
				Help: "Number of package graph builds by result.",
			},
			[]string{"result"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guppy_graph_build_duration_seconds",
				Help:    "Time taken to build a package graph.",
				Buckets: prometheus.DefBuckets,
			},
		),
		packages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "guppy_graph_packages",
				Help: "Number of packages in the last built graph.",
			},
		),
		links: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "guppy_graph_links",
				Help: "Number of links in the last built graph.",
			},
		),
		deriveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guppy_graph_derive_duration_seconds",
				Help:    "Time taken to compute derived graph data.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"name"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.inflight,
		m.builds,
		m.buildDuration,
		m.packages,
		m.links,
		m.deriveDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnBuildStart(int) {}

func (m *Metrics) OnBuildComplete(packages, links int, d time.Duration, err error) {
	m.buildDuration.Observe(d.Seconds())
	if err != nil {
		m.builds.WithLabelValues("error").Inc()
		return
	}
	m.builds.WithLabelValues("ok").Inc()
	m.packages.Set(float64(packages))
	m.links.Set(float64(links))
}

func (m *Metrics) OnDerive(name string, _ int, d time.Duration) {
	m.deriveDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inflight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Package metrics exposes web UI counters for Prometheus scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the UI collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	intents  *prometheus.CounterVec
	fetches  *prometheus.CounterVec
	requests *prometheus.HistogramVec
	sessions prometheus.Gauge
	streams  prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridview_intents_total",
				Help: "Grid intents received from browsers",
			},
			[]string{"intent", "applied"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridview_source_fetches_total",
				Help: "Record source loads by result",
			},
			[]string{"result"},
		),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridview_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route", "method", "status"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridview_sessions",
			Help: "Browser sessions holding a grid",
		}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridview_update_streams",
			Help: "Open SSE update streams",
		}),
	}

	m.registry.MustRegister(m.intents, m.fetches, m.requests, m.sessions, m.streams)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// The recording methods below are no-ops on a nil *Metrics, so callers
// can run with metrics disabled.

// Intent counts one grid intent and whether it changed state.
func (m *Metrics) Intent(name string, applied bool) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(name, strconv.FormatBool(applied)).Inc()
}

// Fetch counts a completed source load. result is "ok" or "error".
func (m *Metrics) Fetch(result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
}

// SetSessions records the number of live sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// StreamOpened increments the open stream gauge.
func (m *Metrics) StreamOpened() {
	if m != nil {
		m.streams.Inc()
	}
}

// StreamClosed decrements the open stream gauge.
func (m *Metrics) StreamClosed() {
	if m != nil {
		m.streams.Dec()
	}
}

// Middleware observes request latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

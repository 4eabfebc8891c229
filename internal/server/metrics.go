package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristath/neertrack/internal/modules/analysis"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ReloadsTotal    *prometheus.CounterVec
	ReloadDuration  prometheus.Histogram
}

// NewMetrics creates the collectors on a private registry. Snapshot gauges
// read the holder at scrape time.
func NewMetrics(holder *analysis.Holder) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neertrack_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "neertrack_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"method", "route"},
		),

		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neertrack_snapshot_reloads_total",
				Help: "Total number of snapshot reload attempts by result",
			},
			[]string{"result"},
		),

		ReloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "neertrack_snapshot_reload_duration_seconds",
				Help:    "Duration of snapshot reloads in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ReloadsTotal,
		m.ReloadDuration,
	)

	if holder != nil {
		m.registry.MustRegister(
			snapshotGauge("neertrack_snapshot_weekly_rows", "Weekly rows in the current snapshot", holder,
				func(c *analysis.Context) float64 { return float64(len(c.Dataset.Weekly)) }),
			snapshotGauge("neertrack_snapshot_level_rows", "Level rows in the current snapshot", holder,
				func(c *analysis.Context) float64 { return float64(len(c.Dataset.Levels)) }),
			snapshotGauge("neertrack_snapshot_built_timestamp_seconds", "Unix time the current snapshot was built", holder,
				func(c *analysis.Context) float64 { return float64(c.BuiltAt.Unix()) }),
		)
	}

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveReload records one reload attempt.
func (m *Metrics) ObserveReload(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ReloadsTotal.WithLabelValues(result).Inc()
	m.ReloadDuration.Observe(duration.Seconds())
}

func snapshotGauge(name, help string, holder *analysis.Holder, value func(*analysis.Context) float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
		c := holder.Current()
		if c == nil || c.Dataset == nil {
			return 0
		}
		return value(c)
	})
}

// instrument counts requests by their chi route pattern.
func (m *Metrics) instrument(next http.Handler) http.Handler {
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

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the console's prometheus registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	palettes prometheus.Counter
}

// NewMetrics registers the HTTP and palette collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_http_requests_total",
			Help: "HTTP requests served by the admin console.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_http_request_duration_seconds",
			Help:    "Latency of admin console HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		palettes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "admin_palette_generations_total",
			Help: "Palettes derived from a custom primary color.",
		}),
	}
	reg.MustRegister(
		m.requests,
		m.duration,
		m.palettes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PaletteGenerated counts one palette derivation. Safe on a nil receiver.
func (m *Metrics) PaletteGenerated() {
	if m == nil {
		return
	}
	m.palettes.Inc()
}

// Middleware records request counts and latency labelled by route pattern.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := newStatusRecorder(w)
			start := time.Now()
			next.ServeHTTP(recorder, r)

			route := routePattern(r)
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(recorder.Status())).Inc()
			m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

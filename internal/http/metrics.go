package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the HTTP layer. Each server
// gets its own registry so tests can construct servers independently.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	completions     prometheus.Counter
}

// NewMetrics creates and registers the HTTP metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frogpad_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "frogpad_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frogpad_weekly_completions_recorded_total",
			Help: "Ledger entries appended by weekly completion toggles.",
		}),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.completions)
	return m
}

// Handler serves the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every request with count and duration.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.requestsTotal.WithLabelValues(
				c.Request().Method, path, strconv.Itoa(c.Response().Status),
			).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, path).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// CompletionRecorded counts one appended ledger entry.
func (m *Metrics) CompletionRecorded() {
	m.completions.Inc()
}

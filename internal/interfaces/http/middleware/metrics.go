package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPDurationBuckets are the latency buckets of the request histogram, in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetricsConfig holds configuration for HTTP metrics middleware.
type HTTPMetricsConfig struct {
	Registerer prometheus.Registerer
	Namespace  string
	Enabled    bool
}

// DefaultHTTPMetricsConfig returns default HTTP metrics configuration.
func DefaultHTTPMetricsConfig(reg prometheus.Registerer) HTTPMetricsConfig {
	return HTTPMetricsConfig{
		Registerer: reg,
		Namespace:  "estate",
		Enabled:    true,
	}
}

type httpMetrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
}

func newHTTPMetrics(cfg HTTPMetricsConfig) (*httpMetrics, error) {
	m := &httpMetrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution in seconds",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response body size distribution in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of currently active HTTP requests",
		}),
	}
	for _, col := range []prometheus.Collector{m.requestTotal, m.requestDuration, m.responseSize, m.activeRequests} {
		if err := cfg.Registerer.Register(col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// HTTPMetrics returns a gin middleware recording request count, latency and
// response size by method and route pattern. Tenant ids are left out of the
// labels to keep cardinality bounded.
func HTTPMetrics(cfg HTTPMetricsConfig) (gin.HandlerFunc, error) {
	if !cfg.Enabled || cfg.Registerer == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}
	m, err := newHTTPMetrics(cfg)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		c.Next()

		route := getRoutePattern(c)
		method := c.Request.Method
		m.requestTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.responseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}, nil
}

// getRoutePattern returns the matched route (e.g. "/api/v1/contracts/:id")
// rather than the raw path.
func getRoutePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// HTTPMetricsStatusGroup buckets a status code into its class.
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

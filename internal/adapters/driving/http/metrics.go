package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	oauthFlowsInitiated *prometheus.CounterVec
	oauthFlowsCompleted *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of handled HTTP requests",
		}, []string{"method", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"})

		oauthFlowsInitiated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_flows_initiated_total",
			Help: "Authorization flows started, by provider",
		}, []string{"provider"})

		oauthFlowsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_flows_completed_total",
			Help: "Authorization callbacks handled, by provider and outcome",
		}, []string{"provider", "outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			oauthFlowsInitiated,
			oauthFlowsCompleted,
		)
	})
}

// MetricsHandler returns the /metrics endpoint handler.
func MetricsHandler() http.Handler {
	initMetrics()
	return promhttp.Handler()
}

func recordFlowInitiated(provider string) {
	initMetrics()
	oauthFlowsInitiated.WithLabelValues(provider).Inc()
}

func recordFlowCompleted(provider, outcome string) {
	initMetrics()
	oauthFlowsCompleted.WithLabelValues(provider, outcome).Inc()
}

// MetricsMiddleware records request counts and latency.
// Paths are deliberately not a label: state tokens and credential IDs sit in
// URLs, and high-cardinality labels blow up the registry anyway.
type MetricsMiddleware struct{}

// NewMetricsMiddleware creates a new MetricsMiddleware
func NewMetricsMiddleware() *MetricsMiddleware {
	initMetrics()
	return &MetricsMiddleware{}
}

// Handler wraps an http.Handler with metrics collection
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

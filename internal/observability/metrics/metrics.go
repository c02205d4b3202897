package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizador_http_requests_total",
		Help: "Total number of HTTP requests served by the console",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotizador_http_request_duration_seconds",
		Help:    "Duration of HTTP requests served by the console",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	backendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizador_backend_requests_total",
		Help: "Calls made to the cost backend by method and status class",
	}, []string{"method", "status"})

	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotizador_backend_request_duration_seconds",
		Help:    "Duration of calls made to the cost backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	quotePDFs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizador_quote_pdfs_total",
		Help: "Quote PDFs rendered by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveBackendCall records one call to the backend. Transport failures use
// the status "error".
func ObserveBackendCall(method, status string, duration time.Duration) {
	backendRequestsTotal.WithLabelValues(method, status).Inc()
	backendRequestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// ObserveQuotePDF counts a rendered (or failed) quote document.
func ObserveQuotePDF(result string) {
	quotePDFs.WithLabelValues(result).Inc()
}

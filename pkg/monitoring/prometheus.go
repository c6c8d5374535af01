package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/openHPI/customers/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace   = "customers"
	LabelRoute  = "route"
	LabelMethod = "method"
	LabelStatus = "status"
)

var (
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests",
			Namespace: Namespace,
		},
		[]string{LabelRoute, LabelMethod, LabelStatus},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "http_request_duration_seconds",
			Help:      "Latency of handled HTTP requests",
			Namespace: Namespace,
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelRoute, LabelMethod},
	)

	StoredCustomers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name:      "stored",
			Help:      "Customers currently held in memory",
			Namespace: Namespace,
		},
	)
)

// PrometheusMiddleware counts requests and observes their latency per route.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := logging.NewLoggingResponseWriter(w)
		next.ServeHTTP(lrw, r)

		route := routeName(r)
		Requests.WithLabelValues(route, r.Method, strconv.Itoa(lrw.StatusCode)).Inc()
		RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// PrometheusHandler serves the metrics of the default registry.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}

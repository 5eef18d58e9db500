// Package metrics holds the Prometheus collectors for the HTTP layer, the
// database and the order pipeline, all registered on a private Registry
// served at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "printhub"

// Registry is what /metrics exposes. It carries the Go runtime and process
// collectors plus everything below.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// HTTP
var (
	RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15, 60},
	}, []string{"method", "route", "status"})

	RequestTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by route pattern and status.",
	}, []string{"method", "route", "status"})

	InFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
		Help: "Requests currently being served.",
	})

	ResponseBytes = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "response_size_bytes",
		Help:    "Response body size. Large values are file downloads.",
		Buckets: prometheus.ExponentialBuckets(128, 8, 8),
	}, []string{"route"})
)

// Database
var DBQueryDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace, Subsystem: "db", Name: "query_duration_seconds",
	Help:    "gorm operation latency.",
	Buckets: []float64{.001, .005, .01, .025, .05, .1, .5, 1},
}, []string{"operation"})

// Orders, files and vendors
var (
	OrdersCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "orders", Name: "created_total",
		Help: "Orders placed.",
	})

	OrderTransitions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "orders", Name: "transitions_total",
		Help: "Status changes by target status.",
	}, []string{"to"})

	// Uploads is labelled ok, unsupported_type, too_large or error.
	Uploads = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "files", Name: "uploads_total",
		Help: "Upload attempts by outcome.",
	}, []string{"result"})

	// VendorLogins is labelled ok or rejected.
	VendorLogins = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "vendor", Name: "logins_total",
		Help: "Vendor password logins by outcome.",
	}, []string{"result"})

	CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "lookups_total",
		Help: "Cache reads by key and outcome.",
	}, []string{"key", "result"})
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware observes every request. The route label is the chi pattern
// ("/api/orders/{id}"), so ids and file keys never become label values.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			InFlight.Inc()
			defer InFlight.Dec()

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := strconv.Itoa(sw.status)
			RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, route, status).Inc()
			ResponseBytes.WithLabelValues(route).Observe(float64(sw.bytes))
		})
	}
}

// Handler serves Registry in the Prometheus and OpenMetrics formats.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveDBQuery records the time since start for one gorm operation.
func ObserveDBQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordTransition counts one order moving to status.
func RecordTransition(status string) {
	OrderTransitions.WithLabelValues(status).Inc()
}

// RecordCache counts a cache read for key.
func RecordCache(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(key, result).Inc()
}

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Prometheus instrumentation of one Server. Each Server has
// its own registry so that several can live in the same process.
type metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	computeDuration *prometheus.HistogramVec
	historyVersion  prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptofolio_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptofolio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "cryptofolio_analytics_cache_hits_total",
			Help: "Analytics served from the memo",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "cryptofolio_analytics_cache_misses_total",
			Help: "Analytics computed because the memo had no entry",
		}),
		computeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptofolio_analytics_compute_seconds",
			Help:    "Time spent computing analytics",
			Buckets: prometheus.DefBuckets,
		}, []string{"scope"}),
		historyVersion: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cryptofolio_history_version",
			Help: "Version of the loaded transaction history",
		}),
	}
}

// handler serves the registry in the Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeCompute records how long a computation for scope took.
func (m *metrics) observeCompute(scope string, start time.Time) {
	m.computeDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
}

// instrument records request metrics and logs every request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		// The route pattern keeps the label cardinality bounded.
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.metrics.requestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("request")
	})
}

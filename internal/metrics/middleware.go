package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP holds per-route request metrics.
type HTTP struct {
	Duration *prometheus.HistogramVec
	Requests *prometheus.CounterVec
	InFlight prometheus.Gauge
}

// NewHTTP creates HTTP metrics and registers them on reg, reusing
// collectors that are already registered.
func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	m := &HTTP{
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stylist",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stylist",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stylist",
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
	}
	if err := RegisterOrReuse(reg, &m.Duration); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Requests); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.InFlight); err != nil {
		return nil, err
	}
	return m, nil
}

// Middleware records HTTP request duration and count, labeled by chi route pattern.
func (m *HTTP) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.InFlight.Inc()
			defer m.InFlight.Dec()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			status := strconv.Itoa(ww.status)
			route := routeLabel(r)

			m.Duration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			m.Requests.WithLabelValues(r.Method, route, status).Inc()
		})
	}
}

// routeLabel returns the matched chi route pattern. Raw paths are never used
// so unknown URLs cannot blow up label cardinality.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}

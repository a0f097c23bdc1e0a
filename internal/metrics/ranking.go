package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ranking holds recommendation metrics. A nil *Ranking is a no-op.
type Ranking struct {
	Requests  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Fallbacks *prometheus.CounterVec
	Outfits   prometheus.Gauge
}

// NewRanking creates ranking metrics and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewRanking(reg prometheus.Registerer) (*Ranking, error) {
	m := &Ranking{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "rank_requests_total",
			Help:      "Total ranking calls by mode and status.",
		}, []string{"mode", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stylist",
			Name:      "rank_duration_seconds",
			Help:      "Ranking duration in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"mode"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "rank_fallbacks_total",
			Help:      "Filters or scoring steps dropped to avoid an empty result.",
		}, []string{"stage"}),
		Outfits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stylist",
			Name:      "catalog_outfits",
			Help:      "Number of outfits in the loaded catalog.",
		}),
	}
	if err := RegisterOrReuse(reg, &m.Requests); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Duration); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Fallbacks); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Outfits); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one ranking call.
func (m *Ranking) Observe(mode string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Requests.WithLabelValues(mode, status).Inc()
	m.Duration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// FallbackCounter returns the fallback counter vec, nil for a nil receiver.
func (m *Ranking) FallbackCounter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.Fallbacks
}

// SetOutfits records the catalog size.
func (m *Ranking) SetOutfits(n int) {
	if m == nil {
		return
	}
	m.Outfits.Set(float64(n))
}

// RegisterOrReuse registers a collector or reuses an existing one.
func RegisterOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

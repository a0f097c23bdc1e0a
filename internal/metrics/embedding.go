package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Embedding holds provider-side metrics for the dense scorer. A nil *Embedding is a no-op.
type Embedding struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Tokens   *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Cache    *prometheus.CounterVec
	Budget   *prometheus.CounterVec
}

// NewEmbedding creates embedding metrics and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewEmbedding(reg prometheus.Registerer) (*Embedding, error) {
	m := &Embedding{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "embedding_requests_total",
			Help:      "Embedding provider calls by status.",
		}, []string{"provider", "model", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stylist",
			Name:      "embedding_request_duration_seconds",
			Help:      "Duration of successful embedding provider calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "model"}),
		Tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "embedding_tokens_total",
			Help:      "Tokens billed by the embedding provider.",
		}, []string{"provider", "model", "type"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "embedding_errors_total",
			Help:      "Embedding provider failures by kind.",
		}, []string{"provider", "model", "error_type"}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result.",
		}, []string{"result"}),
		Budget: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "embedding_budget_exceeded_total",
			Help:      "Embedding calls made or refused over the token budget.",
		}, []string{"provider", "action"}),
	}
	for _, c := range []**prometheus.CounterVec{&m.Requests, &m.Tokens, &m.Errors, &m.Cache, &m.Budget} {
		if err := RegisterOrReuse(reg, c); err != nil {
			return nil, err
		}
	}
	if err := RegisterOrReuse(reg, &m.Duration); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveSuccess records a completed provider call and the tokens it consumed.
func (m *Embedding) ObserveSuccess(provider, model string, d time.Duration, promptTokens, totalTokens int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(provider, model, "success").Inc()
	m.Duration.WithLabelValues(provider, model).Observe(d.Seconds())
	if totalTokens > 0 {
		m.Tokens.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
		m.Tokens.WithLabelValues(provider, model, "total").Add(float64(totalTokens))
	}
}

// ObserveFailure records a failed provider call. kind is api_error, empty_response or count_mismatch.
func (m *Embedding) ObserveFailure(provider, model, kind string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(provider, model, "error").Inc()
	m.Errors.WithLabelValues(provider, model, kind).Inc()
}

// BudgetExceeded records a call checked against an exhausted token budget.
func (m *Embedding) BudgetExceeded(provider, action string) {
	if m == nil {
		return
	}
	m.Budget.WithLabelValues(provider, action).Inc()
}

// CacheCounter returns the cache hit/miss counter vec, nil for a nil receiver.
func (m *Embedding) CacheCounter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.Cache
}

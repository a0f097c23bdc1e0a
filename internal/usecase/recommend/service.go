package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/outfit"
	"github.com/kailas-cloud/stylist/internal/domain/search/mode"
	"github.com/kailas-cloud/stylist/internal/domain/search/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/result"
)

// DefaultBoost is the additive bonus per matching categorical field.
const DefaultBoost = 0.15

// ScoringPolicy decides what happens when text scoring fails.
type ScoringPolicy string

const (
	// FailOnScoringError fails the call with a domain.ErrSimilarity error.
	FailOnScoringError ScoringPolicy = "fail"
	// UnscoredOnScoringError returns the filtered candidates in catalog order.
	UnscoredOnScoringError ScoringPolicy = "unscored"
)

// IsValid checks if the policy is one of the supported values.
func (p ScoringPolicy) IsValid() bool {
	return p == FailOnScoringError || p == UnscoredOnScoringError
}

// Service ranks catalog outfits for a query. It holds only read-only
// collaborators, so concurrent Rank calls are safe.
type Service struct {
	scorer    Scorer
	matcher   Matcher
	richText  bool
	boost     float64
	policy    ScoringPolicy
	fallbacks *prometheus.CounterVec
	logger    *zap.Logger
}

// New creates a ranking service.
func New(scorer Scorer, matcher Matcher) *Service {
	return &Service{
		scorer:  scorer,
		matcher: matcher,
		boost:   DefaultBoost,
		policy:  FailOnScoringError,
		logger:  zap.NewNop(),
	}
}

// WithRichText scores against every descriptive field instead of style notes only.
func (s *Service) WithRichText(rich bool) *Service {
	s.richText = rich
	return s
}

// WithBoost sets the per-field categorical bonus. Negative values disable boosting.
func (s *Service) WithBoost(boost float64) *Service {
	s.boost = max(boost, 0)
	return s
}

// WithScoringPolicy sets the scoring failure policy. Unknown values are ignored.
func (s *Service) WithScoringPolicy(p ScoringPolicy) *Service {
	if p.IsValid() {
		s.policy = p
	}
	return s
}

// WithFallbackCounter counts graceful-degradation events by "stage" label.
func (s *Service) WithFallbackCounter(cv *prometheus.CounterVec) *Service {
	s.fallbacks = cv
	return s
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Rank returns at most q.TopK() outfits ordered by descending score, ties by
// catalog position. An empty catalog yields an empty result and no error.
// The catalog is never modified.
func (s *Service) Rank(ctx context.Context, q *query.Query, cat outfit.Catalog) ([]result.Result, error) {
	if cat.IsEmpty() {
		return []result.Result{}, nil
	}

	candidates := s.softFilter(q, cat)

	var pool []result.Result
	if q.Mode() == mode.Text {
		scored, err := s.scorePool(ctx, q, cat, candidates)
		switch {
		case err == nil:
			pool = scored
		case s.policy == UnscoredOnScoringError:
			s.logger.Warn("Text scoring failed, returning unscored candidates",
				zap.Int("candidates", len(candidates)),
				zap.Error(err),
			)
			s.fallback("scoring")
			pool = unscored(candidates)
		default:
			return nil, err
		}
	} else {
		pool = unscored(candidates)
	}

	pool = s.enforceHard(q, cat, pool)

	if len(pool) > q.TopK() {
		pool = pool[:q.TopK()]
	}
	return pool, nil
}

// scorePool scores candidates against the query text, keeps the best
// q.PoolSize() of them and applies categorical boosting.
func (s *Service) scorePool(
	ctx context.Context, q *query.Query, cat outfit.Catalog, candidates []outfit.Record,
) ([]result.Result, error) {
	docs := make([]string, len(candidates))
	for i, r := range candidates {
		docs[i] = r.Text(s.richText)
	}

	scores, err := s.scorer.Score(ctx, q.Text(), docs)
	if err != nil {
		return nil, domain.NewScoringError(len(candidates), err)
	}
	if len(scores) != len(candidates) {
		return nil, domain.NewScoringError(len(candidates),
			fmt.Errorf("scorer returned %d scores for %d documents", len(scores), len(candidates)))
	}

	pool := make([]result.Result, len(candidates))
	for i, r := range candidates {
		pool[i] = result.New(r, scores[i])
	}
	sortByScore(pool)

	if len(pool) > q.PoolSize() {
		pool = pool[:q.PoolSize()]
	}

	if s.boost > 0 && !q.Filters().IsEmpty() {
		pool = s.applyBoost(q, cat, pool)
	}
	return pool, nil
}

// sortByScore orders by descending score, ties by catalog position.
func sortByScore(rs []result.Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Score() != rs[j].Score() {
			return rs[i].Score() > rs[j].Score()
		}
		return rs[i].Position() < rs[j].Position()
	})
}

func unscored(records []outfit.Record) []result.Result {
	out := make([]result.Result, len(records))
	for i, r := range records {
		out[i] = result.New(r, 0)
	}
	return out
}

func (s *Service) fallback(stage string) {
	if s.fallbacks != nil {
		s.fallbacks.WithLabelValues(stage).Inc()
	}
}

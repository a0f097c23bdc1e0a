package recommend

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain/outfit"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/domain/search/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/result"
)

// softFilter applies season/occasion conditions to the whole catalog.
//
// A condition on a column the catalog does not have, or one that no record
// clears, is treated as absent. If the remaining conditions together leave
// nothing, all of them are discarded and the full catalog is returned.
func (s *Service) softFilter(q *query.Query, cat outfit.Catalog) []outfit.Record {
	all := cat.Records()

	var active []filter.Condition
	for _, c := range q.Filters().Soft() {
		if !s.applicable(cat, c) {
			continue
		}
		if len(s.keep(all, c)) == 0 {
			s.logger.Debug("Filter matches no outfit, ignoring",
				zap.String("column", string(c.Column())),
				zap.String("value", c.Value()),
			)
			s.fallback(string(c.Column()))
			continue
		}
		active = append(active, c)
	}

	candidates := all
	for _, c := range active {
		candidates = s.keep(candidates, c)
	}
	if len(candidates) == 0 {
		s.logger.Debug("Combined filters match no outfit, using full catalog",
			zap.Int("filters", len(active)),
		)
		s.fallback("soft_combined")
		return all
	}
	return candidates
}

// enforceHard keeps only pooled results satisfying the color condition,
// unless that would leave the pool empty.
func (s *Service) enforceHard(q *query.Query, cat outfit.Catalog, pool []result.Result) []result.Result {
	for _, c := range q.Filters().Hard() {
		if !s.applicable(cat, c) {
			continue
		}
		kept := make([]result.Result, 0, len(pool))
		for _, r := range pool {
			if s.matcher.Matches(r.Record().Get(c.Column()), c.Value()) {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			s.logger.Debug("Filter empties ranked pool, ignoring",
				zap.String("column", string(c.Column())),
				zap.String("value", c.Value()),
				zap.Int("pool", len(pool)),
			)
			s.fallback(string(c.Column()))
			continue
		}
		pool = kept
	}
	return pool
}

// applyBoost adds s.boost to a result for every filter its record satisfies,
// then restores score order.
func (s *Service) applyBoost(q *query.Query, cat outfit.Catalog, pool []result.Result) []result.Result {
	conds := q.Filters().All()
	boosted := make([]result.Result, len(pool))
	for i, r := range pool {
		var bonus float64
		rec := r.Record()
		for _, c := range conds {
			if cat.HasColumn(c.Column()) && s.matcher.Matches(rec.Get(c.Column()), c.Value()) {
				bonus += s.boost
			}
		}
		boosted[i] = r.WithBonus(bonus)
	}
	sortByScore(boosted)
	return boosted
}

func (s *Service) keep(records []outfit.Record, c filter.Condition) []outfit.Record {
	out := make([]outfit.Record, 0, len(records))
	for _, r := range records {
		if s.matcher.Matches(r.Get(c.Column()), c.Value()) {
			out = append(out, r)
		}
	}
	return out
}

// applicable reports whether the catalog has the condition's column at all.
func (s *Service) applicable(cat outfit.Catalog, c filter.Condition) bool {
	if cat.HasColumn(c.Column()) {
		return true
	}
	s.logger.Debug("Filter column missing from catalog, skipping",
		zap.String("column", string(c.Column())),
	)
	s.fallback("missing_column")
	return false
}

package result

import "github.com/kailas-cloud/stylist/internal/domain/outfit"

// Result is a single ranked outfit.
type Result struct {
	record outfit.Record
	score  float64
}

// New creates a ranked result.
func New(record outfit.Record, score float64) Result {
	return Result{record: record, score: score}
}

// Record returns the ranked outfit.
func (r *Result) Record() outfit.Record { return r.record }

// Position returns the outfit's catalog position.
func (r *Result) Position() int { return r.record.Position() }

// Score returns the relevance score (0 in filter mode).
func (r *Result) Score() float64 { return r.score }

// WithBonus returns a copy with bonus added to the score.
func (r Result) WithBonus(bonus float64) Result {
	r.score += bonus
	return r
}

package stylist

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/stylist/internal/domain/search/query"
)

// DefaultTopK is the number of hits returned when TopK is not set.
const DefaultTopK = query.DefaultTopK

// RecommendBuilder is a fluent builder for recommendation queries.
type RecommendBuilder struct {
	client *Client

	text     string
	season   string
	occasion string
	color    string
	topK     int
}

// Season sets the soft season filter.
func (b *RecommendBuilder) Season(s string) *RecommendBuilder {
	b.season = s
	return b
}

// Occasion sets the soft occasion filter.
func (b *RecommendBuilder) Occasion(o string) *RecommendBuilder {
	b.occasion = o
	return b
}

// Color sets the color filter, enforced on the ranked pool.
func (b *RecommendBuilder) Color(c string) *RecommendBuilder {
	b.color = c
	return b
}

// TopK sets the maximum number of hits. Values <= 0 mean DefaultTopK;
// values above 100 are clamped.
func (b *RecommendBuilder) TopK(k int) *RecommendBuilder {
	b.topK = k
	return b
}

// Do runs the query and returns hits ordered by descending score.
func (b *RecommendBuilder) Do(ctx context.Context) (_ []Hit, err error) {
	start := time.Now()
	defer func() { b.client.obs.observe("recommend", start, err) }()

	q, err := query.New(b.text, b.season, b.occasion, b.color, b.topK)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	results, err := b.client.rec.Recommend(ctx, &q)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	hits := make([]Hit, len(results))
	for i := range results {
		r := &results[i]
		rec := r.Record()
		preview, _ := rec.PreviewURL()
		hits[i] = Hit{
			Position:   r.Position(),
			Outfit:     outfitFromRecord(rec),
			Score:      r.Score(),
			PreviewURL: preview,
		}
	}
	return hits, nil
}

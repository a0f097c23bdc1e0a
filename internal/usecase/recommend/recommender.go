package recommend

import (
	"context"
	"time"

	"github.com/kailas-cloud/stylist/internal/domain/outfit"
	"github.com/kailas-cloud/stylist/internal/domain/search/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/result"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

// Recommender binds a ranking service to one immutable catalog.
type Recommender struct {
	svc     *Service
	catalog outfit.Catalog
	facets  outfit.Facets
	metrics *metrics.Ranking
}

// NewRecommender creates a recommender over cat. m may be nil.
func NewRecommender(svc *Service, cat outfit.Catalog, m *metrics.Ranking) *Recommender {
	m.SetOutfits(cat.Len())
	return &Recommender{
		svc:     svc,
		catalog: cat,
		facets:  cat.Facets(),
		metrics: m,
	}
}

// Recommend ranks the bound catalog for q.
func (r *Recommender) Recommend(ctx context.Context, q *query.Query) ([]result.Result, error) {
	start := time.Now()
	res, err := r.svc.Rank(ctx, q, r.catalog)
	r.metrics.Observe(string(q.Mode()), start, err)
	return res, err
}

// Facets returns the distinct season, occasion and color values of the catalog.
func (r *Recommender) Facets() outfit.Facets { return r.facets }

// Size returns the number of outfits in the catalog.
func (r *Recommender) Size() int { return r.catalog.Len() }

// Loaded reports that a catalog is bound. An empty catalog still counts.
func (r *Recommender) Loaded() bool { return r != nil }

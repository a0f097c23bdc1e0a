package stylist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/stylist/internal/domain/match"
	"github.com/kailas-cloud/stylist/internal/domain/outfit"
	"github.com/kailas-cloud/stylist/internal/domain/search/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/result"
	"github.com/kailas-cloud/stylist/internal/repository/catalog"
	recommenduc "github.com/kailas-cloud/stylist/internal/usecase/recommend"
	"github.com/kailas-cloud/stylist/internal/usecase/similarity"
)

// recommendUseCase is the internal interface for ranking, replaceable in tests.
type recommendUseCase interface {
	Recommend(ctx context.Context, q *query.Query) ([]result.Result, error)
	Facets() outfit.Facets
	Size() int
}

// Client is the stylist entry point. It is safe for concurrent use.
type Client struct {
	rec recommendUseCase
	obs *observer
}

// New loads the catalog and builds the ranking engine.
// The provided context is used for loading a remote catalog.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("stylist: %w", err)
	}

	cat, err := loadCatalog(ctx, cfg, obs)
	if err != nil {
		return nil, err
	}

	return wireClient(cat, cfg, obs), nil
}

func loadCatalog(ctx context.Context, cfg *clientConfig, obs *observer) (_ outfit.Catalog, err error) {
	start := time.Now()
	defer func() { obs.observe("load_catalog", start, err) }()

	switch {
	case cfg.outfits != nil:
		rows := make([]map[outfit.Column]string, len(cfg.outfits))
		for i, o := range cfg.outfits {
			rows[i] = outfitToRow(o)
		}
		return outfit.FromRecords(rows), nil
	case cfg.catalogReader != nil:
		cat, err := catalog.Parse(cfg.catalogReader)
		if err != nil {
			return outfit.Catalog{}, fmt.Errorf("stylist: %w", err)
		}
		return cat, nil
	case cfg.catalogSource != "":
		cat, err := catalog.NewLoader(nil, obs.logger).Load(ctx, cfg.catalogSource)
		if err != nil {
			return outfit.Catalog{}, fmt.Errorf("stylist: %w", err)
		}
		return cat, nil
	default:
		return outfit.Catalog{}, errors.New(
			"stylist: catalog required (use WithOutfits, WithCatalogCSV or WithCatalogReader)",
		)
	}
}

func wireClient(cat outfit.Catalog, cfg *clientConfig, obs *observer) *Client {
	var scorer recommenduc.Scorer = similarity.NewLexical()
	if cfg.embedder != nil {
		emb := adaptEmbedder(cfg.embedder)
		scorer = similarity.NewDense(emb, emb)
	}

	var matcher recommenduc.Matcher = match.NewFuzzy(cfg.fuzzyThreshold)
	if cfg.exactMatching {
		matcher = match.Exact{}
	}

	svc := recommenduc.New(scorer, matcher).
		WithRichText(cfg.richText).
		WithFallbackCounter(obs.metrics.FallbackCounter()).
		WithLogger(obs.logger)
	if cfg.boost != nil {
		svc = svc.WithBoost(*cfg.boost)
	}
	if cfg.unscored {
		svc = svc.WithScoringPolicy(recommenduc.UnscoredOnScoringError)
	}

	return &Client{
		rec: recommenduc.NewRecommender(svc, cat, obs.metrics),
		obs: obs,
	}
}

// Recommend starts a recommendation query for the given style request.
// Empty text ranks by filters only, in catalog order.
func (c *Client) Recommend(text string) *RecommendBuilder {
	return &RecommendBuilder{client: c, text: text}
}

// Facets returns the distinct season, occasion and color values of the catalog.
func (c *Client) Facets() Facets {
	f := c.rec.Facets()
	return Facets{Seasons: f.Seasons, Occasions: f.Occasions, Colors: f.Colors}
}

// Size returns the number of outfits in the catalog.
func (c *Client) Size() int {
	return c.rec.Size()
}

package stylist

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	outfits       []Outfit
	catalogSource string
	catalogReader io.Reader

	embedder Embedder

	exactMatching  bool
	fuzzyThreshold int
	richText       bool
	boost          *float64
	unscored       bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithOutfits uses an in-memory catalog. Slice order is catalog order.
func WithOutfits(outfits []Outfit) Option {
	return optionFunc(func(c *clientConfig) {
		c.outfits = outfits
	})
}

// WithCatalogCSV loads the catalog from a CSV file path or http(s) URL.
func WithCatalogCSV(source string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogSource = source
	})
}

// WithCatalogReader parses the catalog from CSV read from r.
func WithCatalogReader(r io.Reader) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogReader = r
	})
}

// WithEmbedder switches text scoring to cosine similarity of embeddings.
// Without it a built-in TF-IDF scorer is used.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithExactMatching matches filters by case-insensitive equality instead of fuzzy similarity.
func WithExactMatching() Option {
	return optionFunc(func(c *clientConfig) {
		c.exactMatching = true
	})
}

// WithFuzzyThreshold sets the minimum fuzzy similarity (0-100) for a filter match.
// Default: 70.
func WithFuzzyThreshold(threshold int) Option {
	return optionFunc(func(c *clientConfig) {
		c.fuzzyThreshold = threshold
	})
}

// WithRichText scores against category, season, occasion, color and style
// notes together instead of style notes alone.
func WithRichText() Option {
	return optionFunc(func(c *clientConfig) {
		c.richText = true
	})
}

// WithBoost sets the score bonus per matching filter field. Default: 0.15.
func WithBoost(boost float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.boost = &boost
	})
}

// WithUnscoredFallback returns unscored candidates in catalog order when text
// scoring fails, instead of failing the call.
func WithUnscoredFallback() Option {
	return optionFunc(func(c *clientConfig) {
		c.unscored = true
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers ranking metrics (request counts, durations, fallbacks)
// on the given registerer. Already registered collectors are reused.
// Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

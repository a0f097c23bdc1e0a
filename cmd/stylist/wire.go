package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/config"
	dbRedis "github.com/kailas-cloud/stylist/internal/db/redis"
	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/match"
	"github.com/kailas-cloud/stylist/internal/metrics"
	budgetrepo "github.com/kailas-cloud/stylist/internal/repository/budget"
	"github.com/kailas-cloud/stylist/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/stylist/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/stylist/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/stylist/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/stylist/internal/usecase/recommend"
	"github.com/kailas-cloud/stylist/internal/usecase/similarity"
)

func buildMatcher(cfg config.RankingConfig) recommenduc.Matcher {
	if cfg.MatchMode == config.MatchExact {
		return match.Exact{}
	}
	return match.NewFuzzy(cfg.FuzzyThreshold)
}

// buildScorer returns the text scorer and, for the dense scorer, a checker
// for the embedding provider. The checker is a nil interface otherwise.
func buildScorer(
	ctx context.Context, cfg config.Config, store *dbRedis.Store,
	embMetrics *metrics.Embedding, logger *zap.Logger,
) (recommenduc.Scorer, healthuc.EmbeddingChecker) {
	if cfg.Ranking.Scorer != config.ScorerDense {
		return similarity.NewLexical(), nil
	}

	// Base provider (with transport metrics built-in), shared by both sides.
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Metrics:    embMetrics,
		Logger:     logger,
	})

	// One tracker for both sides: the limit is per provider account.
	budget := buildBudget(ctx, cfg.Embedding, store, embMetrics, logger)

	chain := embedderChain{
		cfg:     cfg.Embedding,
		cache:   cfg.Cache,
		store:   store,
		budget:  budget,
		metrics: embMetrics,
		logger:  logger,
	}
	docEmbedder := chain.build(base, cfg.Embedding.DocumentInstruction)
	queryEmbedder := chain.build(base, cfg.Embedding.QueryInstruction)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", store != nil),
		zap.Bool("budget", budget != nil),
	)

	return similarity.NewDense(queryEmbedder, docEmbedder), newEmbeddingHealthChecker(base)
}

// buildBudget returns nil when no token limit is configured. Counters are
// persisted in the cache database when one is connected.
func buildBudget(
	ctx context.Context, embCfg config.EmbeddingConfig, store *dbRedis.Store,
	embMetrics *metrics.Embedding, logger *zap.Logger,
) *embeddinguc.BudgetTracker {
	if !embCfg.Budget.Enabled() {
		return nil
	}
	action := embeddinguc.BudgetActionWarn
	if embCfg.Budget.Action == config.BudgetReject {
		action = embeddinguc.BudgetActionReject
	}
	tracker := embeddinguc.NewBudgetTracker(
		embCfg.Provider, embCfg.Budget.DailyTokenLimit, embCfg.Budget.MonthlyTokenLimit, action, logger,
	).WithMetrics(embMetrics)
	if store != nil {
		tracker.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
	}
	return tracker
}

// embeddingHealthChecker wraps the base provider to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// embedderChain holds what every decorator chain shares. store and budget may be nil.
type embedderChain struct {
	cfg     config.EmbeddingConfig
	cache   config.CacheConfig
	store   *dbRedis.Store
	budget  *embeddinguc.BudgetTracker
	metrics *metrics.Embedding
	logger  *zap.Logger
}

// build assembles: OpenAI -> Cached -> Budget -> Instrumented -> Instruction
func (c embedderChain) build(base domain.Embedder, instruction string) domain.Embedder {
	embedder := base

	// Cached
	if c.store != nil {
		ttl := time.Duration(c.cache.TTLSec) * time.Second
		embedder = embcache.New(embedder, c.store, c.cfg.Model, ttl, c.metrics.CacheCounter(), c.logger)
	}

	// Budget (cache hits report zero tokens)
	if c.budget != nil {
		embedder = embeddinguc.NewBudgetEmbedder(embedder, c.budget)
	}

	// Instrumented (logging + chunked batches)
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, c.cfg.Provider, c.cfg.Model, c.cfg.MaxBatchSize, c.logger,
	)

	// Instruction prefix (outermost, so the cache key includes it)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

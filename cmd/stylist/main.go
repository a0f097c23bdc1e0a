package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/config"
	dbRedis "github.com/kailas-cloud/stylist/internal/db/redis"
	logpkg "github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	"github.com/kailas-cloud/stylist/internal/repository/catalog"
	chiTransport "github.com/kailas-cloud/stylist/internal/transport/chi"
	healthuc "github.com/kailas-cloud/stylist/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/stylist/internal/usecase/recommend"
	"github.com/kailas-cloud/stylist/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()
	dotenv := config.LoadDotEnv(env)

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stylist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("dotenv", dotenv),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("scorer", cfg.Ranking.Scorer),
		zap.String("match_mode", cfg.Ranking.MatchMode),
	)

	ctx := context.Background()

	// Register metrics explicitly (no init())
	embeddingMetrics, err := metrics.NewEmbedding(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register embedding metrics", zap.Error(err))
	}
	rankingMetrics, err := metrics.NewRanking(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register ranking metrics", zap.Error(err))
	}
	httpMetrics, err := metrics.NewHTTP(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	// Catalog is loaded once and stays immutable for the process lifetime.
	loader := catalog.NewLoader(&http.Client{
		Timeout: time.Duration(cfg.Catalog.FetchTimeoutSec) * time.Second,
	}, logger)
	cat, err := loader.Load(ctx, cfg.Catalog.Source)
	if err != nil {
		logger.Fatal("Failed to load outfit catalog",
			zap.String("source", cfg.Catalog.Source), zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("outfits", cat.Len()))

	// Embedding cache and budget counters are only used by the dense scorer.
	var store *dbRedis.Store
	if cfg.Ranking.Scorer == config.ScorerDense && cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	scorer, embeddingChecker := buildScorer(ctx, cfg, store, embeddingMetrics, logger)

	svc := recommenduc.New(scorer, buildMatcher(cfg.Ranking)).
		WithRichText(cfg.Ranking.Text == config.TextRich).
		WithBoost(*cfg.Ranking.Boost).
		WithScoringPolicy(recommenduc.ScoringPolicy(cfg.Ranking.OnScoringError)).
		WithFallbackCounter(rankingMetrics.FallbackCounter()).
		WithLogger(logger)
	recommender := recommenduc.NewRecommender(svc, cat, rankingMetrics)

	// Pass nil interface (not typed nil pointer!) if the cache is not configured.
	// Go gotcha: (*Store)(nil) wrapped in DBPinger != nil.
	var cachePinger healthuc.DBPinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(recommender, cachePinger, embeddingChecker)

	server := chiTransport.NewServer(recommender, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(jsonRecoverer(logger))
	r.Use(httpMetrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/config"
	"github.com/kailas-cloud/movierec/internal/db"
	dbRedis "github.com/kailas-cloud/movierec/internal/db/redis"
	"github.com/kailas-cloud/movierec/internal/domain"
	logpkg "github.com/kailas-cloud/movierec/internal/logger"
	"github.com/kailas-cloud/movierec/internal/metrics"
	"github.com/kailas-cloud/movierec/internal/repository/artifact"
	"github.com/kailas-cloud/movierec/internal/repository/postercache"
	chiTransport "github.com/kailas-cloud/movierec/internal/transport/chi"
	"github.com/kailas-cloud/movierec/internal/transport/tmdb"
	healthuc "github.com/kailas-cloud/movierec/internal/usecase/health"
	posteruc "github.com/kailas-cloud/movierec/internal/usecase/poster"
	rankuc "github.com/kailas-cloud/movierec/internal/usecase/rank"
	recommenduc "github.com/kailas-cloud/movierec/internal/usecase/recommend"
	"github.com/kailas-cloud/movierec/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting movierec server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("poster_provider", cfg.Posters.Provider),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Artifacts are loaded once and held for the process lifetime
	arts, err := artifact.Load(cfg.Artifacts.CatalogPath, cfg.Artifacts.MatrixPath)
	if err != nil {
		logger.Fatal("Failed to load artifacts", zap.Error(err))
	}
	if dups := arts.Catalog.Duplicates(); len(dups) > 0 {
		logger.Warn("Catalog has duplicate titles; the first occurrence wins",
			zap.Int("count", len(dups)),
			zap.Strings("sample", dups[:min(len(dups), 10)]),
		)
	}
	logger.Info("Artifacts loaded",
		zap.Int("titles", arts.Catalog.Len()),
		zap.Int("matrix_dim", arts.Matrix.Size()),
	)

	ranker, err := rankuc.New(arts.Catalog, arts.Matrix)
	if err != nil {
		logger.Fatal("Artifacts are inconsistent", zap.Error(err))
	}
	ranker = ranker.
		WithLimit(cfg.Recommend.Limit).
		WithSelfRankObserver(func(title string, selfScore, topScore float64) {
			logger.Warn("Query is not the top match of its own row",
				zap.String("title", title),
				zap.Float64("self_score", selfScore),
				zap.Float64("top_score", topScore),
			)
		})

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterPosterMetrics()

	ctx := context.Background()

	// Optional poster cache store
	var store db.Store
	if cfg.Cache.Driver != "none" {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.String("driver", cfg.Cache.Driver), zap.Strings("addrs", cfg.Cache.Addrs))
		store = s
	}

	lookup := buildPosterLookup(&cfg, store, logger)
	fetcher := posteruc.NewFetcher(lookup, logger).
		WithWorkers(cfg.Posters.Workers).
		WithOutcomeCounter(metrics.PosterLookupsTotal)

	recSvc := recommenduc.New(ranker, fetcher, arts.Catalog)

	// Pass nil interfaces (not typed nil pointers) for absent components.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	var posterChecker healthuc.PosterChecker
	if hc, ok := lookup.(domain.HealthChecker); ok {
		posterChecker = hc
	}
	healthSvc := healthuc.New(arts.Catalog, cachePinger, posterChecker)

	server := chiTransport.NewServer(recSvc, healthSvc, chiTransport.Options{
		PlaceholderURL:  cfg.Posters.PlaceholderURL,
		DefaultPageSize: cfg.HTTP.DefaultPageSize,
		MaxPageSize:     cfg.HTTP.MaxPageSize,
	}, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// buildPosterLookup assembles the decorator chain: TMDB -> Guarded -> Cached.
// Cache hits skip the rate limiter and the breaker.
func buildPosterLookup(cfg *config.Config, store db.Store, logger *zap.Logger) domain.PosterLookup {
	if cfg.Posters.Provider == "none" {
		logger.Info("Poster provider disabled; every card uses the placeholder")
		return domain.PosterLookupFunc(func(context.Context, string) (string, error) {
			return "", domain.ErrPosterNotFound
		})
	}

	var lookup domain.PosterLookup = tmdb.NewClient(&tmdb.Config{
		APIKey:       cfg.Posters.APIKey,
		AccessToken:  cfg.Posters.AccessToken,
		BaseURL:      cfg.Posters.BaseURL,
		ImageBaseURL: cfg.Posters.ImageBaseURL,
		Timeout:      time.Duration(cfg.Posters.TimeoutSec) * time.Second,
		Logger:       logger,
	})

	lookup = posteruc.NewGuardedLookup(lookup, posteruc.GuardConfig{
		Name:             cfg.Posters.Provider,
		RatePerSec:       cfg.Posters.RatePerSec,
		Burst:            cfg.Posters.Burst,
		FailureThreshold: cfg.Posters.Breaker.FailureThreshold,
		OpenTimeout:      time.Duration(cfg.Posters.Breaker.OpenTimeoutSec) * time.Second,
	}, logger)

	if store != nil {
		lookup = postercache.New(lookup, store, postercache.Config{
			TTL:         time.Duration(cfg.Cache.TTLHours) * time.Hour,
			NotFoundTTL: time.Duration(cfg.Cache.NotFoundTTLMinutes) * time.Minute,
		}, metrics.PosterCacheTotal, logger)
	}
	return lookup
}

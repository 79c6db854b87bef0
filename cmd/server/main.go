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

	"github.com/manmaru/backend/config"
	httpDelivery "github.com/manmaru/backend/internal/delivery/http"
	"github.com/manmaru/backend/internal/domain"
	"github.com/manmaru/backend/internal/infrastructure/cache"
	"github.com/manmaru/backend/internal/infrastructure/fooddata"
	"github.com/manmaru/backend/internal/pkg/logger"
	"github.com/manmaru/backend/internal/usecase"
)

const (
	shutdownTimeout = 10 * time.Second
	redisKeyPrefix  = "manmaru:"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, httpDelivery.ServiceName)
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("dataset", cfg.Dataset.Source),
		zap.String("cache", cfg.Cache.Type),
	)

	// Initialize infrastructure dependencies
	source, err := newDataSource(cfg.Dataset, log)
	if err != nil {
		log.Fatal("failed to configure dataset", zap.Error(err))
	}
	repo := usecase.NewFoodRepository(source, log)

	matchCache, closeCache := newCache(cfg.Cache, log)
	defer closeCache()

	// Initialize usecase layer
	parser := usecase.NewQuantityParser(nil, log)
	matcher := usecase.NewFoodMatcher(repo, matchCache, usecase.MatchConfig{
		MinSimilarity:      cfg.Matching.MinSimilarity,
		Limit:              cfg.Matching.Limit,
		Workers:            cfg.Matching.Workers,
		CacheTTL:           cfg.Cache.TTL,
		EnableDebugLogging: cfg.Matching.Debug,
	}, log)
	nutritionService := usecase.NewNutritionService(
		matcher,
		parser,
		usecase.NewNutritionAggregator(parser, log),
		usecase.NutritionServiceConfig{
			MinSimilarity:  cfg.Matching.MinSimilarity,
			CountUnmatched: cfg.Aggregation.CountUnmatched,
		},
		log,
	)

	log.Info("matching configured",
		zap.Float64("min_similarity", cfg.Matching.MinSimilarity),
		zap.Int("workers", cfg.Matching.Workers),
		zap.Bool("debug", cfg.Matching.Debug),
	)

	// Load the dataset up front so the first request does not pay for it.
	// A failure is not fatal: the repository retries on the next request.
	go warmUp(repo, cfg.Dataset.Timeout, log)

	// Create HTTP handler and router
	handler := httpDelivery.NewHandler(nutritionService, log)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited")
}

func newDataSource(cfg config.DatasetConfig, log *zap.Logger) (domain.FoodDataSource, error) {
	switch cfg.Source {
	case config.DatasetEmbedded:
		return fooddata.NewEmbeddedSource(log), nil
	case config.DatasetFile:
		return fooddata.NewFileSource(cfg.Path, log), nil
	case config.DatasetURL:
		return fooddata.NewURLSource(cfg.URL, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}

// newCache builds the match cache. An unreachable Redis falls back to memory.
func newCache(cfg config.CacheConfig, log *zap.Logger) (domain.CacheRepository, func()) {
	switch cfg.Type {
	case config.CacheNone:
		return nil, func() {}
	case config.CacheRedis:
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, redisKeyPrefix)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err = redisCache.Ping(ctx)
			cancel()
			if err == nil {
				log.Info("using redis cache", zap.Duration("ttl", cfg.TTL))
				return redisCache, func() { _ = redisCache.Close() }
			}
			_ = redisCache.Close()
		}
		log.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
	}

	memoryCache := cache.NewMemoryCache(cfg.MaxEntries)
	log.Info("using memory cache",
		zap.Int("max_entries", cfg.MaxEntries),
		zap.Duration("ttl", cfg.TTL),
	)
	return memoryCache, func() { _ = memoryCache.Close() }
}

func warmUp(repo *usecase.FoodRepository, timeout time.Duration, log *zap.Logger) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	idx, err := repo.Index(ctx)
	if err != nil {
		log.Warn("dataset warm-up failed", zap.String("source", repo.Describe()), zap.Error(err))
		return
	}
	log.Info("dataset ready", zap.String("source", repo.Describe()), zap.Int("foods", idx.Len()))
}

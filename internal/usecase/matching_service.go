package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/manmaru/backend/internal/domain"
)

// Matching defaults
const (
	DefaultMinSimilarity = domain.SimilarityLow
	DefaultMatchLimit    = 1
	DefaultMatchWorkers  = 8
	DefaultMatchCacheTTL = time.Hour

	matchCacheVersion = "v1"
)

// MatchOptions tunes a single lookup. Zero values take the matcher defaults.
type MatchOptions struct {
	MinSimilarity float64
	Limit         int
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinSimilarity      float64
	Limit              int
	Workers            int
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// FoodMatcher turns free-text food names into dataset foods.
type FoodMatcher struct {
	repo         *FoodRepository
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	defaults     MatchOptions
	workers      int
	cacheTTL     time.Duration
	debug        bool
	logger       *zap.Logger
}

// cachedMatch is the cache representation of one fuzzy result
type cachedMatch struct {
	FoodID     string  `json:"id"`
	Similarity float64 `json:"s"`
}

// NewFoodMatcher creates a matcher. cache may be nil.
func NewFoodMatcher(repo *FoodRepository, cache domain.CacheRepository, config MatchConfig, logger *zap.Logger) *FoodMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	minSimilarity := config.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	limit := config.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultMatchWorkers
	}
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = DefaultMatchCacheTTL
	}

	return &FoodMatcher{
		repo:         repo,
		cache:        cache,
		preprocessor: NewQueryPreprocessor(config.EnableDebugLogging, logger),
		defaults:     MatchOptions{MinSimilarity: minSimilarity, Limit: limit},
		workers:      workers,
		cacheTTL:     ttl,
		debug:        config.EnableDebugLogging,
		logger:       logger,
	}
}

// Repository returns the food repository behind the matcher.
func (m *FoodMatcher) Repository() *FoodRepository {
	return m.repo
}

func (m *FoodMatcher) withDefaults(opts MatchOptions) MatchOptions {
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = m.defaults.MinSimilarity
	}
	if opts.Limit <= 0 {
		opts.Limit = m.defaults.Limit
	}
	return opts
}

// MatchFood returns the best food for name, or nil when nothing reaches
// domain.SimilarityFloor. A match between the floor and opts.MinSimilarity is
// still returned and logged as low confidence; the caller decides.
func (m *FoodMatcher) MatchFood(ctx context.Context, name string, opts MatchOptions) (*domain.FoodMatchResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty food name", domain.ErrInvalidArgument)
	}

	idx, err := m.repo.Index(ctx)
	if err != nil {
		return nil, err
	}
	return m.matchWithIndex(ctx, idx, name, m.withDefaults(opts)), nil
}

// MatchFoods matches every name independently and in parallel. The result is
// aligned with names, duplicates included; unmatched or blank names yield nil.
func (m *FoodMatcher) MatchFoods(ctx context.Context, names []string, opts MatchOptions) ([]*domain.FoodMatchResult, error) {
	results := make([]*domain.FoodMatchResult, len(names))
	if len(names) == 0 {
		return results, nil
	}

	idx, err := m.repo.Index(ctx)
	if err != nil {
		return nil, err
	}
	opts = m.withDefaults(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.matchWithIndex(gctx, idx, name, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Search returns up to limit ranked candidates for name.
func (m *FoodMatcher) Search(ctx context.Context, name string, limit int) ([]domain.FoodMatchResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty food name", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = m.defaults.Limit
	}

	idx, err := m.repo.Index(ctx)
	if err != nil {
		return nil, err
	}
	return m.candidates(ctx, idx, name, limit), nil
}

func (m *FoodMatcher) matchWithIndex(ctx context.Context, idx *FoodIndex, name string, opts MatchOptions) *domain.FoodMatchResult {
	results := m.candidates(ctx, idx, name, opts.Limit)
	if len(results) == 0 || results[0].Similarity < domain.SimilarityFloor {
		results = m.keywordCandidates(ctx, idx, name, opts.Limit)
	}
	if len(results) == 0 || results[0].Similarity < domain.SimilarityFloor {
		if m.debug {
			m.logger.Debug("no match", zap.String("name", name))
		}
		return nil
	}

	best := results[0]
	if best.Similarity < opts.MinSimilarity {
		m.logger.Info("low-confidence food match",
			zap.String("name", name),
			zap.String("matched", best.MatchedFood.Name),
			zap.Float64("similarity", best.Similarity),
			zap.Float64("min_similarity", opts.MinSimilarity),
		)
	} else if m.debug {
		m.logger.Debug("food match",
			zap.String("name", name),
			zap.String("matched", best.MatchedFood.Name),
			zap.Float64("similarity", best.Similarity),
		)
	}
	return &best
}

// keywordCandidates retries a compound name ("鶏肉・玉ねぎ炒め") piece by
// piece and keeps the best piece's candidates.
func (m *FoodMatcher) keywordCandidates(ctx context.Context, idx *FoodIndex, name string, limit int) []domain.FoodMatchResult {
	keywords := m.preprocessor.ExtractFoodKeywords(name)
	if len(keywords) < 2 {
		return nil
	}

	var best []domain.FoodMatchResult
	for _, keyword := range keywords {
		results := m.candidates(ctx, idx, keyword, limit)
		if len(results) > 0 && (best == nil || results[0].Similarity > best[0].Similarity) {
			best = results
		}
	}
	for i := range best {
		best[i].InputName = name
	}
	return best
}

// candidates returns an exact name or alias hit on the raw input alone;
// otherwise it runs the fuzzy search on the cleaned name, going through the
// cache when one is configured.
func (m *FoodMatcher) candidates(ctx context.Context, idx *FoodIndex, name string, limit int) []domain.FoodMatchResult {
	if f := idx.ExactMatch(name); f != nil {
		return []domain.FoodMatchResult{domain.NewFoodMatchResult(name, f, 1)}
	}

	query := m.preprocessor.PreprocessQuery(name)
	key := matchCacheKey(query, limit)

	if cached, ok := m.fromCache(ctx, idx, key, name); ok {
		return cached
	}

	results := idx.FuzzyMatch(query, limit)
	for i := range results {
		results[i].InputName = name
	}

	m.toCache(ctx, key, results)
	return results
}

func matchCacheKey(query string, limit int) string {
	return fmt.Sprintf("match:%s:%d:%s", matchCacheVersion, limit, normalizeKey(query))
}

func (m *FoodMatcher) fromCache(ctx context.Context, idx *FoodIndex, key, name string) ([]domain.FoodMatchResult, bool) {
	if m.cache == nil {
		return nil, false
	}

	data, err := m.cache.Get(ctx, key)
	if err != nil {
		if !isCacheMiss(err) {
			m.logger.Debug("match cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entries []cachedMatch
	if err := json.Unmarshal(data, &entries); err != nil {
		m.logger.Debug("match cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	results := make([]domain.FoodMatchResult, 0, len(entries))
	for _, e := range entries {
		food := idx.ByID(e.FoodID)
		if food == nil {
			// dataset changed since the entry was written
			return nil, false
		}
		results = append(results, domain.NewFoodMatchResult(name, food, e.Similarity))
	}
	return results, true
}

func (m *FoodMatcher) toCache(ctx context.Context, key string, results []domain.FoodMatchResult) {
	if m.cache == nil {
		return
	}

	entries := make([]cachedMatch, len(results))
	for i, r := range results {
		entries[i] = cachedMatch{FoodID: r.MatchedFood.ID, Similarity: r.Similarity}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, key, data, m.cacheTTL); err != nil {
		m.logger.Debug("match cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func isCacheMiss(err error) bool {
	return errors.Is(err, domain.ErrCacheMiss)
}

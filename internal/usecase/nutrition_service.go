package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
	"github.com/manmaru/backend/internal/pkg/logger"
)

// fallbackQuantityConfidence is what Parse reports when it gave up on the text
const fallbackQuantityConfidence = 0.5

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	MinSimilarity float64
	// CountUnmatched makes unmatched items drag the overall confidence down
	CountUnmatched   bool
	PregnancyTargets PregnancyTargets
}

// CalculateOptions tunes a single calculation.
type CalculateOptions struct {
	// Servings > 0 adds a per-serving view of the totals
	Servings         float64
	IncludePregnancy bool
	MinSimilarity    float64
}

// NutritionService runs the full pipeline: parse -> match -> aggregate -> standardize.
type NutritionService struct {
	matcher        *FoodMatcher
	parser         *QuantityParser
	aggregator     *NutritionAggregator
	minSimilarity  float64
	countUnmatched bool
	targets        PregnancyTargets
	logger         *zap.Logger
	now            func() time.Time
}

// NewNutritionService creates a new nutrition service with dependencies
func NewNutritionService(
	matcher *FoodMatcher,
	parser *QuantityParser,
	aggregator *NutritionAggregator,
	config NutritionServiceConfig,
	log *zap.Logger,
) *NutritionService {
	if log == nil {
		log = zap.NewNop()
	}
	if parser == nil {
		parser = NewQuantityParser(nil, log)
	}
	if aggregator == nil {
		aggregator = NewNutritionAggregator(parser, log)
	}

	minSimilarity := config.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	targets := config.PregnancyTargets
	if targets == (PregnancyTargets{}) {
		targets = DefaultPregnancyTargets()
	}

	return &NutritionService{
		matcher:        matcher,
		parser:         parser,
		aggregator:     aggregator,
		minSimilarity:  minSimilarity,
		countUnmatched: config.CountUnmatched,
		targets:        targets,
		logger:         log,
		now:            time.Now,
	}
}

// Matcher returns the food matcher used by the service.
func (s *NutritionService) Matcher() *FoodMatcher {
	return s.matcher
}

// Parser returns the quantity parser used by the service.
func (s *NutritionService) Parser() *QuantityParser {
	return s.parser
}

// Calculate turns parsed food items into one standardized nutrition total.
// Unmatched items are reported, not fatal, unless nothing matched at all.
func (s *NutritionService) Calculate(
	ctx context.Context,
	items []domain.ParsedFoodItem,
	opts CalculateOptions,
) (*domain.NutritionCalculation, error) {
	start := time.Now()

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no food items", domain.ErrInvalidRequest)
	}
	names := make([]string, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.FoodName) == "" {
			return nil, fmt.Errorf("%w: item %d has no food name", domain.ErrInvalidRequest, i)
		}
		names[i] = item.FoodName
	}

	minSimilarity := opts.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = s.minSimilarity
	}

	matches, err := s.matcher.MatchFoods(ctx, names, MatchOptions{MinSimilarity: minSimilarity, Limit: 1})
	if err != nil {
		return nil, err
	}

	calc := &domain.NutritionCalculation{
		ID:           uuid.NewString(),
		Unmatched:    []string{},
		Warnings:     []string{},
		CalculatedAt: s.now().UTC(),
	}

	aggItems := make([]domain.AggregationItem, 0, len(items))
	// source index of each matched item, aligned with the aggregated items
	sources := make([]int, 0, len(items))
	for i, item := range items {
		match := matches[i]
		if match == nil || match.MatchedFood == nil {
			calc.Unmatched = append(calc.Unmatched, item.FoodName)
			if s.countUnmatched {
				aggItems = append(aggItems, domain.AggregationItem{Quantity: domain.DefaultQuantity()})
			}
			continue
		}

		if match.Similarity < minSimilarity {
			calc.Warnings = append(calc.Warnings, fmt.Sprintf(
				"low-confidence match: %q -> %q (similarity %.2f)",
				item.FoodName, match.MatchedFood.Name, match.Similarity))
		}

		parsed := s.parser.Parse(item.QuantityText, match.MatchedFood.Name)
		if strings.TrimSpace(item.QuantityText) != "" &&
			parsed.Quantity.Unit == domain.UnitStandard && parsed.Confidence <= fallbackQuantityConfidence {
			calc.Warnings = append(calc.Warnings, fmt.Sprintf(
				"quantity %q for %q not understood, using a standard amount", item.QuantityText, item.FoodName))
		}

		aggItems = append(aggItems, domain.AggregationItem{
			Food:            match.MatchedFood,
			Quantity:        parsed.Quantity,
			MatchConfidence: match.Similarity * itemConfidence(item.Confidence),
		})
		sources = append(sources, i)
	}

	if len(sources) == 0 {
		s.logger.Warn("no food matched",
			zap.Strings("items", names),
		)
		return nil, fmt.Errorf("%w: %s", domain.ErrFoodNotFound, strings.Join(calc.Unmatched, ", "))
	}

	agg, err := s.aggregator.Calculate(aggItems)
	if err != nil {
		return nil, err
	}

	std := StandardizeTotals(agg.Totals)
	for j, it := range agg.Items {
		src := items[sources[j]]
		std.FoodItems = append(std.FoodItems, domain.StandardizedFoodItem{
			Name:         src.FoodName,
			MatchedName:  it.Food.Name,
			FoodID:       it.Food.ID,
			QuantityText: src.QuantityText,
			Amount:       it.Quantity.Value,
			Unit:         it.Quantity.Unit,
			Grams:        it.Grams.Grams,
			GramSource:   it.Grams.Source,
			Calories:     it.Nutrients.Calories,
			Confidence:   it.Confidence,
		})
	}
	balance := agg.Reliability.BalanceScore
	completeness := agg.Reliability.Completeness
	std.Reliability = &domain.Reliability{
		Confidence:   agg.Reliability.Confidence,
		BalanceScore: &balance,
		Completeness: &completeness,
	}
	if opts.IncludePregnancy {
		std = AttachPregnancyTargets(std, s.targets)
	}

	calc.Nutrition = std
	calc.Legacy = LegacyFromTotals(agg.Totals, agg.Reliability.Confidence)
	if per, ok := PerServing(std, opts.Servings); ok {
		calc.PerServing = &per
		calc.Servings = opts.Servings
	}

	s.logger.Info("nutrition calculated",
		zap.String("id", calc.ID),
		zap.Int("items", len(items)),
		zap.Int("unmatched", len(calc.Unmatched)),
		zap.Float64("calories", std.TotalCalories),
		zap.Float64("confidence", agg.Reliability.Confidence),
		logger.Since(start),
	)
	return calc, nil
}

// itemConfidence treats a missing (zero) upstream confidence as full trust.
func itemConfidence(c float64) float64 {
	if c == 0 {
		return 1
	}
	return clamp01(c)
}

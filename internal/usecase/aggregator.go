package usecase

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

// Ideal protein:fat:carbohydrate mass ratio used by the balance score
var idealMacroRatio = [3]float64{2, 1, 3}

// completenessExtended are the extended nutrients counted by Completeness
// in addition to the six basic ones.
var completenessExtended = []domain.NutrientKey{
	domain.NutrientFat,
	domain.NutrientCarbohydrate,
	domain.NutrientDietaryFiber,
	domain.NutrientSugars,
	domain.NutrientSalt,
	domain.NutrientPotassium,
}

// NutritionAggregator scales matched foods by their gram quantity and sums
// them. It holds no per-call state, so one instance serves concurrent calls.
type NutritionAggregator struct {
	parser *QuantityParser
	logger *zap.Logger
}

// NewNutritionAggregator creates an aggregator using parser for gram conversion.
func NewNutritionAggregator(parser *QuantityParser, logger *zap.Logger) *NutritionAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = NewQuantityParser(nil, logger)
	}
	return &NutritionAggregator{parser: parser, logger: logger}
}

// Calculate folds items into nutrient totals in input order. Items without a
// food contribute nothing but still count as zero-confidence items.
func (a *NutritionAggregator) Calculate(items []domain.AggregationItem) (domain.AggregationResult, error) {
	result := domain.AggregationResult{
		Matches: make([]domain.FoodMatchResult, 0, len(items)),
		Items:   make([]domain.ItemNutrition, 0, len(items)),
	}

	var confidenceSum float64
	for i, item := range items {
		if item.Food == nil {
			continue
		}

		est, err := a.parser.ConvertToGrams(item.Quantity, item.Food.Name, item.Food.Category)
		if err != nil {
			return domain.AggregationResult{}, fmt.Errorf("item %d (%s): %w", i, item.Food.Name, err)
		}

		scale := est.Grams / 100
		var contribution domain.Nutrients
		for _, key := range item.Food.NutrientsPer100g.PopulatedKeys() {
			per100, _ := item.Food.NutrientsPer100g.Value(key)
			v := per100 * scale
			contribution.Set(key, v)
			result.Totals.Add(key, v)
		}

		confidence := clamp01(item.MatchConfidence) * clamp01(est.Confidence)
		confidenceSum += confidence

		result.Items = append(result.Items, domain.ItemNutrition{
			Food:       item.Food,
			Quantity:   item.Quantity,
			Grams:      est,
			Confidence: confidence,
			Nutrients:  contribution,
		})
		result.Matches = append(result.Matches, domain.NewFoodMatchResult(item.Food.Name, item.Food, clamp01(item.MatchConfidence)))
	}

	if len(items) > 0 {
		result.Reliability.Confidence = clamp01(confidenceSum / float64(len(items)))
	}
	result.Reliability.BalanceScore = BalanceScore(result.Totals)
	result.Reliability.Completeness = Completeness(result.Totals)

	a.logger.Debug("aggregated nutrition",
		zap.Int("items", len(items)),
		zap.Int("counted", len(result.Items)),
		zap.Float64("calories", result.Totals.Calories),
		zap.Float64("confidence", result.Reliability.Confidence),
	)
	return result, nil
}

// BalanceScore compares the protein:fat:carbohydrate ratio of totals with
// 2:1:3. 100 means the ideal ratio; 0 is returned when there is no macro mass.
func BalanceScore(totals domain.Nutrients) float64 {
	fat, _ := totals.Value(domain.NutrientFat)
	carbs, _ := totals.Value(domain.NutrientCarbohydrate)
	actual := [3]float64{totals.Protein, fat, carbs}

	total := actual[0] + actual[1] + actual[2]
	if total <= 0 {
		return 0
	}
	idealTotal := idealMacroRatio[0] + idealMacroRatio[1] + idealMacroRatio[2]

	var deviation float64
	for i := range actual {
		share := actual[i] / total
		ideal := idealMacroRatio[i] / idealTotal
		deviation += math.Abs(share-ideal) / ideal
	}
	deviation /= float64(len(actual))

	return math.Max(0, math.Min(100, 100*(1-deviation)))
}

// Completeness is the fraction of the expected nutrients with a positive
// value: the six basic ones, plus six extended ones when the totals carry
// any extended data.
func Completeness(totals domain.Nutrients) float64 {
	keys := append([]domain.NutrientKey(nil), domain.BasicNutrientKeys...)
	if totals.Extended != nil {
		keys = append(keys, completenessExtended...)
	}

	var present int
	for _, key := range keys {
		if v, ok := totals.Value(key); ok && v > 0 {
			present++
		}
	}
	return float64(present) / float64(len(keys))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

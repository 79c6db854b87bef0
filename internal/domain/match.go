package domain

// Similarity thresholds shared by matching and confidence displays.
const (
	SimilarityHigh   = 0.85
	SimilarityMedium = 0.70
	SimilarityLow    = 0.50
	// SimilarityFloor is the absolute minimum for a usable match.
	SimilarityFloor = 0.35
)

// ConfidenceTier is a display bucket for a similarity score.
type ConfidenceTier string

const (
	TierHigh    ConfidenceTier = "high"
	TierMedium  ConfidenceTier = "medium"
	TierLow     ConfidenceTier = "low"
	TierVeryLow ConfidenceTier = "very_low"
	TierNone    ConfidenceTier = ""
)

// TierFor maps a similarity score to its display tier.
func TierFor(similarity float64) ConfidenceTier {
	switch {
	case similarity >= SimilarityHigh:
		return TierHigh
	case similarity >= SimilarityMedium:
		return TierMedium
	case similarity >= SimilarityLow:
		return TierLow
	case similarity >= SimilarityFloor:
		return TierVeryLow
	default:
		return TierNone
	}
}

// ParsedFoodItem is one (food name, quantity text) pair emitted by an upstream
// parser: AI output, scraped recipe ingredients or manual entry.
type ParsedFoodItem struct {
	FoodName     string  `json:"foodName" binding:"required"`
	QuantityText string  `json:"quantityText,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
}

// FoodMatchResult is the best dataset food for an input name.
type FoodMatchResult struct {
	InputName   string         `json:"inputName"`
	MatchedFood *Food          `json:"matchedFood"`
	Similarity  float64        `json:"similarity"`
	Tier        ConfidenceTier `json:"tier,omitempty"`
}

// NewFoodMatchResult builds a result with its tier filled in.
func NewFoodMatchResult(input string, food *Food, similarity float64) FoodMatchResult {
	return FoodMatchResult{
		InputName:   input,
		MatchedFood: food,
		Similarity:  similarity,
		Tier:        TierFor(similarity),
	}
}

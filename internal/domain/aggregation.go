package domain

// AggregationItem is one matched food with its parsed quantity.
type AggregationItem struct {
	Food            *Food        `json:"food"`
	Quantity        FoodQuantity `json:"quantity"`
	MatchConfidence float64      `json:"matchConfidence"`
}

// ItemNutrition is the contribution of a single item to a meal.
type ItemNutrition struct {
	Food       *Food        `json:"food"`
	Quantity   FoodQuantity `json:"quantity"`
	Grams      GramEstimate `json:"grams"`
	Confidence float64      `json:"confidence"`
	Nutrients  Nutrients    `json:"nutrients"`
}

// ReliabilityReport summarizes how trustworthy an aggregation is.
type ReliabilityReport struct {
	Confidence   float64 `json:"confidence"`   // [0,1]
	BalanceScore float64 `json:"balanceScore"` // [0,100]
	Completeness float64 `json:"completeness"` // [0,1]
}

// AggregationResult is the output of one aggregation run.
type AggregationResult struct {
	Totals      Nutrients         `json:"totals"`
	Reliability ReliabilityReport `json:"reliability"`
	Matches     []FoodMatchResult `json:"matches"`
	Items       []ItemNutrition   `json:"items"`
}

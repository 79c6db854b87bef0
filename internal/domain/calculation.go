package domain

import "time"

// NutritionCalculation is the full outcome of one meal calculation.
type NutritionCalculation struct {
	ID           string                     `json:"id"`
	Nutrition    StandardizedMealNutrition  `json:"nutrition"`
	PerServing   *StandardizedMealNutrition `json:"perServing,omitempty"`
	Servings     float64                    `json:"servings,omitempty"`
	Legacy       LegacyNutrition            `json:"legacy"`
	Unmatched    []string                   `json:"unmatched"`
	Warnings     []string                   `json:"warnings"`
	CalculatedAt time.Time                  `json:"calculatedAt"`
}

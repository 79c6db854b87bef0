package domain

// NamedNutrient is one entry of the standardized nutrient list.
type NamedNutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// StandardizedFoodItem describes one food line of a standardized meal.
type StandardizedFoodItem struct {
	Name         string     `json:"name"`
	MatchedName  string     `json:"matchedName,omitempty"`
	FoodID       string     `json:"foodId,omitempty"`
	QuantityText string     `json:"quantityText,omitempty"`
	Amount       float64    `json:"amount"`
	Unit         string     `json:"unit"`
	Grams        float64    `json:"grams"`
	GramSource   GramSource `json:"gramSource,omitempty"`
	Calories     float64    `json:"calories"`
	Confidence   float64    `json:"confidence"`
}

// Reliability is the reliability block of the standardized output.
type Reliability struct {
	Confidence   float64  `json:"confidence"`
	BalanceScore *float64 `json:"balanceScore,omitempty"`
	Completeness *float64 `json:"completeness,omitempty"`
}

// PregnancySpecific holds intake as a percentage of pregnancy targets.
type PregnancySpecific struct {
	FolatePercentage   float64 `json:"folatePercentage"`
	IronPercentage     float64 `json:"ironPercentage"`
	CalciumPercentage  float64 `json:"calciumPercentage"`
	VitaminDPercentage float64 `json:"vitaminDPercentage"`
	ProteinPercentage  float64 `json:"proteinPercentage"`
}

// StandardizedMealNutrition is the list-of-named-nutrients shape used by API responses.
type StandardizedMealNutrition struct {
	TotalCalories     float64                `json:"totalCalories"`
	TotalNutrients    []NamedNutrient        `json:"totalNutrients"`
	FoodItems         []StandardizedFoodItem `json:"foodItems"`
	Reliability       *Reliability           `json:"reliability,omitempty"`
	PregnancySpecific *PregnancySpecific     `json:"pregnancySpecific,omitempty"`
}

// LegacyNutrition is the flat record consumed by older clients.
type LegacyNutrition struct {
	Calories          float64         `json:"calories"`
	Protein           float64         `json:"protein"`
	Iron              float64         `json:"iron"`
	FolicAcid         float64         `json:"folic_acid"`
	Calcium           float64         `json:"calcium"`
	VitaminD          float64         `json:"vitamin_d"`
	ConfidenceScore   float64         `json:"confidence_score"`
	ExtendedNutrients *LegacyExtended `json:"extended_nutrients,omitempty"`
}

// LegacyExtended is the optional nested block of LegacyNutrition.
// Minerals and vitamins are keyed by canonical nutrient key; names that match
// no known nutrient land in Vitamins (vitamin-like) or Other.
type LegacyExtended struct {
	Fat          *float64           `json:"fat,omitempty"`
	Carbohydrate *float64           `json:"carbohydrate,omitempty"`
	DietaryFiber *float64           `json:"dietary_fiber,omitempty"`
	Sugars       *float64           `json:"sugars,omitempty"`
	Salt         *float64           `json:"salt,omitempty"`
	Minerals     map[string]float64 `json:"minerals,omitempty"`
	Vitamins     map[string]float64 `json:"vitamins,omitempty"`
	Other        map[string]float64 `json:"other,omitempty"`
}

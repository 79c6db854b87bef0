package domain

// Canonical physical units
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMilliliter = "ml"
	UnitCC         = "cc"
	UnitLiter      = "l"
)

// UnitStandard is the sentinel unit used when no unit could be determined.
const UnitStandard = "標準量"

// FoodQuantity is a parsed amount. Unit is a canonical physical unit, a
// count-like unit (個, 本, 大さじ...), a qualitative term (少々...) or UnitStandard.
type FoodQuantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// DefaultQuantity is returned for missing or unparseable quantity text.
func DefaultQuantity() FoodQuantity {
	return FoodQuantity{Value: 1, Unit: UnitStandard}
}

// GramSource names the resolution tier that produced a gram estimate.
type GramSource string

const (
	GramSourceDirect           GramSource = "direct"
	GramSourceFoodOverride     GramSource = "food_override"
	GramSourceCategoryOverride GramSource = "category_override"
	GramSourceNamedOverride    GramSource = "named_override"
	GramSourceUnitTable        GramSource = "unit_table"
	GramSourceStandardAmount   GramSource = "standard_amount"
	GramSourceServingFallback  GramSource = "serving_fallback"
)

// GramEstimate is the mass a quantity represents for a given food.
type GramEstimate struct {
	Grams      float64    `json:"grams"`
	Confidence float64    `json:"confidence"`
	Source     GramSource `json:"source"`
}

// ParsedQuantity is the outcome of parsing free quantity text.
type ParsedQuantity struct {
	Text       string       `json:"text"`
	Quantity   FoodQuantity `json:"quantity"`
	Confidence float64      `json:"confidence"`
}

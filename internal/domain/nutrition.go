package domain

import (
	"fmt"
	"math"
)

// NutrientKey is the canonical identifier of a nutrient across the engine.
type NutrientKey string

// Basic nutrients, always present on Nutrients
const (
	NutrientCalories  NutrientKey = "calories"   // kcal
	NutrientProtein   NutrientKey = "protein"    // g
	NutrientIron      NutrientKey = "iron"       // mg
	NutrientFolicAcid NutrientKey = "folic_acid" // mcg
	NutrientCalcium   NutrientKey = "calcium"    // mg
	NutrientVitaminD  NutrientKey = "vitamin_d"  // mcg
)

// Extended nutrients, optional
const (
	NutrientFat          NutrientKey = "fat"           // g
	NutrientCarbohydrate NutrientKey = "carbohydrate"  // g
	NutrientDietaryFiber NutrientKey = "dietary_fiber" // g
	NutrientSugars       NutrientKey = "sugars"        // g
	NutrientSalt         NutrientKey = "salt"          // g, salt equivalent

	NutrientSodium     NutrientKey = "sodium"     // mg
	NutrientPotassium  NutrientKey = "potassium"  // mg
	NutrientMagnesium  NutrientKey = "magnesium"  // mg
	NutrientPhosphorus NutrientKey = "phosphorus" // mg
	NutrientZinc       NutrientKey = "zinc"       // mg

	NutrientVitaminA   NutrientKey = "vitamin_a"   // mcg RAE
	NutrientVitaminB1  NutrientKey = "vitamin_b1"  // mg
	NutrientVitaminB2  NutrientKey = "vitamin_b2"  // mg
	NutrientVitaminB6  NutrientKey = "vitamin_b6"  // mg
	NutrientVitaminB12 NutrientKey = "vitamin_b12" // mcg
	NutrientVitaminC   NutrientKey = "vitamin_c"   // mg
	NutrientVitaminE   NutrientKey = "vitamin_e"   // mg
	NutrientVitaminK   NutrientKey = "vitamin_k"   // mcg
)

// BasicNutrientKeys lists the six nutrients every record carries, in display order.
var BasicNutrientKeys = []NutrientKey{
	NutrientCalories, NutrientProtein, NutrientIron,
	NutrientFolicAcid, NutrientCalcium, NutrientVitaminD,
}

// ExtendedNutrientKeys lists the optional nutrients, in display order.
var ExtendedNutrientKeys = []NutrientKey{
	NutrientFat, NutrientCarbohydrate, NutrientDietaryFiber, NutrientSugars, NutrientSalt,
	NutrientSodium, NutrientPotassium, NutrientMagnesium, NutrientPhosphorus, NutrientZinc,
	NutrientVitaminA, NutrientVitaminB1, NutrientVitaminB2, NutrientVitaminB6,
	NutrientVitaminB12, NutrientVitaminC, NutrientVitaminE, NutrientVitaminK,
}

// AllNutrientKeys returns basic keys followed by extended keys.
func AllNutrientKeys() []NutrientKey {
	keys := make([]NutrientKey, 0, len(BasicNutrientKeys)+len(ExtendedNutrientKeys))
	keys = append(keys, BasicNutrientKeys...)
	return append(keys, ExtendedNutrientKeys...)
}

// Nutrients is a strict nutrient record. Basic fields are always present (zero means zero).
// Extended values are pointers: nil means "not reported", which is distinct from 0.
type Nutrients struct {
	Calories  float64            `json:"calories"`
	Protein   float64            `json:"protein"`
	Iron      float64            `json:"iron"`
	FolicAcid float64            `json:"folic_acid"`
	Calcium   float64            `json:"calcium"`
	VitaminD  float64            `json:"vitamin_d"`
	Extended  *ExtendedNutrients `json:"extended,omitempty"`
}

// ExtendedNutrients holds the optional macro, mineral and vitamin values.
type ExtendedNutrients struct {
	Fat          *float64 `json:"fat,omitempty"`
	Carbohydrate *float64 `json:"carbohydrate,omitempty"`
	DietaryFiber *float64 `json:"dietary_fiber,omitempty"`
	Sugars       *float64 `json:"sugars,omitempty"`
	Salt         *float64 `json:"salt,omitempty"`
	Minerals     Minerals `json:"minerals"`
	Vitamins     Vitamins `json:"vitamins"`
}

// Minerals in mg
type Minerals struct {
	Sodium     *float64 `json:"sodium,omitempty"`
	Potassium  *float64 `json:"potassium,omitempty"`
	Magnesium  *float64 `json:"magnesium,omitempty"`
	Phosphorus *float64 `json:"phosphorus,omitempty"`
	Zinc       *float64 `json:"zinc,omitempty"`
}

// Vitamins in their customary units (see NutrientKey constants)
type Vitamins struct {
	A   *float64 `json:"a,omitempty"`
	B1  *float64 `json:"b1,omitempty"`
	B2  *float64 `json:"b2,omitempty"`
	B6  *float64 `json:"b6,omitempty"`
	B12 *float64 `json:"b12,omitempty"`
	C   *float64 `json:"c,omitempty"`
	E   *float64 `json:"e,omitempty"`
	K   *float64 `json:"k,omitempty"`
}

var basicFields = map[NutrientKey]func(*Nutrients) *float64{
	NutrientCalories:  func(n *Nutrients) *float64 { return &n.Calories },
	NutrientProtein:   func(n *Nutrients) *float64 { return &n.Protein },
	NutrientIron:      func(n *Nutrients) *float64 { return &n.Iron },
	NutrientFolicAcid: func(n *Nutrients) *float64 { return &n.FolicAcid },
	NutrientCalcium:   func(n *Nutrients) *float64 { return &n.Calcium },
	NutrientVitaminD:  func(n *Nutrients) *float64 { return &n.VitaminD },
}

var extendedFields = map[NutrientKey]func(*ExtendedNutrients) **float64{
	NutrientFat:          func(e *ExtendedNutrients) **float64 { return &e.Fat },
	NutrientCarbohydrate: func(e *ExtendedNutrients) **float64 { return &e.Carbohydrate },
	NutrientDietaryFiber: func(e *ExtendedNutrients) **float64 { return &e.DietaryFiber },
	NutrientSugars:       func(e *ExtendedNutrients) **float64 { return &e.Sugars },
	NutrientSalt:         func(e *ExtendedNutrients) **float64 { return &e.Salt },
	NutrientSodium:       func(e *ExtendedNutrients) **float64 { return &e.Minerals.Sodium },
	NutrientPotassium:    func(e *ExtendedNutrients) **float64 { return &e.Minerals.Potassium },
	NutrientMagnesium:    func(e *ExtendedNutrients) **float64 { return &e.Minerals.Magnesium },
	NutrientPhosphorus:   func(e *ExtendedNutrients) **float64 { return &e.Minerals.Phosphorus },
	NutrientZinc:         func(e *ExtendedNutrients) **float64 { return &e.Minerals.Zinc },
	NutrientVitaminA:     func(e *ExtendedNutrients) **float64 { return &e.Vitamins.A },
	NutrientVitaminB1:    func(e *ExtendedNutrients) **float64 { return &e.Vitamins.B1 },
	NutrientVitaminB2:    func(e *ExtendedNutrients) **float64 { return &e.Vitamins.B2 },
	NutrientVitaminB6:    func(e *ExtendedNutrients) **float64 { return &e.Vitamins.B6 },
	NutrientVitaminB12:   func(e *ExtendedNutrients) **float64 { return &e.Vitamins.B12 },
	NutrientVitaminC:     func(e *ExtendedNutrients) **float64 { return &e.Vitamins.C },
	NutrientVitaminE:     func(e *ExtendedNutrients) **float64 { return &e.Vitamins.E },
	NutrientVitaminK:     func(e *ExtendedNutrients) **float64 { return &e.Vitamins.K },
}

// IsBasic reports whether key is one of the six always-present nutrients.
func (k NutrientKey) IsBasic() bool {
	_, ok := basicFields[k]
	return ok
}

// IsKnown reports whether key names a nutrient field of Nutrients.
func (k NutrientKey) IsKnown() bool {
	if k.IsBasic() {
		return true
	}
	_, ok := extendedFields[k]
	return ok
}

// Float returns a pointer to v, for populating extended fields.
func Float(v float64) *float64 {
	return &v
}

// Value returns the value stored under key. The boolean is false for extended
// nutrients that were never reported and for unknown keys.
func (n *Nutrients) Value(key NutrientKey) (float64, bool) {
	if ref, ok := basicFields[key]; ok {
		return *ref(n), true
	}
	ref, ok := extendedFields[key]
	if !ok || n.Extended == nil {
		return 0, false
	}
	if p := *ref(n.Extended); p != nil {
		return *p, true
	}
	return 0, false
}

// Set stores v under key, allocating the extended block when needed.
// Unknown keys are ignored and reported with false.
func (n *Nutrients) Set(key NutrientKey, v float64) bool {
	if ref, ok := basicFields[key]; ok {
		*ref(n) = v
		return true
	}
	ref, ok := extendedFields[key]
	if !ok {
		return false
	}
	if n.Extended == nil {
		n.Extended = &ExtendedNutrients{}
	}
	*ref(n.Extended) = Float(v)
	return true
}

// Add accumulates v into key. An unreported extended value becomes v.
func (n *Nutrients) Add(key NutrientKey, v float64) bool {
	if ref, ok := basicFields[key]; ok {
		*ref(n) += v
		return true
	}
	ref, ok := extendedFields[key]
	if !ok {
		return false
	}
	if n.Extended == nil {
		n.Extended = &ExtendedNutrients{}
	}
	p := ref(n.Extended)
	if *p == nil {
		*p = Float(v)
		return true
	}
	**p += v
	return true
}

// PopulatedKeys returns the keys holding a value: all basic keys plus every
// reported extended key, in canonical order.
func (n *Nutrients) PopulatedKeys() []NutrientKey {
	keys := append([]NutrientKey(nil), BasicNutrientKeys...)
	if n.Extended == nil {
		return keys
	}
	for _, key := range ExtendedNutrientKeys {
		if *extendedFields[key](n.Extended) != nil {
			keys = append(keys, key)
		}
	}
	return keys
}

// Scaled returns a copy with every populated value multiplied by factor.
func (n Nutrients) Scaled(factor float64) Nutrients {
	var out Nutrients
	for _, key := range n.PopulatedKeys() {
		v, _ := n.Value(key)
		out.Set(key, v*factor)
	}
	return out
}

// Clone returns a deep copy.
func (n Nutrients) Clone() Nutrients {
	return n.Scaled(1)
}

// Validate checks that every populated value is a finite non-negative number.
func (n *Nutrients) Validate() error {
	for _, key := range n.PopulatedKeys() {
		v, _ := n.Value(key)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: nutrient %s = %v", ErrInvalidArgument, key, v)
		}
	}
	return nil
}

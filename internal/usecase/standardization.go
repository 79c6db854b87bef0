package usecase

import (
	"math"
	"sort"
	"strings"

	"github.com/manmaru/backend/internal/domain"
)

// nutrientDef ties a nutrient key to its display name and unit. Every row is
// emitted in standardized output, in table order, zero when unreported.
type nutrientDef struct {
	key     domain.NutrientKey
	name    string
	unit    string
	aliases []string
}

var nutrientTable = []nutrientDef{
	{domain.NutrientProtein, "タンパク質", "g", []string{"たんぱく質", "蛋白質", "protein"}},
	{domain.NutrientIron, "鉄分", "mg", []string{"鉄", "iron"}},
	{domain.NutrientFolicAcid, "葉酸", "mcg", []string{"folic acid", "folic_acid", "folate"}},
	{domain.NutrientCalcium, "カルシウム", "mg", []string{"calcium"}},
	{domain.NutrientVitaminD, "ビタミンD", "mcg", []string{"vitamin d", "vitamin_d"}},
	{domain.NutrientFat, "脂質", "g", []string{"脂肪", "fat"}},
	{domain.NutrientCarbohydrate, "炭水化物", "g", []string{"carbohydrate", "carbohydrates", "carbs"}},
	{domain.NutrientDietaryFiber, "食物繊維", "g", []string{"食物繊維総量", "dietary fiber", "dietary_fiber", "fiber"}},
	{domain.NutrientSugars, "糖質", "g", []string{"糖類", "sugars", "sugar"}},
	{domain.NutrientSalt, "食塩相当量", "g", []string{"食塩", "塩分", "salt"}},

	{domain.NutrientSodium, "ナトリウム", "mg", []string{"sodium"}},
	{domain.NutrientPotassium, "カリウム", "mg", []string{"potassium"}},
	{domain.NutrientMagnesium, "マグネシウム", "mg", []string{"magnesium"}},
	{domain.NutrientPhosphorus, "リン", "mg", []string{"phosphorus"}},
	{domain.NutrientZinc, "亜鉛", "mg", []string{"zinc"}},
	{domain.NutrientVitaminA, "ビタミンA", "mcg", []string{"vitamin a", "vitamin_a"}},
	{domain.NutrientVitaminB1, "ビタミンB1", "mg", []string{"vitamin b1", "vitamin_b1"}},
	{domain.NutrientVitaminB2, "ビタミンB2", "mg", []string{"vitamin b2", "vitamin_b2"}},
	{domain.NutrientVitaminB6, "ビタミンB6", "mg", []string{"vitamin b6", "vitamin_b6"}},
	{domain.NutrientVitaminB12, "ビタミンB12", "mcg", []string{"vitamin b12", "vitamin_b12"}},
	{domain.NutrientVitaminC, "ビタミンC", "mg", []string{"vitamin c", "vitamin_c"}},
	{domain.NutrientVitaminE, "ビタミンE", "mg", []string{"vitamin e", "vitamin_e"}},
	{domain.NutrientVitaminK, "ビタミンK", "mcg", []string{"vitamin k", "vitamin_k"}},
}

// extraUnits are the units of common composition-table entries that have no
// nutrientTable row. Keys are in normalizeKey form.
var extraUnits = map[string]string{
	"コレステロール": "mg", "cholesterol": "mg",
	"ナイアシン": "mg", "niacin": "mg",
	"パントテン酸": "mg", "pantothenic acid": "mg",
	"ビオチン": "mcg", "biotin": "mcg",
	"レチノール": "mcg", "β-カロテン": "mcg", "βカロテン": "mcg",
	"銅": "mg", "マンガン": "mg",
	"ヨウ素": "mcg", "セレン": "mcg", "クロム": "mcg", "モリブデン": "mcg",
	"アルコール": "g", "水分": "g", "灰分": "g",
}

// extraUnit returns the unit of a nutrient outside nutrientTable, falling
// back to the default of the legacy bucket it came from.
func extraUnit(name, defaultUnit string) string {
	if unit, ok := extraUnits[normalizeKey(name)]; ok {
		return unit
	}
	return defaultUnit
}

// calorieNames are accepted in a nutrient list in place of totalCalories
var calorieNames = []string{"エネルギー", "カロリー", "熱量", "calories", "energy"}

var mineralKeys = map[domain.NutrientKey]bool{
	domain.NutrientSodium: true, domain.NutrientPotassium: true, domain.NutrientMagnesium: true,
	domain.NutrientPhosphorus: true, domain.NutrientZinc: true,
}

var vitaminKeys = map[domain.NutrientKey]bool{
	domain.NutrientVitaminA: true, domain.NutrientVitaminB1: true, domain.NutrientVitaminB2: true,
	domain.NutrientVitaminB6: true, domain.NutrientVitaminB12: true, domain.NutrientVitaminC: true,
	domain.NutrientVitaminE: true, domain.NutrientVitaminK: true,
}

// vitaminKeywords route unknown nutrient names into the vitamins bucket
var vitaminKeywords = []string{"ビタミン", "vitamin", "ナイアシン", "パントテン酸", "ビオチン", "レチノール", "カロテン"}

var (
	keyByName  = make(map[string]domain.NutrientKey)
	calorieSet = make(map[string]bool, len(calorieNames))
)

func init() {
	for _, def := range nutrientTable {
		keyByName[normalizeKey(def.name)] = def.key
		keyByName[normalizeKey(string(def.key))] = def.key
		for _, alias := range def.aliases {
			keyByName[normalizeKey(alias)] = def.key
		}
	}
	for _, name := range calorieNames {
		calorieSet[normalizeKey(name)] = true
	}
}

// NutrientKeyForName resolves a display name or alias ("鉄分", "Vitamin C").
func NutrientKeyForName(name string) (domain.NutrientKey, bool) {
	k, ok := keyByName[normalizeKey(name)]
	return k, ok
}

// StandardizeTotals converts a strict nutrient record to the named list shape.
// The list always holds every known nutrient, zero when unreported.
func StandardizeTotals(totals domain.Nutrients) domain.StandardizedMealNutrition {
	out := domain.StandardizedMealNutrition{
		TotalCalories:  totals.Calories,
		TotalNutrients: make([]domain.NamedNutrient, 0, len(nutrientTable)),
		FoodItems:      []domain.StandardizedFoodItem{},
	}
	for _, def := range nutrientTable {
		v, _ := totals.Value(def.key)
		out.TotalNutrients = append(out.TotalNutrients, domain.NamedNutrient{Name: def.name, Value: v, Unit: def.unit})
	}
	return out
}

// StandardizeLegacy converts the flat legacy record to the standardized shape.
// Unknown extended entries are carried over by name.
func StandardizeLegacy(flat domain.LegacyNutrition) domain.StandardizedMealNutrition {
	totals, extras := totalsFromLegacy(flat)
	out := StandardizeTotals(totals)
	out.TotalNutrients = append(out.TotalNutrients, extras...)
	out.Reliability = &domain.Reliability{Confidence: flat.ConfidenceScore}
	return out
}

// TotalsFromLegacy converts a legacy record to a strict nutrient record.
// Entries matching no known nutrient are dropped; use StandardizeLegacy to keep them.
func TotalsFromLegacy(flat domain.LegacyNutrition) domain.Nutrients {
	totals, _ := totalsFromLegacy(flat)
	return totals
}

func totalsFromLegacy(flat domain.LegacyNutrition) (domain.Nutrients, []domain.NamedNutrient) {
	totals := domain.Nutrients{
		Calories:  flat.Calories,
		Protein:   flat.Protein,
		Iron:      flat.Iron,
		FolicAcid: flat.FolicAcid,
		Calcium:   flat.Calcium,
		VitaminD:  flat.VitaminD,
	}

	ext := flat.ExtendedNutrients
	if ext == nil {
		return totals, nil
	}

	for key, p := range map[domain.NutrientKey]*float64{
		domain.NutrientFat:          ext.Fat,
		domain.NutrientCarbohydrate: ext.Carbohydrate,
		domain.NutrientDietaryFiber: ext.DietaryFiber,
		domain.NutrientSugars:       ext.Sugars,
		domain.NutrientSalt:         ext.Salt,
	} {
		if p != nil {
			totals.Set(key, *p)
		}
	}

	buckets := []struct {
		values      map[string]float64
		defaultUnit string
	}{
		{ext.Minerals, "mg"},
		{ext.Vitamins, "mg"},
		{ext.Other, "g"},
	}

	var extras []domain.NamedNutrient
	for _, bucket := range buckets {
		for _, name := range sortedKeys(bucket.values) {
			v := bucket.values[name]
			key := domain.NutrientKey(name)
			if !key.IsKnown() {
				key, _ = NutrientKeyForName(name)
			}
			if key.IsKnown() && !key.IsBasic() {
				totals.Set(key, v)
				continue
			}
			extras = append(extras, domain.NamedNutrient{Name: name, Value: v, Unit: extraUnit(name, bucket.defaultUnit)})
		}
	}
	return totals, extras
}

// LegacyFromTotals converts a strict nutrient record to the legacy shape.
func LegacyFromTotals(totals domain.Nutrients, confidence float64) domain.LegacyNutrition {
	flat := domain.LegacyNutrition{
		Calories:        totals.Calories,
		Protein:         totals.Protein,
		Iron:            totals.Iron,
		FolicAcid:       totals.FolicAcid,
		Calcium:         totals.Calcium,
		VitaminD:        totals.VitaminD,
		ConfidenceScore: confidence,
	}
	for _, key := range domain.ExtendedNutrientKeys {
		if v, ok := totals.Value(key); ok {
			assignLegacy(&flat, key, v)
		}
	}
	return flat
}

// LegacyFromStandardized walks the named nutrient list into the flat shape.
// Values are copied as-is with no unit conversion. Names matching no known
// nutrient go to the vitamins bucket when they look like a vitamin, else to
// the other bucket.
func LegacyFromStandardized(std domain.StandardizedMealNutrition) domain.LegacyNutrition {
	flat := domain.LegacyNutrition{Calories: std.TotalCalories}
	if std.Reliability != nil {
		flat.ConfidenceScore = std.Reliability.Confidence
	}

	for _, n := range std.TotalNutrients {
		if key, ok := NutrientKeyForName(n.Name); ok {
			assignLegacy(&flat, key, n.Value)
			continue
		}
		if calorieSet[normalizeKey(n.Name)] {
			if flat.Calories == 0 {
				flat.Calories = n.Value
			}
			continue
		}

		ext := legacyExtended(&flat)
		if isVitaminName(n.Name) {
			if ext.Vitamins == nil {
				ext.Vitamins = make(map[string]float64)
			}
			ext.Vitamins[n.Name] = n.Value
		} else {
			if ext.Other == nil {
				ext.Other = make(map[string]float64)
			}
			ext.Other[n.Name] = n.Value
		}
	}
	return flat
}

func assignLegacy(flat *domain.LegacyNutrition, key domain.NutrientKey, v float64) {
	switch key {
	case domain.NutrientCalories:
		flat.Calories = v
	case domain.NutrientProtein:
		flat.Protein = v
	case domain.NutrientIron:
		flat.Iron = v
	case domain.NutrientFolicAcid:
		flat.FolicAcid = v
	case domain.NutrientCalcium:
		flat.Calcium = v
	case domain.NutrientVitaminD:
		flat.VitaminD = v
	case domain.NutrientFat:
		legacyExtended(flat).Fat = domain.Float(v)
	case domain.NutrientCarbohydrate:
		legacyExtended(flat).Carbohydrate = domain.Float(v)
	case domain.NutrientDietaryFiber:
		legacyExtended(flat).DietaryFiber = domain.Float(v)
	case domain.NutrientSugars:
		legacyExtended(flat).Sugars = domain.Float(v)
	case domain.NutrientSalt:
		legacyExtended(flat).Salt = domain.Float(v)
	default:
		ext := legacyExtended(flat)
		switch {
		case mineralKeys[key]:
			if ext.Minerals == nil {
				ext.Minerals = make(map[string]float64)
			}
			ext.Minerals[string(key)] = v
		case vitaminKeys[key]:
			if ext.Vitamins == nil {
				ext.Vitamins = make(map[string]float64)
			}
			ext.Vitamins[string(key)] = v
		}
	}
}

func legacyExtended(flat *domain.LegacyNutrition) *domain.LegacyExtended {
	if flat.ExtendedNutrients == nil {
		flat.ExtendedNutrients = &domain.LegacyExtended{}
	}
	return flat.ExtendedNutrients
}

func isVitaminName(name string) bool {
	folded := normalizeKey(name)
	for _, kw := range vitaminKeywords {
		if strings.Contains(folded, normalizeKey(kw)) {
			return true
		}
	}
	return false
}

// PerServing divides calories and every nutrient value by servings. It
// reports false, with no result, for servings that are not positive.
func PerServing(std domain.StandardizedMealNutrition, servings float64) (domain.StandardizedMealNutrition, bool) {
	if !(servings > 0) || math.IsInf(servings, 0) {
		return domain.StandardizedMealNutrition{}, false
	}

	out := std
	out.TotalCalories = std.TotalCalories / servings
	out.TotalNutrients = make([]domain.NamedNutrient, len(std.TotalNutrients))
	for i, n := range std.TotalNutrients {
		n.Value /= servings
		out.TotalNutrients[i] = n
	}
	out.FoodItems = append([]domain.StandardizedFoodItem(nil), std.FoodItems...)
	if std.PregnancySpecific != nil {
		p := *std.PregnancySpecific
		p.FolatePercentage /= servings
		p.IronPercentage /= servings
		p.CalciumPercentage /= servings
		p.VitaminDPercentage /= servings
		p.ProteinPercentage /= servings
		out.PregnancySpecific = &p
	}
	return out, true
}

// PregnancyTargets are daily intake targets in the units of the nutrient table.
type PregnancyTargets struct {
	Protein   float64 // g
	Iron      float64 // mg
	FolicAcid float64 // mcg
	Calcium   float64 // mg
	VitaminD  float64 // mcg
}

// DefaultPregnancyTargets are the Japanese dietary reference intakes for the
// second and third trimester.
func DefaultPregnancyTargets() PregnancyTargets {
	return PregnancyTargets{
		Protein:   75,
		Iron:      21,
		FolicAcid: 480,
		Calcium:   650,
		VitaminD:  8.5,
	}
}

// AttachPregnancyTargets returns std with the percentage-of-target block set.
func AttachPregnancyTargets(std domain.StandardizedMealNutrition, targets PregnancyTargets) domain.StandardizedMealNutrition {
	value := func(key domain.NutrientKey) float64 {
		for _, n := range std.TotalNutrients {
			if k, ok := NutrientKeyForName(n.Name); ok && k == key {
				return n.Value
			}
		}
		return 0
	}
	percent := func(v, target float64) float64 {
		if target <= 0 {
			return 0
		}
		return v / target * 100
	}

	std.PregnancySpecific = &domain.PregnancySpecific{
		FolatePercentage:   percent(value(domain.NutrientFolicAcid), targets.FolicAcid),
		IronPercentage:     percent(value(domain.NutrientIron), targets.Iron),
		CalciumPercentage:  percent(value(domain.NutrientCalcium), targets.Calcium),
		VitaminDPercentage: percent(value(domain.NutrientVitaminD), targets.VitaminD),
		ProteinPercentage:  percent(value(domain.NutrientProtein), targets.Protein),
	}
	return std
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

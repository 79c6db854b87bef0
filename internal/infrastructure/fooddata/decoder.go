// Package fooddata loads the reference food dataset from a file, the bundled
// copy or a remote URL.
package fooddata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

// nutrientFields lists the accepted JSON spellings of each nutrient, first match wins
var nutrientFields = map[domain.NutrientKey][]string{
	domain.NutrientCalories:     {"calories", "energy", "kcal"},
	domain.NutrientProtein:      {"protein"},
	domain.NutrientIron:         {"iron"},
	domain.NutrientFolicAcid:    {"folicAcid", "folic_acid", "folate"},
	domain.NutrientCalcium:      {"calcium"},
	domain.NutrientVitaminD:     {"vitaminD", "vitamin_d"},
	domain.NutrientFat:          {"fat"},
	domain.NutrientCarbohydrate: {"carbohydrate", "carbohydrates"},
	domain.NutrientDietaryFiber: {"fiber", "dietaryFiber", "dietary_fiber"},
	domain.NutrientSugars:       {"sugars", "sugar"},
	domain.NutrientSalt:         {"salt", "saltEquivalent", "salt_equivalent"},
	domain.NutrientSodium:       {"sodium"},
	domain.NutrientPotassium:    {"potassium"},
	domain.NutrientMagnesium:    {"magnesium"},
	domain.NutrientPhosphorus:   {"phosphorus"},
	domain.NutrientZinc:         {"zinc"},
	domain.NutrientVitaminA:     {"vitaminA", "vitamin_a"},
	domain.NutrientVitaminB1:    {"vitaminB1", "vitamin_b1"},
	domain.NutrientVitaminB2:    {"vitaminB2", "vitamin_b2"},
	domain.NutrientVitaminB6:    {"vitaminB6", "vitamin_b6"},
	domain.NutrientVitaminB12:   {"vitaminB12", "vitamin_b12"},
	domain.NutrientVitaminC:     {"vitaminC", "vitamin_c"},
	domain.NutrientVitaminE:     {"vitaminE", "vitamin_e"},
	domain.NutrientVitaminK:     {"vitaminK", "vitamin_k"},
}

// Decode parses a dataset document: a JSON object of food records keyed by id.
// Bad records are skipped with a warning; the result keeps document order.
func Decode(data []byte, logger *zap.Logger) ([]domain.Food, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrDatasetLoad)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object keyed by food id", domain.ErrDatasetLoad)
	}

	var foods []domain.Food
	skipped := 0
	root.ForEach(func(key, record gjson.Result) bool {
		food, err := decodeFood(record)
		if err != nil {
			skipped++
			logger.Warn("skipping food record",
				zap.String("key", key.String()),
				zap.Error(err),
			)
			return true
		}
		foods = append(foods, food)
		return true
	})

	if len(foods) == 0 {
		return nil, fmt.Errorf("%w: %d records skipped", domain.ErrDatasetEmpty, skipped)
	}
	if skipped > 0 {
		logger.Warn("dataset had invalid records",
			zap.Int("valid", len(foods)),
			zap.Int("skipped", skipped),
		)
	}
	return foods, nil
}

func decodeFood(record gjson.Result) (domain.Food, error) {
	if !record.IsObject() {
		return domain.Food{}, fmt.Errorf("record is not an object")
	}

	id := strings.TrimSpace(stringField(record.Get("id")))
	name := strings.TrimSpace(record.Get("name").String())
	if id == "" {
		return domain.Food{}, fmt.Errorf("missing id")
	}
	if name == "" || record.Get("name").Type != gjson.String {
		return domain.Food{}, fmt.Errorf("missing name")
	}

	food := domain.Food{
		ID:       id,
		Name:     name,
		Category: domain.ParseCategory(record.Get("category").String()),
	}

	if aliases := record.Get("aliases"); aliases.Exists() && aliases.Type != gjson.Null {
		if !aliases.IsArray() {
			return domain.Food{}, fmt.Errorf("aliases must be an array of strings")
		}
		for _, a := range aliases.Array() {
			if a.Type != gjson.String {
				return domain.Food{}, fmt.Errorf("aliases must be an array of strings")
			}
			if s := strings.TrimSpace(a.String()); s != "" {
				food.Aliases = append(food.Aliases, s)
			}
		}
	}

	// nutrients may sit in a nested object or directly on the record
	source := record
	if nested := record.Get("nutrients"); nested.IsObject() {
		source = nested
	}
	for _, key := range domain.AllNutrientKeys() {
		v, ok, err := nutrientValue(source, nutrientFields[key])
		if err != nil {
			return domain.Food{}, fmt.Errorf("%s: %w", key, err)
		}
		if ok {
			food.NutrientsPer100g.Set(key, v)
		}
	}
	if err := food.NutrientsPer100g.Validate(); err != nil {
		return domain.Food{}, err
	}
	return food, nil
}

// nutrientValue reads the first present field. Composition tables write "Tr"
// for trace amounts, "-" for unmeasured and "(1.2)" for estimates.
func nutrientValue(source gjson.Result, fields []string) (float64, bool, error) {
	for _, field := range fields {
		r := source.Get(field)
		if !r.Exists() {
			continue
		}
		switch r.Type {
		case gjson.Number:
			return r.Float(), true, nil
		case gjson.String:
			s := strings.TrimSpace(r.Str)
			s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
			switch strings.ToLower(s) {
			case "", "-":
				return 0, false, nil
			case "tr":
				return 0, true, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(v) {
				return 0, false, fmt.Errorf("not a number: %q", r.Str)
			}
			return v, true, nil
		case gjson.Null:
			return 0, false, nil
		case gjson.False, gjson.True, gjson.JSON:
			return 0, false, fmt.Errorf("not a number: %s", r.Raw)
		}
	}
	return 0, false, nil
}

// stringField accepts ids written as strings or numbers
func stringField(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	default:
		return ""
	}
}

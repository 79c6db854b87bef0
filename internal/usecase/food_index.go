package usecase

import (
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

// minFuzzyRunes is the shortest query FuzzyMatch scores. A single character
// ("油", "鶏") is contained in too many unrelated names to rank on its own.
const minFuzzyRunes = 2

// FoodIndex is the in-memory reference dataset. It is built once and is
// read-only afterwards, so it can be shared by any number of goroutines.
// Returned *domain.Food values point into the index and must not be modified.
type FoodIndex struct {
	foods   []*domain.Food
	byID    map[string]*domain.Food
	byName  map[string]*domain.Food
	byAlias map[string]*domain.Food
	entries []indexEntry
}

// indexEntry holds the precomputed lookup keys of one food.
type indexEntry struct {
	food    *domain.Food
	name    string
	aliases []string
}

// NewFoodIndex builds an index over foods. Records without id or name, with
// negative or non-finite nutrients, and duplicate ids are skipped. When two foods share a name or alias key the
// first one keeps it.
func NewFoodIndex(foods []domain.Food, logger *zap.Logger) *FoodIndex {
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &FoodIndex{
		foods:   make([]*domain.Food, 0, len(foods)),
		byID:    make(map[string]*domain.Food, len(foods)),
		byName:  make(map[string]*domain.Food, len(foods)),
		byAlias: make(map[string]*domain.Food),
		entries: make([]indexEntry, 0, len(foods)),
	}

	for i := range foods {
		food := foods[i]
		if food.ID == "" || strings.TrimSpace(food.Name) == "" {
			logger.Warn("skipping food without id or name", zap.Int("position", i))
			continue
		}
		if err := food.NutrientsPer100g.Validate(); err != nil {
			logger.Warn("skipping food with invalid nutrients", zap.String("id", food.ID), zap.Error(err))
			continue
		}
		if _, dup := idx.byID[food.ID]; dup {
			logger.Warn("skipping duplicate food id", zap.String("id", food.ID))
			continue
		}
		food.Aliases = append([]string(nil), food.Aliases...)
		food.NutrientsPer100g = food.NutrientsPer100g.Clone()
		f := &food

		entry := indexEntry{food: f, name: normalizeKey(f.Name)}
		idx.foods = append(idx.foods, f)
		idx.byID[f.ID] = f

		if existing, taken := idx.byName[entry.name]; taken {
			logger.Debug("food name already indexed",
				zap.String("name", f.Name),
				zap.String("id", f.ID),
				zap.String("kept", existing.ID),
			)
		} else {
			idx.byName[entry.name] = f
		}

		for _, alias := range f.Aliases {
			key := normalizeKey(alias)
			if key == "" || key == entry.name {
				continue
			}
			entry.aliases = append(entry.aliases, key)
			if _, taken := idx.byAlias[key]; !taken {
				idx.byAlias[key] = f
			}
		}
		idx.entries = append(idx.entries, entry)
	}

	return idx
}

// Len returns the number of indexed foods.
func (idx *FoodIndex) Len() int {
	return len(idx.foods)
}

// ByID returns the food with the given id, or nil.
func (idx *FoodIndex) ByID(id string) *domain.Food {
	return idx.byID[id]
}

// ExactMatch looks the normalized name up in the name map, then the alias map.
func (idx *FoodIndex) ExactMatch(name string) *domain.Food {
	key := normalizeKey(name)
	if key == "" {
		return nil
	}
	if f, ok := idx.byName[key]; ok {
		return f
	}
	return idx.byAlias[key]
}

// PartialMatch returns foods whose name or alias contains the query or is
// contained in it. Name hits come before alias hits. limit <= 0 means no limit.
func (idx *FoodIndex) PartialMatch(name string, limit int) []*domain.Food {
	key := normalizeKey(name)
	if key == "" {
		return nil
	}

	var results []*domain.Food
	seen := make(map[string]bool)
	add := func(f *domain.Food) bool {
		if !seen[f.ID] {
			seen[f.ID] = true
			results = append(results, f)
		}
		return limit > 0 && len(results) >= limit
	}

	for _, e := range idx.entries {
		if overlaps(e.name, key) && add(e.food) {
			return results
		}
	}
	for _, e := range idx.entries {
		for _, alias := range e.aliases {
			if overlaps(alias, key) {
				if add(e.food) {
					return results
				}
				break
			}
		}
	}
	return results
}

// FuzzyMatch ranks foods by Similarity against their name and aliases,
// keeping the best score per food. An exact hit is returned alone at 1.0.
// Queries shorter than minFuzzyRunes only match exactly. Scores below
// domain.SimilarityFloor are dropped. limit <= 0 means no limit.
func (idx *FoodIndex) FuzzyMatch(name string, limit int) []domain.FoodMatchResult {
	key := normalizeKey(name)
	if key == "" {
		return nil
	}
	if f := idx.ExactMatch(name); f != nil {
		return []domain.FoodMatchResult{domain.NewFoodMatchResult(name, f, 1)}
	}
	if utf8.RuneCountInString(key) < minFuzzyRunes {
		return nil
	}

	type scored struct {
		food  *domain.Food
		score float64
		order int
	}
	var candidates []scored
	for i, e := range idx.entries {
		best := Similarity(key, e.name)
		for _, alias := range e.aliases {
			best = max(best, Similarity(key, alias))
		}
		if best >= domain.SimilarityFloor {
			candidates = append(candidates, scored{food: e.food, score: best, order: i})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]domain.FoodMatchResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.NewFoodMatchResult(name, c.food, c.score)
	}
	return results
}

func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

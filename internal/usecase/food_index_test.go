package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

// testFoods is a small dataset shared by the usecase tests.
func testFoods() []domain.Food {
	return []domain.Food{
		{
			ID: "01088", Name: "ご飯", Aliases: []string{"ごはん", "白米", "精白米"},
			Category: domain.CategoryGrains,
			NutrientsPer100g: domain.Nutrients{
				Calories: 168, Protein: 2.5, Iron: 0.1, FolicAcid: 3, Calcium: 3, VitaminD: 0,
				Extended: &domain.ExtendedNutrients{
					Fat:          domain.Float(0.3),
					Carbohydrate: domain.Float(37.1),
					DietaryFiber: domain.Float(0.3),
				},
			},
		},
		{
			ID: "04032", Name: "豆腐", Aliases: []string{"木綿豆腐", "とうふ"},
			Category: domain.CategoryLegumes,
			NutrientsPer100g: domain.Nutrients{
				Calories: 72, Protein: 6.6, Iron: 0.9, FolicAcid: 12, Calcium: 86, VitaminD: 0,
				Extended: &domain.ExtendedNutrients{
					Fat:          domain.Float(4.2),
					Carbohydrate: domain.Float(1.6),
					Minerals:     domain.Minerals{Potassium: domain.Float(140)},
				},
			},
		},
		{
			ID: "04033", Name: "絹ごし豆腐", Aliases: []string{"きぬごし豆腐"},
			Category: domain.CategoryLegumes,
			NutrientsPer100g: domain.Nutrients{
				Calories: 56, Protein: 4.9, Iron: 0.8, FolicAcid: 12, Calcium: 57,
			},
		},
		{
			ID: "11220", Name: "鶏むね肉", Aliases: []string{"鶏胸肉", "とりむね"},
			Category: domain.CategoryMeat,
			NutrientsPer100g: domain.Nutrients{
				Calories: 133, Protein: 21.3, Iron: 0.3, FolicAcid: 12, Calcium: 4, VitaminD: 0.1,
			},
		},
		{
			ID: "07148", Name: "りんご", Aliases: []string{"リンゴ", "林檎"},
			Category: domain.CategoryFruits,
			NutrientsPer100g: domain.Nutrients{
				Calories: 53, Protein: 0.1, Iron: 0.1, FolicAcid: 2, Calcium: 3,
			},
		},
		{
			ID: "13003", Name: "牛乳", Aliases: []string{"ぎゅうにゅう", "ミルク"},
			Category: domain.CategoryDairy,
			NutrientsPer100g: domain.Nutrients{
				Calories: 61, Protein: 3.3, Iron: 0.02, FolicAcid: 5, Calcium: 110, VitaminD: 0.3,
			},
		},
	}
}

func newTestIndex(t *testing.T) *FoodIndex {
	t.Helper()
	idx := NewFoodIndex(testFoods(), zap.NewNop())
	require.Equal(t, len(testFoods()), idx.Len())
	return idx
}

func TestNewFoodIndex(t *testing.T) {
	t.Run("skips invalid and duplicate records", func(t *testing.T) {
		foods := append(testFoods(),
			domain.Food{ID: "", Name: "名無し"},
			domain.Food{ID: "x1", Name: "  "},
			domain.Food{ID: "01088", Name: "重複"},
			domain.Food{ID: "x2", Name: "負の値", NutrientsPer100g: domain.Nutrients{Calories: -1}},
			domain.Food{ID: "x3", Name: "負の脂質", NutrientsPer100g: domain.Nutrients{
				Extended: &domain.ExtendedNutrients{Fat: domain.Float(-0.5)},
			}},
		)
		idx := NewFoodIndex(foods, zap.NewNop())
		assert.Equal(t, len(testFoods()), idx.Len())
		assert.Equal(t, "ご飯", idx.ByID("01088").Name)
		assert.Nil(t, idx.ByID("x2"))
		assert.Nil(t, idx.ByID("x3"))
		assert.Nil(t, idx.ExactMatch("負の値"))
	})

	t.Run("does not share memory with the input", func(t *testing.T) {
		foods := testFoods()
		idx := NewFoodIndex(foods, nil)

		foods[0].Aliases[0] = "changed"
		foods[0].NutrientsPer100g.Extended.Fat = domain.Float(99)

		f := idx.ByID("01088")
		require.NotNil(t, f)
		assert.Equal(t, "ごはん", f.Aliases[0])
		fat, ok := f.NutrientsPer100g.Value(domain.NutrientFat)
		assert.True(t, ok)
		assert.Equal(t, 0.3, fat)
	})
}

func TestFoodIndex_ExactMatch(t *testing.T) {
	idx := newTestIndex(t)

	tests := []struct {
		query  string
		wantID string
	}{
		{"ご飯", "01088"},
		{"  ご飯 ", "01088"},
		{"ごはん", "01088"},
		{"ﾐﾙｸ", "13003"},
		{"鶏胸肉", "11220"},
		{"パン", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := idx.ExactMatch(tt.query)
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestFoodIndex_PartialMatch(t *testing.T) {
	idx := newTestIndex(t)

	t.Run("name hits before alias hits", func(t *testing.T) {
		got := idx.PartialMatch("豆腐", 0)
		require.Len(t, got, 2)
		assert.Equal(t, "04032", got[0].ID)
		assert.Equal(t, "04033", got[1].ID)
	})

	t.Run("query containing a name", func(t *testing.T) {
		got := idx.PartialMatch("温かいご飯", 0)
		require.Len(t, got, 1)
		assert.Equal(t, "01088", got[0].ID)
	})

	t.Run("alias only hit", func(t *testing.T) {
		got := idx.PartialMatch("白米", 0)
		require.Len(t, got, 1)
		assert.Equal(t, "01088", got[0].ID)
	})

	t.Run("respects limit", func(t *testing.T) {
		assert.Len(t, idx.PartialMatch("豆腐", 1), 1)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Empty(t, idx.PartialMatch(" ", 5))
	})
}

func TestFoodIndex_FuzzyMatch(t *testing.T) {
	idx := newTestIndex(t)

	t.Run("exact match is the sole result", func(t *testing.T) {
		got := idx.FuzzyMatch("豆腐", 10)
		require.Len(t, got, 1)
		assert.Equal(t, "04032", got[0].MatchedFood.ID)
		assert.Equal(t, 1.0, got[0].Similarity)
		assert.Equal(t, domain.TierHigh, got[0].Tier)
		assert.Equal(t, "豆腐", got[0].InputName)
	})

	t.Run("ranks by best of name and alias", func(t *testing.T) {
		got := idx.FuzzyMatch("きぬごし", 10)
		require.NotEmpty(t, got)
		assert.Equal(t, "04033", got[0].MatchedFood.ID)
	})

	t.Run("sorted descending and above floor", func(t *testing.T) {
		got := idx.FuzzyMatch("鶏むね", 10)
		require.NotEmpty(t, got)
		assert.Equal(t, "11220", got[0].MatchedFood.ID)
		for i, r := range got {
			assert.GreaterOrEqual(t, r.Similarity, domain.SimilarityFloor)
			if i > 0 {
				assert.LessOrEqual(t, r.Similarity, got[i-1].Similarity)
			}
		}
	})

	t.Run("one result per food", func(t *testing.T) {
		got := idx.FuzzyMatch("とうふ料理", 10)
		seen := map[string]bool{}
		for _, r := range got {
			assert.False(t, seen[r.MatchedFood.ID], "duplicate %s", r.MatchedFood.ID)
			seen[r.MatchedFood.ID] = true
		}
	})

	t.Run("nothing above floor", func(t *testing.T) {
		assert.Empty(t, idx.FuzzyMatch("チョコレート", 10))
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, idx.FuzzyMatch("豆腐料理", 1), 1)
	})

	t.Run("single character only matches exactly", func(t *testing.T) {
		small := NewFoodIndex([]domain.Food{
			{ID: "17007", Name: "こいくちしょうゆ", Aliases: []string{"醤油"}, Category: domain.CategorySeasonings},
			{ID: "12004", Name: "鶏卵", Aliases: []string{"卵"}, Category: domain.CategoryEggs},
			{ID: "14006", Name: "オリーブ油", Category: domain.CategoryFats},
		}, zap.NewNop())

		assert.Empty(t, small.FuzzyMatch("油", 10))
		assert.Empty(t, small.FuzzyMatch("鶏", 10))

		got := small.FuzzyMatch("卵", 10)
		require.Len(t, got, 1)
		assert.Equal(t, "12004", got[0].MatchedFood.ID)
		assert.Equal(t, 1.0, got[0].Similarity)
	})
}

package domain

import "strings"

// FoodCategory is a food group from the Japanese standard food composition tables.
type FoodCategory string

const (
	CategoryGrains     FoodCategory = "穀類"
	CategoryPotatoes   FoodCategory = "いも類"
	CategorySugars     FoodCategory = "砂糖類"
	CategoryLegumes    FoodCategory = "豆類"
	CategoryNuts       FoodCategory = "種実類"
	CategoryVegetables FoodCategory = "野菜類"
	CategoryFruits     FoodCategory = "果実類"
	CategoryMushrooms  FoodCategory = "きのこ類"
	CategorySeaweed    FoodCategory = "藻類"
	CategoryFish       FoodCategory = "魚介類"
	CategoryMeat       FoodCategory = "肉類"
	CategoryEggs       FoodCategory = "卵類"
	CategoryDairy      FoodCategory = "乳類"
	CategoryFats       FoodCategory = "油脂類"
	CategorySweets     FoodCategory = "菓子類"
	CategoryBeverages  FoodCategory = "し好飲料類"
	CategorySeasonings FoodCategory = "調味料及び香辛料類"
	CategoryPrepared   FoodCategory = "調理済み流通食品類"
	CategoryOther      FoodCategory = "その他"
)

var knownCategories = map[FoodCategory]bool{
	CategoryGrains: true, CategoryPotatoes: true, CategorySugars: true, CategoryLegumes: true,
	CategoryNuts: true, CategoryVegetables: true, CategoryFruits: true, CategoryMushrooms: true,
	CategorySeaweed: true, CategoryFish: true, CategoryMeat: true, CategoryEggs: true,
	CategoryDairy: true, CategoryFats: true, CategorySweets: true, CategoryBeverages: true,
	CategorySeasonings: true, CategoryPrepared: true, CategoryOther: true,
}

// categoryAliases maps short and English spellings found in datasets to categories
var categoryAliases = map[string]FoodCategory{
	"穀物": CategoryGrains, "grains": CategoryGrains, "grain": CategoryGrains,
	"いも": CategoryPotatoes, "potatoes": CategoryPotatoes,
	"豆": CategoryLegumes, "legumes": CategoryLegumes,
	"野菜": CategoryVegetables, "vegetables": CategoryVegetables, "vegetable": CategoryVegetables,
	"果物": CategoryFruits, "果実": CategoryFruits, "fruits": CategoryFruits, "fruit": CategoryFruits,
	"きのこ": CategoryMushrooms, "mushrooms": CategoryMushrooms,
	"海藻": CategorySeaweed, "seaweed": CategorySeaweed,
	"魚介": CategoryFish, "魚": CategoryFish, "fish": CategoryFish, "seafood": CategoryFish,
	"肉": CategoryMeat, "meat": CategoryMeat,
	"卵": CategoryEggs, "eggs": CategoryEggs, "egg": CategoryEggs,
	"乳製品": CategoryDairy, "dairy": CategoryDairy,
	"油脂": CategoryFats, "fats": CategoryFats,
	"菓子": CategorySweets, "sweets": CategorySweets,
	"飲料": CategoryBeverages, "beverages": CategoryBeverages,
	"調味料": CategorySeasonings, "seasonings": CategorySeasonings,
	"調理済み食品": CategoryPrepared, "prepared": CategoryPrepared,
}

// ParseCategory resolves a dataset category label. Unknown labels map to CategoryOther.
func ParseCategory(label string) FoodCategory {
	label = strings.TrimSpace(label)
	if c := FoodCategory(label); knownCategories[c] {
		return c
	}
	if c, ok := categoryAliases[strings.ToLower(label)]; ok {
		return c
	}
	return CategoryOther
}

// Food is a reference food with its nutrient profile per 100g.
// Foods are loaded once from the dataset and never mutated afterwards.
type Food struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Aliases          []string     `json:"aliases,omitempty"`
	Category         FoodCategory `json:"category"`
	NutrientsPer100g Nutrients    `json:"nutrientsPer100g"`
}

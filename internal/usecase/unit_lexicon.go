package usecase

import (
	"strings"

	"github.com/manmaru/backend/internal/domain"
)

// Gram-conversion defaults. Downstream confidence displays depend on these values.
const (
	// StandardAmountGrams is the mass assumed for the 標準量 sentinel.
	StandardAmountGrams = 100.0
	// DefaultServingGrams is the "one serving" mass used for unrecognized units.
	DefaultServingGrams = 100.0

	ConfidenceDirectMass       = 1.0
	ConfidenceDirectVolume     = 0.95
	ConfidenceFoodOverride     = 0.95
	ConfidenceCategoryOverride = 0.9
	ConfidenceNamedOverride    = 0.9
	ConfidenceStandardAmount   = 0.6
	ConfidenceServingFallback  = 0.4
)

// Count-like canonical units
const (
	UnitTablespoon = "大さじ"
	UnitTeaspoon   = "小さじ"
	UnitCup        = "カップ"
	UnitPiece      = "個"
	UnitStick      = "本"
	UnitSheet      = "枚"
	UnitBowl       = "杯"
	UnitSlice      = "切れ"
	UnitFlake      = "片"
	UnitKnob       = "かけ"
	UnitBall       = "玉"
	UnitBlock      = "丁"
	UnitStalk      = "株"
	UnitBunch      = "束"
	UnitCluster    = "房"
	UnitGrain      = "粒"
	UnitFishCount  = "尾"
	UnitAnimal     = "匹"
	UnitCan        = "缶"
	UnitPack       = "パック"
	UnitBag        = "袋"
	UnitRiceCup    = "合"
	UnitRiceBowl   = "膳"
	UnitServing    = "人前"
	UnitPlate      = "皿"
	UnitMouthful   = "口"
)

// Qualitative amount terms
const (
	UnitPinch     = "ひとつまみ"
	UnitDash      = "少々"
	UnitLittle    = "少量"
	UnitAsNeeded  = "適量"
	UnitAsDesired = "適宜"
	UnitGenerous  = "たっぷり"
)

// unitSynonyms maps folded spellings (see normalizeKey) to canonical units.
var unitSynonyms = map[string]string{
	// mass
	"g": domain.UnitGram, "gr": domain.UnitGram, "gram": domain.UnitGram, "grams": domain.UnitGram,
	"グラム": domain.UnitGram,
	"kg": domain.UnitKilogram, "キロ": domain.UnitKilogram, "キログラム": domain.UnitKilogram,
	// volume
	"ml": domain.UnitMilliliter, "ミリリットル": domain.UnitMilliliter,
	"cc": domain.UnitCC, "シーシー": domain.UnitCC,
	"l": domain.UnitLiter, "リットル": domain.UnitLiter,
	// spoons and cups
	"大さじ": UnitTablespoon, "大匙": UnitTablespoon, "おおさじ": UnitTablespoon, "大サジ": UnitTablespoon,
	"tbsp": UnitTablespoon, "tablespoon": UnitTablespoon, "tablespoons": UnitTablespoon,
	"小さじ": UnitTeaspoon, "小匙": UnitTeaspoon, "こさじ": UnitTeaspoon, "小サジ": UnitTeaspoon,
	"tsp": UnitTeaspoon, "teaspoon": UnitTeaspoon, "teaspoons": UnitTeaspoon,
	"カップ": UnitCup, "cup": UnitCup, "cups": UnitCup, "コップ": UnitCup,
	// counts
	"個": UnitPiece, "こ": UnitPiece, "コ": UnitPiece, "ケ": UnitPiece, "ヶ": UnitPiece, "ヵ": UnitPiece,
	"箇": UnitPiece, "個分": UnitPiece, "つ": UnitPiece, "pc": UnitPiece, "pcs": UnitPiece,
	"piece": UnitPiece, "pieces": UnitPiece,
	"本": UnitStick, "ほん": UnitStick, "本分": UnitStick,
	"枚": UnitSheet, "まい": UnitSheet, "枚分": UnitSheet,
	"杯": UnitBowl, "はい": UnitBowl, "ぱい": UnitBowl, "ばい": UnitBowl, "杯分": UnitBowl,
	"切れ": UnitSlice, "切": UnitSlice, "きれ": UnitSlice, "切れ分": UnitSlice,
	"片": UnitFlake, "へん": UnitFlake,
	"かけ": UnitKnob, "欠け": UnitKnob, "欠": UnitKnob, "カケ": UnitKnob,
	"玉": UnitBall, "たま": UnitBall,
	"丁": UnitBlock, "ちょう": UnitBlock,
	"株": UnitStalk, "かぶ": UnitStalk,
	"束": UnitBunch, "たば": UnitBunch, "把": UnitBunch,
	"房": UnitCluster, "ふさ": UnitCluster,
	"粒": UnitGrain, "つぶ": UnitGrain,
	"尾": UnitFishCount,
	"匹": UnitAnimal, "ひき": UnitAnimal, "びき": UnitAnimal, "ぴき": UnitAnimal,
	"缶": UnitCan, "かん": UnitCan,
	"パック": UnitPack, "pack": UnitPack, "pk": UnitPack,
	"袋": UnitBag, "ふくろ": UnitBag,
	"合": UnitRiceCup, "ごう": UnitRiceCup,
	"膳": UnitRiceBowl, "ぜん": UnitRiceBowl,
	"人前": UnitServing, "人分": UnitServing, "食分": UnitServing, "serving": UnitServing, "servings": UnitServing,
	"皿": UnitPlate, "さら": UnitPlate,
	"口": UnitMouthful, "くち": UnitMouthful,
	// qualitative
	"ひとつまみ": UnitPinch, "つまみ": UnitPinch, "一つまみ": UnitPinch,
	"少々": UnitDash, "少少": UnitDash, "しょうしょう": UnitDash,
	"少量": UnitLittle,
	"適量": UnitAsNeeded,
	"適宜": UnitAsDesired,
	"たっぷり": UnitGenerous,
	// "半分" parses as 0.5 of this
	"分": domain.UnitStandard,
	domain.UnitStandard: domain.UnitStandard,
}

// directUnits are physical units converted without any food knowledge
var directUnits = map[string]struct {
	factor     float64
	confidence float64
}{
	domain.UnitGram:       {1, ConfidenceDirectMass},
	domain.UnitKilogram:   {1000, ConfidenceDirectMass},
	domain.UnitMilliliter: {1, ConfidenceDirectVolume},
	domain.UnitCC:         {1, ConfidenceDirectVolume},
	domain.UnitLiter:      {1000, ConfidenceDirectVolume},
}

// UnitGrams is a gram-equivalent with the confidence of using it blindly.
type UnitGrams struct {
	Grams      float64
	Confidence float64
}

// unitGramTable is the generic gram-equivalent of one unit. Confidence drops
// with how much the real mass depends on the food.
var unitGramTable = map[string]UnitGrams{
	UnitTablespoon: {15, 0.85},
	UnitTeaspoon:   {5, 0.85},
	UnitCup:        {200, 0.8},
	UnitRiceCup:    {150, 0.8},
	UnitRiceBowl:   {150, 0.8},
	UnitBlock:      {300, 0.8},
	UnitCan:        {150, 0.8},
	UnitBowl:       {150, 0.75},
	UnitPack:       {100, 0.75},
	UnitBag:        {100, 0.75},
	UnitPiece:      {50, 0.7},
	UnitStick:      {100, 0.7},
	UnitSheet:      {30, 0.7},
	UnitSlice:      {80, 0.7},
	UnitFlake:      {10, 0.7},
	UnitKnob:       {10, 0.7},
	UnitBall:       {150, 0.7},
	UnitStalk:      {100, 0.7},
	UnitBunch:      {200, 0.7},
	UnitCluster:    {100, 0.7},
	UnitGrain:      {3, 0.7},
	UnitFishCount:  {100, 0.7},
	UnitAnimal:     {100, 0.7},
	UnitServing:    {200, 0.7},
	UnitPlate:      {200, 0.7},
	UnitMouthful:   {15, 0.7},
	UnitPinch:      {1, 0.75},
	UnitDash:       {2, 0.7},
	UnitLittle:     {5, 0.6},
	UnitAsNeeded:   {5, 0.5},
	UnitAsDesired:  {5, 0.5},
	UnitGenerous:   {30, 0.5},
}

// qualitativeTerms are amount words without a number, with their parse confidence
var qualitativeTerms = map[string]float64{
	UnitPinch:     0.75,
	UnitDash:      0.65,
	UnitLittle:    0.6,
	UnitAsNeeded:  0.5,
	UnitAsDesired: 0.5,
	UnitGenerous:  0.5,
}

// qualitativeOrder fixes the containment check order (longest first)
var qualitativeOrder = []string{UnitPinch, UnitGenerous, UnitDash, UnitLittle, UnitAsNeeded, UnitAsDesired}

type categoryUnit struct {
	category domain.FoodCategory
	unit     string
}

// foodGrams is a per-food gram value; names holds spellings of the food.
type foodGrams struct {
	names []string
	grams float64
}

// categoryFoodOverrides: one unit of a specific food within a category
var categoryFoodOverrides = map[categoryUnit][]foodGrams{
	{domain.CategoryFruits, UnitPiece}: {
		{[]string{"りんご", "リンゴ", "林檎"}, 250},
		{[]string{"みかん", "ミカン", "蜜柑"}, 100},
		{[]string{"オレンジ"}, 200},
		{[]string{"キウイ"}, 100},
		{[]string{"もも", "桃"}, 200},
		{[]string{"なし", "梨"}, 250},
		{[]string{"かき", "柿"}, 200},
		{[]string{"レモン"}, 100},
	},
	{domain.CategoryFruits, UnitStick}: {
		{[]string{"バナナ"}, 100},
	},
	{domain.CategoryFruits, UnitCluster}: {
		{[]string{"ぶどう", "ブドウ", "葡萄"}, 150},
		{[]string{"バナナ"}, 500},
	},
	{domain.CategoryVegetables, UnitPiece}: {
		{[]string{"ミニトマト", "プチトマト"}, 10},
		{[]string{"トマト"}, 150},
		{[]string{"玉ねぎ", "たまねぎ", "玉葱"}, 200},
		{[]string{"ピーマン"}, 35},
		{[]string{"かぼちゃ", "南瓜"}, 1000},
		{[]string{"キャベツ"}, 1000},
	},
	{domain.CategoryVegetables, UnitStick}: {
		{[]string{"にんじん", "人参", "ニンジン"}, 150},
		{[]string{"きゅうり", "胡瓜", "キュウリ"}, 100},
		{[]string{"なす", "茄子", "ナス"}, 80},
		{[]string{"だいこん", "大根"}, 1000},
		{[]string{"ねぎ", "長ねぎ", "葱"}, 100},
		{[]string{"ごぼう", "牛蒡"}, 150},
	},
	{domain.CategoryVegetables, UnitStalk}: {
		{[]string{"ほうれん草", "ほうれんそう"}, 30},
		{[]string{"小松菜", "こまつな"}, 40},
		{[]string{"ブロッコリー"}, 250},
		{[]string{"白菜", "はくさい"}, 1500},
	},
	{domain.CategoryPotatoes, UnitPiece}: {
		{[]string{"じゃがいも", "ジャガイモ", "馬鈴薯"}, 150},
		{[]string{"さつまいも", "サツマイモ"}, 250},
		{[]string{"里芋", "さといも"}, 50},
	},
	{domain.CategoryEggs, UnitPiece}: {
		{[]string{"うずら"}, 10},
		{[]string{"卵", "たまご", "玉子", "鶏卵"}, 50},
	},
	{domain.CategoryLegumes, UnitBlock}: {
		{[]string{"豆腐", "とうふ"}, 300},
	},
	{domain.CategoryLegumes, UnitPack}: {
		{[]string{"納豆", "なっとう"}, 45},
	},
	{domain.CategoryFish, UnitSlice}: {
		{[]string{"鮭", "さけ", "サーモン"}, 80},
		{[]string{"さば", "鯖", "サバ"}, 80},
	},
	{domain.CategoryMeat, UnitSheet}: {
		{[]string{"ハム"}, 10},
		{[]string{"ベーコン"}, 17},
	},
	{domain.CategoryDairy, UnitPiece}: {
		{[]string{"ヨーグルト"}, 100},
	},
}

// categoryUnitOverrides: one unit of anything within a category
var categoryUnitOverrides = map[categoryUnit]float64{
	{domain.CategoryGrains, UnitBowl}:           150,
	{domain.CategoryGrains, UnitRiceBowl}:       150,
	{domain.CategoryGrains, UnitSheet}:          60,
	{domain.CategoryGrains, UnitBall}:           200,
	{domain.CategoryGrains, UnitPiece}:          100,
	{domain.CategoryMeat, UnitSheet}:            100,
	{domain.CategoryMeat, UnitSlice}:            80,
	{domain.CategoryFish, UnitSlice}:            80,
	{domain.CategoryFish, UnitFishCount}:        100,
	{domain.CategoryFish, UnitAnimal}:           100,
	{domain.CategoryDairy, UnitBowl}:            200,
	{domain.CategoryDairy, UnitCup}:             210,
	{domain.CategoryBeverages, UnitBowl}:        200,
	{domain.CategoryVegetables, UnitPiece}:      100,
	{domain.CategoryVegetables, UnitStick}:      100,
	{domain.CategoryVegetables, UnitSheet}:      50,
	{domain.CategoryFruits, UnitPiece}:          150,
	{domain.CategoryLegumes, UnitBlock}:         300,
	{domain.CategoryLegumes, UnitPack}:          45,
	{domain.CategoryFats, UnitTablespoon}:       12,
	{domain.CategoryFats, UnitTeaspoon}:         4,
	{domain.CategorySeasonings, UnitTablespoon}: 18,
	{domain.CategorySeasonings, UnitTeaspoon}:   6,
	{domain.CategoryPrepared, UnitServing}:      250,
	{domain.CategoryPrepared, UnitPlate}:        250,
}

type namedOverride struct {
	names []string
	unit  string
	grams float64
}

// namedFoodOverrides apply to a food regardless of its category
var namedFoodOverrides = []namedOverride{
	{[]string{"カレールー", "カレールウ", "カレー ルー"}, UnitKnob, 20},
	{[]string{"シチュールー", "シチュールウ"}, UnitKnob, 20},
	{[]string{"にんにく", "ニンニク", "大蒜"}, UnitKnob, 5},
	{[]string{"しょうが", "生姜", "ショウガ"}, UnitKnob, 15},
	{[]string{"食パン"}, UnitSheet, 60},
	{[]string{"スライスチーズ"}, UnitSheet, 18},
	{[]string{"のり", "海苔"}, UnitSheet, 3},
	{[]string{"ご飯", "ごはん", "白米"}, UnitRiceCup, 330},
}

// UnitLexicon resolves unit spellings and gram-equivalents. It is immutable
// and safe for concurrent use.
type UnitLexicon struct {
	synonyms map[string]string
}

// NewUnitLexicon creates a lexicon over the built-in tables.
func NewUnitLexicon() *UnitLexicon {
	return &UnitLexicon{synonyms: unitSynonyms}
}

// Canonical maps a unit spelling to its canonical unit. Unknown units are
// returned folded, with known=false.
func (l *UnitLexicon) Canonical(unit string) (canonical string, known bool) {
	key := normalizeKey(unit)
	if c, ok := l.synonyms[key]; ok {
		return c, true
	}
	// trailing 分, as in "2切れ分"
	if trimmed := strings.TrimSuffix(key, "分"); trimmed != key {
		if c, ok := l.synonyms[trimmed]; ok {
			return c, true
		}
	}
	return key, false
}

// Synonyms returns a copy of the synonym table.
func (l *UnitLexicon) Synonyms() map[string]string {
	out := make(map[string]string, len(l.synonyms))
	for k, v := range l.synonyms {
		out[k] = v
	}
	return out
}

// direct returns the gram factor of a physical unit.
func (l *UnitLexicon) direct(unit string) (factor, confidence float64, ok bool) {
	d, ok := directUnits[unit]
	return d.factor, d.confidence, ok
}

// foodOverride finds a category+unit+food specific gram value.
func (l *UnitLexicon) foodOverride(category domain.FoodCategory, unit, foodKey string) (float64, bool) {
	if foodKey == "" {
		return 0, false
	}
	for _, entry := range categoryFoodOverrides[categoryUnit{category, unit}] {
		if containsAny(foodKey, entry.names) {
			return entry.grams, true
		}
	}
	return 0, false
}

// categoryOverride finds a category+unit gram value.
func (l *UnitLexicon) categoryOverride(category domain.FoodCategory, unit string) (float64, bool) {
	g, ok := categoryUnitOverrides[categoryUnit{category, unit}]
	return g, ok
}

// namedOverride finds a food+unit gram value independent of category.
func (l *UnitLexicon) namedOverride(unit, foodKey string) (float64, bool) {
	if foodKey == "" {
		return 0, false
	}
	for _, entry := range namedFoodOverrides {
		if entry.unit == unit && containsAny(foodKey, entry.names) {
			return entry.grams, true
		}
	}
	return 0, false
}

// UnitGrams returns the generic gram-equivalent of one unit.
func (l *UnitLexicon) UnitGrams(unit string) (UnitGrams, bool) {
	g, ok := unitGramTable[unit]
	return g, ok
}

// qualitative returns the parse confidence of a qualitative amount term.
func (l *UnitLexicon) qualitative(text string) (string, float64, bool) {
	if c, ok := l.synonyms[text]; ok {
		if conf, ok := qualitativeTerms[c]; ok {
			return c, conf, true
		}
	}
	for _, term := range qualitativeOrder {
		if strings.Contains(text, term) {
			return term, qualitativeTerms[term], true
		}
	}
	return "", 0, false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, normalizeKey(f)) {
			return true
		}
	}
	return false
}

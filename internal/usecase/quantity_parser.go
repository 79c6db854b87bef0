package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

// Parse confidences
const (
	parseConfidenceWeight       = 1.0
	parseConfidenceKnownUnit    = 0.95
	parseConfidenceUnknownUnit  = 0.65
	parseConfidenceBareNumber   = 0.7
	parseConfidenceDefault      = 0.5
	parseConfidenceComplexKanji = 0.5
	rangePenalty                = 0.1
)

const (
	kanjiNumerals = "一二三四五六七八九十百千半"
	numberPattern = `\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?(?:\s*~\s*\d+(?:\.\d+)?)?|[` + kanjiNumerals + `]+`
)

// Compiled regex patterns for quantity parsing, applied after foldWidth
var (
	// "1本(150g)", "(約200グラム)", "(0.2kg)"
	parenWeightRegex = regexp.MustCompile(`(?i)\(\s*(?:約)?\s*(\d+(?:\.\d+)?)\s*(kg|キログラム|キロ|g|グラム|grams?)\s*\)`)

	bracketedRegex = regexp.MustCompile(`\([^)]*\)|【[^】]*】|「[^」]*」`)

	approxPrefixRegex = regexp.MustCompile(`^(?:約|およそ|だいたい|大体|approx\.?)\s*`)
	approxSuffixRegex = regexp.MustCompile(`\s*(?:程度|くらい|ぐらい|位|ほど)$`)

	// "2-3個", "2〜3個": range separators other than "~"
	rangeSeparatorRegex = regexp.MustCompile(`(\d)\s*[-‐–〜]\s*(\d)`)
	// "小さじ1と1/2", "1と1/2カップ"
	mixedFractionRegex = regexp.MustCompile(`(\d+)\s*と\s*(\d+)/(\d+)`)
	// "1個半", "2杯半"
	trailingHalfRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([^\d\s~/半]+)半$`)

	numberUnitRegex = regexp.MustCompile(`^(` + numberPattern + `)\s*(\D+)$`)
	unitNumberRegex = regexp.MustCompile(`^(\D+?)\s*(` + numberPattern + `)$`)
	bareNumberRegex = regexp.MustCompile(`^(` + numberPattern + `)$`)
)

var kanjiDigits = map[string]float64{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
	"半": 0.5,
}

// QuantityParser turns free quantity text into a FoodQuantity and a
// FoodQuantity into grams. It never fails on odd text: anything it cannot
// read degrades to a low-confidence default.
type QuantityParser struct {
	lexicon *UnitLexicon
	logger  *zap.Logger
}

// NewQuantityParser creates a parser over the given lexicon.
func NewQuantityParser(lexicon *UnitLexicon, logger *zap.Logger) *QuantityParser {
	if lexicon == nil {
		lexicon = NewUnitLexicon()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuantityParser{lexicon: lexicon, logger: logger}
}

// Parse reads quantity text such as "1本（150g）", "大さじ2", "100g", "少々".
// foodName is only used as log context.
func (p *QuantityParser) Parse(text, foodName string) domain.ParsedQuantity {
	result := domain.ParsedQuantity{
		Text:       text,
		Quantity:   domain.DefaultQuantity(),
		Confidence: parseConfidenceDefault,
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	s := foldWidth(text)

	// Parenthetical weights win over everything else in the string
	if m := parenWeightRegex.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			unit, _ := p.lexicon.Canonical(m[2])
			if unit == domain.UnitKilogram {
				v *= 1000
			}
			result.Quantity = domain.FoodQuantity{Value: v, Unit: domain.UnitGram}
			result.Confidence = parseConfidenceWeight
			return result
		}
	}

	s = bracketedRegex.ReplaceAllString(s, " ")
	s = strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(s, " "))
	s = approxPrefixRegex.ReplaceAllString(s, "")
	s = approxSuffixRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if s == "" {
		p.logger.Debug("quantity text empty after cleanup",
			zap.String("text", text),
			zap.String("food", foodName),
		)
		return result
	}

	s = normalizeCompoundNumbers(s)

	if q, conf, ok := p.parseNumberWithUnit(s); ok {
		result.Quantity = q
		result.Confidence = conf
		return result
	}

	if term, conf, ok := p.lexicon.qualitative(normalizeKey(s)); ok {
		result.Quantity = domain.FoodQuantity{Value: 1, Unit: term}
		result.Confidence = conf
		return result
	}

	if m := bareNumberRegex.FindStringSubmatch(s); m != nil {
		if v, conf, ok := p.parseNumber(m[1], text); ok {
			result.Quantity = domain.FoodQuantity{Value: v, Unit: domain.UnitStandard}
			result.Confidence = math.Min(parseConfidenceBareNumber, conf)
			return result
		}
	}

	p.logger.Warn("unparseable quantity, using standard amount",
		zap.String("text", text),
		zap.String("food", foodName),
	)
	return result
}

// parseNumberWithUnit tries "<number><unit>" then "<unit><number>".
func (p *QuantityParser) parseNumberWithUnit(s string) (domain.FoodQuantity, float64, bool) {
	type candidate struct{ number, unit string }
	var candidates []candidate
	if m := numberUnitRegex.FindStringSubmatch(s); m != nil {
		candidates = append(candidates, candidate{m[1], m[2]})
	}
	if m := unitNumberRegex.FindStringSubmatch(s); m != nil {
		candidates = append(candidates, candidate{m[2], m[1]})
	}

	for _, c := range candidates {
		unitText := strings.TrimSpace(c.unit)
		if unitText == "" || isKanjiNumeral(unitText) {
			continue
		}
		value, numConf, ok := p.parseNumber(c.number, s)
		if !ok {
			continue
		}

		unit, known := p.lexicon.Canonical(unitText)
		conf := parseConfidenceKnownUnit
		switch {
		case !known:
			conf = parseConfidenceUnknownUnit
			p.logger.Debug("unknown quantity unit", zap.String("unit", unitText))
		case unit == domain.UnitStandard:
			conf = parseConfidenceBareNumber
		}
		return domain.FoodQuantity{Value: value, Unit: unit}, math.Min(conf, numConf), true
	}
	return domain.FoodQuantity{}, 0, false
}

// parseNumber reads integers, decimals, fractions, ranges and single kanji
// numerals. The returned confidence caps the overall parse confidence.
func (p *QuantityParser) parseNumber(s, text string) (float64, float64, bool) {
	s = strings.ReplaceAll(s, " ", "")

	if lo, hi, found := strings.Cut(s, "~"); found {
		a, errA := strconv.ParseFloat(lo, 64)
		b, errB := strconv.ParseFloat(hi, 64)
		if errA != nil || errB != nil {
			return 0, 0, false
		}
		return (a + b) / 2, parseConfidenceKnownUnit - rangePenalty, true
	}

	if num, den, found := strings.Cut(s, "/"); found {
		a, errA := strconv.ParseFloat(num, 64)
		b, errB := strconv.ParseFloat(den, 64)
		if errA != nil || errB != nil || b == 0 {
			return 0, 0, false
		}
		return a / b, 1, true
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, 1, true
	}

	if v, ok := kanjiDigits[s]; ok {
		return v, 1, true
	}
	if isKanjiNumeral(s) {
		p.logger.Warn("complex kanji numeral not supported, assuming 1",
			zap.String("numeral", s),
			zap.String("text", text),
		)
		return 1, parseConfidenceComplexKanji, true
	}
	return 0, 0, false
}

// normalizeCompoundNumbers rewrites recipe-style compound amounts into forms
// parseNumber reads: "2-3個" to "2~3個", "小さじ1と1/2" to "小さじ1.5",
// "1個半" to "1.5個".
func normalizeCompoundNumbers(s string) string {
	s = rangeSeparatorRegex.ReplaceAllString(s, "$1~$2")

	s = mixedFractionRegex.ReplaceAllStringFunc(s, func(m string) string {
		parts := mixedFractionRegex.FindStringSubmatch(m)
		whole, _ := strconv.ParseFloat(parts[1], 64)
		num, _ := strconv.ParseFloat(parts[2], 64)
		den, _ := strconv.ParseFloat(parts[3], 64)
		if den == 0 {
			return m
		}
		return formatNumber(whole + num/den)
	})

	if m := trailingHalfRegex.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			s = formatNumber(v+0.5) + m[2]
		}
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isKanjiNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(kanjiNumerals, r) {
			return false
		}
	}
	return true
}

// ConvertToGrams estimates the mass of q for the given food. Tiers are tried
// in order: physical unit, category+unit+food override, category+unit override,
// named food override, generic unit table, standard amount, serving fallback.
// Only invalid values are errors.
func (p *QuantityParser) ConvertToGrams(q domain.FoodQuantity, foodName string, category domain.FoodCategory) (domain.GramEstimate, error) {
	if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) || q.Value < 0 {
		return domain.GramEstimate{}, fmt.Errorf("%w: quantity value %v", domain.ErrInvalidArgument, q.Value)
	}

	unit := domain.UnitStandard
	if strings.TrimSpace(q.Unit) != "" {
		unit, _ = p.lexicon.Canonical(q.Unit)
	}
	foodKey := normalizeKey(foodName)

	estimate := func(perUnit, confidence float64, source domain.GramSource) domain.GramEstimate {
		return domain.GramEstimate{Grams: q.Value * perUnit, Confidence: confidence, Source: source}
	}

	if factor, conf, ok := p.lexicon.direct(unit); ok {
		return estimate(factor, conf, domain.GramSourceDirect), nil
	}
	if g, ok := p.lexicon.foodOverride(category, unit, foodKey); ok {
		return estimate(g, ConfidenceFoodOverride, domain.GramSourceFoodOverride), nil
	}
	if g, ok := p.lexicon.categoryOverride(category, unit); ok {
		return estimate(g, ConfidenceCategoryOverride, domain.GramSourceCategoryOverride), nil
	}
	if g, ok := p.lexicon.namedOverride(unit, foodKey); ok {
		return estimate(g, ConfidenceNamedOverride, domain.GramSourceNamedOverride), nil
	}
	if ug, ok := p.lexicon.UnitGrams(unit); ok {
		return estimate(ug.Grams, ug.Confidence, domain.GramSourceUnitTable), nil
	}
	if unit == domain.UnitStandard {
		return estimate(StandardAmountGrams, ConfidenceStandardAmount, domain.GramSourceStandardAmount), nil
	}

	p.logger.Debug("unrecognized unit, using one serving",
		zap.String("unit", unit),
		zap.String("food", foodName),
	)
	return estimate(DefaultServingGrams, ConfidenceServingFallback, domain.GramSourceServingFallback), nil
}

// Estimate parses text and converts the result to grams in one step.
func (p *QuantityParser) Estimate(text, foodName string, category domain.FoodCategory) (domain.ParsedQuantity, domain.GramEstimate, error) {
	parsed := p.Parse(text, foodName)
	grams, err := p.ConvertToGrams(parsed.Quantity, foodName, category)
	return parsed, grams, err
}

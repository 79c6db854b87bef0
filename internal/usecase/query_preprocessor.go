package usecase

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// QueryPreprocessor cleans food names coming from recipe pages, OCR and AI
// output before they are matched against the dataset.
type QueryPreprocessor struct {
	enableDebugLogging bool
	logger             *zap.Logger
}

// Compiled regex patterns for query preprocessing, applied after foldWidth
var (
	// Bullets and list markers at the start of ingredient lines: "・", "◎", "★", "- ", "1. "
	listMarkerPattern = regexp.MustCompile(`^(?:[・◎○●◇◆□■☆★※*+\-]+|\d+[.)])\s*`)

	// Recipe group prefixes such as "A 醤油"; bracketed "【A】" is handled by bracketedRegex
	groupPrefixPattern = regexp.MustCompile(`^[A-D]\s+`)

	// Trailing quantity: "ご飯 1杯", "牛乳200ml", "ごま油 大さじ1", "卵 二個".
	// Kanji numerals only count after a space so "鶏五目" survives.
	trailingQuantityPattern = regexp.MustCompile(
		`(?:\s*(?:約)?\s*(?:(?:大さじ|小さじ|カップ)\s*)?\d+(?:\.\d+)?(?:/\d+)?` +
			`|\s+(?:約)?(?:大さじ|小さじ)?[一二三四五六七八九十半])\s*\S{0,8}$`)

	// Trailing separators left behind: "豆腐:", "ご飯…"
	trailingPunctPattern = regexp.MustCompile(`[\s:：…・、,.。]+$`)
)

// queryNoiseWords are recipe annotations that never name a food
var queryNoiseWords = []string{
	"お好みで", "好みで", "あれば", "なければ", "など",
	"少々", "適量", "適宜", "ひとつまみ", "たっぷり",
	"飾り用", "トッピング用", "下味用", "仕上げ用",
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool, logger *zap.Logger) *QueryPreprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
		logger:             logger,
	}
}

// PreprocessQuery strips list markers, bracketed notes, annotations and a
// trailing quantity from a food name. It returns the input trimmed when
// cleaning would leave nothing.
func (p *QueryPreprocessor) PreprocessQuery(name string) string {
	original := strings.TrimSpace(name)
	if original == "" {
		return ""
	}

	// Step 1: fold widths so the patterns below only deal with ASCII digits and brackets
	cleaned := foldWidth(original)

	// Step 2: remove list markers and recipe group prefixes
	cleaned = listMarkerPattern.ReplaceAllString(cleaned, "")
	cleaned = groupPrefixPattern.ReplaceAllString(cleaned, "")

	// Step 3: remove bracketed notes such as "(木綿)" or "【A】"
	cleaned = bracketedRegex.ReplaceAllString(cleaned, " ")

	// Step 4: remove annotation words
	cleaned = strings.TrimSpace(p.removeNoiseWords(cleaned))

	// Step 5: remove trailing quantities ("1枚 300g"), but never the whole name
	for range 3 {
		stripped := strings.TrimSpace(trailingQuantityPattern.ReplaceAllString(cleaned, ""))
		if stripped == "" || stripped == cleaned {
			break
		}
		cleaned = stripped
	}

	// Step 6: clean up orphaned punctuation and whitespace
	cleaned = trailingPunctPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(cleaned, " "))

	if cleaned == "" {
		cleaned = original
	}

	if p.enableDebugLogging {
		p.logger.Debug("preprocessed food name",
			zap.String("input", original),
			zap.String("output", cleaned),
		)
	}

	return cleaned
}

// removeNoiseWords drops recipe annotations from the name
func (p *QueryPreprocessor) removeNoiseWords(s string) string {
	for _, word := range queryNoiseWords {
		s = strings.ReplaceAll(s, word, " ")
	}
	return s
}

// ExtractFoodKeywords splits a cleaned name into the pieces worth matching
// on their own: "鶏肉・玉ねぎ" yields "鶏肉", "玉ねぎ".
func (p *QueryPreprocessor) ExtractFoodKeywords(text string) []string {
	cleaned := p.PreprocessQuery(text)
	parts := keywordSeparatorPattern.Split(cleaned, -1)

	keywords := make([]string, 0, len(parts))
	seen := make(map[string]bool)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		keywords = append(keywords, part)
	}
	return keywords
}

var keywordSeparatorPattern = regexp.MustCompile(`[\s、,/・&]+|及び|および`)

package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// widthReplacer handles characters NFKC leaves alone or decomposes oddly
var widthReplacer = strings.NewReplacer(
	"⁄", "/", // fraction slash, produced by NFKC from ½ and friends
	"〜", "~",
	"～", "~",
)

// foldWidth applies NFKC so full-width digits, letters, punctuation and the
// ideographic space become ASCII, and half-width katakana become full-width.
func foldWidth(s string) string {
	return widthReplacer.Replace(norm.NFKC.String(s))
}

// normalizeKey is the lookup form of a food name, alias or unit:
// width-folded, case-folded, trimmed, inner whitespace collapsed.
func normalizeKey(s string) string {
	// cases.Caser is stateful, so one per call
	s = cases.Fold().String(foldWidth(s))
	s = multipleSpacesRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// 19.99 style: dot is the decimal separator
	dotDecimalRe = regexp.MustCompile(`[0-9]{1,4}\.[0-9]{2}`)
	// 1083,39 style: comma is the decimal separator, dots already stripped
	commaDecimalRe = regexp.MustCompile(`[0-9]{1,5},[0-9]{2}`)
	// bare digit run for texts without any separator
	digitsRe = regexp.MustCompile(`[0-9]+`)
)

// NormalizePrice converts raw, locale-ambiguous price text into a canonical
// price with two-decimal precision. The decimal convention is decided from the
// separators present in the text:
//
//	"19.99 EUR"   -> 19.99   (dot only: dot is decimal)
//	"1.083,39 €"  -> 1083.39 (comma present: dot is thousands, comma decimal)
//	"1200 kn"     -> 1200.00 (no separator: direct digit parse)
//
// It is pure and never fails loudly; unparseable text reports ok=false.
func NormalizePrice(raw string) (float64, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, false
	}

	hasDot := strings.Contains(text, ".")
	hasComma := strings.Contains(text, ",")

	var numberStr string
	switch {
	case hasDot && !hasComma:
		numberStr = dotDecimalRe.FindString(text)
	case hasComma:
		stripped := strings.ReplaceAll(text, ".", "")
		numberStr = strings.ReplaceAll(commaDecimalRe.FindString(stripped), ",", ".")
	default:
		numberStr = digitsRe.FindString(text)
	}

	if numberStr == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(numberStr, 64)
	if err != nil {
		return 0, false
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return math.Round(value*100) / 100, true
}

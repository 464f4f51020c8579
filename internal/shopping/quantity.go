package shopping

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAmount is used wherever an amount is missing or cannot be rendered.
const DefaultAmount = "1 piece"

// Quantity is a parsed amount string.
type Quantity struct {
	Value    float64
	Unit     Unit
	Original string
}

var (
	mixedNumber = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)`)
	fraction    = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)`)
	decimal     = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)`)
)

var vulgarFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// ParseQuantity converts a free-text amount into a Quantity.
// It never fails: text without a leading number counts as 1, and text
// without a recognised unit counts as pieces.
func ParseQuantity(amount string) Quantity {
	lower := strings.ToLower(amount)
	if strings.Contains(lower, "to taste") || strings.Contains(lower, "as needed") {
		return Quantity{Value: 0, Unit: UnitToTaste, Original: amount}
	}

	value, rest, ok := leadingNumber(strings.TrimSpace(lower))
	if !ok {
		value = 1
	}

	unit, found := lookupUnit(rest)
	if !found {
		unit = UnitPiece
	}

	return Quantity{Value: value, Unit: unit, Original: amount}
}

// leadingNumber reads an integer, decimal, fraction, mixed number or vulgar
// fraction at the start of s and returns its value and the remaining text.
func leadingNumber(s string) (float64, string, bool) {
	if m := mixedNumber.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		if v, ok := ratio(m[2], m[3]); ok {
			return whole + v, s[len(m[0]):], true
		}
	}
	if m := fraction.FindStringSubmatch(s); m != nil {
		if v, ok := ratio(m[1], m[2]); ok {
			return v, s[len(m[0]):], true
		}
	}

	value, rest, ok := 0.0, s, false
	if m := decimal.FindString(s); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil {
			value, rest, ok = v, s[len(m):], true
		}
	}

	// A vulgar fraction may stand alone or follow a whole number ("1½", "1 ½").
	trimmed := strings.TrimLeft(rest, " ")
	if r, size := utf8.DecodeRuneInString(trimmed); size > 0 {
		if frac, isFrac := vulgarFractions[r]; isFrac && (!ok || value == math.Trunc(value)) {
			return value + frac, trimmed[size:], true
		}
	}
	return value, rest, ok
}

func ratio(num, den string) (float64, bool) {
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

// tokenize splits s into lower-case letter runs so units only match whole words.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// FormatAmount renders a summed quantity. Pieces render as a bare count.
func FormatAmount(value float64, unit Unit) string {
	switch unit {
	case UnitToTaste:
		return string(UnitToTaste)
	case UnitPiece:
		return formatNumber(value)
	}
	return formatNumber(value) + " " + unit.label(roundValue(value))
}

func roundValue(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(roundValue(v), 'f', -1, 64)
}

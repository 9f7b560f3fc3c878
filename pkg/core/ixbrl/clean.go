package ixbrl

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CleanNumeric converts the raw text of a tagged element into a number.
// Currency symbols (£, $, €), commas and whitespace are stripped, and a
// value wrapped in parentheses is negated per accounting convention.
// A value that fails to parse after cleaning is absent, not zero.
func CleanNumeric(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == '£' || r == '$' || r == '€' || r == ',':
		case unicode.IsSpace(r):
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// applyScale multiplies a value by ten raised to the element's declared
// scale attribute. Missing or unparseable attributes leave the value as is.
func applyScale(value float64, scaleAttr string) float64 {
	if scaleAttr == "" {
		return value
	}
	scale, err := strconv.Atoi(strings.TrimSpace(scaleAttr))
	if err != nil {
		return value
	}
	return value * math.Pow10(scale)
}

// applySign forces the value negative when the element declares a negative
// sign attribute, regardless of the literal text sign. Some filers rely on
// the attribute instead of a minus character.
func applySign(value float64, signAttr string) float64 {
	if signAttr == "-" {
		if value < 0 {
			return value
		}
		return -value
	}
	return value
}

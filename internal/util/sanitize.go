package util

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs and trims. Non-string or empty input
// yields the fallback; it never fails.
func CleanText(value any, fallback string) string {
	s, ok := value.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	if s == "" {
		return fallback
	}
	return s
}

// FiniteNumber coerces value to a finite float64, accepting the shapes an
// untrusted JSON decode can produce. Anything else yields the fallback.
func FiniteNumber(value any, fallback float64) float64 {
	var parsed float64
	switch v := value.(type) {
	case float64:
		parsed = v
	case float32:
		parsed = float64(v)
	case int:
		parsed = float64(v)
	case int64:
		parsed = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fallback
		}
		parsed = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fallback
		}
		parsed = f
	default:
		return fallback
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback
	}
	return parsed
}

// ClampInt rounds value and restricts it to [min, max] inclusive.
func ClampInt(value float64, min, max int) int {
	rounded := int(math.Round(value))
	if rounded < min {
		return min
	}
	if rounded > max {
		return max
	}
	return rounded
}

// NormalizeCurrency uppercases the code and collapses the CFA franc aliases
// to XOF. Empty input falls back to the supplied default currency.
func NormalizeCurrency(value any, defaultCurrency string) string {
	code := strings.ToUpper(CleanText(value, ""))
	if code == "" {
		return strings.ToUpper(defaultCurrency)
	}
	if code == "FCFA" || code == "CFA" {
		return "XOF"
	}
	return code
}

// SanitizeStringList keeps non-empty trimmed entries, at most six of them,
// and substitutes the fallback list when nothing survives.
func SanitizeStringList(value any, fallback []string) []string {
	items, ok := value.([]any)
	if !ok {
		return fallback
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := CleanText(item, ""); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	if len(out) > 6 {
		out = out[:6]
	}
	return out
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"trustlens/internal/types"
)

var (
	// dollarRe matches a dollar amount, tolerating a space after the symbol
	// and thousands separators.
	dollarRe = regexp.MustCompile(`\$\s?[\d,]+\.?\d*`)

	// currencyRe matches amounts tagged with other symbols sites in scope
	// use (euro, pound, rupee, Rs/PKR prefixes).
	currencyRe = regexp.MustCompile(`(?:€|£|₹|Rs\.?|PKR)\s*[\d,]+\.?\d*`)

	// numberRe is the bare-number fallback for markup that drops the symbol.
	numberRe = regexp.MustCompile(`[\d,]+\.\d{1,2}|[\d,]+`)

	floatRe = regexp.MustCompile(`\d+\.?\d*`)
	intRe   = regexp.MustCompile(`[\d,]+`)
)

// Price normalizes raw price text to canonical "$X.YY" form. Inputs already
// in canonical form pass through unchanged, so the function is idempotent.
// Text with no recognizable amount maps to the default sentinel.
func Price(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.DefaultPrice
	}

	if m := dollarRe.FindString(raw); m != "" {
		cleaned := strings.NewReplacer("$", "", " ", "", ",", "").Replace(m)
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return "$" + strconv.FormatFloat(v, 'f', 2, 64)
		}
		// Unparseable after cleanup. Keep the cleaned token rather than
		// discarding what the page said.
		return "$" + cleaned
	}

	if m := currencyRe.FindString(raw); m != "" {
		if v, ok := parseAmount(m); ok {
			return "$" + strconv.FormatFloat(v, 'f', 2, 64)
		}
	}

	if m := numberRe.FindString(raw); m != "" {
		if v, ok := parseAmount(m); ok {
			return "$" + strconv.FormatFloat(v, 'f', 2, 64)
		}
	}

	return types.DefaultPrice
}

func parseAmount(token string) (float64, bool) {
	digits := intRe.FindString(token)
	if digits == "" {
		return 0, false
	}
	// Re-scan for the full numeric run including decimals.
	numeric := numberRe.FindString(token)
	numeric = strings.ReplaceAll(numeric, ",", "")
	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Rating pulls a star rating out of text like "4.5 out of 5 stars". Values
// are clamped to [0, 5]; unreadable text maps to zero.
func Rating(raw string) float64 {
	m := floatRe.FindString(raw)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// Count pulls a review count out of text like "1,234 ratings".
func Count(raw string) int {
	m := intRe.FindString(raw)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

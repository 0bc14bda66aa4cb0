// Package extract normalizes human-formatted display text into typed values:
// currency amounts and whitespace-cleaned strings.
package extract

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a parsed numeric magnitude with the currency hint seen in the
// source text. Multi-currency text is not resolved to a currency: only the
// magnitude is extracted.
type Money struct {
	Amount   float64
	Currency string // raw symbol or code found next to the number, may be empty
}

// DefaultEpsilon is the tolerance for price comparisons; display totals are
// rounded by the storefront, so exact equality is wrong.
const DefaultEpsilon = 0.10

// Equal compares magnitudes within the given absolute tolerance.
func (m Money) Equal(other Money, eps float64) bool {
	return math.Abs(m.Amount-other.Amount) <= eps
}

// currencySymbols are hints recognized before or after the numeric token.
var currencySymbols = map[rune]string{
	'$': "$", '€': "€", '£': "£", '¥': "¥", '₹': "₹",
}

// ParseMoney extracts a numeric magnitude from display text like "$1,234.56"
// or "Total: 99.00 USD". It strips every character except digits, the decimal
// separator and a leading minus, treating commas as thousands separators.
// Returns nil when the text contains no numeric token: callers must branch on
// nil vs a genuine zero amount, never conflate the two.
//
// Known ambiguity: European decimal-comma formats collapse under the
// thousands-stripping rule ("€12,50" parses as 1250, not 12.50). Deliberate:
// the storefronts this harness targets render a single dot-decimal locale.
func ParseMoney(text string) *Money {
	currency := findCurrency(text)

	var b strings.Builder
	seenDigit := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			seenDigit = true
		case r == '.':
			b.WriteRune(r)
		case r == '-' && !seenDigit && b.Len() == 0:
			b.WriteRune(r)
		case r == ',':
			// thousands separator, dropped
		}
	}

	cleaned := b.String()
	if !seenDigit {
		return nil
	}

	// collapse stray dots: keep only the last as the decimal separator
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	amount, err := strconv.ParseFloat(strings.TrimSuffix(cleaned, "."), 64)
	if err != nil {
		return nil
	}

	return &Money{Amount: amount, Currency: currency}
}

// findCurrency returns the first recognized currency symbol in the text.
func findCurrency(text string) string {
	for _, r := range text {
		if sym, ok := currencySymbols[r]; ok {
			return sym
		}
	}
	return ""
}

// CleanText collapses all whitespace runs to single spaces and trims the
// result, for comparing product names across pages that wrap differently.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

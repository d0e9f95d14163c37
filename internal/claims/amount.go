package claims

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer(",", "", "$", "")

// ParseAmount parses a raw monetary string such as "$1,250.00".
func ParseAmount(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(amountCleaner.Replace(raw))
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseAmounts keeps the entries that parse to a positive value, in input
// order.
func ParseAmounts(raw []string) []float64 {
	out := make([]float64, 0, len(raw))
	for _, r := range raw {
		if v, ok := ParseAmount(r); ok && v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func HasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

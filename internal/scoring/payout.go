package scoring

import (
	"math"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const (
	defaultBaseAmount          = 1000.0
	assumedImprovementFraction = 0.7
	multiplierNoPositive       = 1.3
	multiplierNoMatches        = 1.25
	minimumFactor              = 1.05
	maximumFactor              = 1.5
	maxPayoutConfidence        = 0.95
)

// EstimatePayoutRange derives a payout band from the largest stated amount.
//
// Each match with a positive achieved payout contributes the ratio
// payout/(payout*0.7), which is always 1/0.7. The constant is kept as is.
func EstimatePayoutRange(ec claims.ExtractedCase, matches []claims.SimilarityMatch) claims.PayoutEstimate {
	base := baseAmount(ec.MonetaryAmounts)

	multiplier := multiplierNoMatches
	if len(matches) > 0 {
		multiplier = multiplierNoPositive
		var ratios []float64
		for _, m := range matches {
			if m.PayoutAchieved > 0 {
				ratios = append(ratios, m.PayoutAchieved/(m.PayoutAchieved*assumedImprovementFraction))
			}
		}
		if len(ratios) > 0 {
			multiplier = mean(ratios)
		}
	}

	support := 0.3
	if len(matches) > 0 {
		support = 0.8
	}
	return claims.PayoutEstimate{
		Minimum:    round2(base * minimumFactor),
		Expected:   round2(base * multiplier),
		Maximum:    round2(base * multiplier * maximumFactor),
		Confidence: math.Min(maxPayoutConfidence, (ec.ExtractionConfidence+support)/2),
	}
}

func baseAmount(raw []string) float64 {
	found := false
	best := 0.0
	for _, r := range raw {
		if !claims.HasDigit(r) {
			continue
		}
		v, ok := claims.ParseAmount(r)
		if !ok {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	if !found {
		return defaultBaseAmount
	}
	return best
}

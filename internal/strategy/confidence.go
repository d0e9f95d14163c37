package strategy

import (
	"math"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

// ComputeConfidence weighs analysis strength, extraction quality, leverage,
// precedent support and the strength/risk balance. The result is capped at 1.
func ComputeConfidence(ec claims.ExtractedCase, a claims.CaseAnalysis, leverage []string) float64 {
	c := a.SuccessProbability * 0.4
	c += ec.ExtractionConfidence * 0.2
	c += math.Min(float64(len(leverage))/5, 1) * 0.2
	c += math.Min(float64(len(a.SimilarCases))/3, 1) * 0.1
	ratio := float64(len(a.StrengthFactors)) / float64(max(len(a.RiskFactors), 1))
	c += math.Min(ratio/2, 1) * 0.1
	c += kindBonus(ec)
	return math.Min(c, 1)
}

func kindBonus(ec claims.ExtractedCase) float64 {
	switch {
	case ec.DocumentKind == claims.KindDenialLetter && len(ec.DenialReasons) > 0:
		return 0.1
	case ec.DocumentKind == claims.KindSettlementOffer && len(ec.SettlementAmounts) > 0:
		return 0.1
	}
	return 0.05
}

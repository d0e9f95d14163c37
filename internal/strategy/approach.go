package strategy

import "github.com/joelkehle/claim-advocate/internal/claims"

// SelectApproach scores each approach additively and returns the highest.
// Ties go to the approach declared first in claims.Approaches. No rule
// awards legal_threat; it is only reachable through an explicit preference.
func SelectApproach(ec claims.ExtractedCase, a claims.CaseAnalysis) claims.Approach {
	scores := make(map[claims.Approach]int, len(claims.Approaches))

	switch p := a.SuccessProbability; {
	case p > 0.8:
		scores[claims.ApproachAggressive] += 2
		scores[claims.ApproachAssertive]++
	case p > 0.6:
		scores[claims.ApproachAssertive] += 2
		scores[claims.ApproachDataDriven]++
	default:
		scores[claims.ApproachCollaborative] += 2
		scores[claims.ApproachDataDriven]++
	}

	switch ec.DocumentKind {
	case claims.KindDenialLetter:
		scores[claims.ApproachAssertive] += 2
		if len(ec.DenialReasons) > 0 {
			scores[claims.ApproachDataDriven]++
		}
	case claims.KindSettlementOffer:
		scores[claims.ApproachDataDriven] += 2
		scores[claims.ApproachCollaborative]++
	}

	if ec.ExtractionConfidence > 0.8 {
		scores[claims.ApproachDataDriven]++
		scores[claims.ApproachAssertive]++
	}

	switch n := len(a.RiskFactors); {
	case n > 3:
		scores[claims.ApproachCollaborative]++
	case n < 2:
		scores[claims.ApproachAggressive]++
	}

	best := claims.Approaches[0]
	for _, ap := range claims.Approaches[1:] {
		if scores[ap] > scores[best] {
			best = ap
		}
	}
	return best
}

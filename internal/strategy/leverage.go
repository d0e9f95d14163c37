package strategy

import (
	"fmt"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const strongMatchScore = 0.7

type leverageRule func(claims.ExtractedCase, claims.CaseAnalysis) (string, bool)

var leverageRules = []leverageRule{
	func(_ claims.ExtractedCase, a claims.CaseAnalysis) (string, bool) {
		n := 0
		for _, m := range a.SimilarCases {
			if m.SimilarityScore > strongMatchScore {
				n++
			}
		}
		return fmt.Sprintf("Similar successful cases with %d precedents", n), n > 0
	},
	func(ec claims.ExtractedCase, _ claims.CaseAnalysis) (string, bool) {
		return "Questionable denial reasoning requires clarification",
			ec.DocumentKind == claims.KindDenialLetter && len(ec.DenialReasons) > 0
	},
	func(ec claims.ExtractedCase, _ claims.CaseAnalysis) (string, bool) {
		return "Complete documentation supports claim validity", ec.ExtractionConfidence > 0.8
	},
	func(ec claims.ExtractedCase, _ claims.CaseAnalysis) (string, bool) {
		return "Multiple coverage types may provide alternative claim paths", len(ec.CoverageTypes) > 0
	},
	func(ec claims.ExtractedCase, _ claims.CaseAnalysis) (string, bool) {
		return "Documented timeline shows compliance with policy requirements", len(ec.KeyDates) > 0
	},
	func(ec claims.ExtractedCase, _ claims.CaseAnalysis) (string, bool) {
		return "Settlement offer below market value standards", ec.DocumentKind == claims.KindSettlementOffer
	},
}

// LeveragePoints lists the negotiating facts found in the case, in checklist order.
func LeveragePoints(ec claims.ExtractedCase, a claims.CaseAnalysis) []string {
	out := []string{}
	for _, rule := range leverageRules {
		if msg, ok := rule(ec, a); ok {
			out = append(out, msg)
		}
	}
	return out
}

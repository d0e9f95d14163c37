package scoring

import "github.com/joelkehle/claim-advocate/internal/claims"

type checkItem struct {
	holds   func(claims.ExtractedCase) bool
	message string
}

var riskChecklist = []checkItem{
	{func(ec claims.ExtractedCase) bool { return ec.ExtractionConfidence < 0.6 },
		"Incomplete document information may weaken position"},
	{func(ec claims.ExtractedCase) bool { return ec.PolicyNumber() == "" },
		"Missing policy number complicates verification"},
	{func(ec claims.ExtractedCase) bool { return len(ec.MonetaryAmounts) == 0 },
		"No clear monetary amounts identified"},
	{func(ec claims.ExtractedCase) bool {
		return ec.DocumentKind == claims.KindDenialLetter && len(ec.DenialReasons) == 0
	}, "Unclear denial reasons make counter-arguments difficult"},
	{func(ec claims.ExtractedCase) bool { return len(ec.KeyDates) == 0 },
		"Missing timeline information may indicate missed deadlines"},
}

var strengthChecklist = []checkItem{
	{func(ec claims.ExtractedCase) bool { return ec.ExtractionConfidence > 0.8 },
		"Clear, well-documented case with complete information"},
	{func(ec claims.ExtractedCase) bool { return ec.PolicyNumber() != "" && ec.Insurer() != "" },
		"Complete policy identification enables thorough review"},
	{func(ec claims.ExtractedCase) bool { return len(ec.MonetaryAmounts) > 1 },
		"Multiple monetary references provide negotiation leverage"},
	{func(ec claims.ExtractedCase) bool { return len(ec.Parties) > 0 && len(ec.KeyDates) > 0 },
		"Well-documented timeline and parties support credibility"},
	{func(ec claims.ExtractedCase) bool { return len(ec.CoverageTypes) > 0 },
		"Identified coverage types enable targeted policy analysis"},
}

func evaluate(list []checkItem, ec claims.ExtractedCase) []string {
	out := []string{}
	for _, item := range list {
		if item.holds(ec) {
			out = append(out, item.message)
		}
	}
	return out
}

// RiskFactors returns every risk message whose predicate holds, in checklist order.
func RiskFactors(ec claims.ExtractedCase) []string { return evaluate(riskChecklist, ec) }

// StrengthFactors returns every strength message whose predicate holds, in checklist order.
func StrengthFactors(ec claims.ExtractedCase) []string { return evaluate(strengthChecklist, ec) }

package strategy

import "github.com/joelkehle/claim-advocate/internal/claims"

var kindActions = map[claims.DocumentKind][]string{
	claims.KindDenialLetter: {
		"Request detailed explanation of denial reasoning",
		"Gather additional supporting documentation",
		"Review policy language for coverage confirmation",
	},
	claims.KindSettlementOffer: {
		"Obtain independent damage assessment",
		"Research comparable settlement amounts",
		"Document all loss-related expenses",
	},
}

var approachActions = map[claims.Approach][]string{
	claims.ApproachAggressive: {
		"Set firm deadlines for response",
		"Escalate to senior claims management",
		"Reference potential regulatory complaints",
	},
	claims.ApproachDataDriven: {
		"Compile comprehensive evidence package",
		"Obtain expert opinions or appraisals",
		"Prepare statistical comparisons",
	},
	claims.ApproachCollaborative: {
		"Schedule discussion meeting",
		"Propose joint fact-finding process",
		"Explore creative resolution options",
	},
}

const (
	confidentClosingAction = "Proceed with confident negotiation stance"
	cautiousClosingAction  = "Build stronger case foundation before major negotiations"
)

// RecommendedActions concatenates the document-kind actions, the approach
// actions and one closing action chosen by success probability.
func RecommendedActions(ec claims.ExtractedCase, a claims.CaseAnalysis, approach claims.Approach) []string {
	out := make([]string, 0, 7)
	out = append(out, kindActions[ec.DocumentKind]...)
	out = append(out, approachActions[approach]...)
	if a.SuccessProbability > 0.7 {
		return append(out, confidentClosingAction)
	}
	return append(out, cautiousClosingAction)
}

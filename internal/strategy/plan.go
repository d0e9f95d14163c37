package strategy

import "github.com/joelkehle/claim-advocate/internal/claims"

var roundTemplates = []claims.NegotiationRound{
	{
		RoundNumber: 1,
		Objective:   "Present initial case and establish position",
		KeyActions: []string{
			"Submit comprehensive initial response",
			"Present key evidence and documentation",
			"State desired outcome clearly",
		},
		ExpectedOutcome: "Acknowledgment of case merit and engagement",
		TimelineDays:    7,
	},
	{
		RoundNumber: 2,
		Objective:   "Strengthen case with additional evidence",
		KeyActions: []string{
			"Provide supplemental documentation",
			"Address any insurer concerns",
			"Reference similar cases and precedents",
		},
		ExpectedOutcome: "Movement toward settlement discussion",
		TimelineDays:    14,
	},
	{
		RoundNumber: 3,
		Objective:   "Engage in active settlement negotiation",
		KeyActions: []string{
			"Present counter-offers",
			"Negotiate specific terms",
			"Explore compromise solutions",
		},
		ExpectedOutcome: "Concrete settlement proposal",
		TimelineDays:    10,
	},
	{
		RoundNumber: 4,
		Objective:   "Reach final resolution or escalate",
		KeyActions: []string{
			"Finalize settlement terms",
			"Document agreement details",
			"Prepare escalation if necessary",
		},
		ExpectedOutcome: "Final settlement or escalation decision",
		TimelineDays:    7,
	},
}

func roundCount(successProbability float64) int {
	switch {
	case successProbability > 0.8:
		return 2
	case successProbability > 0.6:
		return 3
	default:
		return 4
	}
}

// BuildNegotiationPlan takes the first N round templates, where stronger
// cases need fewer rounds.
func BuildNegotiationPlan(a claims.CaseAnalysis) claims.NegotiationPlan {
	n := roundCount(a.SuccessProbability)
	rounds := make([]claims.NegotiationRound, 0, n)
	total := 0
	for _, tmpl := range roundTemplates[:n] {
		r := tmpl
		r.KeyActions = append([]string(nil), tmpl.KeyActions...)
		rounds = append(rounds, r)
		total += r.TimelineDays
	}
	return claims.NegotiationPlan{
		TotalRounds:           n,
		EstimatedDurationDays: total,
		Rounds:                rounds,
	}
}

package knowledge

import "github.com/joelkehle/claim-advocate/internal/claims"

func amount(v float64) *float64 { return &v }

// Default returns the built-in knowledge base. Each call returns a fresh
// value so callers can never alias each other's tables.
func Default() *Base {
	return &Base{
		Version:           BuiltinVersion,
		References:        defaultReferences(),
		Benchmarks:        defaultBenchmarks(),
		PolicyKeywords:    defaultPolicyKeywords(),
		Templates:         defaultTemplates(),
		FallbackTemplates: defaultFallbackTemplates(),
		Precedents:        defaultPrecedents(),
		Clauses:           defaultClauses(),
	}
}

func defaultReferences() []claims.ReferenceCase {
	return []claims.ReferenceCase{
		{
			ID:                  "HIST_001",
			DocumentKind:        claims.KindDenialLetter,
			PolicyType:          claims.PolicyAuto,
			OriginalClaimAmount: amount(3500),
			FinalPayoutAmount:   amount(2800),
			DenialReason:        "policy exclusion",
			StrategyLabel:       "Policy Interpretation Challenge",
			KeyFactors:          []string{"policy ambiguity", "precedent case", "documentation quality"},
		},
		{
			ID:                 "HIST_002",
			DocumentKind:       claims.KindSettlementOffer,
			PolicyType:         claims.PolicyHome,
			InitialOfferAmount: amount(4200),
			FinalSettlement:    amount(6800),
			StrategyLabel:      "Market Value Documentation",
			KeyFactors:         []string{"comparable sales", "expert appraisal", "damage photos"},
		},
		{
			ID:                  "HIST_003",
			DocumentKind:        claims.KindDenialLetter,
			PolicyType:          claims.PolicyAuto,
			OriginalClaimAmount: amount(1800),
			FinalPayoutAmount:   amount(1200),
			DenialReason:        "coverage limit",
			StrategyLabel:       "Coverage Scope Expansion",
			KeyFactors:          []string{"policy interpretation", "industry standards"},
		},
	}
}

func defaultBenchmarks() map[claims.PolicyType]Benchmark {
	return map[claims.PolicyType]Benchmark{
		claims.PolicyAuto: {
			AverageSettlementIncrease: 0.35,
			SuccessRateByKind: map[claims.DocumentKind]float64{
				claims.KindDenialLetter:    0.68,
				claims.KindSettlementOffer: 0.72,
				claims.KindPolicyDocument:  0.45,
			},
		},
		claims.PolicyHome: {
			AverageSettlementIncrease: 0.42,
			SuccessRateByKind: map[claims.DocumentKind]float64{
				claims.KindDenialLetter:    0.71,
				claims.KindSettlementOffer: 0.65,
				claims.KindPolicyDocument:  0.38,
			},
		},
		claims.PolicyHealth: {
			AverageSettlementIncrease: 0.28,
			SuccessRateByKind: map[claims.DocumentKind]float64{
				claims.KindDenialLetter:    0.58,
				claims.KindSettlementOffer: 0.63,
				claims.KindPolicyDocument:  0.41,
			},
		},
	}
}

func defaultPolicyKeywords() map[claims.PolicyType][]string {
	return map[claims.PolicyType][]string{
		claims.PolicyAuto:   {"collision", "comprehensive", "liability", "uninsured motorist"},
		claims.PolicyHome:   {"property damage", "dwelling", "personal property", "liability"},
		claims.PolicyHealth: {"medical", "prescription", "hospital", "physician"},
	}
}

func defaultTemplates() map[claims.Approach]map[claims.DocumentKind]Template {
	return map[claims.Approach]map[claims.DocumentKind]Template{
		claims.ApproachAggressive: {
			claims.KindDenialLetter: {
				Name:        "Aggressive Policy Challenge",
				Description: "Direct confrontation of denial with strong legal backing",
				Tactics:     []string{"immediate_escalation", "legal_threat", "deadline_pressure"},
			},
			claims.KindSettlementOffer: {
				Name:        "Aggressive Counter-Offer",
				Description: "Strong rejection with significantly higher counter-proposal",
				Tactics:     []string{"market_comparisons", "expert_valuations", "precedent_citing"},
			},
			claims.KindPolicyDocument: {
				Name:        "Coverage Expansion Demand",
				Description: "Aggressive interpretation of policy language",
				Tactics:     []string{"ambiguity_exploitation", "broad_interpretation", "industry_standards"},
			},
		},
		claims.ApproachCollaborative: {
			claims.KindDenialLetter: {
				Name:        "Collaborative Resolution",
				Description: "Partnership approach to find mutually acceptable solution",
				Tactics:     []string{"information_sharing", "joint_problem_solving", "compromise_seeking"},
			},
			claims.KindSettlementOffer: {
				Name:        "Collaborative Negotiation",
				Description: "Working together to reach fair settlement",
				Tactics:     []string{"transparent_communication", "incremental_adjustments", "mutual_benefits"},
			},
			claims.KindPolicyDocument: {
				Name:        "Cooperative Clarification",
				Description: "Joint review of policy terms for mutual understanding",
				Tactics:     []string{"clarification_requests", "expert_consultation", "precedent_review"},
			},
		},
		claims.ApproachDataDriven: {
			claims.KindDenialLetter: {
				Name:        "Evidence-Based Challenge",
				Description: "Using data and documentation to overturn denial",
				Tactics:     []string{"statistical_analysis", "expert_reports", "documentation_review"},
			},
			claims.KindSettlementOffer: {
				Name:        "Market Value Documentation",
				Description: "Comprehensive data analysis to justify higher settlement",
				Tactics:     []string{"market_research", "comparable_analysis", "expert_appraisals"},
			},
			claims.KindPolicyDocument: {
				Name:        "Analytical Policy Review",
				Description: "Systematic analysis of policy terms and applications",
				Tactics:     []string{"clause_analysis", "precedent_research", "industry_comparisons"},
			},
		},
		claims.ApproachLegalThreat: {
			claims.KindDenialLetter: {
				Name:        "Legal Action Threat",
				Description: "Escalation threat with legal consequences",
				Tactics:     []string{"regulatory_complaints", "lawsuit_preparation", "bad_faith_claims"},
			},
			claims.KindSettlementOffer: {
				Name:        "Legal Leverage Strategy",
				Description: "Using legal pressure to increase settlement",
				Tactics:     []string{"legal_precedents", "regulatory_citations", "attorney_involvement"},
			},
			claims.KindPolicyDocument: {
				Name:        "Legal Interpretation Challenge",
				Description: "Legal challenge to policy interpretation",
				Tactics:     []string{"case_law_citations", "regulatory_standards", "legal_opinions"},
			},
		},
		claims.ApproachAssertive: {
			claims.KindDenialLetter: {
				Name:        "Policy Interpretation Challenge",
				Description: "Firm but professional challenge of denial reasoning",
				Tactics:     []string{"policy_analysis", "precedent_citing", "documentation_emphasis"},
			},
			claims.KindSettlementOffer: {
				Name:        "Value Justification Strategy",
				Description: "Clear demonstration of higher settlement value",
				Tactics:     []string{"damage_documentation", "cost_analysis", "market_comparisons"},
			},
			claims.KindPolicyDocument: {
				Name:        "Coverage Scope Expansion",
				Description: "Assertive interpretation of coverage scope",
				Tactics:     []string{"clause_interpretation", "industry_practices", "reasonable_expectations"},
			},
		},
	}
}

// Claim forms and general correspondence carry no approach-specific template.
func defaultFallbackTemplates() map[claims.Approach]Template {
	return map[claims.Approach]Template{
		claims.ApproachAggressive: {
			Name:        "Aggressive Claim Advocacy",
			Description: "Firm demands backed by deadlines and escalation",
			Tactics:     []string{"deadline_pressure", "immediate_escalation", "precedent_citing"},
		},
		claims.ApproachCollaborative: {
			Name:        "Collaborative Claim Review",
			Description: "Joint review of the claim record with the adjuster",
			Tactics:     []string{"information_sharing", "clarification_requests", "compromise_seeking"},
		},
		claims.ApproachDataDriven: {
			Name:        "Documented Claim Review",
			Description: "Evidence package supporting every element of the claim",
			Tactics:     []string{"documentation_review", "comparable_analysis", "expert_reports"},
		},
		claims.ApproachLegalThreat: {
			Name:        "Legal Claim Escalation",
			Description: "Notice of legal and regulatory remedies if the claim stalls",
			Tactics:     []string{"regulatory_complaints", "bad_faith_claims", "attorney_involvement"},
		},
		claims.ApproachAssertive: {
			Name:        "Assertive Claim Review",
			Description: "Professional insistence on full policy benefits",
			Tactics:     []string{"policy_analysis", "documentation_emphasis", "reasonable_expectations"},
		},
	}
}

func defaultPrecedents() []Precedent {
	return []Precedent{
		{
			CaseName:    "State Farm v. Campbell",
			Principle:   "Insurer bad faith liability",
			Application: "Denial without reasonable investigation",
		},
		{
			CaseName:    "Gruenberg v. Aetna Insurance",
			Principle:   "Duty to settle within policy limits",
			Application: "Settlement offer negotiations",
		},
		{
			CaseName:    "Gray v. Zurich Insurance",
			Principle:   "Reasonable expectations doctrine",
			Application: "Policy interpretation disputes",
		},
	}
}

func defaultClauses() map[string][]string {
	return map[string][]string{
		ClauseCoverage: {
			"All risks coverage includes unlisted perils",
			"Occurrence-based triggers cover manifestation events",
			"Named perils require specific policy listing",
		},
		ClauseExclusion: {
			"Exclusions must be clear and unambiguous",
			"Ambiguous exclusions interpreted against insurer",
			"Exclusions cannot contradict coverage grants",
		},
		ClauseLimits: {
			"Per-occurrence limits apply to single events",
			"Aggregate limits cap total policy payments",
			"Sub-limits may apply to specific coverage types",
		},
	}
}

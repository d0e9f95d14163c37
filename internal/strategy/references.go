package strategy

import (
	"strings"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
)

var precedentKeywords = map[claims.DocumentKind]string{
	claims.KindDenialLetter:    "denial",
	claims.KindSettlementOffer: "settlement",
}

// MatchPrecedents returns "case: principle" for every precedent whose
// application mentions the case's document kind.
func MatchPrecedents(kb *knowledge.Base, ec claims.ExtractedCase) []string {
	out := []string{}
	kw, ok := precedentKeywords[ec.DocumentKind]
	if !ok {
		return out
	}
	for _, p := range kb.Precedents {
		if strings.Contains(strings.ToLower(p.Application), kw) {
			out = append(out, p.CaseName+": "+p.Principle)
		}
	}
	return out
}

type clauseRule struct {
	category string
	take     int
	applies  func(claims.ExtractedCase) bool
}

var clauseRules = []clauseRule{
	{knowledge.ClauseCoverage, 2, func(ec claims.ExtractedCase) bool { return len(ec.CoverageTypes) > 0 }},
	{knowledge.ClauseExclusion, 2, func(ec claims.ExtractedCase) bool { return ec.DocumentKind == claims.KindDenialLetter }},
	{knowledge.ClauseLimits, 1, func(ec claims.ExtractedCase) bool { return len(ec.MonetaryAmounts) > 0 }},
}

// PolicyClauses picks clause interpretations by signal: coverage types,
// denial letters and stated amounts each pull from their own category.
func PolicyClauses(kb *knowledge.Base, ec claims.ExtractedCase) []string {
	out := []string{}
	for _, r := range clauseRules {
		if !r.applies(ec) {
			continue
		}
		list := kb.Clauses[r.category]
		out = append(out, list[:min(r.take, len(list))]...)
	}
	return out
}

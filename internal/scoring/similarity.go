package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
)

const (
	weightKindMatch    = 0.30
	weightPolicyMatch  = 0.25
	weightAmountMatch  = 0.20
	weightReasonMatch  = 0.25
	noSignalScore      = 0.1
	similarityCutoff   = 0.3
	maxSimilarMatches  = 5
	maxReportedMatches = 3
)

// InferPolicyType picks the policy type whose keywords overlap the case's
// coverage types most often. Ties go to the earlier type in
// claims.PolicyTypes, so a case with no coverage resolves to auto.
func InferPolicyType(kb *knowledge.Base, ec claims.ExtractedCase) claims.PolicyType {
	coverage := make([]string, len(ec.CoverageTypes))
	for i, c := range ec.CoverageTypes {
		coverage[i] = strings.ToLower(c)
	}
	score := func(pt claims.PolicyType) int {
		n := 0
		for _, kw := range kb.PolicyKeywords[pt] {
			for _, c := range coverage {
				if strings.Contains(c, kw) {
					n++
					break
				}
			}
		}
		return n
	}
	best, bestScore := claims.PolicyTypes[0], -1
	for _, pt := range claims.PolicyTypes {
		if n := score(pt); n > bestScore {
			best, bestScore = pt, n
		}
	}
	return best
}

// FindSimilarCases ranks the reference cases against ec and returns at most
// five matches scoring above 0.3, best first. Ties keep knowledge-base order.
func FindSimilarCases(kb *knowledge.Base, ec claims.ExtractedCase) []claims.SimilarityMatch {
	policy := InferPolicyType(kb, ec)
	amounts := claims.ParseAmounts(ec.MonetaryAmounts)

	matches := make([]claims.SimilarityMatch, 0, len(kb.References))
	for _, ref := range kb.References {
		s := similarity(ec, policy, amounts, ref)
		if s <= similarityCutoff {
			continue
		}
		matches = append(matches, claims.SimilarityMatch{
			ReferenceID:     ref.ID,
			SimilarityScore: round2(s),
			Outcome:         outcomeText(ref),
			PayoutAchieved:  valueOr(ref.FinalPayoutAmount, 0),
			StrategyLabel:   ref.StrategyLabel,
			KeyFactors:      append([]string(nil), ref.KeyFactors...),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	if len(matches) > maxSimilarMatches {
		matches = matches[:maxSimilarMatches]
	}
	return matches
}

func similarity(ec claims.ExtractedCase, policy claims.PolicyType, amounts []float64, ref claims.ReferenceCase) float64 {
	score := 0.0
	fired := false
	if ec.DocumentKind == ref.DocumentKind {
		score += weightKindMatch
		fired = true
	}
	if policy == ref.PolicyType {
		score += weightPolicyMatch
		fired = true
	}
	if len(amounts) > 0 && ref.OriginalClaimAmount != nil && *ref.OriginalClaimAmount > 0 {
		if ratio, ok := amountRatio(mean(amounts), *ref.OriginalClaimAmount); ok {
			score += ratio * weightAmountMatch
			fired = true
		}
	}
	if reasonMatches(ec, ref) {
		score += weightReasonMatch
		fired = true
	}
	if !fired {
		return noSignalScore
	}
	return score
}

func amountRatio(a, b float64) (float64, bool) {
	hi := math.Max(a, b)
	if hi <= 0 {
		return 0, false
	}
	return math.Min(a, b) / hi, true
}

func reasonMatches(ec claims.ExtractedCase, ref claims.ReferenceCase) bool {
	if ec.DocumentKind != claims.KindDenialLetter || ref.DocumentKind != claims.KindDenialLetter {
		return false
	}
	if ref.DenialReason == "" || len(ec.DenialReasons) == 0 {
		return false
	}
	refReason := strings.ToLower(ref.DenialReason)
	for _, r := range ec.DenialReasons {
		if strings.Contains(refReason, strings.ToLower(r)) {
			return true
		}
	}
	return false
}

func outcomeText(ref claims.ReferenceCase) string {
	delta := valueOr(ref.FinalPayoutAmount, 0) - valueOr(ref.OriginalClaimAmount, 0)
	return "Increased payout by $" + strconv.FormatFloat(delta, 'f', -1, 64)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

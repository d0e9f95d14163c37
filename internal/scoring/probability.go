package scoring

import (
	"math"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
)

const (
	defaultBenchmarkRate     = 0.5
	defaultAverageIncrease   = 0.3
	minSuccessProbability    = 0.1
	maxSuccessProbability    = 0.95
	matchDamping             = 0.7
	confidenceNudgeWeight    = 0.2
	documentationBonusWeight = 0.15
)

// DocumentationQuality sums fixed bonuses for each populated field group.
func DocumentationQuality(ec claims.ExtractedCase) float64 {
	q := 0.0
	if ec.PolicyNumber() != "" {
		q += 0.20
	}
	if len(ec.MonetaryAmounts) > 0 {
		q += 0.20
	}
	if len(ec.KeyDates) > 0 {
		q += 0.15
	}
	if len(ec.Parties) > 0 {
		q += 0.15
	}
	if len(ec.CoverageTypes) > 0 {
		q += 0.15
	}
	if kindEvidencePresent(ec) {
		q += 0.15
	}
	return q
}

// kindEvidencePresent reports whether the document carries the evidence its
// kind is expected to carry: reasons for a denial, amounts for a settlement.
func kindEvidencePresent(ec claims.ExtractedCase) bool {
	switch ec.DocumentKind {
	case claims.KindDenialLetter:
		return len(ec.DenialReasons) > 0
	case claims.KindSettlementOffer:
		return len(ec.SettlementAmounts) > 0
	}
	return false
}

// BenchmarkRate looks up the historical success rate for a policy type and
// document kind, defaulting to 0.5.
func BenchmarkRate(kb *knowledge.Base, pt claims.PolicyType, kind claims.DocumentKind) float64 {
	bm, ok := kb.Benchmark(pt)
	if !ok {
		return defaultBenchmarkRate
	}
	rate, ok := bm.SuccessRateByKind[kind]
	if !ok {
		return defaultBenchmarkRate
	}
	return rate
}

// EstimateSuccessProbability blends similarity, benchmark, extraction
// confidence and documentation quality, clamped to [0.1, 0.95].
func EstimateSuccessProbability(kb *knowledge.Base, ec claims.ExtractedCase, matches []claims.SimilarityMatch) float64 {
	p := 0.5
	if len(matches) > 0 {
		sum := 0.0
		for _, m := range matches {
			sum += m.SimilarityScore * matchDamping
		}
		p = (p + sum/float64(len(matches))) / 2
	}
	p = (p + BenchmarkRate(kb, InferPolicyType(kb, ec), ec.DocumentKind)) / 2
	p += (ec.ExtractionConfidence - 0.5) * confidenceNudgeWeight
	p += DocumentationQuality(ec) * documentationBonusWeight
	return math.Max(minSuccessProbability, math.Min(maxSuccessProbability, p))
}

package scoring

import (
	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
)

const marketConditions = "Favorable for consumer advocacy"

var timelineBaseDays = map[claims.DocumentKind]int{
	claims.KindDenialLetter:    45,
	claims.KindSettlementOffer: 21,
}

const defaultTimelineBaseDays = 30

func EstimateTimeline(ec claims.ExtractedCase, successProbability float64) claims.TimelineEstimate {
	base, ok := timelineBaseDays[ec.DocumentKind]
	if !ok {
		base = defaultTimelineBaseDays
	}
	multiplier := 1.0
	switch {
	case successProbability > 0.7:
		multiplier = 0.8
	case successProbability < 0.5:
		multiplier = 1.3
	}
	days := int(float64(base) * multiplier)
	return claims.TimelineEstimate{
		InitialResponseDays: min(7, days/4),
		NegotiationRounds:   max(1, days/15),
		TotalEstimatedDays:  days,
		MaximumTimelineDays: days * 2,
	}
}

func CompareMarket(kb *knowledge.Base, ec claims.ExtractedCase) claims.MarketComparison {
	pt := InferPolicyType(kb, ec)
	increase := defaultAverageIncrease
	if bm, ok := kb.Benchmark(pt); ok {
		increase = bm.AverageSettlementIncrease
	}
	return claims.MarketComparison{
		PolicyType:              pt,
		IndustryAverageIncrease: increase,
		SuccessRateBenchmark:    BenchmarkRate(kb, pt, ec.DocumentKind),
		ComparableCaseCount:     len(kb.References),
		MarketConditions:        marketConditions,
	}
}

package scoring

import (
	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
)

// Engine scores extracted cases against a knowledge base. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	source knowledge.Source
}

func NewEngine(source knowledge.Source) *Engine { return &Engine{source: source} }

// Analyze runs similarity, probability, payout, checklists, market
// comparison and timeline in that order against a single knowledge snapshot.
func (e *Engine) Analyze(ec claims.ExtractedCase) (claims.CaseAnalysis, error) {
	kb, err := e.snapshot()
	if err != nil {
		return claims.CaseAnalysis{}, err
	}

	matches := FindSimilarCases(kb, ec)
	probability := EstimateSuccessProbability(kb, ec, matches)
	payout := EstimatePayoutRange(ec, matches)

	top := matches
	if len(top) > maxReportedMatches {
		top = top[:maxReportedMatches]
	}
	return claims.CaseAnalysis{
		SuccessProbability: round2(probability),
		PayoutEstimate:     payout,
		RiskFactors:        RiskFactors(ec),
		StrengthFactors:    StrengthFactors(ec),
		SimilarCases:       top,
		MarketComparison:   CompareMarket(kb, ec),
		TimelineEstimate:   EstimateTimeline(ec, probability),
	}, nil
}

// FindSimilar exposes the full ranked list (up to five) for callers that
// need more than the three kept in an analysis.
func (e *Engine) FindSimilar(ec claims.ExtractedCase) ([]claims.SimilarityMatch, error) {
	kb, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return FindSimilarCases(kb, ec), nil
}

// KnowledgeVersion identifies the base the next call will use.
func (e *Engine) KnowledgeVersion() string {
	if kb := e.source.Current(); kb != nil {
		return kb.Version
	}
	return ""
}

func (e *Engine) snapshot() (*knowledge.Base, error) {
	kb := e.source.Current()
	if kb == nil {
		return nil, &ScoringError{Reason: "knowledge base not loaded"}
	}
	if err := kb.Validate(); err != nil {
		return nil, &ScoringError{Reason: "knowledge base invalid", Err: err}
	}
	return kb, nil
}

package strategy

import (
	"fmt"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
)

// Planner turns a scored case into a negotiation strategy.
type Planner struct {
	source knowledge.Source
}

func NewPlanner(source knowledge.Source) *Planner { return &Planner{source: source} }

// Options adjusts a single Generate call.
type Options struct {
	// Preferred replaces the scored approach when set.
	Preferred *claims.Approach
}

func (p *Planner) Generate(ec claims.ExtractedCase, a claims.CaseAnalysis) (claims.Strategy, error) {
	return p.GenerateWith(ec, a, Options{})
}

func (p *Planner) GenerateWith(ec claims.ExtractedCase, a claims.CaseAnalysis, opts Options) (claims.Strategy, error) {
	kb := p.source.Current()
	if kb == nil {
		return claims.Strategy{}, &PlanningError{Reason: "knowledge base not loaded"}
	}

	approach := SelectApproach(ec, a)
	if opts.Preferred != nil {
		if !opts.Preferred.Valid() {
			return claims.Strategy{}, &PlanningError{Reason: fmt.Sprintf("unknown approach %q", *opts.Preferred)}
		}
		approach = *opts.Preferred
	}

	tmpl, ok := kb.Template(approach, ec.DocumentKind)
	if !ok || tmpl.Name == "" {
		return claims.Strategy{}, &PlanningError{
			Reason: fmt.Sprintf("no template for %s/%s", approach, ec.DocumentKind),
			Err:    kb.Validate(),
		}
	}

	leverage := LeveragePoints(ec, a)
	return claims.Strategy{
		Name:               tmpl.Name,
		Description:        tmpl.Description,
		Tactics:            append([]string{}, tmpl.Tactics...),
		Approach:           approach,
		Confidence:         ComputeConfidence(ec, a, leverage),
		LeveragePoints:     leverage,
		RecommendedActions: RecommendedActions(ec, a, approach),
		LegalPrecedents:    MatchPrecedents(kb, ec),
		PolicyClauses:      PolicyClauses(kb, ec),
		NegotiationPlan:    BuildNegotiationPlan(a),
	}, nil
}

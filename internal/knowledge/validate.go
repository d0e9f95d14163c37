package knowledge

import (
	"strings"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

// Validate reports the first structural problem found in b.
func (b *Base) Validate() error {
	if b == nil {
		return invalid("base", "knowledge base is nil")
	}
	if err := b.validateReferences(); err != nil {
		return err
	}
	if err := b.validateBenchmarks(); err != nil {
		return err
	}
	for _, pt := range claims.PolicyTypes {
		if len(b.PolicyKeywords[pt]) == 0 {
			return invalid("policy_keywords", "no keywords for policy type %q", pt)
		}
	}
	if err := b.validateTemplates(); err != nil {
		return err
	}
	for i, p := range b.Precedents {
		if strings.TrimSpace(p.CaseName) == "" || strings.TrimSpace(p.Application) == "" {
			return invalid("precedents", "entry %d needs case_name and application", i)
		}
	}
	for _, cat := range ClauseCategories {
		if _, ok := b.Clauses[cat]; !ok {
			return invalid("clauses", "missing category %q", cat)
		}
	}
	return nil
}

func (b *Base) validateReferences() error {
	seen := map[string]struct{}{}
	for i, r := range b.References {
		if strings.TrimSpace(r.ID) == "" {
			return invalid("references", "entry %d has no id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return invalid("references", "duplicate id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		if !r.DocumentKind.Valid() {
			return invalid("references", "%s: unknown document_kind %q", r.ID, r.DocumentKind)
		}
		if !r.PolicyType.Valid() {
			return invalid("references", "%s: unknown policy_type %q", r.ID, r.PolicyType)
		}
		if strings.TrimSpace(r.StrategyLabel) == "" {
			return invalid("references", "%s: strategy_label is required", r.ID)
		}
		for _, v := range []*float64{r.OriginalClaimAmount, r.FinalPayoutAmount, r.InitialOfferAmount, r.FinalSettlement} {
			if v != nil && *v < 0 {
				return invalid("references", "%s: negative amount", r.ID)
			}
		}
	}
	return nil
}

func (b *Base) validateBenchmarks() error {
	for pt, bm := range b.Benchmarks {
		if !pt.Valid() {
			return invalid("benchmarks", "unknown policy type %q", pt)
		}
		if bm.AverageSettlementIncrease < 0 {
			return invalid("benchmarks", "%s: negative average_settlement_increase", pt)
		}
		for kind, rate := range bm.SuccessRateByKind {
			if rate < 0 || rate > 1 {
				return invalid("benchmarks", "%s/%s: success rate %v outside [0,1]", pt, kind, rate)
			}
		}
	}
	return nil
}

func (b *Base) validateTemplates() error {
	for _, a := range claims.Approaches {
		for _, kind := range TemplateKinds {
			t, ok := b.Templates[a][kind]
			if !ok {
				return invalid("templates", "missing template for %s/%s", a, kind)
			}
			if strings.TrimSpace(t.Name) == "" {
				return invalid("templates", "%s/%s has an empty name", a, kind)
			}
		}
		if strings.TrimSpace(b.FallbackTemplates[a].Name) == "" {
			return invalid("fallback_templates", "missing fallback template for %s", a)
		}
	}
	return nil
}

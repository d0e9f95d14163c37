package knowledge

import (
	"fmt"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const BuiltinVersion = "builtin"

type Benchmark struct {
	AverageSettlementIncrease float64                         `json:"average_settlement_increase" yaml:"average_settlement_increase"`
	SuccessRateByKind         map[claims.DocumentKind]float64 `json:"success_rate_by_kind" yaml:"success_rate_by_kind"`
}

type Template struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tactics     []string `json:"tactics" yaml:"tactics"`
}

type Precedent struct {
	CaseName    string `json:"case_name" yaml:"case_name"`
	Principle   string `json:"principle" yaml:"principle"`
	Application string `json:"application" yaml:"application"`
}

const (
	ClauseCoverage  = "coverage_clauses"
	ClauseExclusion = "exclusion_clauses"
	ClauseLimits    = "limits_clauses"
)

var ClauseCategories = []string{ClauseCoverage, ClauseExclusion, ClauseLimits}

// TemplateKinds are the document kinds with approach-specific templates.
// Other kinds resolve to FallbackTemplates.
var TemplateKinds = []claims.DocumentKind{
	claims.KindDenialLetter,
	claims.KindSettlementOffer,
	claims.KindPolicyDocument,
}

// Base is the read-only reference data shared by scoring and planning.
// A Base is never mutated after construction; reloads build a new one.
type Base struct {
	Version           string                                               `json:"version,omitempty" yaml:"version,omitempty"`
	References        []claims.ReferenceCase                               `json:"references" yaml:"references"`
	Benchmarks        map[claims.PolicyType]Benchmark                      `json:"benchmarks" yaml:"benchmarks"`
	PolicyKeywords    map[claims.PolicyType][]string                       `json:"policy_keywords" yaml:"policy_keywords"`
	Templates         map[claims.Approach]map[claims.DocumentKind]Template `json:"templates" yaml:"templates"`
	FallbackTemplates map[claims.Approach]Template                         `json:"fallback_templates" yaml:"fallback_templates"`
	Precedents        []Precedent                                          `json:"precedents" yaml:"precedents"`
	Clauses           map[string][]string                                  `json:"clauses" yaml:"clauses"`
}

// Benchmark returns the benchmark for a policy type and whether it exists.
func (b *Base) Benchmark(pt claims.PolicyType) (Benchmark, bool) {
	bm, ok := b.Benchmarks[pt]
	return bm, ok
}

// Template resolves the template for an approach and document kind.
func (b *Base) Template(a claims.Approach, kind claims.DocumentKind) (Template, bool) {
	if byKind, ok := b.Templates[a]; ok {
		if t, ok := byKind[kind]; ok {
			return t, true
		}
	}
	for _, k := range TemplateKinds {
		if k == kind {
			return Template{}, false
		}
	}
	t, ok := b.FallbackTemplates[a]
	return t, ok
}

type ValidationError struct {
	Table  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("knowledge base %s: %s", e.Table, e.Reason)
}

func invalid(table, format string, args ...any) *ValidationError {
	return &ValidationError{Table: table, Reason: fmt.Sprintf(format, args...)}
}

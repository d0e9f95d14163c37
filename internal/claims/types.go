package claims

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type DocumentKind string

const (
	KindDenialLetter    DocumentKind = "denial_letter"
	KindSettlementOffer DocumentKind = "settlement_offer"
	KindPolicyDocument  DocumentKind = "policy_document"
	KindClaimForm       DocumentKind = "claim_form"
	KindCorrespondence  DocumentKind = "correspondence"
)

var DocumentKinds = []DocumentKind{
	KindDenialLetter,
	KindSettlementOffer,
	KindPolicyDocument,
	KindClaimForm,
	KindCorrespondence,
}

func (k DocumentKind) Valid() bool {
	for _, v := range DocumentKinds {
		if v == k {
			return true
		}
	}
	return false
}

type PolicyType string

const (
	PolicyAuto   PolicyType = "auto"
	PolicyHome   PolicyType = "home"
	PolicyHealth PolicyType = "health"
)

var PolicyTypes = []PolicyType{PolicyAuto, PolicyHome, PolicyHealth}

func (p PolicyType) Valid() bool {
	return p == PolicyAuto || p == PolicyHome || p == PolicyHealth
}

type Approach string

const (
	ApproachAggressive    Approach = "aggressive"
	ApproachCollaborative Approach = "collaborative"
	ApproachDataDriven    Approach = "data_driven"
	ApproachLegalThreat   Approach = "legal_threat"
	ApproachAssertive     Approach = "assertive"
)

// Approaches is in declaration order, which is also the tie-break order.
var Approaches = []Approach{
	ApproachAggressive,
	ApproachCollaborative,
	ApproachDataDriven,
	ApproachLegalThreat,
	ApproachAssertive,
}

func (a Approach) Valid() bool {
	for _, v := range Approaches {
		if v == a {
			return true
		}
	}
	return false
}

type CaseStatus string

const (
	StatusActive    CaseStatus = "active"
	StatusPending   CaseStatus = "pending"
	StatusCompleted CaseStatus = "completed"
	StatusCancelled CaseStatus = "cancelled"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ExtractedCase is the fact bag produced by document extraction.
type ExtractedCase struct {
	DocumentKind         DocumentKind      `json:"document_kind"`
	ExtractionConfidence float64           `json:"extraction_confidence"`
	PolicyFields         map[string]string `json:"policy_fields,omitempty"`
	ClaimFields          map[string]string `json:"claim_fields,omitempty"`
	MonetaryAmounts      []string          `json:"monetary_amounts"`
	KeyDates             []string          `json:"key_dates"`
	Parties              []string          `json:"parties"`
	CoverageTypes        []string          `json:"coverage_types"`
	DenialReasons        []string          `json:"denial_reasons"`
	SettlementAmounts    []float64         `json:"settlement_amounts"`
}

func (c ExtractedCase) Validate() error {
	if !c.DocumentKind.Valid() {
		return fmt.Errorf("unknown document_kind %q", c.DocumentKind)
	}
	return nil
}

// Normalize returns a copy with set-valued fields de-duplicated (first
// occurrence wins) and the confidence clamped into [0,1]. NaN becomes 0.
func (c ExtractedCase) Normalize() ExtractedCase {
	out := c
	out.PolicyFields = copyFields(c.PolicyFields)
	out.ClaimFields = copyFields(c.ClaimFields)
	out.MonetaryAmounts = append([]string(nil), c.MonetaryAmounts...)
	out.KeyDates = dedupe(c.KeyDates)
	out.Parties = dedupe(c.Parties)
	out.CoverageTypes = dedupe(c.CoverageTypes)
	out.DenialReasons = append([]string(nil), c.DenialReasons...)
	out.SettlementAmounts = append([]float64(nil), c.SettlementAmounts...)
	switch {
	case math.IsNaN(out.ExtractionConfidence), out.ExtractionConfidence < 0:
		out.ExtractionConfidence = 0
	case out.ExtractionConfidence > 1:
		out.ExtractionConfidence = 1
	}
	return out
}

func (c ExtractedCase) PolicyNumber() string {
	return strings.TrimSpace(c.PolicyFields["policy_number"])
}

func (c ExtractedCase) Insurer() string {
	return strings.TrimSpace(c.PolicyFields["insurer"])
}

func copyFields(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func dedupe(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type ReferenceCase struct {
	ID                  string       `json:"id" yaml:"id"`
	DocumentKind        DocumentKind `json:"document_kind" yaml:"document_kind"`
	PolicyType          PolicyType   `json:"policy_type" yaml:"policy_type"`
	OriginalClaimAmount *float64     `json:"original_claim_amount,omitempty" yaml:"original_claim_amount,omitempty"`
	FinalPayoutAmount   *float64     `json:"final_payout_amount,omitempty" yaml:"final_payout_amount,omitempty"`
	InitialOfferAmount  *float64     `json:"initial_offer_amount,omitempty" yaml:"initial_offer_amount,omitempty"`
	FinalSettlement     *float64     `json:"final_settlement_amount,omitempty" yaml:"final_settlement_amount,omitempty"`
	DenialReason        string       `json:"denial_reason,omitempty" yaml:"denial_reason,omitempty"`
	StrategyLabel       string       `json:"strategy_label" yaml:"strategy_label"`
	KeyFactors          []string     `json:"key_factors" yaml:"key_factors"`
}

type SimilarityMatch struct {
	ReferenceID     string   `json:"reference_id"`
	SimilarityScore float64  `json:"similarity_score"`
	Outcome         string   `json:"outcome"`
	PayoutAchieved  float64  `json:"payout_achieved"`
	StrategyLabel   string   `json:"strategy_label"`
	KeyFactors      []string `json:"key_factors"`
}

type PayoutEstimate struct {
	Minimum    float64 `json:"minimum"`
	Expected   float64 `json:"expected"`
	Maximum    float64 `json:"maximum"`
	Confidence float64 `json:"confidence"`
}

type MarketComparison struct {
	PolicyType              PolicyType `json:"policy_type"`
	IndustryAverageIncrease float64    `json:"industry_average_increase"`
	SuccessRateBenchmark    float64    `json:"success_rate_benchmark"`
	ComparableCaseCount     int        `json:"comparable_case_count"`
	MarketConditions        string     `json:"market_conditions"`
}

type TimelineEstimate struct {
	InitialResponseDays int `json:"initial_response_days"`
	NegotiationRounds   int `json:"negotiation_rounds"`
	TotalEstimatedDays  int `json:"total_estimated_days"`
	MaximumTimelineDays int `json:"maximum_timeline_days"`
}

type CaseAnalysis struct {
	SuccessProbability float64           `json:"success_probability"`
	PayoutEstimate     PayoutEstimate    `json:"payout_estimate"`
	RiskFactors        []string          `json:"risk_factors"`
	StrengthFactors    []string          `json:"strength_factors"`
	SimilarCases       []SimilarityMatch `json:"similar_cases"`
	MarketComparison   MarketComparison  `json:"market_comparison"`
	TimelineEstimate   TimelineEstimate  `json:"timeline_estimate"`
}

type NegotiationRound struct {
	RoundNumber     int      `json:"round_number"`
	Objective       string   `json:"objective"`
	KeyActions      []string `json:"key_actions"`
	ExpectedOutcome string   `json:"expected_outcome"`
	TimelineDays    int      `json:"timeline_days"`
}

type NegotiationPlan struct {
	TotalRounds           int                `json:"total_rounds"`
	EstimatedDurationDays int                `json:"estimated_duration_days"`
	Rounds                []NegotiationRound `json:"rounds"`
}

type Strategy struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Tactics            []string        `json:"tactics"`
	Approach           Approach        `json:"approach"`
	Confidence         float64         `json:"confidence"`
	LeveragePoints     []string        `json:"leverage_points"`
	RecommendedActions []string        `json:"recommended_actions"`
	LegalPrecedents    []string        `json:"legal_precedents"`
	PolicyClauses      []string        `json:"policy_clauses"`
	NegotiationPlan    NegotiationPlan `json:"negotiation_plan"`
}

// Case is the persisted record for one uploaded document.
type Case struct {
	CaseID             string        `json:"case_id"`
	ClaimType          DocumentKind  `json:"claim_type"`
	PolicyNumber       string        `json:"policy_number"`
	SuccessProbability float64       `json:"success_probability"`
	EstimatedPayout    float64       `json:"estimated_payout"`
	Status             CaseStatus    `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          *time.Time    `json:"updated_at,omitempty"`
	ExtractedInfo      ExtractedCase `json:"extracted_info"`
	Analysis           CaseAnalysis  `json:"analysis"`
	Strategy           Strategy      `json:"strategy"`
}

const UnknownPolicyNumber = "Unknown"

// NewCase assembles a fresh active case record.
func NewCase(id string, ec ExtractedCase, analysis CaseAnalysis, strategy Strategy, now time.Time) Case {
	policy := ec.PolicyNumber()
	if policy == "" {
		policy = UnknownPolicyNumber
	}
	return Case{
		CaseID:             id,
		ClaimType:          ec.DocumentKind,
		PolicyNumber:       policy,
		SuccessProbability: analysis.SuccessProbability,
		EstimatedPayout:    analysis.PayoutEstimate.Expected,
		Status:             StatusActive,
		CreatedAt:          now,
		ExtractedInfo:      ec,
		Analysis:           analysis,
		Strategy:           strategy,
	}
}

// WithAnalysis replaces analysis and strategy and refreshes the summary fields.
func (c Case) WithAnalysis(analysis CaseAnalysis, strategy Strategy, now time.Time) Case {
	c.Analysis = analysis
	c.Strategy = strategy
	c.SuccessProbability = analysis.SuccessProbability
	c.EstimatedPayout = analysis.PayoutEstimate.Expected
	c.UpdatedAt = &now
	return c
}

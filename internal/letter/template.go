package letter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const (
	recipient  = "Claims Department"
	senderName = "[Your Name]"
	letterType = "claim_appeal"
)

var (
	baseKeyPoints       = []string{"Policy coverage applies", "Documentation complete", "Fair settlement requested"}
	baseLegalReferences = []string{"Reasonable Expectations Doctrine", "Bad Faith Denial Principle"}
)

var openings = map[string]string{
	"professional": "I am writing regarding my insurance claim under Policy #%s (Case ID: %s).",
	"firm":         "I am writing to formally dispute the handling of my insurance claim under Policy #%s (Case ID: %s).",
	"friendly":     "I hope this letter finds you well. I am writing regarding my insurance claim under Policy #%s (Case ID: %s).",
}

var responseWindows = map[string]string{
	"low":    "I request your response within 14 business days.",
	"medium": "I request your response within 7 business days.",
	"high":   "This matter is time-sensitive. I request your response within 3 business days.",
}

// TemplateDrafter produces the deterministic letter. It never fails for a
// well-formed case and is the fallback for every other drafter.
type TemplateDrafter struct {
	now func() time.Time
}

func NewTemplateDrafter() *TemplateDrafter {
	return &TemplateDrafter{now: time.Now}
}

func (d *TemplateDrafter) Mode() string { return ModeTemplate }

func (d *TemplateDrafter) Draft(_ context.Context, c claims.Case, req Request) (Letter, error) {
	req = req.Normalize()
	policy := policyNumber(c)

	opening, ok := openings[strings.ToLower(req.Tone)]
	if !ok {
		opening = openings["professional"]
	}
	window, ok := responseWindows[strings.ToLower(req.UrgencyLevel)]
	if !ok {
		window = responseWindows["medium"]
	}

	var b strings.Builder
	b.WriteString("Dear Claims Adjuster,\n\n")
	fmt.Fprintf(&b, opening+"\n\n", policy, c.CaseID)
	if c.ClaimType == claims.KindDenialLetter {
		b.WriteString("After reviewing the denial letter citing the following reasons:\n")
		b.WriteString(bulletList(c.ExtractedInfo.DenialReasons, "Not specified"))
		b.WriteString("\n\nI believe this denial is incorrect for the following reasons:\n")
		b.WriteString("• The policy language is ambiguous in this context\n")
		b.WriteString("• Similar claims have been approved under comparable circumstances\n")
		b.WriteString("• All required documentation was submitted timely\n\n")
	} else {
		b.WriteString("After reviewing the settlement offer, I believe it does not adequately compensate " +
			"for the damages incurred for these reasons:\n")
		b.WriteString("• The offer doesn't reflect current market rates\n")
		b.WriteString("• Not all damages were accounted for\n")
		b.WriteString("• The calculations appear to be incorrect\n\n")
	}
	if len(req.CustomPoints) > 0 {
		b.WriteString("Additionally, please consider the following:\n")
		b.WriteString(bulletList(req.CustomPoints, ""))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Based on my analysis and comparable cases, I believe a fair resolution would be "+
		"in the range of $%s.\n\n", formatMoney(c.Analysis.PayoutEstimate.Expected))
	b.WriteString(window + " Please contact me if you require any additional information.\n\n")
	b.WriteString("Sincerely,\n" + senderName)

	keyPoints := append(append([]string{}, baseKeyPoints...), req.CustomPoints...)
	refs := []string{}
	if req.legalReferences() {
		refs = append(refs, baseLegalReferences...)
		refs = append(refs, c.Strategy.LegalPrecedents...)
	}
	return Letter{
		Subject:         "Re: Claim Review - Policy #" + policy,
		Body:            b.String(),
		Recipient:       recipient,
		SenderName:      senderName,
		PolicyNumber:    policy,
		CaseID:          c.CaseID,
		GeneratedAt:     d.now().UTC(),
		LetterType:      letterType,
		KeyPoints:       keyPoints,
		LegalReferences: refs,
		Mode:            ModeTemplate,
	}, nil
}

func policyNumber(c claims.Case) string {
	if p := c.ExtractedInfo.PolicyNumber(); p != "" {
		return p
	}
	if c.PolicyNumber != "" {
		return c.PolicyNumber
	}
	return claims.UnknownPolicyNumber
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}

func formatMoney(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

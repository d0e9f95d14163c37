package letter

import (
	"context"
	"time"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const (
	ModeTemplate = "template"
	ModeLLM      = "llm"
)

// Request tunes the drafted letter. Zero values are replaced by
// DefaultRequest's values in Normalize.
type Request struct {
	Tone                   string   `json:"tone"`
	UrgencyLevel           string   `json:"urgency_level"`
	IncludeLegalReferences *bool    `json:"include_legal_references,omitempty"`
	CustomPoints           []string `json:"custom_points"`
}

func DefaultRequest() Request {
	include := true
	return Request{Tone: "professional", UrgencyLevel: "medium", IncludeLegalReferences: &include}
}

func (r Request) Normalize() Request {
	def := DefaultRequest()
	if r.Tone == "" {
		r.Tone = def.Tone
	}
	if r.UrgencyLevel == "" {
		r.UrgencyLevel = def.UrgencyLevel
	}
	if r.IncludeLegalReferences == nil {
		r.IncludeLegalReferences = def.IncludeLegalReferences
	}
	return r
}

func (r Request) legalReferences() bool {
	return r.IncludeLegalReferences == nil || *r.IncludeLegalReferences
}

type Letter struct {
	Subject         string    `json:"subject"`
	Body            string    `json:"body"`
	Recipient       string    `json:"recipient"`
	SenderName      string    `json:"sender_name"`
	PolicyNumber    string    `json:"policy_number"`
	CaseID          string    `json:"case_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	LetterType      string    `json:"letter_type"`
	KeyPoints       []string  `json:"key_points"`
	LegalReferences []string  `json:"legal_references"`
	Mode            string    `json:"mode"`
}

// Drafter writes a negotiation letter for a stored case.
type Drafter interface {
	Draft(ctx context.Context, c claims.Case, req Request) (Letter, error)
	Mode() string
}

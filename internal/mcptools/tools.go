// Package mcptools exposes case analysis, strategy and letter drafting as
// MCP tools.
package mcptools

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/letter"
	"github.com/joelkehle/claim-advocate/internal/service"
)

const caseArgDescription = "Extracted case as a JSON object: document_kind, extraction_confidence, " +
	"policy_fields, monetary_amounts, key_dates, parties, coverage_types, denial_reasons, settlement_amounts"

// NewServer registers every tool on a fresh MCP server.
func NewServer(svc *service.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"claim-advocate",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	analyze := NewAnalyzeTool(svc)
	s.AddTool(analyze.Definition(), analyze.Handle)

	plan := NewStrategyTool(svc)
	s.AddTool(plan.Definition(), plan.Handle)

	draft := NewDraftLetterTool(svc)
	s.AddTool(draft.Definition(), draft.Handle)
	return s
}

// AnalyzeTool handles analyze_case.
type AnalyzeTool struct {
	svc *service.Service
}

func NewAnalyzeTool(svc *service.Service) *AnalyzeTool { return &AnalyzeTool{svc: svc} }

func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_case",
		mcp.WithDescription("Score an insurance claim document: success probability, payout range, "+
			"risk and strength factors, similar historical cases and a timeline estimate."),
		mcp.WithString("case", mcp.Required(), mcp.Description(caseArgDescription)),
	)
}

func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ec, errResult := caseArg(req)
	if errResult != nil {
		return errResult, nil
	}
	ev, err := t.svc.Evaluate(ctx, ec, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(ev.Analysis)
}

// StrategyTool handles generate_strategy.
type StrategyTool struct {
	svc *service.Service
}

func NewStrategyTool(svc *service.Service) *StrategyTool { return &StrategyTool{svc: svc} }

func (t *StrategyTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_strategy",
		mcp.WithDescription("Analyze a claim document and produce a negotiation strategy with leverage "+
			"points, recommended actions and a round-by-round plan."),
		mcp.WithString("case", mcp.Required(), mcp.Description(caseArgDescription)),
		mcp.WithString("strategy_preference",
			mcp.Description("Force an approach: aggressive, collaborative, data_driven, legal_threat or assertive"),
		),
	)
}

func (t *StrategyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ec, errResult := caseArg(req)
	if errResult != nil {
		return errResult, nil
	}
	ev, err := t.svc.Evaluate(ctx, ec, req.GetString("strategy_preference", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("strategy generation failed: %v", err)), nil
	}
	return jsonResult(ev)
}

// DraftLetterTool handles draft_letter.
type DraftLetterTool struct {
	svc *service.Service
	now func() time.Time
}

func NewDraftLetterTool(svc *service.Service) *DraftLetterTool {
	return &DraftLetterTool{svc: svc, now: func() time.Time { return time.Now().UTC() }}
}

func (t *DraftLetterTool) Definition() mcp.Tool {
	return mcp.NewTool("draft_letter",
		mcp.WithDescription("Analyze a claim document and draft the negotiation letter to send to the insurer."),
		mcp.WithString("case", mcp.Required(), mcp.Description(caseArgDescription)),
		mcp.WithString("tone", mcp.Description("professional (default), firm or friendly")),
		mcp.WithString("urgency_level", mcp.Description("low, medium (default) or high")),
		mcp.WithBoolean("include_legal_references", mcp.Description("Cite legal principles (default true)")),
	)
}

func (t *DraftLetterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ec, errResult := caseArg(req)
	if errResult != nil {
		return errResult, nil
	}
	ev, err := t.svc.Evaluate(ctx, ec, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	lreq := letter.Request{
		Tone:         req.GetString("tone", ""),
		UrgencyLevel: req.GetString("urgency_level", ""),
	}
	if _, ok := req.GetArguments()["include_legal_references"]; ok {
		include := req.GetBool("include_legal_references", true)
		lreq.IncludeLegalReferences = &include
	}

	c := claims.NewCase(uuid.NewString(), ec.Normalize(), ev.Analysis, ev.Strategy, t.now())
	l, err := t.svc.DraftFor(ctx, c, lreq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("letter drafting failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Subject: %s\n\n%s", l.Subject, letter.Markdown(l))), nil
}

func caseArg(req mcp.CallToolRequest) (claims.ExtractedCase, *mcp.CallToolResult) {
	raw := req.GetString("case", "")
	if raw == "" {
		return claims.ExtractedCase{}, mcp.NewToolResultError("'case' is required")
	}
	var ec claims.ExtractedCase
	if err := json.Unmarshal([]byte(raw), &ec); err != nil {
		return claims.ExtractedCase{}, mcp.NewToolResultError(fmt.Sprintf("'case' is not valid JSON: %v", err))
	}
	return ec, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(blob)), nil
}

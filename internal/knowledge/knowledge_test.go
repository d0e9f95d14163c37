package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

func TestDefaultValidates(t *testing.T) {
	b := Default()
	if err := b.Validate(); err != nil {
		t.Fatalf("default knowledge base invalid: %v", err)
	}
	if len(b.References) != 3 {
		t.Fatalf("expected 3 reference cases, got %d", len(b.References))
	}
	if b.Version != BuiltinVersion {
		t.Fatalf("unexpected version %q", b.Version)
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.References[0].ID = "CHANGED"
	a.Clauses[ClauseCoverage][0] = "changed"
	b := Default()
	if b.References[0].ID != "HIST_001" || b.Clauses[ClauseCoverage][0] == "changed" {
		t.Fatal("Default must not share tables between calls")
	}
}

func TestTemplateFallbackForUntemplatedKinds(t *testing.T) {
	b := Default()
	tpl, ok := b.Template(claims.ApproachAssertive, claims.KindDenialLetter)
	if !ok || tpl.Name != "Policy Interpretation Challenge" {
		t.Fatalf("unexpected denial template: %+v ok=%v", tpl, ok)
	}
	tpl, ok = b.Template(claims.ApproachCollaborative, claims.KindCorrespondence)
	if !ok || tpl.Name != "Collaborative Claim Review" {
		t.Fatalf("unexpected fallback template: %+v ok=%v", tpl, ok)
	}

	delete(b.Templates[claims.ApproachAssertive], claims.KindSettlementOffer)
	if _, ok := b.Template(claims.ApproachAssertive, claims.KindSettlementOffer); ok {
		t.Fatal("missing templated kind must not silently use the fallback")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Base)
		table  string
	}{
		{"missing id", func(b *Base) { b.References[0].ID = "" }, "references"},
		{"duplicate id", func(b *Base) { b.References[1].ID = "HIST_001" }, "references"},
		{"bad kind", func(b *Base) { b.References[0].DocumentKind = "memo" }, "references"},
		{"bad policy type", func(b *Base) { b.References[0].PolicyType = "boat" }, "references"},
		{"no strategy label", func(b *Base) { b.References[2].StrategyLabel = " " }, "references"},
		{"negative amount", func(b *Base) { v := -1.0; b.References[0].OriginalClaimAmount = &v }, "references"},
		{"rate out of range", func(b *Base) {
			bm := b.Benchmarks[claims.PolicyAuto]
			bm.SuccessRateByKind[claims.KindDenialLetter] = 1.5
		}, "benchmarks"},
		{"missing keywords", func(b *Base) { delete(b.PolicyKeywords, claims.PolicyHealth) }, "policy_keywords"},
		{"missing template", func(b *Base) { delete(b.Templates, claims.ApproachLegalThreat) }, "templates"},
		{"missing fallback", func(b *Base) { delete(b.FallbackTemplates, claims.ApproachAggressive) }, "fallback_templates"},
		{"bad precedent", func(b *Base) { b.Precedents[0].Application = "" }, "precedents"},
		{"missing clauses", func(b *Base) { delete(b.Clauses, ClauseLimits) }, "clauses"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Default()
			tc.mutate(b)
			err := b.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Table != tc.table {
				t.Fatalf("expected table %q, got %q (%v)", tc.table, ve.Table, err)
			}
		})
	}
}

func TestParseYAMLMergesDefaults(t *testing.T) {
	doc := `
references:
  - id: R1
    document_kind: settlement_offer
    policy_type: health
    original_claim_amount: 900
    final_payout_amount: 1100
    strategy_label: Medical Bill Review
    key_factors: [itemized bills]
`
	b, err := Parse([]byte(doc), ".yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(b.References) != 1 || b.References[0].ID != "R1" || *b.References[0].FinalPayoutAmount != 1100 {
		t.Fatalf("unexpected references: %+v", b.References)
	}
	if len(b.Precedents) != 3 || len(b.Templates) != len(claims.Approaches) {
		t.Fatal("expected missing tables to fall back to defaults")
	}
	if b.Version == "" || b.Version == BuiltinVersion {
		t.Fatalf("expected content hash version, got %q", b.Version)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"version":"v7","precedents":[{"case_name":"A v. B","principle":"P","application":"Denial of coverage"}]}`
	b, err := Parse([]byte(doc), ".json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.Version != "v7" || len(b.Precedents) != 1 || len(b.References) != 3 {
		t.Fatalf("unexpected base: version=%s precedents=%d refs=%d", b.Version, len(b.Precedents), len(b.References))
	}
}

func TestParseLowercasesPolicyKeywords(t *testing.T) {
	doc := `
policy_keywords:
  auto: [Collision, " Uninsured Motorist "]
  home: [DWELLING]
  health: [medical]
`
	b, err := Parse([]byte(doc), ".yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	auto := b.PolicyKeywords[claims.PolicyAuto]
	if len(auto) != 2 || auto[0] != "collision" || auto[1] != "uninsured motorist" {
		t.Fatalf("unexpected auto keywords: %q", auto)
	}
	if home := b.PolicyKeywords[claims.PolicyHome]; len(home) != 1 || home[0] != "dwelling" {
		t.Fatalf("unexpected home keywords: %q", home)
	}
}

func TestParseRejectsInvalidAndUnknownFormat(t *testing.T) {
	if _, err := Parse([]byte(`{"references":[{"id":""}]}`), ".json"); err == nil {
		t.Fatal("expected validation failure")
	}
	if _, err := Parse([]byte(`x`), ".toml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestHolderConcurrentSwap(t *testing.T) {
	h := NewHolder(Default())
	next := Default()
	next.Version = "next"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				b := h.Current()
				if b.Version != BuiltinVersion && b.Version != "next" {
					t.Errorf("torn read: %q", b.Version)
					return
				}
			}
		}()
	}
	prev := h.Swap(next)
	wg.Wait()
	if prev.Version != BuiltinVersion || h.Current().Version != "next" {
		t.Fatal("swap did not publish the new base")
	}
}

func TestWatcherReloadKeepsLiveBaseOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.json")
	if err := os.WriteFile(path, []byte(`{"version":"v1"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewHolder(Default())
	var gotErr error
	w := NewWatcher(path, h, nil, func(_ *Base, err error) { gotErr = err })

	w.Reload()
	if gotErr != nil || h.Current().Version != "v1" {
		t.Fatalf("expected v1 live, got %q err=%v", h.Current().Version, gotErr)
	}

	if err := os.WriteFile(path, []byte(`{"references":[{"id":"X"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	w.Reload()
	if gotErr == nil {
		t.Fatal("expected reload error for invalid file")
	}
	if h.Current().Version != "v1" {
		t.Fatalf("invalid reload must keep previous base, got %q", h.Current().Version)
	}
}

func TestWatcherPicksUpFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.json")
	if err := os.WriteFile(path, []byte(`{"version":"v1"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewHolder(Default())
	reloaded := make(chan string, 4)
	w := NewWatcher(path, h, nil, func(b *Base, err error) {
		if err == nil {
			reloaded <- b.Version
		}
	})
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case v := <-reloaded:
			if v == "v2" {
				cancel()
				<-done
				if h.Current().Version != "v2" {
					t.Fatalf("holder not updated: %q", h.Current().Version)
				}
				return
			}
		case <-tick.C:
			// Rewrite until the watcher has registered and observed a change.
			_ = os.WriteFile(path, []byte(`{"version":"v2"}`), 0o644)
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

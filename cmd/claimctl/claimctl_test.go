package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const strongDenialJSON = `{
  "document_kind": "denial_letter",
  "extraction_confidence": 0.9,
  "policy_fields": {"policy_number": "P123"},
  "monetary_amounts": ["$1,000"],
  "key_dates": ["01/01/2024"],
  "parties": ["John Doe"],
  "coverage_types": ["collision"],
  "denial_reasons": ["policy exclusion"]
}`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CLAIM_STORE_DRIVER", "file")
	t.Setenv("CLAIM_STORE_PATH", filepath.Join(dir, "cases.json"))
	t.Setenv("CLAIM_LETTER_NO_LLM", "1")
	t.Setenv("CLAIM_LOG_LEVEL", "error")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file=" + filepath.Join(dir, "missing.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := runCLI(t, "analyze", writeFile(t, "case.json", strongDenialJSON))
	require.NoError(t, err)
	var a claims.CaseAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &a), out)
	assert.Equal(t, 0.83, a.SuccessProbability)
	assert.Equal(t, 1428.57, a.PayoutEstimate.Expected)
}

func TestAnalyzeSaveCommand(t *testing.T) {
	out, err := runCLI(t, "analyze", "--save", writeFile(t, "case.json", strongDenialJSON))
	require.NoError(t, err)
	var c claims.Case
	require.NoError(t, json.Unmarshal([]byte(out), &c), out)
	assert.NotEmpty(t, c.CaseID)
	assert.Equal(t, claims.StatusActive, c.Status)
}

func TestStrategyCommand(t *testing.T) {
	out, err := runCLI(t, "strategy", "--approach", "legal_threat", writeFile(t, "case.json", strongDenialJSON))
	require.NoError(t, err)
	assert.Contains(t, out, `"approach": "legal_threat"`)
	assert.Contains(t, out, "Legal Action Threat")
}

func TestLetterCommandWritesHTML(t *testing.T) {
	htmlPath := filepath.Join(t.TempDir(), "letter.html")
	out, err := runCLI(t, "letter", "--tone", "firm", "--point", "Invoices attached", "--html", htmlPath,
		writeFile(t, "case.json", strongDenialJSON))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Subject: Re: Claim Review - Policy #P123"), out)

	doc, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Invoices attached")
}

func TestKBValidateCommand(t *testing.T) {
	out, err := runCLI(t, "kb", "validate", writeFile(t, "kb.yaml", "version: test-kb\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok version=test-kb "), out)

	_, err = runCLI(t, "kb", "validate", writeFile(t, "kb.yaml", "references: [{id: \"\"}]\n"))
	assert.Error(t, err)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "analyze", writeFile(t, "case.json", `{"document_kind":"fax"}`))
	assert.Error(t, err)
	_, err = runCLI(t, "analyze", writeFile(t, "case.json", `{`))
	assert.Error(t, err)
}

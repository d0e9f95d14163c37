package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/claim-advocate/internal/casestore"
	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
	"github.com/joelkehle/claim-advocate/internal/metrics"
	"github.com/joelkehle/claim-advocate/internal/service"
)

type stubPDF struct{}

func (stubPDF) RenderPDF(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func newServerForTest(t *testing.T, withPDF bool) http.Handler {
	t.Helper()
	store, err := casestore.NewFileStore(filepath.Join(t.TempDir(), "cases.json"))
	require.NoError(t, err)
	m := metrics.New(nil)
	deps := service.Deps{Store: store, Knowledge: knowledge.Static(knowledge.Default()), Metrics: m}
	if withPDF {
		deps.PDF = stubPDF{}
	}
	svc, err := service.New(deps)
	require.NoError(t, err)
	return NewServer(Config{Service: svc, Metrics: m})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		blob, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(blob)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type errorPayload struct {
	OK    bool `json:"ok"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func strongDenial() claims.ExtractedCase {
	return claims.ExtractedCase{
		DocumentKind:         claims.KindDenialLetter,
		ExtractionConfidence: 0.9,
		PolicyFields:         map[string]string{"policy_number": "P123"},
		MonetaryAmounts:      []string{"$1,000"},
		KeyDates:             []string{"01/01/2024"},
		Parties:              []string{"John Doe"},
		CoverageTypes:        []string{"collision"},
		DenialReasons:        []string{"policy exclusion"},
	}
}

func createCase(t *testing.T, h http.Handler) claims.Case {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/cases", strongDenial())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[claims.Case](t, rr)
}

func TestCreateAndFetchCase(t *testing.T) {
	h := newServerForTest(t, false)
	c := createCase(t, h)
	assert.NotEmpty(t, c.CaseID)
	assert.Equal(t, 0.83, c.SuccessProbability)
	assert.Equal(t, claims.ApproachAssertive, c.Strategy.Approach)

	rr := do(t, h, http.MethodGet, "/api/cases/"+c.CaseID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, c.CaseID, decode[claims.Case](t, rr).CaseID)

	rr = do(t, h, http.MethodGet, "/api/cases", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Cases []claims.Case `json:"cases"`
	}](t, rr)
	require.Len(t, list.Cases, 1)
}

func TestUploadAlias(t *testing.T) {
	h := newServerForTest(t, false)
	rr := do(t, h, http.MethodPost, "/api/upload", strongDenial())
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "P123", decode[claims.Case](t, rr).PolicyNumber)
}

func TestErrorPayloads(t *testing.T) {
	h := newServerForTest(t, false)
	c := createCase(t, h)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown kind", http.MethodPost, "/api/cases", map[string]any{"document_kind": "fax"}, 400, service.CodeValidation},
		{"bad json", http.MethodPost, "/api/cases", "{not json", 400, service.CodeValidation},
		{"missing case", http.MethodGet, "/api/cases/nope", nil, 404, service.CodeNotFound},
		{"bad status filter", http.MethodGet, "/api/cases?status=archived", nil, 400, service.CodeValidation},
		{"bad status", http.MethodPatch, "/api/cases/" + c.CaseID + "/status", map[string]string{"status": "archived"}, 400, service.CodeValidation},
		{"bad preference", http.MethodPost, "/api/cases/" + c.CaseID + "/analyze", map[string]any{"strategy_preference": "polite"}, 400, service.CodeValidation},
		{"pdf unavailable", http.MethodGet, "/api/cases/" + c.CaseID + "/letter-pdf", nil, 503, service.CodeUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			payload := decode[errorPayload](t, rr)
			assert.False(t, payload.OK)
			assert.Equal(t, tc.code, payload.Error.Code)
			assert.NotEmpty(t, payload.Error.Message)
		})
	}
}

func TestStatusAndDelete(t *testing.T) {
	h := newServerForTest(t, false)
	c := createCase(t, h)

	rr := do(t, h, http.MethodPatch, "/api/cases/"+c.CaseID+"/status", map[string]string{"status": "pending"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, claims.StatusPending, decode[claims.Case](t, rr).Status)

	rr = do(t, h, http.MethodGet, "/api/cases?status=active", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cases":[]`)

	rr = do(t, h, http.MethodDelete, "/api/cases/"+c.CaseID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodDelete, "/api/cases/"+c.CaseID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReanalyze(t *testing.T) {
	h := newServerForTest(t, false)
	c := createCase(t, h)

	rr := do(t, h, http.MethodPost, "/api/cases/"+c.CaseID+"/analyze", map[string]any{
		"parameters":          map[string]any{"extraction_confidence": 0.3},
		"force_reanalysis":    true,
		"strategy_preference": "legal_threat",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[claims.Case](t, rr)
	assert.Equal(t, 0.3, got.ExtractedInfo.ExtractionConfidence)
	assert.Equal(t, claims.ApproachLegalThreat, got.Strategy.Approach)
	assert.NotNil(t, got.UpdatedAt)

	rr = do(t, h, http.MethodPost, "/api/cases/"+c.CaseID+"/analyze", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestLetterEndpoints(t *testing.T) {
	h := newServerForTest(t, true)
	c := createCase(t, h)

	rr := do(t, h, http.MethodPost, "/api/cases/"+c.CaseID+"/letter", map[string]any{
		"tone":          "firm",
		"urgency_level": "high",
		"custom_points": []string{"Repair invoices attached"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode[struct {
		CaseID      string `json:"case_id"`
		GeneratedAt string `json:"generated_at"`
		Letter      struct {
			Subject   string   `json:"subject"`
			Body      string   `json:"body"`
			KeyPoints []string `json:"key_points"`
		} `json:"letter"`
	}](t, rr)
	assert.Equal(t, c.CaseID, body.CaseID)
	assert.NotEmpty(t, body.GeneratedAt)
	assert.Equal(t, "Re: Claim Review - Policy #P123", body.Letter.Subject)
	assert.Contains(t, body.Letter.KeyPoints, "Repair invoices attached")

	rr = do(t, h, http.MethodGet, "/api/cases/"+c.CaseID+"/letter-preview", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rr.Body.String(), "Claim Review")

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rr = do(t, h, method, "/api/cases/"+c.CaseID+"/letter-pdf", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="claim_letter_`+c.CaseID+`.pdf"`, rr.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4 stub", rr.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newServerForTest(t, false)
	rr := do(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[service.HealthReport](t, rr)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, knowledge.BuiltinVersion, report.Components["knowledge_base"])

	createCase(t, h)
	rr = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	out := rr.Body.String()
	assert.Contains(t, out, `claims_analyses_total{document_kind="denial_letter",outcome="ok"} 1`)
	assert.Contains(t, out, `claims_http_requests_total{method="POST",route="/api/cases`)
	assert.Contains(t, out, `status="201"} 1`)
}

// Package service runs the case lifecycle: analysis, planning, storage and
// letter drafting.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/cache"
	"github.com/joelkehle/claim-advocate/internal/casestore"
	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
	"github.com/joelkehle/claim-advocate/internal/letter"
	"github.com/joelkehle/claim-advocate/internal/metrics"
	"github.com/joelkehle/claim-advocate/internal/scoring"
	"github.com/joelkehle/claim-advocate/internal/strategy"
	"github.com/joelkehle/claim-advocate/internal/telemetry"
)

type Deps struct {
	Store     casestore.Store
	Knowledge knowledge.Source
	// Optional collaborators; nil selects the no-op or template variant.
	Cache   cache.AnalysisCache
	Drafter letter.Drafter
	PDF     letter.PDFRenderer
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Tracer  trace.Tracer
}

type Service struct {
	store     casestore.Store
	knowledge knowledge.Source
	cache     cache.AnalysisCache
	drafter   letter.Drafter
	pdf       letter.PDFRenderer
	metrics   *metrics.Metrics
	log       *zap.Logger
	tracer    trace.Tracer

	now   func() time.Time
	newID func() string
}

func New(d Deps) (*Service, error) {
	if d.Store == nil {
		return nil, errors.New("service: store is required")
	}
	if d.Knowledge == nil {
		return nil, errors.New("service: knowledge source is required")
	}
	s := &Service{
		store:     d.Store,
		knowledge: d.Knowledge,
		cache:     d.Cache,
		drafter:   d.Drafter,
		pdf:       d.PDF,
		metrics:   d.Metrics,
		log:       d.Log,
		tracer:    d.Tracer,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.drafter == nil {
		s.drafter = letter.NewTemplateDrafter()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer()
	}
	s.log = s.log.Named("service")
	return s, nil
}

// AnalysisRequest re-runs analysis for a stored case.
type AnalysisRequest struct {
	// Parameters overrides extracted fields; only extraction_confidence is
	// recognised.
	Parameters         map[string]any `json:"parameters"`
	ForceReanalysis    bool           `json:"force_reanalysis"`
	StrategyPreference string         `json:"strategy_preference,omitempty"`
}

type HealthReport struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Evaluation is the stateless result of scoring and planning one case.
type Evaluation struct {
	Analysis claims.CaseAnalysis `json:"analysis"`
	Strategy claims.Strategy     `json:"strategy"`
}

// Evaluate analyzes and plans without persisting anything.
func (s *Service) Evaluate(ctx context.Context, ec claims.ExtractedCase, preferred string) (ev Evaluation, err error) {
	ctx, span := s.tracer.Start(ctx, "service.Evaluate")
	defer func() { endSpan(span, err) }()

	ec, opts, err := prepare(ec, preferred)
	if err != nil {
		return Evaluation{}, err
	}
	a, st, err := s.analyze(ctx, ec, opts, false)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Analysis: a, Strategy: st}, nil
}

func (s *Service) CreateCase(ctx context.Context, ec claims.ExtractedCase) (c claims.Case, err error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateCase")
	defer func() { endSpan(span, err) }()

	ec, opts, err := prepare(ec, "")
	if err != nil {
		return claims.Case{}, err
	}
	a, st, err := s.analyze(ctx, ec, opts, false)
	if err != nil {
		return claims.Case{}, err
	}
	c = claims.NewCase(s.newID(), ec, a, st, s.now())
	span.SetAttributes(attribute.String("case.id", c.CaseID))
	if err := s.store.Put(ctx, c); err != nil {
		return claims.Case{}, storeError(c.CaseID, err)
	}
	s.log.Info("case created",
		zap.String("case_id", c.CaseID),
		zap.String("document_kind", string(c.ClaimType)),
		zap.Float64("success_probability", c.SuccessProbability),
		zap.String("approach", string(st.Approach)))
	return c, nil
}

func (s *Service) GetCase(ctx context.Context, id string) (c claims.Case, err error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCase", trace.WithAttributes(attribute.String("case.id", id)))
	defer func() { endSpan(span, err) }()

	c, err = s.store.Get(ctx, id)
	if err != nil {
		return claims.Case{}, storeError(id, err)
	}
	return c, nil
}

// ListCases returns stored cases, oldest first. An empty status lists all.
func (s *Service) ListCases(ctx context.Context, status claims.CaseStatus) (out []claims.Case, err error) {
	ctx, span := s.tracer.Start(ctx, "service.ListCases")
	defer func() { endSpan(span, err) }()

	if status != "" && !status.Valid() {
		return nil, validationError(fmt.Errorf("unknown status %q", status))
	}
	out, err = s.store.List(ctx, status)
	if err != nil {
		return nil, storeError("", err)
	}
	return out, nil
}

func (s *Service) DeleteCase(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "service.DeleteCase", trace.WithAttributes(attribute.String("case.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.store.Delete(ctx, id); err != nil {
		return storeError(id, err)
	}
	s.log.Info("case deleted", zap.String("case_id", id))
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status claims.CaseStatus) (c claims.Case, err error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateStatus", trace.WithAttributes(attribute.String("case.id", id)))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return claims.Case{}, validationError(fmt.Errorf("unknown status %q", status))
	}
	c, err = s.store.Get(ctx, id)
	if err != nil {
		return claims.Case{}, storeError(id, err)
	}
	now := s.now()
	c.Status = status
	c.UpdatedAt = &now
	if err := s.store.Put(ctx, c); err != nil {
		return claims.Case{}, storeError(id, err)
	}
	return c, nil
}

// Reanalyze applies parameter overrides to the stored extraction, scores it
// again and replaces the case's analysis and strategy.
func (s *Service) Reanalyze(ctx context.Context, id string, req AnalysisRequest) (c claims.Case, err error) {
	ctx, span := s.tracer.Start(ctx, "service.Reanalyze", trace.WithAttributes(
		attribute.String("case.id", id),
		attribute.Bool("force", req.ForceReanalysis)))
	defer func() { endSpan(span, err) }()

	c, err = s.store.Get(ctx, id)
	if err != nil {
		return claims.Case{}, storeError(id, err)
	}
	ec, err := applyParameters(c.ExtractedInfo, req.Parameters)
	if err != nil {
		return claims.Case{}, err
	}
	ec, opts, err := prepare(ec, req.StrategyPreference)
	if err != nil {
		return claims.Case{}, err
	}
	a, st, err := s.analyze(ctx, ec, opts, req.ForceReanalysis)
	if err != nil {
		return claims.Case{}, err
	}
	c.ExtractedInfo = ec
	c = c.WithAnalysis(a, st, s.now())
	if err := s.store.Put(ctx, c); err != nil {
		return claims.Case{}, storeError(id, err)
	}
	s.log.Info("case reanalyzed",
		zap.String("case_id", id),
		zap.Float64("success_probability", c.SuccessProbability),
		zap.String("approach", string(st.Approach)))
	return c, nil
}

func (s *Service) DraftLetter(ctx context.Context, id string, req letter.Request) (l letter.Letter, err error) {
	ctx, span := s.tracer.Start(ctx, "service.DraftLetter", trace.WithAttributes(attribute.String("case.id", id)))
	defer func() { endSpan(span, err) }()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return letter.Letter{}, storeError(id, err)
	}
	return s.DraftFor(ctx, c, req)
}

// DraftFor drafts a letter for a case that need not be stored.
func (s *Service) DraftFor(ctx context.Context, c claims.Case, req letter.Request) (letter.Letter, error) {
	l, err := s.drafter.Draft(ctx, c, req.Normalize())
	if err != nil {
		if ctx.Err() != nil {
			return letter.Letter{}, newError(CodeUnavailable, "letter drafting cancelled", err)
		}
		return letter.Letter{}, newError(CodeInternal, "draft letter: "+err.Error(), err)
	}
	s.metrics.ObserveLetter(l.Mode)
	s.log.Info("letter drafted", zap.String("case_id", c.CaseID), zap.String("mode", l.Mode))
	return l, nil
}

func (s *Service) RenderLetterHTML(ctx context.Context, id string, req letter.Request) (string, error) {
	l, err := s.DraftLetter(ctx, id, req)
	if err != nil {
		return "", err
	}
	doc, err := letter.RenderHTML(l)
	if err != nil {
		return "", newError(CodeInternal, "render letter: "+err.Error(), err)
	}
	return doc, nil
}

// RenderLetterPDF drafts and prints the letter; the letter is returned so
// callers can name the download.
func (s *Service) RenderLetterPDF(ctx context.Context, id string, req letter.Request) ([]byte, letter.Letter, error) {
	if s.pdf == nil {
		return nil, letter.Letter{}, newError(CodeUnavailable, "pdf rendering is not configured", nil)
	}
	l, err := s.DraftLetter(ctx, id, req)
	if err != nil {
		return nil, letter.Letter{}, err
	}
	pdf, err := s.PrintLetter(ctx, l)
	if err != nil {
		return nil, letter.Letter{}, err
	}
	return pdf, l, nil
}

// PrintLetter renders an already drafted letter to PDF.
func (s *Service) PrintLetter(ctx context.Context, l letter.Letter) ([]byte, error) {
	if s.pdf == nil {
		return nil, newError(CodeUnavailable, "pdf rendering is not configured", nil)
	}
	doc, err := letter.RenderHTML(l)
	if err != nil {
		return nil, newError(CodeInternal, "render letter: "+err.Error(), err)
	}
	pdf, err := s.pdf.RenderPDF(ctx, doc)
	if err != nil {
		return nil, newError(CodeUnavailable, "render pdf: "+err.Error(), err)
	}
	return pdf, nil
}

func (s *Service) Health(ctx context.Context) HealthReport {
	report := HealthReport{Status: "healthy", Timestamp: s.now(), Components: map[string]string{}}

	if err := s.store.Ping(ctx); err != nil {
		report.Status = "degraded"
		report.Components["store"] = "error: " + err.Error()
	} else {
		report.Components["store"] = "ok"
	}

	if kb := s.knowledge.Current(); kb != nil && kb.Version != "" {
		report.Components["knowledge_base"] = kb.Version
	} else {
		report.Status = "degraded"
		report.Components["knowledge_base"] = "not loaded"
	}

	switch s.cache.(type) {
	case cache.Noop:
		report.Components["cache"] = "disabled"
	default:
		if err := s.cache.Ping(ctx); err != nil {
			report.Components["cache"] = "error: " + err.Error()
		} else {
			report.Components["cache"] = "ok"
		}
	}

	report.Components["letter_drafter"] = s.drafter.Mode()
	if s.pdf == nil {
		report.Components["pdf_renderer"] = "disabled"
	} else {
		report.Components["pdf_renderer"] = "ok"
	}
	return report
}

// analyze scores ec, consulting the cache unless force is set, then plans.
// Cache key, scoring and planning all read one knowledge snapshot. Cache
// failures are logged and treated as misses.
func (s *Service) analyze(ctx context.Context, ec claims.ExtractedCase, opts strategy.Options, force bool) (claims.CaseAnalysis, claims.Strategy, error) {
	start := time.Now()
	kind := string(ec.DocumentKind)

	kb := s.knowledge.Current()
	snapshot := knowledge.Static(kb)
	engine, planner := scoring.NewEngine(snapshot), strategy.NewPlanner(snapshot)

	var key string
	if kb != nil {
		var err error
		if key, err = cache.Fingerprint(ec, kb.Version); err != nil {
			s.log.Warn("analysis fingerprint failed", zap.Error(err))
			key = ""
		}
	}

	var (
		a   claims.CaseAnalysis
		err error
	)
	hit := false
	if key != "" && !force {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("analysis cache read failed", zap.Error(err))
		case ok:
			a, hit = cached, true
		}
		s.metrics.ObserveCache(hit)
	}

	if !hit {
		a, err = engine.Analyze(ec)
		if err != nil {
			s.metrics.ObserveAnalysis(kind, "error", time.Since(start).Seconds())
			return claims.CaseAnalysis{}, claims.Strategy{}, newError(CodeInternal, err.Error(), err)
		}
		if key != "" {
			if err := s.cache.Set(ctx, key, a); err != nil {
				s.log.Warn("analysis cache write failed", zap.Error(err))
			}
		}
	}

	st, err := planner.GenerateWith(ec, a, opts)
	if err != nil {
		s.metrics.ObserveAnalysis(kind, "error", time.Since(start).Seconds())
		return claims.CaseAnalysis{}, claims.Strategy{}, newError(CodeInternal, err.Error(), err)
	}
	outcome := "ok"
	if hit {
		outcome = "cached"
	}
	s.metrics.ObserveAnalysis(kind, outcome, time.Since(start).Seconds())
	return a, st, nil
}

// prepare normalizes and validates a case and resolves the approach preference.
func prepare(ec claims.ExtractedCase, preferred string) (claims.ExtractedCase, strategy.Options, error) {
	ec = ec.Normalize()
	if err := ec.Validate(); err != nil {
		return claims.ExtractedCase{}, strategy.Options{}, validationError(err)
	}
	var opts strategy.Options
	if preferred != "" {
		a := claims.Approach(preferred)
		if !a.Valid() {
			return claims.ExtractedCase{}, strategy.Options{}, validationError(fmt.Errorf("unknown strategy_preference %q", preferred))
		}
		opts.Preferred = &a
	}
	return ec, opts, nil
}

func applyParameters(ec claims.ExtractedCase, params map[string]any) (claims.ExtractedCase, error) {
	raw, ok := params["extraction_confidence"]
	if !ok {
		return ec, nil
	}
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case int:
		v = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return ec, validationError(fmt.Errorf("parameters.extraction_confidence: %w", err))
		}
		v = parsed
	default:
		return ec, validationError(fmt.Errorf("parameters.extraction_confidence must be a number, got %T", raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return ec, validationError(fmt.Errorf("parameters.extraction_confidence must be within [0,1], got %v", v))
	}
	ec.ExtractionConfidence = v
	return ec, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

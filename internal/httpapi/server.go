// Package httpapi serves the case service over JSON HTTP.
package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/letter"
	"github.com/joelkehle/claim-advocate/internal/metrics"
	"github.com/joelkehle/claim-advocate/internal/service"
)

const maxBodyBytes = 1 << 20

type Config struct {
	Service *service.Service
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

type Server struct {
	svc     *service.Service
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewServer(cfg Config) http.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: cfg.Service, metrics: cfg.Metrics, log: log.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/metrics", cfg.Metrics.Handler().ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/upload", s.handleCreateCase)
		r.Route("/cases", func(r chi.Router) {
			r.Get("/", s.handleListCases)
			r.Post("/", s.handleCreateCase)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCase)
				r.Delete("/", s.handleDeleteCase)
				r.Patch("/status", s.handleUpdateStatus)
				r.Post("/analyze", s.handleReanalyze)
				r.Post("/letter", s.handleLetter)
				r.Get("/letter-pdf", s.handleLetterPDF)
				r.Post("/letter-pdf", s.handleLetterPDF)
				r.Get("/letter-preview", s.handleLetterPreview)
			})
		})
	})
	return r
}

// observe records per-route metrics and an access log line.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(route, r.Method, status, elapsed.Seconds())
		s.log.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	se := service.AsError(err)
	if se.Status >= 500 {
		s.log.Error("request failed", zap.String("code", se.Code), zap.Error(err))
	}
	writeJSON(w, se.Status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    se.Code,
			"message": se.Message,
		},
	})
}

func badRequest(message string, err error) error {
	return &service.Error{Code: service.CodeValidation, Message: message, Status: http.StatusBadRequest, Err: err}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		}
		return badRequest("read body: "+err.Error(), err)
	}
	if len(blob) == 0 {
		return nil
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return badRequest("invalid json: "+err.Error(), err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health(r.Context())
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var ec claims.ExtractedCase
	if err := decodeBody(w, r, &ec); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.svc.CreateCase(r.Context(), ec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.svc.ListCases(r.Context(), claims.CaseStatus(r.URL.Query().Get("status")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.GetCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeleteCase(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "case_id": id})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status claims.CaseStatus `json:"status"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleReanalyze(w http.ResponseWriter, r *http.Request) {
	var req service.AnalysisRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.svc.Reanalyze(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	var req letter.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.svc.DraftLetter(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"case_id":      l.CaseID,
		"letter":       l,
		"generated_at": l.GeneratedAt,
	})
}

func (s *Server) handleLetterPDF(w http.ResponseWriter, r *http.Request) {
	var req letter.Request
	if r.Method == http.MethodPost {
		if err := decodeBody(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	}
	id := chi.URLParam(r, "id")
	pdf, _, err := s.svc.RenderLetterPDF(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="claim_letter_%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleLetterPreview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.RenderLetterHTML(r.Context(), chi.URLParam(r, "id"), letter.Request{})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

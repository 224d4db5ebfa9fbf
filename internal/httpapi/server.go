// Package httpapi exposes the evaluation pipeline and the reference
// directory over JSON HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smartacquirer/smartacquirer/internal/pipeline"
	"github.com/smartacquirer/smartacquirer/internal/render"
	"github.com/smartacquirer/smartacquirer/internal/store"
)

type Evaluator interface {
	Evaluate(ctx context.Context, req pipeline.Request) (*pipeline.ResponseEnvelope, error)
}

type PDFRenderer interface {
	Render(ctx context.Context, markdown string, meta render.Meta) ([]byte, error)
}

type Server struct {
	evaluator Evaluator
	store     *store.Store
	pdf       PDFRenderer
}

// NewServer builds the API handler. The store may be nil (no persistence, no
// directory lookups) and the PDF renderer may be nil (no PDF report format).
func NewServer(evaluator Evaluator, st *store.Store, pdf PDFRenderer) http.Handler {
	s := &Server{evaluator: evaluator, store: st, pdf: pdf}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/competitors/", s.handleCompetitors)
	mux.HandleFunc("/v1/acquisition-targets/", s.handleAcquisitionTargets)
	mux.HandleFunc("/v1/evaluations", s.handleListEvaluations)
	mux.HandleFunc("/v1/evaluations/", s.handleEvaluationByID)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "failed to read request body")
		return
	}
	var req pipeline.Request
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, 400, "invalid request json: "+err.Error())
		return
	}

	env, err := s.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		log.Printf("smartacquirer evaluate_failed company=%q err=%q", req.CompanyName, err.Error())
		writeError(w, 500, err.Error())
		return
	}

	if s.store != nil {
		rec := evaluationRecord(env)
		if err := s.store.SaveEvaluation(r.Context(), rec); err != nil {
			// Persistence is best-effort; the evaluation itself succeeded.
			log.Printf("smartacquirer evaluation_save_failed company=%q err=%q", req.CompanyName, err.Error())
		} else {
			env.EvaluationID = rec.ID
		}
	}
	writeJSON(w, 200, env)
}

func evaluationRecord(env *pipeline.ResponseEnvelope) *store.Evaluation {
	decisionLabel := ""
	if env.Explanation != nil {
		decisionLabel = env.Explanation.Decision
	}
	payload, _ := json.Marshal(env)
	return &store.Evaluation{
		Company:              env.CompanyName,
		Acquirer:             env.AcquirerName,
		Decision:             decisionLabel,
		AcquisitionScore:     env.DecisionScore.AcquisitionScore,
		MnaLikelihood:        env.MnaLikelihood,
		ValuationForecastUSD: env.ValuationForecastUSD,
		CombinedRiskScore:    env.Risk.CombinedRiskScore,
		Degraded:             env.Metadata.Degraded,
		CreatedAt:            env.Metadata.CompletedAt,
		Payload:              payload,
		ReportMarkdown:       env.ReportMarkdown,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{
		"status": "healthy",
		"components_loaded": map[string]bool{
			"evaluator": s.evaluator != nil,
			"store":     s.store != nil,
			"pdf":       s.pdf != nil,
		},
	})
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		writeError(w, 503, "reference directory not loaded")
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/competitors/"), "/")
	if name == "" {
		writeError(w, 404, "company name required")
		return
	}
	industry := strings.TrimSpace(r.URL.Query().Get("industry"))
	competitors, err := s.store.FindCompetitors(r.Context(), name, industry)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"competitors": competitors})
}

type acquisitionTargetINR struct {
	store.AcquisitionTarget
	PriceAmountINR float64 `json:"price_amount_inr,omitempty"`
}

func (s *Server) handleAcquisitionTargets(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		writeError(w, 503, "reference directory not loaded")
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/acquisition-targets/"), "/")
	if name == "" {
		writeError(w, 404, "acquirer name required")
		return
	}
	targets, err := s.store.FindAcquisitionTargets(r.Context(), name)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	out := make([]acquisitionTargetINR, 0, len(targets))
	for _, t := range targets {
		item := acquisitionTargetINR{AcquisitionTarget: t}
		if t.PriceAmount > 0 && t.PriceCurrencyCode == "USD" {
			item.PriceAmountINR = pipeline.ConvertToINR(t.PriceAmount)
		}
		out = append(out, item)
	}
	writeJSON(w, 200, map[string]any{"targets": out})
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		writeError(w, 503, "evaluation history not available")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	evals, err := s.store.ListEvaluations(r.Context(), limit)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"evaluations": evals})
}

func (s *Server) handleEvaluationByID(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		writeError(w, 503, "evaluation history not available")
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/evaluations/"), "/")
	if rest == "" {
		writeError(w, 404, "evaluation id required")
		return
	}
	id, wantReport := rest, false
	if strings.HasSuffix(rest, "/report") {
		id = strings.TrimSuffix(rest, "/report")
		id = strings.TrimSuffix(id, "/")
		wantReport = true
	}

	eval, err := s.store.GetEvaluation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, 404, "evaluation not found")
		return
	}
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}

	if !wantReport {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write(eval.Payload)
		return
	}
	s.serveReport(w, r, eval)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, eval *store.Evaluation) {
	meta := render.Meta{
		Company:     eval.Company,
		Acquirer:    eval.Acquirer,
		Decision:    eval.Decision,
		CompletedAt: eval.CreatedAt,
	}
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "", "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(eval.ReportMarkdown))
	case "html":
		doc, err := render.HTML(eval.ReportMarkdown, meta)
		if err != nil {
			writeError(w, 500, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(doc))
	case "pdf":
		if s.pdf == nil {
			writeError(w, 503, "pdf rendering not available")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()
		pdf, err := s.pdf.Render(ctx, eval.ReportMarkdown, meta)
		if err != nil {
			writeError(w, 500, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(200)
		_, _ = w.Write(pdf)
	default:
		writeError(w, 400, "unsupported format")
	}
}

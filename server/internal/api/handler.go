package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ivfodds/ivfodds/pkg/estimate"
	"github.com/ivfodds/ivfodds/pkg/formula"
	"github.com/ivfodds/ivfodds/pkg/score"
	"github.com/ivfodds/ivfodds/pkg/types"
	"github.com/ivfodds/ivfodds/server/internal/metrics"
)

const maxBodyBytes = 64 << 10

// Recorder receives estimate outcomes and wraps routes for request metrics.
// *metrics.Registry implements it; a nil Recorder disables both.
type Recorder interface {
	IncEstimate(outcome string)
	Instrument(route string, next http.Handler) http.Handler
}

// requestIDHeader carries the per-request UUID on every response.
const requestIDHeader = "X-Request-ID"

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	est *estimate.Estimator
	rec Recorder
	mw  []func(http.Handler) http.Handler
	mux *http.ServeMux
}

// New creates a Handler bound to est and registers all routes.
//
// Each middleware in mw (auth, for example) wraps every route inside the
// Recorder's instrumentation, so requests it rejects are still counted.
func New(est *estimate.Estimator, rec Recorder, mw ...func(http.Handler) http.Handler) http.Handler {
	h := &Handler{est: est, rec: rec, mw: mw, mux: http.NewServeMux()}

	h.handle("/api/v1/estimate", h.estimate)
	h.handle("/api/v1/formulas", h.formulas)
	h.handle("/api/v1/reasons", h.reasons)
	h.handle("/api/v1/health", h.health)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(requestIDHeader, uuid.NewString())
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handle(route string, fn http.HandlerFunc) {
	var next http.Handler = fn
	for i := len(h.mw) - 1; i >= 0; i-- {
		next = h.mw[i](next)
	}
	if h.rec != nil {
		next = h.rec.Instrument(route, next)
	}
	h.mux.Handle(route, next)
}

func (h *Handler) count(outcome string) {
	if h.rec != nil {
		h.rec.IncEstimate(outcome)
	}
}

// --- route handlers ---------------------------------------------------------

// estimate serves POST /api/v1/estimate.
func (h *Handler) estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := w.Header().Get(requestIDHeader)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := decodeRequest(r)
	if err != nil {
		h.count(metrics.OutcomeInvalidInput)
		slog.Debug("estimate: bad request body", "request_id", id, "err", err)
		jsonResp(w, http.StatusBadRequest, errorResponse{Error: err.Error(), RequestID: id})
		return
	}

	res, err := h.est.Estimate(req)
	if err != nil {
		code, outcome, msg := classify(err)
		h.count(outcome)
		if code >= http.StatusInternalServerError {
			slog.Error("estimate failed", "request_id", id, "err", err)
		} else {
			slog.Debug("estimate rejected", "request_id", id, "status", code, "err", err)
		}
		jsonResp(w, code, errorResponse{Error: msg, RequestID: id})
		return
	}

	h.count(metrics.OutcomeOK)
	slog.Debug("estimate served",
		"request_id", id,
		"formula", res.Formula.Index,
		"success_rate", res.SuccessRate.String(),
	)
	jsonResp(w, http.StatusOK, toEstimateResponse(id, req, res))
}

// formulas serves GET /api/v1/formulas.
func (h *Handler) formulas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows := h.est.Table().Rows()
	out := make([]FormulaResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toFormulaResponse(row))
	}
	jsonResp(w, http.StatusOK, FormulasResponse{Count: len(out), Formulas: out})
}

// reasons serves GET /api/v1/reasons.
func (h *Handler) reasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	out := make([]string, 0, len(types.Reasons))
	for _, reason := range types.Reasons {
		out = append(out, string(reason))
	}
	jsonResp(w, http.StatusOK, ReasonsResponse{Reasons: out, NoReason: string(types.ReasonNone)})
}

// health serves GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok", FormulaRows: h.est.Table().Len()})
}

// --- request decoding -------------------------------------------------------

// decodeRequest reads either a JSON body or a form-encoded body.
func decodeRequest(r *http.Request) (estimate.Request, error) {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return estimate.Request{}, fmt.Errorf("invalid content type %q", ct)
		}
		if mt == "application/x-www-form-urlencoded" {
			return decodeForm(r)
		}
	}

	var body EstimateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return estimate.Request{}, fmt.Errorf("decode JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return estimate.Request{}, errors.New("decode JSON body: unexpected data after the JSON object")
	}
	return estimate.Request{
		Age:              body.Age,
		Weight:           body.Weight,
		HeightFeet:       body.HeightFeet,
		HeightInches:     body.HeightInches,
		EggSource:        body.EggSource,
		IVFCycles:        body.IVFCycles,
		Reasons:          body.Reasons,
		PriorPregnancies: body.PriorPregnancies,
		PriorBirths:      body.PriorBirths,
	}, nil
}

// decodeForm mirrors the calculator form: integers as text, one "reason"
// value per ticked box.
func decodeForm(r *http.Request) (estimate.Request, error) {
	if err := r.ParseForm(); err != nil {
		return estimate.Request{}, fmt.Errorf("parse form: %w", err)
	}
	var (
		req  estimate.Request
		errs []string
	)
	ints := []struct {
		name     string
		dst      *int
		required bool
	}{
		{"age", &req.Age, true},
		{"weight", &req.Weight, true},
		{"height_feet", &req.HeightFeet, true},
		{"height_inches", &req.HeightInches, false},
		{"ivf_cycles", &req.IVFCycles, false},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(r.PostForm.Get(f.name))
		if raw == "" {
			if f.required {
				errs = append(errs, f.name+" is required")
			}
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s %q is not a whole number", f.name, raw))
			continue
		}
		*f.dst = n
	}
	if len(errs) > 0 {
		return estimate.Request{}, errors.New(strings.Join(errs, "; "))
	}

	req.EggSource = r.PostForm.Get("egg_source")
	req.Reasons = append(append([]string(nil), r.PostForm["reason"]...), r.PostForm["reasons"]...)
	req.PriorPregnancies = r.PostForm.Get("prior_pregnancies")
	req.PriorBirths = r.PostForm.Get("prior_births")
	return req, nil
}

// classify maps an estimate error to a status code, metrics outcome and
// client-facing message.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest, metrics.OutcomeInvalidInput, err.Error()
	case errors.Is(err, types.ErrNoMatch):
		return http.StatusUnprocessableEntity, metrics.OutcomeNoMatch,
			"no formula matches these inputs; check your inputs"
	case errors.Is(err, types.ErrAmbiguous):
		return http.StatusInternalServerError, metrics.OutcomeError,
			"formula table is inconsistent"
	default:
		return http.StatusInternalServerError, metrics.OutcomeError, "internal error"
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toFormulaResponse(row *formula.Row) FormulaResponse {
	return FormulaResponse{
		Index:        row.Index,
		Label:        row.Label,
		UsingOwnEggs: row.UsingOwnEggs,
		AttemptedIVF: row.AttemptedIVF,
		ReasonKnown:  row.ReasonKnown,
	}
}

func toEstimateResponse(id string, req estimate.Request, res *estimate.Result) EstimateResponse {
	return EstimateResponse{
		RequestID:   id,
		SuccessRate: res.SuccessRate.StringFixed(score.RatePlaces),
		BMI:         res.BMI.StringFixed(2),
		BMICategory: score.BMICategory(res.BMI),
		Score:       res.Components.Score.StringFixed(6),
		Formula:     toFormulaResponse(res.Formula),
		Breakdown:   contributions(res.Components),
		Hints:       computeHints(req, res),
	}
}

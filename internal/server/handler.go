// Package server exposes RBO comparisons over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/ricesearch/rbo/internal/batch"
	"github.com/ricesearch/rbo/internal/cache"
	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
	"github.com/ricesearch/rbo/internal/pkg/logger"
	"github.com/ricesearch/rbo/internal/rankfile"
	"github.com/ricesearch/rbo/internal/rbo"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Handler provides HTTP handlers for RBO comparisons.
type Handler struct {
	defaults batch.Config
	cache    cache.Cache
	log      *logger.Logger
	version  string
}

// NewHandler creates a handler. Requests that omit p or mode use defaults.
// c may be nil to disable caching.
func NewHandler(defaults batch.Config, c cache.Cache, log *logger.Logger, version string) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		defaults: defaults,
		cache:    c,
		log:      log.WithComponent("http"),
		version:  version,
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/rbo", h.handleCompare)
	mux.HandleFunc("POST /v1/rbo/scores", h.handleCompareScores)
	mux.HandleFunc("POST /v1/rbo/batch", h.handleBatch)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// CompareRequest compares two ranked lists.
type CompareRequest struct {
	Left  rankfile.List `json:"left"`
	Right rankfile.List `json:"right"`
	P     *float64      `json:"p,omitempty"`
	Mode  string        `json:"mode,omitempty"`
}

// CompareScoresRequest compares two score mappings.
type CompareScoresRequest struct {
	Left  rankfile.Scores `json:"left"`
	Right rankfile.Scores `json:"right"`
	P     *float64        `json:"p,omitempty"`
	Mode  string          `json:"mode,omitempty"`
}

// CompareResponse carries the three estimates of one comparison.
type CompareResponse struct {
	rbo.Result
	P      float64 `json:"p"`
	Mode   string  `json:"mode"`
	Cached bool    `json:"cached"`
}

// BatchResponse carries per-pair outcomes in request order.
type BatchResponse struct {
	Outcomes []batch.Outcome `json:"outcomes"`
	Summary  batch.Summary   `json:"summary"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.compare(w, r, req.P, req.Mode, req.Left.Ranked(), req.Right.Ranked())
}

func (h *Handler) handleCompareScores(w http.ResponseWriter, r *http.Request) {
	var req CompareScoresRequest
	if !h.decode(w, r, &req) {
		return
	}

	cfg, err := h.configFor(req.P, req.Mode)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	// Ranking the scores validates them, so check p first.
	left, err := rbo.SortScores(map[string]float64(req.Left))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	right, err := rbo.SortScores(map[string]float64(req.Right))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	h.compareWith(w, r, cfg, left, right)
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request, p *float64, mode string, left, right rbo.List[string]) {
	cfg, err := h.configFor(p, mode)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	h.compareWith(w, r, cfg, left, right)
}

func (h *Handler) compareWith(w http.ResponseWriter, r *http.Request, cfg batch.Config, left, right rbo.List[string]) {
	runner, err := batch.NewRunner(cfg, h.cache, h.log)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	res, cached, err := runner.Compare(r.Context(), left, right)
	if err != nil {
		h.log.WithError(err).Debug("Comparison rejected")
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompareResponse{
		Result: res,
		P:      cfg.P,
		Mode:   cfg.Mode.String(),
		Cached: cached,
	})
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var doc rankfile.Document
	if !h.decode(w, r, &doc) {
		return
	}
	doc.FillIDs()

	cfg, err := batch.ConfigFor(&doc, h.defaults)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	runner, err := batch.NewRunner(cfg, h.cache, h.log)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	outcomes, summary, err := runner.Run(r.Context(), batch.FromDocument(&doc))
	if err != nil {
		apperrors.WriteError(w, apperrors.TimeoutError("batch"))
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{Outcomes: outcomes, Summary: summary})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// configFor applies per-request overrides to the defaults.
func (h *Handler) configFor(p *float64, mode string) (batch.Config, error) {
	return batch.ConfigFor(&rankfile.Document{P: p, Mode: mode}, h.defaults)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

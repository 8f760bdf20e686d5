package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/modules/borrowers"
)

// Handlers contains HTTP handlers for the assessment API
type Handlers struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandlers creates a new assessment handlers instance
func NewHandlers(service *Service, repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "assessment").Logger(),
	}
}

// RegisterRoutes mounts the assessment routes on the given router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/assess", h.HandleAssess)
	r.Post("/batch-assess", h.HandleBatchAssess)
	r.Get("/statistics/risk-distribution", h.HandleRiskDistribution)
	r.Route("/{borrowerID}", func(r chi.Router) {
		r.Get("/latest", h.HandleGetLatest)
		r.Get("/history", h.HandleGetHistory)
	})
}

type assessRequest struct {
	BorrowerID    string `json:"borrower_id"`
	IncludeVision *bool  `json:"include_vision,omitempty"`
	IncludeNotes  *bool  `json:"include_notes,omitempty"`
}

func (req assessRequest) options() Options {
	opts := DefaultOptions()
	if req.IncludeVision != nil {
		opts.IncludeVision = *req.IncludeVision
	}
	if req.IncludeNotes != nil {
		opts.IncludeNotes = *req.IncludeNotes
	}
	return opts
}

// HandleAssess runs a full assessment for one borrower
// POST /api/assessments/assess
func (h *Handlers) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BorrowerID == "" {
		writeError(w, http.StatusBadRequest, "borrower_id is required")
		return
	}

	assessment, err := h.service.Assess(r.Context(), req.BorrowerID, req.options())
	if err != nil {
		if errors.Is(err, borrowers.ErrBorrowerNotFound) {
			writeError(w, http.StatusNotFound, "Borrower not found")
			return
		}
		h.log.Error().Err(err).Str("borrower_id", req.BorrowerID).Msg("Assessment failed")
		writeError(w, http.StatusInternalServerError, "Assessment failed")
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

type batchAssessRequest struct {
	BorrowerIDs   []string `json:"borrower_ids"`
	IncludeVision *bool    `json:"include_vision,omitempty"`
	IncludeNotes  *bool    `json:"include_notes,omitempty"`
}

// HandleBatchAssess runs assessments for multiple borrowers
// POST /api/assessments/batch-assess
func (h *Handlers) HandleBatchAssess(w http.ResponseWriter, r *http.Request) {
	var req batchAssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.BorrowerIDs) == 0 {
		writeError(w, http.StatusBadRequest, "borrower_ids is required")
		return
	}

	opts := assessRequest{IncludeVision: req.IncludeVision, IncludeNotes: req.IncludeNotes}.options()
	result := h.service.BatchAssess(r.Context(), req.BorrowerIDs, opts)
	if result.Assessments == nil {
		result.Assessments = []domain.Assessment{}
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetLatest returns a borrower's most recent assessment
// GET /api/assessments/{borrowerID}/latest
func (h *Handlers) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	assessment, err := h.repo.GetLatest(borrowerID)
	if err != nil {
		h.log.Error().Err(err).Str("borrower_id", borrowerID).Msg("Failed to get latest assessment")
		writeError(w, http.StatusInternalServerError, "Failed to get latest assessment")
		return
	}
	if assessment == nil {
		writeError(w, http.StatusNotFound, "No assessment found")
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

// HandleGetHistory returns a borrower's assessment history, most recent first
// GET /api/assessments/{borrowerID}/history?limit=20
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	limit := 20
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	history, err := h.repo.GetHistory(borrowerID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("borrower_id", borrowerID).Msg("Failed to get assessment history")
		writeError(w, http.StatusInternalServerError, "Failed to get assessment history")
		return
	}
	if history == nil {
		history = []domain.Assessment{}
	}

	writeJSON(w, http.StatusOK, history)
}

// HandleRiskDistribution returns borrower counts per risk tier
// GET /api/assessments/statistics/risk-distribution
func (h *Handlers) HandleRiskDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.repo.RiskDistribution()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get risk distribution")
		writeError(w, http.StatusInternalServerError, "Failed to get risk distribution")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"distribution": distribution,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pip3-kill-me/ebay-scraper/internal/database"
	"github.com/pip3-kill-me/ebay-scraper/internal/jobs"
	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// RunStore reads persisted analysis runs. *database.DB implements it; a nil
// store means persistence is disabled and the API serves memory only.
type RunStore interface {
	GetRun(ctx context.Context, id uuid.UUID) (*database.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]*database.AnalysisRun, error)
	GetRunListings(ctx context.Context, runID uuid.UUID) ([]models.AnalyzedListing, error)
	GetRunStats(ctx context.Context) (*database.RunStats, error)
}

type Handlers struct {
	jobs   *jobs.Manager
	store  RunStore
	logger *slog.Logger
}

func NewHandlers(jobs *jobs.Manager, store RunStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobs,
		store:  store,
		logger: logger,
	}
}

// CreateAnalysisRequest is a new price-per-TB analysis request.
type CreateAnalysisRequest struct {
	SearchTerm    string  `json:"search_term"`
	MinPricePerTB float64 `json:"min_price_per_tb"`
	MaxPricePerTB float64 `json:"max_price_per_tb"`
	DesiredCount  int     `json:"desired_results"`
}

// CreateAnalysisResponse confirms the queued analysis.
type CreateAnalysisResponse struct {
	AnalysisID string `json:"analysis_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// CreateAnalysis handles new analysis submissions.
func (h *Handlers) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SearchTerm == "" {
		h.respondError(w, http.StatusBadRequest, "search_term is required")
		return
	}

	if req.DesiredCount <= 0 {
		req.DesiredCount = 5
	}

	bounds := models.Bounds{
		MinPricePerTB: req.MinPricePerTB,
		MaxPricePerTB: req.MaxPricePerTB,
		DesiredCount:  req.DesiredCount,
	}

	job, err := h.jobs.CreateJob(req.SearchTerm, bounds)
	if err != nil {
		h.logger.Error("failed to create analysis", "error", err)
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateAnalysisResponse{
		AnalysisID: job.ID.String(),
		Status:     string(job.Status),
		Message:    "Analysis queued successfully",
	})
}

// GetAnalysis handles analysis status retrieval. Runs from before the last
// restart are no longer in memory, so misses fall back to the database.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := h.analysisID(w, r)
	if !ok {
		return
	}

	if job, found := h.jobs.GetJob(id); found {
		h.respondJSON(w, http.StatusOK, job)
		return
	}

	if h.store != nil {
		run, err := h.store.GetRun(r.Context(), id)
		if err != nil {
			h.logger.Error("failed to load run", "id", id, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to load analysis")
			return
		}
		if run != nil {
			h.respondJSON(w, http.StatusOK, run)
			return
		}
	}

	h.respondError(w, http.StatusNotFound, "analysis not found")
}

// ListAnalyses handles listing all known analyses, newest first.
func (h *Handlers) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.ListJobs())
}

// GetAnalysisListings returns the ranked listings of a finished analysis,
// read back from the database when the job is no longer held in memory.
func (h *Handlers) GetAnalysisListings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.analysisID(w, r)
	if !ok {
		return
	}

	listings, found := h.jobs.JobListings(id)
	if !found && h.store != nil {
		run, err := h.store.GetRun(r.Context(), id)
		if err != nil {
			h.logger.Error("failed to load run", "id", id, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to load analysis")
			return
		}
		if run != nil {
			listings, err = h.store.GetRunListings(r.Context(), id)
			if err != nil {
				h.logger.Error("failed to load run listings", "id", id, "error", err)
				h.respondError(w, http.StatusInternalServerError, "failed to load listings")
				return
			}
			found = true
		}
	}
	if !found {
		h.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if listings == nil {
		listings = []models.AnalyzedListing{}
	}

	h.respondJSON(w, http.StatusOK, listings)
}

// ListRuns returns the persisted run history, newest first.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusServiceUnavailable, "persistence is not enabled")
		return
	}

	runs, err := h.store.ListRuns(r.Context(), 50)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*database.AnalysisRun{}
	}

	h.respondJSON(w, http.StatusOK, runs)
}

// StatsResponse combines the live job table with the persisted run totals.
type StatsResponse struct {
	Jobs jobs.Stats         `json:"jobs"`
	Runs *database.RunStats `json:"runs,omitempty"`
}

// GetStats reports job table and queue totals, plus run history totals when
// the database is enabled.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Jobs: h.jobs.Stats()}

	if h.store != nil {
		runStats, err := h.store.GetRunStats(r.Context())
		if err != nil {
			h.logger.Error("failed to load run stats", "error", err)
		} else {
			resp.Runs = runStats
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) analysisID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "analysisID")
	if raw == "" {
		h.respondError(w, http.StatusBadRequest, "analysis ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "analysis ID is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// internal/server/handlers.go

// Package server exposes the forecasting engine over HTTP: forecast
// creation and retrieval, the brief-editing catalog, and the health and
// metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/common/observability"
	"campaign-forecaster/internal/engine"
	"campaign-forecaster/internal/models"
	"campaign-forecaster/internal/narrative"
	"campaign-forecaster/internal/reportstore"
	"campaign-forecaster/pkg/catalog"
)

// maxBodyBytes caps forecast request bodies; briefs are small.
const maxBodyBytes = 1 << 20

// narrativePatchTimeout bounds the background narrative write, covering the
// collaborator call and the store update together.
const narrativePatchTimeout = 30 * time.Second

type Handler struct {
	engine    *engine.Engine
	store     *reportstore.Store
	narrative *narrative.Client
	catalog   *catalog.Catalog
	obs       *observability.Observability
	logger    logger.Logger

	// enrichments tracks in-flight narrative goroutines so tests and
	// graceful shutdown can wait for them.
	enrichments sync.WaitGroup
}

func NewHandler(eng *engine.Engine, store *reportstore.Store, nc *narrative.Client, cat *catalog.Catalog, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		engine:    eng,
		store:     store,
		narrative: nc,
		catalog:   cat,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// CreateForecast runs a forecast for the posted brief, persists the report
// and returns it immediately. Narrative text is patched in afterwards by a
// background enrichment, so callers can render the numbers without waiting
// on the text-generation collaborator.
func (h *Handler) CreateForecast(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.NewStructuralInputError("unreadable request body"))
		return
	}

	problems, err := validateBriefJSON(body)
	if err != nil {
		writeError(w, errors.NewStructuralInputError("request body is not valid JSON"))
		return
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    string(errors.ErrCodeStructuralInputInvalid),
			Message: "Campaign brief failed validation",
			Meta:    map[string]interface{}{"violations": problems},
		}})
		return
	}

	var brief models.CampaignBrief
	if err := json.Unmarshal(body, &brief); err != nil {
		writeError(w, errors.NewStructuralInputError("request body is not valid JSON"))
		return
	}

	start := time.Now()
	report, err := h.engine.Forecast(r.Context(), brief)
	if err != nil {
		h.obs.RecordForecast(r.Context(), "failed")
		writeError(w, err)
		return
	}
	h.obs.RecordForecast(r.Context(), "success")
	h.obs.RecordForecastDuration(r.Context(), time.Since(start), "success")

	// Ship deterministic narrative text right away; the collaborator's
	// version overlays it asynchronously.
	report.Narrative = narrative.Fallback(report)

	if err := h.store.Save(r.Context(), report); err != nil {
		writeError(w, err)
		return
	}

	h.enrichments.Add(1)
	go h.enrich(report)

	writeJSON(w, http.StatusCreated, report)
}

// enrich fills the narrative fields after the response has gone out. It owns
// its own deadline and never affects the stored numeric report beyond the
// narrative section.
func (h *Handler) enrich(report *models.CampaignReport) {
	defer h.enrichments.Done()

	ctx, cancel := context.WithTimeout(context.Background(), narrativePatchTimeout)
	defer cancel()

	text := h.narrative.Enrich(ctx, report)
	if err := h.store.UpdateNarrative(ctx, report.ID, text); err != nil {
		h.logger.Warn("narrative patch failed", map[string]interface{}{
			"reportId": report.ID,
			"error":    err.Error(),
		})
	}
}

// Drain blocks until all in-flight narrative enrichments have finished.
// Called during graceful shutdown so queued narrative patches are not lost.
func (h *Handler) Drain() {
	h.enrichments.Wait()
}

// GetForecast returns a stored report by id.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetCatalog returns the brief-editing enumerations.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog)
}

// internal/engine/engine.go

// Package engine orchestrates a complete forecast: structural validation,
// modifier composition, budget allocation, KPI projection, anomaly flagging
// and derived insights, assembled into one CampaignReport.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/common/metrics"
	"campaign-forecaster/internal/engine/allocation"
	"campaign-forecaster/internal/engine/insights"
	"campaign-forecaster/internal/engine/modifiers"
	"campaign-forecaster/internal/engine/projection"
	"campaign-forecaster/internal/engine/validation"
	"campaign-forecaster/internal/models"
)

// Confidence penalties per event class. The score starts at 1.0 and never
// drops below the floor, so even a heavily flagged report keeps a usable
// ranking signal.
const (
	confidenceFloor      = 0.2
	fallbackPenalty      = 0.04
	clampPenalty         = 0.06
	unsettledPenalty     = 0.10
	anomalyLowPenalty    = 0.02
	anomalyMediumPenalty = 0.05
	anomalyHighPenalty   = 0.10
)

// Engine is stateless across calls; every forecast is a pure function of
// the brief and the immutable benchmark tables, so concurrent use needs no
// locking.
type Engine struct {
	repo      *benchmarks.Repository
	pipeline  *modifiers.Pipeline
	allocator *allocation.Allocator
	projector *projection.Projector
	validator *validation.Validator
	insights  *insights.Generator
	logger    logger.Logger
}

func New(repo *benchmarks.Repository, cfg config.EngineConfig, log logger.Logger) *Engine {
	return &Engine{
		repo:      repo,
		pipeline:  modifiers.NewPipeline(repo, cfg, log),
		allocator: allocation.NewAllocator(repo, cfg, log),
		projector: projection.NewProjector(repo, log),
		validator: validation.NewValidator(repo, cfg, log),
		insights:  insights.NewGenerator(repo, log),
		logger:    log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// Forecast runs the full pipeline for one brief. Everything except the
// report id and timestamp is deterministic for a given brief and benchmark
// version; the narrative map is left nil for the enrichment stage.
func (e *Engine) Forecast(ctx context.Context, brief models.CampaignBrief) (*models.CampaignReport, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.validator.CheckStructure(brief); err != nil {
		e.recordFailure(err)
		return nil, err
	}

	composite := e.pipeline.Compose(brief)

	allocRes, err := e.allocator.Allocate(brief)
	if err != nil {
		e.recordFailure(err)
		return nil, err
	}

	projRes, err := e.projector.Project(brief, allocRes.Allocation, composite)
	if err != nil {
		e.recordFailure(err)
		return nil, err
	}

	anomalies := e.validator.Flag(brief, projRes.Totals, projRes.PerPlatform)
	derived := e.insights.Derive(brief, projRes.Totals, composite.Applied)
	recommendations := e.insights.Recommend(brief, derived, anomalies, allocRes.Settled)

	fallbacks := make([]string, 0, len(composite.Fallbacks)+len(allocRes.Fallbacks)+len(projRes.Fallbacks))
	fallbacks = append(fallbacks, composite.Fallbacks...)
	fallbacks = append(fallbacks, allocRes.Fallbacks...)
	fallbacks = append(fallbacks, projRes.Fallbacks...)

	report := &models.CampaignReport{
		ID:               uuid.New().String(),
		BenchmarkVersion: e.repo.Version(),
		Brief:            brief,
		Allocation:       allocRes.Allocation,
		Totals:           projRes.Totals,
		PerPlatform:      projRes.PerPlatform,
		Anomalies:        anomalies,
		Insights:         derived,
		Recommendations:  recommendations,
		Confidence:       confidence(fallbacks, composite.Clamps, anomalies, allocRes.Settled),
		Diagnostics: models.Diagnostics{
			AppliedModifiers:   composite.Applied,
			Clamps:             composite.Clamps,
			BenchmarkFallbacks: fallbacks,
			AllocationSettled:  allocRes.Settled,
		},
		CreatedAt: time.Now().UTC(),
	}

	metrics.ForecastsCompleted.Inc()
	metrics.ForecastDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("forecast completed", map[string]interface{}{
		"reportId":   report.ID,
		"industry":   brief.Industry,
		"budget":     brief.TotalBudget,
		"platforms":  len(brief.Platforms),
		"anomalies":  len(anomalies),
		"confidence": report.Confidence,
	})
	return report, nil
}

// Version exposes the loaded benchmark table version.
func (e *Engine) Version() string {
	return e.repo.Version()
}

func (e *Engine) recordFailure(err error) {
	std := errors.AsStandard(err)
	metrics.ForecastsFailed.WithLabelValues(string(std.Code)).Inc()
	e.logger.Warn("forecast rejected", map[string]interface{}{
		"code":    string(std.Code),
		"details": std.Details,
	})
}

// confidence scores how much of the forecast rests on exact benchmark data:
// every default fallback, clamped multiplier, anomaly and unsettled
// allocation chips away from 1.0. Rounded to two decimals so equal briefs
// always produce the identical score.
func confidence(fallbacks []string, clamps []models.ClampEvent, anomalies []models.ValidationFlag, settled bool) float64 {
	score := 1.0
	score -= float64(len(fallbacks)) * fallbackPenalty
	score -= float64(len(clamps)) * clampPenalty
	for _, a := range anomalies {
		switch a.Severity {
		case models.SeverityHigh:
			score -= anomalyHighPenalty
		case models.SeverityMedium:
			score -= anomalyMediumPenalty
		default:
			score -= anomalyLowPenalty
		}
	}
	if !settled {
		score -= unsettledPenalty
	}
	if score < confidenceFloor {
		score = confidenceFloor
	}
	return float64(int(score*100+0.5)) / 100
}

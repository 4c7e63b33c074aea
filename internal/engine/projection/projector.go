// internal/engine/projection/projector.go

// Package projection derives per-platform KPI projections from allocated
// budgets, platform baselines, industry modifiers and the composed modifier
// multipliers, then aggregates campaign totals.
package projection

import (
	"fmt"
	"sort"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/engine/modifiers"
	"campaign-forecaster/internal/models"
)

// Result carries the projected metric sets plus the lookup fallback trace.
type Result struct {
	PerPlatform map[models.Platform]models.KpiSet
	Totals      models.KpiSet
	Fallbacks   []string
}

type Projector struct {
	repo   *benchmarks.Repository
	logger logger.Logger
}

func NewProjector(repo *benchmarks.Repository, log logger.Logger) *Projector {
	return &Projector{
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"component": "projection"}),
	}
}

// Project computes a KpiSet per funded platform and the campaign totals.
// Each platform starts from its benchmark baseline, multiplied by the
// industry modifiers and the composed multipliers, then volumes are derived
// from the allocated budget. Totals sum the absolute volumes and recompute
// every ratio metric from those sums; percentages are never averaged.
func (p *Projector) Project(brief models.CampaignBrief, allocation models.BudgetAllocation, comp modifiers.Composite) (*Result, error) {
	res := &Result{PerPlatform: make(map[models.Platform]models.KpiSet, len(allocation))}

	industry, exact := p.repo.Industry(brief.Industry)
	if !exact {
		res.Fallbacks = append(res.Fallbacks, fmt.Sprintf("industry/%s", brief.Industry))
	}

	aov := brief.AvgOrderValue
	if aov <= 0 {
		aov = industry.AvgOrderValue
	}

	platforms := make([]models.Platform, 0, len(allocation))
	for pid := range allocation {
		platforms = append(platforms, pid)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	var totalBudget, totalImpressions, totalClicks, totalConversions, totalRevenue float64
	for _, pid := range platforms {
		base, err := p.repo.Platform(pid)
		if err != nil {
			return nil, err
		}
		budget := allocation[pid]

		effectiveCPM := base.CPM * industry.CPMModifier * comp.CPM
		effectiveCTR := base.CTR * industry.CTRModifier * comp.CTR
		effectiveCVR := base.CVR * industry.CVRModifier * comp.CVR

		var impressions float64
		if effectiveCPM > 0 {
			impressions = budget / effectiveCPM * 1000
		}
		clicks := impressions * effectiveCTR
		conversions := clicks * effectiveCVR
		revenue := conversions * aov

		res.PerPlatform[pid] = buildKpiSet(budget, impressions, clicks, conversions, revenue)

		totalBudget += budget
		totalImpressions += impressions
		totalClicks += clicks
		totalConversions += conversions
		totalRevenue += revenue
	}

	res.Totals = buildKpiSet(totalBudget, totalImpressions, totalClicks, totalConversions, totalRevenue)
	return res, nil
}

// buildKpiSet derives every ratio metric from the absolute volumes, guarding
// each division so a zero denominator yields the undefined sentinel rather
// than NaN. Break-even ROAS is owned by the insights stage and left unset.
func buildKpiSet(budget, impressions, clicks, conversions, revenue float64) models.KpiSet {
	roas := models.MetricOf(0)
	if budget > 0 {
		roas = models.MetricOf(revenue / budget)
	}
	return models.KpiSet{
		Budget:      budget,
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Revenue:     revenue,

		CTR:           percent(clicks, impressions),
		CVR:           percent(conversions, clicks),
		CPC:           models.Ratio(budget, clicks),
		CPM:           models.Ratio(budget*1000, impressions),
		CPA:           models.Ratio(budget, conversions),
		CAC:           models.Ratio(budget, conversions),
		ARPU:          models.Ratio(revenue, conversions),
		ROAS:          roas,
		BreakEvenROAS: models.UndefinedMetric(),
	}
}

func percent(num, den float64) models.Metric {
	r := models.Ratio(num, den)
	if !r.Defined {
		return r
	}
	return models.MetricOf(r.Value * 100)
}

// internal/engine/insights/insights.go

// Package insights derives the secondary explanatory metrics of a report:
// break-even economics, CAC positioning against the industry benchmark, the
// net effect of the applied seasons, and the recommendation list.
package insights

import (
	"fmt"
	"sort"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/models"
)

// onParBandPct is the relative tolerance inside which projected CAC counts
// as on par with the industry benchmark.
const onParBandPct = 0.10

type Generator struct {
	repo   *benchmarks.Repository
	logger logger.Logger
}

func NewGenerator(repo *benchmarks.Repository, log logger.Logger) *Generator {
	return &Generator{
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"component": "insights"}),
	}
}

// Derive computes the advanced insights from the campaign totals and the
// modifier application trace.
func (g *Generator) Derive(brief models.CampaignBrief, totals models.KpiSet, applied []models.AppliedModifier) models.AdvancedInsights {
	out := models.AdvancedInsights{
		BreakEvenROAS: models.UndefinedMetric(),
		CACDelta:      models.UndefinedMetric(),
		SeasonalLift:  seasonalLift(applied),
	}

	// Break-even ROAS is the revenue multiple at which ad spend eats the
	// whole profit margin. It only means something when the campaign is
	// after conversions in the first place.
	out.BreakEvenApplicable = brief.FunnelStage.ConversionOriented()
	if out.BreakEvenApplicable && brief.ProfitMarginPct > 0 {
		out.BreakEvenROAS = models.MetricOf(100 / brief.ProfitMarginPct)
	}

	industry, _ := g.repo.Industry(brief.Industry)
	out.CACBenchmark = industry.AvgCAC
	out.CACStatus = models.CACOnPar
	if totals.CAC.Defined && industry.AvgCAC > 0 {
		delta := totals.CAC.Value - industry.AvgCAC
		out.CACDelta = models.MetricOf(delta)
		switch {
		case delta > industry.AvgCAC*onParBandPct:
			out.CACStatus = models.CACAbove
		case delta < -industry.AvgCAC*onParBandPct:
			out.CACStatus = models.CACBelow
		}
	}
	return out
}

// seasonalLift multiplies the dimension effects of the seasons that actually
// participated in the composition, relative to a no-season baseline of 1.
func seasonalLift(applied []models.AppliedModifier) models.SeasonalLift {
	lift := models.SeasonalLift{}
	ctr, cvr, cpm := 1.0, 1.0, 1.0
	for _, m := range applied {
		if m.Stage != "season" {
			continue
		}
		lift.Applied = append(lift.Applied, m.Key)
		ctr *= m.CTR
		cvr *= m.CVR
		cpm *= m.CPM
	}
	if len(lift.Applied) > 0 {
		lift.CTRLiftPct = (ctr - 1) * 100
		lift.CVRLiftPct = (cvr - 1) * 100
		lift.CPMLiftPct = (cpm - 1) * 100
	}
	return lift
}

// Recommend turns the insights and anomaly flags into a deterministic,
// ordered list of plain-language recommendations.
func (g *Generator) Recommend(brief models.CampaignBrief, ins models.AdvancedInsights, flags []models.ValidationFlag, allocationSettled bool) []string {
	var recs []string

	if ins.BreakEvenApplicable && ins.BreakEvenROAS.Defined {
		recs = append(recs, fmt.Sprintf(
			"Your break-even ROAS is %.2f; campaigns projecting below it lose money on every order.",
			ins.BreakEvenROAS.Value))
	}
	switch ins.CACStatus {
	case models.CACAbove:
		if ins.CACDelta.Defined {
			recs = append(recs, fmt.Sprintf(
				"Projected acquisition cost runs %.2f above the %s industry benchmark of %.2f; consider narrowing the audience or shifting budget toward the cheapest converting platform.",
				ins.CACDelta.Value, brief.Industry, ins.CACBenchmark))
		}
	case models.CACBelow:
		recs = append(recs, "Projected acquisition cost is below the industry benchmark; there may be headroom to scale the budget while staying profitable.")
	}

	if len(ins.SeasonalLift.Applied) > 0 && ins.SeasonalLift.CPMLiftPct > 20 {
		recs = append(recs, fmt.Sprintf(
			"The selected seasons raise media prices by %.0f%%; booking inventory early or extending the flight can soften the premium.",
			ins.SeasonalLift.CPMLiftPct))
	}
	if !allocationSettled {
		recs = append(recs, "The budget split was frozen against conflicting platform spend limits; review the selected platforms or adjust the total budget.")
	}

	recs = append(recs, flagRecommendations(flags)...)
	return recs
}

// flagRecommendations emits at most one recommendation per high-severity
// KPI, keyed and sorted by KPI name so the output is reproducible.
func flagRecommendations(flags []models.ValidationFlag) []string {
	byKPI := make(map[string]models.ValidationFlag)
	for _, f := range flags {
		if f.Severity != models.SeverityHigh {
			continue
		}
		if _, seen := byKPI[f.KPI]; !seen {
			byKPI[f.KPI] = f
		}
	}

	kpis := make([]string, 0, len(byKPI))
	for k := range byKPI {
		kpis = append(kpis, k)
	}
	sort.Strings(kpis)

	var recs []string
	for _, k := range kpis {
		f := byKPI[k]
		if f.Direction == models.FlagBelowMin {
			recs = append(recs, fmt.Sprintf(
				"Projected %s is far below the expected market range; revisit creative type and audience targeting before committing the budget.", f.KPI))
		} else {
			recs = append(recs, fmt.Sprintf(
				"Projected %s is far above the expected market range; the estimate may be optimistic, treat it as an upper bound.", f.KPI))
		}
	}
	return recs
}

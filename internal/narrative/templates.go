// internal/narrative/templates.go
package narrative

import (
	"fmt"

	"campaign-forecaster/internal/models"
)

// Narrative map keys. The collaborator's sections use the same keys, so its
// text can overlay the templates one entry at a time.
const (
	KeySummary = "summary"
	KeyCTR     = "ctr"
	KeyCVR     = "cvr"
	KeyROAS    = "roas"
	KeyCAC     = "cac"
	KeyBudget  = "budget"
)

// Fallback builds the deterministic narrative for a report. Same report in,
// same text out; no external calls.
func Fallback(report *models.CampaignReport) map[string]string {
	totals := report.Totals

	out := map[string]string{
		KeySummary: fmt.Sprintf(
			"A %s campaign with a budget of %.2f across %d platform(s) is projected to deliver %.0f impressions, %.0f clicks and %.0f conversions.",
			report.Brief.Industry, report.Brief.TotalBudget, len(report.Allocation),
			totals.Impressions, totals.Clicks, totals.Conversions),
		KeyBudget: fmt.Sprintf(
			"The budget is split across %d platform(s) according to industry benchmarks for the %s goal, respecting each platform's recommended spend limits.",
			len(report.Allocation), report.Brief.PrimaryGoal),
	}

	if totals.CTR.Defined {
		out[KeyCTR] = fmt.Sprintf(
			"The projected click-through rate is %.2f%%, the share of people who see an ad and click it.", totals.CTR.Value)
	} else {
		out[KeyCTR] = "The click-through rate could not be projected because no impressions are expected at this budget."
	}

	if totals.CVR.Defined {
		out[KeyCVR] = fmt.Sprintf(
			"The projected conversion rate is %.2f%%, the share of clicks that turn into a purchase or signup.", totals.CVR.Value)
	} else {
		out[KeyCVR] = "The conversion rate could not be projected because no clicks are expected at this budget."
	}

	if totals.ROAS.Defined {
		out[KeyROAS] = fmt.Sprintf(
			"Each currency unit of spend is projected to return %.2f in revenue.", totals.ROAS.Value)
		if report.Insights.BreakEvenROAS.Defined {
			out[KeyROAS] += fmt.Sprintf(" Break-even for this margin is %.2f.", report.Insights.BreakEvenROAS.Value)
		}
	}

	if totals.CAC.Defined {
		out[KeyCAC] = fmt.Sprintf(
			"Acquiring one customer is projected to cost %.2f, %s the industry benchmark of %.2f.",
			totals.CAC.Value, cacComparison(report.Insights.CACStatus), report.Insights.CACBenchmark)
	} else {
		out[KeyCAC] = "Acquisition cost is undefined because the projection expects no conversions."
	}

	return out
}

func cacComparison(status models.CACBenchmarkStatus) string {
	switch status {
	case models.CACAbove:
		return "above"
	case models.CACBelow:
		return "below"
	default:
		return "in line with"
	}
}

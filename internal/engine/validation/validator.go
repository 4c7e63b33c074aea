// internal/engine/validation/validator.go

// Package validation holds the two audit layers of a forecast: structural
// checks on the brief that block computation, and market-range checks on the
// projected KPIs that only annotate the report.
package validation

import (
	"fmt"
	"sort"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/models"
)

// TotalScope marks a flag raised against the campaign totals rather than a
// single platform.
const TotalScope = "total"

// rangedKPIs are the metrics audited against the benchmark ranges, in flag
// emission order.
var rangedKPIs = []string{"ctr", "cvr", "cpm", "cpc", "roas", "cac"}

var validDurations = map[models.DurationBucket]bool{
	models.DurationOneWeek:     true,
	models.DurationTwoWeeks:    true,
	models.DurationOneMonth:    true,
	models.DurationThreeMonths: true,
	models.DurationSixMonths:   true,
	models.DurationOngoing:     true,
}

type Validator struct {
	repo   *benchmarks.Repository
	cfg    config.EngineConfig
	logger logger.Logger
}

func NewValidator(repo *benchmarks.Repository, cfg config.EngineConfig, log logger.Logger) *Validator {
	return &Validator{
		repo:   repo,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "validation"}),
	}
}

// CheckStructure enforces the blocking preconditions: budget within the
// global bounds, platform count within bounds, no duplicate or unknown
// platform ids, and a known duration bucket. Violations abort the forecast
// before any computation runs.
func (v *Validator) CheckStructure(brief models.CampaignBrief) error {
	if brief.TotalBudget < v.cfg.MinBudget || brief.TotalBudget > v.cfg.MaxBudget {
		return errors.NewStructuralInputError(fmt.Sprintf(
			"total budget %.2f outside allowed range [%.2f, %.2f]",
			brief.TotalBudget, v.cfg.MinBudget, v.cfg.MaxBudget))
	}
	if n := len(brief.Platforms); n < v.cfg.MinPlatforms || n > v.cfg.MaxPlatforms {
		return errors.NewStructuralInputError(fmt.Sprintf(
			"%d platforms selected, allowed range is [%d, %d]",
			n, v.cfg.MinPlatforms, v.cfg.MaxPlatforms))
	}

	seen := make(map[models.Platform]bool, len(brief.Platforms))
	for _, p := range brief.Platforms {
		if seen[p] {
			return errors.NewStructuralInputError(fmt.Sprintf("platform %q selected twice", p))
		}
		seen[p] = true
		if _, err := v.repo.Platform(p); err != nil {
			return err
		}
	}

	if brief.Industry == "" {
		return errors.NewStructuralInputError("industry is required")
	}
	if !validDurations[brief.Duration] {
		return errors.NewStructuralInputError(fmt.Sprintf("unknown duration bucket %q", brief.Duration))
	}
	return nil
}

// Flag audits the totals and every per-platform metric set against the
// benchmark ranges. Platform-specific ranges win over industry ranges, which
// win over the defaults. The result is report data, never an error.
func (v *Validator) Flag(brief models.CampaignBrief, totals models.KpiSet, perPlatform map[models.Platform]models.KpiSet) []models.ValidationFlag {
	flags := v.flagSet(TotalScope, totals, func(kpi string) (benchmarks.Range, bool) {
		return v.repo.ValidationRange(benchmarks.RangeKindIndustry, brief.Industry, kpi)
	})

	platforms := make([]models.Platform, 0, len(perPlatform))
	for pid := range perPlatform {
		platforms = append(platforms, pid)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	for _, pid := range platforms {
		flags = append(flags, v.flagSet(string(pid), perPlatform[pid], func(kpi string) (benchmarks.Range, bool) {
			if rng, ok := v.repo.ValidationRange(benchmarks.RangeKindPlatform, string(pid), kpi); ok {
				return rng, true
			}
			return v.repo.ValidationRange(benchmarks.RangeKindIndustry, brief.Industry, kpi)
		})...)
	}
	return flags
}

func (v *Validator) flagSet(scope string, kpis models.KpiSet, lookup func(kpi string) (benchmarks.Range, bool)) []models.ValidationFlag {
	var flags []models.ValidationFlag
	for _, kpi := range rangedKPIs {
		m := metricFor(kpis, kpi)
		if !m.Defined {
			flags = append(flags, models.ValidationFlag{
				KPI:       kpi,
				Scope:     scope,
				Direction: models.FlagUndefined,
				Severity:  models.SeverityLow,
				Message:   fmt.Sprintf("%s is undefined because its denominator is zero", kpi),
			})
			continue
		}

		rng, ok := lookup(kpi)
		if !ok {
			continue
		}
		if f, flagged := classify(kpi, scope, m.Value, rng); flagged {
			flags = append(flags, f)
		}
	}
	return flags
}

// classify compares a value against its range and scales severity by the
// relative distance outside the violated bound: more than 50% outside is
// high, more than 20% is medium, anything else is low.
func classify(kpi, scope string, value float64, rng benchmarks.Range) (models.ValidationFlag, bool) {
	var direction models.FlagDirection
	var distance float64

	switch {
	case value < rng.Min:
		direction = models.FlagBelowMin
		if rng.Min > 0 {
			distance = (rng.Min - value) / rng.Min
		}
	case value > rng.Max:
		direction = models.FlagAboveMax
		if rng.Max > 0 {
			distance = (value - rng.Max) / rng.Max
		}
	default:
		return models.ValidationFlag{}, false
	}

	severity := models.SeverityLow
	switch {
	case distance > 0.5:
		severity = models.SeverityHigh
	case distance > 0.2:
		severity = models.SeverityMedium
	}

	return models.ValidationFlag{
		KPI:       kpi,
		Scope:     scope,
		Direction: direction,
		Severity:  severity,
		Value:     value,
		RangeMin:  rng.Min,
		RangeMax:  rng.Max,
		Message: fmt.Sprintf("%s %.4f is outside the expected range [%.4f, %.4f]",
			kpi, value, rng.Min, rng.Max),
	}, true
}

func metricFor(kpis models.KpiSet, kpi string) models.Metric {
	switch kpi {
	case "ctr":
		return kpis.CTR
	case "cvr":
		return kpis.CVR
	case "cpm":
		return kpis.CPM
	case "cpc":
		return kpis.CPC
	case "roas":
		return kpis.ROAS
	case "cac":
		return kpis.CAC
	default:
		return models.UndefinedMetric()
	}
}

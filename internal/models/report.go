// internal/models/report.go
package models

import "time"

// BudgetAllocation maps each funded platform to its share of the total
// budget. The amounts sum to the brief's budget within one currency unit.
type BudgetAllocation map[Platform]float64

// Total returns the sum of all allocated amounts.
func (a BudgetAllocation) Total() float64 {
	var sum float64
	for _, amount := range a {
		sum += amount
	}
	return sum
}

// KpiSet is the full projected metric set for a platform or for the campaign
// total. Volume fields are absolute counts/amounts; ratio fields carry the
// undefined sentinel when their denominator is zero. CTR and CVR are
// percentages.
type KpiSet struct {
	Budget      float64 `json:"budget"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`

	CTR           Metric `json:"ctr"`
	CVR           Metric `json:"cvr"`
	CPC           Metric `json:"cpc"`
	CPM           Metric `json:"cpm"`
	CPA           Metric `json:"cpa"`
	CAC           Metric `json:"cac"`
	ARPU          Metric `json:"arpu"`
	ROAS          Metric `json:"roas"`
	BreakEvenROAS Metric `json:"breakEvenRoas"`
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FlagDirection classifies how a KPI deviated from its expected range.
type FlagDirection string

const (
	FlagBelowMin  FlagDirection = "below_min"
	FlagAboveMax  FlagDirection = "above_max"
	FlagUndefined FlagDirection = "undefined"
)

// ValidationFlag marks a projected KPI outside its expected market range.
// Flags are data attached to the report, never errors.
type ValidationFlag struct {
	KPI       string        `json:"kpi"`
	Scope     string        `json:"scope"` // "total" or a platform id
	Direction FlagDirection `json:"direction"`
	Severity  Severity      `json:"severity"`
	Value     float64       `json:"value,omitempty"`
	RangeMin  float64       `json:"rangeMin,omitempty"`
	RangeMax  float64       `json:"rangeMax,omitempty"`
	Message   string        `json:"message"`
}

// AppliedModifier records one multiplier bundle that participated in the
// composition, in application order, for the debugging trace.
type AppliedModifier struct {
	Stage string  `json:"stage"` // season, competition, creative, demographic, location, device, lookalike
	Key   string  `json:"key"`
	CPM   float64 `json:"cpm"`
	CTR   float64 `json:"ctr"`
	CVR   float64 `json:"cvr"`
}

// ClampEvent records a composed multiplier pinned to the safety band so
// downstream validation can explain an unusually flat projection.
type ClampEvent struct {
	Dimension string  `json:"dimension"` // cpm, ctr, cvr
	Raw       float64 `json:"raw"`
	Clamped   float64 `json:"clamped"`
}

// CACBenchmarkStatus compares projected CAC against the industry benchmark.
type CACBenchmarkStatus string

const (
	CACAbove CACBenchmarkStatus = "above"
	CACBelow CACBenchmarkStatus = "below"
	CACOnPar CACBenchmarkStatus = "on_par"
)

// SeasonalLift summarizes the net effect of the seasons that were actually
// applied, relative to the no-season baseline.
type SeasonalLift struct {
	Applied    []string `json:"applied"`
	CTRLiftPct float64  `json:"ctrLiftPct"`
	CVRLiftPct float64  `json:"cvrLiftPct"`
	CPMLiftPct float64  `json:"cpmLiftPct"`
}

// AdvancedInsights holds derived, secondary explanatory metrics.
type AdvancedInsights struct {
	BreakEvenROAS       Metric             `json:"breakEvenRoas"`
	BreakEvenApplicable bool               `json:"breakEvenApplicable"`
	CACStatus           CACBenchmarkStatus `json:"cacStatus"`
	CACBenchmark        float64            `json:"cacBenchmark"`
	CACDelta            Metric             `json:"cacDelta"`
	SeasonalLift        SeasonalLift       `json:"seasonalLift"`
}

// Diagnostics carries the reproducibility trace of a forecast: which
// modifiers were applied, what got clamped, and which benchmark lookups fell
// back to defaults.
type Diagnostics struct {
	AppliedModifiers   []AppliedModifier `json:"appliedModifiers"`
	Clamps             []ClampEvent      `json:"clamps"`
	BenchmarkFallbacks []string          `json:"benchmarkFallbacks"`
	AllocationSettled  bool              `json:"allocationSettled"`
}

// CampaignReport is the complete output of one forecasting call. All fields
// except Narrative are deterministic for a given brief and benchmark version.
type CampaignReport struct {
	ID               string `json:"id"`
	BenchmarkVersion string `json:"benchmarkVersion"`

	Brief      CampaignBrief    `json:"brief"`
	Allocation BudgetAllocation `json:"budgetAllocation"`

	Totals      KpiSet              `json:"totals"`
	PerPlatform map[Platform]KpiSet `json:"perPlatform"`

	Anomalies       []ValidationFlag `json:"anomalies"`
	Insights        AdvancedInsights `json:"advancedInsights"`
	Recommendations []string         `json:"recommendations"`

	// Narrative is filled in by the external text-generation collaborator,
	// or by deterministic fallback templates when it is absent or fails.
	Narrative map[string]string `json:"narrative"`

	Confidence  float64     `json:"confidence"`
	Diagnostics Diagnostics `json:"diagnostics"`

	CreatedAt time.Time `json:"createdAt"`
}

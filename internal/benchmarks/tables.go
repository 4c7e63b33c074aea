// internal/benchmarks/tables.go
package benchmarks

// IndustryBenchmark adjusts platform baselines for an industry and carries
// the industry's reference economics.
type IndustryBenchmark struct {
	CPMModifier   float64 `mapstructure:"cpm_modifier" json:"cpmModifier"`
	CTRModifier   float64 `mapstructure:"ctr_modifier" json:"ctrModifier"`
	CVRModifier   float64 `mapstructure:"cvr_modifier" json:"cvrModifier"`
	AvgOrderValue float64 `mapstructure:"avg_order_value" json:"avgOrderValue"`
	AvgCAC        float64 `mapstructure:"avg_cac" json:"avgCac"`
}

// PlatformBenchmark holds a platform's baseline unit economics and the
// recommended spend bounds enforced by the allocator. CTR and CVR are
// fractions, not percentages.
type PlatformBenchmark struct {
	CPM      float64 `mapstructure:"cpm" json:"cpm"`
	CTR      float64 `mapstructure:"ctr" json:"ctr"`
	CVR      float64 `mapstructure:"cvr" json:"cvr"`
	MinSpend float64 `mapstructure:"min_spend" json:"minSpend"`
	MaxSpend float64 `mapstructure:"max_spend" json:"maxSpend"`
}

// SeasonalBenchmark multiplies baselines while a season is active.
type SeasonalBenchmark struct {
	CPM          float64 `mapstructure:"cpm" json:"cpm"`
	CTR          float64 `mapstructure:"ctr" json:"ctr"`
	CVR          float64 `mapstructure:"cvr" json:"cvr"`
	CPC          float64 `mapstructure:"cpc" json:"cpc"`
	DurationDays int     `mapstructure:"duration_days" json:"durationDays"`
	Impact       string  `mapstructure:"impact" json:"impact"` // none, low, medium, high
}

// NeutralSeason is the no-season fallback with all multipliers at 1.0.
func NeutralSeason() SeasonalBenchmark {
	return SeasonalBenchmark{CPM: 1, CTR: 1, CVR: 1, CPC: 1, Impact: "none"}
}

// ModifierSet is one named multiplier bundle (creative type, competition
// level, audience attribute, device, location tier) relative to 1.0.
type ModifierSet struct {
	CPM float64 `mapstructure:"cpm" json:"cpm"`
	CTR float64 `mapstructure:"ctr" json:"ctr"`
	CVR float64 `mapstructure:"cvr" json:"cvr"`
}

// NeutralModifier leaves all dimensions untouched.
func NeutralModifier() ModifierSet {
	return ModifierSet{CPM: 1, CTR: 1, CVR: 1}
}

// Range is the expected market band for one KPI.
type Range struct {
	Min     float64 `mapstructure:"min" json:"min"`
	Max     float64 `mapstructure:"max" json:"max"`
	Optimal float64 `mapstructure:"optimal" json:"optimal"`
}

// Modifier group names used by the pipeline, in composition order.
const (
	GroupCreative    = "creative"
	GroupCompetition = "competition"
	GroupAge         = "age"
	GroupGender      = "gender"
	GroupInterest    = "interest"
	GroupBehavior    = "behavior"
	GroupLocation    = "location"
	GroupDevice      = "device"
	GroupLookalike   = "lookalike"
)

// Range lookup kinds.
const (
	RangeKindIndustry = "industry"
	RangeKindPlatform = "platform"
)

// DefaultKey is the fallback entry every table must carry.
const DefaultKey = "default"

// Tables is the full set of static, versioned reference data. Loaded once at
// startup and never mutated afterwards.
type Tables struct {
	Version    string                         `mapstructure:"version"`
	Industries map[string]IndustryBenchmark   `mapstructure:"industries"`
	Platforms  map[string]PlatformBenchmark   `mapstructure:"platforms"`
	Seasons    map[string]SeasonalBenchmark   `mapstructure:"seasons"`
	Modifiers  map[string]map[string]ModifierSet `mapstructure:"modifiers"`

	// Splits is industry -> goal -> platform -> weight (percent points).
	Splits map[string]map[string]map[string]float64 `mapstructure:"splits"`

	// ValidationRanges is kind -> key -> kpi -> range, where kind is
	// "industry" or "platform".
	ValidationRanges map[string]map[string]map[string]Range `mapstructure:"validation_ranges"`
}

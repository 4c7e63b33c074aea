// internal/benchmarks/repository.go

// Package benchmarks provides read-only access to the static, hand-curated
// market reference tables. Lookups with no specific entry fall back to the
// table's default, and every fallback is logged and counted so data gaps
// stay visible to operators.
package benchmarks

import (
	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/common/metrics"
	"campaign-forecaster/internal/models"
)

// Repository is the read-only accessor over a loaded table set. It never
// mutates the underlying tables and is safe for concurrent use.
type Repository struct {
	tables *Tables
	logger logger.Logger
}

func NewRepository(tables *Tables, log logger.Logger) *Repository {
	return &Repository{
		tables: tables,
		logger: log.WithFields(map[string]interface{}{"component": "benchmarks"}),
	}
}

// Version returns the benchmark table version baked into every report.
func (r *Repository) Version() string {
	return r.tables.Version
}

// PlatformIDs returns the known platform ids in unspecified order.
func (r *Repository) PlatformIDs() []models.Platform {
	out := make([]models.Platform, 0, len(r.tables.Platforms))
	for id := range r.tables.Platforms {
		out = append(out, models.Platform(id))
	}
	return out
}

// Industry returns the benchmark for key, falling back to the default entry
// when the key is unknown. The second result is false on fallback.
func (r *Repository) Industry(key string) (IndustryBenchmark, bool) {
	if b, ok := r.tables.Industries[key]; ok {
		return b, true
	}
	r.recordFallback("industries", key)
	return r.tables.Industries[DefaultKey], false
}

// Platform returns the baseline benchmark for a platform id. An entirely
// unknown platform is a programmer error, not a data gap, so there is no
// default fallback here.
func (r *Repository) Platform(id models.Platform) (PlatformBenchmark, error) {
	b, ok := r.tables.Platforms[string(id)]
	if !ok {
		return PlatformBenchmark{}, errors.NewUnknownPlatformError(string(id))
	}
	return b, nil
}

// Season returns the seasonal multipliers for key, falling back to the
// neutral no-season entry. The second result is false on fallback.
func (r *Repository) Season(key string) (SeasonalBenchmark, bool) {
	if s, ok := r.tables.Seasons[key]; ok {
		return s, true
	}
	r.recordFallback("seasons", key)
	return NeutralSeason(), false
}

// Modifier returns the multiplier bundle for group/key, falling back first
// to the group's default entry and then to the neutral set. The second
// result is false on fallback.
func (r *Repository) Modifier(group, key string) (ModifierSet, bool) {
	sets, ok := r.tables.Modifiers[group]
	if !ok {
		r.recordFallback("modifiers", group+"/"+key)
		return NeutralModifier(), false
	}
	if set, ok := sets[key]; ok {
		return set, true
	}
	r.recordFallback("modifiers", group+"/"+key)
	if def, ok := sets[DefaultKey]; ok {
		return def, false
	}
	return NeutralModifier(), false
}

// ValidationRange returns the expected band for a KPI under kind/key,
// falling back to the kind's default key. The second result is false when no
// range exists for the KPI at all.
func (r *Repository) ValidationRange(kind, key, kpi string) (Range, bool) {
	keys, ok := r.tables.ValidationRanges[kind]
	if !ok {
		return Range{}, false
	}
	if kpis, ok := keys[key]; ok {
		if rng, ok := kpis[kpi]; ok {
			return rng, true
		}
	}
	def, ok := keys[DefaultKey]
	if !ok {
		return Range{}, false
	}
	rng, ok := def[kpi]
	if !ok {
		return Range{}, false
	}
	return rng, true
}

// Split returns the industry/goal-weighted platform split, falling back
// through goal default and industry default. The second result is false on
// any fallback.
func (r *Repository) Split(industry string, goal models.Goal) (map[models.Platform]float64, bool) {
	exact := true

	goals, ok := r.tables.Splits[industry]
	if !ok {
		r.recordFallback("splits", industry)
		goals = r.tables.Splits[DefaultKey]
		exact = false
	}

	weights, ok := goals[string(goal)]
	if !ok {
		if exact {
			r.recordFallback("splits", industry+"/"+string(goal))
		}
		weights, ok = goals[DefaultKey]
		exact = false
		if !ok {
			weights = r.tables.Splits[DefaultKey][DefaultKey]
		}
	}

	out := make(map[models.Platform]float64, len(weights))
	for platform, w := range weights {
		out[models.Platform(platform)] = w
	}
	return out, exact
}

func (r *Repository) recordFallback(table, key string) {
	metrics.BenchmarkFallbacks.WithLabelValues(table).Inc()
	r.logger.Warn("benchmark lookup fell back to default", map[string]interface{}{
		"table": table,
		"key":   key,
	})
}

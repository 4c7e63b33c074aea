// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ForecastsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecaster_forecasts_completed_total",
			Help: "Total number of forecasts completed",
		},
	)

	ForecastsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecaster_forecasts_failed_total",
			Help: "Total number of forecasts rejected or failed",
		},
		[]string{"error_code"},
	)

	ForecastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecaster_forecast_duration_seconds",
			Help:    "Duration of a full forecast computation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BenchmarkFallbacks counts every lookup that fell through to a table's
	// default entry. Silent data gaps must stay visible to operators.
	BenchmarkFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecaster_benchmark_fallback_total",
			Help: "Benchmark lookups resolved by the default entry",
		},
		[]string{"table"},
	)

	ModifierClamps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecaster_modifier_clamp_total",
			Help: "Composed modifier products clamped to the safety band",
		},
		[]string{"dimension"},
	)

	NarrativeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecaster_narrative_fallback_total",
			Help: "Narrative sections filled from deterministic fallback templates",
		},
	)
)

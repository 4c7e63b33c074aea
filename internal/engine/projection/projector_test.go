// internal/engine/projection/projector_test.go

package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/engine/modifiers"
	"campaign-forecaster/internal/models"
)

func newTestProjector(t *testing.T) *Projector {
	t.Helper()
	tables, err := benchmarks.Load("../../../configs/benchmarks.yaml")
	require.NoError(t, err)
	repo := benchmarks.NewRepository(tables, logger.NewTestLogger(t))
	return NewProjector(repo, logger.NewTestLogger(t))
}

func neutralComposite() modifiers.Composite {
	return modifiers.Composite{CPM: 1, CTR: 1, CVR: 1}
}

func TestProject_PlatformBaselineTimesIndustry(t *testing.T) {
	p := newTestProjector(t)

	brief := models.CampaignBrief{Industry: "e-commerce"}
	res, err := p.Project(brief, models.BudgetAllocation{models.PlatformMeta: 10_000}, neutralComposite())
	require.NoError(t, err)

	kpi := res.PerPlatform[models.PlatformMeta]

	// meta baseline CPM 7.5 times e-commerce modifier 0.95.
	effectiveCPM := 7.5 * 0.95
	assert.InDelta(t, 10_000/effectiveCPM*1000, kpi.Impressions, 0.01)

	require.True(t, kpi.CTR.Defined)
	assert.InDelta(t, 0.014*1.10*100, kpi.CTR.Value, 1e-9)
	require.True(t, kpi.CVR.Defined)
	assert.InDelta(t, 0.082*1.20*100, kpi.CVR.Value, 1e-9)

	// Brief carries no order value, so revenue uses the industry average.
	assert.InDelta(t, kpi.Conversions*72.0, kpi.Revenue, 1e-6)

	require.True(t, kpi.ROAS.Defined)
	assert.InDelta(t, kpi.Revenue/10_000, kpi.ROAS.Value, 1e-9)
	assert.Empty(t, res.Fallbacks)
}

func TestProject_BriefOrderValueOverridesIndustry(t *testing.T) {
	p := newTestProjector(t)

	brief := models.CampaignBrief{Industry: "e-commerce", AvgOrderValue: 120}
	res, err := p.Project(brief, models.BudgetAllocation{models.PlatformMeta: 10_000}, neutralComposite())
	require.NoError(t, err)

	kpi := res.PerPlatform[models.PlatformMeta]
	assert.InDelta(t, kpi.Conversions*120.0, kpi.Revenue, 1e-6)
}

func TestProject_TotalsRecomputedFromSums(t *testing.T) {
	p := newTestProjector(t)

	alloc := models.BudgetAllocation{
		models.PlatformMeta:      60_000,
		models.PlatformGoogleAds: 40_000,
	}
	res, err := p.Project(models.CampaignBrief{Industry: "e-commerce"}, alloc, neutralComposite())
	require.NoError(t, err)

	meta := res.PerPlatform[models.PlatformMeta]
	google := res.PerPlatform[models.PlatformGoogleAds]

	assert.InDelta(t, meta.Impressions+google.Impressions, res.Totals.Impressions, 1e-6)
	assert.InDelta(t, meta.Clicks+google.Clicks, res.Totals.Clicks, 1e-6)
	assert.InDelta(t, meta.Conversions+google.Conversions, res.Totals.Conversions, 1e-6)
	assert.InDelta(t, meta.Revenue+google.Revenue, res.Totals.Revenue, 1e-6)

	// Aggregated CTR matches clicks over impressions from the summed volumes
	// and is not the average of the two platform percentages.
	require.True(t, res.Totals.CTR.Defined)
	assert.InDelta(t, res.Totals.Clicks/res.Totals.Impressions*100, res.Totals.CTR.Value, 1e-9)
	average := (meta.CTR.Value + google.CTR.Value) / 2
	assert.Greater(t, math.Abs(average-res.Totals.CTR.Value), 1e-6)
}

func TestProject_ZeroConversionsYieldUndefinedSentinels(t *testing.T) {
	p := newTestProjector(t)

	comp := modifiers.Composite{CPM: 1, CTR: 1, CVR: 0}
	res, err := p.Project(models.CampaignBrief{Industry: "e-commerce"},
		models.BudgetAllocation{models.PlatformMeta: 10_000}, comp)
	require.NoError(t, err)

	kpi := res.PerPlatform[models.PlatformMeta]
	assert.Zero(t, kpi.Conversions)
	assert.False(t, kpi.CAC.Defined)
	assert.False(t, kpi.ARPU.Defined)
	assert.False(t, kpi.CPA.Defined)
	require.True(t, kpi.CVR.Defined)
	assert.Zero(t, kpi.CVR.Value)
	require.True(t, kpi.ROAS.Defined)
	assert.Zero(t, kpi.ROAS.Value)
}

func TestProject_ZeroBudgetPlatform(t *testing.T) {
	p := newTestProjector(t)

	res, err := p.Project(models.CampaignBrief{Industry: "e-commerce"},
		models.BudgetAllocation{models.PlatformMeta: 0}, neutralComposite())
	require.NoError(t, err)

	kpi := res.PerPlatform[models.PlatformMeta]
	assert.Zero(t, kpi.Impressions)
	assert.Zero(t, kpi.Clicks)
	assert.False(t, kpi.CTR.Defined)
	assert.False(t, kpi.CPM.Defined)
	require.True(t, kpi.ROAS.Defined)
	assert.Zero(t, kpi.ROAS.Value)
}

func TestProject_UnknownIndustryFallsBack(t *testing.T) {
	p := newTestProjector(t)

	res, err := p.Project(models.CampaignBrief{Industry: "zeppelin-rides"},
		models.BudgetAllocation{models.PlatformMeta: 10_000}, neutralComposite())
	require.NoError(t, err)

	assert.Contains(t, res.Fallbacks, "industry/zeppelin-rides")

	// Default industry modifiers are neutral, so the baseline passes through.
	kpi := res.PerPlatform[models.PlatformMeta]
	assert.InDelta(t, 10_000/7.5*1000, kpi.Impressions, 0.01)
}

func TestProject_UnknownPlatform(t *testing.T) {
	p := newTestProjector(t)

	_, err := p.Project(models.CampaignBrief{Industry: "e-commerce"},
		models.BudgetAllocation{models.Platform("myspace"): 10_000}, neutralComposite())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownPlatform, errors.AsStandard(err).Code)
}

// internal/engine/allocation/allocator_test.go

package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/models"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		MinBudget:     1000,
		MaxBudget:     10_000_000,
		MinPlatforms:  1,
		MaxPlatforms:  6,
		MaxIterations: 10,
		ModifierFloor: 0.3,
		ModifierCeil:  3.0,
	}
}

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	tables, err := benchmarks.Load("../../../configs/benchmarks.yaml")
	require.NoError(t, err)
	repo := benchmarks.NewRepository(tables, logger.NewTestLogger(t))
	return NewAllocator(repo, testEngineConfig(), logger.NewTestLogger(t))
}

func conversionBrief(budget float64, platforms ...models.Platform) models.CampaignBrief {
	return models.CampaignBrief{
		Industry:    "e-commerce",
		TotalBudget: budget,
		FunnelStage: models.StageConversion,
		PrimaryGoal: models.GoalConversions,
		Platforms:   platforms,
	}
}

func TestAllocate_RenormalizedSplit(t *testing.T) {
	a := newTestAllocator(t)

	res, err := a.Allocate(conversionBrief(100_000, models.PlatformMeta, models.PlatformGoogleAds))
	require.NoError(t, err)

	assert.InDelta(t, 100_000, res.Allocation.Total(), 0.01)
	assert.True(t, res.Settled)
	assert.Empty(t, res.Fallbacks)

	// e-commerce/conversions weights: meta 36, google_ads 34, renormalized
	// over the two selected platforms.
	assert.InDelta(t, 100_000*36.0/70.0, res.Allocation[models.PlatformMeta], 0.01)
	assert.InDelta(t, 100_000*34.0/70.0, res.Allocation[models.PlatformGoogleAds], 0.01)

	for p, amount := range res.Allocation {
		bench, err := a.repo.Platform(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, amount, bench.MinSpend)
	}
}

func TestAllocate_InfeasibleBudget(t *testing.T) {
	a := newTestAllocator(t)

	// meta and google_ads both carry a 500 floor.
	_, err := a.Allocate(conversionBrief(800, models.PlatformMeta, models.PlatformGoogleAds))
	require.Error(t, err)

	std := errors.AsStandard(err)
	assert.Equal(t, errors.ErrCodeAllocationInfeasible, std.Code)
	assert.InDelta(t, 200.0, std.Metadata["shortfall"].(float64), 1e-9)
	assert.InDelta(t, 1000.0, std.Metadata["minimumViableBudget"].(float64), 1e-9)
}

func TestAllocate_FloorRaisesLowWeightPlatform(t *testing.T) {
	a := newTestAllocator(t)

	// linkedin's e-commerce/conversions weight is 2 against meta's 36, so its
	// proportional share of 15k is below its 1000 floor.
	res, err := a.Allocate(conversionBrief(15_000, models.PlatformMeta, models.PlatformLinkedIn))
	require.NoError(t, err)

	assert.True(t, res.Settled)
	assert.InDelta(t, 1000.0, res.Allocation[models.PlatformLinkedIn], 0.01)
	assert.InDelta(t, 14_000.0, res.Allocation[models.PlatformMeta], 0.01)
	assert.InDelta(t, 15_000.0, res.Allocation.Total(), 0.01)
}

func TestAllocate_CeilingRedistributesExcess(t *testing.T) {
	a := newTestAllocator(t)

	// meta's proportional share of 500k exceeds its 400k ceiling; the excess
	// moves to x_twitter, which still has capacity.
	res, err := a.Allocate(conversionBrief(500_000, models.PlatformMeta, models.PlatformX))
	require.NoError(t, err)

	assert.True(t, res.Settled)
	assert.InDelta(t, 400_000.0, res.Allocation[models.PlatformMeta], 0.01)
	assert.InDelta(t, 100_000.0, res.Allocation[models.PlatformX], 0.01)
	assert.InDelta(t, 500_000.0, res.Allocation.Total(), 0.01)
}

func TestAllocate_FreezesAtIterationCapWhenCeilingsCannotHold(t *testing.T) {
	a := newTestAllocator(t)

	// 200k on x_twitter alone exceeds its 120k ceiling with nowhere to move
	// the excess; the fixed point never settles and the amounts freeze.
	res, err := a.Allocate(conversionBrief(200_000, models.PlatformX))
	require.NoError(t, err)

	assert.False(t, res.Settled)
	assert.Equal(t, testEngineConfig().MaxIterations, res.Iterations)
	assert.InDelta(t, 200_000.0, res.Allocation.Total(), 0.01)
}

func TestAllocate_UnknownPlatform(t *testing.T) {
	a := newTestAllocator(t)

	_, err := a.Allocate(conversionBrief(50_000, models.PlatformMeta, models.Platform("snapchat")))
	require.Error(t, err)

	std := errors.AsStandard(err)
	assert.Equal(t, errors.ErrCodeUnknownPlatform, std.Code)
}

func TestAllocate_UnknownIndustryFallsBackToDefaultSplit(t *testing.T) {
	a := newTestAllocator(t)

	brief := conversionBrief(50_000, models.PlatformMeta, models.PlatformGoogleAds)
	brief.Industry = "underwater-basket-weaving"

	res, err := a.Allocate(brief)
	require.NoError(t, err)

	assert.Contains(t, res.Fallbacks, "split/underwater-basket-weaving:conversions")
	assert.InDelta(t, 50_000.0, res.Allocation.Total(), 0.01)
}

func TestAllocate_RoundingSumsExactly(t *testing.T) {
	a := newTestAllocator(t)

	res, err := a.Allocate(conversionBrief(99_999.99,
		models.PlatformMeta, models.PlatformGoogleAds, models.PlatformTikTok))
	require.NoError(t, err)

	assert.InDelta(t, 99_999.99, res.Allocation.Total(), 1e-9)
	for _, amount := range res.Allocation {
		cents := amount * 100
		assert.InDelta(t, cents, float64(int64(cents+0.5)), 1e-6, "amounts are whole cents")
	}
}

// internal/engine/allocation/allocator.go

// Package allocation distributes a campaign budget across the selected
// platforms from industry and goal weighted split tables, enforcing each
// platform's recommended spend floor and ceiling.
package allocation

import (
	"fmt"
	"math"
	"sort"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/models"
)

// spendEpsilon is half a cent; differences below it do not count as a clamp.
const spendEpsilon = 0.005

// Result is the settled allocation plus the trace the validator and the
// confidence score consume.
type Result struct {
	Allocation models.BudgetAllocation
	Settled    bool
	Iterations int
	Fallbacks  []string
}

type Allocator struct {
	repo          *benchmarks.Repository
	maxIterations int
	logger        logger.Logger
}

func NewAllocator(repo *benchmarks.Repository, cfg config.EngineConfig, log logger.Logger) *Allocator {
	return &Allocator{
		repo:          repo,
		maxIterations: cfg.MaxIterations,
		logger:        log.WithFields(map[string]interface{}{"component": "allocation"}),
	}
}

// Allocate computes the per-platform budget split. The industry/goal split
// weights are renormalized over exactly the selected platforms, then spend
// floors and ceilings are enforced by clamping and redistributing until the
// amounts stop moving or the iteration cap is reached. Hitting the cap
// freezes the current amounts; it is an accepted approximation, not an
// error. The returned amounts are rounded to whole cents and the rounding
// remainder is pinned to the largest allocation so the sum is exact.
func (a *Allocator) Allocate(brief models.CampaignBrief) (*Result, error) {
	platforms := make([]models.Platform, len(brief.Platforms))
	copy(platforms, brief.Platforms)
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	res := &Result{}

	split, exact := a.repo.Split(brief.Industry, brief.PrimaryGoal)
	if !exact {
		res.Fallbacks = append(res.Fallbacks,
			fmt.Sprintf("split/%s:%s", brief.Industry, brief.PrimaryGoal))
	}

	floors := make(map[models.Platform]float64, len(platforms))
	ceils := make(map[models.Platform]float64, len(platforms))
	floorSum := 0.0
	for _, p := range platforms {
		b, err := a.repo.Platform(p)
		if err != nil {
			return nil, err
		}
		floors[p] = b.MinSpend
		ceils[p] = b.MaxSpend
		floorSum += b.MinSpend
	}
	if floorSum > brief.TotalBudget+spendEpsilon {
		return nil, errors.NewAllocationInfeasibleError(brief.TotalBudget, floorSum)
	}

	amounts := a.initialAmounts(brief.TotalBudget, platforms, split)

	res.Settled = false
	for iter := 1; iter <= a.maxIterations; iter++ {
		res.Iterations = iter
		moved := a.raiseToFloors(amounts, floors, platforms)
		moved = a.capToCeilings(amounts, floors, ceils, platforms) || moved
		if !moved {
			res.Settled = true
			break
		}
	}
	if !res.Settled {
		a.logger.Warn("allocation did not settle within the iteration cap, freezing current amounts", map[string]interface{}{
			"iterations": res.Iterations,
			"budget":     brief.TotalBudget,
			"platforms":  len(platforms),
		})
	}

	res.Allocation = roundToCents(amounts, brief.TotalBudget, platforms)
	return res, nil
}

// initialAmounts turns the split weights into proportional amounts over the
// selected platforms. Platforms absent from the split table get zero weight;
// when every selected platform has zero weight the budget is split evenly.
func (a *Allocator) initialAmounts(budget float64, platforms []models.Platform, split map[models.Platform]float64) map[models.Platform]float64 {
	amounts := make(map[models.Platform]float64, len(platforms))

	weightSum := 0.0
	for _, p := range platforms {
		weightSum += split[p]
	}
	if weightSum <= 0 {
		for _, p := range platforms {
			amounts[p] = budget / float64(len(platforms))
		}
		return amounts
	}
	for _, p := range platforms {
		amounts[p] = budget * split[p] / weightSum
	}
	return amounts
}

// raiseToFloors lifts every below-floor amount to its floor and takes the
// deficit proportionally from the other platforms' headroom above their own
// floors. The infeasibility check guarantees the headroom covers the deficit.
func (a *Allocator) raiseToFloors(amounts, floors map[models.Platform]float64, platforms []models.Platform) bool {
	deficit := 0.0
	raised := make(map[models.Platform]bool)
	for _, p := range platforms {
		if amounts[p] < floors[p]-spendEpsilon {
			deficit += floors[p] - amounts[p]
			amounts[p] = floors[p]
			raised[p] = true
		}
	}
	if deficit == 0 {
		return false
	}

	headroom := 0.0
	for _, p := range platforms {
		if !raised[p] {
			headroom += amounts[p] - floors[p]
		}
	}
	if headroom <= 0 {
		return true
	}
	for _, p := range platforms {
		if !raised[p] {
			amounts[p] -= deficit * (amounts[p] - floors[p]) / headroom
		}
	}
	return true
}

// capToCeilings trims every above-ceiling amount to its ceiling and hands the
// excess to the remaining platforms in proportion to their spare capacity.
// When nothing has capacity left the excess is spread by current share so the
// total is preserved even though the ceilings cannot all hold.
func (a *Allocator) capToCeilings(amounts, floors, ceils map[models.Platform]float64, platforms []models.Platform) bool {
	excess := 0.0
	capped := make(map[models.Platform]bool)
	for _, p := range platforms {
		if amounts[p] > ceils[p]+spendEpsilon {
			excess += amounts[p] - ceils[p]
			amounts[p] = ceils[p]
			capped[p] = true
		}
	}
	if excess == 0 {
		return false
	}

	capacity := 0.0
	for _, p := range platforms {
		if !capped[p] {
			capacity += ceils[p] - amounts[p]
		}
	}
	if capacity <= 0 {
		a.logger.Warn("budget exceeds combined platform spend ceilings, overfilling proportionally", map[string]interface{}{
			"excess": excess,
		})
		total := 0.0
		for _, p := range platforms {
			total += amounts[p]
		}
		for _, p := range platforms {
			amounts[p] += excess * amounts[p] / total
		}
		return true
	}

	grant := math.Min(excess, capacity)
	for _, p := range platforms {
		if !capped[p] {
			amounts[p] += grant * (ceils[p] - amounts[p]) / capacity
		}
	}
	if leftover := excess - grant; leftover > spendEpsilon {
		total := 0.0
		for _, p := range platforms {
			total += amounts[p]
		}
		for _, p := range platforms {
			amounts[p] += leftover * amounts[p] / total
		}
	}
	return true
}

// roundToCents rounds each amount to whole cents and pins the remaining
// cents of the budget onto the largest allocation so the sum is exact.
func roundToCents(amounts map[models.Platform]float64, budget float64, platforms []models.Platform) models.BudgetAllocation {
	out := make(models.BudgetAllocation, len(platforms))

	centsSum := int64(0)
	var largest models.Platform
	largestCents := int64(-1)
	for _, p := range platforms {
		c := int64(math.Round(amounts[p] * 100))
		out[p] = float64(c) / 100
		centsSum += c
		if c > largestCents {
			largestCents = c
			largest = p
		}
	}
	if diff := int64(math.Round(budget*100)) - centsSum; diff != 0 && largestCents >= 0 {
		out[largest] = float64(largestCents+diff) / 100
	}
	return out
}

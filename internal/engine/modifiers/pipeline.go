// internal/engine/modifiers/pipeline.go

// Package modifiers resolves the multiplier bundles implied by a campaign
// brief and composes them into one multiplier per KPI dimension.
package modifiers

import (
	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/common/metrics"
	"campaign-forecaster/internal/models"
)

// Composite is the composed multiplier per KPI dimension, together with the
// trace of what was applied, what was clamped, and which lookups fell back
// to defaults.
type Composite struct {
	CPM float64
	CTR float64
	CVR float64

	Applied   []models.AppliedModifier
	Clamps    []models.ClampEvent
	Fallbacks []string
}

type Pipeline struct {
	repo   *benchmarks.Repository
	floor  float64
	ceil   float64
	logger logger.Logger
}

func NewPipeline(repo *benchmarks.Repository, cfg config.EngineConfig, log logger.Logger) *Pipeline {
	return &Pipeline{
		repo:   repo,
		floor:  cfg.ModifierFloor,
		ceil:   cfg.ModifierCeil,
		logger: log.WithFields(map[string]interface{}{"component": "modifiers"}),
	}
}

// Compose multiplies all applicable per-dimension multipliers together in a
// fixed order: season, competition, creative, demographic (age, gender,
// interest, behavior), location, device, lookalike precision. The order does
// not change the product; it is fixed so the Applied trace is reproducible.
// Each dimension's product is then clamped to the configured safety band to
// stop runaway compounding from many simultaneously-active modifiers.
func (p *Pipeline) Compose(brief models.CampaignBrief) Composite {
	c := Composite{CPM: 1, CTR: 1, CVR: 1}

	for _, season := range brief.Seasons {
		s, exact := p.repo.Season(season)
		p.apply(&c, "season", season, benchmarks.ModifierSet{CPM: s.CPM, CTR: s.CTR, CVR: s.CVR}, exact)
	}

	p.applyLookup(&c, "competition", benchmarks.GroupCompetition, string(brief.Competition))
	p.applyLookup(&c, "creative", benchmarks.GroupCreative, string(brief.CreativeType))

	for _, age := range brief.Audience.AgeRanges {
		p.applyLookup(&c, "demographic", benchmarks.GroupAge, age)
	}
	for _, gender := range brief.Audience.Genders {
		p.applyLookup(&c, "demographic", benchmarks.GroupGender, gender)
	}
	for _, interest := range brief.Audience.Interests {
		p.applyLookup(&c, "demographic", benchmarks.GroupInterest, interest)
	}
	for _, behavior := range brief.Audience.Behaviors {
		p.applyLookup(&c, "demographic", benchmarks.GroupBehavior, behavior)
	}
	for _, location := range brief.Audience.Locations {
		p.applyLookup(&c, "location", benchmarks.GroupLocation, location)
	}
	for _, device := range brief.Audience.Devices {
		p.applyLookup(&c, "device", benchmarks.GroupDevice, device)
	}
	p.applyLookup(&c, "lookalike", benchmarks.GroupLookalike, brief.Audience.LookalikePrecision)

	c.CPM = p.clamp(&c, "cpm", c.CPM)
	c.CTR = p.clamp(&c, "ctr", c.CTR)
	c.CVR = p.clamp(&c, "cvr", c.CVR)

	return c
}

func (p *Pipeline) applyLookup(c *Composite, stage, group, key string) {
	if key == "" {
		return
	}
	set, exact := p.repo.Modifier(group, key)
	p.apply(c, stage, group+":"+key, set, exact)
}

func (p *Pipeline) apply(c *Composite, stage, key string, set benchmarks.ModifierSet, exact bool) {
	c.CPM *= set.CPM
	c.CTR *= set.CTR
	c.CVR *= set.CVR

	c.Applied = append(c.Applied, models.AppliedModifier{
		Stage: stage,
		Key:   key,
		CPM:   set.CPM,
		CTR:   set.CTR,
		CVR:   set.CVR,
	})
	if !exact {
		c.Fallbacks = append(c.Fallbacks, stage+"/"+key)
	}
}

func (p *Pipeline) clamp(c *Composite, dimension string, v float64) float64 {
	clamped := v
	if clamped < p.floor {
		clamped = p.floor
	}
	if clamped > p.ceil {
		clamped = p.ceil
	}
	if clamped == v {
		return v
	}

	metrics.ModifierClamps.WithLabelValues(dimension).Inc()
	p.logger.Debug("composed modifier clamped", map[string]interface{}{
		"dimension": dimension,
		"raw":       v,
		"clamped":   clamped,
	})
	c.Clamps = append(c.Clamps, models.ClampEvent{
		Dimension: dimension,
		Raw:       v,
		Clamped:   clamped,
	})
	return clamped
}

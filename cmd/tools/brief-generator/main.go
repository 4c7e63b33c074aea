// cmd/tools/brief-generator/main.go

// brief-generator emits randomized, schema-valid campaign briefs as JSON,
// for load tests and demo seeding. Output is reproducible for a given seed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"campaign-forecaster/internal/models"
	"campaign-forecaster/pkg/catalog"
)

var (
	ageRanges = []string{"18-24", "25-34", "35-44", "45-54", "55+"}
	genders   = []string{"female", "male", "all"}
	locations = []string{"urban", "suburban", "rural"}
	interests = []string{"tech_enthusiasts", "frequent_buyers", "fitness", "travel", "gaming"}
	behaviors = []string{"frequent_buyers", "cart_abandoners", "newsletter_subscribers"}
	devices   = []string{"mobile", "desktop", "tablet"}
	lookalike = []string{"narrow", "balanced", "broad"}
	stages    = []models.FunnelStage{models.StageAwareness, models.StageConsideration, models.StageConversion}
	levels    = []models.CompetitionLevel{models.CompetitionLow, models.CompetitionMedium, models.CompetitionHigh}
)

func main() {
	count := flag.Int("count", 10, "Number of briefs to generate")
	seed := flag.Int64("seed", 1, "Random seed, same seed gives same briefs")
	outDir := flag.String("out", "", "Output directory, one file per brief; stdout when empty")
	catalogPath := flag.String("catalog", "configs/catalog.json", "Catalog file the briefs draw from")
	flag.Parse()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog load failed: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	for i := 0; i < *count; i++ {
		brief := randomBrief(rng, cat)

		payload, err := json.MarshalIndent(brief, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal failed: %v\n", err)
			os.Exit(1)
		}

		if *outDir == "" {
			fmt.Println(string(payload))
			continue
		}
		name := filepath.Join(*outDir, fmt.Sprintf("brief_%03d.json", i+1))
		if err := os.WriteFile(name, payload, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s failed: %v\n", name, err)
			os.Exit(1)
		}
	}

	if *outDir != "" {
		fmt.Printf("wrote %d briefs to %s\n", *count, *outDir)
	}
}

func randomBrief(rng *rand.Rand, cat *catalog.Catalog) models.CampaignBrief {
	industry := cat.Industries[rng.Intn(len(cat.Industries))]
	goal := cat.Goals[rng.Intn(len(cat.Goals))]
	duration := cat.Durations[rng.Intn(len(cat.Durations))]
	creative := cat.CreativeTypes[rng.Intn(len(cat.CreativeTypes))]

	// Pick 1-4 distinct platforms.
	ids := append([]string(nil), cat.PlatformIDs()...)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	n := 1 + rng.Intn(4)
	platforms := make([]models.Platform, 0, n)
	for _, id := range ids[:n] {
		platforms = append(platforms, models.Platform(id))
	}

	brief := models.CampaignBrief{
		Industry:        industry.ID,
		TotalBudget:     float64(5_000 + rng.Intn(495)*1_000),
		Duration:        models.DurationBucket(duration.ID),
		FunnelStage:     stages[rng.Intn(len(stages))],
		PrimaryGoal:     models.Goal(goal.ID),
		Platforms:       platforms,
		CreativeType:    models.CreativeType(creative.ID),
		Competition:     levels[rng.Intn(len(levels))],
		ProfitMarginPct: float64(20 + rng.Intn(60)),
		Audience: models.TargetAudience{
			AgeRanges:          pick(rng, ageRanges, 2),
			Genders:            pick(rng, genders, 1),
			Locations:          pick(rng, locations, 1),
			Interests:          pick(rng, interests, 2),
			Behaviors:          pick(rng, behaviors, 1),
			Devices:            pick(rng, devices, 2),
			LookalikePrecision: lookalike[rng.Intn(len(lookalike))],
		},
	}

	if len(industry.SubIndustries) > 0 {
		brief.SubIndustry = industry.SubIndustries[rng.Intn(len(industry.SubIndustries))]
	}
	if rng.Intn(2) == 0 && len(cat.Seasons) > 0 {
		brief.Seasons = []string{cat.Seasons[rng.Intn(len(cat.Seasons))].ID}
	}
	return brief
}

// pick draws up to max distinct values; it can draw zero of them, which is a
// valid brief too.
func pick(rng *rand.Rand, values []string, max int) []string {
	n := rng.Intn(max + 1)
	if n == 0 {
		return nil
	}
	idx := rng.Perm(len(values))
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, values[i])
	}
	return out
}

// internal/benchmarks/loader.go
package benchmarks

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"

	cferrors "campaign-forecaster/internal/common/errors"
)

// Load reads the benchmark tables from a YAML file and runs the exhaustive
// key-coverage checks. A table missing its default fallback entry is a
// startup error here, never a runtime surprise.
func Load(path string) (*Tables, error) {
	tables, err := Parse(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(tables); err != nil {
		return nil, err
	}

	return tables, nil
}

// Parse reads the tables without running the coverage checks. Lint tooling
// uses it to report every problem instead of stopping at the first.
func Parse(path string) (*Tables, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, cferrors.NewBenchmarkLoadError(err)
	}

	var tables Tables
	if err := v.Unmarshal(&tables); err != nil {
		return nil, cferrors.NewBenchmarkLoadError(err)
	}

	return &tables, nil
}

// Validate runs the coverage and sanity checks over a loaded table set.
func Validate(t *Tables) error {
	problems := Problems(t)
	if len(problems) > 0 {
		detail := problems[0]
		if len(problems) > 1 {
			detail = fmt.Sprintf("%s (and %d more)", detail, len(problems)-1)
		}
		return cferrors.NewBenchmarkCoverageError(detail)
	}
	return nil
}

// Problems returns every coverage violation found in the tables, sorted for
// stable output. The lint tool prints the full list.
func Problems(t *Tables) []string {
	var problems []string

	if t.Version == "" {
		problems = append(problems, "version is empty")
	}

	if _, ok := t.Industries[DefaultKey]; !ok {
		problems = append(problems, "industries table has no default entry")
	}
	for key, ind := range t.Industries {
		if ind.CPMModifier <= 0 || ind.CTRModifier <= 0 || ind.CVRModifier <= 0 {
			problems = append(problems, fmt.Sprintf("industry %q has a non-positive modifier", key))
		}
		if ind.AvgOrderValue <= 0 {
			problems = append(problems, fmt.Sprintf("industry %q has non-positive avg_order_value", key))
		}
		if ind.AvgCAC <= 0 {
			problems = append(problems, fmt.Sprintf("industry %q has non-positive avg_cac", key))
		}
	}

	if len(t.Platforms) == 0 {
		problems = append(problems, "platforms table is empty")
	}
	for id, p := range t.Platforms {
		if p.CPM <= 0 {
			problems = append(problems, fmt.Sprintf("platform %q has non-positive cpm", id))
		}
		if p.CTR <= 0 || p.CTR >= 1 {
			problems = append(problems, fmt.Sprintf("platform %q ctr %.4f not a fraction in (0,1)", id, p.CTR))
		}
		if p.CVR <= 0 || p.CVR >= 1 {
			problems = append(problems, fmt.Sprintf("platform %q cvr %.4f not a fraction in (0,1)", id, p.CVR))
		}
		if p.MinSpend < 0 || p.MaxSpend <= p.MinSpend {
			problems = append(problems, fmt.Sprintf("platform %q spend bounds invalid: min=%.2f max=%.2f", id, p.MinSpend, p.MaxSpend))
		}
	}

	if _, ok := t.Seasons[DefaultKey]; !ok {
		problems = append(problems, "seasons table has no default entry")
	}
	for key, s := range t.Seasons {
		if s.CPM <= 0 || s.CTR <= 0 || s.CVR <= 0 || s.CPC <= 0 {
			problems = append(problems, fmt.Sprintf("season %q has a non-positive multiplier", key))
		}
	}

	requiredGroups := []string{
		GroupCreative, GroupCompetition, GroupAge, GroupGender,
		GroupInterest, GroupBehavior, GroupLocation, GroupDevice, GroupLookalike,
	}
	for _, group := range requiredGroups {
		sets, ok := t.Modifiers[group]
		if !ok {
			problems = append(problems, fmt.Sprintf("modifier group %q is missing", group))
			continue
		}
		if _, ok := sets[DefaultKey]; !ok {
			problems = append(problems, fmt.Sprintf("modifier group %q has no default entry", group))
		}
		for key, set := range sets {
			if set.CPM <= 0 || set.CTR <= 0 || set.CVR <= 0 {
				problems = append(problems, fmt.Sprintf("modifier %s/%s has a non-positive multiplier", group, key))
			}
		}
	}

	if goals, ok := t.Splits[DefaultKey]; !ok {
		problems = append(problems, "splits table has no default industry")
	} else if _, ok := goals[DefaultKey]; !ok {
		problems = append(problems, "default industry split has no default goal")
	}
	for industry, goals := range t.Splits {
		for goal, weights := range goals {
			var sum float64
			for platform, w := range weights {
				if w < 0 {
					problems = append(problems, fmt.Sprintf("split %s/%s has negative weight for %q", industry, goal, platform))
				}
				if _, ok := t.Platforms[platform]; !ok {
					problems = append(problems, fmt.Sprintf("split %s/%s references unknown platform %q", industry, goal, platform))
				}
				sum += w
			}
			if sum <= 0 {
				problems = append(problems, fmt.Sprintf("split %s/%s has zero total weight", industry, goal))
			}
		}
	}

	for _, kind := range []string{RangeKindIndustry, RangeKindPlatform} {
		keys, ok := t.ValidationRanges[kind]
		if !ok {
			problems = append(problems, fmt.Sprintf("validation_ranges missing kind %q", kind))
			continue
		}
		if _, ok := keys[DefaultKey]; !ok {
			problems = append(problems, fmt.Sprintf("validation_ranges[%s] has no default entry", kind))
		}
		for key, kpis := range keys {
			for kpi, r := range kpis {
				if r.Min >= r.Max {
					problems = append(problems, fmt.Sprintf("range %s/%s/%s has min >= max", kind, key, kpi))
				}
				if r.Optimal < r.Min || r.Optimal > r.Max {
					problems = append(problems, fmt.Sprintf("range %s/%s/%s optimal outside [min,max]", kind, key, kpi))
				}
			}
		}
	}

	sort.Strings(problems)
	return problems
}

// cmd/tools/benchmark-lint/main.go

// benchmark-lint validates the benchmark tables and the catalog before they
// are shipped: coverage of defaults, sane multipliers and spend bounds, and
// agreement between the two files on the platform set. Exit code 1 on any
// violation so it can gate CI.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/pkg/catalog"
)

func main() {
	benchPath := flag.String("benchmarks", "configs/benchmarks.yaml", "Path to the benchmark tables")
	catalogPath := flag.String("catalog", "configs/catalog.json", "Path to the catalog file")
	flag.Parse()

	failed := false

	tables, err := benchmarks.Load(*benchPath)
	if err != nil {
		// Load already validates; surface the full problem list when the
		// file parses but coverage is broken.
		if parsed, perr := benchmarks.Parse(*benchPath); perr == nil {
			fmt.Printf("FAIL %s\n", *benchPath)
			for _, p := range benchmarks.Problems(parsed) {
				fmt.Printf("  - %s\n", p)
			}
		} else {
			fmt.Printf("FAIL %s: %v\n", *benchPath, err)
		}
		os.Exit(1)
	}
	fmt.Printf("OK   %s (version %s)\n", *benchPath, tables.Version)

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Printf("FAIL %s: %v\n", *catalogPath, err)
		os.Exit(1)
	}
	fmt.Printf("OK   %s (version %s)\n", *catalogPath, cat.Version)

	// The catalog and the benchmark tables must agree on the platform set,
	// or a brief built from the catalog can hit UNKNOWN_PLATFORM at runtime.
	benchPlatforms := make(map[string]bool, len(tables.Platforms))
	for id := range tables.Platforms {
		benchPlatforms[id] = true
	}
	for _, id := range cat.PlatformIDs() {
		if !benchPlatforms[id] {
			fmt.Printf("  - catalog platform %q has no benchmark entry\n", id)
			failed = true
		}
		delete(benchPlatforms, id)
	}
	for id := range benchPlatforms {
		fmt.Printf("  - benchmark platform %q is missing from the catalog\n", id)
		failed = true
	}

	if failed {
		os.Exit(1)
	}

	printSummary(tables, cat)
}

func printSummary(tables *benchmarks.Tables, cat *catalog.Catalog) {
	fmt.Println()
	fmt.Printf("platforms:   %d\n", len(tables.Platforms))
	fmt.Printf("industries:  %d\n", len(tables.Industries))
	fmt.Printf("seasons:     %d\n", len(tables.Seasons))

	groups := make([]string, 0, len(tables.Modifiers))
	for g := range tables.Modifiers {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	fmt.Printf("modifier groups: %v\n", groups)

	splits := 0
	for _, goals := range tables.Splits {
		splits += len(goals)
	}
	fmt.Printf("split tables: %d\n", splits)
	fmt.Printf("catalog goals: %d, creative types: %d\n", len(cat.Goals), len(cat.CreativeTypes))
}

// pkg/catalog/schema.go
package catalog

// Catalog is the versioned set of enumerations a brief-editing surface needs
// to build valid campaign briefs: which industries, platforms, seasons,
// creative types, competition levels and goals this deployment understands.
type Catalog struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`

	Industries        []Industry     `json:"industries"`
	Platforms         []PlatformInfo `json:"platforms"`
	Seasons           []Season       `json:"seasons"`
	CreativeTypes     []Option       `json:"creativeTypes"`
	CompetitionLevels []Option       `json:"competitionLevels"`
	Goals             []Option       `json:"goals"`
	Durations         []Option       `json:"durations"`
}

type Industry struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"displayName"`
	SubIndustries []string `json:"subIndustries,omitempty"`
}

type PlatformInfo struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	MinSpend    float64  `json:"minSpend"`
	MaxSpend    float64  `json:"maxSpend"`
	Strengths   []string `json:"strengths,omitempty"`
}

type Season struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	DurationDays int    `json:"durationDays"`
	Impact       string `json:"impact"` // low, medium, high
}

// Option is a generic id/label pair for the flat enumerations.
type Option struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

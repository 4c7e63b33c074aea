// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog is complete enough to drive a brief editor:
// a version string, at least one entry per enumeration, and unique ids.
func (c *Catalog) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("catalog version is required")
	}
	if len(c.Industries) == 0 {
		return fmt.Errorf("catalog has no industries")
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("catalog has no platforms")
	}
	if len(c.Goals) == 0 {
		return fmt.Errorf("catalog has no goals")
	}

	seen := make(map[string]bool)
	for _, p := range c.Platforms {
		if p.ID == "" {
			return fmt.Errorf("catalog platform with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate catalog platform %q", p.ID)
		}
		seen[p.ID] = true
		if p.MinSpend < 0 || (p.MaxSpend > 0 && p.MaxSpend < p.MinSpend) {
			return fmt.Errorf("catalog platform %q has invalid spend bounds", p.ID)
		}
	}

	seen = make(map[string]bool)
	for _, ind := range c.Industries {
		if ind.ID == "" {
			return fmt.Errorf("catalog industry with empty id")
		}
		if seen[ind.ID] {
			return fmt.Errorf("duplicate catalog industry %q", ind.ID)
		}
		seen[ind.ID] = true
	}
	return nil
}

// PlatformIDs returns the catalog's platform ids in declaration order.
func (c *Catalog) PlatformIDs() []string {
	out := make([]string, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		out = append(out, p.ID)
	}
	return out
}

// internal/benchmarks/loader_test.go
package benchmarks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "campaign-forecaster/internal/common/errors"
)

const shippedTablesPath = "../../configs/benchmarks.yaml"

func validTables() *Tables {
	neutral := map[string]ModifierSet{DefaultKey: NeutralModifier()}
	return &Tables{
		Version: "test",
		Industries: map[string]IndustryBenchmark{
			DefaultKey: {CPMModifier: 1, CTRModifier: 1, CVRModifier: 1, AvgOrderValue: 85, AvgCAC: 48},
		},
		Platforms: map[string]PlatformBenchmark{
			"meta": {CPM: 7.5, CTR: 0.014, CVR: 0.082, MinSpend: 500, MaxSpend: 400000},
		},
		Seasons: map[string]SeasonalBenchmark{
			DefaultKey: NeutralSeason(),
		},
		Modifiers: map[string]map[string]ModifierSet{
			GroupCreative:    neutral,
			GroupCompetition: neutral,
			GroupAge:         neutral,
			GroupGender:      neutral,
			GroupInterest:    neutral,
			GroupBehavior:    neutral,
			GroupLocation:    neutral,
			GroupDevice:      neutral,
			GroupLookalike:   neutral,
		},
		Splits: map[string]map[string]map[string]float64{
			DefaultKey: {DefaultKey: {"meta": 100}},
		},
		ValidationRanges: map[string]map[string]map[string]Range{
			RangeKindIndustry: {DefaultKey: {"ctr": {Min: 0.4, Max: 3.8, Optimal: 1.6}}},
			RangeKindPlatform: {DefaultKey: {"ctr": {Min: 0.4, Max: 3.6, Optimal: 1.5}}},
		},
	}
}

func TestLoad_ShippedTables(t *testing.T) {
	tables, err := Load(shippedTablesPath)
	require.NoError(t, err)

	assert.NotEmpty(t, tables.Version)
	assert.Contains(t, tables.Platforms, "meta")
	assert.Contains(t, tables.Platforms, "google_ads")
	assert.Contains(t, tables.Industries, DefaultKey)
	assert.Contains(t, tables.Seasons, "black_friday")
	assert.Empty(t, Problems(tables))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, cferrors.ErrCodeBenchmarkLoadFailed, cferrors.AsStandard(err).Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tables)
		wantErr bool
	}{
		{
			name:    "valid tables pass",
			mutate:  func(*Tables) {},
			wantErr: false,
		},
		{
			name:    "missing industry default",
			mutate:  func(tb *Tables) { delete(tb.Industries, DefaultKey) },
			wantErr: true,
		},
		{
			name:    "missing season default",
			mutate:  func(tb *Tables) { delete(tb.Seasons, DefaultKey) },
			wantErr: true,
		},
		{
			name: "modifier group without default",
			mutate: func(tb *Tables) {
				tb.Modifiers[GroupCreative] = map[string]ModifierSet{"video": {CPM: 1.08, CTR: 1.3, CVR: 1.15}}
			},
			wantErr: true,
		},
		{
			name: "non-positive modifier",
			mutate: func(tb *Tables) {
				tb.Modifiers[GroupDevice]["mobile"] = ModifierSet{CPM: 0, CTR: 1, CVR: 1}
			},
			wantErr: true,
		},
		{
			name: "platform ctr not a fraction",
			mutate: func(tb *Tables) {
				p := tb.Platforms["meta"]
				p.CTR = 1.4
				tb.Platforms["meta"] = p
			},
			wantErr: true,
		},
		{
			name: "inverted spend bounds",
			mutate: func(tb *Tables) {
				p := tb.Platforms["meta"]
				p.MinSpend, p.MaxSpend = 1000, 500
				tb.Platforms["meta"] = p
			},
			wantErr: true,
		},
		{
			name: "split references unknown platform",
			mutate: func(tb *Tables) {
				tb.Splits[DefaultKey][DefaultKey]["myspace"] = 10
			},
			wantErr: true,
		},
		{
			name: "range optimal outside band",
			mutate: func(tb *Tables) {
				tb.ValidationRanges[RangeKindIndustry][DefaultKey]["ctr"] = Range{Min: 1, Max: 2, Optimal: 5}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := validTables()
			tt.mutate(tables)

			err := Validate(tables)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, cferrors.ErrCodeBenchmarkCoverageInvalid, cferrors.AsStandard(err).Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

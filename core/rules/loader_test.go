package rules

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ifc-cost/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestLoader(source Source) *SourceLoader {
	return NewLoader(source, WithLogger(zap.NewNop()))
}

func TestLoadMissingDirUsesDefaults(t *testing.T) {
	l := newTestLoader(NewDirSource(filepath.Join(t.TempDir(), "does-not-exist")))

	rs, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Defaults(), rs)
	assert.Equal(t, []string{"material", "connection"}, rs.EnabledProviders())
}

func TestLoadEmptyDirSourceUsesDefaults(t *testing.T) {
	l := newTestLoader(NewDirSource(""))

	rs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rs.MaterialPrices, 3)
}

func TestLoadPartialDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "material_prices.json", `{
		"TIMBER/C24": {"unit": "m3", "price_per_unit": 620.10}
	}`)
	writeFile(t, dir, "waste_factors.yaml", "TIMBER/C24: 0.12\n")

	rs, err := newTestLoader(NewDirSource(dir)).Load(context.Background())
	require.NoError(t, err)

	// file tables replace defaults wholesale
	require.Len(t, rs.MaterialPrices, 1)
	timber, ok := rs.Material("TIMBER/C24")
	require.True(t, ok)
	assert.Equal(t, "m3", timber.Unit)
	assert.Equal(t, "620.1", timber.PricePerUnit.String())
	assert.Nil(t, timber.DensityKgM3)

	assert.Equal(t, "0.12", rs.WasteFactors.For("TIMBER/C24").String())
	// no default entry in the file: hard fallback
	assert.Equal(t, "0.05", rs.WasteFactors.For("STEEL/S355").String())

	// tables without files keep their defaults
	assert.Equal(t, DefaultConnectionCosts(), rs.ConnectionCosts)
	assert.Equal(t, DefaultLaborRates(), rs.LaborRates)
}

func TestLoadYAMLConnectionCosts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "connection_costs.yml", `
welding:
  price_per_meter: 30
  price_per_operation: 55.5
bolts:
  M24:
    price_per_unit: 7.25
connection_types:
  moment:
    price: 210
`)

	cc, err := newTestLoader(NewDirSource(dir)).ConnectionCosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "30", cc.Welding.PricePerMeter.String())
	assert.Equal(t, "55.5", cc.Welding.PricePerOperation.String())
	p, ok := cc.BoltPrice("M24")
	require.True(t, ok)
	assert.Equal(t, "7.25", p.String())
	_, ok = cc.BoltPrice("M12")
	assert.False(t, ok)
	assert.Equal(t, "210", cc.ConnectionTypes["moment"].Price.String())
}

func TestLoadJSONPreferredOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "waste_factors.json", `{"default": 0.07}`)
	writeFile(t, dir, "waste_factors.yaml", "default: 0.5\n")

	wf, err := newTestLoader(NewDirSource(dir)).WasteFactors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.07", wf.For("anything").String())
}

func TestLoadMalformedData(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid json", "material_prices.json", `{"STEEL/S355": `},
		{"invalid yaml", "labor_rates.yaml", "welding: [unclosed\n"},
		{"missing required field", "material_prices.json", `{"STEEL/S355": {"unit": "kg"}}`},
		{"negative price", "surface_treatments.json", `{"painting": {"price_per_m2": -1}}`},
		{"wrong type", "waste_factors.json", `{"default": "five percent"}`},
		{"provider list not strings", "calculation_rules.json", `{"enabled_providers": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			rs, err := newTestLoader(NewDirSource(dir)).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, rs)
			assert.True(t, errors.IsType(err, errors.TypeRuleDataMalformed), "got %v", err)
		})
	}
}

func TestLoadWithoutSchemaValidation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "material_prices.json", `{"STEEL/S355": {"unit": "kg"}}`)

	l := NewLoader(NewDirSource(dir), WithLogger(zap.NewNop()), WithSchemaValidation(false))
	rs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, rs.MaterialPrices["STEEL/S355"].PricePerUnit.IsZero())
}

func TestEnabledProvidersExplicitEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calculation_rules.json", `{"enabled_providers": []}`)

	rs, err := newTestLoader(NewDirSource(dir)).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rs.EnabledProviders())
	assert.Empty(t, rs.EnabledProviders())
}

func TestEnabledProvidersUnspecified(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calculation_rules.json", `{}`)

	rs, err := newTestLoader(NewDirSource(dir)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultEnabledProviders(), rs.EnabledProviders())
}

// countingSource counts table reads and can fail on demand
type countingSource struct {
	reads atomic.Int32
	fail  atomic.Bool
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Table(ctx context.Context, table string) ([]byte, error) {
	s.reads.Add(1)
	if s.fail.Load() {
		return nil, errors.RuleDataMalformed(table, nil)
	}
	return nil, ErrSourceUnavailable
}

func TestLoadIsMemoized(t *testing.T) {
	src := &countingSource{}
	l := newTestLoader(src)

	first, err := l.Load(context.Background())
	require.NoError(t, err)
	second, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(len(Tables)), src.reads.Load())
}

func TestLoadConcurrentSingleLoad(t *testing.T) {
	src := &countingSource{}
	l := newTestLoader(src)

	var wg sync.WaitGroup
	results := make([]*RuleSet, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rs, err := l.Load(context.Background())
			assert.NoError(t, err)
			results[i] = rs
		}(i)
	}
	wg.Wait()

	for _, rs := range results {
		assert.Same(t, results[0], rs)
	}
	assert.Equal(t, int32(len(Tables)), src.reads.Load())
}

func TestLoadFailureNotCached(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	l := newTestLoader(src)

	_, err := l.Load(context.Background())
	require.Error(t, err)

	src.fail.Store(false)
	rs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rs)
}

func TestInvalidateReloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "waste_factors.json", `{"default": 0.05}`)
	l := newTestLoader(NewDirSource(dir))

	rs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.05", rs.WasteFactors.For("x").String())

	writeFile(t, dir, "waste_factors.json", `{"default": 0.08}`)

	rs, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.05", rs.WasteFactors.For("x").String(), "cached until invalidated")

	l.Invalidate()
	rs, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.08", rs.WasteFactors.For("x").String())
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(NewDirSource(t.TempDir())).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{
		TableSurfaceTreatments: []byte(`{"powder_coating": {"price_per_m2": 22.40}}`),
	}

	st, err := newTestLoader(src).SurfaceTreatments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "22.4", st["powder_coating"].PricePerM2.String())

	mp, err := newTestLoader(src).MaterialPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaterialPrices(), mp)
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		hclFile string
		want    string
	}{
		{"hcl wins", "/etc/rules", "/etc/rules.hcl", "hcl:/etc/rules.hcl"},
		{"dir", "/etc/rules", "", "dir:/etc/rules"},
		{"nothing configured", "", "", "static"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSource(tt.dir, tt.hclFile).Name())
		})
	}
}

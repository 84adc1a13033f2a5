package rules

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifc-cost/internal/errors"
)

const bundleHCL = `
material "STEEL/S355" {
  unit           = "kg"
  price_per_unit = 4.75
  density_kg_m3  = 7850
}

material "CONCRETE/C40" {
  unit           = "m³"
  price_per_unit = 510
}

labor "welding" {
  rate_per_hour  = 85
  rate_per_meter = 27.5
}

welding {
  price_per_meter     = 26
  price_per_operation = 52
}

bolt "M16" {
  price_per_unit = 3.9
}

bolt "default" {
  price_per_unit = 2.6
}

connection_type "hinged" {
  price = 95
}

waste_factors = {
  "STEEL/S355" = 0.04
  default      = 0.06
}

enabled_providers = ["material", "connection", "surface_treatment"]
`

func TestHCLSourceBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.hcl", bundleHCL)

	rs, err := newTestLoader(NewHCLSource(filepath.Join(dir, "rules.hcl"))).Load(context.Background())
	require.NoError(t, err)

	steel, ok := rs.Material("STEEL/S355")
	require.True(t, ok)
	assert.Equal(t, "kg", steel.Unit)
	assert.Equal(t, "4.75", steel.PricePerUnit.String())
	require.NotNil(t, steel.DensityKgM3)
	assert.Equal(t, "7850", steel.DensityKgM3.String())

	concrete, ok := rs.Material("CONCRETE/C40")
	require.True(t, ok)
	assert.Equal(t, "m³", concrete.Unit)
	assert.Nil(t, concrete.DensityKgM3)

	welding := rs.LaborRates["welding"]
	assert.Equal(t, "85", welding.RatePerHour.String())
	require.NotNil(t, welding.RatePerMeter)
	assert.Equal(t, "27.5", welding.RatePerMeter.String())

	assert.Equal(t, "26", rs.ConnectionCosts.Welding.PricePerMeter.String())
	assert.Equal(t, "52", rs.ConnectionCosts.Welding.PricePerOperation.String())
	bolt, ok := rs.ConnectionCosts.BoltPrice("M30")
	require.True(t, ok)
	assert.Equal(t, "2.6", bolt.String())
	assert.Equal(t, "95", rs.ConnectionCosts.ConnectionTypes["hinged"].Price.String())

	assert.Equal(t, "0.04", rs.WasteFactors.For("STEEL/S355").String())
	assert.Equal(t, "0.06", rs.WasteFactors.For("CONCRETE/C40").String())

	assert.Equal(t, []string{"material", "connection", "surface_treatment"}, rs.EnabledProviders())

	// not declared in the bundle
	assert.Equal(t, DefaultSurfaceTreatments(), rs.SurfaceTreatments)
}

func TestHCLSourceMissingFile(t *testing.T) {
	src := NewHCLSource(filepath.Join(t.TempDir(), "rules.hcl"))

	rs, err := newTestLoader(src).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), rs)
}

func TestHCLSourceMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", `material "STEEL/S355" {`},
		{"unknown block", `crane "tower" { price = 1 }`},
		{"missing required attribute", `material "STEEL/S355" { unit = "kg" }`},
		{"wrong attribute type", `bolt "M12" { price_per_unit = "cheap" }`},
		{"null price", `surface_treatment "painting" { price_per_m2 = null }`},
		{"waste factors not an object", `waste_factors = [0.05]`},
		{"waste factor not a number", `waste_factors = { default = "low" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "rules.hcl", tt.content)

			_, err := newTestLoader(NewHCLSource(filepath.Join(dir, "rules.hcl"))).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeRuleDataMalformed), "got %v", err)
		})
	}
}

func TestHCLSourceKeepsExactNumbers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.hcl", `
material "GOLD/999" {
  unit           = "kg"
  price_per_unit = 12345678901234567.89
  density_kg_m3  = 19320.000000000000001
}

labor "welding" {
  rate_per_hour = 0.1
}

welding {
  price_per_meter = 25.3
}

waste_factors = {
  default = 0.07
}
`)

	rs, err := newTestLoader(NewHCLSource(filepath.Join(dir, "rules.hcl"))).Load(context.Background())
	require.NoError(t, err)

	gold, ok := rs.Material("GOLD/999")
	require.True(t, ok)
	assert.Equal(t, "12345678901234567.89", gold.PricePerUnit.String())
	require.NotNil(t, gold.DensityKgM3)
	assert.Equal(t, "19320.000000000000001", gold.DensityKgM3.String())

	assert.Equal(t, "0.1", rs.LaborRates["welding"].RatePerHour.String())
	assert.Nil(t, rs.LaborRates["welding"].RatePerMeter)

	assert.Equal(t, "25.3", rs.ConnectionCosts.Welding.PricePerMeter.String())
	assert.True(t, rs.ConnectionCosts.Welding.PricePerOperation.IsZero())

	assert.Equal(t, "0.07", rs.WasteFactors.For("GOLD/999").String())
}

func TestHCLSourceTableJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.hcl", `bolt "M24" { price_per_unit = 7.10 }`)

	data, err := NewHCLSource(filepath.Join(dir, "rules.hcl")).Table(context.Background(), TableConnectionCosts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bolts":{"M24":{"price_per_unit":7.1}},"connection_types":{}}`, string(data))
	assert.Contains(t, string(data), `"price_per_unit":7.1`)
}

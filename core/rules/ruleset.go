// Package rules loads the pricing tables that drive cost calculation.
package rules

import (
	"github.com/shopspring/decimal"
)

// Table names as exposed by a Source
const (
	TableMaterialPrices    = "material_prices"
	TableLaborRates        = "labor_rates"
	TableConnectionCosts   = "connection_costs"
	TableWasteFactors      = "waste_factors"
	TableCalculationRules  = "calculation_rules"
	TableSurfaceTreatments = "surface_treatments"
)

// Tables lists every table in load order
var Tables = []string{
	TableMaterialPrices,
	TableLaborRates,
	TableConnectionCosts,
	TableWasteFactors,
	TableCalculationRules,
	TableSurfaceTreatments,
}

// DefaultWasteKey is the waste_factors entry used when a material has none
const DefaultWasteKey = "default"

// DefaultBoltKey is the bolts entry used when a bolt size has no price
const DefaultBoltKey = "default"

// FallbackWasteFactor applies when neither the material nor the default key is present
var FallbackWasteFactor = decimal.RequireFromString("0.05")

// MaterialPrice prices one material per unit
type MaterialPrice struct {
	// Unit is "kg" or "m³" ("m3" accepted)
	Unit string `json:"unit" yaml:"unit"`

	PricePerUnit decimal.Decimal `json:"price_per_unit" yaml:"price_per_unit"`

	// DensityKgM3 converts volume to mass for kg-priced materials
	DensityKgM3 *decimal.Decimal `json:"density_kg_m3,omitempty" yaml:"density_kg_m3,omitempty"`
}

// LaborRate prices one kind of work
type LaborRate struct {
	RatePerHour  decimal.Decimal  `json:"rate_per_hour" yaml:"rate_per_hour"`
	RatePerMeter *decimal.Decimal `json:"rate_per_meter,omitempty" yaml:"rate_per_meter,omitempty"`
}

// WeldingCosts prices welds by length and per operation
type WeldingCosts struct {
	PricePerMeter     decimal.Decimal `json:"price_per_meter" yaml:"price_per_meter"`
	PricePerOperation decimal.Decimal `json:"price_per_operation" yaml:"price_per_operation"`
}

// BoltPrice prices a single bolt
type BoltPrice struct {
	PricePerUnit decimal.Decimal `json:"price_per_unit" yaml:"price_per_unit"`
}

// ConnectionTypePrice is a flat charge per joint type
type ConnectionTypePrice struct {
	Price decimal.Decimal `json:"price" yaml:"price"`
}

// ConnectionCosts groups every connection-related price
type ConnectionCosts struct {
	Welding         WeldingCosts                   `json:"welding" yaml:"welding"`
	Bolts           map[string]BoltPrice           `json:"bolts" yaml:"bolts"`
	ConnectionTypes map[string]ConnectionTypePrice `json:"connection_types" yaml:"connection_types"`
}

// BoltPrice returns the price for a bolt size, falling back to the default entry
func (c ConnectionCosts) BoltPrice(size string) (decimal.Decimal, bool) {
	if p, ok := c.Bolts[size]; ok {
		return p.PricePerUnit, true
	}
	if p, ok := c.Bolts[DefaultBoltKey]; ok {
		return p.PricePerUnit, true
	}
	return decimal.Zero, false
}

// WasteFactors maps material keys to waste fractions
type WasteFactors map[string]decimal.Decimal

// For resolves the waste factor of a material:
// material entry, then the default entry, then FallbackWasteFactor.
func (w WasteFactors) For(material string) decimal.Decimal {
	if material != "" {
		if f, ok := w[material]; ok {
			return f
		}
	}
	if f, ok := w[DefaultWasteKey]; ok {
		return f
	}
	return FallbackWasteFactor
}

// CalculationRules holds engine switches.
// A nil EnabledProviders means unspecified; an empty slice enables nothing.
type CalculationRules struct {
	EnabledProviders []string `json:"enabled_providers" yaml:"enabled_providers"`
}

// SurfaceTreatmentPrice prices a coating per square meter
type SurfaceTreatmentPrice struct {
	PricePerM2 decimal.Decimal `json:"price_per_m2" yaml:"price_per_m2"`
}

// RuleSet is the complete set of tables for one calculation.
// It is read-only once loaded.
type RuleSet struct {
	MaterialPrices    map[string]MaterialPrice         `json:"material_prices" yaml:"material_prices"`
	LaborRates        map[string]LaborRate             `json:"labor_rates" yaml:"labor_rates"`
	ConnectionCosts   ConnectionCosts                  `json:"connection_costs" yaml:"connection_costs"`
	WasteFactors      WasteFactors                     `json:"waste_factors" yaml:"waste_factors"`
	CalculationRules  CalculationRules                 `json:"calculation_rules" yaml:"calculation_rules"`
	SurfaceTreatments map[string]SurfaceTreatmentPrice `json:"surface_treatments" yaml:"surface_treatments"`
}

// EnabledProviders returns the configured provider names or the default pair
func (rs *RuleSet) EnabledProviders() []string {
	if rs.CalculationRules.EnabledProviders == nil {
		return DefaultEnabledProviders()
	}
	return rs.CalculationRules.EnabledProviders
}

// Material looks up a material price
func (rs *RuleSet) Material(key string) (MaterialPrice, bool) {
	p, ok := rs.MaterialPrices[key]
	return p, ok
}

// Table returns one table by name, for display
func (rs *RuleSet) Table(name string) (interface{}, bool) {
	switch name {
	case TableMaterialPrices:
		return rs.MaterialPrices, true
	case TableLaborRates:
		return rs.LaborRates, true
	case TableConnectionCosts:
		return rs.ConnectionCosts, true
	case TableWasteFactors:
		return rs.WasteFactors, true
	case TableCalculationRules:
		return CalculationRules{EnabledProviders: rs.EnabledProviders()}, true
	case TableSurfaceTreatments:
		return rs.SurfaceTreatments, true
	}
	return nil, false
}
